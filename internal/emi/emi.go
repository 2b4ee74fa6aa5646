package emi

import (
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingFields    = errors.New("All fields are required: carPrice, downPayment, annualRate, tenureMonths")
	ErrInvalidValues    = errors.New("Invalid values: All amounts must be positive")
	ErrDownPaymentRange = errors.New("Down payment cannot be greater than or equal to car price")
)

var validate = validator.New()

// Request параметры кредита. Указатели отличают отсутствующее поле от нуля.
type Request struct {
	CarPrice     *float64 `json:"carPrice" validate:"required"`
	DownPayment  *float64 `json:"downPayment" validate:"required"`
	AnnualRate   *float64 `json:"annualRate" validate:"required"`
	TenureMonths *int     `json:"tenureMonths" validate:"required"`
}

type amounts struct {
	CarPrice     float64 `validate:"gt=0"`
	DownPayment  float64 `validate:"gte=0"`
	AnnualRate   float64 `validate:"gt=0"`
	TenureMonths int     `validate:"gt=0"`
}

type Result struct {
	Principal     float64 `json:"principal"`
	EMI           float64 `json:"emi"`
	Months        int     `json:"months"`
	TotalPayment  float64 `json:"totalPayment"`
	TotalInterest float64 `json:"totalInterest"`
	DownPayment   float64 `json:"downPayment"`
	CarPrice      float64 `json:"carPrice"`
	AnnualRate    float64 `json:"annualRate"`
}

// Calculate считает ежемесячный платёж по формуле аннуитета
// P·r·(1+r)^n / ((1+r)^n − 1), r = годовая ставка / 12 / 100.
// Денежные значения округляются до копеек.
func Calculate(req Request) (Result, error) {
	if err := validate.Struct(req); err != nil {
		return Result{}, ErrMissingFields
	}

	in := amounts{
		CarPrice:     *req.CarPrice,
		DownPayment:  *req.DownPayment,
		AnnualRate:   *req.AnnualRate,
		TenureMonths: *req.TenureMonths,
	}
	if err := validate.Struct(in); err != nil {
		return Result{}, ErrInvalidValues
	}
	if in.DownPayment >= in.CarPrice {
		return Result{}, ErrDownPaymentRange
	}

	principal := in.CarPrice - in.DownPayment
	r := in.AnnualRate / 100 / 12
	n := float64(in.TenureMonths)

	growth := math.Pow(1+r, n)
	emi := principal * r * growth / (growth - 1)

	totalPayment := emi * n
	totalInterest := totalPayment - principal

	return Result{
		Principal:     round2(principal),
		EMI:           round2(emi),
		Months:        in.TenureMonths,
		TotalPayment:  round2(totalPayment),
		TotalInterest: round2(totalInterest),
		DownPayment:   round2(in.DownPayment),
		CarPrice:      round2(in.CarPrice),
		AnnualRate:    in.AnnualRate,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
