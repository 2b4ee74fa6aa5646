package dto

type CreateCarRequest struct {
	Brand       string   `json:"brand" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Year        int      `json:"year" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Mileage     *float64 `json:"mileage" binding:"required,gte=0"`
	Fuel        string   `json:"fuel" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Description string   `json:"description" binding:"required"`
	ImageURL    string   `json:"imageUrl"`
	Features    []string `json:"features"`
}

// UpdateCarRequest меняет только переданные поля
type UpdateCarRequest struct {
	Brand       *string   `json:"brand"`
	Model       *string   `json:"model"`
	Year        *int      `json:"year"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Mileage     *float64  `json:"mileage" binding:"omitempty,gte=0"`
	Fuel        *string   `json:"fuel"`
	Location    *string   `json:"location"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	Features    *[]string `json:"features"`
	Status      *string   `json:"status" binding:"omitempty,oneof=available sold pending"`
}

// CarFilter параметры GET /api/cars
type CarFilter struct {
	Brand    string   `form:"brand"`
	Fuel     string   `form:"fuel"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	Query    string   `form:"q"`
}

type WishlistToggleRequest struct {
	CarID string `json:"carId" binding:"required"`
}
