package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thereayou/automart/internal/database"
	"github.com/thereayou/automart/internal/handlers/dto"
	"github.com/thereayou/automart/internal/middleware"
	"github.com/thereayou/automart/internal/models"
)

const minCarYear = 1900

type CarHandler struct {
	db  *database.Database
	log *slog.Logger
}

func NewCarHandler(db *database.Database, log *slog.Logger) *CarHandler {
	return &CarHandler{db: db, log: log}
}

func validateYear(year int) error {
	maxYear := time.Now().Year() + 1
	if year < minCarYear || year > maxYear {
		return fmt.Errorf("year must be between %d and %d", minCarYear, maxYear)
	}
	return nil
}

func validateFuel(fuel string) error {
	if !lo.Contains(models.FuelTypes, fuel) {
		return fmt.Errorf("fuel must be one of %s", strings.Join(models.FuelTypes, ", "))
	}
	return nil
}

// CreateCar создаёт объявление от имени текущего пользователя
func (h *CarHandler) CreateCar(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req dto.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide all required fields", "error": err.Error()})
		return
	}
	if err := validateYear(req.Year); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err := validateFuel(req.Fuel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	seller, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
		return
	}

	car := &models.Car{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Price:       *req.Price,
		Mileage:     *req.Mileage,
		Fuel:        req.Fuel,
		Location:    req.Location,
		Description: req.Description,
		Image:       req.ImageURL,
		Features:    req.Features,
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		SellerPhone: seller.Phone,
	}

	if err := h.db.CreateCar(car); err != nil {
		h.log.Error("create car failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating car listing"})
		return
	}

	h.log.Info("car listed", "car", car.ID, "seller", seller.ID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Car listed successfully", "car": car})
}

// ListCars возвращает объявления в продаже с необязательными фильтрами
func (h *CarHandler) ListCars(c *gin.Context) {
	var filter dto.CarFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	cars, err := h.db.ListAvailableCars()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching cars"})
		return
	}

	cars = FilterCars(cars, filter)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "cars": cars})
}

// FilterCars линейно отбирает объявления по параметрам запроса
func FilterCars(cars []models.Car, f dto.CarFilter) []models.Car {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	return lo.Filter(cars, func(car models.Car, _ int) bool {
		if f.Brand != "" && !strings.EqualFold(car.Brand, f.Brand) {
			return false
		}
		if f.Fuel != "" && !strings.EqualFold(car.Fuel, f.Fuel) {
			return false
		}
		if f.MinPrice != nil && car.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && car.Price > *f.MaxPrice {
			return false
		}
		if q != "" {
			haystack := strings.ToLower(car.Brand + " " + car.Model + " " + car.Location)
			if !strings.Contains(haystack, q) {
				return false
			}
		}
		return true
	})
}

func (h *CarHandler) GetCar(c *gin.Context) {
	car, err := h.db.GetCar(c.Param("id"))
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching car"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "car": car})
}

// MyCars объявления текущего пользователя, включая проданные
func (h *CarHandler) MyCars(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	cars, err := h.db.ListSellerCars(userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching your cars"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "cars": cars})
}

// ownedCar загружает объявление и проверяет, что текущий пользователь его продавец
func (h *CarHandler) ownedCar(c *gin.Context, action string) (*models.Car, bool) {
	userID := middleware.CurrentUserID(c)

	car, err := h.db.GetCar(c.Param("id"))
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Car not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching car"})
		return nil, false
	}

	if car.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to " + action + " this car"})
		return nil, false
	}
	return car, true
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	car, ok := h.ownedCar(c, "update")
	if !ok {
		return
	}

	var req dto.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		car.Year = *req.Year
	}
	if req.Fuel != nil {
		if err := validateFuel(*req.Fuel); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		car.Fuel = *req.Fuel
	}
	if req.Brand != nil {
		car.Brand = *req.Brand
	}
	if req.Model != nil {
		car.Model = *req.Model
	}
	if req.Price != nil {
		car.Price = *req.Price
	}
	if req.Mileage != nil {
		car.Mileage = *req.Mileage
	}
	if req.Location != nil {
		car.Location = *req.Location
	}
	if req.Description != nil {
		car.Description = *req.Description
	}
	if req.Image != nil {
		car.Image = *req.Image
	}
	if req.Features != nil {
		car.Features = *req.Features
	}
	if req.Status != nil {
		car.Status = *req.Status
	}

	if err := h.db.UpdateCar(car); err != nil {
		h.log.Error("update car failed", "car", car.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error updating car"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Car updated successfully", "car": car})
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	car, ok := h.ownedCar(c, "delete")
	if !ok {
		return
	}

	if err := h.db.DeleteCar(car.ID.String()); err != nil {
		h.log.Error("delete car failed", "car", car.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error deleting car"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Car deleted successfully"})
}
