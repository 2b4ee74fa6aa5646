package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/thereayou/automart/internal/database"
	"github.com/thereayou/automart/internal/handlers/dto"
	"github.com/thereayou/automart/internal/middleware"
	"github.com/thereayou/automart/internal/models"
)

type WishlistHandler struct {
	db  *database.Database
	log *slog.Logger
}

func NewWishlistHandler(db *database.Database, log *slog.Logger) *WishlistHandler {
	return &WishlistHandler{db: db, log: log}
}

func carIDs(cars []models.Car) []uuid.UUID {
	return lo.Map(cars, func(c models.Car, _ int) uuid.UUID { return c.ID })
}

// Toggle добавляет объявление в избранное, если его там нет, иначе убирает
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req dto.WishlistToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Car ID is required"})
		return
	}

	inWishlist, err := h.db.ToggleWishlist(userID.String(), req.CarID)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Car not found"})
			return
		}
		h.log.Error("toggle wishlist failed", "user", userID, "car", req.CarID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	cars, err := h.db.GetWishlist(userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	message := "Car removed from wishlist"
	if inWishlist {
		message = "Car added to wishlist"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"inWishlist": inWishlist,
		"wishlist":   carIDs(cars),
	})
}

// Get возвращает избранное текущего пользователя или пользователя из пути
func (h *WishlistHandler) Get(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		userID = middleware.CurrentUserID(c).String()
	}

	cars, err := h.db.GetWishlist(userID)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "wishlist": cars})
}

func (h *WishlistHandler) Check(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	inWishlist, err := h.db.InWishlist(userID.String(), c.Param("carId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inWishlist": inWishlist})
}
