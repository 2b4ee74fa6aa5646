package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/automart/internal/database"
	"github.com/thereayou/automart/internal/handlers/dto"
	"github.com/thereayou/automart/internal/middleware"
	"github.com/thereayou/automart/internal/websocket"
)

type RoomHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// CarChatRoom отдаёт id комнаты переписки по объявлению. Покупатель
// получает свою комнату, продавец указывает покупателя в ?buyerId.
func (h *RoomHandler) CarChatRoom(c *gin.Context) {
	userID := middleware.CurrentUserID(c).String()

	car, err := h.db.GetCar(c.Param("id"))
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error fetching car"})
		return
	}

	sellerID := car.SellerID.String()
	buyerID := userID
	if userID == sellerID {
		buyerID = c.Query("buyerId")
		if buyerID == "" || buyerID == sellerID {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "You cannot chat with yourself about your own car"})
			return
		}
	}

	roomID, err := websocket.DeriveRoomID(car.ID.String(), buyerID, sellerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ChatRoomResponse{
		Success:  true,
		RoomID:   roomID,
		CarID:    car.ID.String(),
		BuyerID:  buyerID,
		SellerID: sellerID,
		Online:   h.hub.Members(roomID),
	})
}

// GetRoom показывает, кто сейчас в комнате. Доступно только её участникам.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := middleware.CurrentUserID(c).String()
	roomID := c.Param("roomId")

	carID, buyerID, sellerID, ok := websocket.RoomParticipants(roomID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid room id"})
		return
	}

	// Проверяем, что пользователь участник переписки
	if userID != buyerID && userID != sellerID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "you are not a member of this room"})
		return
	}

	c.JSON(http.StatusOK, dto.ChatRoomResponse{
		Success:  true,
		RoomID:   roomID,
		CarID:    carID,
		BuyerID:  buyerID,
		SellerID: sellerID,
		Online:   h.hub.Members(roomID),
	})
}
