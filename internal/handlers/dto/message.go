package dto

import (
	ws "github.com/thereayou/automart/internal/websocket"
)

// ChatRoomResponse комната переписки покупателя с продавцом по объявлению
type ChatRoomResponse struct {
	Success  bool        `json:"success"`
	RoomID   string      `json:"roomId"`
	CarID    string      `json:"carId"`
	BuyerID  string      `json:"buyerId"`
	SellerID string      `json:"sellerId"`
	Online   []ws.Member `json:"online"`
}

// AssistantRequest вопрос консультанту
type AssistantRequest struct {
	Message string `json:"message" binding:"required"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" binding:"required"`
}
