package websocket

import (
	"encoding/json"
	"time"
)

// EventType определяет типы событий чата
type EventType string

const (
	// Входящие от клиента
	EventJoinRoom    EventType = "joinRoom"
	EventSendMessage EventType = "sendMessage"
	EventLeaveRoom   EventType = "leaveRoom"

	// Исходящие к клиенту
	EventUserJoined     EventType = "userJoined"
	EventReceiveMessage EventType = "receiveMessage"
	EventUserLeft       EventType = "userLeft"
)

// SystemSenderID помечает синтетические уведомления о входе и выходе
const SystemSenderID = "system"

// Envelope кадр WebSocket. Исходящие кадры всегда несут roomId.
type Envelope struct {
	Type      EventType       `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type JoinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type LeavePayload = JoinPayload

type SendPayload struct {
	RoomID     string `json:"roomId"`
	Message    string `json:"message"`
	SenderName string `json:"senderName"`
	SenderID   string `json:"senderId"`
}

// ChatMessage неизменяемое сообщение, которое раздаётся участникам комнаты
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Notification системное уведомление userJoined / userLeft
type Notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode упаковывает payload в кадр
func Encode(eventType EventType, roomID string, payload interface{}) ([]byte, error) {
	env := Envelope{
		Type:      eventType,
		RoomID:    roomID,
		Timestamp: time.Now().UTC(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}

	return json.Marshal(env)
}
