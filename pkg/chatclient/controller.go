package chatclient

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	ws "github.com/thereayou/automart/internal/websocket"
)

var (
	ErrMissingIdentity = errors.New("user identity is required to open a chat")
	ErrNoActiveRoom    = errors.New("no active chat room")
	ErrEmptyMessage    = errors.New("message is empty")
)

// Identity пользователь, от имени которого открыт чат
type Identity struct {
	UserID string
	Name   string
}

// Controller держит не больше одной активной комнаты. При смене комнаты
// сначала выходит из прежней, затем очищает ленту и входит в новую.
// События чужих комнат в ленту не попадают.
type Controller struct {
	transport Transport
	me        Identity

	mu       sync.Mutex
	active   string
	messages []ws.ChatMessage
}

func NewController(transport Transport, me Identity) *Controller {
	return &Controller{transport: transport, me: me}
}

// Open открывает переписку по объявлению и возвращает id комнаты.
// Повторный Open той же комнаты ничего не меняет.
func (c *Controller) Open(carID, buyerID, sellerID string) (string, error) {
	if c.me.UserID == "" || c.me.Name == "" {
		return "", ErrMissingIdentity
	}

	roomID, err := ws.DeriveRoomID(carID, buyerID, sellerID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if roomID == c.active {
		return roomID, nil
	}

	if c.active != "" {
		if err := c.transport.Emit(ws.EventLeaveRoom, ws.LeavePayload{RoomID: c.active, UserName: c.me.Name}); err != nil {
			return "", err
		}
	}

	c.active = roomID
	c.messages = nil

	if err := c.transport.Emit(ws.EventJoinRoom, ws.JoinPayload{RoomID: roomID, UserName: c.me.Name}); err != nil {
		c.active = ""
		return "", err
	}
	return roomID, nil
}

// Close выходит из активной комнаты
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == "" {
		return nil
	}
	roomID := c.active
	c.active = ""
	c.messages = nil

	return c.transport.Emit(ws.EventLeaveRoom, ws.LeavePayload{RoomID: roomID, UserName: c.me.Name})
}

// Send отправляет сообщение в активную комнату. В ленту оно попадает,
// когда сервер раздаст его обратно.
func (c *Controller) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	roomID := c.active
	c.mu.Unlock()

	if roomID == "" {
		return ErrNoActiveRoom
	}

	return c.transport.Emit(ws.EventSendMessage, ws.SendPayload{
		RoomID:     roomID,
		Message:    text,
		SenderName: c.me.Name,
		SenderID:   c.me.UserID,
	})
}

// HandleEvent добавляет входящее событие в ленту, если оно относится к
// активной комнате
func (c *Controller) HandleEvent(env ws.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == "" || env.RoomID != c.active {
		return
	}

	switch env.Type {
	case ws.EventReceiveMessage:
		var msg ws.ChatMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return
		}
		c.messages = append(c.messages, msg)

	case ws.EventUserJoined, ws.EventUserLeft:
		var n ws.Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return
		}
		c.messages = append(c.messages, ws.ChatMessage{
			Text:      n.Message,
			SenderID:  ws.SystemSenderID,
			CreatedAt: n.Timestamp,
		})
	}
}

func (c *Controller) ActiveRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Messages копия ленты активной комнаты
func (c *Controller) Messages() []ws.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ws.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
