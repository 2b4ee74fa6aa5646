package websocket

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер кадра
	maxMessageSize = 64 * 1024

	sendQueueSize = 256
)

// Client одно WebSocket-соединение. Один пользователь может держать
// несколько соединений, соединение может состоять в нескольких комнатах.
type Client struct {
	ID     uuid.UUID
	UserID string
	Name   string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	// roomID -> отображаемое имя в этой комнате
	rooms map[string]string
	mu    sync.RWMutex
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, name string) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Conn:   conn,
		Send:   make(chan []byte, sendQueueSize),
		Hub:    hub,
		rooms:  make(map[string]string),
	}
}

// ReadPump читает кадры от клиента и исполняет события чата
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read error", "client", c.ID, "err", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.Hub.log.Warn("malformed frame", "client", c.ID, "err", err)
			continue
		}

		if err := c.Handle(env); err != nil {
			c.Hub.log.Warn("event dropped", "client", c.ID, "type", env.Type, "err", err)
		}
	}
}

// Handle исполняет одно входящее событие. Ошибки клиенту не отправляются.
func (c *Client) Handle(env Envelope) error {
	switch env.Type {
	case EventJoinRoom, EventLeaveRoom:
		var payload JoinPayload
		if err := decodePayload(env, &payload); err != nil {
			return err
		}
		if payload.RoomID == "" {
			payload.RoomID = env.RoomID
		}
		if payload.RoomID == "" {
			return ErrInvalidMessage
		}
		if payload.UserName == "" {
			payload.UserName = c.Name
		}

		if env.Type == EventJoinRoom {
			c.Hub.JoinRoom(c, payload.RoomID, payload.UserName)
		} else {
			c.Hub.LeaveRoom(c, payload.RoomID, payload.UserName)
		}
		return nil

	case EventSendMessage:
		var payload SendPayload
		if err := decodePayload(env, &payload); err != nil {
			return err
		}
		if payload.RoomID == "" {
			payload.RoomID = env.RoomID
		}
		if payload.RoomID == "" || strings.TrimSpace(payload.Message) == "" {
			return ErrInvalidMessage
		}
		if !c.Hub.IsMember(c, payload.RoomID) {
			return ErrUserNotInRoom
		}

		senderName := payload.SenderName
		if senderName == "" {
			senderName = c.DisplayName(payload.RoomID)
		}

		// senderId берём из аутентифицированного соединения
		_, err := c.Hub.Relay(payload.RoomID, payload.Message, senderName, c.UserID)
		return err

	default:
		return ErrInvalidMessage
	}
}

func decodePayload(env Envelope, v interface{}) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return ErrInvalidMessage
	}
	return nil
}

// WritePump отправляет кадры клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) addRoom(roomID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = name
}

func (c *Client) removeRoom(roomID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := c.rooms[roomID]
	delete(c.rooms, roomID)
	return name
}

// DisplayName возвращает имя, под которым соединение вошло в комнату
func (c *Client) DisplayName(roomID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.rooms[roomID]; ok && name != "" {
		return name
	}
	return c.Name
}

func (c *Client) IsInRoom(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

func (c *Client) RoomIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}
