package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher раздаёт кадр комнаты всем инстансам сервера (мост Redis).
// Без него Relay доставляет только локальным подписчикам.
type Publisher interface {
	Publish(ctx context.Context, roomID string, frame []byte) error
}

// Member участник комнаты: соединение и отображаемое имя
type Member struct {
	ClientID    uuid.UUID `json:"clientId"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// Подписчики комнат: roomID -> clientID -> client
	rooms map[string]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	publisher Publisher
	log       *slog.Logger

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub(log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		rooms:      make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetPublisher включает доставку сообщений через внешний pub/sub
func (h *Hub) SetPublisher(p Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publisher = p
}

// Run запускает hub
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[uuid.UUID]*Client)
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	h.log.Debug("client registered", "client", client.ID, "user", client.UserID)
}

// unregisterClient убирает соединение из всех его комнат без уведомления
// остальных участников: обрыв связи не отличить от ухода.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, roomID := range client.RoomIDs() {
		h.removeFromRoomUnsafe(client, roomID, "", false)
	}

	delete(h.clients, client.ID)
	close(client.Send)

	h.log.Debug("client unregistered", "client", client.ID, "user", client.UserID)
}

// JoinRoom добавляет клиента в комнату. Повторный вход ничего не делает
// и возвращает false.
func (h *Hub) JoinRoom(client *Client, roomID, userName string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return false
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}

	if _, ok := h.rooms[roomID][client.ID]; ok {
		return false
	}

	h.rooms[roomID][client.ID] = client
	client.addRoom(roomID, userName)

	h.log.Debug("joined room", "room", roomID, "user", userName)

	// Уведомляем других участников о присоединении
	h.notifyUnsafe(EventUserJoined, roomID, fmt.Sprintf("%s joined the chat", userName), client.ID)

	return true
}

// LeaveRoom удаляет клиента из комнаты. Для не-участника это no-op.
func (h *Hub) LeaveRoom(client *Client, roomID, userName string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.removeFromRoomUnsafe(client, roomID, userName, true)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID, userName string, notify bool) bool {
	room, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := room[client.ID]; !ok {
		return false
	}

	delete(room, client.ID)
	name := client.removeRoom(roomID)
	if userName == "" {
		userName = name
	}

	if len(room) == 0 {
		delete(h.rooms, roomID)
		return true
	}

	if notify {
		h.log.Debug("left room", "room", roomID, "user", userName)
		h.notifyUnsafe(EventUserLeft, roomID, fmt.Sprintf("%s left the chat", userName), client.ID)
	}
	return true
}

func (h *Hub) notifyUnsafe(eventType EventType, roomID, text string, exclude uuid.UUID) {
	frame, err := Encode(eventType, roomID, Notification{
		Message:   text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.Warn("encode notification", "err", err)
		return
	}
	h.broadcastToRoomExcept(roomID, frame, exclude)
}

// Relay ставит серверный id и время, затем раздаёт сообщение всем текущим
// участникам комнаты, включая отправителя. В пустой комнате сообщение
// просто никому не доставляется.
func (h *Hub) Relay(roomID, text, senderName, senderID string) (ChatMessage, error) {
	msg := ChatMessage{
		ID:         uuid.NewString(),
		Text:       text,
		SenderID:   senderID,
		SenderName: senderName,
		CreatedAt:  time.Now().UTC(),
	}

	frame, err := Encode(EventReceiveMessage, roomID, msg)
	if err != nil {
		return ChatMessage{}, err
	}

	h.mu.RLock()
	publisher := h.publisher
	h.mu.RUnlock()

	if publisher != nil {
		err := publisher.Publish(h.ctx, roomID, frame)
		if err == nil {
			return msg, nil
		}
		h.log.Warn("publish failed, delivering locally", "room", roomID, "err", err)
	}

	h.Deliver(roomID, frame)
	return msg, nil
}

// Deliver раздаёт готовый кадр локальным подписчикам комнаты и
// возвращает число доставок
func (h *Hub) Deliver(roomID string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.broadcastToRoomExcept(roomID, frame, uuid.Nil)
}

func (h *Hub) broadcastToRoomExcept(roomID string, message []byte, excludeID uuid.UUID) int {
	delivered := 0
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID == excludeID {
				continue
			}
			select {
			case client.Send <- message:
				delivered++
			default:
				h.log.Warn("client send channel full", "client", client.ID, "room", roomID)
			}
		}
	}
	return delivered
}

// IsMember сообщает, подписано ли соединение на комнату
func (h *Hub) IsMember(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.rooms[roomID][client.ID]
	return ok
}

// RoomSize возвращает число соединений в комнате
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}

// Members возвращает участников комнаты
func (h *Hub) Members(roomID string) []Member {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]Member, 0, len(h.rooms[roomID]))
	for _, client := range h.rooms[roomID] {
		members = append(members, Member{
			ClientID:    client.ID,
			UserID:      client.UserID,
			DisplayName: client.DisplayName(roomID),
		})
	}
	return members
}

// ClientCount возвращает число зарегистрированных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
