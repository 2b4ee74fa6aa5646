package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	ws "github.com/thereayou/automart/internal/websocket"
)

const writeWait = 10 * time.Second

var ErrSessionClosed = errors.New("chat session is closed")

// Transport отправляет события чата на сервер
type Transport interface {
	Emit(eventType ws.EventType, payload interface{}) error
}

// Session одно WebSocket-соединение клиента с явным жизненным циклом:
// Dial открывает, Close закрывает. Глобального соединения нет.
type Session struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// Dial подключается к /ws, токен передаётся в query-параметре
func Dial(ctx context.Context, endpoint, token string) (*Session, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("chat endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("chat dial: %w", err)
	}
	return &Session{conn: conn}, nil
}

func (s *Session) Emit(eventType ws.EventType, payload interface{}) error {
	frame, err := ws.Encode(eventType, "", payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Listen читает кадры и передаёт их handler, пока соединение открыто.
// Нераспознанные кадры пропускаются.
func (s *Session) Listen(handler func(ws.Envelope)) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}

		var env ws.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		handler(env)
	}
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
