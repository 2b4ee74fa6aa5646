package chatclient

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/automart/internal/handlers"
	"github.com/thereayou/automart/internal/middleware"
	ws "github.com/thereayou/automart/internal/websocket"
	"github.com/thereayou/automart/pkg/auth"
)

type noBlacklist struct{}

func (noBlacklist) Revoke(context.Context, string, time.Duration) error { return nil }
func (noBlacklist) IsRevoked(context.Context, string) (bool, error)     { return false, nil }

type chatEnv struct {
	url string
	jwt *auth.JWTManager
	hub *ws.Hub
}

func setupChat(t *testing.T) *chatEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	hub := ws.NewHub(log)
	go hub.Run()
	t.Cleanup(hub.Stop)

	r := gin.New()
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, noBlacklist{}), handlers.NewWebSocketHandler(hub, nil, log).HandleWebSocket)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &chatEnv{
		url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		jwt: jwtMgr,
		hub: hub,
	}
}

type participant struct {
	id         string
	session    *Session
	controller *Controller
}

func (e *chatEnv) connect(t *testing.T, name string) *participant {
	t.Helper()
	id := uuid.NewString()
	token, err := e.jwt.Generate(id, name)
	require.NoError(t, err)

	s, err := Dial(context.Background(), e.url, token)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := NewController(s, Identity{UserID: id, Name: name})
	go s.Listen(c.HandleEvent)

	return &participant{id: id, session: s, controller: c}
}

func (e *chatEnv) waitRoomSize(t *testing.T, roomID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return e.hub.RoomSize(roomID) == n }, 2*time.Second, 5*time.Millisecond)
}

func texts(msgs []ws.ChatMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func TestDial_RejectsBadToken(t *testing.T) {
	env := setupChat(t)
	_, err := Dial(context.Background(), env.url, "garbage")
	assert.Error(t, err)
}

func TestSession_BuyersStayIsolated(t *testing.T) {
	env := setupChat(t)
	seller := env.connect(t, "Seller")
	b1 := env.connect(t, "B1")
	b2 := env.connect(t, "B2")

	room1, err := seller.controller.Open("car1", b1.id, seller.id)
	require.NoError(t, err)
	env.waitRoomSize(t, room1, 1)

	_, err = b1.controller.Open("car1", b1.id, seller.id)
	require.NoError(t, err)
	env.waitRoomSize(t, room1, 2)

	require.NoError(t, b1.controller.Send("is it available?"))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"B1 joined the chat", "is it available?"}, texts(seller.controller.Messages()))
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"is it available?"}, texts(b1.controller.Messages()))
	}, 2*time.Second, 10*time.Millisecond)

	msgs := b1.controller.Messages()
	assert.Equal(t, b1.id, msgs[0].SenderID)
	assert.NotEmpty(t, msgs[0].ID)

	// B2 открывает свою комнату по тому же объявлению
	room2, err := b2.controller.Open("car1", b2.id, seller.id)
	require.NoError(t, err)
	assert.NotEqual(t, room1, room2)
	env.waitRoomSize(t, room2, 1)

	_, err = seller.controller.Open("car1", b2.id, seller.id)
	require.NoError(t, err)
	env.waitRoomSize(t, room1, 1)
	env.waitRoomSize(t, room2, 2)

	require.NoError(t, b1.controller.Send("hello?"))
	require.NoError(t, b2.controller.Send("price?"))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"price?"}, texts(seller.controller.Messages()))
	}, 2*time.Second, 10*time.Millisecond)

	// B1 видит выход продавца и своё второе сообщение, но не переписку B2
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"is it available?", "Seller left the chat", "hello?"}, texts(b1.controller.Messages()))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	env := setupChat(t)
	p := env.connect(t, "Buyer")

	require.NoError(t, p.session.Close())
	require.NoError(t, p.session.Close())
	assert.ErrorIs(t, p.session.Emit(ws.EventJoinRoom, ws.JoinPayload{RoomID: "r"}), ErrSessionClosed)
}
