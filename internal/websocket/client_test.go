package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, eventType EventType, roomID string, payload interface{}) Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{Type: eventType, RoomID: roomID, Data: data}
}

func TestHandle_JoinAndSend(t *testing.T) {
	hub := newTestHub(t)
	seller := newTestClient(hub, "u2", "Seller")
	buyer := newTestClient(hub, "u1", "Buyer")

	require.NoError(t, seller.Handle(envelope(t, EventJoinRoom, "", JoinPayload{RoomID: "r", UserName: "Seller"})))
	require.NoError(t, buyer.Handle(envelope(t, EventJoinRoom, "", JoinPayload{RoomID: "r", UserName: "Buyer"})))
	nextFrame(t, seller)

	require.NoError(t, buyer.Handle(envelope(t, EventSendMessage, "", SendPayload{
		RoomID:     "r",
		Message:    "is it still available?",
		SenderName: "Buyer",
		SenderID:   "someone-else",
	})))

	got := decodeMessage(t, nextFrame(t, seller))
	assert.Equal(t, "is it still available?", got.Text)
	assert.Equal(t, "u1", got.SenderID, "sender id comes from the connection")

	assert.Equal(t, got.ID, decodeMessage(t, nextFrame(t, buyer)).ID)
}

func TestHandle_EnvelopeRoomFallback(t *testing.T) {
	hub := newTestHub(t)
	buyer := newTestClient(hub, "u1", "Buyer")

	require.NoError(t, buyer.Handle(envelope(t, EventJoinRoom, "r", JoinPayload{})))
	assert.True(t, buyer.IsInRoom("r"))
	assert.Equal(t, "Buyer", buyer.DisplayName("r"))

	require.NoError(t, buyer.Handle(envelope(t, EventSendMessage, "r", SendPayload{Message: "hi"})))
	got := decodeMessage(t, nextFrame(t, buyer))
	assert.Equal(t, "Buyer", got.SenderName)
}

func TestHandle_SendFromNonMemberDropped(t *testing.T) {
	hub := newTestHub(t)
	seller := newTestClient(hub, "u2", "Seller")
	stranger := newTestClient(hub, "u9", "Stranger")
	hub.JoinRoom(seller, "r", "Seller")

	err := stranger.Handle(envelope(t, EventSendMessage, "", SendPayload{RoomID: "r", Message: "spam"}))
	assert.ErrorIs(t, err, ErrUserNotInRoom)
	assertNoFrame(t, seller)
}

func TestHandle_InvalidFrames(t *testing.T) {
	hub := newTestHub(t)
	c := newTestClient(hub, "u1", "Buyer")
	hub.JoinRoom(c, "r", "Buyer")

	cases := map[string]Envelope{
		"unknown type":  envelope(t, "typing", "r", nil),
		"join no room":  envelope(t, EventJoinRoom, "", JoinPayload{UserName: "Buyer"}),
		"send no room":  envelope(t, EventSendMessage, "", SendPayload{Message: "hi"}),
		"send blank":    envelope(t, EventSendMessage, "r", SendPayload{Message: "   "}),
		"bad payload":   {Type: EventSendMessage, RoomID: "r", Data: json.RawMessage(`"oops"`)},
		"leave no room": envelope(t, EventLeaveRoom, "", JoinPayload{}),
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, c.Handle(env), ErrInvalidMessage)
		})
	}
	assertNoFrame(t, c)
}

// chatServer поднимает WebSocket-эндпоинт поверх hub. Пользователь
// берётся из query-параметров user и name.
func chatServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("user"), r.URL.Query().Get("name"))
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, eventType EventType, payload interface{}) {
	t.Helper()
	frame, err := Encode(eventType, "", payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocket_EndToEnd(t *testing.T) {
	hub := newTestHub(t)
	srv := chatServer(t, hub)

	room, err := DeriveRoomID("car1", "u1", "u2")
	require.NoError(t, err)

	seller := dial(t, srv, "u2", "Seller")
	buyer := dial(t, srv, "u1", "Buyer")

	emit(t, seller, EventJoinRoom, JoinPayload{RoomID: room, UserName: "Seller"})
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	emit(t, buyer, EventJoinRoom, JoinPayload{RoomID: room, UserName: "Buyer"})

	joined := readEnvelope(t, seller)
	assert.Equal(t, EventUserJoined, joined.Type)
	assert.Equal(t, room, joined.RoomID)
	assert.Equal(t, "Buyer joined the chat", decodeNotification(t, joined).Message)

	emit(t, buyer, EventSendMessage, SendPayload{RoomID: room, Message: "hello", SenderName: "Buyer"})

	for _, conn := range []*websocket.Conn{buyer, seller} {
		env := readEnvelope(t, conn)
		require.Equal(t, EventReceiveMessage, env.Type)
		msg := decodeMessage(t, env)
		assert.Equal(t, "hello", msg.Text)
		assert.Equal(t, "u1", msg.SenderID)
	}

	emit(t, buyer, EventLeaveRoom, LeavePayload{RoomID: room, UserName: "Buyer"})
	left := readEnvelope(t, seller)
	assert.Equal(t, EventUserLeft, left.Type)
	assert.Equal(t, "Buyer left the chat", decodeNotification(t, left).Message)
}

func TestWebSocket_DisconnectPrunes(t *testing.T) {
	hub := newTestHub(t)
	srv := chatServer(t, hub)

	seller := dial(t, srv, "u2", "Seller")
	buyer := dial(t, srv, "u1", "Buyer")

	emit(t, seller, EventJoinRoom, JoinPayload{RoomID: "r", UserName: "Seller"})
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 1 }, time.Second, 5*time.Millisecond)
	emit(t, buyer, EventJoinRoom, JoinPayload{RoomID: "r", UserName: "Buyer"})
	readEnvelope(t, seller)

	require.NoError(t, buyer.Close())
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 1 }, 2*time.Second, 10*time.Millisecond)

	// Следующий кадр продавца это его собственное сообщение, а не userLeft
	emit(t, seller, EventSendMessage, SendPayload{RoomID: "r", Message: "still there?"})
	env := readEnvelope(t, seller)
	assert.Equal(t, EventReceiveMessage, env.Type)
}
