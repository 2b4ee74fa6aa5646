package websocket

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-redis/redis/v8"
)

const bridgeChannelPrefix = "chat:room:"

// RedisBridge раздаёт сообщения комнат между инстансами через Redis pub/sub.
// Каждый инстанс публикует в chat:room:<roomID> и доставляет своим
// локальным подписчикам всё, что пришло по шаблону chat:room:*.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
	log *slog.Logger
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, log *slog.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub, log: log}
}

func (b *RedisBridge) Publish(ctx context.Context, roomID string, frame []byte) error {
	return b.rdb.Publish(ctx, bridgeChannelPrefix+roomID, frame).Err()
}

// Run слушает Redis до отмены ctx
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.rdb.PSubscribe(ctx, bridgeChannelPrefix+"*")
	defer pubsub.Close()

	// Дожидаемся подтверждения подписки, иначе первые публикации теряются
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			roomID := strings.TrimPrefix(msg.Channel, bridgeChannelPrefix)
			n := b.hub.Deliver(roomID, []byte(msg.Payload))
			b.log.Debug("bridged message delivered", "room", roomID, "deliveries", n)
		}
	}
}
