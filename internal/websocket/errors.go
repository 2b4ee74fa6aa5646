package websocket

import "errors"

var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrMissingIdentifier = errors.New("missing identifier for room id")
	ErrUserNotInRoom     = errors.New("user not in room")
)
