package websocket

import (
	"fmt"
	"strings"
)

const roomIDSeparator = "_"

// DeriveRoomID строит id комнаты переписки покупателя и продавца по объявлению.
// Порядок buyer/seller не сортируется: у каждого покупателя своя комната
// с тем же продавцом по тому же объявлению.
func DeriveRoomID(listingID, buyerID, sellerID string) (string, error) {
	switch {
	case listingID == "":
		return "", fmt.Errorf("%w: listing id", ErrMissingIdentifier)
	case buyerID == "":
		return "", fmt.Errorf("%w: buyer id", ErrMissingIdentifier)
	case sellerID == "":
		return "", fmt.Errorf("%w: seller id", ErrMissingIdentifier)
	}
	return listingID + roomIDSeparator + buyerID + roomIDSeparator + sellerID, nil
}

// RoomParticipants разбирает id комнаты обратно на составляющие.
// Работает только для id без "_" внутри (uuid объявлений и пользователей).
func RoomParticipants(roomID string) (listingID, buyerID, sellerID string, ok bool) {
	parts := strings.Split(roomID, roomIDSeparator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
