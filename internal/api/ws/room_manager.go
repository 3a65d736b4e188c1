package ws

import (
	"link-cable/internal/room"
	"link-cable/internal/shared"
)

// RoomManager is the slice of room.Manager a socket session drives.
type RoomManager interface {
	CreateRoom(h room.Handle) (code string, seat int, playerID string)
	JoinRoom(h room.Handle, code string) (playerID string, seat int, ok bool)
	Disconnect(playerID, code string)
	RelayToRoom(senderID, code string, msg shared.Response)
	Choose(senderID, code string, c uint8)
}

var _ RoomManager = (*room.Manager)(nil)
