package http

import "link-cable/internal/shared"

// AnnounceRequest is the payload for /rooms/announce and /rooms/:code/announce.
type AnnounceRequest struct {
	Message string `json:"message" binding:"required"`
}

// RoomListResponse lists active room codes.
type RoomListResponse struct {
	Rooms []string `json:"rooms"`
}

// RoomResponse is a seat-ordered snapshot; vacant seats are null.
type RoomResponse struct {
	Code    string           `json:"code"`
	Players []*shared.Player `json:"players"`
}

// StatusResponse is returned by /healthz.
type StatusResponse struct {
	Status   string `json:"status"`
	Rooms    int    `json:"rooms"`
	Sessions int    `json:"sessions"`
}
