package http

import (
	"net/http"

	"link-cable/internal/shared"

	"github.com/gin-gonic/gin"
)

// Rooms is what the HTTP API needs from room.Manager. Only the announce handlers mutate anything,
// and they only push alerts.
type Rooms interface {
	Codes() []string
	Snapshot(code string) (shared.RoomMsg, bool)
	BroadcastAll(text string)
	BroadcastRoom(code, text string)
}

// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func UpHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	}
}

// @Summary List rooms
// @Description Returns the codes of every active room
// @Tags Room
// @Produce json
// @Success 200 {object} RoomListResponse
// @Router /rooms [get]
func ListRoomsHandler(rm Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RoomListResponse{Rooms: rm.Codes()})
	}
}

// @Summary Get room
// @Description Returns the seat-ordered snapshot of one room
// @Tags Room
// @Produce json
// @Param code path string true "Room Code"
// @Success 200 {object} RoomResponse
// @Router /rooms/{code} [get]
func GetRoomHandler(rm Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, ok := rm.Snapshot(c.Param("code"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, RoomResponse{Code: snap.Code, Players: snap.Players})
	}
}

// @Summary Announce to everyone
// @Description Sends an alert to every player in every room
// @Tags Room
// @Accept json
// @Produce json
// @Param request body AnnounceRequest true "Announcement"
// @Success 202 {object} map[string]interface{}
// @Router /rooms/announce [post]
func AnnounceHandler(rm Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnnounceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}
		rm.BroadcastAll(req.Message)
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	}
}

// @Summary Announce to one room
// @Description Sends an alert to every player in the room
// @Tags Room
// @Accept json
// @Produce json
// @Param code path string true "Room Code"
// @Param request body AnnounceRequest true "Announcement"
// @Success 202 {object} map[string]interface{}
// @Router /rooms/{code}/announce [post]
func AnnounceRoomHandler(rm Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnnounceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}
		code := c.Param("code")
		if _, ok := rm.Snapshot(code); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		rm.BroadcastRoom(code, req.Message)
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	}
}
