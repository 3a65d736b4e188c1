package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCounter reports live socket sessions.
type SessionCounter interface {
	Len() int
}

type StatusHandler struct {
	rooms    Rooms
	sessions SessionCounter
}

func NewStatusHandler(rm Rooms, sessions SessionCounter) *StatusHandler {
	return &StatusHandler{
		rooms:    rm,
		sessions: sessions,
	}
}

// Healthz reports room and session counts
// @Summary Health
// @Tags Health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (h *StatusHandler) Healthz(c *gin.Context) {
	resp := StatusResponse{Status: "ok", Rooms: len(h.rooms.Codes())}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	c.JSON(http.StatusOK, resp)
}
