package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"link-cable/internal/config"
)

// Hub upgrades socket requests into sessions and keeps track of the live ones.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	rooms    RoomManager
	cfg      config.Session
	log      *slog.Logger
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(rooms RoomManager, cfg config.Session, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    rooms,
		cfg:      cfg,
		log:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// HandleWS serves one socket. The room code is the first path segment (/abcd) or ?code=.
func (h *Hub) HandleWS(c *gin.Context) {
	code, _, _ := strings.Cut(strings.TrimPrefix(c.Param("code"), "/"), "/")
	if code == "" {
		code = c.Query("code")
	}

	select {
	case <-h.ctx.Done():
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws.upgrade", "err", err)
		return
	}

	s := newSession(h.ctx, uuid.NewString(), conn, h.rooms, h.cfg, h.log)
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.sessions, s.id)
		h.mu.Unlock()
	}()

	s.Run(code)
}

// Len reports the number of open sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close stops every session and refuses new ones.
func (h *Hub) Close() {
	h.cancel()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.Stop()
	}
	h.log.Info("ws.hub.closed", "sessions", len(h.sessions))
}
