package http

import (
	"log/slog"
	"net/http"
	"time"

	"link-cable/internal/api/ws"
	"link-cable/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// NewRouter builds the API engine: health, metrics, room listing and announcements.
func NewRouter(rm Rooms, hub SessionCounter, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	status := NewStatusHandler(rm, hub)

	// --- HEALTH ---
	r.GET("/", UpHandler())
	r.GET("/healthz", status.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// --- ROOM ENDPOINTS ---
	r.GET("/rooms", ListRoomsHandler(rm))
	r.GET("/rooms/:code", GetRoomHandler(rm))
	r.POST("/rooms/announce", AnnounceHandler(rm))
	r.POST("/rooms/:code/announce", AnnounceRoomHandler(rm))

	return r
}

// NewSocketRouter serves websocket upgrades on every path; the path names the room to join.
func NewSocketRouter(hub *ws.Hub, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.GET("/*code", hub.HandleWS)
	return r
}

// WithCORS wraps the API engine with the configured origin allowlist.
func WithCORS(h http.Handler, allowed []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(h)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
