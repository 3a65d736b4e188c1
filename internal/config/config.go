package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session tunes per-connection behavior.
type Session struct {
	HeartbeatInterval time.Duration
	ClientTimeout     time.Duration
	WriteWait         time.Duration
	SendBuffer        int
	MaxMessageSize    int64
	// LeaveOnRejoin vacates the current seat before joining another room.
	LeaveOnRejoin bool
}

type Room struct {
	// CodeRetries > 0 regenerates room codes and player ids that are already taken.
	// Zero keeps generation unchecked.
	CodeRetries int
}

type Config struct {
	Env       string
	HTTPAddr  string
	WSAddr    string
	CORSAllow []string

	Session Session
	Room    Room
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	return Config{
		Env:       "dev",
		HTTPAddr:  ":8080",
		WSAddr:    ":12345",
		CORSAllow: []string{"*"},
		Session: Session{
			HeartbeatInterval: 5 * time.Second,
			ClientTimeout:     10 * time.Second,
			WriteWait:         10 * time.Second,
			SendBuffer:        64,
			MaxMessageSize:    64 << 10,
			LeaveOnRejoin:     true,
		},
	}
}

func Load() Config {
	def := Default()
	return Config{
		Env:       getenv("APP_ENV", def.Env),
		HTTPAddr:  getenv("HTTP_ADDR", def.HTTPAddr),
		WSAddr:    getenv("WS_ADDR", def.WSAddr),
		CORSAllow: splitCSV(getenv("CORS_ALLOW", strings.Join(def.CORSAllow, ","))),
		Session: Session{
			HeartbeatInterval: getenvDuration("HEARTBEAT_INTERVAL", def.Session.HeartbeatInterval),
			ClientTimeout:     getenvDuration("CLIENT_TIMEOUT", def.Session.ClientTimeout),
			WriteWait:         getenvDuration("WRITE_WAIT", def.Session.WriteWait),
			SendBuffer:        getenvInt("SEND_BUFFER", def.Session.SendBuffer),
			MaxMessageSize:    int64(getenvInt("MAX_MESSAGE_SIZE", int(def.Session.MaxMessageSize))),
			LeaveOnRejoin:     getenvBool("LEAVE_ON_REJOIN", def.Session.LeaveOnRejoin),
		},
		Room: Room{
			CodeRetries: getenvInt("ROOM_CODE_RETRIES", def.Room.CodeRetries),
		},
	}
}

var (
	ErrHeartbeatInterval = errors.New("heartbeat interval must be positive")
	ErrClientTimeout     = errors.New("client timeout must exceed heartbeat interval")
	ErrSendBuffer        = errors.New("send buffer must be positive")
)

func (c Config) Validate() error {
	s := c.Session
	switch {
	case s.HeartbeatInterval <= 0:
		return ErrHeartbeatInterval
	case s.ClientTimeout <= s.HeartbeatInterval:
		return ErrClientTimeout
	case s.SendBuffer <= 0:
		return ErrSendBuffer
	}
	if c.Room.CodeRetries < 0 {
		return errors.New("room code retries must not be negative")
	}
	return nil
}
