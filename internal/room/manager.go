package room

import (
	"log/slog"
	"sort"
	"sync"

	"link-cable/internal/config"
	"link-cable/internal/shared"
	"link-cable/pkg/metrics"
)

// Manager is the single owner of every room. Each exported method holds mu for its
// whole duration, so no two operations ever observe a half-applied change.
type Manager struct {
	mu    sync.Mutex
	store Store
	cfg   config.Config
	gen   Generator
	log   *slog.Logger
}

func NewManager(s Store, cfg config.Config, logger *slog.Logger) *Manager {
	return &Manager{store: s, cfg: cfg, gen: newDefaultGenerator(), log: logger}
}

// SetGenerator swaps the code and id source.
func (m *Manager) SetGenerator(g Generator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen = g
}

func (m *Manager) send(h Handle, msg shared.Response) {
	metrics.EventsSent.WithLabelValues(msg.Cmd()).Inc()
	h.Deliver(msg)
}

func (m *Manager) newCode() string {
	code := m.gen.RoomCode()
	for i := 0; i < m.cfg.Room.CodeRetries; i++ {
		if _, taken := m.store.GetRoom(code); !taken {
			break
		}
		code = m.gen.RoomCode()
	}
	return code
}

func (m *Manager) newPlayerID(r *Room) string {
	id := m.gen.PlayerID()
	for i := 0; i < m.cfg.Room.CodeRetries; i++ {
		if _, taken := r.Players[id]; !taken {
			break
		}
		id = m.gen.PlayerID()
	}
	return id
}

// CreateRoom opens a room with the requester at seat 0 and sends it "you" then "room".
func (m *Manager) CreateRoom(h Handle) (code string, seat int, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := newRoom(m.newCode())
	p := &Player{ID: m.newPlayerID(r), Seat: 0, handle: h}
	r.seat(p)
	m.store.SaveRoom(r)
	metrics.RoomsCreated.Inc()
	metrics.PlayersSeated.Inc()

	m.send(h, shared.YouMsg{Player: *p.wire()})
	m.send(h, r.Snapshot())

	m.log.Info("room.created", "code", r.Code, "player", p.ID)
	return r.Code, p.Seat, p.ID
}

// JoinRoom seats the requester at the lowest vacant seat of code. An unknown code is
// answered with an empty snapshot and ok=false.
func (m *Manager) JoinRoom(h Handle, code string) (playerID string, seat int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.store.GetRoom(code)
	if !found {
		m.log.Debug("room.join.missing", "code", code)
		m.send(h, shared.RoomMsg{})
		return "", 0, false
	}

	p := &Player{ID: m.newPlayerID(r), Seat: r.openSeat(), handle: h}
	announce := shared.PlayerMsg{Player: *p.wire()}
	for _, id := range r.Seats {
		if other, seated := r.Players[id]; seated && id != "" {
			m.send(other.handle, announce)
		}
	}

	r.seat(p)
	metrics.PlayersSeated.Inc()

	m.send(h, shared.YouMsg{Player: *p.wire()})
	m.send(h, r.Snapshot())

	m.log.Info("room.joined", "code", code, "player", p.ID, "seat", p.Seat)
	return p.ID, p.Seat, true
}

// Disconnect vacates the player's seat and tells the remaining occupants.
func (m *Manager) Disconnect(playerID, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.store.GetRoom(code)
	if !found {
		return
	}
	p, seated := r.vacate(playerID)
	if !seated {
		return
	}
	metrics.PlayersSeated.Dec()

	m.relayLocked(r, "", shared.PlayerMsg{Player: shared.Player{ID: p.ID, I: shared.VacatedSeat}})
	m.log.Info("room.left", "code", code, "player", playerID, "seat", p.Seat, "remaining", r.Occupants())
}

// BroadcastAll sends an alert to every occupant of every room.
func (m *Manager) BroadcastAll(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := shared.AlertMsg{Msg: text}
	for _, r := range m.store.ListRooms() {
		m.relayLocked(r, "", msg)
	}
}

// BroadcastRoom sends an alert to every occupant of one room.
func (m *Manager) BroadcastRoom(code, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, found := m.store.GetRoom(code); found {
		m.relayLocked(r, "", shared.AlertMsg{Msg: text})
	}
}

// RelayToRoom forwards msg unchanged to everyone in code except senderID. A sender
// without a seat in code is ignored.
func (m *Manager) RelayToRoom(senderID, code string, msg shared.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.store.GetRoom(code)
	if !found {
		return
	}
	if _, seated := r.Players[senderID]; !seated {
		m.log.Debug("room.relay.unseated", "code", code, "player", senderID, "cmd", msg.Cmd())
		return
	}
	m.relayLocked(r, senderID, msg)
}

// Choose records the sender's character and relays it as a player event.
func (m *Manager) Choose(senderID, code string, c uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.store.GetRoom(code)
	if !found {
		return
	}
	p, seated := r.Players[senderID]
	if !seated {
		return
	}
	p.Character = &c
	m.relayLocked(r, senderID, shared.PlayerMsg{Player: *p.wire()})
}

func (m *Manager) relayLocked(r *Room, except string, msg shared.Response) {
	for _, id := range r.Seats {
		if id == "" || id == except {
			continue
		}
		if p, ok := r.Players[id]; ok {
			m.send(p.handle, msg)
		}
	}
}

// Snapshot returns a read-only view of one room.
func (m *Manager) Snapshot(code string) (shared.RoomMsg, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.store.GetRoom(code)
	if !found {
		return shared.RoomMsg{}, false
	}
	return r.Snapshot(), true
}

// Codes lists active room codes in lexical order.
func (m *Manager) Codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := m.store.ListRooms()
	codes := make([]string, 0, len(rooms))
	for _, r := range rooms {
		codes = append(codes, r.Code)
	}
	sort.Strings(codes)
	return codes
}
