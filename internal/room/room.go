package room

import (
	"time"

	"link-cable/internal/shared"
)

// Player is a seated occupant. The handle is only ever written to.
type Player struct {
	ID        string
	Character *uint8
	Seat      int
	handle    Handle
}

// Room is an ordered list of seats plus the players sitting in them.
// An empty string in Seats marks a vacated seat; seats are never removed.
type Room struct {
	Code      string
	Seats     []string
	Players   map[string]*Player
	CreatedAt time.Time
}

type Store interface {
	GetRoom(code string) (*Room, bool)
	SaveRoom(r *Room)
	ListRooms() []*Room
}

func newRoom(code string) *Room {
	return &Room{
		Code:      code,
		Players:   map[string]*Player{},
		CreatedAt: time.Now(),
	}
}

// openSeat returns the lowest vacant seat index, or len(Seats) when every seat is taken.
func (r *Room) openSeat() int {
	for i, id := range r.Seats {
		if id == "" {
			return i
		}
	}
	return len(r.Seats)
}

func (r *Room) seat(p *Player) {
	if p.Seat == len(r.Seats) {
		r.Seats = append(r.Seats, p.ID)
	} else {
		r.Seats[p.Seat] = p.ID
	}
	r.Players[p.ID] = p
}

func (r *Room) vacate(id string) (*Player, bool) {
	p, ok := r.Players[id]
	if !ok {
		return nil, false
	}
	delete(r.Players, id)
	if p.Seat < len(r.Seats) && r.Seats[p.Seat] == id {
		r.Seats[p.Seat] = ""
	}
	return p, true
}

func (p *Player) wire() *shared.Player {
	out := &shared.Player{ID: p.ID, I: p.Seat}
	if p.Character != nil {
		c := *p.Character
		out.C = &c
	}
	return out
}

// Snapshot lists every seat in order, nil for vacant ones.
func (r *Room) Snapshot() shared.RoomMsg {
	players := make([]*shared.Player, len(r.Seats))
	for i, id := range r.Seats {
		if p, ok := r.Players[id]; ok && id != "" {
			players[i] = p.wire()
		}
	}
	return shared.RoomMsg{Code: r.Code, Players: players}
}

// Occupants returns the number of seated players.
func (r *Room) Occupants() int { return len(r.Players) }
