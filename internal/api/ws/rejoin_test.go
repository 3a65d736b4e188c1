package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"link-cable/internal/config"
	"link-cable/internal/room"
	"link-cable/internal/shared"
	"link-cable/internal/store"
)

type peer struct {
	mu   sync.Mutex
	msgs []shared.Response
}

func (p *peer) Deliver(msg shared.Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

func (p *peer) take() []shared.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.msgs
	p.msgs = nil
	return out
}

// registrySession is a session wired to a real registry but with no connection or loops;
// queued events are applied by flush.
func registrySession(rm *room.Manager, leaveOnRejoin bool) *Session {
	s := bareSession(16)
	s.rooms = rm
	s.cfg = config.Default().Session
	s.cfg.LeaveOnRejoin = leaveOnRejoin
	return s
}

func flush(s *Session) {
	for {
		select {
		case msg := <-s.out:
			s.apply(msg)
		default:
			return
		}
	}
}

func newRegistry(codes ...string) *room.Manager {
	rm := room.NewManager(store.NewMemoryStore(), config.Default(), discard())
	rm.SetGenerator(&seqGen{codes: codes})
	return rm
}

func TestSignalingDuringRejoinStaysOutOfOldRoom(t *testing.T) {
	rm := newRegistry("aaaa", "bbbb")
	oldRoom, newRoom := &peer{}, &peer{}
	rm.CreateRoom(oldRoom)
	rm.CreateRoom(newRoom)

	s := registrySession(rm, true)
	s.join("aaaa")
	flush(s)
	oldRoom.take()
	newRoom.take()

	// The new room's events are still queued, so the session still believes it is in aaaa.
	s.join("bbbb")
	_, code, _ := s.membership()
	require.Equal(t, "aaaa", code)

	s.relay(shared.OfferMsg{Offer: shared.SessionDescription{Type: "offer", SDP: "x"}})
	s.relay(shared.ICEMsg{})
	s.choose(2)

	assert.Equal(t, []shared.Response{
		shared.PlayerMsg{Player: shared.Player{ID: "p3", I: shared.VacatedSeat}},
	}, oldRoom.take())

	flush(s)
	offer := shared.OfferMsg{Offer: shared.SessionDescription{Type: "offer", SDP: "y"}}
	s.relay(offer)
	assert.Equal(t, []shared.Response{
		shared.PlayerMsg{Player: shared.Player{ID: "p4", I: 1}},
		offer,
	}, newRoom.take())
	assert.Empty(t, oldRoom.take())
}

func TestRepeatedJoinReleasesPendingSeats(t *testing.T) {
	rm := newRegistry("aaaa", "bbbb", "cccc")
	rm.CreateRoom(sink{})
	rm.CreateRoom(sink{})
	rm.CreateRoom(sink{})

	s := registrySession(rm, true)
	s.join("aaaa")
	s.join("bbbb")
	s.join("cccc")
	flush(s)

	id, code, ok := s.membership()
	require.True(t, ok)
	assert.Equal(t, "p6", id)
	assert.Equal(t, "cccc", code)

	for _, c := range []string{"aaaa", "bbbb"} {
		snap, _ := rm.Snapshot(c)
		assert.Nil(t, snap.Players[1], "seat in %s", c)
	}
	snap, _ := rm.Snapshot("cccc")
	assert.Equal(t, &shared.Player{ID: "p6", I: 1}, snap.Players[1])

	s.teardown()
	snap, _ = rm.Snapshot("cccc")
	assert.Nil(t, snap.Players[1])
}

func TestCreateWhileJoinPendingReleasesSeat(t *testing.T) {
	rm := newRegistry("aaaa", "bbbb")
	rm.CreateRoom(sink{})

	s := registrySession(rm, true)
	s.join("aaaa")
	s.create()
	flush(s)

	_, code, ok := s.membership()
	require.True(t, ok)
	assert.Equal(t, "bbbb", code)

	snap, _ := rm.Snapshot("aaaa")
	assert.Nil(t, snap.Players[1])
}

func TestTeardownReleasesEverySeatWhenKeepingOldOnes(t *testing.T) {
	rm := newRegistry("aaaa", "bbbb")
	rm.CreateRoom(sink{})
	rm.CreateRoom(sink{})

	s := registrySession(rm, false)
	s.join("aaaa")
	s.join("bbbb")
	flush(s)

	for _, c := range []string{"aaaa", "bbbb"} {
		snap, _ := rm.Snapshot(c)
		assert.NotNil(t, snap.Players[1], "seat in %s", c)
	}

	s.teardown()
	for _, c := range []string{"aaaa", "bbbb"} {
		snap, _ := rm.Snapshot(c)
		assert.Nil(t, snap.Players[1], "seat in %s", c)
	}
}
