package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"link-cable/internal/config"
	"link-cable/internal/shared"
	"link-cable/pkg/metrics"
)

// Session drives one websocket connection. The reader goroutine turns frames into
// RoomManager calls; the writer goroutine drains the outbox, applies each event to the
// local state and writes it, and owns the heartbeat ticker.
type Session struct {
	id    string
	conn  *websocket.Conn
	rooms RoomManager
	cfg   config.Session
	log   *slog.Logger

	out           chan shared.Response
	lastHeartbeat *atomic.Time
	closed        *atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Fields below only change when an event is applied, except roster which
	// also mirrors our own choices.
	mu       sync.Mutex
	identity string
	seat     int
	room     string
	roster   []*shared.Player

	// Every seat the registry has handed us, including ones whose events are
	// still queued. Bookkeeping for release only; membership comes from apply.
	granted []grant
}

type grant struct{ id, code string }

func newSession(ctx context.Context, id string, conn *websocket.Conn, rooms RoomManager, cfg config.Session, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		id:            id,
		conn:          conn,
		rooms:         rooms,
		cfg:           cfg,
		log:           logger.With("session", id, "remote", conn.RemoteAddr().String()),
		out:           make(chan shared.Response, cfg.SendBuffer),
		lastHeartbeat: atomic.NewTime(time.Now()),
		closed:        atomic.NewBool(false),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

// Deliver queues an event for the client. A full outbox means the client stopped
// reading; the session is torn down instead of silently losing an event.
func (s *Session) Deliver(msg shared.Response) {
	if s.closed.Load() {
		return
	}
	select {
	case s.out <- msg:
	default:
		metrics.EventsDropped.WithLabelValues(msg.Cmd()).Inc()
		s.log.Warn("session.stalled", "cmd", msg.Cmd(), "buffer", cap(s.out))
		s.cancel()
	}
}

// Run blocks until the connection is finished. A non-empty code is joined right away.
func (s *Session) Run(code string) {
	metrics.Sessions.Inc()
	s.log.Info("session.open", "code", code)

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		s.beat()
		return nil
	})
	s.conn.SetPingHandler(func(data string) error {
		s.beat()
		err := s.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(s.cfg.WriteWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	go s.writeLoop()

	if code != "" {
		s.join(code)
	}
	s.readLoop()

	s.cancel()
	<-s.done
	s.teardown()
}

// Stop asks the session to close. Run still performs the teardown.
func (s *Session) Stop() { s.cancel() }

func (s *Session) beat() { s.lastHeartbeat.Store(time.Now()) }

func (s *Session) readLoop() {
	for {
		typ, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("session.read", "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			metrics.FramesIgnored.WithLabelValues("binary").Inc()
			s.log.Debug("session.frame.ignored", "type", typ)
			continue
		}
		s.handle(data)
	}
}

func (s *Session) handle(data []byte) {
	req, err := shared.DecodeRequest(data)
	if err != nil {
		metrics.FramesIgnored.WithLabelValues("malformed").Inc()
		s.log.Warn("session.frame.malformed", "err", err)
		return
	}

	switch r := req.(type) {
	case shared.CreateCmd:
		s.create()
	case shared.JoinCmd:
		s.join(r.Code)
	case shared.ChoiceCmd:
		s.choose(*r.C)
	case shared.OfferCmd:
		s.relay(shared.OfferMsg{Offer: *r.Offer})
	case shared.AnswerCmd:
		s.relay(shared.AnswerMsg{Offer: *r.Offer})
	case shared.ICECmd:
		s.relay(shared.ICEMsg{Candidate: r.Candidate})
	}
}

func (s *Session) create() {
	s.mu.Lock()
	inRoom := s.inRoomLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if inRoom {
		s.Deliver(snap)
		return
	}
	if s.cfg.LeaveOnRejoin {
		s.release()
	}
	code, _, id := s.rooms.CreateRoom(s)
	s.hold(id, code)
}

func (s *Session) join(code string) {
	if s.cfg.LeaveOnRejoin {
		s.release()
	}
	if id, _, ok := s.rooms.JoinRoom(s, code); ok {
		s.hold(id, code)
	}
}

func (s *Session) hold(id, code string) {
	s.mu.Lock()
	s.granted = append(s.granted, grant{id: id, code: code})
	s.mu.Unlock()
}

// release gives back every granted seat. Disconnect is a no-op for seats
// already vacated.
func (s *Session) release() {
	s.mu.Lock()
	held := s.granted
	s.granted = nil
	s.mu.Unlock()

	for _, g := range held {
		s.log.Debug("session.leave", "code", g.code, "player", g.id)
		s.rooms.Disconnect(g.id, g.code)
	}
}

func (s *Session) choose(c uint8) {
	s.mu.Lock()
	id, code, ok := s.identity, s.room, s.inRoomLocked()
	if ok && s.seat >= 0 && s.seat < len(s.roster) && s.roster[s.seat] != nil {
		own := *s.roster[s.seat]
		own.C = &c
		s.roster[s.seat] = &own
	}
	s.mu.Unlock()

	if !ok {
		s.dropped(shared.CmdChoice)
		return
	}
	s.rooms.Choose(id, code, c)
}

func (s *Session) relay(msg shared.Response) {
	id, code, ok := s.membership()
	if !ok {
		s.dropped(msg.Cmd())
		return
	}
	s.rooms.RelayToRoom(id, code, msg)
}

func (s *Session) dropped(cmd string) {
	metrics.FramesIgnored.WithLabelValues("no_room").Inc()
	s.log.Debug("session.frame.no_room", "cmd", cmd)
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		s.cancel()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(s.cfg.WriteWait))
		_ = s.conn.Close()
		close(s.done)
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.out:
			s.apply(msg)
			if err := s.write(msg); err != nil {
				s.log.Debug("session.write", "cmd", msg.Cmd(), "err", err)
				return
			}
		case <-ticker.C:
			if since := time.Since(s.lastHeartbeat.Load()); since > s.cfg.ClientTimeout {
				s.log.Info("session.heartbeat.timeout", "since", since)
				return
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				s.log.Debug("session.ping", "err", err)
				return
			}
		}
	}
}

func (s *Session) write(msg shared.Response) error {
	data, err := shared.Encode(msg)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// apply is the only place identity and room change.
func (s *Session) apply(msg shared.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := msg.(type) {
	case shared.YouMsg:
		s.identity = m.ID
		s.seat = m.I
	case shared.RoomMsg:
		s.room = m.Code
		s.roster = cloneRoster(m.Players)
	case shared.PlayerMsg:
		s.mirrorLocked(m.Player)
	}
}

func (s *Session) mirrorLocked(p shared.Player) {
	if p.I == shared.VacatedSeat {
		for i, seated := range s.roster {
			if seated != nil && seated.ID == p.ID {
				s.roster[i] = nil
			}
		}
		return
	}
	if p.I < 0 {
		return
	}
	for len(s.roster) <= p.I {
		s.roster = append(s.roster, nil)
	}
	s.roster[p.I] = cloneRoster([]*shared.Player{&p})[0]
}

// teardown runs once both loops have stopped. Events still queued are applied first,
// then every seat the registry granted is released.
func (s *Session) teardown() {
	s.closed.Store(true)
drain:
	for {
		select {
		case msg := <-s.out:
			s.apply(msg)
		default:
			break drain
		}
	}

	s.release()
	metrics.Sessions.Dec()
	s.log.Info("session.closed")
}

func (s *Session) membership() (id, code string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.room, s.inRoomLocked()
}

func (s *Session) inRoomLocked() bool { return s.identity != "" && s.room != "" }

func (s *Session) snapshotLocked() shared.RoomMsg {
	return shared.RoomMsg{Code: s.room, Players: cloneRoster(s.roster)}
}

func cloneRoster(in []*shared.Player) []*shared.Player {
	out := make([]*shared.Player, len(in))
	for i, p := range in {
		if p == nil {
			continue
		}
		cp := *p
		if p.C != nil {
			c := *p.C
			cp.C = &c
		}
		out[i] = &cp
	}
	return out
}
