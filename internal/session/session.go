package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dgardezi/charades.me/internal/engine"
)

// Notifier is the delivery layer the session fans events out through.
// Implemented by the websocket gateway; tests substitute a recorder.
type Notifier interface {
	SendTo(room, member string, evt engine.Event)
	Broadcast(room string, evt engine.Event)
}

type Msg interface{ isSessionMsg() }

// FromClient carries one externally triggered command into the session loop.
type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isSessionMsg() {}

// GetState asks the loop for a copy of its state without racing it.
// Reply must be buffered.
type GetState struct {
	Reply chan engine.State
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// Session runs one room's game as a single goroutine: the periodic tick and
// every external event serialize through the same inbox, so no two mutations
// of the state can interleave and no locks are needed.
type Session struct {
	room      string
	inbox     chan Msg
	state     engine.State
	eng       *engine.Engine
	notify    Notifier
	onEmpty   func(room string)
	log       *zap.Logger
	tickEvery time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

// New starts the session goroutine. onEmpty is invoked (once) when the last
// member leaves, after which the session stops ticking.
func New(parent context.Context, eng *engine.Engine, initial engine.State, notify Notifier, onEmpty func(room string), log *zap.Logger, tickEvery time.Duration) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		room:      initial.Room,
		inbox:     make(chan Msg, 256),
		state:     initial,
		eng:       eng,
		notify:    notify,
		onEmpty:   onEmpty,
		log:       log,
		tickEvery: tickEvery,
		ctx:       ctx,
		cancel:    cancel,
	}
	go s.loop()
	return s
}

func (s *Session) Room() string { return s.room }

// Deliver enqueues a command without blocking forever: a command racing a
// torn-down session is dropped, which the caller treats as a no-op.
func (s *Session) Deliver(cmd engine.Command) {
	if cmd.Now.IsZero() {
		cmd.Now = time.Now()
	}
	select {
	case s.inbox <- FromClient{Cmd: cmd}:
	case <-s.ctx.Done():
	}
}

// Inbox exposes the raw message channel for tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Stop cancels the session loop. Idempotent.
func (s *Session) Stop() { s.cancel() }

func (s *Session) loop() {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case now := <-ticker.C:
			s.apply(engine.Command{Type: engine.CmdTick, Now: now})

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromClient:
				s.apply(msg.Cmd)
			case GetState:
				msg.Reply <- s.state
			case Shutdown:
				s.cancel()
				return
			}
		}
	}
}

func (s *Session) apply(cmd engine.Command) {
	events, next, err := s.eng.Apply(s.state, cmd)
	if err != nil {
		s.log.Warn("command rejected",
			zap.String("room", s.room),
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		return
	}

	joined := cmd.Type == engine.CmdJoin && len(next.Order) > len(s.state.Order)
	s.state = next

	for _, evt := range events {
		s.dispatch(evt)
	}

	if joined && next.RoundRunning {
		// Give the new client's connection time to settle before replaying
		// the in-progress round to it.
		member := cmd.Member
		time.AfterFunc(next.Rules.JoinGrace, func() {
			s.Deliver(engine.Command{Type: engine.CmdSync, Member: member})
		})
	}

	if len(next.Order) == 0 {
		s.log.Info("session empty, tearing down", zap.String("room", s.room))
		s.cancel()
		if s.onEmpty != nil {
			s.onEmpty(s.room)
		}
	}
}

func (s *Session) dispatch(evt engine.Event) {
	if len(evt.To) == 0 {
		s.notify.Broadcast(s.room, evt)
		return
	}
	for _, member := range evt.To {
		s.notify.SendTo(s.room, member, evt)
	}
}
