package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgardezi/charades.me/internal/engine"
	"github.com/dgardezi/charades.me/internal/session"
)

var (
	ErrAlreadyActive = errors.New("session already active")
	ErrNotFound      = errors.New("session not found")
)

type Msg interface{ isRegistryMsg() }

type createSession struct {
	room    string
	members []string
	reply   chan error
}

type getSession struct {
	room  string
	reply chan *session.Session
}

type endSession struct {
	room string
}

type shutdown struct{}

func (createSession) isRegistryMsg() {}
func (getSession) isRegistryMsg()    {}
func (endSession) isRegistryMsg()    {}
func (shutdown) isRegistryMsg()      {}

// Registry owns the room -> session table. Like the sessions it manages, it
// is an actor: all table mutations serialize through one loop, so creating,
// looking up and tearing down sessions never race each other.
type Registry struct {
	inbox     chan Msg
	sessions  map[string]*session.Session
	bank      *engine.WordBank
	notify    session.Notifier
	rules     engine.Rules
	tickEvery time.Duration
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(parent context.Context, bank *engine.WordBank, notify session.Notifier, rules engine.Rules, tickEvery time.Duration, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:     make(chan Msg, 64),
		sessions:  make(map[string]*session.Session),
		bank:      bank,
		notify:    notify,
		rules:     rules,
		tickEvery: tickEvery,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.stopAll()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case createSession:
				if _, ok := r.sessions[msg.room]; ok {
					msg.reply <- ErrAlreadyActive
					break
				}
				st := engine.NewState(msg.room, msg.members, time.Now(), r.rules)
				// Each session gets its own engine: room goroutines must
				// never share a randomness source.
				eng := engine.New(r.bank, nil)
				r.sessions[msg.room] = session.New(r.ctx, eng, st, r.notify, r.removeLater, r.log, r.tickEvery)
				r.log.Info("session created",
					zap.String("room", msg.room),
					zap.Int("members", len(msg.members)))
				msg.reply <- nil

			case getSession:
				msg.reply <- r.sessions[msg.room]

			case endSession:
				if s, ok := r.sessions[msg.room]; ok {
					delete(r.sessions, msg.room)
					s.Stop()
					r.log.Info("session ended", zap.String("room", msg.room))
				}

			case shutdown:
				r.stopAll()
				r.cancel()
				return
			}
		}
	}
}

func (r *Registry) stopAll() {
	for room, s := range r.sessions {
		s.Stop()
		delete(r.sessions, room)
	}
}

// removeLater is handed to each session as its onEmpty hook. It runs on the
// session goroutine, so it posts back into the registry loop instead of
// touching the table directly.
func (r *Registry) removeLater(room string) {
	select {
	case r.inbox <- endSession{room: room}:
	case <-r.ctx.Done():
	}
}

// CreateSession starts the game for a room with its current member list.
// Fails with ErrAlreadyActive if the room already has a running session.
func (r *Registry) CreateSession(ctx context.Context, room string, members []string) error {
	reply := make(chan error, 1)
	select {
	case r.inbox <- createSession{room: normalize(room), members: members, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the live session for room, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, room string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	select {
	case r.inbox <- getSession{room: normalize(room), reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		if s == nil {
			return nil, ErrNotFound
		}
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EndSession cancels a room's ticking and removes it. Idempotent: ending an
// absent room is a no-op, since end events can race natural teardown.
func (r *Registry) EndSession(room string) {
	select {
	case r.inbox <- endSession{room: normalize(room)}:
	case <-r.ctx.Done():
	}
}

// Deliver routes a command to the addressed session. Commands for unknown
// rooms are dropped: events legitimately race session teardown.
func (r *Registry) Deliver(ctx context.Context, room string, cmd engine.Command) {
	s, err := r.Get(ctx, room)
	if err != nil {
		r.log.Debug("command for inactive room dropped",
			zap.String("room", normalize(room)),
			zap.String("command", string(cmd.Type)))
		return
	}
	s.Deliver(cmd)
}

// Join enrolls a member into a room's running session, if any.
func (r *Registry) Join(ctx context.Context, room, member string) {
	r.Deliver(ctx, room, engine.Command{Type: engine.CmdJoin, Member: member})
}

// Leave removes a member; the session tears itself down once empty.
func (r *Registry) Leave(ctx context.Context, room, member string) {
	r.Deliver(ctx, room, engine.Command{Type: engine.CmdLeave, Member: member})
}

// Shutdown stops every session and the registry loop itself.
func (r *Registry) Shutdown() {
	select {
	case r.inbox <- shutdown{}:
	case <-r.ctx.Done():
	}
}

func normalize(room string) string { return strings.ToUpper(room) }
