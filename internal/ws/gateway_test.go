package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgardezi/charades.me/internal/engine"
	"github.com/dgardezi/charades.me/pkg/wire"
)

func drainOne(t *testing.T, c *Client) wire.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Out():
		require.True(t, ok, "client channel closed")
		return msg
	default:
		t.Fatal("no message queued")
		return wire.ServerMessage{}
	}
}

func TestGateway_BroadcastReachesWholeRoom(t *testing.T) {
	g := NewGateway(zap.NewNop())
	alice := g.Register("AB12", "alice", "c1")
	bob := g.Register("AB12", "bob", "c2")
	other := g.Register("ZZ99", "carol", "c3")

	g.Broadcast("AB12", engine.Event{Type: engine.EvtTimerUpdate, Seconds: 42})

	for _, c := range []*Client{alice, bob} {
		msg := drainOne(t, c)
		assert.Equal(t, "timer", msg.Type)
		require.NotNil(t, msg.Seconds)
		assert.Equal(t, 42, *msg.Seconds)
	}
	select {
	case msg := <-other.Out():
		t.Fatalf("other room received %+v", msg)
	default:
	}
}

func TestGateway_SendToTargetsOneMember(t *testing.T) {
	g := NewGateway(zap.NewNop())
	alice := g.Register("AB12", "alice", "c1")
	bob := g.Register("AB12", "bob", "c2")

	g.SendTo("AB12", "alice", engine.Event{Type: engine.EvtWordRevealed, Word: "apple"})

	msg := drainOne(t, alice)
	assert.Equal(t, "word", msg.Type)
	assert.Equal(t, "apple", msg.Word)
	select {
	case m := <-bob.Out():
		t.Fatalf("bob received %+v", m)
	default:
	}
}

func TestGateway_UnregisterClosesClient(t *testing.T) {
	g := NewGateway(zap.NewNop())
	alice := g.Register("AB12", "alice", "c1")

	g.Unregister("AB12", "c1")

	_, ok := <-alice.Out()
	assert.False(t, ok)

	// Sending into the now-empty room is a no-op.
	g.BroadcastRaw("AB12", wire.ServerMessage{Type: "message", Text: "anyone?"})
}

func TestGateway_SlowClientIsDropped(t *testing.T) {
	g := NewGateway(zap.NewNop())
	slow := g.Register("AB12", "alice", "c1")

	// Fill the buffer past capacity without draining; the overflowing send
	// must evict the client instead of blocking the room.
	for range cap(slow.out) + 1 {
		g.BroadcastRaw("AB12", wire.ServerMessage{Type: "timer"})
	}

	received := 0
	for range slow.Out() {
		received++
	}
	assert.Equal(t, cap(slow.out), received, "channel must be closed after the eviction")
}

func TestEventToWire(t *testing.T) {
	cases := []struct {
		name string
		evt  engine.Event
		want wire.ServerMessage
	}{
		{
			name: "actor",
			evt:  engine.Event{Type: engine.EvtActorAssigned, Actor: "alice"},
			want: wire.ServerMessage{Type: "actor", Actor: "alice"},
		},
		{
			name: "word choices",
			evt:  engine.Event{Type: engine.EvtWordChoices, Choices: []string{"a", "b", "c"}},
			want: wire.ServerMessage{Type: "wordChoices", Choices: []string{"a", "b", "c"}},
		},
		{
			name: "word",
			evt:  engine.Event{Type: engine.EvtWordRevealed, Word: "apple"},
			want: wire.ServerMessage{Type: "word", Word: "apple"},
		},
		{
			name: "timer",
			evt:  engine.Event{Type: engine.EvtTimerUpdate, Seconds: 59},
			want: wire.ServerMessage{Type: "timer", Seconds: intPtr(59)},
		},
		{
			name: "guessed",
			evt:  engine.Event{Type: engine.EvtGuessCorrect, Guesser: "bob"},
			want: wire.ServerMessage{Type: "guessed", Guesser: "bob"},
		},
		{
			name: "points",
			evt:  engine.Event{Type: engine.EvtPointsUpdate, Points: map[string]int{"bob": 400}},
			want: wire.ServerMessage{Type: "points", Points: map[string]int{"bob": 400}},
		},
		{
			name: "chat",
			evt:  engine.Event{Type: engine.EvtChatMessage, From: "bob", Text: "hi"},
			want: wire.ServerMessage{Type: "message", From: "bob", Text: "hi"},
		},
		{
			name: "notice",
			evt:  engine.Event{Type: engine.EvtNotice, Text: "bob has guessed the word!"},
			want: wire.ServerMessage{Type: "message", Text: "bob has guessed the word!"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eventToWire(tc.evt))
		})
	}
}

func intPtr(n int) *int { return &n }
