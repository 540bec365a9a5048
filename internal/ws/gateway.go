package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dgardezi/charades.me/internal/engine"
	"github.com/dgardezi/charades.me/pkg/wire"
)

// Client is one registered connection's outbound side. The websocket handler
// drains Out; the gateway fills it and drops the client if it can't keep up.
type Client struct {
	connID string
	member string
	room   string
	out    chan wire.ServerMessage
}

func (c *Client) Out() <-chan wire.ServerMessage { return c.out }

// Send queues a message for this client only.
func (c *Client) Send(msg wire.ServerMessage) {
	select {
	case c.out <- msg:
	default:
	}
}

// Gateway is the delivery layer: it tracks which connections belong to which
// room and fans server messages out to them. It implements session.Notifier,
// translating engine events into wire messages at the edge.
type Gateway struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // room -> connID -> client
	log   *zap.Logger
}

func NewGateway(log *zap.Logger) *Gateway {
	return &Gateway{
		rooms: make(map[string]map[string]*Client),
		log:   log,
	}
}

// Register adds a connection to a room and returns its outbound client.
func (g *Gateway) Register(room, member, connID string) *Client {
	c := &Client{
		connID: connID,
		member: member,
		room:   room,
		out:    make(chan wire.ServerMessage, 32),
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[room] == nil {
		g.rooms[room] = make(map[string]*Client)
	}
	g.rooms[room][connID] = c
	return c
}

// Unregister removes a connection and closes its outbound channel.
func (g *Gateway) Unregister(room, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	clients, ok := g.rooms[room]
	if !ok {
		return
	}
	if c, ok := clients[connID]; ok {
		delete(clients, connID)
		close(c.out)
	}
	if len(clients) == 0 {
		delete(g.rooms, room)
	}
}

// Broadcast delivers an engine event to every connection in the room.
func (g *Gateway) Broadcast(room string, evt engine.Event) {
	g.BroadcastRaw(room, eventToWire(evt))
}

// SendTo delivers an engine event to one member's connections.
func (g *Gateway) SendTo(room, member string, evt engine.Event) {
	msg := eventToWire(evt)
	g.mu.Lock()
	defer g.mu.Unlock()
	for connID, c := range g.rooms[room] {
		if c.member == member {
			g.trySend(room, connID, c, msg)
		}
	}
}

// BroadcastRaw delivers an already-encoded message to every connection in
// the room; the transport uses it for notices outside any game session.
func (g *Gateway) BroadcastRaw(room string, msg wire.ServerMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for connID, c := range g.rooms[room] {
		g.trySend(room, connID, c, msg)
	}
}

// trySend never blocks: a connection that can't drain its buffer is dropped
// rather than allowed to stall the room. Caller holds g.mu.
func (g *Gateway) trySend(room, connID string, c *Client, msg wire.ServerMessage) {
	select {
	case c.out <- msg:
	default:
		delete(g.rooms[room], connID)
		close(c.out)
		g.log.Warn("dropping slow client",
			zap.String("room", room),
			zap.String("member", c.member))
	}
}

func eventToWire(evt engine.Event) wire.ServerMessage {
	switch evt.Type {
	case engine.EvtActorAssigned:
		return wire.ServerMessage{Type: "actor", Actor: evt.Actor}
	case engine.EvtWordChoices:
		return wire.ServerMessage{Type: "wordChoices", Choices: evt.Choices}
	case engine.EvtWordRevealed:
		return wire.ServerMessage{Type: "word", Word: evt.Word}
	case engine.EvtTimerUpdate:
		seconds := evt.Seconds
		return wire.ServerMessage{Type: "timer", Seconds: &seconds}
	case engine.EvtGuessCorrect:
		return wire.ServerMessage{Type: "guessed", Guesser: evt.Guesser}
	case engine.EvtPointsUpdate:
		return wire.ServerMessage{Type: "points", Points: evt.Points}
	case engine.EvtChatMessage:
		return wire.ServerMessage{Type: "message", From: evt.From, Text: evt.Text}
	case engine.EvtNotice:
		return wire.ServerMessage{Type: "message", Text: evt.Text}
	default:
		return wire.ServerMessage{Type: string(evt.Type)}
	}
}
