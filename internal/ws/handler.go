package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgardezi/charades.me/internal/directory"
	"github.com/dgardezi/charades.me/internal/engine"
	"github.com/dgardezi/charades.me/internal/registry"
	"github.com/dgardezi/charades.me/pkg/wire"
)

const writeTimeout = 3 * time.Second

// Handler upgrades /ws?room=AB12&name=alice, enrolls the connection in the
// room and bridges it to the room's session. The handler never mutates game
// state itself: every game input becomes a command delivered to the session
// inbox, stamped with arrival time.
func Handler(reg *registry.Registry, dir *directory.Directory, gw *Gateway, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := strings.ToUpper(r.URL.Query().Get("room"))
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if room == "" || name == "" {
			http.Error(w, "missing room or name", http.StatusBadRequest)
			return
		}
		if !dir.Exists(room) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		if _, err := dir.Add(connID, name, room); err != nil {
			writeOnce(r.Context(), conn, wire.ServerMessage{Type: "error", Error: err.Error()})
			conn.Close(websocket.StatusPolicyViolation, "rejected")
			return
		}

		client := gw.Register(room, name, connID)
		log.Info("client connected", zap.String("room", room), zap.String("member", name))

		defer func() {
			gw.Unregister(room, connID)
			dir.Remove(connID)
			// Use a fresh context: the request context is already gone.
			reg.Leave(context.Background(), room, name)
			gw.BroadcastRaw(room, wire.ServerMessage{Type: "message", Text: name + " has left the room"})
			log.Info("client disconnected", zap.String("room", room), zap.String("member", name))
		}()

		// Writer goroutine: drains the gateway outbox onto the socket.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range client.Out() {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		client.Send(wire.ServerMessage{Type: "joined", Room: room, Name: name})
		gw.BroadcastRaw(room, wire.ServerMessage{Type: "message", Text: name + " has joined the room"})

		// Joining an active game enrolls the member mid-round; the session
		// replays the current actor and word after its join grace.
		if _, err := reg.Get(r.Context(), room); err == nil {
			client.Send(wire.ServerMessage{Type: "started", Room: room})
			reg.Join(r.Context(), room, name)
		}

		limiter := rate.NewLimiter(rate.Limit(4), 8)

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}

			var cm wire.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				client.Send(wire.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}
			if !limiter.Allow() {
				client.Send(wire.ServerMessage{Type: "error", Error: "too many messages"})
				continue
			}

			switch cm.Type {
			case "start":
				members := dir.MembersOf(room)
				if err := reg.CreateSession(r.Context(), room, members); err != nil {
					if errors.Is(err, registry.ErrAlreadyActive) {
						client.Send(wire.ServerMessage{Type: "error", Error: "game already started"})
					}
					continue
				}
				gw.BroadcastRaw(room, wire.ServerMessage{Type: "started", Room: room})

			case "chat":
				if _, err := reg.Get(r.Context(), room); err != nil {
					// No game running: plain lobby chat.
					gw.BroadcastRaw(room, wire.ServerMessage{Type: "message", From: name, Text: cm.Text})
					continue
				}
				reg.Deliver(r.Context(), room, engine.Command{
					Type: engine.CmdMessage, Member: name, Text: cm.Text,
				})

			case "word":
				reg.Deliver(r.Context(), room, engine.Command{
					Type: engine.CmdChooseWord, Member: name, Word: cm.Word,
				})

			default:
				client.Send(wire.ServerMessage{Type: "error", Error: "unknown type"})
			}
		}
	}
}

func writeOnce(ctx context.Context, conn *websocket.Conn, msg wire.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
