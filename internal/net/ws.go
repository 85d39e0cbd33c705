package net

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"blast-arena/server/internal/hub"
	"blast-arena/server/internal/sim"
)

// Clients heartbeat every 2s; three misses drop the connection.
const wsReadWait = 6 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is the envelope for everything a client sends.
type clientMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
	Name      string `json:"name,omitempty"`
	SentAt    int64  `json:"sentAt,omitempty"`
}

type heartbeatAck struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
}

type rejectMessage struct {
	Type   string `json:"type"`
	Intent string `json:"intent"`
	Reason string `json:"reason"`
}

// handleWS upgrades the connection and pumps client messages into the room's
// command queue until the peer goes away. State flows the other direction on
// the room loop's broadcast, not here.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	actorID := r.URL.Query().Get("id")
	if roomID == "" || actorID == "" {
		http.Error(w, "missing room or id", http.StatusBadRequest)
		return
	}
	session, ok := s.hub.Room(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("upgrade failed for %s: %v", actorID, err)
		}
		return
	}

	sub := session.Subscribe(actorID, conn)

	// Seed the subscriber with the current snapshot so it does not wait a
	// full tick for its first state.
	initial := struct {
		Type       string       `json:"type"`
		Snapshot   sim.Snapshot `json:"snapshot"`
		ServerTime int64        `json:"serverTime"`
	}{Type: "state", Snapshot: session.Latest(), ServerTime: time.Now().UnixMilli()}
	if data, err := json.Marshal(initial); err == nil {
		if err := sub.Send(data); err != nil {
			session.Disconnect(actorID)
			return
		}
	}

	conn.SetReadDeadline(time.Now().Add(wsReadWait))
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			session.Disconnect(actorID)
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadWait))

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			if s.logger != nil {
				s.logger.Printf("discarding malformed message from %s: %v", actorID, err)
			}
			continue
		}

		switch msg.Type {
		case "move":
			direction, ok := sim.ParseDirection(msg.Direction)
			if !ok {
				s.writeReject(sub, "move", "bad_direction")
				continue
			}
			if ok, reason := session.Enqueue(sim.Command{
				ActorID: actorID,
				Type:    sim.CommandMove,
				Move:    &sim.MoveCommand{Direction: direction},
			}); !ok {
				s.writeReject(sub, "move", reason)
			}
		case "bomb":
			if ok, reason := session.Enqueue(sim.Command{
				ActorID: actorID,
				Type:    sim.CommandPlaceBomb,
			}); !ok {
				s.writeReject(sub, "bomb", reason)
			}
		case "ready":
			if ok, reason := session.Enqueue(sim.Command{
				ActorID: actorID,
				Type:    sim.CommandReady,
			}); !ok {
				s.writeReject(sub, "ready", reason)
			}
		case "heartbeat":
			ack := heartbeatAck{
				Type:       "heartbeat",
				ServerTime: time.Now().UnixMilli(),
				ClientTime: msg.SentAt,
			}
			data, err := json.Marshal(ack)
			if err != nil {
				continue
			}
			if err := sub.Send(data); err != nil {
				session.Disconnect(actorID)
				return
			}
		default:
			if s.logger != nil {
				s.logger.Printf("unknown message type %q from %s", msg.Type, actorID)
			}
		}
	}
}

func (s *Server) writeReject(sub *hub.Subscriber, intent, reason string) {
	data, err := json.Marshal(rejectMessage{Type: "reject", Intent: intent, Reason: reason})
	if err != nil {
		return
	}
	sub.Send(data)
}
