package net

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"blast-arena/server/internal/grid"
	"blast-arena/server/internal/hub"
	"blast-arena/server/internal/persistence"
	"blast-arena/server/internal/sim"
	"blast-arena/server/internal/telemetry"
	"blast-arena/server/internal/world"
)

// Server exposes the hub over HTTP and WebSocket.
type Server struct {
	hub       *hub.Hub
	store     persistence.Storage
	logger    telemetry.Logger
	nextActor atomic.Uint64
}

// NewServer wires the transport around a hub.
func NewServer(h *hub.Hub, store persistence.Storage, logger telemetry.Logger) *Server {
	return &Server{hub: h, store: store, logger: logger}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/levels", s.handleLevels)
	mux.HandleFunc("/results", s.handleResults)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/join", s.handleJoin)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status     string         `json:"status"`
		ServerTime int64          `json:"serverTime"`
		TickRate   int            `json:"tickRate"`
		Rooms      []hub.RoomInfo `json:"rooms"`
	}{
		Status:     "ok",
		ServerTime: time.Now().UnixMilli(),
		TickRate:   world.TickRate,
		Rooms:      s.hub.Rooms(),
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.hub.Levels())
	case http.MethodPost:
		if s.store == nil {
			http.Error(w, "no storage configured", http.StatusServiceUnavailable)
			return
		}
		var def grid.Definition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			http.Error(w, "malformed level definition", http.StatusBadRequest)
			return
		}
		// A definition must build before it is accepted.
		if _, err := def.Build(); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := s.store.SaveLevel(def); err != nil {
			http.Error(w, "failed to save level", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, def)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "no storage configured", http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := s.store.LoadMatchResults(limit)
	if err != nil {
		http.Error(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type createRoomRequest struct {
	LevelID string `json:"levelId"`
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.hub.Rooms())
	case http.MethodPost:
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LevelID == "" {
			http.Error(w, "missing levelId", http.StatusBadRequest)
			return
		}
		session, err := s.hub.CreateRoom(req.LevelID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusCreated, session.Info())
	case http.MethodDelete:
		roomID := r.URL.Query().Get("id")
		if roomID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if !s.hub.DestroyRoom(roomID) {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	ID       string       `json:"id"`
	RoomID   string       `json:"roomId"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

// handleJoin seats a new player. The seat is taken on the next tick; the
// returned snapshot may not include the player yet.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room", http.StatusBadRequest)
		return
	}
	session, ok := s.hub.Room(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	var req joinRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	actorID := "player-" + strconv.FormatUint(s.nextActor.Add(1), 10)
	accepted, reason := session.Enqueue(sim.Command{
		ActorID: actorID,
		Type:    sim.CommandJoin,
		Join:    &sim.JoinCommand{Name: req.Name},
	})
	if !accepted {
		http.Error(w, "join rejected: "+reason, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{
		ID:       actorID,
		RoomID:   roomID,
		Snapshot: session.Latest(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
