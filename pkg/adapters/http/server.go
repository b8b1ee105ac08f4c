package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/wayfinder/internal/logging"
	mermaid "github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TouchPublisher injects a raw touch value on the touch transport.
type TouchPublisher func(event string, value float64) error

// Server exposes the guide for monitoring: trips, routes, the map and a
// live event stream.
type Server struct {
	Sessions *session.Manager
	Map      *graph.Graph
	// Touch is optional; without it POST /touch answers 501.
	Touch TouchPublisher
	// Metrics is optional; it is mounted on /metrics.
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
	Streams *StreamManager
}

// NewHandler creates the HTTP handler for the server.
func NewHandler(s *Server) http.Handler {
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	s.Streams.logger = s.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/state", s.GetState)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Post("/sessions/{id}/touch", s.TouchSession)
	r.Post("/touch", s.PostTouch)
	r.Get("/route", s.GetRoute)
	r.Get("/map", s.GetMap)
	r.Get("/events", s.SubscribeEvents)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"app":     "wayfinder-http",
		"version": strings.TrimSpace(s.Version),
	}
	if s.Map != nil {
		info["rooms"] = len(s.Map.Rooms())
		info["edges"] = len(s.Map.Edges())
	}
	s.writeJSON(w, http.StatusOK, info)
}

// GetState handles GET /state: the running trip, or 204 when the robot is idle.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	active := s.Sessions.Active()
	if len(active) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, active[0])
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	stored, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "List sessions failed", err)
		return
	}
	if stored == nil {
		stored = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"active": s.Sessions.Active(),
		"stored": stored,
	})
}

// GetSession handles GET /sessions/{id}. Running trips win over stored snapshots.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if trip, ok := s.Sessions.Live(id); ok {
		s.writeJSON(w, http.StatusOK, trip.Snapshot())
		return
	}
	snap, err := s.Sessions.Load(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Load session failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type touchRequest struct {
	Event string  `json:"event"`
	Value float64 `json:"value"`
}

// TouchSession handles POST /sessions/{id}/touch, the remote equivalent of the hand sensor.
func (s *Server) TouchSession(w http.ResponseWriter, r *http.Request) {
	var body touchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	trip, ok := s.Sessions.Live(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Session not running", http.StatusNotFound)
		return
	}
	if !trip.Touch(r.Context(), body.Value) {
		http.Error(w, "Session stopped", http.StatusConflict)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"event": domain.TouchEvent(body.Value)})
}

// PostTouch handles POST /touch by publishing on the touch transport.
func (s *Server) PostTouch(w http.ResponseWriter, r *http.Request) {
	if s.Touch == nil {
		http.Error(w, "Touch injection disabled", http.StatusNotImplemented)
		return
	}
	var body touchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Event == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Touch(body.Event, body.Value); err != nil {
		s.fail(w, http.StatusBadGateway, "Publish touch failed", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"event": body.Event})
}

// RouteResponse is the body of GET /route.
type RouteResponse struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Level    int      `json:"level"`
	Distance float64  `json:"distance"`
	Path     []string `json:"path"`
}

// GetRoute handles GET /route?from=&to=&level=.
func (s *Server) GetRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	level := 0
	if raw := q.Get("level"); raw != "" {
		var err error
		if level, err = strconv.Atoi(raw); err != nil || level < 0 {
			http.Error(w, "Invalid level", http.StatusBadRequest)
			return
		}
	}
	for _, room := range []string{from, to} {
		if !s.Map.Has(room) {
			http.Error(w, fmt.Sprintf("%v: %q", domain.ErrUnknownRoom, room), http.StatusBadRequest)
			return
		}
	}

	total, path := s.Map.ShortestPath(from, to, level)
	if len(path) == 0 || math.IsInf(total, 1) {
		http.Error(w, domain.ErrNoRouteFound.Error(), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, RouteResponse{
		From:     from,
		To:       to,
		Level:    level,
		Distance: total,
		Path:     path.Names(),
	})
}

// GetMap handles GET /map. With ?format=mermaid it returns a flowchart,
// highlighting ?route=A,B,C when given.
func (s *Server) GetMap(w http.ResponseWriter, r *http.Request) {
	rooms, edges := s.Map.Rooms(), s.Map.Edges()
	if r.URL.Query().Get("format") != "mermaid" {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"directed": s.Map.Directed(),
			"rooms":    rooms,
			"edges":    edges,
		})
		return
	}

	var overlay *mermaid.RouteOverlay
	if raw := r.URL.Query().Get("route"); raw != "" {
		path := strings.Split(raw, ",")
		overlay = &mermaid.RouteOverlay{Path: path, Current: path[0]}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, mermaid.GenerateMermaid(rooms, edges, s.Map.Directed(), overlay))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	s.Logger.Error(msg, "err", err)
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), status)
}
