// Package api exposes an operational HTTP surface for a running engine:
// health, cache inspection and control, joker catalog listing, and saved
// session browsing. It is a sidecar for tooling, not a gameplay transport.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cardsim/joker-engine-go/internal/engine"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/store"
)

// Server handles HTTP requests
type Server struct {
	db        store.DB
	proc      *engine.Processor
	registry  *joker.Registry
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new ops server around a live processor and registry.
// db may be nil when persistence is disabled; session routes then 404.
func NewServer(db store.DB, proc *engine.Processor, registry *joker.Registry) *Server {
	return &Server{
		db:        db,
		proc:      proc,
		registry:  registry,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/jokers", s.handleListJokers)

		r.Get("/cache", s.handleCacheMetrics)
		r.Post("/cache/clear", s.handleCacheClear)
		r.Post("/cache/capacity", s.handleCacheCapacity)
		r.Post("/classification/clear", s.handleClassificationClear)

		if s.db != nil {
			r.Get("/sessions", s.handleListSessions)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Get("/sessions/{id}/hands", s.handleGetHands)
		}
	})

	return r
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	EngineVersion string `json:"engine_version"`
	Uptime        string `json:"uptime"`
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	JokerKinds    int    `json:"joker_kinds"`
	Database      bool   `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		Uptime:        time.Since(s.startTime).String(),
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		JokerKinds:    len(s.registry.Kinds()),
		Database:      s.db != nil,
	})
}

// JokerInfo is one registered kind in the /jokers listing.
type JokerInfo struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Cost   int    `json:"cost"`
}

// JokersResponse lists every registered joker kind.
type JokersResponse struct {
	Jokers        []JokerInfo `json:"jokers"`
	EngineVersion string      `json:"engine_version"`
}

func (s *Server) handleListJokers(w http.ResponseWriter, r *http.Request) {
	kinds := s.registry.Kinds()
	jokers := make([]JokerInfo, 0, len(kinds))
	for _, kind := range kinds {
		m, ok := s.registry.Meta(kind)
		if !ok {
			continue
		}
		jokers = append(jokers, JokerInfo{
			Kind:   m.Kind,
			Name:   m.Name,
			Rarity: string(m.Rarity),
			Cost:   m.Cost,
		})
	}
	s.writeJSON(w, http.StatusOK, JokersResponse{Jokers: jokers, EngineVersion: EngineVersion})
}

// CacheResponse reports effect cache health.
type CacheResponse struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	Len      int     `json:"len"`
	Capacity int     `json:"capacity"`
}

func (s *Server) handleCacheMetrics(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.proc.CacheMetrics()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	s.writeJSON(w, http.StatusOK, CacheResponse{
		Hits:     hits,
		Misses:   misses,
		HitRate:  rate,
		Len:      s.proc.CacheLen(),
		Capacity: s.proc.CacheCapacity(),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.proc.ClearCache()
	s.logger.Printf("effect cache cleared")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleCacheCapacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Capacity int `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Capacity <= 0 {
		s.writeError(w, http.StatusBadRequest, "capacity must be positive")
		return
	}
	s.proc.SetCacheCapacity(req.Capacity)
	s.logger.Printf("effect cache capacity set to %d", req.Capacity)
	s.writeJSON(w, http.StatusOK, map[string]int{"capacity": req.Capacity})
}

func (s *Server) handleClassificationClear(w http.ResponseWriter, r *http.Request) {
	s.proc.ClearClassification()
	s.logger.Printf("capability classification cleared")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	list, err := s.db.ListSessions(store.SessionsQuery{Page: page, PerPage: perPage})
	if err != nil {
		s.logger.Printf("list sessions: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.db.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.db.GetSession(id); err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := s.db.DeleteSession(id); err != nil {
		s.logger.Printf("delete session %s: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetHands(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 100
	}

	hands, err := s.db.GetHands(id, limit, offset)
	if err != nil {
		s.logger.Printf("get hands %s: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "failed to get hands")
		return
	}
	if hands == nil {
		hands = []store.HandResult{}
	}
	s.writeJSON(w, http.StatusOK, hands)
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
