// Package api exposes the downstream ingestion interface: a small HTTP
// service that accepts scraped job records and lists the collection.
//
// It reproduces the consumer this scraper feeds: submissions are
// deduplicated on the record's title text before insertion. That check is
// intentionally different from the store's own job_id dedup; the divergence
// is an observed behavior of the consumer and is preserved, not corrected.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/jobs"
	"github.com/jobsift/dice-crawler/internal/metrics"
)

// Server wires HTTP handlers to an in-memory job collection, seeded from a
// record store at startup.
type Server struct {
	router chi.Router
	logger *zap.Logger

	mu         sync.Mutex
	records    []jobs.JobRecord
	seenTitles map[string]struct{}
}

// NewServer constructs a Server seeded with the given records.
func NewServer(seed []jobs.JobRecord, logger *zap.Logger) *Server {
	s := &Server{
		logger:     logger,
		records:    make([]jobs.JobRecord, 0, len(seed)),
		seenTitles: make(map[string]struct{}),
	}
	for _, record := range seed {
		s.insert(record)
	}

	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Route("/joblisting", func(r chi.Router) {
		r.Get("/jobs", s.listJobs)
		r.Post("/jobs", s.createJob)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listJobs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]jobs.JobRecord, len(s.records))
	copy(out, s.records)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var record jobs.JobRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		metrics.ObserveIngest("rejected")
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(record.BasicInfo.Title) == "" {
		metrics.ObserveIngest("rejected")
		writeError(w, http.StatusBadRequest, "missing title")
		return
	}

	s.mu.Lock()
	inserted := s.insert(record)
	s.mu.Unlock()

	if !inserted {
		metrics.ObserveIngest("duplicate")
		writeError(w, http.StatusConflict, "job already ingested")
		return
	}
	metrics.ObserveIngest("created")
	writeJSON(w, http.StatusCreated, record)
}

// insert appends record unless its title has been seen. Caller holds the
// lock except during construction.
func (s *Server) insert(record jobs.JobRecord) bool {
	title := strings.TrimSpace(record.BasicInfo.Title)
	if title == "" {
		return false
	}
	if _, ok := s.seenTitles[title]; ok {
		return false
	}
	s.seenTitles[title] = struct{}{}
	s.records = append(s.records, record)
	return true
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
