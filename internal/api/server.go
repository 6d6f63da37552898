// Package api implements the Control Service: the single HTTP surface
// that accepts crawl submissions, answers search queries, and aggregates
// every worker's heartbeat into the liveness view the Failover Gate polls.
// Built around net/http.ServeMux plus CORS and logging middleware, a
// respondJSON/respondError pair, and a status-capturing responseWriter.
// Carries no end-user auth middleware: every caller here is a trusted
// internal worker, not an end user behind row-level security.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/heartbeat"
	"github.com/synapticforge/crawlmesh/internal/queue"
	"github.com/synapticforge/crawlmesh/internal/search"
	"github.com/synapticforge/crawlmesh/internal/store"
	"go.uber.org/zap"
)

// Server is the Control Service.
type Server struct {
	store     store.Interface
	sidecar   *heartbeat.Sidecar
	taskQueue queue.Queue
	logger    *zap.Logger

	crawlerRanks config.RankBinding
	indexerRanks config.RankBinding

	crawlerLiveness time.Duration
	indexerLiveness time.Duration
	staleThreshold  time.Duration
}

// Deps bundles everything the Control Service needs, so construction
// stays a single literal at the call site in cmd/.
type Deps struct {
	Store           store.Interface
	Sidecar         *heartbeat.Sidecar
	TaskQueue       queue.Queue
	Logger          *zap.Logger
	CrawlerRanks    config.RankBinding
	IndexerRanks    config.RankBinding
	CrawlerLiveness time.Duration
	IndexerLiveness time.Duration
	StaleThreshold  time.Duration
}

// NewServer builds a Control Service from its dependencies.
func NewServer(d Deps) *Server {
	return &Server{
		store:           d.Store,
		sidecar:         d.Sidecar,
		taskQueue:       d.TaskQueue,
		logger:          d.Logger,
		crawlerRanks:    d.CrawlerRanks,
		indexerRanks:    d.IndexerRanks,
		crawlerLiveness: d.CrawlerLiveness,
		indexerLiveness: d.IndexerLiveness,
		staleThreshold:  d.StaleThreshold,
	}
}

// Router returns the HTTP handler with every route wired.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/api/crawl", s.handleSubmitCrawl)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/heartbeat", s.handleHeartbeat)
	mux.HandleFunc("/api/status", s.handleStatus)

	for rank := range s.crawlerRanks {
		mux.HandleFunc("/api/"+rank+"-status", s.handleRankStatus(rank, s.crawlerRanks, s.crawlerLiveness))
	}
	for rank := range s.indexerRanks {
		mux.HandleFunc("/api/"+rank+"-status", s.handleRankStatus(rank, s.indexerRanks, s.indexerLiveness))
	}

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode json response", zap.Error(err))
	}
}

// strictDecode decodes r's JSON body into dst, rejecting any field dst
// doesn't declare. A decoder like this can never execute
// attacker-controlled data, only reject it.
func strictDecode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

