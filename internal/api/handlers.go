package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/search"
	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/synapticforge/crawlmesh/pkg/models"
	"go.uber.org/zap"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// submitCrawlRequest is the POST /api/crawl body.
type submitCrawlRequest struct {
	URL            string `json:"url"`
	MaxDepth       int    `json:"max_depth"`
	RestrictDomain bool   `json:"domain_restricted"`
}

// handleSubmitCrawl validates and normalizes a seed URL, then enqueues the
// depth-0 CrawlTask onto the TaskQueue.
func (s *Server) handleSubmitCrawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req submitCrawlRequest
	if err := strictDecode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	normalized, ok := utils.ValidateSubmitURL(req.URL)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid url")
		return
	}

	var domainPrefix string
	if req.RestrictDomain {
		prefix, err := utils.DomainPrefix(normalized)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "cannot derive domain prefix")
			return
		}
		domainPrefix = prefix
	}

	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}

	task := models.CrawlTask{
		URL:            normalized,
		Depth:          0,
		MaxDepth:       maxDepth,
		RestrictDomain: req.RestrictDomain,
		DomainPrefix:   domainPrefix,
	}

	body, err := json.Marshal(task)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to encode task")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.taskQueue.Send(ctx, body); err != nil {
		s.logger.Error("enqueue seed task failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to enqueue crawl")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "crawl queued"})
}

// handleSearch runs TF-IDF search over the Page Store's current snapshot.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		s.respondError(w, http.StatusBadRequest, "missing keyword parameter")
		return
	}

	pages, err := s.store.AllPages()
	if err != nil {
		s.logger.Error("search: failed to load pages", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search unavailable")
		return
	}

	docs := make([]search.Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, search.Document{URL: p.URL, Text: p.Content})
	}

	results := search.Search(keyword, docs)
	urls := make([]string, 0, len(results))
	for _, res := range results {
		urls = append(urls, res.URL)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"keyword": keyword, "urls": urls})
}

// handleHeartbeat ingests a worker's periodic heartbeat into the sidecar.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.HeartbeatRequest
	if err := strictDecode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.NodeID == "" {
		s.respondError(w, http.StatusBadRequest, "node_id is required")
		return
	}

	s.sidecar.Observe(req, time.Now())
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus returns every known node's derived liveness status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	views := s.sidecar.Status(time.Now(), s.staleThreshold, detailed)
	s.respondJSON(w, http.StatusOK, views)
}

// handleRankStatus answers the Failover Gate's per-rank liveness poll: is
// the node statically bound to this rank currently alive?
func (s *Server) handleRankStatus(rank string, ranks config.RankBinding, livenessThreshold time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		nodeID := ranks[rank]
		alive := false
		if nodeID != "" {
			age, known := s.sidecar.Age(nodeID, time.Now())
			alive = known && age <= livenessThreshold
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"rank":          rank,
			"owner_node_id": nodeID,
			"alive":         alive,
		})
	}
}
