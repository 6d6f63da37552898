package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/heartbeat"
	"github.com/synapticforge/crawlmesh/internal/queue"
	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/pkg/models"
	"go.uber.org/zap"
)

func newTestServer() (*Server, queue.Queue, *store.MemStore) {
	tasks := queue.NewMemQueue(time.Second)
	mem := store.NewMemStore()
	sidecar := heartbeat.NewSidecar()

	srv := NewServer(Deps{
		Store:           mem,
		Sidecar:         sidecar,
		TaskQueue:       tasks,
		Logger:          zap.NewNop(),
		CrawlerRanks:    config.RankBinding{"crawler-1": "node-a", "crawler-2": "node-b"},
		IndexerRanks:    config.RankBinding{"indexer-1": "node-c"},
		CrawlerLiveness: 4 * time.Second,
		IndexerLiveness: 5 * time.Second,
		StaleThreshold:  10 * time.Second,
	})
	return srv, tasks, mem
}

func TestHandleSubmitCrawlEnqueuesSeedTask(t *testing.T) {
	srv, tasks, _ := newTestServer()

	body, _ := json.Marshal(submitCrawlRequest{URL: "example.com", MaxDepth: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/crawl", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	msgs, err := tasks.Receive(req.Context(), 1, 100*time.Millisecond)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected one queued task, got %v err=%v", msgs, err)
	}

	var task models.CrawlTask
	if err := json.Unmarshal(msgs[0].Body, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.URL != "https://example.com" {
		t.Fatalf("expected scheme-prefixed url, got %q", task.URL)
	}
	if task.MaxDepth != 2 {
		t.Fatalf("expected max_depth 2, got %d", task.MaxDepth)
	}
}

func TestHandleSubmitCrawlRejectsInvalidURL(t *testing.T) {
	srv, _, _ := newTestServer()

	body, _ := json.Marshal(submitCrawlRequest{URL: "not a url!!"})
	req := httptest.NewRequest(http.MethodPost, "/api/crawl", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleHeartbeatAndStatus(t *testing.T) {
	srv, _, _ := newTestServer()

	hb := models.HeartbeatRequest{NodeID: "node-a", Role: "crawler", IP: "10.0.0.1", URLCount: 5}
	body, _ := json.Marshal(hb)
	req := httptest.NewRequest(http.MethodPost, "/api/heartbeat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	statusReq := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	statusW := httptest.NewRecorder()
	srv.Router().ServeHTTP(statusW, statusReq)
	if statusW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", statusW.Code)
	}

	var views []models.StatusView
	if err := json.Unmarshal(statusW.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if len(views) != 1 || views[0].NodeID != "node-a" {
		t.Fatalf("expected one view for node-a, got %+v", views)
	}
	if views[0].ThreadsInfo != nil {
		t.Fatalf("expected threads_info omitted without detailed=true, got %+v", views[0].ThreadsInfo)
	}

	detailedReq := httptest.NewRequest(http.MethodGet, "/api/status?detailed=true", nil)
	detailedW := httptest.NewRecorder()
	srv.Router().ServeHTTP(detailedW, detailedReq)

	var detailedViews []models.StatusView
	if err := json.Unmarshal(detailedW.Body.Bytes(), &detailedViews); err != nil {
		t.Fatalf("unmarshal detailed status: %v", err)
	}
	if len(detailedViews) != 1 {
		t.Fatalf("expected one detailed view, got %+v", detailedViews)
	}
}

func TestHandleRankStatusReflectsLiveness(t *testing.T) {
	srv, _, _ := newTestServer()

	hb := models.HeartbeatRequest{NodeID: "node-a", Role: "crawler", URLCount: 1}
	body, _ := json.Marshal(hb)
	req := httptest.NewRequest(http.MethodPost, "/api/heartbeat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	rankReq := httptest.NewRequest(http.MethodGet, "/api/crawler-1-status", nil)
	rankW := httptest.NewRecorder()
	srv.Router().ServeHTTP(rankW, rankReq)

	var resp struct {
		Rank        string `json:"rank"`
		OwnerNodeID string `json:"owner_node_id"`
		Alive       bool   `json:"alive"`
	}
	if err := json.Unmarshal(rankW.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.OwnerNodeID != "node-a" || !resp.Alive {
		t.Fatalf("expected node-a alive, got %+v", resp)
	}

	deadRankReq := httptest.NewRequest(http.MethodGet, "/api/crawler-2-status", nil)
	deadRankW := httptest.NewRecorder()
	srv.Router().ServeHTTP(deadRankW, deadRankReq)
	var deadResp struct {
		Alive bool `json:"alive"`
	}
	_ = json.Unmarshal(deadRankW.Body.Bytes(), &deadResp)
	if deadResp.Alive {
		t.Fatal("expected crawler-2 (no heartbeat ever observed) to be not alive")
	}
}

func TestHandleSearchReturnsResultsFromStore(t *testing.T) {
	srv, _, mem := newTestServer()
	_ = mem.UpsertPage(models.IndexedPage{URL: "https://a.test", Content: "golang concurrency patterns"})

	req := httptest.NewRequest(http.MethodGet, "/api/search?keyword=golang", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Keyword string   `json:"keyword"`
		URLs    []string `json:"urls"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal search response: %v", err)
	}
	if resp.Keyword != "golang" {
		t.Fatalf("expected keyword echoed back, got %+v", resp)
	}
	if len(resp.URLs) != 1 || resp.URLs[0] != "https://a.test" {
		t.Fatalf("expected one matching url, got %+v", resp)
	}
}
