package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synapticforge/crawlmesh/internal/queue"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

func TestWorkerCrawlsSeedAndEmitsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>hello there</p><a href="/next">next</a></body></html>`))
	}))
	defer srv.Close()

	tasks := queue.NewMemQueue(time.Second)
	pages := queue.NewMemQueue(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seed := models.CrawlTask{URL: srv.URL, Depth: 0, MaxDepth: 1}
	body, _ := json.Marshal(seed)
	if err := tasks.Send(ctx, body); err != nil {
		t.Fatalf("seed send: %v", err)
	}

	fetcher := NewFetcher(time.Second, "test-agent")
	w := NewWorker("w1", tasks, pages, fetcher, nil, nil, 0, 200*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	msgs, err := pages.Receive(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("receive page: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 page payload, got %d", len(msgs))
	}

	var payload models.PagePayload
	if err := json.Unmarshal(msgs[0].Body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != "hello there next" {
		t.Fatalf("unexpected text: %q", payload.Text)
	}
	if payload.URL != srv.URL {
		t.Fatalf("unexpected url: %q", payload.URL)
	}

	if w.URLCount() < 1 {
		t.Fatalf("expected url count >= 1, got %d", w.URLCount())
	}

	cancel()
	<-done
}

func TestWorkerDropsTasksBeyondMaxDepth(t *testing.T) {
	tasks := queue.NewMemQueue(time.Second)
	pages := queue.NewMemQueue(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	task := models.CrawlTask{URL: "https://example.test", Depth: 5, MaxDepth: 1}
	body, _ := json.Marshal(task)
	_ = tasks.Send(ctx, body)

	fetcher := NewFetcher(time.Second, "test-agent")
	w := NewWorker("w1", tasks, pages, fetcher, nil, nil, 0, 100*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-ctx.Done()
	<-done

	if w.URLCount() != 0 {
		t.Fatalf("expected no pages crawled for over-depth task, got %d", w.URLCount())
	}
}
