// Package crawler implements the crawler role's worker pool: pull a
// CrawlTask, fetch it, extract text and links, emit a PagePayload for the
// indexer, enqueue child tasks for every discovered link, ack. The crawl
// is queue-driven and depth-bounded: a task deeper than its MaxDepth is
// dropped on receipt.
package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/synapticforge/crawlmesh/internal/gate"
	"github.com/synapticforge/crawlmesh/internal/htmltext"
	"github.com/synapticforge/crawlmesh/internal/queue"
	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

// Worker runs the crawler role's fetch loop against a TaskQueue, emitting
// PagePayloads onto an IndexerQueue.
type Worker struct {
	id          string
	tasks       queue.Queue
	pages       queue.Queue
	fetcher     *Fetcher
	robots      *RobotsChecker
	gate        *gate.Gate
	politeness  time.Duration
	waitTimeout time.Duration
	urlCount    int64
}

// NewWorker builds a crawler Worker. gate may be nil, in which case the
// worker always proceeds (used for the in-memory single-process mode
// where there is only ever one crawler). robots may be nil, in which
// case no robots.txt check is performed.
func NewWorker(id string, tasks, pages queue.Queue, fetcher *Fetcher, robots *RobotsChecker, g *gate.Gate, politeness, waitTimeout time.Duration) *Worker {
	return &Worker{
		id:          id,
		tasks:       tasks,
		pages:       pages,
		fetcher:     fetcher,
		robots:      robots,
		gate:        g,
		politeness:  politeness,
		waitTimeout: waitTimeout,
	}
}

// URLCount reports how many pages this worker has successfully crawled,
// the counter the heartbeat loop reports upstream.
func (w *Worker) URLCount() int64 {
	return atomic.LoadInt64(&w.urlCount)
}

// Run drives the crawl loop until ctx is cancelled or an interrupt signal
// arrives.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			utils.Info("crawler worker received interrupt, shutting down", utils.NewField("worker_id", w.id))
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if w.gate != nil {
			primary, err := w.gate.IsPrimary(ctx)
			if err != nil || !primary {
				if err != nil {
					utils.Debug("gate check failed, idling", utils.NewField("worker_id", w.id), utils.NewField("error", err.Error()))
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(w.politeness):
				}
				continue
			}
		}

		msgs, err := w.tasks.Receive(ctx, 1, w.waitTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			utils.Error("task receive failed", utils.NewField("worker_id", w.id), utils.NewField("error", err.Error()))
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		for _, msg := range msgs {
			w.process(ctx, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg queue.Message) {
	var task models.CrawlTask
	dec := json.NewDecoder(bytes.NewReader(msg.Body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&task); err != nil {
		utils.Error("dropping malformed task", utils.NewField("worker_id", w.id), utils.NewField("error", err.Error()))
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}

	if task.Exceeds() {
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}

	if w.robots != nil && !w.robots.IsAllowed(ctx, task.URL) {
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.politeness):
	}

	result, err := w.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		utils.Debug("fetch failed", utils.NewField("url", task.URL), utils.NewField("error", err.Error()))
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}

	extracted, err := htmltext.Extract(task.URL, bytes.NewReader(result.Body))
	if err != nil {
		utils.Error("extract failed", utils.NewField("url", task.URL), utils.NewField("error", err.Error()))
		_ = w.tasks.Delete(ctx, msg.Handle)
		return
	}

	if extracted.Text != "" {
		payload := models.PagePayload{URL: task.URL, Text: extracted.Text, Links: extracted.Links}
		body, err := json.Marshal(payload)
		if err != nil {
			utils.Error("marshal payload failed", utils.NewField("url", task.URL), utils.NewField("error", err.Error()))
		} else if err := w.pages.Send(ctx, body); err != nil {
			utils.Error("emit page payload failed", utils.NewField("url", task.URL), utils.NewField("error", err.Error()))
		} else {
			atomic.AddInt64(&w.urlCount, 1)
		}
	}

	for _, link := range extracted.Links {
		if task.RestrictDomain && task.DomainPrefix != "" && !utils.SameOrigin(link, task.DomainPrefix) {
			continue
		}
		child := task.Child(link)
		body, err := json.Marshal(child)
		if err != nil {
			continue
		}
		if err := w.tasks.Send(ctx, body); err != nil {
			utils.Error("enqueue child task failed", utils.NewField("url", link), utils.NewField("error", err.Error()))
		}
	}

	if err := w.tasks.Delete(ctx, msg.Handle); err != nil {
		utils.Error("ack task failed", utils.NewField("url", task.URL), utils.NewField("error", err.Error()))
	}
}

