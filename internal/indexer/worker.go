// Package indexer implements the indexer role's worker pool: consume
// PagePayloads from the IndexerQueue, clean the text a second time, upsert
// into the Page Store, optionally submit the URL to an external search
// engine. Grounded on the crawler worker's queue-loop shape, generalized
// from fetch+extract to clean+upsert+submit.
package indexer

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
	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

// Worker runs the indexer role's ingest loop against an IndexerQueue.
type Worker struct {
	id          string
	pages       queue.Queue
	store       store.Interface
	external    ExternalIndexer
	gate        *gate.Gate
	politeness  time.Duration
	waitTimeout time.Duration
	urlCount    int64
}

// NewWorker builds an indexer Worker. external may be NullIndexer{} when no
// external search engine is configured.
func NewWorker(id string, pages queue.Queue, st store.Interface, external ExternalIndexer, g *gate.Gate, politeness, waitTimeout time.Duration) *Worker {
	if external == nil {
		external = NullIndexer{}
	}
	return &Worker{
		id:          id,
		pages:       pages,
		store:       st,
		external:    external,
		gate:        g,
		politeness:  politeness,
		waitTimeout: waitTimeout,
	}
}

// URLCount reports how many pages this worker has indexed.
func (w *Worker) URLCount() int64 {
	return atomic.LoadInt64(&w.urlCount)
}

// Run drives the ingest loop until ctx is cancelled or an interrupt signal
// arrives.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			utils.Info("indexer worker received interrupt, shutting down", utils.NewField("worker_id", w.id))
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
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(w.politeness):
				}
				continue
			}
		}

		msgs, err := w.pages.Receive(ctx, 1, w.waitTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			utils.Error("page receive failed", utils.NewField("worker_id", w.id), utils.NewField("error", err.Error()))
			continue
		}
		for _, msg := range msgs {
			w.process(ctx, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg queue.Message) {
	var payload models.PagePayload
	dec := json.NewDecoder(bytes.NewReader(msg.Body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		utils.Error("dropping malformed page payload", utils.NewField("worker_id", w.id), utils.NewField("error", err.Error()))
		_ = w.pages.Delete(ctx, msg.Handle)
		return
	}

	// payload.Text was already stripped of script/style and whitespace by
	// the crawler's htmltext.Extract; clean it again since the queue hop
	// gives no guarantee a producer kept that invariant.
	cleaned, err := htmltext.Clean(payload.Text)
	if err != nil {
		cleaned = htmltext.CollapseWhitespace(payload.Text)
	}

	result, err := w.external.Submit(ctx, payload.URL)
	if err != nil {
		utils.Debug("external indexer submission failed", utils.NewField("url", payload.URL), utils.NewField("error", err.Error()))
		result = models.DummyIndexResult()
	}

	page := models.IndexedPage{URL: payload.URL, Content: cleaned, IndexedObjID: result.ObjectID}
	if err := w.store.UpsertPage(page); err != nil {
		utils.Error("upsert page failed", utils.NewField("url", payload.URL), utils.NewField("error", err.Error()))
		return
	}
	atomic.AddInt64(&w.urlCount, 1)

	if err := w.pages.Delete(ctx, msg.Handle); err != nil {
		utils.Error("ack page failed", utils.NewField("url", payload.URL), utils.NewField("error", err.Error()))
	}
}
