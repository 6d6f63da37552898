package cmd

import (
	"fmt"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/queue"
)

// buildQueue constructs the TaskQueue or IndexerQueue backend named by
// cfg.QueueBackend. "sqs" is the distributed backend separate crawler/
// indexer processes actually share; "memory" only makes sense for local
// manual testing of a single role in isolation, since an in-memory
// channel can't be handed to another OS process.
func buildQueue(cfg *config.Config, queueURL string) (queue.Queue, error) {
	switch cfg.QueueBackend {
	case "memory":
		return queue.NewMemQueue(30 * time.Second), nil
	case "sqs":
		return queue.NewSQSQueue(cfg.AWSRegion, queueURL, cfg.FIFO)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}
