// Package gate implements the failover gate every standby crawler and
// indexer worker consults before pulling its next task (the primary rank
// runs without one): a strict-priority liveness
// check against the Control Service that fails closed on any doubt.
// Uses the same short-timeout http.Client{Timeout: ...} pattern as the
// rest of the outbound HTTP calls in this repo.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
)

// Gate decides whether the calling node currently owns its assigned rank.
type Gate struct {
	client    *http.Client
	masterAPI string
	ranks     config.RankBinding // not set by New; priority order is rankOrder
	rankOrder []string
	nodeID    string
}

// rankResponse is the Control Service's per-rank liveness payload.
type rankResponse struct {
	OwnerNodeID string `json:"owner_node_id"`
	Alive       bool   `json:"alive"`
}

// New builds a Gate for nodeID, consulting masterAPI's per-rank liveness
// endpoint. rankOrder lists every rank of this role, highest priority
// first (e.g. []string{"crawler-1", "crawler-2", "crawler-3"}).
func New(masterAPI, nodeID string, rankOrder []string, timeout time.Duration) *Gate {
	return &Gate{
		client:    &http.Client{Timeout: timeout},
		masterAPI: masterAPI,
		rankOrder: rankOrder,
		nodeID:    nodeID,
	}
}

// IsPrimary reports whether nodeID currently holds the highest-priority
// rank that is alive. Strict priority means: walk rankOrder in order, the
// first rank whose owner is alive is "the" active rank for this role; this
// node may only proceed if it is that rank's owner. Any transport or
// decode error fails closed (returns false).
func (g *Gate) IsPrimary(ctx context.Context) (bool, error) {
	for _, rank := range g.rankOrder {
		resp, err := g.fetchRank(ctx, rank)
		if err != nil {
			return false, err
		}
		if !resp.Alive {
			continue
		}
		return resp.OwnerNodeID == g.nodeID, nil
	}
	// No rank reported alive: nothing to do, fail closed.
	return false, nil
}

func (g *Gate) fetchRank(ctx context.Context, rank string) (rankResponse, error) {
	url := fmt.Sprintf("%s/api/%s-status", g.masterAPI, rank)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rankResponse{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return rankResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rankResponse{}, fmt.Errorf("gate: %s returned %d", url, resp.StatusCode)
	}

	var out rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return rankResponse{}, err
	}
	return out, nil
}

// WaitUntilPrimary blocks, polling every retryDelay, until IsPrimary
// returns true or ctx is cancelled.
func (g *Gate) WaitUntilPrimary(ctx context.Context, retryDelay time.Duration) error {
	ticker := time.NewTicker(retryDelay)
	defer ticker.Stop()

	for {
		ok, err := g.IsPrimary(ctx)
		if err == nil && ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
