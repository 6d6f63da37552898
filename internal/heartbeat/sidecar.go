// Package heartbeat implements the Control Service's in-memory heartbeat
// sidecar: a single mutex-guarded container mapping node_id to its latest
// counters and ephemeral thread-status list, plus whatever cached
// previous-url-count a status derivation needs. Generalizes the
// mutex/atomic-counter idiom used for a single process's own counters
// elsewhere in this codebase to a service-wide map of every worker's
// counters.
package heartbeat

import (
	"sync"
	"time"

	"github.com/synapticforge/crawlmesh/pkg/models"
)

type entry struct {
	role        string
	ip          string
	urlCount    int64
	lastSeen    time.Time
	threadsInfo []models.ThreadStatus
	prevCount   int64 // url_count as of the previous /api/status observation
}

// Sidecar is the service-scoped, mutex-guarded heartbeat store. Constructed
// once at Control Service startup, dropped at shutdown.
type Sidecar struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewSidecar creates an empty heartbeat sidecar.
func NewSidecar() *Sidecar {
	return &Sidecar{entries: make(map[string]*entry)}
}

// Observe upserts a node's heartbeat, setting last_seen to now (UTC).
func (s *Sidecar) Observe(req models.HeartbeatRequest, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[req.NodeID]
	if !ok {
		e = &entry{}
		s.entries[req.NodeID] = e
	}
	e.role = req.Role
	e.ip = req.IP
	e.urlCount = req.URLCount
	e.lastSeen = now.UTC()
	e.threadsInfo = req.ThreadsInfo
}

// Status computes the NodeStatus/StatusView for every known node as of
// `now`: `not active` if age exceeds staleThreshold, otherwise `running`
// when url_count strictly increased since the last Status() call for that
// node, else `idle`. Calling Status() advances the previous-count cache,
// so the "previous vs current" comparison is driven by the server rather
// than left to each client.
func (s *Sidecar) Status(now time.Time, staleThreshold time.Duration, detailed bool) []models.StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]models.StatusView, 0, len(s.entries))
	for nodeID, e := range s.entries {
		age := now.Sub(e.lastSeen)
		var status models.NodeStatus
		if age > staleThreshold {
			status = models.StatusNotActive
		} else if e.urlCount > e.prevCount {
			status = models.StatusRunning
		} else {
			status = models.StatusIdle
		}
		e.prevCount = e.urlCount

		view := models.StatusView{
			NodeID:   nodeID,
			Role:     e.role,
			IP:       e.ip,
			URLCount: e.urlCount,
			LastSeen: e.lastSeen,
			Status:   status,
		}
		if detailed {
			view.ThreadsInfo = e.threadsInfo
		}
		views = append(views, view)
	}
	return views
}

// Age returns how long it has been since nodeID's last heartbeat, and
// whether the node has ever been observed.
func (s *Sidecar) Age(nodeID string, now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[nodeID]
	if !ok {
		return 0, false
	}
	return now.Sub(e.lastSeen), true
}
