package models

import "time"

// ThreadStatus is the ephemeral per-thread state reported by a worker for
// the monitoring UI. Never persisted.
type ThreadStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HeartbeatRequest is the body POSTed by every worker on its heartbeat
// interval.
type HeartbeatRequest struct {
	NodeID       string         `json:"node_id"`
	Role         string         `json:"role"`
	IP           string         `json:"ip"`
	URLCount     int64          `json:"url_count"`
	ThreadsInfo  []ThreadStatus `json:"threads_info"`
}

// HeartbeatRecord is the shape of a durable heartbeat row. The Control
// Service keeps heartbeats only in its in-memory sidecar and never writes
// this record.
type HeartbeatRecord struct {
	NodeID   string    `json:"node_id"`
	Role     string    `json:"role"`
	IP       string    `json:"ip"`
	LastSeen time.Time `json:"last_seen"`
	URLCount int64     `json:"url_count"`
}

// NodeStatus is one of the three derived (never stored) liveness labels.
type NodeStatus string

const (
	StatusRunning    NodeStatus = "running"
	StatusIdle       NodeStatus = "idle"
	StatusNotActive  NodeStatus = "not active"
)

// StatusView is the response shape for GET /api/status, one entry per node.
type StatusView struct {
	NodeID      string         `json:"node_id"`
	Role        string         `json:"role"`
	IP          string         `json:"ip"`
	URLCount    int64          `json:"url_count"`
	LastSeen    time.Time      `json:"last_seen"`
	Status      NodeStatus     `json:"status"`
	ThreadsInfo []ThreadStatus `json:"threads_info,omitempty"`
}
