package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

// runHeartbeatLoop POSTs this node's status to the Control Service on
// cfg.HeartbeatInterval until ctx is cancelled. urlCount reports the
// current total pages processed by this node's worker pool.
func runHeartbeatLoop(ctx context.Context, cfg *config.Config, role string, urlCount func() int64) {
	client := &http.Client{Timeout: cfg.HeartbeatTimeout}
	ip := localIP()

	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sendHeartbeat(ctx, client, cfg.MasterAPI, models.HeartbeatRequest{
				NodeID:   cfg.NodeID,
				Role:     role,
				IP:       ip,
				URLCount: urlCount(),
			})
		}
	}
}

func sendHeartbeat(ctx context.Context, client *http.Client, masterAPI string, req models.HeartbeatRequest) {
	body, err := json.Marshal(req)
	if err != nil {
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, masterAPI+"/api/heartbeat", bytes.NewReader(body))
	if err != nil {
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		utils.Debug("heartbeat post failed", utils.NewField("error", err.Error()))
		return
	}
	resp.Body.Close()
}

func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
