// Package config centralizes per-process configuration: MASTER_API URL,
// role, rank/node-id binding, thread counts, politeness delay, request
// timeouts and queue URLs. Loaded from environment variables via
// github.com/joho/godotenv for local .env files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()
}

// RankBinding is the static configuration map the Control Service and the
// Failover Gate both use to resolve a rank name ("crawler-1") to the node
// id that currently owns it.
type RankBinding = map[string]string

// Config holds every ambient setting a crawlmesh process needs.
type Config struct {
	// Identity
	Role   string // "crawler" | "indexer"
	NodeID string
	Rank   string // e.g. "crawler-1"

	// Control plane
	MasterAPI string

	// Queue backend
	QueueBackend    string // "memory" | "sqs"
	AWSRegion       string
	TaskQueueURL    string
	IndexerQueueURL string
	FIFO            bool

	// Worker pool sizing
	CrawlerThreads int
	IndexerThreads int

	// Timing
	PolitenessDelay   time.Duration
	FetchTimeout      time.Duration
	QueueWaitTimeout  time.Duration
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	RefreshInterval   time.Duration
	GateRetryDelay    time.Duration

	// Liveness thresholds, per role, for the Failover Gate
	CrawlerLivenessThreshold time.Duration
	IndexerLivenessThreshold time.Duration
	StaleHeartbeatThreshold  time.Duration

	// Rank bindings (rank name -> node id). Maps carry no order: priority
	// is the lexicographic order of the rank names.
	CrawlerRanks RankBinding
	IndexerRanks RankBinding

	// Supabase-backed Page Store / Keyword Index (heartbeats are kept only
	// in the Control Service's memory)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// HTTP surfaces
	ControlServicePort int
	GatewayPort        int

	UserAgent     string
	RespectRobots bool
}

// Default returns a Config populated with the system's baseline defaults
// (3 crawler threads, 2 indexer threads, ~2s politeness delay, 10s
// long-poll, 3s refresh interval, 4s/5s liveness thresholds).
func Default() *Config {
	return &Config{
		Role:                     "crawler",
		NodeID:                   hostnameOrTag(),
		MasterAPI:                "http://localhost:5000",
		QueueBackend:             "memory",
		AWSRegion:                "eu-north-1",
		TaskQueueURL:             "TaskQueue",
		IndexerQueueURL:          "IndexerQueue",
		FIFO:                     false,
		CrawlerThreads:           3,
		IndexerThreads:           2,
		PolitenessDelay:          2 * time.Second,
		FetchTimeout:             5 * time.Second,
		QueueWaitTimeout:         10 * time.Second,
		HeartbeatInterval:        2 * time.Second,
		HeartbeatTimeout:         3 * time.Second,
		RefreshInterval:          3 * time.Second,
		GateRetryDelay:           time.Second,
		CrawlerLivenessThreshold: 4 * time.Second,
		IndexerLivenessThreshold: 5 * time.Second,
		StaleHeartbeatThreshold:  10 * time.Second,
		CrawlerRanks: RankBinding{
			"crawler-1": "node-crawler-1",
			"crawler-2": "node-crawler-2",
			"crawler-3": "node-crawler-3",
		},
		IndexerRanks: RankBinding{
			"indexer-1": "node-indexer-1",
			"indexer-2": "node-indexer-2",
		},
		ControlServicePort: 5000,
		GatewayPort:        5050,
		UserAgent:          "Mozilla/5.0 (compatible; crawlmesh/1.0; +https://crawlmesh.invalid/bot)",
		RespectRobots:      true,
	}
}

// FromEnv layers environment variable overrides on top of Default().
func FromEnv() *Config {
	c := Default()

	c.Role = getEnv("CRAWLMESH_ROLE", c.Role)
	c.NodeID = getEnv("CRAWLMESH_NODE_ID", c.NodeID)
	c.Rank = getEnv("CRAWLMESH_RANK", c.Rank)
	c.MasterAPI = getEnv("CRAWLMESH_MASTER_API", c.MasterAPI)

	c.QueueBackend = getEnv("CRAWLMESH_QUEUE_BACKEND", c.QueueBackend)
	c.AWSRegion = getEnv("CRAWLMESH_AWS_REGION", c.AWSRegion)
	c.TaskQueueURL = getEnv("CRAWLMESH_TASK_QUEUE_URL", c.TaskQueueURL)
	c.IndexerQueueURL = getEnv("CRAWLMESH_INDEXER_QUEUE_URL", c.IndexerQueueURL)
	c.FIFO = getEnvBool("CRAWLMESH_QUEUE_FIFO", c.FIFO)

	c.CrawlerThreads = getEnvInt("CRAWLMESH_CRAWLER_THREADS", c.CrawlerThreads)
	c.IndexerThreads = getEnvInt("CRAWLMESH_INDEXER_THREADS", c.IndexerThreads)

	c.PolitenessDelay = getEnvDuration("CRAWLMESH_POLITENESS_DELAY", c.PolitenessDelay)
	c.FetchTimeout = getEnvDuration("CRAWLMESH_FETCH_TIMEOUT", c.FetchTimeout)
	c.RefreshInterval = getEnvDuration("CRAWLMESH_REFRESH_INTERVAL", c.RefreshInterval)

	c.SupabaseURL = os.Getenv("SUPABASE_URL")
	c.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	c.SupabaseServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")

	c.ControlServicePort = getEnvInt("CRAWLMESH_CONTROL_PORT", c.ControlServicePort)
	c.GatewayPort = getEnvInt("CRAWLMESH_GATEWAY_PORT", c.GatewayPort)
	c.RespectRobots = getEnvBool("CRAWLMESH_RESPECT_ROBOTS", c.RespectRobots)

	return c
}

func hostnameOrTag() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown-node"
	}
	return h
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
