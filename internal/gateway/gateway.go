// Package gateway implements the public-facing monitoring UI: a static
// HTML/JS dashboard plus a thin pass-through proxy to the Control
// Service's /api/status, /api/search and /api/crawl endpoints. Uses Go's
// html/template for the page and net/http.Client for the pass-through
// calls, with the dashboard's own AJAX done in plain vanilla JS.
package gateway

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Gateway proxies browser requests to the Control Service and serves the
// monitoring dashboard.
type Gateway struct {
	masterAPI string
	client    *http.Client
	logger    *zap.Logger
	page      *template.Template
}

// New builds a Gateway that forwards to masterAPI.
func New(masterAPI string, logger *zap.Logger) *Gateway {
	return &Gateway{
		masterAPI: masterAPI,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
		page:      template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}
}

// Router returns the gateway's HTTP handler.
func (g *Gateway) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", g.handleDashboard)
	mux.HandleFunc("/heartbeat", g.proxyGET("/api/status"))
	mux.HandleFunc("/search", g.proxyGET("/api/search"))
	mux.HandleFunc("/crawl", g.proxyPOST("/api/crawl"))
	return mux
}

func (g *Gateway) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := g.page.Execute(w, nil); err != nil {
		g.logger.Error("render dashboard failed", zap.Error(err))
	}
}

// proxyGET forwards a GET request's query string to path on the Control
// Service, returning an empty JSON array on any failure so the dashboard
// degrades gracefully instead of breaking.
func (g *Gateway) proxyGET(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := g.masterAPI + path
		if r.URL.RawQuery != "" {
			url += "?" + r.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
		if err != nil {
			g.respondEmpty(w)
			return
		}

		resp, err := g.client.Do(req)
		if err != nil {
			g.logger.Warn("proxy GET failed", zap.String("path", path), zap.Error(err))
			g.respondEmpty(w)
			return
		}
		defer resp.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
	}
}

func (g *Gateway) proxyPOST(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, g.masterAPI+path, r.Body)
		if err != nil {
			g.respondError(w, "failed to contact master")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			g.logger.Warn("proxy POST failed", zap.String("path", path), zap.Error(err))
			g.respondError(w, "failed to contact master")
			return
		}
		defer resp.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
	}
}

func (g *Gateway) respondEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("[]"))
}

func (g *Gateway) respondError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
