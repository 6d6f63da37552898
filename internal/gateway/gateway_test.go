package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestDashboardServesHTML(t *testing.T) {
	gw := New("http://unused.invalid", zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	gw.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "crawlmesh monitor") {
		t.Fatal("expected dashboard HTML to render")
	}
}

func TestProxyGETReturnsEmptyOnMasterFailure(t *testing.T) {
	gw := New("http://127.0.0.1:1", zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/heartbeat", nil)
	w := httptest.NewRecorder()
	gw.Router().ServeHTTP(w, req)

	if w.Body.String() != "[]" {
		t.Fatalf("expected empty array fallback, got %q", w.Body.String())
	}
}

func TestProxyGETForwardsMasterResponse(t *testing.T) {
	master := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"node_id":"node-a"}]`))
	}))
	defer master.Close()

	gw := New(master.URL, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/heartbeat?detailed=true", nil)
	w := httptest.NewRecorder()
	gw.Router().ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "node-a") {
		t.Fatalf("expected proxied body, got %q", w.Body.String())
	}
}
