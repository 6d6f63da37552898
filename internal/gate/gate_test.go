package gate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rankServer(t *testing.T, alive map[string]rankResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rank := r.URL.Path[len("/api/"):]
		rank = rank[:len(rank)-len("-status")]
		resp, ok := alive[rank]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGateIsPrimaryWhenHighestPriorityAlive(t *testing.T) {
	srv := rankServer(t, map[string]rankResponse{
		"crawler-1": {OwnerNodeID: "node-a", Alive: true},
	})
	defer srv.Close()

	g := New(srv.URL, "node-a", []string{"crawler-1", "crawler-2"}, time.Second)
	ok, err := g.IsPrimary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected node-a to be primary")
	}
}

func TestGateFallsThroughToNextRankWhenDead(t *testing.T) {
	srv := rankServer(t, map[string]rankResponse{
		"crawler-1": {OwnerNodeID: "node-a", Alive: false},
		"crawler-2": {OwnerNodeID: "node-b", Alive: true},
	})
	defer srv.Close()

	g := New(srv.URL, "node-b", []string{"crawler-1", "crawler-2"}, time.Second)
	ok, err := g.IsPrimary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected node-b to take over as primary")
	}
}

func TestGateFailsClosedOnTransportError(t *testing.T) {
	g := New("http://127.0.0.1:1", "node-a", []string{"crawler-1"}, 200*time.Millisecond)
	ok, err := g.IsPrimary(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if ok {
		t.Fatal("expected fail-closed false on error")
	}
}

func TestGateNotPrimaryWhenAnotherNodeOwnsAliveRank(t *testing.T) {
	srv := rankServer(t, map[string]rankResponse{
		"crawler-1": {OwnerNodeID: "node-a", Alive: true},
	})
	defer srv.Close()

	g := New(srv.URL, "node-b", []string{"crawler-1", "crawler-2"}, time.Second)
	ok, err := g.IsPrimary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected node-b to not be primary")
	}
}
