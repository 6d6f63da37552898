package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRobotsCheckerBlocksDisallowedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(time.Second, "test-agent")
	checker := NewRobotsChecker(fetcher, "test-agent", true)

	ctx := context.Background()
	if checker.IsAllowed(ctx, srv.URL+"/private/page") {
		t.Fatal("expected /private/page to be disallowed")
	}
	if !checker.IsAllowed(ctx, srv.URL+"/public/page") {
		t.Fatal("expected /public/page to be allowed")
	}
}

func TestRobotsCheckerAllowsAllWhenDisabled(t *testing.T) {
	fetcher := NewFetcher(time.Second, "test-agent")
	checker := NewRobotsChecker(fetcher, "test-agent", false)

	if !checker.IsAllowed(context.Background(), "https://example.test/private") {
		t.Fatal("expected disabled checker to allow everything")
	}
}

func TestRobotsCheckerAllowsWhenRobotsTxtMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fetcher := NewFetcher(time.Second, "test-agent")
	checker := NewRobotsChecker(fetcher, "test-agent", true)

	if !checker.IsAllowed(context.Background(), srv.URL+"/anything") {
		t.Fatal("expected allow-all fallback when robots.txt is missing")
	}
}
