package refresher

import (
	"testing"
	"time"

	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

func TestRefresherSkipsRebuildWhenCountUnchanged(t *testing.T) {
	mem := store.NewMemStore()
	_ = mem.UpsertPage(models.IndexedPage{URL: "https://a.test", Content: "golang channels"})

	r := New(mem, time.Hour)
	r.tick()

	urls, err := mem.KeywordURLs("golang")
	if err != nil {
		t.Fatalf("keyword lookup: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://a.test" {
		t.Fatalf("expected golang -> [https://a.test], got %v", urls)
	}

	// Overwrite existing keyword index with a sentinel, then re-tick with
	// no page-count change: the sentinel must survive untouched.
	_ = mem.ReplaceKeywordIndex([]models.KeywordEntry{{Keyword: "sentinel", URLs: []string{"https://sentinel.test"}}})
	r.tick()

	urls, _ = mem.KeywordURLs("sentinel")
	if len(urls) != 1 {
		t.Fatalf("expected sentinel entry to survive an unchanged-count tick, got %v", urls)
	}
}

func TestRefresherRebuildsOnPageCountChange(t *testing.T) {
	mem := store.NewMemStore()
	r := New(mem, time.Hour)
	r.tick() // establish baseline signature of 0 pages

	_ = mem.UpsertPage(models.IndexedPage{URL: "https://a.test", Content: "widget gadget"})
	r.tick()

	urls, err := mem.KeywordURLs("widget")
	if err != nil {
		t.Fatalf("keyword lookup: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://a.test" {
		t.Fatalf("expected widget -> [https://a.test], got %v", urls)
	}
}

func TestTokenizeKeywordsKeepsStopwordsAndDropsShortTokens(t *testing.T) {
	toks := tokenizeKeywords("The cat sat on a mat, id 42.")
	got := map[string]bool{}
	for _, tok := range toks {
		got[tok] = true
	}
	if !got["the"] || !got["sat"] {
		t.Fatalf("expected stopwords like 'the' to survive keyword-index tokenization, got %v", toks)
	}
	if got["id"] || got["on"] || got["42"] || got["a"] {
		t.Fatalf("expected tokens under 3 letters and digit runs dropped, got %v", toks)
	}
}
