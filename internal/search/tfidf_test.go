package search

import "testing"

func TestTokenizeDropsStopwordsAndPunctuation(t *testing.T) {
	got := Tokenize("The Quick, Brown Fox! jumps over the lazy dog.")
	want := map[string]bool{"quick": true, "brown": true, "fox": true, "jumps": true, "over": true, "lazy": true, "dog": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for _, tok := range got {
		if !want[tok] {
			t.Fatalf("unexpected token %q", tok)
		}
	}
}

func TestSearchRanksExactMatchHighest(t *testing.T) {
	docs := []Document{
		{URL: "https://a.test", Text: "golang concurrency patterns and channels"},
		{URL: "https://b.test", Text: "a recipe for banana bread"},
		{URL: "https://c.test", Text: "more golang concurrency concurrency channels goroutines"},
	}
	results := Search("golang concurrency channels", docs)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].URL != "https://c.test" && results[0].URL != "https://a.test" {
		t.Fatalf("expected a golang doc to rank first, got %q", results[0].URL)
	}
	for _, r := range results {
		if r.URL == "https://b.test" {
			t.Fatalf("unrelated banana bread doc should not have matched: %+v", r)
		}
	}
}

func TestSearchEmptyQueryReturnsNil(t *testing.T) {
	docs := []Document{{URL: "https://a.test", Text: "hello world"}}
	if got := Search("the and of", docs); got != nil {
		t.Fatalf("expected nil for all-stopword query, got %v", got)
	}
}

func TestSearchCapsResultsAtTwenty(t *testing.T) {
	docs := make([]Document, 0, 30)
	for i := 0; i < 30; i++ {
		docs = append(docs, Document{URL: "https://site.test/page", Text: "widget gadget widget gadget thing"})
	}
	results := Search("widget gadget", docs)
	if len(results) > maxResults {
		t.Fatalf("expected at most %d results, got %d", maxResults, len(results))
	}
}
