// Package refresher implements the Index Refresher: watch the Page Store
// for a change, and when one is seen, tokenize every page and rebuild the
// Keyword Index from scratch. A polling change signature drives a
// time.Ticker loop instead of a blocking wait. Keyword extraction uses its
// own tokenizer, not internal/search.Tokenize: the Keyword Index contract
// is the literal `\b[a-zA-Z]{3,}\b` regex with no stopword removal
// (matching original_source/indexer/auto_index_monitor.py's
// `re.findall(r'\b[a-zA-Z]{3,}\b', content.lower())`), a different and
// simpler contract than the TF-IDF query tokenizer's alphanumeric-plus-
// stopword-list rules.
package refresher

import (
	"regexp"
	"strings"
	"time"

	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

// keywordPattern is the Keyword Index's tokenization contract: whole
// words of three or more ASCII letters, case-folded. No stopword removal.
var keywordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// tokenizeKeywords extracts every keyword-index token from content.
func tokenizeKeywords(content string) []string {
	return keywordPattern.FindAllString(strings.ToLower(content), -1)
}

// Refresher rebuilds the Keyword Index on a fixed interval, skipping the
// rebuild when the Page Store's row count hasn't changed since the last
// cycle.
type Refresher struct {
	store    store.Interface
	interval time.Duration
	lastSig  int
}

// New builds a Refresher against store st.
func New(st store.Interface, interval time.Duration) *Refresher {
	return &Refresher{store: st, interval: interval, lastSig: -1}
}

// Run ticks every interval until stop is closed, rebuilding the Keyword
// Index whenever the page count signature changes.
func (r *Refresher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Refresher) tick() {
	sig, err := r.store.PageCount()
	if err != nil {
		utils.Error("refresher: failed reading page count, skipping cycle", utils.NewField("error", err.Error()))
		return
	}

	if sig == r.lastSig {
		utils.Debug("refresher: no changes detected, skipping rebuild")
		return
	}

	if err := r.rebuild(); err != nil {
		utils.Error("refresher: rebuild failed", utils.NewField("error", err.Error()))
		return
	}
	r.lastSig = sig
	utils.Info("refresher: keyword index rebuilt", utils.NewField("page_count", sig))
}

// rebuild tokenizes every page currently in the Page Store and replaces
// the Keyword Index wholesale, one entry per distinct token.
func (r *Refresher) rebuild() error {
	pages, err := r.store.AllPages()
	if err != nil {
		return err
	}

	inverted := make(map[string]map[string]bool)
	for _, p := range pages {
		seen := make(map[string]bool)
		for _, tok := range tokenizeKeywords(p.Content) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			if inverted[tok] == nil {
				inverted[tok] = make(map[string]bool)
			}
			inverted[tok][p.URL] = true
		}
	}

	entries := make([]models.KeywordEntry, 0, len(inverted))
	for keyword, urlSet := range inverted {
		urls := make([]string, 0, len(urlSet))
		for u := range urlSet {
			urls = append(urls, u)
		}
		entries = append(entries, models.KeywordEntry{Keyword: keyword, URLs: urls})
	}

	return r.store.ReplaceKeywordIndex(entries)
}
