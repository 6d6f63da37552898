package store

import "github.com/synapticforge/crawlmesh/pkg/models"

// Interface is the subset of Store that the indexer, refresher, and
// Control Service depend on, so tests can swap in MemStore instead of
// talking to Postgres.
type Interface interface {
	UpsertPage(page models.IndexedPage) error
	AllPages() ([]models.IndexedPage, error)
	PageCount() (int, error)
	ReplaceKeywordIndex(entries []models.KeywordEntry) error
	KeywordURLs(keyword string) ([]string, error)
}

var _ Interface = (*Store)(nil)
