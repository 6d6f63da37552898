package store

import (
	"sort"
	"sync"

	"github.com/synapticforge/crawlmesh/pkg/models"
)

// MemStore is an in-memory Interface implementation used by tests for the
// indexer, refresher, and Control Service, so they can exercise the Page
// Store / Keyword Index contract without a live Postgres instance.
type MemStore struct {
	mu       sync.Mutex
	pages    map[string]models.IndexedPage
	keywords map[string][]string
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		pages:    make(map[string]models.IndexedPage),
		keywords: make(map[string][]string),
	}
}

func (m *MemStore) UpsertPage(page models.IndexedPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.URL] = page
	return nil
}

func (m *MemStore) AllPages() ([]models.IndexedPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IndexedPage, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (m *MemStore) PageCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages), nil
}

func (m *MemStore) ReplaceKeywordIndex(entries []models.KeywordEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = make(map[string][]string, len(entries))
	for _, e := range entries {
		m.keywords[e.Keyword] = e.URLs
	}
	return nil
}

func (m *MemStore) KeywordURLs(keyword string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keywords[keyword], nil
}

var _ Interface = (*MemStore)(nil)
