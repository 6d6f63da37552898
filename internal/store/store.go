// Package store persists the Page Store and Keyword Index through
// Supabase's PostgREST client, using the
// `client.From(table).Insert/Select/Eq().Execute()` call shape.
// Writes here go through the
// service-role client, bypassing row-level security, since crawler and
// indexer workers are trusted internal processes rather than end users.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"github.com/synapticforge/crawlmesh/pkg/models"
)

const (
	pagesTable    = "pages"
	keywordsTable = "keywords"
)

// Store is the Page Store + Keyword Index persistence layer.
type Store struct {
	client *supabase.Client
}

// New builds a Store from a service-role Supabase client via
// supabase.NewClient(url, serviceKey, nil).
func New(supabaseURL, serviceKey string) (*Store, error) {
	client, err := supabase.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("store: new supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// UpsertPage writes one crawled-and-cleaned page, keyed on URL. The
// Keyword Index is rebuilt separately by the refresher, not here: this
// only maintains the raw page snapshot the refresher reads from.
func (s *Store) UpsertPage(page models.IndexedPage) error {
	row := map[string]interface{}{
		"url":            page.URL,
		"content":        page.Content,
		"indexed_obj_id": page.IndexedObjID,
	}
	_, _, err := s.client.From(pagesTable).Insert(row, true, "url", "", "").Execute()
	if err != nil {
		return fmt.Errorf("store: upsert page %s: %w", page.URL, err)
	}
	return nil
}

// AllPages returns every page currently in the Page Store, used by the
// refresher to rebuild the Keyword Index from scratch.
func (s *Store) AllPages() ([]models.IndexedPage, error) {
	data, _, err := s.client.From(pagesTable).Select("url,content,indexed_obj_id", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("store: select pages: %w", err)
	}

	var rows []struct {
		URL          string `json:"url"`
		Content      string `json:"content"`
		IndexedObjID string `json:"indexed_obj_id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("store: decode pages: %w", err)
	}

	pages := make([]models.IndexedPage, 0, len(rows))
	for _, r := range rows {
		pages = append(pages, models.IndexedPage{URL: r.URL, Content: r.Content, IndexedObjID: r.IndexedObjID})
	}
	return pages, nil
}

// PageCount returns how many rows are currently in the Page Store, the
// change signal the refresher polls to decide whether a rebuild is due.
func (s *Store) PageCount() (int, error) {
	_, count, err := s.client.From(pagesTable).Select("url", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("store: count pages: %w", err)
	}
	return int(count), nil
}

// replaceKeywordIndexFn is the Postgres function (assumed pre-created
// alongside the schema, same assumption as pagesTable/keywordsTable) that
// clears the keywords table and inserts the new rows inside its own
// function body, which Postgres runs as a single implicit transaction.
// PostgREST has no multi-statement "truncate and replace" call of its
// own, so the delete-then-insert is pushed server-side instead of being
// split across two client round trips that a reader could observe between.
const replaceKeywordIndexFn = "replace_keyword_index"

// ReplaceKeywordIndex replaces the entire keywords table with entries in
// one PostgREST RPC call to replaceKeywordIndexFn, so the delete-then-
// insert rebuild is one transaction and never exposes an empty table to a
// concurrent reader.
func (s *Store) ReplaceKeywordIndex(entries []models.KeywordEntry) error {
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"keyword": e.Keyword,
			"urls":    e.URLs,
		})
	}

	params, err := json.Marshal(map[string]interface{}{"entries": rows})
	if err != nil {
		return fmt.Errorf("store: encode keyword index rpc params: %w", err)
	}

	// postgrest-go's Rpc returns the raw response body with no error
	// value of its own; a failed call surfaces as an empty body.
	if resp := s.client.Rpc(replaceKeywordIndexFn, "", string(params)); resp == "" && len(entries) > 0 {
		return fmt.Errorf("store: %s rpc returned no response", replaceKeywordIndexFn)
	}
	return nil
}

// KeywordURLs looks up the URLs indexed under keyword. The Control
// Service's search handler does not call it; search scores Page Store
// content with TF-IDF instead.
func (s *Store) KeywordURLs(keyword string) ([]string, error) {
	data, _, err := s.client.From(keywordsTable).Select("urls", "", false).Eq("keyword", keyword).Execute()
	if err != nil {
		return nil, fmt.Errorf("store: select keyword %s: %w", keyword, err)
	}

	var rows []struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("store: decode keyword %s: %w", keyword, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].URLs, nil
}
