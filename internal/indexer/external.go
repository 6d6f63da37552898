// External indexer submission: the optional step that reports a newly
// indexed URL to an external search engine and records the opaque id it
// hands back as IndexedPage.IndexedObjID, populated only when an
// external indexer is configured, otherwise "dummy-id". Uses
// oauth2/google + google.golang.org/api client construction, via the
// Indexing API's service-account JWT flow since no human is present to
// click through a consent screen during a crawl.
package indexer

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/indexing/v3"
	"google.golang.org/api/option"

	"github.com/synapticforge/crawlmesh/pkg/models"
)

// ExternalIndexer submits a crawled URL to an external search engine's
// indexing API.
type ExternalIndexer interface {
	Submit(ctx context.Context, url string) (models.ExternalIndexResult, error)
}

// NullIndexer is used when no external indexer credentials are
// configured; every submission is a no-op that returns the dummy result.
type NullIndexer struct{}

func (NullIndexer) Submit(ctx context.Context, url string) (models.ExternalIndexResult, error) {
	return models.DummyIndexResult(), nil
}

// GoogleIndexer submits URLs to the Google Indexing API v3 using a
// service account's JSON credentials.
type GoogleIndexer struct {
	service *indexing.Service
}

// NewGoogleIndexer builds a GoogleIndexer from service-account credential
// JSON against indexing.IndexingScope, using JWTConfigFromJSON since this
// runs as a headless server process with no interactive consent screen.
func NewGoogleIndexer(ctx context.Context, credentialsJSON []byte) (*GoogleIndexer, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, indexing.IndexingScope)
	if err != nil {
		return nil, fmt.Errorf("indexer: parse service account credentials: %w", err)
	}

	client := jwtConfig.Client(ctx)
	service, err := indexing.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("indexer: new indexing service: %w", err)
	}

	return &GoogleIndexer{service: service}, nil
}

// Submit notifies the Indexing API that url was updated and returns the
// API-assigned object id, or an error if the call fails. Callers treat a
// failed external submission as non-fatal: the page is still indexed
// locally, with indexed_obj_id set to "dummy-id".
func (g *GoogleIndexer) Submit(ctx context.Context, url string) (models.ExternalIndexResult, error) {
	notification := &indexing.UrlNotification{
		Url:  url,
		Type: "URL_UPDATED",
	}

	resp, err := g.service.UrlNotifications.Publish(notification).Context(ctx).Do()
	if err != nil {
		return models.ExternalIndexResult{}, fmt.Errorf("indexer: publish %s: %w", url, err)
	}

	objectID := url
	if resp.UrlNotificationMetadata != nil && resp.UrlNotificationMetadata.Url != "" {
		objectID = resp.UrlNotificationMetadata.Url
	}

	return models.ExternalIndexResult{ObjectID: objectID, Source: "google-indexing-api"}, nil
}
