package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/synapticforge/crawlmesh/internal/utils"
	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches and caches robots.txt per host and tests whether
// a given URL is allowed for this crawler's user agent.
type RobotsChecker struct {
	fetcher       *Fetcher
	cache         map[string]*robotstxt.Group
	cacheMu       sync.RWMutex
	userAgent     string
	respectRobots bool
}

// NewRobotsChecker builds a RobotsChecker. When respectRobots is false,
// IsAllowed always returns true without ever fetching robots.txt.
func NewRobotsChecker(fetcher *Fetcher, userAgent string, respectRobots bool) *RobotsChecker {
	return &RobotsChecker{
		fetcher:       fetcher,
		cache:         make(map[string]*robotstxt.Group),
		userAgent:     userAgent,
		respectRobots: respectRobots,
	}
}

// IsAllowed reports whether targetURL may be fetched under its host's
// robots.txt. A host whose robots.txt can't be fetched or parsed is
// treated as allow-all rather than blocking the crawl.
func (r *RobotsChecker) IsAllowed(ctx context.Context, targetURL string) bool {
	if !r.respectRobots {
		return true
	}

	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	domain := u.Host

	r.cacheMu.RLock()
	group, cached := r.cache[domain]
	r.cacheMu.RUnlock()
	if cached {
		if group == nil {
			return true
		}
		return group.Test(u.Path)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	result, err := r.fetcher.Fetch(ctx, robotsURL)
	if err != nil || result.StatusCode != 200 {
		utils.Debug("could not fetch robots.txt, allowing by default", utils.NewField("url", robotsURL))
		r.remember(domain, nil)
		return true
	}

	doc, err := robotstxt.FromBytes(result.Body)
	if err != nil {
		utils.Debug("could not parse robots.txt, allowing by default", utils.NewField("url", robotsURL))
		r.remember(domain, nil)
		return true
	}

	group = doc.FindGroup(r.userAgent)
	r.remember(domain, group)
	return group.Test(u.Path)
}

func (r *RobotsChecker) remember(domain string, group *robotstxt.Group) {
	r.cacheMu.Lock()
	r.cache[domain] = group
	r.cacheMu.Unlock()
}
