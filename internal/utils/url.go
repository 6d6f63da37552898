package utils

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrInvalidURL = errors.New("invalid URL")
)

// submitURLPattern matches the crawl-submission validation regex,
// case-insensitive, optional scheme.
var submitURLPattern = regexp.MustCompile(`(?i)^(https?://)?([a-z0-9-]+\.)+[a-z]{2,}(/.*)?$`)

// ValidateSubmitURL reports whether rawURL is an acceptable crawl seed,
// and returns it with an https:// scheme prepended if none was present.
func ValidateSubmitURL(rawURL string) (string, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if !submitURLPattern.MatchString(trimmed) {
		return "", false
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	return trimmed, true
}

// DomainPrefix computes scheme://host for a fully-qualified URL, used as
// CrawlTask.DomainPrefix when a submission is domain-restricted.
func DomainPrefix(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidURL
	}
	return u.Scheme + "://" + u.Host, nil
}

// SameOrigin reports whether link begins with domainPrefix, used to apply
// restrict_domain filtering on extracted links.
func SameOrigin(link, domainPrefix string) bool {
	return strings.HasPrefix(link, domainPrefix)
}
