// Package htmltext extracts visible text and anchor links from HTML,
// shared by the crawler's fetch step and the indexer's clean-html step,
// both of which strip <script>/<style> subtrees and join the remaining
// text. Built on goquery's document walking.
package htmltext

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractResult holds the visible text and every resolved <a href> link
// found in a document.
type ExtractResult struct {
	Text  string
	Links []string
}

// Extract parses html read from r, removes <script> and <style> subtrees,
// joins the remaining visible text with whitespace, and resolves every
// anchor href against baseURL.
func Extract(baseURL string, r io.Reader) (ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ExtractResult{}, err
	}

	doc.Find("script, style").Remove()

	text := CollapseWhitespace(visibleText(doc.Selection))

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, ok := resolve(baseURL, href)
		if ok {
			links = append(links, resolved)
		}
	})

	return ExtractResult{Text: text, Links: links}, nil
}

// Clean strips <script>/<style> subtrees from raw HTML and returns the
// separator-joined visible text, matching the indexer's second clean pass
// over a PagePayload.Text that was already extracted by the crawler.
func Clean(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return CollapseWhitespace(visibleText(doc.Selection)), nil
}

// visibleText returns every text node under sel in document order, joined
// with a space so text from adjacent elements never runs together.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
			} else {
				walk(c)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}

// CollapseWhitespace joins text on single spaces, matching
// BeautifulSoup's get_text(separator=" ", strip=True).
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(baseURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	rel, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(rel)
	if resolved.Scheme == "" {
		resolved.Scheme = "https"
	}
	return resolved.String(), true
}
