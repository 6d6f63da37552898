package htmltext

import (
	"strings"
	"testing"
)

const samplePage = `<html><head><style>.x{color:red}</style></head>
<body>
  <script>var x = 1;</script>
  <p>Hello   world</p>
  <a href="/about">About</a>
  <a href="https://other.test/page">Other</a>
  <a href="#section">Skip</a>
  <a href="javascript:void(0)">Skip</a>
  <a href="//cdn.test/lib.js">Scheme-relative</a>
</body></html>`

func TestExtractStripsScriptAndStyle(t *testing.T) {
	res, err := Extract("https://example.com/", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.Contains(res.Text, "color:red") || strings.Contains(res.Text, "var x") {
		t.Fatalf("expected script/style content stripped, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "Hello world") {
		t.Fatalf("expected collapsed visible text, got %q", res.Text)
	}
}

func TestExtractResolvesLinksAndDropsJunk(t *testing.T) {
	res, err := Extract("https://example.com/", strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]bool{
		"https://example.com/about":  true,
		"https://other.test/page":    true,
		"https://cdn.test/lib.js":    true,
	}
	if len(res.Links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(res.Links), res.Links)
	}
	for _, l := range res.Links {
		if !want[l] {
			t.Fatalf("unexpected link %q", l)
		}
	}
}

func TestClean(t *testing.T) {
	text, err := Clean(`<div><script>bad()</script>keep <b>this</b></div>`)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if text != "keep this" {
		t.Fatalf("got %q", text)
	}
}
