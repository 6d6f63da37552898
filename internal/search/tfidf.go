// Package search scores indexed pages against a query with a hand-rolled
// TF-IDF vectorizer and cosine similarity. No vector-math or NLP library
// fits this job, so this mirrors the cosine-similarity approach in
// Caia-Tech-caia-library/pkg/embedder/advanced.go, generalized from
// embedding cosine-similarity to a sparse TF-IDF cosine-similarity score.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// minScore discards matches too weak to be useful.
	minScore = 0.05
	// maxResults caps a single search response.
	maxResults = 20
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases, extracts alphanumeric runs, and drops stopwords.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := tokenPattern.FindAllString(lower, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if isStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Document is one scored Page Store entry: a URL and its extracted,
// cleaned text.
type Document struct {
	URL  string
	Text string
}

// Result is one scored match returned from Search.
type Result struct {
	URL   string
	Score float64
}

type vector map[string]float64

// Search runs TF-IDF + cosine similarity over docs for query, returning up
// to maxResults matches scoring above minScore, highest score first.
func Search(query string, docs []Document) []Result {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || len(docs) == 0 {
		return nil
	}

	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = Tokenize(d.Text)
	}

	idf := computeIDF(docTokens)
	queryVec := tfidfVector(queryTokens, idf)

	results := make([]Result, 0, len(docs))
	for i, d := range docs {
		docVec := tfidfVector(docTokens[i], idf)
		score := cosineSimilarity(queryVec, docVec)
		if score > minScore {
			results = append(results, Result{URL: d.URL, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func computeIDF(docTokens [][]string) map[string]float64 {
	docCount := float64(len(docTokens))
	containing := make(map[string]int)
	for _, toks := range docTokens {
		seen := make(map[string]bool, len(toks))
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				containing[t]++
			}
		}
	}

	idf := make(map[string]float64, len(containing))
	for term, n := range containing {
		// Smoothed IDF, ln(1 + N/n) + 1: never zero, never negative.
		idf[term] = math.Log(1.0+docCount/float64(n)) + 1.0
	}
	return idf
}

func tfidfVector(tokens []string, idf map[string]float64) vector {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	total := float64(len(tokens))
	if total == 0 {
		return vector{}
	}

	vec := make(vector, len(tf))
	for term, count := range tf {
		weight, ok := idf[term]
		if !ok {
			// Term only appears in the query, never in any document:
			// still contributes weight 1 so an exact phrase match on a
			// brand-new term isn't silently dropped.
			weight = 1.0
		}
		vec[term] = (count / total) * weight
	}
	return vec
}

func cosineSimilarity(a, b vector) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
