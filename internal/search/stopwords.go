package search

// stopwords are dropped before TF-IDF vectorization: a small, fixed
// general-English set.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "this": true, "but": true, "or": true,
	"not": true, "i": true, "you": true, "your": true, "we": true, "they": true,
}

func isStopword(token string) bool {
	return stopwords[token]
}
