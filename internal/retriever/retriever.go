// Package retriever ranks chunks against a free-text query using lexical
// term overlap. The scoring is deliberately simple: deterministic, cheap to
// explain, and monotonic in the number of matching terms.
package retriever

import (
	"errors"
	"sort"
	"strings"

	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/rs/zerolog"
)

// ErrInvalidQuery is returned for empty (or whitespace-only) queries. The
// same sentinel is used by the engine so callers can match it once.
var ErrInvalidQuery = errors.New("query must not be empty")

type Retriever struct {
	defaultLimit int
	minScore     float64
	tagWeight    float64
	logger       *zerolog.Logger
}

// New builds a retriever. tagWeight scales matches against a chunk's tags
// (opponent names, metric categories) relative to plain text matches; values
// below 1 are clamped to 1 so a tag hit can never rank worse than a text hit.
func New(defaultLimit int, minScore, tagWeight float64, logger *zerolog.Logger) *Retriever {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if tagWeight < 1 {
		tagWeight = 1
	}
	return &Retriever{
		defaultLimit: defaultLimit,
		minScore:     minScore,
		tagWeight:    tagWeight,
		logger:       logger,
	}
}

// Retrieve scores every chunk against the query and returns up to limit
// results, descending by score, ties broken by original chunk order. A limit
// of zero or less falls back to the configured default. No chunk scoring
// above the minimum threshold is a normal outcome and yields an empty result.
func (r *Retriever) Retrieve(query string, chunks []models.Chunk, limit int) ([]models.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	if limit <= 0 {
		limit = r.defaultLimit
	}

	queryTokens := uniqueTokens(tokenize(query))
	if len(queryTokens) == 0 {
		// Query was all stopwords; nothing can match.
		return nil, nil
	}

	type indexedResult struct {
		index  int
		scored models.ScoredChunk
	}

	var results []indexedResult
	for i, chunk := range chunks {
		score := r.score(queryTokens, chunk)
		if score <= r.minScore {
			continue
		}
		results = append(results, indexedResult{
			index:  i,
			scored: models.ScoredChunk{Chunk: chunk, Score: score},
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].scored.Score != results[b].scored.Score {
			return results[a].scored.Score > results[b].scored.Score
		}
		return results[a].index < results[b].index
	})

	if len(results) > limit {
		results = results[:limit]
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		scored = append(scored, res.scored)
	}

	r.logger.Debug().
		Int("query_terms", len(queryTokens)).
		Int("candidates", len(chunks)).
		Int("returned", len(scored)).
		Msg("retrieval complete")

	return scored, nil
}

// score sums per-token weights over the unique query tokens that appear in
// the chunk, normalized by the query's unique token count. Each token counts
// once, at the highest applicable weight, which keeps the score monotonic in
// the set of matching terms.
func (r *Retriever) score(queryTokens map[string]bool, chunk models.Chunk) float64 {
	chunkTokens := uniqueTokens(tokenize(chunk.Text))
	tagTokens := make(map[string]bool, len(chunk.Tags))
	for _, tag := range chunk.Tags {
		tagTokens[strings.ToLower(tag)] = true
	}

	raw := 0.0
	for token := range queryTokens {
		switch {
		case tagTokens[token]:
			raw += r.tagWeight
		case chunkTokens[token]:
			raw += 1.0
		}
	}

	return raw / float64(len(queryTokens))
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"to": true, "from": true, "in": true, "on": true, "how": true,
	"what": true, "which": true, "who": true, "when": true, "our": true,
	"we": true, "us": true,
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = removePunctuation(s)

	var tokens []string
	for word := range strings.FieldsSeq(s) {
		if !stopWords[word] && len(word) > 1 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func removePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:()[]{}\"'%", r) {
			return -1
		}
		return r
	}, s)
}

func uniqueTokens(tokens []string) map[string]bool {
	unique := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		unique[t] = true
	}
	return unique
}
