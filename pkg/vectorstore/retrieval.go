package vectorstore

import (
	"context"
	"sort"
	"strings"
)

const (
	// DefaultTopK is how many candidates a context lookup asks the index for.
	DefaultTopK = 4
	// DefaultKeep is how many of those candidates end up in the context.
	DefaultKeep = 2
)

// Searcher is the query side of a VectorStore.
type Searcher interface {
	SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]ScoredDocument, error)
}

// RetrieveContext searches topK candidates, keeps the `keep` closest ones and joins their text
// with newlines. Newlines inside a chunk are flattened to spaces. No results yield "".
func RetrieveContext(ctx context.Context, s Searcher, query string, topK, keep int) (string, error) {
	docs, err := RetrieveDocuments(ctx, s, query, topK, keep)
	if err != nil {
		return "", err
	}
	return JoinContext(docs), nil
}

// RetrieveDocuments is RetrieveContext without the final join, for callers that also need sources.
func RetrieveDocuments(ctx context.Context, s Searcher, query string, topK, keep int) ([]ScoredDocument, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if keep <= 0 {
		keep = DefaultKeep
	}

	results, err := s.SimilaritySearchWithScore(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > keep {
		results = results[:keep]
	}
	return results, nil
}

// JoinContext renders documents as a single context string.
func JoinContext(docs []ScoredDocument) string {
	if len(docs) == 0 {
		return ""
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = strings.ReplaceAll(d.Text, "\n", " ")
	}
	return strings.Join(parts, "\n")
}
