package vectorstore

import (
	"context"
	"fmt"
)

// Embedder turns text into vectors. Documents and queries may be embedded differently.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ScoredDocument is a search result. Lower distance is more relevant.
type ScoredDocument struct {
	Document
	Distance float32
}

// VectorStore pairs an index with the records it was built from. Position N in the index
// always belongs to docs[N].
type VectorStore struct {
	index    *Index
	docs     []Document
	embedder Embedder
}

// NewVectorStore creates an empty store. It is filled with AddDocuments during ingestion.
func NewVectorStore(embedder Embedder, dims int) (*VectorStore, error) {
	idx, err := NewIndex(dims)
	if err != nil {
		return nil, err
	}
	return &VectorStore{index: idx, embedder: embedder}, nil
}

// Deserialize rebuilds a store from an index blob and a metadata blob. The two halves must
// describe the same number of chunks, otherwise the pair is rejected as corrupt.
func Deserialize(indexBytes, metadataBytes []byte, embedder Embedder) (*VectorStore, error) {
	idx, err := UnmarshalIndex(indexBytes)
	if err != nil {
		return nil, err
	}
	docs, err := DecodeMetadata(metadataBytes)
	if err != nil {
		return nil, err
	}
	if idx.Len() != len(docs) {
		return nil, fmt.Errorf("%w: index holds %d vectors but metadata holds %d records", ErrCorrupt, idx.Len(), len(docs))
	}
	return &VectorStore{index: idx, docs: docs, embedder: embedder}, nil
}

// AddDocuments embeds the documents and appends them to the store.
func (s *VectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}
	return s.AddVectors(docs, vectors)
}

// AddVectors appends pre-computed vectors with their records.
func (s *VectorStore) AddVectors(docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and vectors length mismatch: %d != %d", len(docs), len(vectors))
	}
	for _, v := range vectors {
		if len(v) != s.index.Dims() {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(v), s.index.Dims())
		}
	}
	for i, v := range vectors {
		if err := s.index.Add(v); err != nil {
			return err
		}
		s.docs = append(s.docs, docs[i])
	}
	return nil
}

// SimilaritySearchWithScore embeds the query and returns up to k documents ranked by distance.
func (s *VectorStore) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if s.Len() == 0 || k <= 0 {
		return nil, nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.index.Search(vec, k)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredDocument, len(hits))
	for i, h := range hits {
		out[i] = ScoredDocument{Document: s.docs[h.Position], Distance: h.Distance}
	}
	return out, nil
}

// SerializeIndex encodes the index half of the store.
func (s *VectorStore) SerializeIndex() ([]byte, error) {
	return s.index.MarshalBinary()
}

// SerializeMetadata encodes the record half of the store.
func (s *VectorStore) SerializeMetadata() ([]byte, error) {
	return EncodeMetadata(s.docs)
}

// Len returns the number of chunks.
func (s *VectorStore) Len() int { return len(s.docs) }

// Dims returns the embedding dimension.
func (s *VectorStore) Dims() int { return s.index.Dims() }

// Documents returns a copy of the records in index order.
func (s *VectorStore) Documents() []Document {
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}
