package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterEmbedder maps text to counts of a, b and c.
type letterEmbedder struct{}

func (letterEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letters(t)
	}
	return out, nil
}

func (letterEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return letters(text), nil
}

func letters(t string) []float32 {
	return []float32{
		float32(strings.Count(t, "a")),
		float32(strings.Count(t, "b")),
		float32(strings.Count(t, "c")),
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bucket"), 0o755))

	p := NewPipeline(storage.NewLocalStore(root), letterEmbedder{}, Config{
		Bucket:       "bucket",
		Layout:       storage.DefaultLayout(),
		ChunkSize:    20,
		ChunkOverlap: 0,
		TempDir:      t.TempDir(),
	}, logger.NewNopLogger())
	return p, root
}

func writeResource(t *testing.T, root, user, name, content string) {
	t.Helper()
	path := filepath.Join(root, "bucket", "data", user, "resources", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildWritesLoadableVectorStore(t *testing.T) {
	p, root := newTestPipeline(t)
	writeResource(t, root, "alice@example.com", "notes.txt", "aaaa aaaa aaaa aaaa bbbb bbbb")
	writeResource(t, root, "alice@example.com", "extra/readme.md", "cccc")
	writeResource(t, root, "alice@example.com", "image.png", "not text")

	res, err := p.Build(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, []string{"image.png"}, res.Skipped)
	assert.Equal(t, "data/alice@example.com/vectorStore", res.Prefix)

	outDir := filepath.Join(root, "bucket", "data", "alice@example.com", "vectorStore")
	indexBytes, err := os.ReadFile(filepath.Join(outDir, "index.bin"))
	require.NoError(t, err)
	metaBytes, err := os.ReadFile(filepath.Join(outDir, "metadata.bin"))
	require.NoError(t, err)

	vs, err := vectorstore.Deserialize(indexBytes, metaBytes, letterEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, res.Chunks, vs.Len())
	assert.Equal(t, 3, vs.Dims())

	hits, err := vs.SimilaritySearchWithScore(context.Background(), "cccc", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "extra/readme.md", hits[0].Source)
}

func TestBuildWithoutDocuments(t *testing.T) {
	p, root := newTestPipeline(t)
	writeResource(t, root, "bob", "photo.jpg", "binary")

	_, err := p.Build(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = os.Stat(filepath.Join(root, "bucket", "data", "bob", "vectorStore", "index.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildRejectsEmptyUser(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Build(context.Background(), "")
	assert.ErrorIs(t, err, vectorstore.ErrInvalidUser)
}

func TestSupported(t *testing.T) {
	assert.True(t, supported("a.PDF"))
	assert.True(t, supported("dir/b.md"))
	assert.True(t, supported("c.txt"))
	assert.False(t, supported("d.docx"))
}
