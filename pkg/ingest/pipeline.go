// Package ingest builds a user's vector store from the documents in their resource folder and
// publishes it to the durable store where the loader expects it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/utils"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"
)

const ingestModule = "INGEST"

// ErrNoDocuments means the resource folder held nothing that produced text.
var ErrNoDocuments = errors.New("no documents to ingest")

type Config struct {
	Bucket       string
	Layout       storage.Layout
	IndexFile    string
	MetadataFile string
	ChunkSize    int
	ChunkOverlap int
	TempDir      string
}

// Result describes one finished build.
type Result struct {
	User     string   `json:"user"`
	Prefix   string   `json:"prefix"`
	Files    int      `json:"files"`
	Chunks   int      `json:"chunks"`
	Skipped  []string `json:"skipped,omitempty"`
	Duration string   `json:"duration"`
}

type Pipeline struct {
	store    storage.DurableStore
	embedder vectorstore.Embedder
	cfg      Config
	logger   logger.ILogger
}

func NewPipeline(store storage.DurableStore, embedder vectorstore.Embedder, cfg Config, log logger.ILogger) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.IndexFile == "" {
		cfg.IndexFile = "index.bin"
	}
	if cfg.MetadataFile == "" {
		cfg.MetadataFile = "metadata.bin"
	}
	return &Pipeline{store: store, embedder: embedder, cfg: cfg, logger: log}
}

// Build downloads data/<user>/resources, chunks and embeds every supported file, and uploads the
// resulting index and metadata files to data/<user>/vectorStore.
func (p *Pipeline) Build(ctx context.Context, user string) (*Result, error) {
	if user == "" {
		return nil, vectorstore.ErrInvalidUser
	}
	start := time.Now()

	workspace, err := os.MkdirTemp(p.cfg.TempDir, "ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	srcDir := filepath.Join(workspace, "resources")
	outDir := filepath.Join(workspace, "vectorStore")
	for _, dir := range []string{srcDir, outDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}

	if err := p.store.Download(ctx, p.cfg.Bucket, p.cfg.Layout.ResourcePath(user), srcDir); err != nil {
		return nil, fmt.Errorf("download resources: %w", err)
	}

	docs, files, skipped, err := p.collect(srcDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		p.logger.Warn(ingestModule, "Nothing to ingest", map[string]interface{}{
			"user":    user,
			"skipped": skipped,
		})
		return nil, ErrNoDocuments
	}

	vs, err := p.embed(ctx, docs)
	if err != nil {
		return nil, err
	}

	if err := p.write(vs, outDir); err != nil {
		return nil, err
	}

	prefix := p.cfg.Layout.VectorStorePath(user)
	if err := p.store.Upload(ctx, p.cfg.Bucket, outDir, prefix); err != nil {
		return nil, fmt.Errorf("upload vector store: %w", err)
	}

	res := &Result{
		User:     user,
		Prefix:   prefix,
		Files:    files,
		Chunks:   vs.Len(),
		Skipped:  skipped,
		Duration: time.Since(start).String(),
	}
	p.logger.Info(ingestModule, "Vector store built", map[string]interface{}{
		"user":   user,
		"files":  res.Files,
		"chunks": res.Chunks,
		"took":   res.Duration,
	})
	return res, nil
}

// collect walks the downloaded resources in name order and splits them into chunks.
func (p *Pipeline) collect(dir string) ([]vectorstore.Document, int, []string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("scan resources: %w", err)
	}
	sort.Strings(names)

	var (
		docs    []vectorstore.Document
		skipped []string
		files   int
	)
	for _, name := range names {
		if !supported(name) {
			skipped = append(skipped, name)
			continue
		}
		pages, err := extractFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			// One unreadable upload should not block the rest of the user's library.
			p.logger.Warn(ingestModule, "Failed to extract file", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
			skipped = append(skipped, name)
			continue
		}

		chunkIndex := 0
		for _, pg := range pages {
			for _, chunk := range utils.SplitText(pg.text, p.cfg.ChunkSize, p.cfg.ChunkOverlap) {
				docs = append(docs, vectorstore.Document{
					Text:       chunk,
					Source:     name,
					ChunkIndex: chunkIndex,
					Page:       pg.number,
				})
				chunkIndex++
			}
		}
		if chunkIndex > 0 {
			files++
		}
	}
	return docs, files, skipped, nil
}

func (p *Pipeline) embed(ctx context.Context, docs []vectorstore.Document) (*vectorstore.VectorStore, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d chunks", len(vectors), len(docs))
	}

	vs, err := vectorstore.NewVectorStore(p.embedder, len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := vs.AddVectors(docs, vectors); err != nil {
		return nil, err
	}
	return vs, nil
}

func (p *Pipeline) write(vs *vectorstore.VectorStore, dir string) error {
	indexBytes, err := vs.SerializeIndex()
	if err != nil {
		return fmt.Errorf("serialize index: %w", err)
	}
	metaBytes, err := vs.SerializeMetadata()
	if err != nil {
		return fmt.Errorf("serialize metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.cfg.IndexFile), indexBytes, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, p.cfg.MetadataFile), metaBytes, 0o644)
}
