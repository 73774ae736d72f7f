package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/cache"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
)

const loaderModule = "vectorstore.loader"

// LoaderConfig is assembled once at startup from the process configuration.
type LoaderConfig struct {
	Bucket       string
	Layout       storage.Layout
	IndexFile    string
	MetadataFile string

	// TTL applies to both cache keys of a session.
	TTL time.Duration
	// DownloadTimeout bounds the durable store download. Zero means no bound.
	DownloadTimeout time.Duration

	// LockLease enables the per-session rebuild lock when positive.
	LockLease        time.Duration
	LockWait         time.Duration
	LockPollInterval time.Duration

	// TempDir is the parent of rebuild workspaces; empty uses the OS default.
	TempDir string
}

// DefaultLoaderConfig returns the settings used when nothing is configured.
func DefaultLoaderConfig(bucket string) LoaderConfig {
	return LoaderConfig{
		Bucket:           bucket,
		Layout:           storage.DefaultLayout(),
		IndexFile:        "index.bin",
		MetadataFile:     "metadata.bin",
		TTL:              time.Hour,
		DownloadTimeout:  time.Minute,
		LockLease:        20 * time.Second,
		LockWait:         15 * time.Second,
		LockPollInterval: 250 * time.Millisecond,
	}
}

// SessionState is the lifecycle state of a session's cache entries.
type SessionState string

const (
	// StateAbsent covers missing, expired and half-present pairs.
	StateAbsent SessionState = "ABSENT"
	// StateWarm means both keys are present.
	StateWarm SessionState = "WARM"
)

type probeResult string

const (
	probeHit         probeResult = "hit"
	probeMiss        probeResult = "miss"
	probePartial     probeResult = "partial"
	probeCorrupt     probeResult = "corrupt"
	probeUnavailable probeResult = "unavailable"
)

// Loader hands out a ready VectorStore for a session, serving it from the cache when a valid
// index/metadata pair is present and rebuilding it from the durable store otherwise.
type Loader struct {
	cache    cache.Cache
	locker   cache.Locker
	store    storage.DurableStore
	embedder Embedder
	cfg      LoaderConfig
	logger   logger.ILogger
	tracer   trace.Tracer
}

// NewLoader wires the loader. When the cache also implements cache.Locker and LockLease is
// positive, concurrent rebuilds of the same session are collapsed into one.
func NewLoader(c cache.Cache, store storage.DurableStore, embedder Embedder, cfg LoaderConfig, log logger.ILogger) *Loader {
	l := &Loader{
		cache:    c,
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer("github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"),
	}
	if lk, ok := c.(cache.Locker); ok && cfg.LockLease > 0 {
		l.locker = lk
	}
	return l
}

// Load returns the vector store for the session, building it from userIdentity's durable
// files on a miss. The returned store must not be mutated.
func (l *Loader) Load(ctx context.Context, sessionID, userIdentity string) (*VectorStore, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	if userIdentity == "" {
		return nil, ErrInvalidUser
	}

	ctx, span := l.tracer.Start(ctx, "vectorstore.Load", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	vs, result := l.probe(ctx, sessionID)
	CacheLookups.WithLabelValues(string(result)).Inc()
	span.SetAttributes(attribute.String("cache.result", string(result)))
	if result == probeHit {
		return vs, nil
	}

	// an unreachable cache is neither locked nor written back
	writeBack := result != probeUnavailable

	if writeBack && l.locker != nil {
		release, served := l.acquireOrWait(ctx, sessionID)
		if served != nil {
			return served, nil
		}
		if release != nil {
			defer release()
		}
	}

	vs, err := l.rebuild(ctx, sessionID, userIdentity, writeBack)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return vs, nil
}

// ClearSession drops both cache keys and reports whether anything was there.
func (l *Loader) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrInvalidSession
	}
	n, err := l.cache.Delete(ctx, IndexKey(sessionID), MetadataKey(sessionID))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	l.logger.Info(loaderModule, "Session cleared", map[string]interface{}{
		"session_id": sessionID, "deleted_keys": n,
	})
	return n > 0, nil
}

// State reports whether the session currently has a complete pair in the cache.
func (l *Loader) State(ctx context.Context, sessionID string) (SessionState, error) {
	if sessionID == "" {
		return StateAbsent, ErrInvalidSession
	}
	n, err := l.cache.Exists(ctx, IndexKey(sessionID), MetadataKey(sessionID))
	if err != nil {
		return StateAbsent, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	if n == 2 {
		return StateWarm, nil
	}
	return StateAbsent, nil
}

func (l *Loader) probe(ctx context.Context, sessionID string) (*VectorStore, probeResult) {
	indexBytes, indexOK, err := l.cache.Get(ctx, IndexKey(sessionID))
	if err != nil {
		l.warnUnavailable(sessionID, err)
		return nil, probeUnavailable
	}
	metadataBytes, metadataOK, err := l.cache.Get(ctx, MetadataKey(sessionID))
	if err != nil {
		l.warnUnavailable(sessionID, err)
		return nil, probeUnavailable
	}

	switch {
	case !indexOK && !metadataOK:
		return nil, probeMiss
	case !indexOK || !metadataOK:
		l.logger.Warn(loaderModule, "Partial cache pair, rebuilding", map[string]interface{}{
			"session_id": sessionID, "index_present": indexOK, "metadata_present": metadataOK,
		})
		return nil, probePartial
	}

	vs, err := Deserialize(indexBytes, metadataBytes, l.embedder)
	if err != nil {
		l.logger.Warn(loaderModule, "Cached vector store failed to decode, rebuilding", map[string]interface{}{
			"session_id": sessionID, "error": fmt.Errorf("%w: %w", ErrCacheCorrupt, err).Error(),
		})
		return nil, probeCorrupt
	}
	return vs, probeHit
}

// acquireOrWait takes the rebuild lock. If another caller holds it, it polls the cache for
// that caller's result and returns it as served. A nil release and nil served means the
// caller should rebuild without holding the lock.
func (l *Loader) acquireOrWait(ctx context.Context, sessionID string) (release func(), served *VectorStore) {
	key := LockKey(sessionID)
	outcome, err := l.locker.TryAcquire(ctx, key, l.cfg.LockLease)
	if err != nil {
		l.logger.Warn(loaderModule, "Rebuild lock unavailable, continuing without it", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return nil, nil
	}

	if outcome == cache.Acquired {
		return func() {
			// the request context may already be cancelled here
			if err := l.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				l.logger.Warn(loaderModule, "Failed to release rebuild lock", map[string]interface{}{
					"session_id": sessionID, "error": err.Error(),
				})
			}
		}, nil
	}

	if vs := l.waitForRebuild(ctx, sessionID); vs != nil {
		LockWaits.WithLabelValues("served").Inc()
		return nil, vs
	}
	LockWaits.WithLabelValues("timeout").Inc()
	l.logger.Warn(loaderModule, "Concurrent rebuild did not finish in time, rebuilding", map[string]interface{}{
		"session_id": sessionID, "waited": l.cfg.LockWait.String(),
	})
	return nil, nil
}

func (l *Loader) waitForRebuild(ctx context.Context, sessionID string) *VectorStore {
	interval := l.cfg.LockPollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.NewTimer(l.cfg.LockWait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			if vs, result := l.probe(ctx, sessionID); result == probeHit {
				return vs
			}
		}
	}
}

func (l *Loader) rebuild(ctx context.Context, sessionID, userIdentity string, writeBack bool) (*VectorStore, error) {
	start := time.Now()
	defer func() { RebuildDuration.Observe(time.Since(start).Seconds()) }()

	workspace, err := os.MkdirTemp(l.cfg.TempDir, "vectorstore-*")
	if err != nil {
		Rebuilds.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create rebuild workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	vs, err := l.loadFromDurable(ctx, userIdentity, workspace)
	if err != nil {
		Rebuilds.WithLabelValues(rebuildLabel(err)).Inc()
		l.logger.Error(loaderModule, "Vector store rebuild failed", map[string]interface{}{
			"session_id": sessionID, "user": userIdentity, "error": err.Error(),
		})
		return nil, err
	}
	Rebuilds.WithLabelValues("success").Inc()

	if writeBack {
		l.writeBack(ctx, sessionID, vs)
	}

	l.logger.Info(loaderModule, "Vector store rebuilt", map[string]interface{}{
		"session_id": sessionID, "user": userIdentity, "chunks": vs.Len(),
		"duration_ms": time.Since(start).Milliseconds(), "cached": writeBack,
	})
	return vs, nil
}

func (l *Loader) loadFromDurable(ctx context.Context, userIdentity, workspace string) (*VectorStore, error) {
	dlCtx := ctx
	if l.cfg.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		dlCtx, cancel = context.WithTimeout(ctx, l.cfg.DownloadTimeout)
		defer cancel()
	}

	remote := l.cfg.Layout.VectorStorePath(userIdentity)
	if err := l.store.Download(dlCtx, l.cfg.Bucket, remote, workspace); err != nil {
		// cancellation and bad object names are not outages
		if errors.Is(err, storage.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: download %s: %w", ErrDurableStoreUnavailable, remote, err)
		}
		return nil, fmt.Errorf("download %s: %w", remote, err)
	}

	indexBytes, err := readRequired(workspace, l.cfg.IndexFile)
	if err != nil {
		return nil, err
	}
	metadataBytes, err := readRequired(workspace, l.cfg.MetadataFile)
	if err != nil {
		return nil, err
	}

	vs, err := Deserialize(indexBytes, metadataBytes, l.embedder)
	if err != nil {
		return nil, fmt.Errorf("durable vector store %s: %w", remote, err)
	}
	return vs, nil
}

// writeBack serializes the in-memory store, not the downloaded files, and stores both halves
// with the same TTL. Failures only cost latency on the next request.
func (l *Loader) writeBack(ctx context.Context, sessionID string, vs *VectorStore) {
	indexBytes, err := vs.SerializeIndex()
	if err != nil {
		l.logger.Error(loaderModule, "Failed to serialize index", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}
	metadataBytes, err := vs.SerializeMetadata()
	if err != nil {
		l.logger.Error(loaderModule, "Failed to serialize metadata", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}

	if err := l.cache.SetEx(ctx, IndexKey(sessionID), l.cfg.TTL, indexBytes); err != nil {
		l.warnUnavailable(sessionID, err)
		return
	}
	if err := l.cache.SetEx(ctx, MetadataKey(sessionID), l.cfg.TTL, metadataBytes); err != nil {
		l.warnUnavailable(sessionID, err)
		// a lone index key would be read as a partial pair anyway
		_, _ = l.cache.Delete(ctx, IndexKey(sessionID))
	}
}

func (l *Loader) warnUnavailable(sessionID string, err error) {
	l.logger.Warn(loaderModule, "Cache unavailable, serving from durable store", map[string]interface{}{
		"session_id": sessionID, "error": fmt.Errorf("%w: %w", ErrCacheUnavailable, err).Error(),
	})
}

func readRequired(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s missing", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func rebuildLabel(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	case errors.Is(err, ErrDurableStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
