// Package main implements the ingest CLI, which builds and inspects user vector stores outside the API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/PinsaraPerera/intellihack-backend/internal/bootstrap"
	"github.com/PinsaraPerera/intellihack-backend/internal/config"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/embedding"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"
	"github.com/PinsaraPerera/intellihack-backend/pkg/ingest"
	pktNats "github.com/PinsaraPerera/intellihack-backend/pkg/nats"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	"github.com/spf13/cobra"
)

var (
	// storageDriver overrides STORAGE_DRIVER
	storageDriver string
	// quiet sends logs only to the ingest log file
	quiet bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build and inspect per-user vector stores",
	Long: `ingest reads a user's documents from data/<user>/resources, splits and embeds them,
and uploads index.bin and metadata.bin to data/<user>/vectorStore.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage", "", "durable store driver (gcs|local), defaults to STORAGE_DRIVER")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log to the ingest log file only")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(inspectCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <user>",
	Short: "Rebuild a user's vector store from their resources",
	Long: `Rebuild a user's vector store from the files in their resource folder.

Examples:
  # Build against GCS
  ingest build alice@example.com

  # Build against a local bucket directory
  STORAGE_LOCAL_ROOT=./buckets ingest build --storage local alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var foldersCmd = &cobra.Command{
	Use:   "folders <user>",
	Short: "Create a user's resource and vector store folders",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolders,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <user>",
	Short: "Download and summarise a user's built vector store",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

type env struct {
	cfg   *config.Config
	log   logger.ILogger
	store storage.DurableStore
}

func setup() (*env, error) {
	cfg := config.Load()
	if storageDriver != "" {
		cfg.Storage.Driver = storageDriver
	}

	var log logger.ILogger
	if quiet {
		log = logger.NewIsolatedLogger(cfg.App.IngestLogFilePath)
	} else {
		log = logger.NewZapLogger(cfg.App.IngestLogFilePath, cfg.App.Environment == "production")
	}

	store, err := bootstrap.NewDurableStore(cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	embedder, err := embedding.NewEmbedder(
		e.cfg.Ai.EmbeddingProvider,
		e.cfg.Ai.EmbeddingModel,
		e.cfg.Ai.OpenAIKey,
		e.cfg.Ai.OpenAIBaseURL,
		e.cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		return err
	}

	pipeline := ingest.NewPipeline(e.store, embedder, bootstrap.IngestConfig(e.cfg), e.log)
	res, err := pipeline.Build(ctx, args[0])
	if err != nil {
		return err
	}

	if e.cfg.App.NatsURL != "" {
		publishReady(ctx, e, res)
	}

	return printJSON(cmd, res)
}

func publishReady(ctx context.Context, e *env, res *ingest.Result) {
	pub, err := pktNats.NewPublisher(e.cfg.App.NatsURL, e.log)
	if err != nil {
		e.log.Warn("INGEST", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		return
	}
	defer pub.Close()

	if err := pub.Publish(ctx, events.NewVectorStoreReady(res.User, res.Prefix, res.Chunks)); err != nil {
		e.log.Warn("INGEST", "Failed to publish ready event", map[string]interface{}{"error": err.Error()})
	}
}

func runFolders(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	layout := bootstrap.Layout(e.cfg.Storage)
	if err := e.store.CreateUserFolders(cmd.Context(), e.cfg.Storage.Bucket, layout, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", layout.UserFolder(args[0]))
	return nil
}

type inspectReport struct {
	User    string         `json:"user"`
	Chunks  int            `json:"chunks"`
	Dims    int            `json:"dims"`
	Sources map[string]int `json:"sources"`
	Files   []string       `json:"files"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	dir, err := os.MkdirTemp(e.cfg.Storage.TempDir, "inspect-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	layout := bootstrap.Layout(e.cfg.Storage)
	if err := e.store.Download(cmd.Context(), e.cfg.Storage.Bucket, layout.VectorStorePath(args[0]), dir); err != nil {
		return err
	}

	indexBytes, err := os.ReadFile(filepath.Join(dir, e.cfg.Storage.IndexFile))
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrNotFound, err)
	}
	metaBytes, err := os.ReadFile(filepath.Join(dir, e.cfg.Storage.MetadataFile))
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrNotFound, err)
	}

	// No embedder: inspection never searches.
	vs, err := vectorstore.Deserialize(indexBytes, metaBytes, nil)
	if err != nil {
		return err
	}

	report := inspectReport{
		User:    args[0],
		Chunks:  vs.Len(),
		Dims:    vs.Dims(),
		Sources: map[string]int{},
	}
	for _, d := range vs.Documents() {
		report.Sources[d.Source]++
	}
	for name := range report.Sources {
		report.Files = append(report.Files, name)
	}
	sort.Strings(report.Files)

	return printJSON(cmd, report)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
