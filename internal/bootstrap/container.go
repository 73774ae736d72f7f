package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/config"
	"github.com/PinsaraPerera/intellihack-backend/internal/controller"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/unitofwork"
	"github.com/PinsaraPerera/intellihack-backend/internal/service"
	"github.com/PinsaraPerera/intellihack-backend/internal/websocket"
	"github.com/PinsaraPerera/intellihack-backend/pkg/agent"
	"github.com/PinsaraPerera/intellihack-backend/pkg/cache"
	"github.com/PinsaraPerera/intellihack-backend/pkg/embedding"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"
	"github.com/PinsaraPerera/intellihack-backend/pkg/generator"
	"github.com/PinsaraPerera/intellihack-backend/pkg/ingest"
	"github.com/PinsaraPerera/intellihack-backend/pkg/llm/factory"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	pktNats "github.com/PinsaraPerera/intellihack-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController        controller.IQueryController
	StorageController      controller.IStorageController
	SessionController      controller.ISessionController
	NotificationController controller.INotificationController

	// Middleware
	AuthMiddleware    fiber.Handler
	SessionMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	NotificationHub *websocket.Hub

	Logger  logger.ILogger
	closers []func() error
}

// NewContainer builds every dependency from cfg. Optional infrastructure (NATS) only logs a warning
// when it cannot be reached; the cache and durable store are required.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	ingestLogger := logger.NewIsolatedLogger(cfg.App.IngestLogFilePath)
	c.closers = append(c.closers, ingestLogger.Sync)

	// 2. Fast cache + durable store
	sessionCache, err := NewCache(cfg.Cache, sysLogger)
	if err != nil {
		return nil, err
	}
	if closer, ok := sessionCache.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}

	durableStore, err := NewDurableStore(cfg.Storage, sysLogger)
	if err != nil {
		c.Close()
		return nil, err
	}
	if closer, ok := durableStore.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}
	layout := Layout(cfg.Storage)

	// 3. AI providers
	embedder, err := embedding.NewEmbedder(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.OpenAIKey,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	llmBaseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, cfg.Ai.OpenAIKey)
	if err != nil {
		c.Close()
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Vector store loader
	loader := vectorstore.NewLoader(sessionCache, durableStore, embedder, LoaderConfig(cfg), sysLogger)

	// 5. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, pubSub.Close)

	// Build events fan out to NATS (other services) and the websocket hub (browsers)
	var publishers events.Fanout
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			publishers = append(publishers, natsPub)
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	var hubRedis *redis.Client
	if rc, ok := sessionCache.(*cache.RedisCache); ok {
		hubRedis = rc.Client()
	}
	c.NotificationHub = websocket.NewHub(hubRedis, sysLogger)
	publishers = append(publishers, c.NotificationHub)

	// 6. Services
	pipeline := ingest.NewPipeline(durableStore, embedder, IngestConfig(cfg), ingestLogger)
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.IngestTopic)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Ai.IngestTopic,
		pipeline,
		publishers,
		ingestLogger,
	)

	queryService := service.NewQueryService(
		uowFactory,
		loader,
		generator.New(llmProvider, sysLogger),
		agent.NewClient(cfg.Agent.ServiceURL, cfg.Agent.Timeout),
		sysLogger,
	)
	storageService := service.NewStorageService(
		durableStore,
		cfg.Storage.Bucket,
		layout,
		cfg.Storage.SignedURLTTL,
		publisherService,
		sysLogger,
	)
	sessionService := service.NewSessionService(loader, sysLogger)

	// 7. Controllers
	c.QueryController = controller.NewQueryController(queryService)
	c.StorageController = controller.NewStorageController(storageService)
	c.SessionController = controller.NewSessionController(sessionService)
	c.NotificationController = controller.NewNotificationController(c.NotificationHub)
	c.AuthMiddleware = serverutils.NewJwtMiddleware(cfg.App.JwtSecret)
	c.SessionMiddleware = serverutils.SessionMiddleware(cfg.App.SessionCookieName)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to close dependency", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	c.closers = nil
}

// NewCache picks the fast cache named by cfg.Driver.
func NewCache(cfg config.CacheConfig, log logger.ILogger) (cache.Cache, error) {
	switch cfg.Driver {
	case "memory":
		log.Info("BOOTSTRAP", "Using in-process cache", nil)
		return cache.NewMemoryCache(10 * time.Minute), nil
	case "redis", "":
		rc := cache.NewRedisCache(cache.NewRedisClient(cfg.RedisURL))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			// The loader degrades to durable-store reads while redis is down
			log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}

// NewDurableStore picks the object store named by cfg.Driver.
func NewDurableStore(cfg config.StorageConfig, log logger.ILogger) (storage.DurableStore, error) {
	switch cfg.Driver {
	case "local":
		log.Info("BOOTSTRAP", "Using local durable store", map[string]interface{}{"root": cfg.LocalRoot})
		return storage.NewLocalStore(cfg.LocalRoot), nil
	case "gcs", "":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("BUCKET_NAME is required for the gcs storage driver")
		}
		store, err := storage.NewGCSStore(context.Background(), log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func Layout(cfg config.StorageConfig) storage.Layout {
	return storage.Layout{
		DataFolder:        cfg.DataFolder,
		ResourceFolder:    cfg.ResourceFolder,
		VectorStoreFolder: cfg.VectorStoreFolder,
	}
}

func LoaderConfig(cfg *config.Config) vectorstore.LoaderConfig {
	return vectorstore.LoaderConfig{
		Bucket:           cfg.Storage.Bucket,
		Layout:           Layout(cfg.Storage),
		IndexFile:        cfg.Storage.IndexFile,
		MetadataFile:     cfg.Storage.MetadataFile,
		TTL:              cfg.Cache.TTL,
		DownloadTimeout:  cfg.Storage.DownloadTimeout,
		LockLease:        cfg.Cache.LockLease,
		LockWait:         cfg.Cache.LockWait,
		LockPollInterval: cfg.Cache.LockPollInterval,
		TempDir:          cfg.Storage.TempDir,
	}
}

func IngestConfig(cfg *config.Config) ingest.Config {
	return ingest.Config{
		Bucket:       cfg.Storage.Bucket,
		Layout:       Layout(cfg.Storage),
		IndexFile:    cfg.Storage.IndexFile,
		MetadataFile: cfg.Storage.MetadataFile,
		ChunkSize:    cfg.Ai.ChunkSize,
		ChunkOverlap: cfg.Ai.ChunkOverlap,
		TempDir:      cfg.Storage.TempDir,
	}
}
