package main

// @title           VectorMind API
// @version         1.0
// @description     Retrieval-augmented question answering over your own documents and Google Drive.

// @contact.name   VectorMind OSS
// @contact.url    https://github.com/custodia-labs/vectormind/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/vectormind/internal/adapters/driven/ai"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/auth"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/blob"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/google"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/pgvec"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/vectormind/internal/adapters/driven/redis"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/weaviate"
	"github.com/custodia-labs/vectormind/internal/adapters/driven/web"
	"github.com/custodia-labs/vectormind/internal/adapters/driving/http"
	"github.com/custodia-labs/vectormind/internal/config"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/services"
	"github.com/custodia-labs/vectormind/internal/normalisers"
	"github.com/custodia-labs/vectormind/internal/postprocessors"
)

var version = "dev"

const oauthStateTTL = 10 * time.Minute

func main() {
	log.Printf("vectormind %s starting", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	for _, s := range cfg.Report() {
		log.Printf("config %s=%s (%s)", s.Key, s.Value, s.Source)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		redisClient, err = redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== AI services =====
	aiFactory := ai.NewFactory(ai.FactoryConfig{
		EmbeddingProvider:   cfg.EmbeddingProvider,
		EmbeddingURL:        cfg.EmbeddingURL,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		LLMProvider:         cfg.LLMProvider,
		LLMURL:              cfg.LLMURL,
		LLMAPIKey:           cfg.LLMAPIKey,
		LLMModel:            cfg.LLMModel,
		GeminiAPIKey:        cfg.GeminiAPIKey,
		Timeout:             cfg.HTTPTimeout,
	})
	embedder, err := aiFactory.CreateEmbeddingService(ctx)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	defer embedder.Close()

	llm, err := aiFactory.CreateLLMService(ctx)
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	defer llm.Close()
	log.Printf("AI services: embedding=%s llm=%s", embedder.Model(), llm.Model())

	// ===== Vector store =====
	vectorStore, closeVectors := openVectorStore(ctx, cfg, embedder)
	defer closeVectors()

	// ===== Blob store =====
	var blobs driven.BlobStore
	switch cfg.BlobBackend {
	case "s3":
		blobs, err = blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
	default:
		blobs, err = blob.NewLocalStore(cfg.UploadDir)
	}
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	log.Printf("Using %s blob store", cfg.BlobBackend)

	// ===== PostgreSQL Stores =====
	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		log.Println("Warning: ENCRYPTION_KEY not set, deriving credential key from JWT_SECRET")
		encryptionKey = cfg.JWTSecret
	}
	encryptor, err := postgres.NewSecretEncryptorFromString(encryptionKey)
	if err != nil {
		log.Fatalf("Failed to create secret encryptor: %v", err)
	}
	documentStore := postgres.NewDocumentStore(db)
	credentialStore := postgres.NewCredentialStore(db, encryptor)

	// ===== Lock and OAuth state (Redis if available, otherwise PostgreSQL) =====
	var (
		distributedLock driven.DistributedLock
		oauthStates     driven.OAuthStateStore
	)
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		oauthStates = redisadapter.NewOAuthStateStore(redisClient, oauthStateTTL)
		log.Println("Using Redis lock and OAuth state store")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		oauthStates = postgres.NewOAuthStateStore(db, oauthStateTTL)
		log.Println("Using PostgreSQL advisory lock and OAuth state store")
	}

	// ===== Core services =====
	ingestion := services.NewIngestionPipeline(services.IngestionConfig{
		Extractors:    normalisers.DefaultRegistry(),
		Chunker:       postprocessors.NewWordChunker(cfg.ChunkWords),
		Embedder:      embedder,
		VectorStore:   vectorStore,
		DocumentStore: documentStore,
		WindowWords:   cfg.ChunkWords,
		Logger:        slog.Default(),
	})

	retrieval := services.NewRetrievalOrchestrator(services.RetrievalConfig{
		Embedder:    embedder,
		VectorStore: vectorStore,
		LLM:         llm,
		Limit:       cfg.RetrievalLimit,
		Logger:      slog.Default(),
	})

	svc := http.Services{
		Retrieval: retrieval,
		Verifier:  mustVerifier(cfg.JWTSecret),
	}

	// ===== Drive (optional) =====
	var (
		driveClient driven.DriveClient
		credentials *services.CredentialManager
		scheduler   *services.DriveSyncScheduler
	)
	if cfg.DriveEnabled() {
		oauthClient, err := google.NewOAuthClient(google.OAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Timeout:      cfg.HTTPTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to create OAuth client: %v", err)
		}
		driveClient = google.NewDriveClient(google.DriveConfig{})

		credentials = services.NewCredentialManager(services.CredentialManagerConfig{
			Store:  credentialStore,
			OAuth:  oauthClient,
			Lock:   distributedLock,
			Logger: slog.Default(),
		})
		scheduler = services.NewDriveSyncScheduler(services.DriveSyncConfig{
			Credentials:  credentials,
			Drive:        driveClient,
			Ingestion:    ingestion,
			BatchSize:    cfg.SyncBatchSize,
			BatchPause:   cfg.SyncBatchPause,
			MinFileBytes: cfg.SyncMinFileBytes,
			Parallelism:  cfg.SyncParallelism,
			Logger:       slog.Default(),
		})
		svc.DriveSync = scheduler
		svc.DriveAuth = services.NewDriveAuthService(services.DriveAuthConfig{
			OAuth:       oauthClient,
			States:      oauthStates,
			Credentials: credentials,
			Sync:        scheduler,
			Documents:   documentStore,
			FrontendURL: cfg.FrontendRedirectURL,
			StateTTL:    oauthStateTTL,
			Logger:      slog.Default(),
		})
		log.Println("Google Drive integration enabled")
	} else {
		log.Println("Google Drive integration disabled (GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set)")
	}

	cacheCfg := services.DocumentCacheConfig{
		Documents:  documentStore,
		Blobs:      blobs,
		Drive:      driveClient,
		MaxEntries: cfg.CacheMaxEntries,
		TTL:        cfg.CacheTTL,
		Logger:     slog.Default(),
	}
	if credentials != nil {
		cacheCfg.Credentials = credentials
	}
	svc.Documents = services.NewDocumentService(services.DocumentServiceConfig{
		Ingestion: ingestion,
		Documents: documentStore,
		Blobs:     blobs,
		Fetcher:   web.NewFetcher(cfg.HTTPTimeout, web.DefaultMaxBytes),
		Cache:     services.NewDocumentCache(cacheCfg),
		Logger:    slog.Default(),
	})

	// ===== HTTP server =====
	serverCfg := http.DefaultConfig()
	serverCfg.Port = cfg.Port
	serverCfg.Version = version
	serverCfg.CORSOrigins = cfg.CORSOrigins

	server := http.NewServer(serverCfg, svc,
		http.ReadinessCheck{Name: "database", Check: db.Ping},
		http.ReadinessCheck{Name: "vector_store", Check: vectorStore.HealthCheck},
		http.ReadinessCheck{Name: "embedding", Check: embedder.HealthCheck},
	)

	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}

	// Background syncs outlive requests; stop them before closing the stores
	if scheduler != nil {
		log.Println("Stopping drive syncs...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := scheduler.Shutdown(shutdownCtx); err != nil {
			log.Printf("Drive sync shutdown: %v", err)
		}
	}
	log.Println("Stopped")
}

// openVectorStore connects the configured vector backend and ensures its schema
func openVectorStore(ctx context.Context, cfg *config.Config, embedder driven.EmbeddingService) (driven.VectorStore, func()) {
	switch cfg.VectorBackend {
	case "pgvector":
		dims := cfg.EmbeddingDimensions
		if dims <= 0 {
			// The column type needs the dimension before the first ingestion
			probe, err := embedder.EmbedQuery(ctx, "dimension probe")
			if err != nil {
				log.Fatalf("EMBEDDING_DIMENSIONS unset and embedding probe failed: %v", err)
			}
			dims = len(probe)
		}
		url := cfg.PGVectorURL
		if url == "" {
			url = cfg.DatabaseURL
		}
		store, err := pgvec.Open(ctx, url, dims)
		if err != nil {
			log.Fatalf("Failed to open pgvector store: %v", err)
		}
		log.Printf("Using pgvector store (dimensions=%d)", dims)
		return store, func() { _ = store.Close() }

	default:
		wcfg := weaviate.DefaultConfig(cfg.WeaviateURL)
		wcfg.APIKey = cfg.WeaviateAPIKey
		store := weaviate.NewVectorStore(wcfg)
		if err := store.HealthCheck(ctx); err != nil {
			log.Printf("Warning: Weaviate health check failed: %v (search may not work)", err)
			return store, func() {}
		}
		created, err := store.EnsureSchema(ctx)
		if err != nil {
			log.Fatalf("Failed to ensure Weaviate schema: %v", err)
		}
		if len(created) > 0 {
			log.Printf("Created Weaviate classes: %v", created)
		}
		log.Println("Weaviate connected")
		return store, func() {}
	}
}

func mustVerifier(secret string) driven.TokenVerifier {
	v, err := auth.NewVerifier(auth.Config{Secret: secret})
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	return v
}
