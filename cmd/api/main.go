package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"go.opentelemetry.io/otel"

	"github.com/renthive/recommender/internal/api/handlers"
	"github.com/renthive/recommender/internal/api/middleware"
	"github.com/renthive/recommender/internal/config"
	"github.com/renthive/recommender/internal/embeddings"
	"github.com/renthive/recommender/internal/observability"
	"github.com/renthive/recommender/internal/recommend"
	"github.com/renthive/recommender/internal/repository"
	"github.com/renthive/recommender/pkg/cache"
	"github.com/renthive/recommender/pkg/database"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}),
	)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// The embedding backend initializes lazily: a missing or bad OPENAI_API_KEY
	// degrades content scoring instead of preventing startup.
	var factory func() (embeddings.Client, error)
	if cfg.OpenAIAPIKey != "" {
		factory = func() (embeddings.Client, error) {
			return embeddings.NewOpenAIClientWithModel(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingRateLimit), nil
		}

		slog.Info("Content-based scoring enabled", "embedding_model", cfg.EmbeddingModel)
	} else {
		slog.Info("Content-based scoring disabled (OPENAI_API_KEY not set), collaborative filtering only")
	}

	embeddingClient := embeddings.NewLazyClient(factory)

	userTextCache, err := cache.NewLoaderCache[string, []float32](cfg.EmbeddingCacheSize, func(s string) string { return s })
	if err != nil {
		slog.Error("Failed to create embedding cache", "error", err)
		os.Exit(1)
	}

	meter := otel.GetMeterProvider().Meter("github.com/renthive/recommender")

	cacheMetrics, err := observability.NewCacheMetrics(meter)
	if err != nil {
		slog.Error("Failed to create cache metrics", "error", err)
		os.Exit(1)
	}

	httpMetrics, err := observability.NewHTTPMetrics(meter)
	if err != nil {
		slog.Error("Failed to create HTTP metrics", "error", err)
		os.Exit(1)
	}

	itemsRepo := repository.NewItemsRepository(db)
	usersRepo := repository.NewUsersRepository(db)
	historyRepo := repository.NewSearchHistoryRepository(db)
	snapshotsRepo := repository.NewSnapshotsRepository(db)
	itemEmbeddingsRepo := repository.NewItemEmbeddingsRepository(db)

	contentScorer := recommend.NewContentScorer(recommend.ContentScorerParams{
		Catalog:        itemsRepo,
		Users:          usersRepo,
		History:        historyRepo,
		Embedder:       embeddingClient,
		ItemEmbeddings: itemEmbeddingsRepo,
		UserTextCache:  userTextCache,
		Model:          cfg.EmbeddingModel,
	})

	collaborativeScorer := recommend.NewCollaborativeScorer(recommend.CollaborativeScorerParams{
		Catalog: itemsRepo,
		History: historyRepo,
	})

	recommendationsService := recommend.NewRecommendationService(recommend.RecommendationServiceParams{
		Content:               contentScorer,
		Collaborative:         collaborativeScorer,
		History:               historyRepo,
		Snapshots:             snapshotsRepo,
		FingerprintQueryLimit: cfg.FingerprintMaxQueries,
		Metrics:               cacheMetrics,
	})

	searchEventsService := recommend.NewSearchEventsService(historyRepo, nil)

	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationsService)
	searchEventsHandler := handlers.NewSearchEventsHandler(searchEventsService)
	healthHandler := handlers.NewHealthHandler()

	// Public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	// Protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /v1/users/{id}/recommendations", recommendationsHandler.Get)
	protectedMux.HandleFunc("POST /v1/search-events", searchEventsHandler.Create)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// Metrics outermost so durations cover the whole chain.
	var handler http.Handler = mainMux
	handler = middleware.MaxBody(maxRequestBodyBytes)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Metrics(httpMetrics)(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level. The handler is
// wrapped so records pick up trace_id, span_id, and request_id from context.
func setupLogging(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(observability.NewRequestContextHandler(inner)))
}
