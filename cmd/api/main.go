package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/agencyos/meeting-scribe/pkg/validator"

	"github.com/agencyos/meeting-scribe/internal/adapter/handler"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/dedup"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/external/gamma"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/external/slack"
	"github.com/agencyos/meeting-scribe/internal/infrastructure/gitrepo"
	"github.com/agencyos/meeting-scribe/internal/usecase/gateway"
	"github.com/agencyos/meeting-scribe/internal/usecase/kbcontext"
	"github.com/agencyos/meeting-scribe/internal/usecase/mutation"
	"github.com/agencyos/meeting-scribe/internal/usecase/orchestrator"
	"github.com/agencyos/meeting-scribe/internal/usecase/processing"
	pkgai "github.com/agencyos/meeting-scribe/pkg/ai"
	"github.com/agencyos/meeting-scribe/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// Tag every request so handler logs can be correlated
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Webhook payloads carry full transcripts; cap them well above any real
	// meeting but below abuse territory
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Delivery store: memory by default, Redis when configured
	var store dedup.DeliveryStore
	switch cfg.Pipeline.DedupBackend {
	case "redis":
		log.Println("📦 Connecting to Redis delivery store...")
		redisStore, err := dedup.NewRedisStore(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	default:
		log.Println("📦 Using in-memory delivery store")
		memStore := dedup.NewMemoryStore()
		defer memStore.Close()
		store = memStore
	}

	// Knowledge-base context cache
	log.Println("📚 Initializing knowledge-base context cache...")
	contexts := kbcontext.NewCache(cfg.KnowledgeBase.Path, cfg.KnowledgeBase.ContextTTL, logger)

	// AI client
	log.Println("🤖 Initializing AI client...")
	claude := pkgai.NewClaudeClient(&cfg.Anthropic)

	// Output validator
	output := processing.NewValidator(logger)

	// Mutation engine over the document tree
	log.Println("📝 Initializing mutation engine...")
	repo := gitrepo.New(cfg.KnowledgeBase.Path, &cfg.Git, logger)
	engine := mutation.NewEngine(cfg.KnowledgeBase.Path, repo, &cfg.Git, logger)

	// Side-effect clients
	notifier := slack.NewClient(&cfg.Slack, logger)
	presenter := gamma.NewClient(&cfg.Gamma, logger)

	// Dead letters
	deadLetters, err := orchestrator.NewDeadLetterStore(cfg.Pipeline.DeadLetterDir, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dead-letter store: %v", err)
	}

	// Orchestrator
	log.Println("⚙️  Initializing orchestrator...")
	orch := orchestrator.New(cfg, contexts, claude, output, engine, store, deadLetters, notifier, presenter, logger)

	// Gateway
	gw := gateway.New(cfg.Fathom.WebhookSecret, cfg.Fathom.DedupWindow, store, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	webhookHandler := handler.NewWebhook(gw, orch, store, logger)
	router := handler.NewRouter(cfg, webhookHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	// Let in-flight deliveries drain before exiting
	if err := orch.Stop(ctx); err != nil {
		logger.Warn("shutdown with pipeline work still pending", zap.Error(err))
	}

	log.Println("✅ Server stopped gracefully")
}
