package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/api"
	"github.com/flocknet/flock/internal/cache"
	"github.com/flocknet/flock/internal/content"
	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/engagement"
	"github.com/flocknet/flock/internal/feed"
	"github.com/flocknet/flock/internal/graph"
	"github.com/flocknet/flock/internal/notify"
	"github.com/flocknet/flock/internal/visibility"
	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
	"github.com/flocknet/flock/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Flock API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Cache is optional: without Redis every lookup is a miss
	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		cacheStore = redisCache
	} else {
		logger.Warn("Redis disabled, feed caching is off")
		cacheStore = cache.NewNoop()
	}

	// Repositories
	repo := db.NewRepository(database.DB)
	accounts := db.NewAccountRepository(repo)
	follows := db.NewFollowRepository(repo)
	posts := db.NewPostRepository(repo)
	comments := db.NewCommentRepository(repo)
	marks := db.NewEngagementRepository(repo)
	notifs := db.NewNotificationRepository(repo)

	// Services
	fanout := notify.NewFanout(notifs, accounts)
	inbox := notify.NewInbox(notifs)
	graphSvc := graph.NewService(follows, accounts, fanout)
	resolver := visibility.NewResolver(graphSvc)
	feeds := feed.NewAssembler(graphSvc, posts, cacheStore, cfg.Engine)
	engagementSvc := engagement.NewService(marks, posts, comments, resolver, fanout, feeds)
	contentSvc := content.NewService(posts, comments, accounts, resolver, fanout, feeds)

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	apiRouter := api.NewRouter(graphSvc, engagementSvc, contentSvc, feeds, inbox, database, cacheStore)
	apiRouter.SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
