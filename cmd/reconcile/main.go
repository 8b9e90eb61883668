package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/graph"
	"github.com/flocknet/flock/internal/notify"
	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
)

// The reconcile job walks every account, post, and comment and recomputes
// the derived counters from their authoritative sets. Drift means a past
// bug or an out-of-band data change; each correction is logged. Run it
// from cron or by hand, never from request handling.
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
	logger.Info("Starting Flock counter reconciliation")

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	repo := db.NewRepository(database.DB)
	accounts := db.NewAccountRepository(repo)
	follows := db.NewFollowRepository(repo)
	posts := db.NewPostRepository(repo)
	comments := db.NewCommentRepository(repo)
	notifs := db.NewNotificationRepository(repo)

	graphSvc := graph.NewService(follows, accounts, notify.NewFanout(notifs, accounts))

	ctx := context.Background()
	drift := 0

	accountIDs, err := accounts.ListIDs(ctx)
	if err != nil {
		logger.Fatal("Failed to list accounts", zap.Error(err))
	}
	for _, id := range accountIDs {
		if err := graphSvc.Reconcile(ctx, id); err != nil {
			logger.Error("Account reconcile failed", zap.Int64("account_id", id), zap.Error(err))
		}
	}

	postIDs, err := posts.ListIDs(ctx)
	if err != nil {
		logger.Fatal("Failed to list posts", zap.Error(err))
	}
	for _, id := range postIDs {
		recounts := []struct {
			counter string
			run     func(context.Context, int64) (bool, error)
		}{
			{"likes_count", posts.RecountLikes},
			{"comments_count", posts.RecountComments},
			{"shares_count", posts.RecountShares},
		}
		for _, rc := range recounts {
			changed, err := rc.run(ctx, id)
			if err != nil {
				logger.Error("Post recount failed",
					zap.Int64("post_id", id),
					zap.String("counter", rc.counter),
					zap.Error(err))
				continue
			}
			if changed {
				drift++
				logger.Warn("Corrected drifted counter",
					zap.Int64("post_id", id),
					zap.String("counter", rc.counter))
			}
		}
	}

	commentIDs, err := comments.ListIDs(ctx)
	if err != nil {
		logger.Fatal("Failed to list comments", zap.Error(err))
	}
	for _, id := range commentIDs {
		changed, err := comments.RecountLikes(ctx, id)
		if err != nil {
			logger.Error("Comment recount failed", zap.Int64("comment_id", id), zap.Error(err))
			continue
		}
		if changed {
			drift++
			logger.Warn("Corrected drifted counter",
				zap.Int64("comment_id", id),
				zap.String("counter", "likes_count"))
		}
	}

	logger.Info("Reconciliation finished",
		zap.Int("accounts", len(accountIDs)),
		zap.Int("posts", len(postIDs)),
		zap.Int("comments", len(commentIDs)),
		zap.Int("corrections", drift))
}
