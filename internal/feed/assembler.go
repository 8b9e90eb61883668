package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/cache"
	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
	"github.com/flocknet/flock/pkg/telemetry"
)

// GraphSource supplies the home-feed audience.
type GraphSource interface {
	Audience(ctx context.Context, userID int64) ([]int64, error)
}

// PostSource supplies the post queries behind both feeds.
type PostSource interface {
	ListByAuthors(ctx context.Context, authorIDs []int64, page, limit int) ([]*models.Post, error)
	ListPopular(ctx context.Context, since time.Time, page, limit int) ([]*models.Post, error)
}

// PostSummary is the feed's rendering of a post.
type PostSummary struct {
	ID             int64  `json:"id"`
	AuthorID       int64  `json:"author_id"`
	Body           string `json:"body"`
	Visibility     string `json:"visibility"`
	OriginalPostID int64  `json:"original_post_id,omitempty"`
	LikesCount     int64  `json:"likes_count"`
	CommentsCount  int64  `json:"comments_count"`
	SharesCount    int64  `json:"shares_count"`
	CreatedAt      string `json:"created_at"`
}

// Assembler composes home-feed and popular-feed pages through the cache
// layer. The cache is advisory: every cache failure degrades to a miss and
// is logged, never surfaced.
//
// Invalidation is deliberately narrow: a mutation drops the actor's own
// home-feed pages and the popular feed. Followers' cached home feeds are
// not touched; their staleness is bounded by the home-feed TTL.
type Assembler struct {
	graph  GraphSource
	posts  PostSource
	cache  cache.Store
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewAssembler creates a feed assembler.
func NewAssembler(graph GraphSource, posts PostSource, cacheStore cache.Store, cfg config.EngineConfig) *Assembler {
	return &Assembler{
		graph:  graph,
		posts:  posts,
		cache:  cacheStore,
		cfg:    cfg,
		logger: logging.WithComponent("feed"),
	}
}

// HomeFeed returns one page of public posts authored by the user and the
// accounts they follow, newest first.
func (a *Assembler) HomeFeed(ctx context.Context, userID int64, page, limit int) ([]*PostSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.home")
	defer span.End()

	page, limit = a.normalizePage(page, limit)
	key := homeFeedKey(userID, page, limit)

	if cached, ok := a.fromCache(ctx, key); ok {
		return cached, nil
	}

	audience, err := a.graph.Audience(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	posts, err := a.posts.ListByAuthors(ctx, audience, page, limit)
	if err != nil {
		return nil, errs.Internal(err)
	}

	result := renderSummaries(posts)
	a.toCache(ctx, key, result, a.cfg.HomeFeedTTL)
	return result, nil
}

// PopularFeed returns one page of recent public posts ordered by
// engagement score, recency breaking ties.
func (a *Assembler) PopularFeed(ctx context.Context, page, limit int) ([]*PostSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.popular")
	defer span.End()

	page, limit = a.normalizePage(page, limit)
	key := popularFeedKey(page, limit)

	if cached, ok := a.fromCache(ctx, key); ok {
		return cached, nil
	}

	since := time.Now().UTC().Add(-a.cfg.PopularWindow)
	posts, err := a.posts.ListPopular(ctx, since, page, limit)
	if err != nil {
		return nil, errs.Internal(err)
	}

	result := renderSummaries(posts)
	a.toCache(ctx, key, result, a.cfg.PopularFeedTTL)
	return result, nil
}

// InvalidateUser drops every cached home-feed page of one user.
func (a *Assembler) InvalidateUser(ctx context.Context, userID int64) {
	if err := a.cache.DeletePrefix(ctx, fmt.Sprintf("feed:home:%d:", userID)); err != nil {
		a.logger.Warn("home feed invalidation failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}

// InvalidatePopular drops every cached popular-feed page.
func (a *Assembler) InvalidatePopular(ctx context.Context) {
	if err := a.cache.DeletePrefix(ctx, "feed:popular:"); err != nil {
		a.logger.Warn("popular feed invalidation failed", zap.Error(err))
	}
}

func (a *Assembler) fromCache(ctx context.Context, key string) ([]*PostSummary, bool) {
	var cached []*PostSummary
	err := a.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheDisabled) {
		a.logger.Warn("feed cache read failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (a *Assembler) toCache(ctx context.Context, key string, value []*PostSummary, ttl time.Duration) {
	if err := a.cache.SetJSON(ctx, key, value, ttl); err != nil {
		a.logger.Warn("feed cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (a *Assembler) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = a.cfg.DefaultPageSize
	}
	if limit > a.cfg.MaxPageSize {
		limit = a.cfg.MaxPageSize
	}
	return page, limit
}

// homeFeedKey keeps the user id outside the hash so one user's pages can
// be dropped by prefix.
func homeFeedKey(userID int64, page, limit int) string {
	return fmt.Sprintf("feed:home:%d:%s", userID,
		cache.HashKey(fmt.Sprintf("%d", page), fmt.Sprintf("%d", limit)))
}

func popularFeedKey(page, limit int) string {
	return "feed:popular:" + cache.HashKey(fmt.Sprintf("%d", page), fmt.Sprintf("%d", limit))
}

func renderSummaries(posts []*models.Post) []*PostSummary {
	result := make([]*PostSummary, 0, len(posts))
	for _, p := range posts {
		summary := &PostSummary{
			ID:            p.ID,
			AuthorID:      p.AuthorID,
			Body:          p.Body,
			Visibility:    models.VisibilityName(p.Visibility),
			LikesCount:    p.LikesCount,
			CommentsCount: p.CommentsCount,
			SharesCount:   p.SharesCount,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		}
		if p.OriginalPostID.Valid {
			summary.OriginalPostID = p.OriginalPostID.Int64
		}
		result = append(result, summary)
	}
	return result
}
