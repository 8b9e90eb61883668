package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/cache"
	"github.com/flocknet/flock/internal/content"
	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/engagement"
	"github.com/flocknet/flock/internal/feed"
	"github.com/flocknet/flock/internal/graph"
	"github.com/flocknet/flock/internal/notify"
	"github.com/flocknet/flock/pkg/logging"
)

// Router wires the HTTP surface to the services.
type Router struct {
	graph      *graph.Service
	engagement *engagement.Service
	content    *content.Service
	feeds      *feed.Assembler
	inbox      *notify.Inbox
	db         *db.DB
	cache      cache.Store
	logger     *zap.Logger
}

// NewRouter creates an API router over the assembled services.
func NewRouter(graphSvc *graph.Service, engagementSvc *engagement.Service, contentSvc *content.Service, feeds *feed.Assembler, inbox *notify.Inbox, database *db.DB, cacheStore cache.Store) *Router {
	return &Router{
		graph:      graphSvc,
		engagement: engagementSvc,
		content:    contentSvc,
		feeds:      feeds,
		inbox:      inbox,
		db:         database,
		cache:      cacheStore,
		logger:     logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Social graph
	engine.POST("/users/:id/follow", r.requestFollow)
	engine.DELETE("/users/:id/follow", r.unfollow)
	engine.POST("/follow-requests/:id/accept", r.acceptFollow)
	engine.POST("/follow-requests/:id/reject", r.rejectFollow)
	engine.GET("/users/:id/follow-status", r.followStatus)
	engine.GET("/users/:id/followers", r.listFollowers)
	engine.GET("/users/:id/following", r.listFollowing)

	// Content
	engine.POST("/posts", r.createPost)
	engine.GET("/posts/:id", r.getPost)
	engine.PATCH("/posts/:id", r.updatePost)
	engine.DELETE("/posts/:id", r.deletePost)
	engine.POST("/posts/:id/comments", r.createComment)
	engine.GET("/posts/:id/comments", r.listComments)
	engine.DELETE("/comments/:id", r.deleteComment)

	// Engagement
	engine.POST("/likes", r.toggleLike)
	engine.POST("/posts/:id/share", r.recordShare)

	// Feeds
	engine.GET("/feed/home", r.homeFeed)
	engine.GET("/feed/popular", r.popularFeed)

	// Notifications
	engine.GET("/notifications", r.listNotifications)
	engine.POST("/notifications/:id/read", r.markNotificationRead)
	engine.POST("/notifications/read-all", r.markAllNotificationsRead)
	engine.DELETE("/notifications/:id", r.deleteNotification)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	code := 200
	if err := r.db.Health(c.Request.Context()); err != nil {
		status = "DEGRADED"
		code = 503
		r.logger.Warn("database health check failed", zap.Error(err))
	}

	// A dead cache degrades performance, not correctness.
	cacheStatus := "OK"
	if err := r.cache.Health(c.Request.Context()); err != nil {
		cacheStatus = "DOWN"
	}

	c.JSON(code, gin.H{
		"status":  status,
		"cache":   cacheStatus,
		"service": "flock-api",
	})
}
