package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/errs"
)

// accountHeader carries the authenticated account id. Session verification
// happens upstream; an absent or malformed header reads as anonymous (0).
const accountHeader = "X-Account-ID"

func callerID(c *gin.Context) int64 {
	raw := c.GetHeader(accountHeader)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// requireCaller rejects anonymous requests to mutating endpoints.
func requireCaller(c *gin.Context) (int64, bool) {
	id := callerID(c)
	if id == 0 {
		c.JSON(401, gin.H{"error": "missing or invalid " + accountHeader + " header"})
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(400, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
// Internal failures are logged and returned as a generic message.
func (r *Router) writeError(c *gin.Context, err error) {
	switch {
	case errs.IsNotFound(err):
		c.JSON(404, gin.H{"error": err.Error()})
	case errs.IsForbidden(err):
		c.JSON(403, gin.H{"error": err.Error()})
	case errs.IsConflict(err):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		r.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(500, gin.H{"error": "internal error"})
	}
}
