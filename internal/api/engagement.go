package api

import (
	"github.com/gin-gonic/gin"

	"github.com/flocknet/flock/internal/models"
)

type toggleLikeRequest struct {
	EntityKind string `json:"entity_kind"`
	EntityID   int64  `json:"entity_id"`
}

type recordShareRequest struct {
	Text string `json:"text"`
}

// toggleLike handles POST /likes. The same call likes an unliked entity and
// unlikes a liked one; the response carries the resulting state and count.
func (r *Router) toggleLike(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	kind, ok := models.ParseEntityKind(req.EntityKind)
	if !ok {
		c.JSON(400, gin.H{"error": "entity_kind must be post or comment"})
		return
	}
	if req.EntityID < 1 {
		c.JSON(400, gin.H{"error": "invalid entity_id"})
		return
	}

	result, err := r.engagement.ToggleLike(c.Request.Context(), caller, kind, req.EntityID)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, result)
}

// recordShare handles POST /posts/:id/share.
func (r *Router) recordShare(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req recordShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	shareID, err := r.engagement.RecordShare(c.Request.Context(), caller, postID, req.Text)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(201, gin.H{"post_id": shareID})
}
