package api

import (
	"github.com/gin-gonic/gin"
)

// homeFeed handles GET /feed/home for the authenticated account.
func (r *Router) homeFeed(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)

	posts, err := r.feeds.HomeFeed(c.Request.Context(), caller, page, limit)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"posts": posts})
}

// popularFeed handles GET /feed/popular. Anonymous access is allowed; the
// feed only ever contains public posts.
func (r *Router) popularFeed(c *gin.Context) {
	page, limit := pageParams(c)

	posts, err := r.feeds.PopularFeed(c.Request.Context(), page, limit)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"posts": posts})
}
