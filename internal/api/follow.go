package api

import (
	"github.com/gin-gonic/gin"
)

// requestFollow handles POST /users/:id/follow. A private target yields a
// pending request, a public one an immediate follow; the response carries
// which.
func (r *Router) requestFollow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := r.graph.Request(c.Request.Context(), caller, targetID)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": status})
}

// unfollow handles DELETE /users/:id/follow. It also withdraws a pending
// request.
func (r *Router) unfollow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.graph.Unfollow(c.Request.Context(), caller, targetID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// acceptFollow handles POST /follow-requests/:id/accept where :id is the
// requesting follower's account id.
func (r *Router) acceptFollow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	followerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.graph.Accept(c.Request.Context(), caller, followerID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "accepted"})
}

// rejectFollow handles POST /follow-requests/:id/reject.
func (r *Router) rejectFollow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	followerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.graph.Reject(c.Request.Context(), caller, followerID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "rejected"})
}

// followStatus handles GET /users/:id/follow-status.
func (r *Router) followStatus(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := r.graph.Status(c.Request.Context(), callerID(c), targetID)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, status)
}

// listFollowers handles GET /users/:id/followers.
func (r *Router) listFollowers(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	accounts, err := r.graph.ListFollowers(c.Request.Context(), targetID, page, limit)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"accounts": renderAccounts(accounts)})
}

// listFollowing handles GET /users/:id/following.
func (r *Router) listFollowing(c *gin.Context) {
	followerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	accounts, err := r.graph.ListFollowing(c.Request.Context(), followerID, page, limit)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"accounts": renderAccounts(accounts)})
}
