package api

import (
	"github.com/gin-gonic/gin"
)

type createPostRequest struct {
	Body       string `json:"body"`
	Visibility string `json:"visibility"`
}

type updatePostRequest struct {
	Body string `json:"body"`
}

type createCommentRequest struct {
	Body            string `json:"body"`
	ParentCommentID *int64 `json:"parent_comment_id"`
}

// createPost handles POST /posts.
func (r *Router) createPost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	if req.Visibility == "" {
		req.Visibility = "public"
	}

	post, err := r.content.CreatePost(c.Request.Context(), caller, req.Body, req.Visibility)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(201, renderPost(post))
}

// getPost handles GET /posts/:id.
func (r *Router) getPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := r.content.GetPost(c.Request.Context(), callerID(c), postID)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, renderPost(post))
}

// updatePost handles PATCH /posts/:id.
func (r *Router) updatePost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	post, err := r.content.UpdatePost(c.Request.Context(), caller, postID, req.Body)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, renderPost(post))
}

// deletePost handles DELETE /posts/:id.
func (r *Router) deletePost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.content.DeletePost(c.Request.Context(), caller, postID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "deleted"})
}

// createComment handles POST /posts/:id/comments.
func (r *Router) createComment(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := r.content.CreateComment(c.Request.Context(), caller, postID, req.ParentCommentID, req.Body)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(201, renderComment(comment))
}

// listComments handles GET /posts/:id/comments.
func (r *Router) listComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	comments, err := r.content.ListComments(c.Request.Context(), callerID(c), postID, page, limit)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"comments": renderComments(comments)})
}

// deleteComment handles DELETE /comments/:id.
func (r *Router) deleteComment(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.content.DeleteComment(c.Request.Context(), caller, commentID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "deleted"})
}
