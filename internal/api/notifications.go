package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// listNotifications handles GET /notifications. Pass unread_only=true to
// restrict the page to unread entries; the unread count is always total.
func (r *Router) listNotifications(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	result, err := r.inbox.List(c.Request.Context(), caller, page, limit, unreadOnly)
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, result)
}

// markNotificationRead handles POST /notifications/:id/read.
func (r *Router) markNotificationRead(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	notifID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.inbox.MarkRead(c.Request.Context(), caller, notifID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "read"})
}

// markAllNotificationsRead handles POST /notifications/read-all.
func (r *Router) markAllNotificationsRead(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := r.inbox.MarkAllRead(c.Request.Context(), caller); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// deleteNotification handles DELETE /notifications/:id.
func (r *Router) deleteNotification(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	notifID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := r.inbox.Delete(c.Request.Context(), caller, notifID); err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "deleted"})
}
