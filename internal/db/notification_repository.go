package db

import (
	"context"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

// NotificationRepository provides notification database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

// ListByRecipient returns a recipient's active notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, dstID int64, page, limit int, unreadOnly bool) ([]*models.Notification, error) {
	q := r.db.WithContext(ctx).
		Where("dst_id = ? AND is_active = ?", dstID, true)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifs []*models.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

// CountUnread counts a recipient's unread active notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, dstID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("dst_id = ? AND is_read = ? AND is_active = ?", dstID, false, true).
		Count(&count).Error
	return count, err
}

// MarkRead flags one of the recipient's notifications as read. Scoped to
// the recipient so one user cannot mark another's notification. Returns
// errs.ErrNotFound when no matching unread notification exists.
func (r *NotificationRepository) MarkRead(ctx context.Context, dstID, notifID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND dst_id = ? AND is_active = ?", notifID, dstID, true).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("notification %d for account %d", notifID, dstID)
	}
	return nil
}

// MarkAllRead flags all of the recipient's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, dstID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("dst_id = ? AND is_read = ? AND is_active = ?", dstID, false, true).
		Update("is_read", true).Error
}

// SoftDelete deactivates a recipient's notification.
func (r *NotificationRepository) SoftDelete(ctx context.Context, dstID, notifID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND dst_id = ? AND is_active = ?", notifID, dstID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("notification %d for account %d", notifID, dstID)
	}
	return nil
}
