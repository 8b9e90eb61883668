package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID, nil when absent.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create inserts a comment and recounts the parent post's comments_count
// from the active-comment set in the same transaction.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return recountComments(tx, comment.PostID)
	})
}

// SoftDelete deactivates a comment and recounts the parent post's
// comments_count. Returns errs.ErrNotFound when the comment is absent or
// already inactive.
func (r *CommentRepository) SoftDelete(ctx context.Context, id, postID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND is_active = ?", id, true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("comment %d", id)
		}
		return recountComments(tx, postID)
	})
}

// ListByPost returns active comments of a post, oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, page, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND is_active = ?", postID, true).
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// ListIDs returns the ids of all active comments, for reconciliation walks.
func (r *CommentRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// RecountLikes recomputes a comment's likes_count from the engagement-mark
// set and reports whether the stored value had drifted.
func (r *CommentRepository) RecountLikes(ctx context.Context, commentID int64) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("comment %d", commentID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.EngagementMark{}).
			Where("entity_kind = ? AND entity_id = ?", models.EntityKindComment, commentID).
			Count(&count).Error; err != nil {
			return err
		}

		if comment.LikesCount == count {
			return nil
		}
		changed = true
		return tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Update("likes_count", count).Error
	})
	return changed, err
}

// recountComments derives comments_count from the active-comment set inside
// the caller's transaction.
func recountComments(tx *gorm.DB, postID int64) error {
	count := tx.Model(&models.Comment{}).
		Select("count(*)").
		Where("post_id = ? AND is_active = ?", postID, true)
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("comments_count", count).Error
}
