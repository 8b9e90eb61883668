package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID, nil when absent. Soft-deleted posts are
// returned; callers decide whether an inactive post counts as missing.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post's body and updated_at.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// SoftDelete deactivates a post. Returns errs.ErrNotFound when the post is
// absent or already inactive.
func (r *PostRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Where("id = ? AND is_active = ?", id, true).First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("post %d", id)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}

		// Deleting a share-repost shrinks the original's share set.
		if post.OriginalPostID.Valid {
			return recountShares(tx, post.OriginalPostID.Int64)
		}
		return nil
	})
}

// CreateShare inserts a share-repost and recounts the original's
// shares_count from the set of share posts referencing it, in one
// transaction. Shares are append-only; every call is a new share event.
func (r *PostRepository) CreateShare(ctx context.Context, share *models.Post, originalID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(share).Error; err != nil {
			return err
		}
		return recountShares(tx, originalID)
	})
}

// RecountShares recomputes shares_count from the share-post set and reports
// whether the stored value had drifted.
func (r *PostRepository) RecountShares(ctx context.Context, postID int64) (bool, error) {
	return r.recountDerived(ctx, postID, "shares_count", func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Post{}).
			Where("original_post_id = ? AND is_active = ?", postID, true)
	})
}

// RecountComments recomputes comments_count from the active-comment set and
// reports whether the stored value had drifted.
func (r *PostRepository) RecountComments(ctx context.Context, postID int64) (bool, error) {
	return r.recountDerived(ctx, postID, "comments_count", func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Comment{}).
			Where("post_id = ? AND is_active = ?", postID, true)
	})
}

// RecountLikes recomputes likes_count from the engagement-mark set and
// reports whether the stored value had drifted.
func (r *PostRepository) RecountLikes(ctx context.Context, postID int64) (bool, error) {
	return r.recountDerived(ctx, postID, "likes_count", func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.EngagementMark{}).
			Where("entity_kind = ? AND entity_id = ?", models.EntityKindPost, postID)
	})
}

func (r *PostRepository) recountDerived(ctx context.Context, postID int64, column string, authoritative func(tx *gorm.DB) *gorm.DB) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("post %d", postID)
			}
			return err
		}

		var count int64
		if err := authoritative(tx).Count(&count).Error; err != nil {
			return err
		}

		var stored int64
		switch column {
		case "shares_count":
			stored = post.SharesCount
		case "comments_count":
			stored = post.CommentsCount
		case "likes_count":
			stored = post.LikesCount
		}
		if stored == count {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update(column, count).Error
	})
	return changed, err
}

// ListByAuthors returns active public posts authored by the given accounts,
// newest first. Home feed query.
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []int64, page, limit int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author_id IN ? AND visibility = ? AND is_active = ?",
			authorIDs, models.VisibilityPublic, true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListPopular returns active public posts created since the cutoff, ordered
// by engagement score descending with recency as the tie-breaker.
func (r *PostRepository) ListPopular(ctx context.Context, since time.Time, page, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("visibility = ? AND is_active = ? AND created_at >= ?",
			models.VisibilityPublic, true, since).
		Order("(likes_count + comments_count + shares_count) DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListIDs returns all active post IDs, used by the reconciliation job.
func (r *PostRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("is_active = ?", true).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// recountShares derives shares_count from the share-post set inside the
// caller's transaction.
func recountShares(tx *gorm.DB, postID int64) error {
	shares := tx.Model(&models.Post{}).
		Select("count(*)").
		Where("original_post_id = ? AND is_active = ?", postID, true)
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("shares_count", shares).Error
}
