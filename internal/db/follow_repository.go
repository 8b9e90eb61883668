package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

// FollowRepository provides follow-edge database operations. Counter
// maintenance is never increment-in-place: every edge mutation that touches
// an accepted edge recomputes both accounts' counters from the edge set
// inside the same transaction.
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Get retrieves an edge by its pair, nil when absent.
func (r *FollowRepository) Get(ctx context.Context, followerID, targetID int64) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND target_id = ?", followerID, targetID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Create inserts a new edge. The composite primary key rejects a concurrent
// duplicate, surfaced as errs.ErrConflict. When the edge is created in the
// accepted state both accounts' counters are recounted in the same
// transaction.
func (r *FollowRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("edge %d->%d already exists", edge.FollowerID, edge.TargetID)
			}
			return err
		}
		if edge.Status == models.FollowStatusAccepted {
			if err := recountFollowCounters(tx, edge.FollowerID); err != nil {
				return err
			}
			if err := recountFollowCounters(tx, edge.TargetID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Accept transitions a pending edge to accepted and recounts both accounts.
// Returns errs.ErrNotFound when no pending edge exists for the pair.
func (r *FollowRepository) Accept(ctx context.Context, followerID, targetID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FollowEdge{}).
			Where("follower_id = ? AND target_id = ? AND status = ?",
				followerID, targetID, models.FollowStatusPending).
			Update("status", models.FollowStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("no pending request from %d to %d", followerID, targetID)
		}
		if err := recountFollowCounters(tx, followerID); err != nil {
			return err
		}
		return recountFollowCounters(tx, targetID)
	})
}

// Delete removes an edge regardless of status and returns the status it had.
// An accepted edge triggers a recount of both accounts. Returns
// errs.ErrNotFound when the edge does not exist.
func (r *FollowRepository) Delete(ctx context.Context, followerID, targetID int64) (int16, error) {
	var status int16
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.FollowEdge
		err := tx.Where("follower_id = ? AND target_id = ?", followerID, targetID).
			First(&edge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("no edge from %d to %d", followerID, targetID)
		}
		if err != nil {
			return err
		}
		status = edge.Status

		if err := tx.Where("follower_id = ? AND target_id = ?", followerID, targetID).
			Delete(&models.FollowEdge{}).Error; err != nil {
			return err
		}

		if status == models.FollowStatusAccepted {
			if err := recountFollowCounters(tx, followerID); err != nil {
				return err
			}
			return recountFollowCounters(tx, targetID)
		}
		return nil
	})
	return status, err
}

// IsFollowing reports whether an accepted edge exists for the pair.
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ? AND target_id = ? AND status = ?",
			followerID, targetID, models.FollowStatusAccepted).
		Count(&count).Error
	return count > 0, err
}

// HasPending reports whether a pending request exists for the pair.
func (r *FollowRepository) HasPending(ctx context.Context, followerID, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ? AND target_id = ? AND status = ?",
			followerID, targetID, models.FollowStatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListFollowers returns the accounts with an accepted edge targeting
// targetID, newest edge first.
func (r *FollowRepository) ListFollowers(ctx context.Context, targetID int64, page, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Joins("JOIN flock_follows ON flock_follows.follower_id = flock_accounts.id").
		Where("flock_follows.target_id = ? AND flock_follows.status = ?",
			targetID, models.FollowStatusAccepted).
		Order("flock_follows.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}

// ListFollowing returns the accounts the follower has an accepted edge to,
// newest edge first.
func (r *FollowRepository) ListFollowing(ctx context.Context, followerID int64, page, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Joins("JOIN flock_follows ON flock_follows.target_id = flock_accounts.id").
		Where("flock_follows.follower_id = ? AND flock_follows.status = ?",
			followerID, models.FollowStatusAccepted).
		Order("flock_follows.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}

// AcceptedTargetIDs returns the ids of accounts followerID follows with an
// accepted edge. Feed audience query.
func (r *FollowRepository) AcceptedTargetIDs(ctx context.Context, followerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ? AND status = ?", followerID, models.FollowStatusAccepted).
		Pluck("target_id", &ids).Error
	return ids, err
}

// Recount recomputes both counters of an account from the authoritative
// edge set and reports whether either stored value had drifted.
func (r *FollowRepository) Recount(ctx context.Context, accountID int64) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("account %d", accountID)
			}
			return err
		}

		var followers, following int64
		if err := tx.Model(&models.FollowEdge{}).
			Where("target_id = ? AND status = ?", accountID, models.FollowStatusAccepted).
			Count(&followers).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FollowEdge{}).
			Where("follower_id = ? AND status = ?", accountID, models.FollowStatusAccepted).
			Count(&following).Error; err != nil {
			return err
		}

		if account.FollowersCount == followers && account.FollowingCount == following {
			return nil
		}
		changed = true
		return tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			Updates(map[string]interface{}{
				"followers_count": followers,
				"following_count": following,
			}).Error
	})
	return changed, err
}

// recountFollowCounters derives both counters of an account from the edge
// set inside the caller's transaction.
func recountFollowCounters(tx *gorm.DB, accountID int64) error {
	followers := tx.Model(&models.FollowEdge{}).
		Select("count(*)").
		Where("target_id = ? AND status = ?", accountID, models.FollowStatusAccepted)
	following := tx.Model(&models.FollowEdge{}).
		Select("count(*)").
		Where("follower_id = ? AND status = ?", accountID, models.FollowStatusAccepted)
	return tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"followers_count": followers,
			"following_count": following,
		}).Error
}
