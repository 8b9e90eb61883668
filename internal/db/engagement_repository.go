package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/models"
)

// EngagementRepository provides engagement-mark database operations. The
// composite primary key on (actor, entity_kind, entity_id) is the
// concurrency guard: a concurrent duplicate insert surfaces as a key
// conflict and converges to a single mark.
type EngagementRepository struct {
	*Repository
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(repo *Repository) *EngagementRepository {
	return &EngagementRepository{Repository: repo}
}

// Toggle flips the actor's mark on the entity and recounts the entity's
// likes_count from the mark set, all in one transaction. Returns the
// resulting liked state and the recomputed count. A duplicate-key conflict
// on insert means a concurrent call already produced the mark; the toggle
// converges rather than failing.
func (r *EngagementRepository) Toggle(ctx context.Context, actorID int64, entityKind int16, entityID int64) (bool, int64, error) {
	var liked bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("actor_id = ? AND entity_kind = ? AND entity_id = ?",
			actorID, entityKind, entityID).
			Delete(&models.EngagementMark{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = false
		} else {
			mark := &models.EngagementMark{
				ActorID:    actorID,
				EntityKind: entityKind,
				EntityID:   entityID,
				CreatedAt:  time.Now().UTC(),
			}
			if err := tx.Create(mark).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			liked = true
		}

		if err := tx.Model(&models.EngagementMark{}).
			Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
			Count(&count).Error; err != nil {
			return err
		}
		return writeLikesCount(tx, entityKind, entityID, count)
	})
	return liked, count, err
}

// HasMark reports whether the actor has a mark on the entity.
func (r *EngagementRepository) HasMark(ctx context.Context, actorID int64, entityKind int16, entityID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EngagementMark{}).
		Where("actor_id = ? AND entity_kind = ? AND entity_id = ?",
			actorID, entityKind, entityID).
		Count(&count).Error
	return count > 0, err
}

// CountMarks returns the authoritative mark count for an entity.
func (r *EngagementRepository) CountMarks(ctx context.Context, entityKind int16, entityID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EngagementMark{}).
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Count(&count).Error
	return count, err
}

// writeLikesCount stores the recomputed count on the referenced entity.
// The kind is matched before dereferencing the id.
func writeLikesCount(tx *gorm.DB, entityKind int16, entityID, count int64) error {
	switch entityKind {
	case models.EntityKindPost:
		return tx.Model(&models.Post{}).
			Where("id = ?", entityID).
			Update("likes_count", count).Error
	case models.EntityKindComment:
		return tx.Model(&models.Comment{}).
			Where("id = ?", entityID).
			Update("likes_count", count).Error
	}
	return fmt.Errorf("unknown entity kind: %d", entityKind)
}
