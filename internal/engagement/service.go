package engagement

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/pkg/logging"
	"github.com/flocknet/flock/pkg/telemetry"
)

// MarkStore toggles engagement marks. Toggle must flip the mark and
// recompute the entity's likes_count from the mark set as one atomic unit,
// converging when a concurrent duplicate insert loses the race.
type MarkStore interface {
	Toggle(ctx context.Context, actorID int64, entityKind int16, entityID int64) (bool, int64, error)
}

// PostStore is the post persistence surface the ledger needs.
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	CreateShare(ctx context.Context, share *models.Post, originalID int64) error
}

// CommentStore is the comment persistence surface the ledger needs.
type CommentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
}

// Viewer authorizes reads before the ledger mutates engagement state.
type Viewer interface {
	CanViewPost(ctx context.Context, viewerID int64, post *models.Post) (bool, error)
	CanViewComment(ctx context.Context, viewerID int64, comment *models.Comment, parent *models.Post) (bool, error)
}

// FanoutSink receives the engagement events this service emits.
type FanoutSink interface {
	Liked(ctx context.Context, srcID, authorID int64, ref models.EntityRef) error
	Shared(ctx context.Context, srcID, originalAuthorID, originalPostID int64) error
}

// FeedInvalidator drops the cached feed pages a mutation staled.
type FeedInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
	InvalidatePopular(ctx context.Context)
}

// ToggleResult is the outcome of a like toggle.
type ToggleResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// Service owns like toggle state and share-repost accounting for posts and
// comments.
type Service struct {
	marks       MarkStore
	posts       PostStore
	comments    CommentStore
	viewer      Viewer
	fanout      FanoutSink
	invalidator FeedInvalidator
	logger      *zap.Logger
}

// NewService creates an engagement ledger service.
func NewService(marks MarkStore, posts PostStore, comments CommentStore, viewer Viewer, fanout FanoutSink, invalidator FeedInvalidator) *Service {
	return &Service{
		marks:       marks,
		posts:       posts,
		comments:    comments,
		viewer:      viewer,
		fanout:      fanout,
		invalidator: invalidator,
		logger:      logging.WithComponent("engagement"),
	}
}

// ToggleLike flips the actor's like on a post or comment. The liked
// transition emits a like notification unless the actor authored the
// entity; the unliked transition emits nothing.
func (s *Service) ToggleLike(ctx context.Context, actorID int64, entityKind int16, entityID int64) (*ToggleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "engagement.toggle_like")
	defer span.End()

	authorID, err := s.authorizeEntity(ctx, actorID, entityKind, entityID)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.marks.Toggle(ctx, actorID, entityKind, entityID)
	if err != nil {
		return nil, errs.Internal(err)
	}

	if liked && actorID != authorID {
		ref := models.EntityRef{Kind: entityKind, ID: entityID}
		if err := s.fanout.Liked(ctx, actorID, authorID, ref); err != nil {
			s.logger.Warn("like fan-out failed", zap.Error(err))
		}
	}

	s.invalidator.InvalidateUser(ctx, actorID)
	s.invalidator.InvalidatePopular(ctx)

	return &ToggleResult{Liked: liked, Count: count}, nil
}

// RecordShare creates a public share-repost of the original post and bumps
// its shares_count. Shares are append-only: repeated calls create
// additional share posts, each a new share event.
func (s *Service) RecordShare(ctx context.Context, actorID, postID int64, text string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "engagement.record_share")
	defer span.End()

	original, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return 0, errs.Internal(err)
	}
	if original == nil || !original.IsActive {
		return 0, errs.NotFound("post %d", postID)
	}

	allowed, err := s.viewer.CanViewPost(ctx, actorID, original)
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, errs.Forbidden("post %d is not visible to account %d", postID, actorID)
	}

	now := time.Now().UTC()
	share := &models.Post{
		AuthorID:   actorID,
		Body:       text,
		Visibility: models.VisibilityPublic,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	share.OriginalPostID.Int64 = postID
	share.OriginalPostID.Valid = true

	if err := s.posts.CreateShare(ctx, share, postID); err != nil {
		return 0, errs.Internal(err)
	}

	if actorID != original.AuthorID {
		if err := s.fanout.Shared(ctx, actorID, original.AuthorID, postID); err != nil {
			s.logger.Warn("share fan-out failed", zap.Error(err))
		}
	}

	s.invalidator.InvalidateUser(ctx, actorID)
	s.invalidator.InvalidatePopular(ctx)

	return share.ID, nil
}

// authorizeEntity resolves the liked entity, enforcing existence and
// visibility, and returns its author.
func (s *Service) authorizeEntity(ctx context.Context, actorID int64, entityKind int16, entityID int64) (int64, error) {
	switch entityKind {
	case models.EntityKindPost:
		post, err := s.posts.GetByID(ctx, entityID)
		if err != nil {
			return 0, errs.Internal(err)
		}
		if post == nil || !post.IsActive {
			return 0, errs.NotFound("post %d", entityID)
		}
		allowed, err := s.viewer.CanViewPost(ctx, actorID, post)
		if err != nil {
			return 0, err
		}
		if !allowed {
			return 0, errs.Forbidden("post %d is not visible to account %d", entityID, actorID)
		}
		return post.AuthorID, nil

	case models.EntityKindComment:
		comment, err := s.comments.GetByID(ctx, entityID)
		if err != nil {
			return 0, errs.Internal(err)
		}
		if comment == nil || !comment.IsActive {
			return 0, errs.NotFound("comment %d", entityID)
		}
		parent, err := s.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return 0, errs.Internal(err)
		}
		allowed, err := s.viewer.CanViewComment(ctx, actorID, comment, parent)
		if err != nil {
			return 0, err
		}
		if !allowed {
			return 0, errs.Forbidden("comment %d is not visible to account %d", entityID, actorID)
		}
		return comment.AuthorID, nil
	}
	return 0, errs.Validation("unknown entity kind %d", entityKind)
}
