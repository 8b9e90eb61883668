package graph

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/pkg/logging"
	"github.com/flocknet/flock/pkg/telemetry"
)

// EdgeStore is the follow-edge persistence surface. Implementations must
// reject a duplicate pair create with errs.ErrConflict and recount both
// accounts' counters from the accepted-edge set whenever an accepted edge
// is created, accepted, or deleted.
type EdgeStore interface {
	Get(ctx context.Context, followerID, targetID int64) (*models.FollowEdge, error)
	Create(ctx context.Context, edge *models.FollowEdge) error
	Accept(ctx context.Context, followerID, targetID int64) error
	Delete(ctx context.Context, followerID, targetID int64) (int16, error)
	IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error)
	HasPending(ctx context.Context, followerID, targetID int64) (bool, error)
	ListFollowers(ctx context.Context, targetID int64, page, limit int) ([]*models.Account, error)
	ListFollowing(ctx context.Context, followerID int64, page, limit int) ([]*models.Account, error)
	AcceptedTargetIDs(ctx context.Context, followerID int64) ([]int64, error)
	Recount(ctx context.Context, accountID int64) (bool, error)
}

// Directory is the read-only identity lookup the engine consumes but never
// owns.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

// FanoutSink receives the follow events this service emits.
type FanoutSink interface {
	FollowRequested(ctx context.Context, srcID, dstID int64) error
	Followed(ctx context.Context, srcID, dstID int64) error
	FollowAccepted(ctx context.Context, ownerID, followerID int64) error
}

// FollowStatus is the result of a follow-status query.
type FollowStatus struct {
	IsFollowing       bool `json:"is_following"`
	HasPendingRequest bool `json:"has_pending_request"`
}

// Service owns the follow-edge lifecycle and the authoritative count
// reconciliation for followers/following.
type Service struct {
	edges     EdgeStore
	directory Directory
	fanout    FanoutSink
	logger    *zap.Logger
}

// NewService creates a social graph service.
func NewService(edges EdgeStore, directory Directory, fanout FanoutSink) *Service {
	return &Service{
		edges:     edges,
		directory: directory,
		fanout:    fanout,
		logger:    logging.WithComponent("graph"),
	}
}

// Request creates a follow edge from follower to target. A private target
// yields a pending request; a public target is followed immediately.
// Returns the resulting edge status name.
func (s *Service) Request(ctx context.Context, followerID, targetID int64) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "graph.request")
	defer span.End()

	if followerID == targetID {
		return "", errs.Conflict("cannot follow yourself")
	}

	target, err := s.directory.GetByID(ctx, targetID)
	if err != nil {
		return "", errs.Internal(err)
	}
	if target == nil || !target.IsActive {
		return "", errs.NotFound("account %d", targetID)
	}

	status := models.FollowStatusAccepted
	if target.IsPrivate {
		status = models.FollowStatusPending
	}

	edge := &models.FollowEdge{
		FollowerID: followerID,
		TargetID:   targetID,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.edges.Create(ctx, edge); err != nil {
		return "", err
	}

	if status == models.FollowStatusPending {
		s.emit(ctx, "follow_request", s.fanout.FollowRequested(ctx, followerID, targetID))
	} else {
		s.emit(ctx, "follow", s.fanout.Followed(ctx, followerID, targetID))
	}

	return models.FollowStatusName(status), nil
}

// Accept transitions a pending request aimed at ownerID to accepted and
// notifies the original follower.
func (s *Service) Accept(ctx context.Context, ownerID, followerID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "graph.accept")
	defer span.End()

	if err := s.edges.Accept(ctx, followerID, ownerID); err != nil {
		return err
	}
	s.emit(ctx, "follow", s.fanout.FollowAccepted(ctx, ownerID, followerID))
	return nil
}

// Reject deletes a pending request aimed at ownerID. No counter changes.
func (s *Service) Reject(ctx context.Context, ownerID, followerID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "graph.reject")
	defer span.End()

	edge, err := s.edges.Get(ctx, followerID, ownerID)
	if err != nil {
		return errs.Internal(err)
	}
	if edge == nil || edge.Status != models.FollowStatusPending {
		return errs.NotFound("no pending request from %d to %d", followerID, ownerID)
	}
	_, err = s.edges.Delete(ctx, followerID, ownerID)
	return err
}

// Unfollow deletes the edge from follower to target regardless of status.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "graph.unfollow")
	defer span.End()

	_, err := s.edges.Delete(ctx, followerID, targetID)
	return err
}

// IsFollowing reports whether an accepted edge exists. An absent viewer
// (id 0) is never following anyone.
func (s *Service) IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	return s.edges.IsFollowing(ctx, followerID, targetID)
}

// Status reports the viewer's relationship to the target.
func (s *Service) Status(ctx context.Context, viewerID, targetID int64) (*FollowStatus, error) {
	if viewerID == 0 {
		return &FollowStatus{}, nil
	}
	following, err := s.edges.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	pending, err := s.edges.HasPending(ctx, viewerID, targetID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &FollowStatus{IsFollowing: following, HasPendingRequest: pending}, nil
}

// ListFollowers returns the accepted followers of an account, newest first.
func (s *Service) ListFollowers(ctx context.Context, targetID int64, page, limit int) ([]*models.Account, error) {
	page, limit = normalizePage(page, limit)
	return s.edges.ListFollowers(ctx, targetID, page, limit)
}

// ListFollowing returns the accounts an account follows, newest first.
func (s *Service) ListFollowing(ctx context.Context, followerID int64, page, limit int) ([]*models.Account, error) {
	page, limit = normalizePage(page, limit)
	return s.edges.ListFollowing(ctx, followerID, page, limit)
}

// Audience returns the home-feed audience of a user: the user plus every
// account they follow with an accepted edge.
func (s *Service) Audience(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.edges.AcceptedTargetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]int64{userID}, ids...), nil
}

// Reconcile recomputes an account's counters from the authoritative edge
// set. Drift is corrected, never left standing, and logged at Warn.
func (s *Service) Reconcile(ctx context.Context, accountID int64) error {
	changed, err := s.edges.Recount(ctx, accountID)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Warn("follow counter drift corrected",
			zap.Int64("account_id", accountID))
	}
	return nil
}

// emit logs a failed fan-out without failing the mutation that caused it;
// the notification record is derived state.
func (s *Service) emit(ctx context.Context, event string, err error) {
	if err != nil {
		s.logger.Warn("fan-out failed",
			zap.String("event", event),
			zap.Error(err))
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
