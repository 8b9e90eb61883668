package visibility

import (
	"context"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

// FollowChecker is the resolver's only external dependency.
type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error)
}

// Resolver decides whether a viewer may see a content item. It performs no
// mutation and is safe on every read path. viewerID 0 means anonymous.
//
//	visibility  anonymous  author  accepted follower  other
//	public      allow      allow   allow              allow
//	followers   deny       allow   allow              deny
//	private     deny       allow   deny               deny
type Resolver struct {
	follows FollowChecker
}

// NewResolver creates a visibility resolver.
func NewResolver(follows FollowChecker) *Resolver {
	return &Resolver{follows: follows}
}

// CanViewPost reports whether the viewer may see the post. Inactive posts
// are invisible to everyone, their author included; soft-deleted content
// reads as missing, not hidden.
func (r *Resolver) CanViewPost(ctx context.Context, viewerID int64, post *models.Post) (bool, error) {
	if post == nil || !post.IsActive {
		return false, nil
	}
	return r.canView(ctx, viewerID, post.AuthorID, post.Visibility)
}

// CanViewComment reports whether the viewer may see the comment. Comments
// inherit the parent post's audience.
func (r *Resolver) CanViewComment(ctx context.Context, viewerID int64, comment *models.Comment, parent *models.Post) (bool, error) {
	if comment == nil || !comment.IsActive {
		return false, nil
	}
	return r.CanViewPost(ctx, viewerID, parent)
}

func (r *Resolver) canView(ctx context.Context, viewerID, authorID int64, vis int16) (bool, error) {
	if vis == models.VisibilityPublic {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	if viewerID == authorID {
		return true, nil
	}

	switch vis {
	case models.VisibilityFollowers:
		following, err := r.follows.IsFollowing(ctx, viewerID, authorID)
		if err != nil {
			return false, errs.Internal(err)
		}
		return following, nil
	case models.VisibilityPrivate:
		return false, nil
	}
	return false, nil
}
