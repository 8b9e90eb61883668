package content

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/pkg/logging"
	"github.com/flocknet/flock/pkg/telemetry"
)

// PostStore is the post persistence surface.
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, id int64) error
}

// CommentStore is the comment persistence surface.
type CommentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, id, postID int64) error
	ListByPost(ctx context.Context, postID int64, page, limit int) ([]*models.Comment, error)
}

// Directory resolves account names for mention fan-out.
type Directory interface {
	GetByName(ctx context.Context, name string) (*models.Account, error)
}

// Viewer authorizes reads.
type Viewer interface {
	CanViewPost(ctx context.Context, viewerID int64, post *models.Post) (bool, error)
	CanViewComment(ctx context.Context, viewerID int64, comment *models.Comment, parent *models.Post) (bool, error)
}

// FanoutSink receives the comment and mention events this service emits.
type FanoutSink interface {
	Commented(ctx context.Context, srcID, postAuthorID, postID int64) error
	Replied(ctx context.Context, srcID, parentAuthorID, commentID int64) error
	Mentioned(ctx context.Context, srcID, mentionedID int64, ref models.EntityRef) error
}

// FeedInvalidator drops the cached feed pages a mutation staled.
type FeedInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
	InvalidatePopular(ctx context.Context)
}

var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_]{2,32})`)

// Service owns post and comment lifecycle: the mutations that trigger
// fan-out and cache invalidation.
type Service struct {
	posts       PostStore
	comments    CommentStore
	directory   Directory
	viewer      Viewer
	fanout      FanoutSink
	invalidator FeedInvalidator
	logger      *zap.Logger
}

// NewService creates a content service.
func NewService(posts PostStore, comments CommentStore, directory Directory, viewer Viewer, fanout FanoutSink, invalidator FeedInvalidator) *Service {
	return &Service{
		posts:       posts,
		comments:    comments,
		directory:   directory,
		viewer:      viewer,
		fanout:      fanout,
		invalidator: invalidator,
		logger:      logging.WithComponent("content"),
	}
}

// CreatePost creates a post and fans out any mentions in its body.
func (s *Service) CreatePost(ctx context.Context, authorID int64, body, visibility string) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "content.create_post")
	defer span.End()

	if body == "" {
		return nil, errs.Validation("post body must not be empty")
	}
	vis, ok := models.ParseVisibility(visibility)
	if !ok {
		return nil, errs.Validation("unknown visibility %q", visibility)
	}

	now := time.Now().UTC()
	post := &models.Post{
		AuthorID:   authorID,
		Body:       body,
		Visibility: vis,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, errs.Internal(err)
	}

	s.fanOutMentions(ctx, authorID, body, models.EntityRef{Kind: models.EntityKindPost, ID: post.ID})
	s.invalidator.InvalidateUser(ctx, authorID)
	s.invalidator.InvalidatePopular(ctx)

	return post, nil
}

// UpdatePost replaces a post's body. Author only.
func (s *Service) UpdatePost(ctx context.Context, actorID, postID int64, body string) (*models.Post, error) {
	if body == "" {
		return nil, errs.Validation("post body must not be empty")
	}
	post, err := s.activePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, errs.Forbidden("account %d does not own post %d", actorID, postID)
	}

	post.Body = body
	post.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, errs.Internal(err)
	}

	s.invalidator.InvalidateUser(ctx, actorID)
	s.invalidator.InvalidatePopular(ctx)
	return post, nil
}

// DeletePost soft-deletes a post. Author only.
func (s *Service) DeletePost(ctx context.Context, actorID, postID int64) error {
	post, err := s.activePost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return errs.Forbidden("account %d does not own post %d", actorID, postID)
	}
	if err := s.posts.SoftDelete(ctx, postID); err != nil {
		return err
	}

	s.invalidator.InvalidateUser(ctx, actorID)
	s.invalidator.InvalidatePopular(ctx)
	return nil
}

// GetPost returns a post the viewer is allowed to see.
func (s *Service) GetPost(ctx context.Context, viewerID, postID int64) (*models.Post, error) {
	post, err := s.activePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.viewer.CanViewPost(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.Forbidden("post %d is not visible to account %d", postID, viewerID)
	}
	return post, nil
}

// CreateComment adds a comment (or a reply when parentCommentID is set) to
// a post the author can see, and fans out comment/reply/mention events.
func (s *Service) CreateComment(ctx context.Context, authorID, postID int64, parentCommentID *int64, body string) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "content.create_comment")
	defer span.End()

	if body == "" {
		return nil, errs.Validation("comment body must not be empty")
	}
	post, err := s.activePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.viewer.CanViewPost(ctx, authorID, post)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.Forbidden("post %d is not visible to account %d", postID, authorID)
	}

	var parent *models.Comment
	if parentCommentID != nil {
		parent, err = s.comments.GetByID(ctx, *parentCommentID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if parent == nil || !parent.IsActive {
			return nil, errs.NotFound("comment %d", *parentCommentID)
		}
		if parent.PostID != postID {
			return nil, errs.Validation("parent comment %d belongs to another post", *parentCommentID)
		}
	}

	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if parentCommentID != nil {
		comment.ParentCommentID.Int64 = *parentCommentID
		comment.ParentCommentID.Valid = true
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errs.Internal(err)
	}

	// A reply notifies the parent comment's author; the post author is
	// notified as well when distinct. Self-suppression happens in the
	// fan-out itself.
	if parent != nil {
		s.emit(s.fanout.Replied(ctx, authorID, parent.AuthorID, comment.ID))
		if post.AuthorID != parent.AuthorID {
			s.emit(s.fanout.Commented(ctx, authorID, post.AuthorID, postID))
		}
	} else {
		s.emit(s.fanout.Commented(ctx, authorID, post.AuthorID, postID))
	}

	s.fanOutMentions(ctx, authorID, body, models.EntityRef{Kind: models.EntityKindComment, ID: comment.ID})
	s.invalidator.InvalidateUser(ctx, authorID)
	s.invalidator.InvalidatePopular(ctx)

	return comment, nil
}

// DeleteComment soft-deletes a comment. Allowed for the comment author and
// the post author.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return errs.Internal(err)
	}
	if comment == nil || !comment.IsActive {
		return errs.NotFound("comment %d", commentID)
	}

	if comment.AuthorID != actorID {
		post, err := s.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return errs.Internal(err)
		}
		if post == nil || post.AuthorID != actorID {
			return errs.Forbidden("account %d may not delete comment %d", actorID, commentID)
		}
	}

	if err := s.comments.SoftDelete(ctx, commentID, comment.PostID); err != nil {
		return err
	}

	s.invalidator.InvalidateUser(ctx, actorID)
	s.invalidator.InvalidatePopular(ctx)
	return nil
}

// ListComments returns one page of a post's comments, oldest first, for a
// viewer allowed to see the post.
func (s *Service) ListComments(ctx context.Context, viewerID, postID int64, page, limit int) ([]*models.Comment, error) {
	post, err := s.activePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.viewer.CanViewPost(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.Forbidden("post %d is not visible to account %d", postID, viewerID)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.comments.ListByPost(ctx, postID, page, limit)
}

func (s *Service) activePost(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if post == nil || !post.IsActive {
		return nil, errs.NotFound("post %d", postID)
	}
	return post, nil
}

// fanOutMentions notifies every distinct account @-mentioned in a body.
// Unknown names are ignored.
func (s *Service) fanOutMentions(ctx context.Context, srcID int64, body string, ref models.EntityRef) {
	seen := make(map[string]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(body, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		acc, err := s.directory.GetByName(ctx, name)
		if err != nil {
			s.logger.Warn("mention lookup failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if acc == nil || !acc.IsActive {
			continue
		}
		s.emit(s.fanout.Mentioned(ctx, srcID, acc.ID, ref))
	}
}

func (s *Service) emit(err error) {
	if err != nil {
		s.logger.Warn("fan-out failed", zap.Error(err))
	}
}
