package api

import (
	"time"

	"github.com/flocknet/flock/internal/models"
)

// AccountView is the public rendering of an account.
type AccountView struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	IsPrivate      bool   `json:"is_private"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// PostView is the public rendering of a post.
type PostView struct {
	ID             int64  `json:"id"`
	AuthorID       int64  `json:"author_id"`
	Body           string `json:"body"`
	Visibility     string `json:"visibility"`
	OriginalPostID int64  `json:"original_post_id,omitempty"`
	LikesCount     int64  `json:"likes_count"`
	CommentsCount  int64  `json:"comments_count"`
	SharesCount    int64  `json:"shares_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// CommentView is the public rendering of a comment.
type CommentView struct {
	ID              int64  `json:"id"`
	PostID          int64  `json:"post_id"`
	AuthorID        int64  `json:"author_id"`
	ParentCommentID int64  `json:"parent_comment_id,omitempty"`
	Body            string `json:"body"`
	LikesCount      int64  `json:"likes_count"`
	CreatedAt       string `json:"created_at"`
}

func renderAccount(a *models.Account) *AccountView {
	return &AccountView{
		ID:             a.ID,
		Name:           a.Name,
		IsPrivate:      a.IsPrivate,
		FollowersCount: a.FollowersCount,
		FollowingCount: a.FollowingCount,
	}
}

func renderAccounts(accounts []*models.Account) []*AccountView {
	views := make([]*AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, renderAccount(a))
	}
	return views
}

func renderPost(p *models.Post) *PostView {
	view := &PostView{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Body:          p.Body,
		Visibility:    models.VisibilityName(p.Visibility),
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		SharesCount:   p.SharesCount,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.OriginalPostID.Valid {
		view.OriginalPostID = p.OriginalPostID.Int64
	}
	return view
}

func renderComment(cm *models.Comment) *CommentView {
	view := &CommentView{
		ID:         cm.ID,
		PostID:     cm.PostID,
		AuthorID:   cm.AuthorID,
		Body:       cm.Body,
		LikesCount: cm.LikesCount,
		CreatedAt:  cm.CreatedAt.UTC().Format(time.RFC3339),
	}
	if cm.ParentCommentID.Valid {
		view.ParentCommentID = cm.ParentCommentID.Int64
	}
	return view
}

func renderComments(comments []*models.Comment) []*CommentView {
	views := make([]*CommentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, renderComment(cm))
	}
	return views
}
