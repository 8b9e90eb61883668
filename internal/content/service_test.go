package content

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

func isValidation(err error) bool {
	return errors.Is(err, errs.ErrValidation)
}

type fakePostStore struct {
	posts  map[int64]*models.Post
	nextID int64
}

func (f *fakePostStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostStore) Create(ctx context.Context, post *models.Post) error {
	f.nextID++
	post.ID = f.nextID
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostStore) Update(ctx context.Context, post *models.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostStore) SoftDelete(ctx context.Context, id int64) error {
	p, ok := f.posts[id]
	if !ok || !p.IsActive {
		return errs.NotFound("post %d", id)
	}
	p.IsActive = false
	if p.OriginalPostID.Valid {
		f.recountShares(p.OriginalPostID.Int64)
	}
	return nil
}

func (f *fakePostStore) recountShares(originalID int64) {
	var count int64
	for _, p := range f.posts {
		if p.IsActive && p.OriginalPostID.Valid && p.OriginalPostID.Int64 == originalID {
			count++
		}
	}
	if orig, ok := f.posts[originalID]; ok {
		orig.SharesCount = count
	}
}

type fakeCommentStore struct {
	comments map[int64]*models.Comment
	posts    *fakePostStore
	nextID   int64
}

func (f *fakeCommentStore) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	return f.comments[id], nil
}

func (f *fakeCommentStore) recount(postID int64) {
	var count int64
	for _, c := range f.comments {
		if c.PostID == postID && c.IsActive {
			count++
		}
	}
	if p, ok := f.posts.posts[postID]; ok {
		p.CommentsCount = count
	}
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	f.comments[comment.ID] = comment
	f.recount(comment.PostID)
	return nil
}

func (f *fakeCommentStore) SoftDelete(ctx context.Context, id, postID int64) error {
	c, ok := f.comments[id]
	if !ok {
		return errs.NotFound("comment %d", id)
	}
	c.IsActive = false
	f.recount(postID)
	return nil
}

func (f *fakeCommentStore) ListByPost(ctx context.Context, postID int64, page, limit int) ([]*models.Comment, error) {
	var out []*models.Comment
	for id := int64(1); id <= f.nextID; id++ {
		c, ok := f.comments[id]
		if ok && c.PostID == postID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	accounts map[string]*models.Account
}

func (f *fakeDirectory) GetByName(ctx context.Context, name string) (*models.Account, error) {
	return f.accounts[name], nil
}

// authorOnlyViewer allows public posts to everyone, other posts to their
// author only.
type authorOnlyViewer struct{}

func (authorOnlyViewer) CanViewPost(ctx context.Context, viewerID int64, post *models.Post) (bool, error) {
	if post == nil || !post.IsActive {
		return false, nil
	}
	return post.Visibility == models.VisibilityPublic || viewerID == post.AuthorID, nil
}

func (v authorOnlyViewer) CanViewComment(ctx context.Context, viewerID int64, comment *models.Comment, parent *models.Post) (bool, error) {
	if comment == nil || !comment.IsActive {
		return false, nil
	}
	return v.CanViewPost(ctx, viewerID, parent)
}

type contentEvent struct {
	event string
	src   int64
	dst   int64
}

type fakeSink struct {
	events []contentEvent
}

func (f *fakeSink) Commented(ctx context.Context, srcID, postAuthorID, postID int64) error {
	f.events = append(f.events, contentEvent{"comment", srcID, postAuthorID})
	return nil
}

func (f *fakeSink) Replied(ctx context.Context, srcID, parentAuthorID, commentID int64) error {
	f.events = append(f.events, contentEvent{"reply", srcID, parentAuthorID})
	return nil
}

func (f *fakeSink) Mentioned(ctx context.Context, srcID, mentionedID int64, ref models.EntityRef) error {
	f.events = append(f.events, contentEvent{"mention", srcID, mentionedID})
	return nil
}

type fakeInvalidator struct {
	users   []int64
	popular int
}

func (f *fakeInvalidator) InvalidateUser(ctx context.Context, userID int64) {
	f.users = append(f.users, userID)
}

func (f *fakeInvalidator) InvalidatePopular(ctx context.Context) {
	f.popular++
}

func newTestContent() (*Service, *fakePostStore, *fakeCommentStore, *fakeSink, *fakeInvalidator) {
	posts := &fakePostStore{posts: make(map[int64]*models.Post)}
	comments := &fakeCommentStore{comments: make(map[int64]*models.Comment), posts: posts}
	dir := &fakeDirectory{accounts: map[string]*models.Account{
		"ada":  {ID: 1, Name: "ada", IsActive: true},
		"bea":  {ID: 2, Name: "bea", IsActive: true},
		"gone": {ID: 4, Name: "gone", IsActive: false},
	}}
	sink := &fakeSink{}
	inv := &fakeInvalidator{}
	svc := NewService(posts, comments, dir, authorOnlyViewer{}, sink, inv)
	return svc, posts, comments, sink, inv
}

func TestCreatePost(t *testing.T) {
	svc, posts, _, _, inv := newTestContent()

	post, err := svc.CreatePost(context.Background(), 1, "hello world", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if post.ID == 0 || posts.posts[post.ID] == nil {
		t.Fatal("post was not persisted")
	}
	if post.Visibility != models.VisibilityPublic || !post.IsActive {
		t.Errorf("post = %+v, want active public", post)
	}
	if len(inv.users) != 1 || inv.users[0] != 1 || inv.popular != 1 {
		t.Errorf("invalidations = users %v popular %d, want own feed and popular", inv.users, inv.popular)
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _, _, _ := newTestContent()
	ctx := context.Background()

	tests := []struct {
		name       string
		body       string
		visibility string
	}{
		{"empty body", "", "public"},
		{"bad visibility", "hi", "friends"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, 1, tt.body, tt.visibility)
			if !isValidation(err) {
				t.Errorf("CreatePost() error = %v, want validation", err)
			}
		})
	}
}

func TestCreatePostMentions(t *testing.T) {
	svc, _, _, sink, _ := newTestContent()

	if _, err := svc.CreatePost(context.Background(), 1, "hey @bea and @bea again, also @nobody and @gone and @ada", "public"); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	// bea once despite the repeat; unknown and inactive names skipped;
	// self-mention suppressed downstream but still emitted here.
	var mentions []contentEvent
	for _, e := range sink.events {
		if e.event == "mention" {
			mentions = append(mentions, e)
		}
	}
	if len(mentions) != 2 {
		t.Fatalf("mention events = %v, want bea and ada", mentions)
	}
	if mentions[0].dst != 2 {
		t.Errorf("first mention dst = %d, want 2", mentions[0].dst)
	}
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	svc, _, _, _, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "original", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	updated, err := svc.UpdatePost(ctx, 1, post.ID, "edited")
	if err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("body = %q, want edited", updated.Body)
	}

	if _, err := svc.UpdatePost(ctx, 2, post.ID, "hijacked"); !errs.IsForbidden(err) {
		t.Errorf("UpdatePost() by stranger error = %v, want forbidden", err)
	}
}

func TestDeletePost(t *testing.T) {
	svc, posts, _, _, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "doomed", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if err := svc.DeletePost(ctx, 2, post.ID); !errs.IsForbidden(err) {
		t.Errorf("DeletePost() by stranger error = %v, want forbidden", err)
	}
	if err := svc.DeletePost(ctx, 1, post.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}
	if posts.posts[post.ID].IsActive {
		t.Error("post still active after delete")
	}

	// Soft-deleted content reads as missing.
	if _, err := svc.GetPost(ctx, 1, post.ID); !errs.IsNotFound(err) {
		t.Errorf("GetPost() after delete error = %v, want not found", err)
	}
	if err := svc.DeletePost(ctx, 1, post.ID); !errs.IsNotFound(err) {
		t.Errorf("second DeletePost() error = %v, want not found", err)
	}
}

func TestDeleteShareRecountsOriginal(t *testing.T) {
	svc, posts, _, _, _ := newTestContent()
	ctx := context.Background()

	original, err := svc.CreatePost(ctx, 1, "worth sharing", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	share := &models.Post{
		AuthorID:       2,
		Body:           "look at this",
		Visibility:     models.VisibilityPublic,
		OriginalPostID: sql.NullInt64{Int64: original.ID, Valid: true},
		IsActive:       true,
	}
	if err := posts.Create(ctx, share); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	posts.recountShares(original.ID)
	if got := posts.posts[original.ID].SharesCount; got != 1 {
		t.Fatalf("SharesCount after share = %d, want 1", got)
	}

	if err := svc.DeletePost(ctx, 2, share.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}
	if got := posts.posts[original.ID].SharesCount; got != 0 {
		t.Errorf("SharesCount after deleting share = %d, want 0", got)
	}
}

func TestGetPostVisibility(t *testing.T) {
	svc, _, _, _, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "mine only", "private")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if _, err := svc.GetPost(ctx, 1, post.ID); err != nil {
		t.Errorf("GetPost() by author error = %v", err)
	}
	if _, err := svc.GetPost(ctx, 2, post.ID); !errs.IsForbidden(err) {
		t.Errorf("GetPost() by stranger error = %v, want forbidden", err)
	}
}

func TestCreateComment(t *testing.T) {
	svc, posts, _, sink, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "discuss", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	comment, err := svc.CreateComment(ctx, 2, post.ID, nil, "first!")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.ID == 0 || comment.PostID != post.ID {
		t.Errorf("comment = %+v, want persisted on post %d", comment, post.ID)
	}
	if got := posts.posts[post.ID].CommentsCount; got != 1 {
		t.Errorf("comments_count = %d, want 1", got)
	}

	var last contentEvent
	for _, e := range sink.events {
		if e.event == "comment" {
			last = e
		}
	}
	if last != (contentEvent{"comment", 2, 1}) {
		t.Errorf("comment event = %v, want from 2 to post author 1", last)
	}
}

func TestCreateReplyNotifiesParentAuthor(t *testing.T) {
	svc, _, _, sink, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "discuss", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	parent, err := svc.CreateComment(ctx, 2, post.ID, nil, "first!")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	sink.events = nil

	reply, err := svc.CreateComment(ctx, 3, post.ID, &parent.ID, "agreed")
	if err != nil {
		t.Fatalf("reply CreateComment() error = %v", err)
	}
	if !reply.ParentCommentID.Valid || reply.ParentCommentID.Int64 != parent.ID {
		t.Errorf("reply parent = %+v, want %d", reply.ParentCommentID, parent.ID)
	}

	// Reply to the parent comment's author plus a comment event for the
	// distinct post author.
	want := []contentEvent{{"reply", 3, 2}, {"comment", 3, 1}}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, sink.events[i], want[i])
		}
	}
}

func TestCreateCommentErrors(t *testing.T) {
	svc, _, _, _, _ := newTestContent()
	ctx := context.Background()

	hidden, err := svc.CreatePost(ctx, 1, "secret", "private")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	open, err := svc.CreatePost(ctx, 1, "open", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	other, err := svc.CreatePost(ctx, 1, "other", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	crossParent, err := svc.CreateComment(ctx, 2, other.ID, nil, "elsewhere")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if _, err := svc.CreateComment(ctx, 2, hidden.ID, nil, "let me in"); !errs.IsForbidden(err) {
		t.Errorf("comment on invisible post error = %v, want forbidden", err)
	}
	if _, err := svc.CreateComment(ctx, 2, 999, nil, "void"); !errs.IsNotFound(err) {
		t.Errorf("comment on missing post error = %v, want not found", err)
	}
	if _, err := svc.CreateComment(ctx, 2, open.ID, nil, ""); !isValidation(err) {
		t.Errorf("empty comment error = %v, want validation", err)
	}
	missing := int64(999)
	if _, err := svc.CreateComment(ctx, 2, open.ID, &missing, "orphan"); !errs.IsNotFound(err) {
		t.Errorf("reply to missing parent error = %v, want not found", err)
	}
	if _, err := svc.CreateComment(ctx, 2, open.ID, &crossParent.ID, "wrong thread"); !isValidation(err) {
		t.Errorf("reply across posts error = %v, want validation", err)
	}
}

func TestDeleteComment(t *testing.T) {
	svc, posts, comments, _, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "discuss", "public")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	comment, err := svc.CreateComment(ctx, 2, post.ID, nil, "remove me")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if err := svc.DeleteComment(ctx, 3, comment.ID); !errs.IsForbidden(err) {
		t.Errorf("DeleteComment() by stranger error = %v, want forbidden", err)
	}
	// The post author may moderate comments on their post.
	if err := svc.DeleteComment(ctx, 1, comment.ID); err != nil {
		t.Fatalf("DeleteComment() by post author error = %v", err)
	}
	if comments.comments[comment.ID].IsActive {
		t.Error("comment still active after delete")
	}
	if got := posts.posts[post.ID].CommentsCount; got != 0 {
		t.Errorf("comments_count = %d after delete, want 0", got)
	}
}

func TestListComments(t *testing.T) {
	svc, _, _, _, _ := newTestContent()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, 1, "discuss", "private")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := svc.CreateComment(ctx, 1, post.ID, nil, "note to self"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	got, err := svc.ListComments(ctx, 1, post.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("ListComments() returned %d comments, want 1", len(got))
	}

	if _, err := svc.ListComments(ctx, 2, post.ID, 1, 20); !errs.IsForbidden(err) {
		t.Errorf("ListComments() by stranger error = %v, want forbidden", err)
	}
}

func TestMentionPattern(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{"single", "hi @ada", []string{"ada"}},
		{"multiple", "@ada meet @bea", []string{"ada", "bea"}},
		{"punctuation", "thanks @ada!", []string{"ada"}},
		{"too short", "a@b @x", nil},
		{"none", "plain text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range mentionPattern.FindAllStringSubmatch(tt.body, -1) {
				got = append(got, m[1])
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("matches = %v, want %v", got, tt.expected)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

