package graph

import (
	"context"
	"sort"
	"testing"

	"github.com/flocknet/flock/internal/errs"
	"github.com/flocknet/flock/internal/models"
)

type edgeKey struct {
	follower int64
	target   int64
}

// fakeEdgeStore mirrors the repository contract: conflict on a duplicate
// pair, counters recomputed from the edge set on every accepted-edge
// mutation.
type fakeEdgeStore struct {
	edges    map[edgeKey]*models.FollowEdge
	counters map[int64]*models.Account
}

func newFakeEdgeStore() *fakeEdgeStore {
	return &fakeEdgeStore{
		edges:    make(map[edgeKey]*models.FollowEdge),
		counters: make(map[int64]*models.Account),
	}
}

func (f *fakeEdgeStore) account(id int64) *models.Account {
	if a, ok := f.counters[id]; ok {
		return a
	}
	a := &models.Account{ID: id}
	f.counters[id] = a
	return a
}

func (f *fakeEdgeStore) recount(id int64) bool {
	var followers, following int64
	for k, e := range f.edges {
		if e.Status != models.FollowStatusAccepted {
			continue
		}
		if k.target == id {
			followers++
		}
		if k.follower == id {
			following++
		}
	}
	a := f.account(id)
	changed := a.FollowersCount != followers || a.FollowingCount != following
	a.FollowersCount = followers
	a.FollowingCount = following
	return changed
}

func (f *fakeEdgeStore) Get(ctx context.Context, followerID, targetID int64) (*models.FollowEdge, error) {
	return f.edges[edgeKey{followerID, targetID}], nil
}

func (f *fakeEdgeStore) Create(ctx context.Context, edge *models.FollowEdge) error {
	k := edgeKey{edge.FollowerID, edge.TargetID}
	if _, exists := f.edges[k]; exists {
		return errs.Conflict("edge %d->%d already exists", edge.FollowerID, edge.TargetID)
	}
	f.edges[k] = edge
	if edge.Status == models.FollowStatusAccepted {
		f.recount(edge.FollowerID)
		f.recount(edge.TargetID)
	}
	return nil
}

func (f *fakeEdgeStore) Accept(ctx context.Context, followerID, targetID int64) error {
	k := edgeKey{followerID, targetID}
	e, ok := f.edges[k]
	if !ok || e.Status != models.FollowStatusPending {
		return errs.NotFound("no pending request from %d to %d", followerID, targetID)
	}
	e.Status = models.FollowStatusAccepted
	f.recount(followerID)
	f.recount(targetID)
	return nil
}

func (f *fakeEdgeStore) Delete(ctx context.Context, followerID, targetID int64) (int16, error) {
	k := edgeKey{followerID, targetID}
	e, ok := f.edges[k]
	if !ok {
		return 0, errs.NotFound("no edge from %d to %d", followerID, targetID)
	}
	status := e.Status
	delete(f.edges, k)
	if status == models.FollowStatusAccepted {
		f.recount(followerID)
		f.recount(targetID)
	}
	return status, nil
}

func (f *fakeEdgeStore) IsFollowing(ctx context.Context, followerID, targetID int64) (bool, error) {
	e, ok := f.edges[edgeKey{followerID, targetID}]
	return ok && e.Status == models.FollowStatusAccepted, nil
}

func (f *fakeEdgeStore) HasPending(ctx context.Context, followerID, targetID int64) (bool, error) {
	e, ok := f.edges[edgeKey{followerID, targetID}]
	return ok && e.Status == models.FollowStatusPending, nil
}

func (f *fakeEdgeStore) ListFollowers(ctx context.Context, targetID int64, page, limit int) ([]*models.Account, error) {
	var out []*models.Account
	for k, e := range f.edges {
		if k.target == targetID && e.Status == models.FollowStatusAccepted {
			out = append(out, f.account(k.follower))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEdgeStore) ListFollowing(ctx context.Context, followerID int64, page, limit int) ([]*models.Account, error) {
	var out []*models.Account
	for k, e := range f.edges {
		if k.follower == followerID && e.Status == models.FollowStatusAccepted {
			out = append(out, f.account(k.target))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEdgeStore) AcceptedTargetIDs(ctx context.Context, followerID int64) ([]int64, error) {
	var ids []int64
	for k, e := range f.edges {
		if k.follower == followerID && e.Status == models.FollowStatusAccepted {
			ids = append(ids, k.target)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeEdgeStore) Recount(ctx context.Context, accountID int64) (bool, error) {
	return f.recount(accountID), nil
}

type fakeDirectory struct {
	accounts map[int64]*models.Account
}

func (f *fakeDirectory) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return f.accounts[id], nil
}

type followEvent struct {
	event string
	src   int64
	dst   int64
}

type fakeFanout struct {
	events []followEvent
}

func (f *fakeFanout) FollowRequested(ctx context.Context, srcID, dstID int64) error {
	f.events = append(f.events, followEvent{"follow_request", srcID, dstID})
	return nil
}

func (f *fakeFanout) Followed(ctx context.Context, srcID, dstID int64) error {
	f.events = append(f.events, followEvent{"follow", srcID, dstID})
	return nil
}

func (f *fakeFanout) FollowAccepted(ctx context.Context, ownerID, followerID int64) error {
	f.events = append(f.events, followEvent{"follow_accepted", ownerID, followerID})
	return nil
}

func newTestService() (*Service, *fakeEdgeStore, *fakeDirectory, *fakeFanout) {
	edges := newFakeEdgeStore()
	dir := &fakeDirectory{accounts: map[int64]*models.Account{
		1: {ID: 1, Name: "ada", IsActive: true},
		2: {ID: 2, Name: "bea", IsActive: true},
		3: {ID: 3, Name: "cal", IsActive: true, IsPrivate: true},
		4: {ID: 4, Name: "gone", IsActive: false},
	}}
	fanout := &fakeFanout{}
	return NewService(edges, dir, fanout), edges, dir, fanout
}

func TestRequestPublicTarget(t *testing.T) {
	svc, edges, _, fanout := newTestService()
	ctx := context.Background()

	status, err := svc.Request(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if status != "accepted" {
		t.Errorf("Request() status = %v, want accepted", status)
	}

	following, _ := svc.IsFollowing(ctx, 1, 2)
	if !following {
		t.Error("IsFollowing() = false after accepted follow")
	}
	if got := edges.account(2).FollowersCount; got != 1 {
		t.Errorf("target followers_count = %d, want 1", got)
	}
	if got := edges.account(1).FollowingCount; got != 1 {
		t.Errorf("follower following_count = %d, want 1", got)
	}
	if len(fanout.events) != 1 || fanout.events[0].event != "follow" {
		t.Errorf("fanout events = %v, want one follow", fanout.events)
	}
}

func TestRequestPrivateTargetNeedsAccept(t *testing.T) {
	svc, edges, _, fanout := newTestService()
	ctx := context.Background()

	status, err := svc.Request(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if status != "pending" {
		t.Errorf("Request() status = %v, want pending", status)
	}

	// Pending edges are invisible to IsFollowing and counters.
	if following, _ := svc.IsFollowing(ctx, 1, 3); following {
		t.Error("IsFollowing() = true for pending edge")
	}
	if got := edges.account(3).FollowersCount; got != 0 {
		t.Errorf("followers_count = %d before accept, want 0", got)
	}

	if err := svc.Accept(ctx, 3, 1); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if following, _ := svc.IsFollowing(ctx, 1, 3); !following {
		t.Error("IsFollowing() = false after accept")
	}
	if got := edges.account(3).FollowersCount; got != 1 {
		t.Errorf("followers_count = %d after accept, want 1", got)
	}

	want := []followEvent{{"follow_request", 1, 3}, {"follow_accepted", 3, 1}}
	if len(fanout.events) != len(want) {
		t.Fatalf("fanout events = %v, want %v", fanout.events, want)
	}
	for i := range want {
		if fanout.events[i] != want[i] {
			t.Errorf("fanout event[%d] = %v, want %v", i, fanout.events[i], want[i])
		}
	}
}

func TestRequestErrors(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		follower int64
		target   int64
		check    func(error) bool
		errName  string
	}{
		{"self follow", 1, 1, errs.IsConflict, "conflict"},
		{"missing target", 1, 99, errs.IsNotFound, "not found"},
		{"inactive target", 1, 4, errs.IsNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tt.follower, tt.target)
			if !tt.check(err) {
				t.Errorf("Request() error = %v, want %s", err, tt.errName)
			}
		})
	}
}

func TestRequestDuplicateConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 2); err != nil {
		t.Fatalf("first Request() error = %v", err)
	}
	_, err := svc.Request(ctx, 1, 2)
	if !errs.IsConflict(err) {
		t.Errorf("second Request() error = %v, want conflict", err)
	}
}

func TestRejectPendingRequest(t *testing.T) {
	svc, edges, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 3); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if err := svc.Reject(ctx, 3, 1); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	if pending, _ := edges.HasPending(ctx, 1, 3); pending {
		t.Error("pending edge survived Reject()")
	}
	// Rejecting an accepted edge is not a thing.
	if _, err := svc.Request(ctx, 1, 2); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if err := svc.Reject(ctx, 2, 1); !errs.IsNotFound(err) {
		t.Errorf("Reject() on accepted edge error = %v, want not found", err)
	}
}

func TestUnfollowRecountsCounters(t *testing.T) {
	svc, edges, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 2); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if err := svc.Unfollow(ctx, 1, 2); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}

	if got := edges.account(2).FollowersCount; got != 0 {
		t.Errorf("followers_count = %d after unfollow, want 0", got)
	}
	if got := edges.account(1).FollowingCount; got != 0 {
		t.Errorf("following_count = %d after unfollow, want 0", got)
	}
	if err := svc.Unfollow(ctx, 1, 2); !errs.IsNotFound(err) {
		t.Errorf("second Unfollow() error = %v, want not found", err)
	}
}

func TestUnfollowWithdrawsPendingRequest(t *testing.T) {
	svc, edges, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 3); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if err := svc.Unfollow(ctx, 1, 3); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	if pending, _ := edges.HasPending(ctx, 1, 3); pending {
		t.Error("pending edge survived withdrawal")
	}
}

func TestStatus(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 3); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	status, err := svc.Status(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.IsFollowing || !status.HasPendingRequest {
		t.Errorf("Status() = %+v, want pending only", status)
	}

	// Anonymous viewers have no relationship to anyone.
	status, err = svc.Status(ctx, 0, 3)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.IsFollowing || status.HasPendingRequest {
		t.Errorf("anonymous Status() = %+v, want empty", status)
	}
}

func TestAudienceIncludesSelf(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 2); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if _, err := svc.Request(ctx, 1, 3); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	// The pending edge to 3 must not contribute.
	audience, err := svc.Audience(ctx, 1)
	if err != nil {
		t.Fatalf("Audience() error = %v", err)
	}
	want := []int64{1, 2}
	if len(audience) != len(want) {
		t.Fatalf("Audience() = %v, want %v", audience, want)
	}
	for i := range want {
		if audience[i] != want[i] {
			t.Errorf("Audience()[%d] = %d, want %d", i, audience[i], want[i])
		}
	}
}

func TestReconcileCorrectsDrift(t *testing.T) {
	svc, edges, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Request(ctx, 1, 2); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	// Simulate out-of-band drift.
	edges.account(2).FollowersCount = 40

	if err := svc.Reconcile(ctx, 2); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := edges.account(2).FollowersCount; got != 1 {
		t.Errorf("followers_count = %d after reconcile, want 1", got)
	}
}

func TestIsFollowingAnonymous(t *testing.T) {
	svc, _, _, _ := newTestService()

	following, err := svc.IsFollowing(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if following {
		t.Error("IsFollowing(0, _) = true, want false")
	}
}
