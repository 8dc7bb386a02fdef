package feed

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/qepting91/devfeed/internal/collector"
	"github.com/qepting91/devfeed/internal/domain"
)

func TestToggleLike_Unauthenticated_NoWriteAndRedirect(t *testing.T) {
	fc := &fakeClient{
		list: func(context.Context) ([]domain.Post, error) { return []domain.Post{post("1")}, nil },
		auth: func(context.Context) (bool, error) { return false, nil },
	}
	rec := &recorder{}
	s := newTestSession(fc, rec)
	ctx := context.Background()
	_ = s.LoadFeed(ctx)
	before := s.Snapshot()

	err := s.ToggleLike(ctx, "1")
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if n := fc.count("like:1"); n != 0 {
		t.Fatalf("like requests = %d, want 0", n)
	}
	if got := rec.Nav(); !reflect.DeepEqual(got, []string{"login"}) {
		t.Fatalf("nav = %v, want [login]", got)
	}
	if got := rec.Notices(); !reflect.DeepEqual(got, []string{"Please log in first"}) {
		t.Fatalf("notices = %v", got)
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatal("snapshot changed")
	}
}

func TestEnsureAuthenticated_FailsClosed(t *testing.T) {
	fc := &fakeClient{auth: func(context.Context) (bool, error) { return true, errDown }}
	rec := &recorder{}
	s := newTestSession(fc, rec)

	if s.EnsureAuthenticated(context.Background()) {
		t.Fatal("auth check error must be treated as unauthenticated")
	}
	if got := rec.Nav(); !reflect.DeepEqual(got, []string{"login"}) {
		t.Fatalf("nav = %v, want [login]", got)
	}
}

func TestToggleLike_MutationCompletesBeforeReloads(t *testing.T) {
	fc := &fakeClient{}
	s := newTestSession(fc, &recorder{})

	if err := s.ToggleLike(context.Background(), "5"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	calls := fc.Calls()
	if len(calls) != 4 {
		t.Fatalf("calls = %v", calls)
	}
	if calls[0] != "auth" || calls[1] != "like:5" {
		t.Fatalf("calls = %v, want auth then like first", calls)
	}
	reloads := append([]string(nil), calls[2:]...)
	sort.Strings(reloads)
	if !reflect.DeepEqual(reloads, []string{"analytics", "list"}) {
		t.Fatalf("reloads = %v", reloads)
	}
}

func TestToggleLike_FailureNotifiesAndStillReloads(t *testing.T) {
	fc := &fakeClient{like: func(context.Context, domain.PostID) error { return errDown }}
	rec := &recorder{}
	s := newTestSession(fc, rec)

	err := s.ToggleLike(context.Background(), "5")
	if !domain.IsNetwork(err) {
		t.Fatalf("err = %v, want network error", err)
	}
	if got := rec.Notices(); len(got) != 1 {
		t.Fatalf("notices = %v, want one transient failure notice", got)
	}
	if fc.count("list") != 1 || fc.count("analytics") != 1 {
		t.Fatalf("calls = %v, want feed and analytics reloads", fc.Calls())
	}
}

func TestToggleLike_ReflectsServerStateAfterReload(t *testing.T) {
	mock := collector.NewMockClientWithPosts("you", true, 0, []domain.Post{
		{ID: "1", Title: "mine", Author: "you", Likes: 3},
		{ID: "2", Title: "theirs", Author: "sam", Likes: 10},
	})
	s := newTestSession(mock, &recorder{})
	ctx := context.Background()
	_ = s.LoadFeed(ctx)

	if err := s.ToggleLike(ctx, "2"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	p := findPost(t, s.Snapshot().Posts, "2")
	if !p.IsLiked || p.Likes != 11 {
		t.Fatalf("after like: liked=%v likes=%d, want true/11", p.IsLiked, p.Likes)
	}

	// Toggle semantics: a second call unlikes.
	if err := s.ToggleLike(ctx, "2"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	p = findPost(t, s.Snapshot().Posts, "2")
	if p.IsLiked || p.Likes != 10 {
		t.Fatalf("after unlike: liked=%v likes=%d, want false/10", p.IsLiked, p.Likes)
	}
}

func TestRecordView_PostsThenReloadsAnalytics(t *testing.T) {
	fc := &fakeClient{}
	s := newTestSession(fc, &recorder{})

	if err := s.RecordView(context.Background(), "9"); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if got := fc.Calls(); !reflect.DeepEqual(got, []string{"view:9", "analytics"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestRecordView_NotDeduplicated(t *testing.T) {
	mock := collector.NewMockClientWithPosts("you", false, 0, []domain.Post{
		{ID: "1", Title: "mine", Author: "you", Views: 0},
	})
	s := newTestSession(mock, &recorder{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.RecordView(ctx, "1"); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}
	a := s.Analytics()
	if a == nil || a.MostViewed == nil || a.MostViewed.ViewCount != 3 {
		t.Fatalf("analytics = %+v, want 3 views", a)
	}
}

func TestOpenPost_NavigatesBeforeViewCompletes(t *testing.T) {
	release := make(chan struct{})
	fc := &fakeClient{view: func(context.Context, domain.PostID) error {
		<-release
		return nil
	}}
	rec := &recorder{}
	s := newTestSession(fc, rec)

	s.OpenPost(context.Background(), "4")
	if got := rec.Nav(); !reflect.DeepEqual(got, []string{"post:4"}) {
		t.Fatalf("nav = %v, want [post:4] before the view request returns", got)
	}
	close(release)
	s.Wait()
	if fc.count("view:4") != 1 || fc.count("analytics") != 1 {
		t.Fatalf("calls = %v", fc.Calls())
	}
}

func TestOpenComments_Gated(t *testing.T) {
	authed := false
	fc := &fakeClient{auth: func(context.Context) (bool, error) { return authed, nil }}
	rec := &recorder{}
	s := newTestSession(fc, rec)
	ctx := context.Background()

	if err := s.OpenComments(ctx, "3"); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v", err)
	}
	authed = true
	if err := s.OpenComments(ctx, "3"); err != nil {
		t.Fatalf("OpenComments: %v", err)
	}
	if got := rec.Nav(); !reflect.DeepEqual(got, []string{"login", "comments:3"}) {
		t.Fatalf("nav = %v", got)
	}
}

func TestLoadAnalytics_FailureKeepsPreviousSummary(t *testing.T) {
	fail := false
	fc := &fakeClient{analytics: func(context.Context) (domain.AnalyticsSummary, error) {
		if fail {
			return domain.AnalyticsSummary{}, errDown
		}
		return domain.AnalyticsSummary{MostLiked: &domain.PostStat{Title: "x", LikeCount: 4}}, nil
	}}
	s := newTestSession(fc, &recorder{})
	ctx := context.Background()

	if err := s.LoadAnalytics(ctx); err != nil {
		t.Fatalf("LoadAnalytics: %v", err)
	}
	fail = true
	if err := s.LoadAnalytics(ctx); err == nil {
		t.Fatal("expected error")
	}
	a := s.Analytics()
	if a == nil || a.MostLiked == nil || a.MostLiked.LikeCount != 4 {
		t.Fatalf("analytics = %+v, want previous summary", a)
	}
}

func TestLoadProjects_FailureKeepsPreviousList(t *testing.T) {
	fail := false
	fc := &fakeClient{own: func(context.Context) ([]domain.Post, error) {
		if fail {
			return nil, errDown
		}
		return []domain.Post{post("1")}, nil
	}}
	s := newTestSession(fc, &recorder{})
	ctx := context.Background()

	_ = s.LoadProjects(ctx)
	fail = true
	_ = s.LoadProjects(ctx)
	if got := ids(s.Projects()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("projects = %v", got)
	}
}

func findPost(t *testing.T, posts []domain.Post, id domain.PostID) domain.Post {
	t.Helper()
	for _, p := range posts {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("post %s not in snapshot", id)
	return domain.Post{}
}

func TestAuthenticated_IsQuiet(t *testing.T) {
	fc := &fakeClient{auth: func(context.Context) (bool, error) { return false, errDown }}
	rec := &recorder{}
	s := newTestSession(fc, rec)

	if s.Authenticated(context.Background()) {
		t.Fatal("errors must count as logged out")
	}
	if len(rec.Nav()) != 0 || len(rec.Notices()) != 0 {
		t.Fatalf("nav = %v notices = %v, want none", rec.Nav(), rec.Notices())
	}
}
