package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/qepting91/devfeed/internal/domain"
)

// fakeClient is a scriptable domain.FeedClient that records every call.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	list      func(ctx context.Context) ([]domain.Post, error)
	search    func(ctx context.Context, q string) ([]domain.Post, error)
	like      func(ctx context.Context, id domain.PostID) error
	view      func(ctx context.Context, id domain.PostID) error
	auth      func(ctx context.Context) (bool, error)
	own       func(ctx context.Context) ([]domain.Post, error)
	analytics func(ctx context.Context) (domain.AnalyticsSummary, error)
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

var errDown = &domain.NetworkError{Op: "fake", Err: errors.New("connection refused")}

func (f *fakeClient) ListPosts(ctx context.Context) ([]domain.Post, error) {
	f.record("list")
	if f.list == nil {
		return []domain.Post{}, nil
	}
	return f.list(ctx)
}

func (f *fakeClient) SearchPosts(ctx context.Context, q string) ([]domain.Post, error) {
	f.record("search:" + q)
	if f.search == nil {
		return []domain.Post{}, nil
	}
	return f.search(ctx, q)
}

func (f *fakeClient) ToggleLike(ctx context.Context, id domain.PostID) error {
	f.record("like:" + string(id))
	if f.like == nil {
		return nil
	}
	return f.like(ctx, id)
}

func (f *fakeClient) RecordView(ctx context.Context, id domain.PostID) error {
	f.record("view:" + string(id))
	if f.view == nil {
		return nil
	}
	return f.view(ctx, id)
}

func (f *fakeClient) CheckAuth(ctx context.Context) (bool, error) {
	f.record("auth")
	if f.auth == nil {
		return true, nil
	}
	return f.auth(ctx)
}

func (f *fakeClient) UserPosts(ctx context.Context) ([]domain.Post, error) {
	f.record("own")
	if f.own == nil {
		return []domain.Post{}, nil
	}
	return f.own(ctx)
}

func (f *fakeClient) UserAnalytics(ctx context.Context) (domain.AnalyticsSummary, error) {
	f.record("analytics")
	if f.analytics == nil {
		return domain.AnalyticsSummary{}, nil
	}
	return f.analytics(ctx)
}

// recorder implements Navigator and Notifier.
type recorder struct {
	mu      sync.Mutex
	nav     []string
	notices []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nav = append(r.nav, s)
}

func (r *recorder) ToFeed(string)               { r.add("feed") }
func (r *recorder) ToLogin()                    { r.add("login") }
func (r *recorder) ToPost(id domain.PostID)     { r.add("post:" + string(id)) }
func (r *recorder) ToComments(id domain.PostID) { r.add("comments:" + string(id)) }

func (r *recorder) Notice(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *recorder) Nav() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.nav...)
}

func (r *recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

func newTestSession(c domain.FeedClient, rec *recorder) *Session {
	return NewSession(c, Options{Navigator: rec, Notifier: rec})
}

func post(id string, tags ...string) domain.Post {
	return domain.Post{ID: domain.PostID(id), Title: "post " + id, Tags: tags}
}

func ids(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, string(p.ID))
	}
	return out
}
