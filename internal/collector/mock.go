package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/qepting91/devfeed/internal/domain"
)

// MockClient implements domain.FeedClient against an in-memory backend that
// follows the server's rules: likes toggle per caller, every view counts, and
// analytics cover the caller's own posts.
type MockClient struct {
	mu            sync.Mutex
	posts         []domain.Post
	liked         map[domain.PostID]bool
	user          string
	authenticated bool
	latency       time.Duration
}

type MockOptions struct {
	Seed  int64
	Count int
	// User is the caller's author name; a few generated posts belong to it.
	User          string
	Tags          []string
	Authenticated bool
	// Latency simulates network delay on every call.
	Latency time.Duration
}

func NewMockClient(opts MockOptions) *MockClient {
	if opts.Count <= 0 {
		opts.Count = 12
	}
	if opts.User == "" {
		opts.User = "you"
	}
	if len(opts.Tags) == 0 {
		opts.Tags = domain.DefaultTags
	}

	f := gofakeit.New(opts.Seed)
	posts := make([]domain.Post, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		author := f.Username()
		if i%4 == 0 {
			author = opts.User
		}
		tags := domain.TagList{}
		for _, n := range []int{f.Number(0, len(opts.Tags)-1), f.Number(0, len(opts.Tags)-1)} {
			if !tags.Has(opts.Tags[n]) {
				tags = append(tags, opts.Tags[n])
			}
		}
		comments := make([]json.RawMessage, f.Number(0, 5))
		for j := range comments {
			comments[j], _ = json.Marshal(map[string]string{"author": f.Username(), "content": f.Sentence(8)})
		}
		posts = append(posts, domain.Post{
			ID:           domain.PostID(strconv.Itoa(i + 1)),
			Title:        f.AppName(),
			Pitch:        f.HackerPhrase(),
			Description:  f.Paragraph(2, 3, 12, "\n\n"),
			Tags:         tags,
			Author:       author,
			AuthorAvatar: fmt.Sprintf("https://i.pravatar.cc/64?u=%s", author),
			Likes:        f.Number(0, 40),
			Views:        f.Number(0, 400),
			Comments:     comments,
		})
	}
	return NewMockClientWithPosts(opts.User, opts.Authenticated, opts.Latency, posts)
}

// NewMockClientWithPosts serves a fixed post list.
func NewMockClientWithPosts(user string, authenticated bool, latency time.Duration, posts []domain.Post) *MockClient {
	return &MockClient{
		posts:         posts,
		liked:         make(map[domain.PostID]bool),
		user:          user,
		authenticated: authenticated,
		latency:       latency,
	}
}

// SetAuthenticated flips the simulated login state.
func (mc *MockClient) SetAuthenticated(ok bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.authenticated = ok
}

func (mc *MockClient) wait(ctx context.Context) error {
	if mc.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return &domain.NetworkError{Op: "mock", Err: err}
		}
		return nil
	}
	t := time.NewTimer(mc.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &domain.NetworkError{Op: "mock", Err: ctx.Err()}
	case <-t.C:
		return nil
	}
}

// view copies the posts as the server would send them for this caller.
func (mc *MockClient) view(keep func(domain.Post) bool) []domain.Post {
	out := []domain.Post{}
	for _, p := range mc.posts {
		if keep != nil && !keep(p) {
			continue
		}
		liked := mc.liked[p.ID]
		p.LikedByUser = &liked
		p.Tags = append(domain.TagList(nil), p.Tags...)
		out = append(out, p)
	}
	return out
}

func (mc *MockClient) ListPosts(ctx context.Context) ([]domain.Post, error) {
	if err := mc.wait(ctx); err != nil {
		return nil, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.view(nil), nil
}

func (mc *MockClient) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	if err := mc.wait(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.view(func(p domain.Post) bool {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Pitch), q) {
			return true
		}
		for _, t := range p.Tags {
			if strings.ToLower(t) == q {
				return true
			}
		}
		return false
	}), nil
}

func (mc *MockClient) find(id domain.PostID) (int, error) {
	for i := range mc.posts {
		if mc.posts[i].ID == id {
			return i, nil
		}
	}
	return -1, &domain.NetworkError{Op: "mock", Err: fmt.Errorf("post %s not found", id)}
}

func (mc *MockClient) ToggleLike(ctx context.Context, id domain.PostID) error {
	if err := mc.wait(ctx); err != nil {
		return err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if !mc.authenticated {
		return &domain.NetworkError{Op: "toggle like", Err: fmt.Errorf("status 403")}
	}
	i, err := mc.find(id)
	if err != nil {
		return err
	}
	if mc.liked[id] {
		delete(mc.liked, id)
		mc.posts[i].Likes--
	} else {
		mc.liked[id] = true
		mc.posts[i].Likes++
	}
	return nil
}

func (mc *MockClient) RecordView(ctx context.Context, id domain.PostID) error {
	if err := mc.wait(ctx); err != nil {
		return err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	i, err := mc.find(id)
	if err != nil {
		return err
	}
	mc.posts[i].Views++
	return nil
}

func (mc *MockClient) CheckAuth(ctx context.Context) (bool, error) {
	if err := mc.wait(ctx); err != nil {
		return false, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.authenticated, nil
}

func (mc *MockClient) UserPosts(ctx context.Context) ([]domain.Post, error) {
	if err := mc.wait(ctx); err != nil {
		return nil, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.view(func(p domain.Post) bool { return p.Author == mc.user }), nil
}

func (mc *MockClient) UserAnalytics(ctx context.Context) (domain.AnalyticsSummary, error) {
	if err := mc.wait(ctx); err != nil {
		return domain.AnalyticsSummary{}, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	own := mc.view(func(p domain.Post) bool { return p.Author == mc.user })
	if len(own) == 0 {
		return domain.AnalyticsSummary{}, nil
	}

	sort.SliceStable(own, func(i, j int) bool { return own[i].Likes > own[j].Likes })
	liked := own[0]
	sort.SliceStable(own, func(i, j int) bool { return own[i].Views > own[j].Views })
	viewed := own[0]
	return domain.AnalyticsSummary{
		MostLiked:  &domain.PostStat{Title: liked.Title, LikeCount: liked.Likes},
		MostViewed: &domain.PostStat{Title: viewed.Title, ViewCount: viewed.Views},
	}, nil
}
