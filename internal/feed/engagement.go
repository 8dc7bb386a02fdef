package feed

import (
	"context"
	"sync"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/metrics"
)

// ToggleLike flips the caller's like on the server, then reloads the feed and
// analytics. The like flag and count are never changed locally; the reload is
// the only source of the new values.
//
// The like request completes before either reload is issued. The two reloads
// are not ordered relative to each other.
func (s *Session) ToggleLike(ctx context.Context, id domain.PostID) error {
	if !s.gate.EnsureAuthenticated(ctx) {
		metrics.Mutations.WithLabelValues("like", "unauthenticated").Inc()
		return domain.ErrAuthRequired
	}

	err := s.client.ToggleLike(ctx, id)
	if err != nil {
		metrics.Mutations.WithLabelValues("like", "failed").Inc()
		s.log.Error("Toggle like failed", "post_id", id, "err", err)
		s.opts.Notifier.Notice("Could not update like; try again")
	} else {
		metrics.Mutations.WithLabelValues("like", "ok").Inc()
	}

	s.reload(ctx, s.LoadFeed, s.LoadAnalytics)
	return err
}

// RecordView posts a view event and then reloads analytics. It is not gated:
// viewing is safe without a login.
func (s *Session) RecordView(ctx context.Context, id domain.PostID) error {
	if err := s.client.RecordView(ctx, id); err != nil {
		metrics.Mutations.WithLabelValues("view", "failed").Inc()
		s.log.Error("Record view failed", "post_id", id, "err", err)
		s.opts.Notifier.Notice("Could not record view")
		return err
	}
	metrics.Mutations.WithLabelValues("view", "ok").Inc()
	_ = s.LoadAnalytics(ctx)
	return nil
}

// OpenPost navigates to the post's detail view right away and records the
// view in the background, so navigation never waits on the network.
//
// The navigator is called synchronously on the caller's goroutine. Do not
// call OpenPost from a Bubble Tea Update when the navigator sends to that
// same program; the TUI opens posts with its own command instead.
func (s *Session) OpenPost(ctx context.Context, id domain.PostID) {
	s.opts.Navigator.ToPost(id)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		_ = s.RecordView(context.WithoutCancel(ctx), id)
	}()
}

// OpenComments navigates to the comments view once the caller is logged in.
func (s *Session) OpenComments(ctx context.Context, id domain.PostID) error {
	if !s.gate.EnsureAuthenticated(ctx) {
		return domain.ErrAuthRequired
	}
	s.opts.Navigator.ToComments(id)
	return nil
}

// reload runs loads concurrently and waits for all of them. Their errors are
// already logged by the loads themselves.
func (s *Session) reload(ctx context.Context, loads ...func(context.Context) error) {
	var wg sync.WaitGroup
	for _, load := range loads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = load(ctx)
		}()
	}
	wg.Wait()
}
