package feed

import (
	"context"

	"github.com/qepting91/devfeed/internal/metrics"
)

// LoadAnalytics replaces the analytics summary. On failure the previous
// summary stays in place.
func (s *Session) LoadAnalytics(ctx context.Context) error {
	summary, err := s.client.UserAnalytics(ctx)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("fetch analytics").Inc()
		s.log.Error("Failed to fetch analytics", "err", err)
		return err
	}
	s.log.Debug("Analytics data", "most_liked", summary.MostLiked, "most_viewed", summary.MostViewed)

	s.mu.Lock()
	s.analytics = &summary
	s.mu.Unlock()
	s.changed(ChangeAnalytics)
	return nil
}

// LoadProjects replaces the caller's own post list. On failure the previous
// list stays in place.
func (s *Session) LoadProjects(ctx context.Context) error {
	posts, err := s.client.UserPosts(ctx)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("fetch own posts").Inc()
		s.log.Error("Fetch my projects failed", "err", err)
		return err
	}

	s.mu.Lock()
	s.projects = posts
	s.mu.Unlock()
	s.changed(ChangeProjects)
	return nil
}
