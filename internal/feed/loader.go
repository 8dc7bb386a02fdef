package feed

import (
	"context"
	"time"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/metrics"
)

// LoadFeed fetches the global listing, or the search listing while a query
// is active, and replaces the snapshot with the result. One attempt per
// call; the next poll tick is the retry.
//
// A failed search is treated as "nothing usable for this query": the
// navigator is sent back to the unfiltered feed.
func (s *Session) LoadFeed(ctx context.Context) error {
	query := s.Filter().Query
	seq := s.issued.Add(1)

	var (
		posts []domain.Post
		err   error
	)
	if query == "" {
		posts, err = s.client.ListPosts(ctx)
	} else {
		posts, err = s.client.SearchPosts(ctx, query)
	}
	if err != nil {
		op := "list posts"
		if query != "" {
			op = "search posts"
		}
		metrics.FetchFailures.WithLabelValues(op).Inc()
		s.log.Error("Fetch posts failed", "query", query, "err", err)
		if query != "" {
			s.opts.Navigator.ToFeed(query)
		}
		return err
	}

	annotateLikes(posts)
	if !s.apply(domain.FeedSnapshot{
		Posts:     posts,
		Query:     query,
		FetchedAt: time.Now(),
		Seq:       seq,
	}) {
		return nil
	}
	s.changed(ChangeFeed)
	return nil
}

// apply swaps in next unless the stale guard rejects it.
func (s *Session) apply(next domain.FeedSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.DiscardStale && next.Seq < s.applied {
		metrics.StaleDiscarded.Inc()
		s.log.Debug("Discarding stale feed response", "seq", next.Seq, "applied", s.applied)
		return false
	}
	if next.Seq > s.applied {
		s.applied = next.Seq
	}
	s.snapshot = next
	metrics.SnapshotPosts.Set(float64(len(next.Posts)))
	return true
}

// annotateLikes sets IsLiked from the server's liked_by_user, defaulting to
// false when the field is absent.
func annotateLikes(posts []domain.Post) {
	for i := range posts {
		posts[i].IsLiked = posts[i].LikedByUser != nil && *posts[i].LikedByUser
	}
}
