package feed

import "github.com/qepting91/devfeed/internal/domain"

// Visible derives the rendered subset of the current snapshot.
func (s *Session) Visible() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.VisiblePosts(s.snapshot.Posts, s.filter)
}

// ToggleTag flips tag in the selection. No I/O.
func (s *Session) ToggleTag(tag string) {
	s.mu.Lock()
	s.filter = s.filter.ToggleTag(tag)
	s.mu.Unlock()
	s.changed(ChangeFilter)
}

// SetQuery sets the active search query and reports whether it changed.
// Callers restart the scheduler when it did.
func (s *Session) SetQuery(query string) bool {
	s.mu.Lock()
	if s.filter.Query == query {
		s.mu.Unlock()
		return false
	}
	s.filter.Query = query
	s.mu.Unlock()
	s.changed(ChangeFilter)
	return true
}
