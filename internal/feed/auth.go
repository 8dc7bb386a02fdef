package feed

import (
	"context"
	"log/slog"

	"github.com/qepting91/devfeed/internal/domain"
)

const loginNotice = "Please log in first"

// AuthGate checks the external authentication endpoint before mutating
// actions. It fails closed.
type AuthGate struct {
	client    domain.FeedClient
	navigator Navigator
	notifier  Notifier
	log       *slog.Logger
}

// EnsureAuthenticated reports whether the caller is logged in. When not, or
// when the check itself fails, the user is told to log in and redirected.
func (g AuthGate) EnsureAuthenticated(ctx context.Context) bool {
	ok, err := g.client.CheckAuth(ctx)
	if err != nil {
		g.log.Warn("Auth check failed", "err", err)
		ok = false
	}
	if !ok {
		g.notifier.Notice(loginNotice)
		g.navigator.ToLogin()
	}
	return ok
}

// EnsureAuthenticated runs the session's auth gate.
func (s *Session) EnsureAuthenticated(ctx context.Context) bool {
	return s.gate.EnsureAuthenticated(ctx)
}

// Authenticated checks the login state without notifying or navigating.
// Errors count as logged out.
func (s *Session) Authenticated(ctx context.Context) bool {
	ok, err := s.client.CheckAuth(ctx)
	if err != nil {
		s.log.Warn("Auth check failed", "err", err)
		return false
	}
	return ok
}
