// Package feed implements the feed page's engagement and synchronization
// model: loading the feed and analytics, tag filtering, gated engagement
// actions, and the polling scheduler that keeps it all fresh.
//
// Every piece of state the session owns is replaced wholesale from a single
// server response. Counters are never adjusted locally.
package feed

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/qepting91/devfeed/internal/domain"
)

// Navigator moves the user between views. The session calls it when a
// failed search falls back to the feed and when login is required.
type Navigator interface {
	// ToFeed returns to the unfiltered feed after the search for
	// failedQuery failed.
	ToFeed(failedQuery string)
	ToLogin()
	ToPost(id domain.PostID)
	ToComments(id domain.PostID)
}

// Notifier shows short transient messages to the user.
type Notifier interface {
	Notice(msg string)
}

// ChangeKind says which piece of session state was replaced.
type ChangeKind int

const (
	ChangeFeed ChangeKind = iota
	ChangeAnalytics
	ChangeProjects
	ChangeFilter
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeFeed:
		return "feed"
	case ChangeAnalytics:
		return "analytics"
	case ChangeProjects:
		return "projects"
	case ChangeFilter:
		return "filter"
	default:
		return "unknown"
	}
}

type Options struct {
	Navigator Navigator
	Notifier  Notifier
	Logger    *slog.Logger
	// OnChange is called after state is replaced. It runs on the goroutine
	// that applied the change and must not block.
	OnChange func(ChangeKind)
	// DiscardStale drops feed responses issued before the last applied one.
	// Off by default: the latest arrival wins.
	DiscardStale bool
}

type noopNavigator struct{}

func (noopNavigator) ToFeed(string)            {}
func (noopNavigator) ToLogin()                 {}
func (noopNavigator) ToPost(domain.PostID)     {}
func (noopNavigator) ToComments(domain.PostID) {}

type noopNotifier struct{}

func (noopNotifier) Notice(string) {}

func (o *Options) defaults() {
	if o.Navigator == nil {
		o.Navigator = noopNavigator{}
	}
	if o.Notifier == nil {
		o.Notifier = noopNotifier{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.OnChange == nil {
		o.OnChange = func(ChangeKind) {}
	}
}

// Session is the feed page's state. It is safe for concurrent use.
type Session struct {
	client domain.FeedClient
	opts   Options
	log    *slog.Logger
	gate   AuthGate

	mu        sync.RWMutex
	snapshot  domain.FeedSnapshot
	analytics *domain.AnalyticsSummary
	projects  []domain.Post
	filter    domain.FilterState

	issued  atomic.Uint64
	applied uint64 // guarded by mu

	background sync.WaitGroup
}

func NewSession(client domain.FeedClient, opts Options) *Session {
	opts.defaults()
	return &Session{
		client: client,
		opts:   opts,
		log:    opts.Logger,
		gate: AuthGate{
			client:    client,
			navigator: opts.Navigator,
			notifier:  opts.Notifier,
			log:       opts.Logger,
		},
	}
}

// Snapshot returns the current feed snapshot.
func (s *Session) Snapshot() domain.FeedSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Analytics returns the last summary fetched, or nil before the first
// successful fetch.
func (s *Session) Analytics() *domain.AnalyticsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

// Projects returns the caller's own posts from the last successful fetch.
func (s *Session) Projects() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects
}

func (s *Session) Filter() domain.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Wait blocks until background view recordings started by OpenPost finish.
func (s *Session) Wait() { s.background.Wait() }

func (s *Session) changed(kind ChangeKind) {
	s.opts.OnChange(kind)
}
