// Package tui is the interactive feed page: post cards, search, tag filter,
// analytics and project panels, post detail and comments views.
package tui

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/feed"
)

type Options struct {
	Client         domain.FeedClient
	Tags           []string
	Period         time.Duration
	DiscardStale   bool
	CancelInFlight bool
	Logger         *slog.Logger
}

// Run shows the feed page until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	var program atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	}

	session := feed.NewSession(opts.Client, SessionOptions(send, feed.Options{
		Logger:       opts.Logger,
		DiscardStale: opts.DiscardStale,
	}))
	sched := feed.NewScheduler(session, feed.SchedulerOptions{
		Period:         opts.Period,
		CancelInFlight: opts.CancelInFlight,
		Logger:         opts.Logger,
	})
	defer sched.Stop()

	p := tea.NewProgram(NewModel(ctx, session, sched, opts.Tags), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)
	_, err := p.Run()
	return err
}
