package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qepting91/devfeed/internal/metrics"
)

// DefaultPeriod is the refresh cadence of both polling tasks.
const DefaultPeriod = 30 * time.Second

// Key identifies what the feed view is showing. A change of key restarts
// polling.
type Key struct {
	Query string
	// Nav changes every time the user navigates back to the feed view.
	Nav uint64
}

// TickerFunc starts a ticker for the named task and returns its channel and
// a stop function.
type TickerFunc func(task string, d time.Duration) (<-chan time.Time, func())

func systemTicker(_ string, d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type SchedulerOptions struct {
	// Period defaults to DefaultPeriod.
	Period time.Duration
	// CancelInFlight aborts requests already dispatched when polling stops.
	// Off by default: in-flight responses still land after a stop.
	CancelInFlight bool
	NewTicker      TickerFunc
	Logger         *slog.Logger
}

func (o *SchedulerOptions) defaults() {
	if o.Period <= 0 {
		o.Period = DefaultPeriod
	}
	if o.NewTicker == nil {
		o.NewTicker = systemTicker
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Scheduler owns the two periodic refresh tasks of the feed view: one for
// the feed and one for analytics. Ticks are not coalesced; a slow response
// can still be in flight when the next tick fires, and whichever response
// arrives last is what the session shows.
type Scheduler struct {
	session *Session
	opts    SchedulerOptions
	log     *slog.Logger

	mu      sync.Mutex
	running bool
	key     Key
	loopCtx context.Context
	cancel  context.CancelFunc
	loops   sync.WaitGroup

	inflight sync.WaitGroup
}

func NewScheduler(session *Session, opts SchedulerOptions) *Scheduler {
	opts.defaults()
	return &Scheduler{session: session, opts: opts, log: opts.Logger}
}

// Start stops any running tasks, triggers an immediate load of projects,
// feed and analytics, and starts both periodic tasks. Tasks stop when Stop is
// called or ctx is done.
func (sc *Scheduler) Start(ctx context.Context, key Key) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	reqCtx := loopCtx
	if !sc.opts.CancelInFlight {
		reqCtx = context.WithoutCancel(loopCtx)
	}
	sc.loopCtx = loopCtx
	sc.cancel = cancel
	sc.key = key
	sc.running = true
	sc.log.Debug("Polling started", "query", key.Query, "nav", key.Nav, "period", sc.opts.Period)

	sc.dispatch(reqCtx, sc.session.LoadProjects)
	sc.dispatch(reqCtx, sc.session.LoadFeed)
	sc.dispatch(reqCtx, sc.session.LoadAnalytics)

	sc.every(loopCtx, reqCtx, "analytics", sc.session.LoadAnalytics)
	sc.every(loopCtx, reqCtx, "feed", sc.session.LoadFeed)
}

// Restart starts polling for key unless it is already running for the same
// key. It reports whether polling was (re)started.
func (sc *Scheduler) Restart(ctx context.Context, key Key) bool {
	sc.mu.Lock()
	same := sc.aliveLocked() && sc.key == key
	sc.mu.Unlock()
	if same {
		return false
	}
	sc.Start(ctx, key)
	return true
}

// Stop halts both tasks and waits for their loops to exit. Requests already
// dispatched are left to finish unless CancelInFlight is set.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopLocked()
}

func (sc *Scheduler) stopLocked() {
	if sc.cancel == nil {
		return
	}
	sc.cancel()
	sc.loops.Wait()
	sc.cancel = nil
	sc.loopCtx = nil
	sc.running = false
	sc.log.Debug("Polling stopped", "query", sc.key.Query, "nav", sc.key.Nav)
}

// Running reports whether both tasks are live. Cancelling the context given
// to Start stops them as well.
func (sc *Scheduler) Running() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.aliveLocked()
}

func (sc *Scheduler) aliveLocked() bool {
	return sc.running && sc.loopCtx.Err() == nil
}

func (sc *Scheduler) Key() Key {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.key
}

// WaitIdle blocks until every dispatched load has returned. Call it only
// when no tick can fire, e.g. after Stop.
func (sc *Scheduler) WaitIdle() { sc.inflight.Wait() }

func (sc *Scheduler) every(loopCtx, reqCtx context.Context, task string, load func(context.Context) error) {
	ticks, stop := sc.opts.NewTicker(task, sc.opts.Period)
	sc.loops.Add(1)
	go func() {
		defer sc.loops.Done()
		defer stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticks:
				metrics.PollTicks.WithLabelValues(task).Inc()
				sc.dispatch(reqCtx, load)
			}
		}
	}()
}

// dispatch runs one load without waiting for it; failures are already
// logged by the session.
func (sc *Scheduler) dispatch(ctx context.Context, load func(context.Context) error) {
	sc.inflight.Add(1)
	go func() {
		defer sc.inflight.Done()
		_ = load(ctx)
	}()
}
