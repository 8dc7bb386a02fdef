package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qepting91/devfeed/internal/dashboard"
	"github.com/qepting91/devfeed/internal/feed"
	"github.com/qepting91/devfeed/internal/storage"
)

func newWatchCmd(app *App) *cobra.Command {
	var serve bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the feed headlessly and journal every applied snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, app, serve)
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", true, "Serve the dashboard while polling")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, app *App, serve bool) error {
	cfg := app.config()
	log := slog.Default()

	client, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}

	records := make(chan storage.Record, 100)
	var writerWG sync.WaitGroup
	writer := &storage.WriterService{FilePath: cfg.JournalPath, Logger: log}
	writerWG.Add(1)
	go writer.Start(&writerWG, records)

	r := reporter{w: cmd.ErrOrStderr(), log: log}
	var session *feed.Session
	session = feed.NewSession(client, feed.Options{
		Navigator:    r,
		Notifier:     r,
		Logger:       log,
		DiscardStale: cfg.DiscardStale,
		OnChange: func(kind feed.ChangeKind) {
			rec, ok := journalRecord(session, kind)
			if !ok {
				return
			}
			select {
			case records <- rec:
			default:
				log.Warn("Journal backlog full, dropping record", "kind", rec.Kind)
			}
		},
	})

	sched := feed.NewScheduler(session, feed.SchedulerOptions{
		Period:         cfg.PollInterval,
		CancelInFlight: cfg.CancelInFlight,
		Logger:         log,
	})

	if serve {
		go func() {
			if err := dashboard.StartServer(ctx, cfg.JournalPath, cfg.Port, log); err != nil {
				log.Error("Dashboard stopped", "err", err)
			}
		}()
	}

	log.Info("Watching feed", "mode", cfg.Mode, "period", cfg.PollInterval, "journal", cfg.JournalPath)
	sched.Start(ctx, feed.Key{})
	<-ctx.Done()

	log.Info("Shutting down")
	sched.Stop()
	sched.WaitIdle()
	close(records)
	writerWG.Wait()
	return nil
}

// journalRecord captures the state a change replaced. Filter changes are
// local and not journaled.
func journalRecord(s *feed.Session, kind feed.ChangeKind) (storage.Record, bool) {
	rec := storage.Record{At: time.Now().UTC()}
	switch kind {
	case feed.ChangeFeed:
		snap := s.Snapshot()
		rec.Kind = storage.KindFeed
		rec.Seq = snap.Seq
		rec.Query = snap.Query
		rec.Posts = snap.Posts
	case feed.ChangeAnalytics:
		rec.Kind = storage.KindAnalytics
		rec.Analytics = s.Analytics()
	case feed.ChangeProjects:
		rec.Kind = storage.KindProjects
		rec.Posts = s.Projects()
	default:
		return storage.Record{}, false
	}
	return rec, true
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Serve charts of the latest journaled snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cfg := app.config()
			if err := dashboard.StartServer(ctx, cfg.JournalPath, cfg.Port, slog.Default()); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}
