// Package cli is the devfeed command tree: the interactive feed page plus
// scriptable commands over the same feed session.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qepting91/devfeed/internal/collector"
	"github.com/qepting91/devfeed/internal/config"
	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/feed"
	"github.com/qepting91/devfeed/internal/format"
	"github.com/qepting91/devfeed/internal/ingest"
	"github.com/qepting91/devfeed/internal/tui"
)

type App struct {
	BaseURL    string
	Mode       string
	Format     string
	PrettyJSON bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{cfg: config.Load()}

	cmd := &cobra.Command{
		Use:          "devfeed",
		Short:        "Terminal client for the developer project feed",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the feed interactively
  devfeed

  # Scriptable commands
  devfeed posts --tag Go --tag Rust
  devfeed posts --search graphql --format yaml
  devfeed like 42

  # Poll headlessly and serve the dashboard
  devfeed watch
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", app.cfg.BaseURL, "API base URL (DEVFEED_BASE_URL)")
	cmd.PersistentFlags().StringVar(&app.Mode, "mode", app.cfg.Mode, "Backend: api or mock (DEVFEED_MODE)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DEVFEED_FORMAT", format.JSON), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newPostsCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newAnalyticsCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newLikeCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newDashboardCmd(app))

	return cmd
}

// config returns the loaded configuration with flag overrides applied.
func (a *App) config() config.Config {
	cfg := a.cfg
	cfg.BaseURL = a.BaseURL
	cfg.Mode = a.Mode
	return cfg
}

func (a *App) tags() ([]string, error) {
	tags, err := ingest.LoadTags(a.cfg.TagsFile)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return tags, nil
}

func (a *App) client() (domain.FeedClient, error) {
	tags, err := a.tags()
	if err != nil {
		return nil, err
	}
	return collector.NewFeedClient(a.config(), tags)
}

// session builds a feed session for a one-shot command. Notices go to the
// command's stderr.
func (a *App) session(cmd *cobra.Command) (*feed.Session, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	r := reporter{w: cmd.ErrOrStderr(), log: slog.Default()}
	return feed.NewSession(client, feed.Options{
		Navigator:    r,
		Notifier:     r,
		Logger:       slog.Default(),
		DiscardStale: a.cfg.DiscardStale,
	}), nil
}

// reporter stands in for page navigation outside the TUI.
type reporter struct {
	w   io.Writer
	log *slog.Logger
}

func (r reporter) ToFeed(query string) {
	r.log.Info("Search failed; falling back to the unfiltered feed", "query", query)
}

func (r reporter) ToLogin() {
	r.log.Warn("Login required", "hint", "set DEVFEED_TOKEN or DEVFEED_SESSION_ID")
}

func (r reporter) ToPost(id domain.PostID)     { r.log.Debug("Open post", "post_id", id) }
func (r reporter) ToComments(id domain.PostID) { r.log.Debug("Open comments", "post_id", id) }

func (r reporter) Notice(msg string) { fmt.Fprintln(r.w, msg) }

func runTUI(cmd *cobra.Command, app *App) error {
	cfg := app.config()
	logger, closeLog, err := tuiLogger(cfg.LogFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	tags, err := app.tags()
	if err != nil {
		return writeErr(cmd, err)
	}
	client, err := collector.NewFeedClient(cfg, tags)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), tui.Options{
		Client:         client,
		Tags:           tags,
		Period:         cfg.PollInterval,
		DiscardStale:   cfg.DiscardStale,
		CancelInFlight: cfg.CancelInFlight,
		Logger:         logger,
	})
}

// tuiLogger keeps log output off the terminal the TUI draws on.
func tuiLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
