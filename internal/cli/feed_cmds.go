package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qepting91/devfeed/internal/domain"
)

func newPostsCmd(app *App) *cobra.Command {
	var search string
	var tags []string

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List the feed, optionally searched or filtered by tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, t := range tags {
				s.ToggleTag(t)
			}
			s.SetQuery(search)
			if err := s.LoadFeed(cmd.Context()); err != nil {
				if search == "" {
					return writeErr(cmd, err)
				}
				// A failed search yields the unfiltered feed.
				s.SetQuery("")
				if err := s.LoadFeed(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"query": s.Filter().Query,
				"tags":  s.Filter().Selected,
				"data":  s.Visible(),
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Server-side search query")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Show only posts with this tag (repeatable)")
	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List your own posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.LoadProjects(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s.Projects()})
		},
	}
}

func newAnalyticsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show your most liked and most viewed posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.LoadAnalytics(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s.Analytics()})
		},
	}
}

func newAuthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Check whether the configured credentials are logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"authenticated": s.Authenticated(cmd.Context())})
		},
	}
}

func newLikeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Toggle your like on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := domain.PostID(args[0])
			if err := s.ToggleLike(cmd.Context(), id); err != nil {
				if errors.Is(err, domain.ErrAuthRequired) {
					return writeErr(cmd, err)
				}
				return writeErr(cmd, fmt.Errorf("like %s: %w", id, err))
			}
			for _, p := range s.Snapshot().Posts {
				if p.ID == id {
					return writeOut(cmd, app, map[string]any{"data": p})
				}
			}
			return writeOut(cmd, app, map[string]any{"data": nil})
		},
	}
}

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view <post-id>",
		Short: "Record a view of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.RecordView(cmd.Context(), domain.PostID(args[0])); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s.Analytics()})
		},
	}
}

func newTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags offered in the filter panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := app.tags()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tags})
		},
	}
}
