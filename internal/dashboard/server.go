// Package dashboard serves engagement charts built from the snapshot
// journal, plus Prometheus metrics and a health probe.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/storage"
)

// NewRouter builds the dashboard routes over the journal at journalPath.
func NewRouter(journalPath string, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/latest", func(w http.ResponseWriter, _ *http.Request) {
		latest, err := loadLatest(journalPath)
		if err != nil {
			log.Error("Journal read failed", "path", journalPath, "err", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(latest)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		latest, err := loadLatest(journalPath)
		if err != nil {
			log.Error("Journal read failed", "path", journalPath, "err", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := buildPage(latest).Render(w); err != nil {
			log.Error("Render dashboard failed", "err", err)
		}
	})

	return otelhttp.NewHandler(r, "dashboard")
}

// StartServer serves the dashboard on port until ctx is done.
func StartServer(ctx context.Context, journalPath, port string, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(journalPath, log),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func loadLatest(path string) (map[string]storage.Record, error) {
	records, err := storage.ReadJournal(path)
	if err != nil {
		return nil, err
	}
	return storage.Latest(records), nil
}

func buildPage(latest map[string]storage.Record) *components.Page {
	page := components.NewPage()
	page.SetPageTitle("devfeed dashboard")

	feed := latest[storage.KindFeed]
	posts := append([]domain.Post(nil), feed.Posts...)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Likes > posts[j].Likes })

	subtitle := "no snapshot yet"
	if !feed.At.IsZero() {
		subtitle = fmt.Sprintf("snapshot #%d at %s", feed.Seq, feed.At.Format(time.RFC3339))
		if feed.Query != "" {
			subtitle += fmt.Sprintf(" for %q", feed.Query)
		}
	}

	// 1. Engagement per post
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Engagement", Subtitle: subtitle}),
	)
	titles := make([]string, 0, len(posts))
	likes := make([]opts.BarData, 0, len(posts))
	views := make([]opts.BarData, 0, len(posts))
	comments := make([]opts.BarData, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
		likes = append(likes, opts.BarData{Value: p.Likes})
		views = append(views, opts.BarData{Value: p.Views})
		comments = append(comments, opts.BarData{Value: p.CommentCount()})
	}
	bar.SetXAxis(titles).
		AddSeries("Likes", likes).
		AddSeries("Views", views).
		AddSeries("Comments", comments)

	// 2. Tag share
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Tag Share"}),
	)
	pie.AddSeries("Posts", tagShare(posts))

	// 3. Own best performers
	top := charts.NewBar()
	top.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "My Analytics"}),
	)
	var topX []string
	var topY []opts.BarData
	if a := latest[storage.KindAnalytics].Analytics; a != nil {
		if a.MostLiked != nil {
			topX = append(topX, "Most liked: "+a.MostLiked.Title)
			topY = append(topY, opts.BarData{Value: a.MostLiked.LikeCount})
		}
		if a.MostViewed != nil {
			topX = append(topX, "Most viewed: "+a.MostViewed.Title)
			topY = append(topY, opts.BarData{Value: a.MostViewed.ViewCount})
		}
	}
	top.SetXAxis(topX).AddSeries("Count", topY)

	page.AddCharts(bar, pie, top)
	return page
}

func tagShare(posts []domain.Post) []opts.PieData {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]opts.PieData, 0, len(names))
	for _, name := range names {
		items = append(items, opts.PieData{Name: name, Value: counts[name]})
	}
	return items
}
