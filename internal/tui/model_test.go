package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qepting91/devfeed/internal/collector"
	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/feed"
)

// harness drives a Model the way the program would, with session callbacks
// collected on a channel instead of a running program.
type harness struct {
	t     *testing.T
	m     Model
	msgs  chan tea.Msg
	mock  *collector.MockClient
	sched *feed.Scheduler
}

func idleTicker(string, time.Duration) (<-chan time.Time, func()) { return nil, func() {} }

func testPosts() []domain.Post {
	return []domain.Post{
		{ID: "1", Title: "Gopher Board", Pitch: strings.Repeat("p", 200), Author: "you", Tags: domain.TagList{"Go"}, Likes: 3, Views: 10},
		{ID: "2", Title: "React Dash", Pitch: "charts", Author: "sam", Tags: domain.TagList{"React"}, Likes: 1},
	}
}

func newHarness(t *testing.T, authenticated bool) *harness {
	t.Helper()
	msgs := make(chan tea.Msg, 256)
	mock := collector.NewMockClientWithPosts("you", authenticated, 0, testPosts())
	s := feed.NewSession(mock, SessionOptions(func(msg tea.Msg) { msgs <- msg }, feed.Options{}))
	sc := feed.NewScheduler(s, feed.SchedulerOptions{NewTicker: idleTicker})
	t.Cleanup(sc.Stop)

	h := &harness{t: t, msgs: msgs, mock: mock, sched: sc}
	h.m = NewModel(context.Background(), s, sc, []string{"Go", "React", "Rust"})
	h.update(tea.WindowSizeMsg{Width: 160, Height: 50})
	h.m.Init()
	h.settle()
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(k string) tea.Cmd {
	switch k {
	case "enter":
		return h.update(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.update(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return h.update(tea.KeyMsg{Type: tea.KeyTab})
	case " ":
		return h.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}
	return h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// run executes an action command and feeds its result back.
func (h *harness) run(cmd tea.Cmd) tea.Msg {
	h.t.Helper()
	if cmd == nil {
		h.t.Fatal("expected a command")
	}
	msg := cmd()
	h.update(msg)
	h.settle()
	return msg
}

// settle waits for dispatched loads and applies every pending callback.
func (h *harness) settle() {
	h.sched.WaitIdle()
	h.m.session.Wait()
	for {
		select {
		case msg := <-h.msgs:
			h.update(msg)
		default:
			return
		}
	}
}

func TestFeed_InitialLoadRendersPanels(t *testing.T) {
	h := newHarness(t, true)

	out := h.m.View()
	for _, want := range []string{"Developer Feed", "Gopher Board", "React Dash", "My Projects", "My Analytics", "Most Liked:", "Filter by Tags", "[ ] Rust"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(out, strings.Repeat("p", 151)) {
		t.Error("card pitch must be cut at 150 runes")
	}
	if !h.sched.Running() {
		t.Error("polling should run on the feed view")
	}
}

func TestFeed_TagToggleFilters(t *testing.T) {
	h := newHarness(t, true)

	h.press("tab")
	h.press("j")
	h.press("j")
	h.press(" ")
	if got := h.m.session.Filter().Selected; len(got) != 1 || got[0] != "Rust" {
		t.Fatalf("selected = %v", got)
	}
	if !strings.Contains(h.m.View(), emptyFeedText) {
		t.Fatal("expected empty state when no post carries the tag")
	}

	h.press("k")
	h.press(" ")
	if got := len(h.m.session.Visible()); got != 1 {
		t.Fatalf("visible = %d, want the React post", got)
	}

	h.press(" ")
	h.press("j")
	h.press(" ")
	if got := len(h.m.session.Visible()); got != 2 {
		t.Fatalf("visible = %d after clearing the selection", got)
	}
}

func TestSearch_SubmitRestartsPolling(t *testing.T) {
	h := newHarness(t, true)
	nav := h.sched.Key().Nav

	h.press("/")
	if !h.m.searching {
		t.Fatal("expected search input focus")
	}
	h.press("gopher")
	h.press("enter")
	h.settle()

	if got := h.sched.Key(); got.Query != "gopher" || got.Nav != nav {
		t.Fatalf("key = %+v", got)
	}
	visible := h.m.session.Visible()
	if len(visible) != 1 || visible[0].ID != "1" {
		t.Fatalf("visible = %+v", visible)
	}

	h.press("x")
	h.settle()
	if h.sched.Key().Query != "" || len(h.m.session.Visible()) != 2 {
		t.Fatal("clearing the search should reload the full feed")
	}
}

func TestSearch_EscKeepsQuery(t *testing.T) {
	h := newHarness(t, true)
	h.press("/")
	h.press("abc")
	h.press("esc")
	if h.m.searching || h.m.session.Filter().Query != "" {
		t.Fatal("esc must cancel the search edit")
	}
	if h.m.search.Value() != "" {
		t.Fatalf("input = %q", h.m.search.Value())
	}
}

func TestOpenPost_NavigatesThenRecordsView(t *testing.T) {
	h := newHarness(t, true)

	cmd := h.press("enter")
	if h.m.view != viewDetail || h.m.post.ID != "1" {
		t.Fatalf("view = %v post = %s, want detail of post 1 before any request", h.m.view, h.m.post.ID)
	}
	if h.sched.Running() {
		t.Fatal("polling must stop when leaving the feed view")
	}

	msg := h.run(cmd)
	if done, ok := msg.(actionDoneMsg); !ok || done.action != "view" || done.err != nil {
		t.Fatalf("msg = %#v", msg)
	}
	posts, _ := h.mock.ListPosts(context.Background())
	if posts[0].Views != 11 {
		t.Fatalf("views = %d, want 11", posts[0].Views)
	}
}

func TestEsc_ReturnsToFeedUnderNewNavigation(t *testing.T) {
	h := newHarness(t, true)
	before := h.sched.Key().Nav

	h.press("enter")
	h.press("esc")
	h.settle()

	if h.m.view != viewFeed || !h.sched.Running() {
		t.Fatalf("view = %v running = %v", h.m.view, h.sched.Running())
	}
	if got := h.sched.Key().Nav; got == before {
		t.Fatalf("nav = %d, want a new navigation identity", got)
	}
}

func TestLike_UnauthenticatedRedirectsToLogin(t *testing.T) {
	h := newHarness(t, false)

	msg := h.run(h.press("l"))
	if done := msg.(actionDoneMsg); !errors.Is(done.err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v", done.err)
	}
	if h.m.view != viewLogin {
		t.Fatalf("view = %v, want login", h.m.view)
	}
	if h.m.notice != "Please log in first" {
		t.Fatalf("notice = %q", h.m.notice)
	}
	if h.sched.Running() {
		t.Fatal("polling must stop on the login view")
	}
	posts, _ := h.mock.ListPosts(context.Background())
	if posts[0].Likes != 3 {
		t.Fatalf("likes = %d, want unchanged", posts[0].Likes)
	}
}

func TestLike_ReloadShowsServerState(t *testing.T) {
	h := newHarness(t, true)

	h.run(h.press("l"))
	p, ok := h.m.selectedPost()
	if !ok || !p.IsLiked || p.Likes != 4 {
		t.Fatalf("post = %+v, want liked with 4 likes", p)
	}
	if !strings.Contains(h.m.View(), "♥ 4") {
		t.Fatal("card should show the liked marker")
	}
}

func TestComments_OpensWhenLoggedIn(t *testing.T) {
	h := newHarness(t, true)

	h.run(h.press("c"))
	if h.m.view != viewComments || h.m.post.ID != "1" {
		t.Fatalf("view = %v post = %s", h.m.view, h.m.post.ID)
	}
	if !strings.Contains(h.m.View(), "Comments on Gopher Board") {
		t.Fatal("comments header missing")
	}
}

func TestLogin_RetryReturnsToFeed(t *testing.T) {
	h := newHarness(t, false)
	h.run(h.press("l"))
	h.mock.SetAuthenticated(true)

	h.run(h.press("r"))
	if h.m.view != viewFeed || h.m.notice != "Logged in" {
		t.Fatalf("view = %v notice = %q", h.m.view, h.m.notice)
	}
}

func TestNavigateToFeed_ClearsSearch(t *testing.T) {
	h := newHarness(t, true)
	h.m.session.SetQuery("rust")

	h.update(navMsg{to: viewFeed, query: "rust"})
	if q := h.m.session.Filter().Query; q != "" {
		t.Fatalf("query = %q, want cleared", q)
	}
	if h.sched.Key().Query != "" {
		t.Fatal("polling should restart on the unfiltered feed")
	}
}

func TestNavigateToFeed_StaleFailureKeepsNewQuery(t *testing.T) {
	h := newHarness(t, true)
	h.m.session.SetQuery("go")
	h.m.search.SetValue("go")

	// The search for "rust" failed after the user had moved on to "go".
	h.update(navMsg{to: viewFeed, query: "rust"})
	if q := h.m.session.Filter().Query; q != "go" {
		t.Fatalf("query = %q, want the newer query kept", q)
	}
	if v := h.m.search.Value(); v != "go" {
		t.Fatalf("search box = %q", v)
	}
}

func TestNotice_ClearsOnlyLatest(t *testing.T) {
	h := newHarness(t, true)
	h.update(noticeMsg{text: "first"})
	h.update(noticeMsg{text: "second"})

	h.update(clearNoticeMsg{seq: h.m.noticeSeq - 1})
	if h.m.notice != "second" {
		t.Fatalf("notice = %q", h.m.notice)
	}
	h.update(clearNoticeMsg{seq: h.m.noticeSeq})
	if h.m.notice != "" {
		t.Fatalf("notice = %q, want cleared", h.m.notice)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 5); got != "héllo" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunes("short", 60); got != "short" {
		t.Fatalf("got %q", got)
	}
}

func TestAnalyticsPanel_EmptySummary(t *testing.T) {
	msgs := make(chan tea.Msg, 16)
	mock := collector.NewMockClientWithPosts("you", true, 0, []domain.Post{{ID: "1", Title: "theirs", Author: "sam"}})
	s := feed.NewSession(mock, SessionOptions(func(msg tea.Msg) { msgs <- msg }, feed.Options{}))
	m := NewModel(context.Background(), s, feed.NewScheduler(s, feed.SchedulerOptions{NewTicker: idleTicker}), nil)
	_ = s.LoadAnalytics(context.Background())
	_ = s.LoadProjects(context.Background())

	if got := strings.Count(m.View(), noProjectsText); got != 2 {
		t.Fatalf("%q shown %d times, want in both panels", noProjectsText, got)
	}
}
