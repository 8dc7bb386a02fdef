package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/feed"
)

type view int

const (
	viewFeed view = iota
	viewDetail
	viewComments
	viewLogin
)

type focus int

const (
	focusPosts focus = iota
	focusTags
)

const noticeTimeout = 4 * time.Second

type clearNoticeMsg struct{ seq int }

type actionDoneMsg struct {
	action string
	err    error
}

type authCheckedMsg struct{ ok bool }

type Model struct {
	ctx     context.Context
	session *feed.Session
	sched   *feed.Scheduler
	tags    []string

	view      view
	focus     focus
	cursor    int
	tagCursor int
	nav       uint64

	searching bool
	search    textinput.Model

	post   domain.Post
	detail viewport.Model

	width  int
	height int

	notice    string
	noticeSeq int
}

func NewModel(ctx context.Context, session *feed.Session, sched *feed.Scheduler, tags []string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search projects"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	if len(tags) == 0 {
		tags = domain.DefaultTags
	}
	return Model{
		ctx:     ctx,
		session: session,
		sched:   sched,
		tags:    tags,
		search:  ti,
		detail:  viewport.New(80, 20),
		width:   100,
		height:  30,
		nav:     1,
	}
}

// Init starts polling for the feed view the program opens on.
func (m Model) Init() tea.Cmd {
	m.sched.Start(m.ctx, feed.Key{Query: m.session.Filter().Query, Nav: m.nav})
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDetail()
		return m, nil

	case changedMsg:
		if msg.kind == feed.ChangeFeed {
			m.clampCursor()
			if m.view == viewDetail || m.view == viewComments {
				m.refreshPost()
			}
		}
		return m, nil

	case navMsg:
		return m.navigate(msg)

	case noticeMsg:
		return m.showNotice(msg.text)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case actionDoneMsg:
		return m, nil

	case authCheckedMsg:
		if msg.ok {
			m.enterFeed()
			return m.showNotice("Logged in")
		}
		return m.showNotice("Still not logged in")

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.view {
		case viewDetail:
			return m.updateDetail(msg)
		case viewComments:
			return m.updateComments(msg)
		case viewLogin:
			return m.updateLogin(msg)
		default:
			return m.updateFeed(msg)
		}
	}
	return m, nil
}

func (m Model) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			if m.session.SetQuery(strings.TrimSpace(m.search.Value())) {
				m.cursor = 0
				m.restartPolling()
			}
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue(m.session.Filter().Query)
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "x":
		m.search.SetValue("")
		if m.session.SetQuery("") {
			m.cursor = 0
			m.restartPolling()
		}
		return m, nil
	case "tab":
		if m.focus == focusPosts {
			m.focus = focusTags
		} else {
			m.focus = focusPosts
		}
		return m, nil
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "r":
		return m, tea.Batch(m.loadCmd(m.session.LoadFeed), m.loadCmd(m.session.LoadAnalytics), m.loadCmd(m.session.LoadProjects))
	}

	if m.focus == focusTags {
		switch msg.String() {
		case " ", "enter":
			if len(m.tags) > 0 {
				m.session.ToggleTag(m.tags[m.tagCursor])
				m.clampCursor()
			}
		}
		return m, nil
	}

	p, ok := m.selectedPost()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter":
		return m.openPost(p)
	case "l":
		return m, m.likeCmd(p.ID)
	case "c":
		return m, m.commentsCmd(p.ID)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "backspace":
		m.enterFeed()
		return m, nil
	case "l":
		return m, m.likeCmd(m.post.ID)
	case "c":
		return m, m.commentsCmd(m.post.ID)
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) updateComments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "backspace":
		m.view = viewDetail
		m.setDetailContent()
		return m, nil
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "backspace":
		m.enterFeed()
		return m, nil
	case "r":
		s, ctx := m.session, m.ctx
		return m, func() tea.Msg {
			return authCheckedMsg{ok: s.Authenticated(ctx)}
		}
	}
	return m, nil
}

// navigate applies a navigation request from the session.
func (m Model) navigate(msg navMsg) (tea.Model, tea.Cmd) {
	switch msg.to {
	case viewFeed:
		// A failed search falls back to the unfiltered feed, unless the
		// user has moved on to another query since.
		if msg.query != m.session.Filter().Query {
			return m, nil
		}
		m.search.SetValue("")
		m.session.SetQuery("")
		m.enterFeed()
	case viewLogin:
		m.leaveFeed()
		m.view = viewLogin
	case viewDetail:
		if p, ok := m.findPost(msg.id); ok {
			m.leaveFeed()
			m.post = p
			m.view = viewDetail
			m.setDetailContent()
		}
	case viewComments:
		if p, ok := m.findPost(msg.id); ok {
			m.post = p
		}
		m.leaveFeed()
		m.view = viewComments
	}
	return m, nil
}

// openPost shows the detail view first and records the view afterwards, so
// navigation never waits on the network.
func (m Model) openPost(p domain.Post) (tea.Model, tea.Cmd) {
	m.leaveFeed()
	m.post = p
	m.view = viewDetail
	m.setDetailContent()

	s, ctx, id := m.session, m.ctx, p.ID
	return m, func() tea.Msg {
		return actionDoneMsg{action: "view", err: s.RecordView(ctx, id)}
	}
}

func (m Model) likeCmd(id domain.PostID) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: "like", err: s.ToggleLike(ctx, id)}
	}
}

func (m Model) commentsCmd(id domain.PostID) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: "comments", err: s.OpenComments(ctx, id)}
	}
}

func (m Model) loadCmd(load func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_ = load(ctx)
		return nil
	}
}

func (m Model) showNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.sched.Stop()
	return m, tea.Quit
}

// enterFeed shows the feed view under a fresh navigation identity, which
// restarts polling.
func (m *Model) enterFeed() {
	m.view = viewFeed
	m.nav++
	m.clampCursor()
	m.restartPolling()
}

func (m *Model) leaveFeed() {
	if m.view == viewFeed {
		m.sched.Stop()
	}
}

func (m *Model) restartPolling() {
	m.sched.Restart(m.ctx, feed.Key{Query: m.session.Filter().Query, Nav: m.nav})
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusTags {
		m.tagCursor = clamp(m.tagCursor+delta, len(m.tags))
		return
	}
	m.cursor = clamp(m.cursor+delta, len(m.session.Visible()))
}

func (m *Model) clampCursor() {
	m.cursor = clamp(m.cursor, len(m.session.Visible()))
	m.tagCursor = clamp(m.tagCursor, len(m.tags))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m Model) selectedPost() (domain.Post, bool) {
	visible := m.session.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.Post{}, false
	}
	return visible[m.cursor], true
}

func (m Model) findPost(id domain.PostID) (domain.Post, bool) {
	for _, p := range m.session.Snapshot().Posts {
		if p.ID == id {
			return p, true
		}
	}
	if m.post.ID == id {
		return m.post, true
	}
	return domain.Post{}, false
}

// refreshPost picks up new counters for the open post after a reload.
func (m *Model) refreshPost() {
	if p, ok := m.findPost(m.post.ID); ok {
		m.post = p
		if m.view == viewDetail {
			offset := m.detail.YOffset
			m.setDetailContent()
			m.detail.SetYOffset(offset)
		}
	}
}

func (m *Model) resizeDetail() {
	m.detail.Width = m.width
	h := m.height - 3
	if h < 3 {
		h = 3
	}
	m.detail.Height = h
	if m.view == viewDetail {
		m.setDetailContent()
	}
}

func (m *Model) setDetailContent() {
	m.detail.SetContent(renderDetail(m.post, m.width))
	m.detail.GotoTop()
}
