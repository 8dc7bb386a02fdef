package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qepting91/devfeed/internal/domain"
)

const (
	cardPitchRunes    = 150
	projectPitchRunes = 60
	sidePanelWidth    = 30
	cardHeight        = 7
	defaultAvatar     = "/images/default-avatar.png"
	emptyFeedText     = "No posts match the selected tags."
	noProjectsText    = "No projects yet"
)

func (m Model) View() string {
	var body string
	switch m.view {
	case viewDetail:
		body = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Developer Feed")+mutedStyle.Render(" / post "+string(m.post.ID)),
			m.detail.View(),
		)
	case viewComments:
		body = renderComments(m.post, m.width)
	case viewLogin:
		body = renderLogin()
	default:
		body = m.renderFeed()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) renderFeed() string {
	header := titleStyle.Render("Developer Feed")
	var search string
	switch q := m.session.Filter().Query; {
	case m.searching:
		search = m.search.View()
	case q != "":
		search = fmt.Sprintf("Search: %s %s", headingStyle.Render(q), mutedStyle.Render("(x to clear)"))
	default:
		search = mutedStyle.Render("/ to search")
	}
	top := lipgloss.JoinVertical(lipgloss.Left, header, search, "")

	mainWidth := m.width - 2*(sidePanelWidth+2)
	if mainWidth < 40 {
		// Too narrow for side panels: stack them under the posts.
		posts := m.renderPosts(m.width - 2)
		return lipgloss.JoinVertical(lipgloss.Left, top, posts, m.renderTags(m.width-4), m.renderAnalytics(m.width-4), m.renderProjects(m.width-4))
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderProjects(sidePanelWidth),
		m.renderAnalytics(sidePanelWidth),
	)
	main := m.renderPosts(mainWidth)
	right := m.renderTags(sidePanelWidth)
	return lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.JoinHorizontal(lipgloss.Top, left, " ", main, " ", right))
}

func (m Model) renderPosts(width int) string {
	visible := m.session.Visible()
	if len(visible) == 0 {
		return mutedStyle.Width(width).Align(lipgloss.Center).Render("\n" + emptyFeedText + "\n")
	}

	fit := (m.height - 6) / cardHeight
	if fit < 1 {
		fit = 1
	}
	start := 0
	if m.cursor >= fit {
		start = m.cursor - fit + 1
	}
	end := start + fit
	if end > len(visible) {
		end = len(visible)
	}

	cards := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		cards = append(cards, renderCard(visible[i], width, m.focus == focusPosts && i == m.cursor))
	}
	if end < len(visible) {
		cards = append(cards, mutedStyle.Render(fmt.Sprintf("  ↓ %d more", len(visible)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderCard(p domain.Post, width int, selected bool) string {
	avatar := "◉"
	if p.AuthorAvatar == "" {
		avatar = "○"
	}
	lines := []string{
		mutedStyle.Render(avatar+" "+p.Author) + "  " + headingStyle.Render(p.Title),
		truncateRunes(p.Pitch, cardPitchRunes),
		renderTagChips(p.Tags),
		renderCounters(p),
	}
	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func renderTagChips(tags domain.TagList) string {
	chips := make([]string, 0, len(tags))
	for _, t := range tags {
		chips = append(chips, tagStyle.Render("#"+t))
	}
	return strings.Join(chips, " ")
}

func renderCounters(p domain.Post) string {
	heart := "♡"
	if p.IsLiked {
		heart = "♥"
	}
	return fmt.Sprintf("%s  %s  %s",
		likeStyle.Render(fmt.Sprintf("%s %d", heart, p.Likes)),
		mutedStyle.Render(fmt.Sprintf("💬 %d", p.CommentCount())),
		viewStyle.Render(fmt.Sprintf("👁 %d", p.Views)),
	)
}

func (m Model) renderProjects(width int) string {
	lines := []string{headingStyle.Render("My Projects")}
	projects := m.session.Projects()
	if len(projects) == 0 {
		lines = append(lines, mutedStyle.Render(noProjectsText))
	}
	for _, p := range projects {
		lines = append(lines, p.Title, mutedStyle.Render(truncateRunes(p.Pitch, projectPitchRunes)))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderAnalytics(width int) string {
	lines := []string{headingStyle.Render("My Analytics")}
	a := m.session.Analytics()
	if a == nil || a.Empty() {
		lines = append(lines, mutedStyle.Render(noProjectsText))
	} else {
		if a.MostLiked != nil {
			lines = append(lines,
				likeStyle.Render("♥ ")+"Most Liked: "+a.MostLiked.Title,
				mutedStyle.Render(fmt.Sprintf("  %d likes", a.MostLiked.LikeCount)))
		}
		if a.MostViewed != nil {
			lines = append(lines,
				viewStyle.Render("👁 ")+"Most Viewed: "+a.MostViewed.Title,
				mutedStyle.Render(fmt.Sprintf("  %d views", a.MostViewed.ViewCount)))
		}
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTags(width int) string {
	lines := []string{headingStyle.Render("Filter by Tags")}
	filter := m.session.Filter()
	for i, t := range m.tags {
		box := "[ ]"
		if filter.IsSelected(t) {
			box = "[x]"
		}
		line := box + " " + t
		if m.focus == focusTags && i == m.tagCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if filter.Searching() && len(filter.Selected) > 0 {
		lines = append(lines, mutedStyle.Render("(ignored while searching)"))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	var help string
	switch m.view {
	case viewDetail:
		help = "j/k scroll · l like · c comments · esc back · q quit"
	case viewComments:
		help = "esc back · q quit"
	case viewLogin:
		help = "r check again · esc back · q quit"
	default:
		if m.focus == focusTags {
			help = "j/k move · space toggle tag · tab posts · / search · q quit"
		} else {
			help = "j/k move · enter open · l like · c comments · tab tags · / search · r refresh · q quit"
		}
	}
	footer := mutedStyle.Render(help)
	if m.notice != "" {
		footer = noticeStyle.Render(m.notice) + "\n" + footer
	}
	return footer
}

func renderDetail(p domain.Post, width int) string {
	avatar := p.AuthorAvatar
	if avatar == "" {
		avatar = defaultAvatar
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, "`"+t+"`")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "by **%s** (avatar: %s)\n\n", p.Author, avatar)
	if len(tags) > 0 {
		fmt.Fprintf(&b, "%s\n\n", strings.Join(tags, " "))
	}
	fmt.Fprintf(&b, "%d likes · %d views · %d comments\n\n", p.Likes, p.Views, p.CommentCount())
	if p.Pitch != "" {
		fmt.Fprintf(&b, "> %s\n\n", p.Pitch)
	}
	b.WriteString(p.Description)

	liked := "not liked"
	if p.IsLiked {
		liked = "liked"
	}
	return renderMarkdown(b.String(), width-4) + "\n\n" + likeStyle.Render("  You have "+liked+" this post")
}

type commentView struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

func renderComments(p domain.Post, width int) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Comments on %s (%d)", p.Title, p.CommentCount())), ""}
	if p.CommentCount() == 0 {
		lines = append(lines, mutedStyle.Render("No comments yet."))
	}
	for _, raw := range p.Comments {
		var c commentView
		if err := json.Unmarshal(raw, &c); err == nil && c.Content != "" {
			author := c.Author
			if author == "" {
				author = "anonymous"
			}
			lines = append(lines, headingStyle.Render(author), lipgloss.NewStyle().Width(width-4).Render(c.Content), "")
			continue
		}
		lines = append(lines, mutedStyle.Render("comment "+string(raw)))
	}
	return strings.Join(lines, "\n")
}

func renderLogin() string {
	return strings.Join([]string{
		titleStyle.Render("Please log in first"),
		"",
		"Liking posts and reading comments need a logged-in session.",
		"Set DEVFEED_TOKEN or DEVFEED_SESSION_ID (in the environment or .env),",
		"then press r to check again.",
	}, "\n")
}

// truncateRunes keeps the first n runes of s.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
