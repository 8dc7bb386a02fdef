package tui

import "github.com/charmbracelet/lipgloss"

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "245")
	colorAccent   = ac("26", "75")
	colorLike     = ac("160", "203")
	colorView     = ac("28", "78")
	colorTag      = ac("25", "111")
	colorBorder   = ac("250", "240")
	colorSelected = ac("232", "255")
	colorNotice   = ac("130", "214")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	likeStyle     = lipgloss.NewStyle().Foreground(colorLike)
	viewStyle     = lipgloss.NewStyle().Foreground(colorView)
	tagStyle      = lipgloss.NewStyle().Foreground(colorTag)
	noticeStyle   = lipgloss.NewStyle().Foreground(colorNotice).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorSelected).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	cardSelectedStyle = cardStyle.BorderForeground(colorSelected)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)
