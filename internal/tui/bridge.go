package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qepting91/devfeed/internal/domain"
	"github.com/qepting91/devfeed/internal/feed"
)

type changedMsg struct{ kind feed.ChangeKind }

type navMsg struct {
	to view
	id domain.PostID
	// query is the search that failed when to is viewFeed.
	query string
}

type noticeMsg struct{ text string }

// bridge turns session callbacks into program messages. Session callbacks
// fire on network goroutines, never inside Update, so send may block until
// the program reads the message.
type bridge struct {
	send func(tea.Msg)
}

func (b bridge) ToFeed(query string)         { b.send(navMsg{to: viewFeed, query: query}) }
func (b bridge) ToLogin()                    { b.send(navMsg{to: viewLogin}) }
func (b bridge) ToPost(id domain.PostID)     { b.send(navMsg{to: viewDetail, id: id}) }
func (b bridge) ToComments(id domain.PostID) { b.send(navMsg{to: viewComments, id: id}) }
func (b bridge) Notice(text string)          { b.send(noticeMsg{text: text}) }

// onChange forwards replaced state. Filter changes are made from Update
// itself and re-render without a message.
func (b bridge) onChange(kind feed.ChangeKind) {
	if kind == feed.ChangeFilter {
		return
	}
	b.send(changedMsg{kind: kind})
}

// SessionOptions wires a session's navigator, notifier and change hook to
// send.
func SessionOptions(send func(tea.Msg), opts feed.Options) feed.Options {
	b := bridge{send: send}
	opts.Navigator = b
	opts.Notifier = b
	opts.OnChange = b.onChange
	return opts
}
