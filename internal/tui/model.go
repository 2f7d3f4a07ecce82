// Package tui implements the interactive chat terminal on bubbletea.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/evry-ai/evry/internal/chat"
)

type viewMode int

const (
	chatView viewMode = iota
	sessionsView
)

// Messages flowing through the update loop.
type (
	// engineEventMsg is pushed by the engine hooks whenever a fragment
	// lands or the conversation state changes.
	engineEventMsg struct{}

	// sendDoneMsg reports the end of a Send call.
	sendDoneMsg struct{ err error }

	// sessionClosedMsg reports the outcome of closing the active session.
	sessionClosedMsg struct{ session *chat.Session }

	// sessionSwitchedMsg reports a close-then-load of a saved session.
	sessionSwitchedMsg struct {
		id string
		ok bool
	}
)

// NewEventBridge returns the engine hooks and the channel they feed. Hook
// callbacks run on the streaming goroutine, so events are dropped rather
// than blocked on when the UI falls behind; a coalesced refresh repaints
// the full transcript anyway.
func NewEventBridge() (chan tea.Msg, chat.Hooks) {
	events := make(chan tea.Msg, 64)
	push := func() {
		select {
		case events <- engineEventMsg{}:
		default:
		}
	}
	return events, chat.Hooks{
		OnDelta:       func(string) { push() },
		OnStateChange: func() { push() },
	}
}

type styles struct {
	userLabel      lipgloss.Style
	assistantLabel lipgloss.Style
	status         lipgloss.Style
	help           lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		userLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		assistantLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		status:         lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		help:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// sessionItem adapts a saved session for the bubbles list.
type sessionItem struct {
	id    string
	title string
	turns int
}

func (i sessionItem) Title() string       { return i.title }
func (i sessionItem) Description() string { return fmt.Sprintf("%d turns", i.turns) }
func (i sessionItem) FilterValue() string { return i.title }

// Model is the root bubbletea model.
type Model struct {
	engine *chat.Engine
	events chan tea.Msg
	logger *zap.Logger

	viewport    viewport.Model
	input       textarea.Model
	spinner     spinner.Model
	sessionList list.Model

	mode          viewMode
	ready         bool
	width, height int
	statusLine    string
	initialPrompt string

	styles styles
}

// New builds the chat model. events must be the channel returned by
// NewEventBridge for the same engine. A non-empty initialPrompt is
// submitted as soon as the program starts.
func New(engine *chat.Engine, events chan tea.Msg, logger *zap.Logger, initialPrompt string) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.CharLimit = 0
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	delegate := list.NewDefaultDelegate()
	sessionList := list.New(nil, delegate, 0, 0)
	sessionList.Title = "Saved sessions"
	sessionList.SetShowStatusBar(false)

	return Model{
		engine:        engine,
		events:        events,
		logger:        logger,
		input:         input,
		spinner:       sp,
		sessionList:   sessionList,
		initialPrompt: initialPrompt,
		styles:        defaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, m.waitEvent()}
	if m.initialPrompt != "" {
		cmds = append(cmds, m.sendCmd(m.initialPrompt))
	}
	return tea.Batch(cmds...)
}

// Run starts the program on the alternate screen and blocks until exit.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
