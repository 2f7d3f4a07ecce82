package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/evry-ai/evry/internal/chat"
)

func (m Model) waitEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

// sendCmd submits text and drives the stream to completion. Deltas reach
// the UI through the event bridge while this runs.
func (m Model) sendCmd(text string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return sendDoneMsg{err: engine.Send(context.Background(), text)}
	}
}

// closeCmd freezes and saves the active session.
func (m Model) closeCmd() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return sessionClosedMsg{session: engine.CloseSession(context.Background())}
	}
}

// switchCmd saves the active session and loads a stored one in its place.
func (m Model) switchCmd(id string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		engine.CloseSession(context.Background())
		return sessionSwitchedMsg{id: id, ok: engine.LoadSession(id)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		inputCmd tea.Cmd
		vpCmd    tea.Cmd
		spCmd    tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			if m.mode == sessionsView {
				m.mode = chatView
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyCtrlN:
			if m.mode != chatView {
				return m, nil
			}
			m.statusLine = "Saving session..."
			return m, m.closeCmd()

		case tea.KeyCtrlS:
			if m.mode == chatView {
				m.openSessionList()
				return m, nil
			}

		case tea.KeyEnter:
			if m.mode == sessionsView {
				if item, ok := m.sessionList.SelectedItem().(sessionItem); ok {
					m.mode = chatView
					m.statusLine = "Loading session..."
					return m, m.switchCmd(item.id)
				}
				return m, nil
			}
			return m.submitInput()
		}

	case engineEventMsg:
		m.refreshTranscript()
		return m, m.waitEvent()

	case sendDoneMsg:
		if msg.err != nil {
			m.logger.Warn("send failed", zap.Error(msg.err))
		}
		m.refreshTranscript()
		return m, nil

	case sessionClosedMsg:
		if msg.session != nil {
			m.statusLine = "Saved: " + msg.session.Title
		} else {
			m.statusLine = ""
		}
		m.refreshTranscript()
		return m, nil

	case sessionSwitchedMsg:
		if msg.ok {
			m.statusLine = ""
		} else {
			m.statusLine = "Session not found"
			m.logger.Warn("session load failed", zap.String("id", msg.id))
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	if m.mode == sessionsView {
		var cmd tea.Cmd
		m.sessionList, cmd = m.sessionList.Update(msg)
		return m, cmd
	}

	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// submitInput sends the typed text. A stream already in flight rejects the
// submission outright; the draft stays in the input box.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.engine.Status() == chat.StatusAwaiting {
		m.statusLine = "Still responding, hold on"
		return m, nil
	}
	m.input.Reset()
	m.statusLine = ""
	return m, m.sendCmd(text)
}

func (m *Model) openSessionList() {
	sessions := m.engine.Directory().List()
	items := make([]list.Item, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		items = append(items, sessionItem{id: s.ID, title: s.Title, turns: len(s.Transcript)})
	}
	m.sessionList.SetItems(items)
	m.mode = sessionsView
}

func (m *Model) layout() {
	inputHeight := m.input.Height() + 1
	chromeHeight := 3
	vpHeight := m.height - inputHeight - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(m.width)
	m.sessionList.SetSize(m.width, m.height-2)
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
