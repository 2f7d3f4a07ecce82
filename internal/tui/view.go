package tui

import (
	"strings"

	"github.com/evry-ai/evry/internal/chat"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	if m.mode == sessionsView {
		return m.sessionList.View() + "\n" +
			m.styles.help.Render("enter: open  esc: back")
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("enter: send  ctrl+n: new chat  ctrl+s: sessions  esc: quit"))
	return b.String()
}

func (m Model) statusBar() string {
	if m.engine.Status() == chat.StatusAwaiting {
		return m.styles.status.Render(m.spinner.View() + "thinking...")
	}
	if m.statusLine != "" {
		return m.styles.status.Render(m.statusLine)
	}
	return ""
}

func (m Model) renderTranscript() string {
	turns := m.engine.Turns()
	if len(turns) == 0 {
		return m.styles.help.Render("No messages yet. Say something.")
	}

	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			b.WriteString(m.styles.userLabel.Render("You"))
		case chat.RoleAssistant:
			b.WriteString(m.styles.assistantLabel.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(t.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
