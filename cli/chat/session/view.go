package session

import (
	"fmt"
	"strings"

	"github.com/agenthub/hubchat/cli/chat/styles"
	"github.com/agenthub/hubchat/engine"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	b.WriteString(styles.ViewportStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	if m.sending {
		b.WriteString(fmt.Sprintf("%s Waiting for agents... (Ctrl+C to abort)\n", m.spinner.View()))
	} else {
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

func (m *Model) renderTitle() string {
	title := m.title
	if title == "" {
		title = "new chat"
	}
	agents := "auto"
	if len(m.agents) > 0 {
		agents = strings.Join(m.agents, ",")
	}
	header := fmt.Sprintf(" 💬 %s │ 🤖 %s ", title, agents)
	return styles.TitleStyle.Width(m.width).Render(header)
}

func (m *Model) renderQueries() string {
	var b strings.Builder

	contentWidth := m.viewport.Width

	if len(m.files) > 0 {
		for i, f := range m.files {
			b.WriteString(styles.FileStyle.Width(contentWidth).Render(fmt.Sprintf("📎 File #%d: %s", i+1, f)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	queries := m.queries()
	for i, query := range queries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(styles.UserMessageStyle.Render(query.Message))

		for _, file := range query.FilesUploaded {
			b.WriteString("\n")
			b.WriteString(styles.FileStyle.Render(fmt.Sprintf("📎 %s", file.Name)))
		}

		switch query.Status {
		case engine.QueryStatusPending:
			b.WriteString("\n\n")
			b.WriteString(styles.PendingStyle.Render("… waiting for agents"))

		case engine.QueryStatusFailed:
			b.WriteString("\n\n")
			b.WriteString(styles.MessageErrorStyle.Render(fmt.Sprintf("⚠️ %s", query.ErrorMessage)))

		default:
			b.WriteString("\n\n")
			if query.AgentUsed != "" {
				b.WriteString(styles.AgentLabelStyle.Render(fmt.Sprintf("🤖 %s", query.AgentUsed)))
				b.WriteString("\n")
			}
			b.WriteString(styles.AgentMessageStyle.Render(m.renderer.Render(query.Response)))
		}
	}

	return b.String()
}
