package session

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenthub/hubchat/engine"
)

// Messages produced by the async engine calls.

type sendDoneMsg struct {
	err error
}

type chatCreatedMsg struct {
	chatID string
	err    error
}

type pageLoadedMsg struct {
	err error
}

func (m *Model) sendMessage() tea.Cmd {
	userInput := strings.TrimSpace(m.textarea.Value())
	if userInput == "" {
		return nil
	}

	m.history.Add(userInput)
	m.historyNavigating = false
	m.lastSubmitted = userInput
	m.textarea.Reset()
	m.sending = true

	request := &engine.SendRequest{
		ChatID:     m.chatID,
		Message:    userInput,
		Files:      m.files,
		Agents:     m.agents,
		SyncCounts: true,
	}
	// Attachments ride along with the first message only.
	m.files = nil

	timeout := time.Duration(m.config.RequestTimeout) * time.Second
	if m.chatID == "" {
		return tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(m.ctx, timeout)
			defer cancel()
			chatID, err := m.engine.CreateChat(ctx, request)
			return chatCreatedMsg{chatID: chatID, err: err}
		})
	}
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, timeout)
		defer cancel()
		return sendDoneMsg{err: m.engine.SendQuery(ctx, request)}
	})
}

// loadOlder fetches the next history page for the open chat.
func (m *Model) loadOlder() tea.Cmd {
	if m.chatID == "" || m.loading {
		return nil
	}
	m.loading = true
	chatID := m.chatID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, time.Duration(m.config.RequestTimeout)*time.Second)
		defer cancel()
		return pageLoadedMsg{err: m.engine.LoadChatQueries(ctx, chatID)}
	}
}

// abort abandons the in-flight query.
func (m *Model) abort() {
	m.engine.AbortLastQuery()
	m.sending = false
	m.refreshViewport(true)
}

// lastResponse returns the most recent completed response, for clipboard
// copy.
func (m *Model) lastResponse() string {
	queries := m.queries()
	for i := len(queries) - 1; i >= 0; i-- {
		if queries[i].Response != "" {
			return queries[i].Response
		}
	}
	return ""
}
