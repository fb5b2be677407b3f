package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/agenthub/hubchat/engine"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	// Log for non-tick messages only
	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		default:
			log.Infow("update completed", "msg_type", fmt.Sprintf("%T", msg), "chat_id", m.chatID)
		}
	}()

	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.textarea.Focus()
		cmds = append(cmds, textarea.Blink)
		return m, tea.Batch(cmds...)

	case tea.BlurMsg:
		m.textarea.Blur()
		return m, nil

	case tea.KeyMsg:
		// Copy the latest response to clipboard.
		if msg.String() == "alt+w" {
			if content := m.lastResponse(); content != "" {
				clipboard.Write(clipboard.FmtText, []byte(content))
				cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
			}
			return m, tea.Batch(cmds...)
		}

		if msg.Alt && !m.sending {
			switch msg.String() {
			case "alt+p":
				if entry, ok := m.history.Previous(m.textarea.Value()); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
					return m, nil
				}
			case "alt+n":
				if entry, ok := m.history.Next(); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
					return m, nil
				}
			}
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			if m.sending {
				m.abort()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case tea.KeyCtrlJ:
			if !m.sending && strings.TrimSpace(m.textarea.Value()) != "" {
				return m, m.sendMessage()
			}

		case tea.KeyCtrlO:
			if cmd := m.loadOlder(); cmd != nil {
				cmds = append(cmds, cmd)
				return m, tea.Batch(cmds...)
			}

		case tea.KeyEnter:
			if m.historyNavigating {
				m.history.Reset()
				m.historyNavigating = false
			}
		}

		if !m.sending && m.historyNavigating {
			switch msg.Type {
			case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
				m.history.Reset()
				m.historyNavigating = false
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case chatCreatedMsg:
		m.sending = false
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.err = msg.err
			}
			m.refreshViewport(true)
			m.recalculateLayout()
			return m, nil
		}
		if msg.chatID != "" {
			m.chatID = msg.chatID
			if chat, ok := m.engine.Chat(m.chatID); ok {
				m.title = chat.Title
			}
		}
		m.err = nil
		m.refreshViewport(engine.IsNewQuery(m.queries(), m.lastSubmitted))
		m.recalculateLayout()
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		} else if msg.err == nil {
			m.err = nil
		}
		m.refreshViewport(engine.IsNewQuery(m.queries(), m.lastSubmitted))
		m.recalculateLayout()
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		}
		m.refreshViewport(false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.sending {
			// The optimistic placeholder appears between ticks.
			m.refreshViewport(false)
		}
	}

	if !m.sending {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.sending {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			switch msg.String() {
			case "j", "k", "g", "G", "u", "d", "b", "ctrl+u", "ctrl+d", "f", " ":
				// Don't pass vim navigation keys to viewport while typing
			default:
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
