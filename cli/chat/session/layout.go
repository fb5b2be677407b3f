package session

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/agenthub/hubchat/cli/chat/styles"
)

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1

	newHeight := lineCount
	if newHeight < styles.MinTextareaHeight {
		newHeight = styles.MinTextareaHeight
	}
	if newHeight > styles.MaxTextareaHeight {
		newHeight = styles.MaxTextareaHeight
	}

	oldHeight := m.textarea.Height()
	if oldHeight != newHeight {
		m.textarea.SetHeight(newHeight)
		m.recalculateLayout()
		if m.ready {
			m.viewport.LineDown(newHeight - oldHeight)
		}
	}
}

// recalculateLayout adjusts viewport and textarea dimensions based on the
// current window size.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	viewportHeight := m.height - styles.HeaderHeight
	viewportHeight -= m.textarea.Height() + styles.InputBorderHeight
	if m.err != nil {
		viewportHeight--
	}
	if viewportHeight < styles.MinViewportHeight {
		viewportHeight = styles.MinViewportHeight
	}

	m.renderer.SetWidth(m.width - styles.MessageHorizontalFrameSize())

	if !m.ready {
		m.viewport = viewport.New(m.width, viewportHeight)
		m.ready = true
		m.viewport.SetContent(m.renderQueries())
		m.viewport.GotoBottom()
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
		m.viewport.SetContent(m.renderQueries())
	}

	m.textarea.SetWidth(m.width - styles.TextAreaStyle.GetHorizontalPadding() - styles.TextAreaStyle.GetHorizontalBorderSize())
}

// refreshViewport re-renders the conversation. The scroll position is kept
// unless gotoBottom is set or the user was already at the bottom.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderQueries())
	if gotoBottom || wasAtBottom {
		m.viewport.GotoBottom()
	}
}
