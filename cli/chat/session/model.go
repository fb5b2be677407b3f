package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/agenthub/hubchat/cli/chat/styles"
	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/configuration"
	"github.com/agenthub/hubchat/internal/debug"
	"github.com/agenthub/hubchat/internal/history"
	"github.com/agenthub/hubchat/internal/markdown"
)

var log = debug.GetLogger()

// Model is the Bubble Tea model for a chat session. It reads engine
// snapshots and forwards user intents; all conversation state lives in the
// engine.
type Model struct {
	// Core dependencies
	ctx    context.Context
	config *configuration.Config
	engine *engine.Engine

	// Chat state. chatID is empty until a new conversation is persisted.
	chatID string
	title  string
	agents []string
	files  []string

	// lastSubmitted anchors the newness check across the placeholder
	// substitution.
	lastSubmitted string

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width    int
	height   int
	ready    bool
	sending  bool
	loading  bool
	err      error
	quitting bool

	// Alert notifications.
	alert bubbleup.AlertModel

	// Program reference for sending messages from goroutines
	program   *tea.Program
	programMu sync.Mutex

	// Input history
	history           *history.History
	historyNavigating bool
}

// New creates a new chat session model. chatID may be empty to start a new
// conversation on first send.
func New(
	ctx context.Context,
	config *configuration.Config,
	conversations *engine.Engine,
	chatID string,
	title string,
	agents []string,
	files []string,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Ctrl+J to send, Ctrl+O for older messages, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	renderer, err := markdown.NewRenderer(80)
	if err != nil {
		return nil, err
	}

	return &Model{
		ctx:      ctx,
		config:   config,
		engine:   conversations,
		chatID:   chatID,
		title:    title,
		agents:   agents,
		files:    files,
		textarea: ta,
		spinner:  sp,
		renderer: renderer,
		history:  history.New(),
		alert:    *bubbleup.NewAlertModel(25, true, 1),
	}, nil
}

// SetProgram sets the tea.Program reference for async message sending.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	m.program = p
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
	)
}

// Filter returns the message filter for the tea.Program.
func (m *Model) Filter() func(tea.Model, tea.Msg) tea.Msg {
	return func(model tea.Model, msg tea.Msg) tea.Msg { return msg }
}

// queries returns the query window to display: the temp chat while a new
// conversation is in flight, otherwise the engine's window for this chat.
func (m *Model) queries() []*engine.Query {
	if temp := m.engine.TempChat(); temp != nil {
		return temp.Queries
	}
	if m.chatID == "" {
		return nil
	}
	chat, ok := m.engine.Chat(m.chatID)
	if !ok {
		return nil
	}
	return chat.Queries
}
