package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	MinTextareaHeight = 3
	MaxTextareaHeight = 10

	MinViewportHeight = 1
	InputBorderHeight = 2
	HeaderHeight      = 2

	MessagePaddingLeft = 2
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	FileColor      = lipgloss.Color("#F472B6") // Pink
)

// Title bar
var TitleStyle = lipgloss.NewStyle().
	Background(PrimaryColor).
	Foreground(TextColor).
	Bold(true)

// Messages.
var (
	messageStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(PrimaryColor).
				MarginLeft(10)

	AgentMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(SecondaryColor).
				MarginRight(10)

	AgentLabelStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(DimTextColor).
			Italic(true).
			PaddingLeft(MessagePaddingLeft)

	MessageErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Italic(true).
				PaddingLeft(MessagePaddingLeft)
)

// File attachments
var FileStyle = lipgloss.NewStyle().
	Foreground(FileColor).
	Italic(true)

// Error
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ErrorColor).
	Bold(true)

// Input area
var TextAreaStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(PrimaryColor).
	PaddingLeft(1)

// Spinner
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(SecondaryColor)

// Help text
var HelpStyle = lipgloss.NewStyle().
	Foreground(MutedColor).
	Italic(true)

// Viewport
var ViewportStyle = lipgloss.NewStyle().Margin(0).Padding(0)

// MessageHorizontalFrameSize returns the horizontal frame size of agent messages.
func MessageHorizontalFrameSize() int {
	return AgentMessageStyle.GetHorizontalFrameSize()
}
