package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer renders response markdown for terminal display. Responses
// arrive whole (the backend does not stream), so rendered output is cached
// by content.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
	cache   map[string]string
}

// NewRenderer creates a renderer wrapping at the given width.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		glamour: gr,
		width:   width,
		cache:   map[string]string{},
	}, nil
}

// Width the renderer wraps at.
func (r *Renderer) Width() int {
	return r.width
}

// SetWidth rebuilds the renderer at a new wrap width and drops the cache,
// which is keyed by content only.
func (r *Renderer) SetWidth(width int) {
	if width < 1 {
		width = 1
	}
	if width == r.width {
		return
	}
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	r.glamour = gr
	r.width = width
	r.cache = map[string]string{}
}

// Render markdown to ANSI. Falls back to the raw text if glamour chokes.
func (r *Renderer) Render(content string) string {
	if rendered, ok := r.cache[content]; ok {
		return rendered
	}
	rendered, err := r.glamour.Render(content)
	if err != nil {
		rendered = content
	}
	rendered = strings.Trim(rendered, "\n")
	r.cache[content] = rendered
	return rendered
}
