package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders Markdown source for a terminal of the given width
type MarkdownRenderer interface {
	Render(markdown string, width int) (string, error)
}

// GlamourRenderer renders Markdown with glamour, keeping one term renderer
// per wrap width
type GlamourRenderer struct {
	style string

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// NewGlamourRenderer creates a renderer using a glamour standard style
// ("dark", "light", "notty", ...)
func NewGlamourRenderer(style string) *GlamourRenderer {
	if style == "" {
		style = "dark"
	}
	return &GlamourRenderer{style: style, byWidth: make(map[int]*glamour.TermRenderer)}
}

// Render renders markdown wrapped to width
func (g *GlamourRenderer) Render(markdown string, width int) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	if width < 20 {
		width = 20
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.byWidth[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(g.style),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return "", fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		g.byWidth[width] = r
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
