package chat

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/miosa/osa-history/style"
)

// renderers caches one glamour renderer per (style, width). Building a
// renderer parses the whole style sheet, so doing it per message would
// dominate a resize.
var renderers = struct {
	sync.Mutex
	byKey map[rendererKey]*glamour.TermRenderer
}{byKey: map[rendererKey]*glamour.TermRenderer{}}

type rendererKey struct {
	style string
	width int
}

func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	k := rendererKey{style: style.MarkdownStyle, width: width}
	renderers.Lock()
	defer renderers.Unlock()
	if r, ok := renderers.byKey[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(k.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers.byKey[k] = r
	return r, nil
}

// renderMarkdown renders markdown text using glamour, falling back to plain
// text on error.
func renderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := markdownRenderer(max(width, 10))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
