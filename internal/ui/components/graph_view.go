// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// GraphRenderer turns a normalised graph description into terminal output.
// The glamour renderer is rebuilt only when the width or palette changes.
type GraphRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// Render draws source through glamour as a mermaid block. When glamour
// cannot render it, the source is returned highlighted by chroma.
func (g *GraphRenderer) Render(source string, width int, dark bool) string {
	if g.renderer == nil || g.width != width || g.dark != dark {
		style := "light"
		if dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Printf("GRAPH_RENDERER_FAILED | error=%v", err)
			return Highlight(source, "", dark)
		}
		g.renderer, g.width, g.dark = r, width, dark
	}

	out, err := g.renderer.Render("```mermaid\n" + source + "\n```\n")
	if err != nil {
		log.Printf("GRAPH_RENDER_FAILED | error=%v", err)
		return Highlight(source, "", dark)
	}
	return strings.Trim(out, "\n")
}

// RenderGraphPanel draws the concept graph modal.
func RenderGraphPanel(theme *styles.Theme, g *panel.GraphPanel, r *GraphRenderer, loading string, width int) string {
	w := modalWidth(width)
	inner := w - 6

	var body string
	switch {
	case g.Phase() == panel.PhaseLoading:
		body = loading
	case g.Phase() == panel.PhaseFailed:
		body = theme.ErrorText.Render(panel.GraphErrorText)
	case g.Empty():
		body = theme.EmptyText.Render(panel.GraphEmptyText)
	default:
		body = r.Render(g.Source, inner, theme.IsDark)
	}

	content := theme.ModalTitle.Render("개념 그래프") + "\n\n" + body + "\n\n" +
		hints(theme, "esc", "닫기")
	return theme.Modal.Width(w).Render(lipgloss.NewStyle().MaxWidth(inner).Render(content))
}
