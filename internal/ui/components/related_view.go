// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// RenderRelatedPanel draws the related questions modal.
func RenderRelatedPanel(theme *styles.Theme, r *panel.RelatedPanel, loading string, width int) string {
	w := modalWidth(width)

	var b strings.Builder
	b.WriteString(theme.ModalTitle.Render("관련 질문"))
	b.WriteString("\n\n")
	switch r.Phase() {
	case panel.PhaseLoading:
		b.WriteString(loading)
	case panel.PhaseFailed:
		b.WriteString(theme.ErrorText.Render(panel.RelatedErrorText))
	default:
		if len(r.Questions) == 0 {
			b.WriteString(theme.EmptyText.Render(panel.RelatedEmptyText))
		}
		for i, q := range r.Questions {
			if i > 0 {
				b.WriteString("\n")
			}
			if i == r.Cursor {
				b.WriteString(theme.OptionCursor.Render("› " + q))
			} else {
				b.WriteString(theme.OptionItem.Render("  " + q))
			}
		}
	}
	b.WriteString("\n\n")
	b.WriteString(hints(theme, "↑/↓", "선택", "enter", "입력창에 넣기", "esc", "닫기"))
	return theme.Modal.Width(w).Render(lipgloss.NewStyle().Width(w - 6).Render(b.String()))
}
