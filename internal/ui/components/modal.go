// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// modalWidth returns the box width for a screen of width w.
func modalWidth(w int) int {
	mw := w * 2 / 3
	if mw > 72 {
		mw = 72
	}
	if mw < 30 {
		mw = min(30, w)
	}
	return mw
}

// Overlay centers box on a width x height screen.
func Overlay(box string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderAlert draws a blocking alert.
func RenderAlert(theme *styles.Theme, text string, width int) string {
	w := modalWidth(width)
	body := lipgloss.NewStyle().Width(w - 6).Render(text)
	return theme.AlertModal.Width(w).Render(
		body + "\n\n" + theme.ModalHint.Render("enter/esc 닫기"),
	)
}

// RenderConfirm draws a yes/no question.
func RenderConfirm(theme *styles.Theme, text string, width int) string {
	w := modalWidth(width)
	body := lipgloss.NewStyle().Width(w - 6).Render(text)
	return theme.Modal.Width(w).Render(
		body + "\n\n" + hints(theme, "y/enter", "삭제", "n/esc", "취소"),
	)
}

// hints renders key/description pairs.
func hints(theme *styles.Theme, pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, theme.ShortcutKey.Render(pairs[i])+" "+theme.ShortcutDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
