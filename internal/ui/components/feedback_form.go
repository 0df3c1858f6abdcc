// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// FeedbackForm is the negative feedback modal: a reason list and a free text
// area used for the "other" reason.
type FeedbackForm struct {
	Dialog *panel.FeedbackDialog
	text   textarea.Model
}

// NewFeedbackForm wraps d. The text area starts with the dialog's text.
func NewFeedbackForm(d *panel.FeedbackDialog) *FeedbackForm {
	ta := textarea.New()
	ta.Placeholder = "사유를 자세히 적어주세요"
	ta.ShowLineNumbers = false
	ta.CharLimit = 500
	ta.SetHeight(3)
	ta.SetValue(d.ReasonText)
	f := &FeedbackForm{Dialog: d, text: ta}
	f.syncFocus()
	return f
}

func (f *FeedbackForm) syncFocus() {
	if f.Dialog.NeedsText() {
		f.text.Focus()
	} else {
		f.text.Blur()
	}
}

// Move changes the selected reason.
func (f *FeedbackForm) Move(delta int) {
	f.Dialog.Move(delta)
	f.syncFocus()
}

// Select chooses reason i.
func (f *FeedbackForm) Select(i int) {
	f.Dialog.Select(i)
	f.syncFocus()
}

// TextFocused reports whether key presses go to the text area.
func (f *FeedbackForm) TextFocused() bool { return f.text.Focused() }

// Update forwards a message to the text area.
func (f *FeedbackForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.text, cmd = f.text.Update(msg)
	f.Dialog.ReasonText = f.text.Value()
	return cmd
}

// Submit copies the text and validates the dialog.
func (f *FeedbackForm) Submit() (api.FeedbackRequest, bool) {
	f.Dialog.ReasonText = f.text.Value()
	return f.Dialog.Submit()
}

// View draws the form.
func (f *FeedbackForm) View(theme *styles.Theme, width int) string {
	w := modalWidth(width)
	f.text.SetWidth(w - 8)

	var b strings.Builder
	b.WriteString(theme.ModalTitle.Render("개선이 필요한 이유를 알려주세요"))
	b.WriteString("\n\n")
	selected := f.Dialog.Selected()
	for i, r := range model.Reasons {
		marker := "( )"
		style := theme.OptionItem
		if i == selected {
			marker = "(•)"
			style = theme.OptionCursor
		}
		b.WriteString(style.Render(marker + " " + string(rune('1'+i)) + ". " + r.Label))
		b.WriteString("\n")
	}
	if f.Dialog.NeedsText() {
		b.WriteString("\n")
		b.WriteString(f.text.View())
		b.WriteString("\n")
	}
	if f.Dialog.Prompt != "" {
		b.WriteString("\n")
		b.WriteString(theme.ValidationMsg.Render(f.Dialog.Prompt))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hints(theme, "↑/↓", "선택", "ctrl+s", "제출", "ctrl+x", "피드백 삭제", "esc", "닫기"))
	return theme.Modal.Width(w).Render(lipgloss.NewStyle().Width(w - 6).Render(b.String()))
}
