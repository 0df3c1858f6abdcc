// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/render"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
)

// Layout constants. They must stay in sync with the heights drawn in view.go.
const (
	headerHeight    = 1
	inputAreaHeight = 3
	statusBarHeight = 1
	sidebarWidth    = 30
)

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
}

// layout sizes the viewport and input for the current window and sidebar.
func (m *Model) layout() {
	chatWidth := m.chatWidth()

	vpHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = chatWidth
	m.viewport.Height = vpHeight

	const promptLen = 2 // "> "
	inputWidth := chatWidth - 4 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth
	m.rendered = 0
	m.session.Dirty++
}

func (m *Model) chatWidth() int {
	w := m.width
	if m.sidebarOpen {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.session.Dialog.Open() {
		return m.handleDialogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m, CreateConversationCmd(m.deps)

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen && m.focus == FocusSidebar {
			m.focusInput()
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == FocusSidebar {
			m.focusInput()
			return m, textinput.Blink
		}
		if m.sidebarOpen {
			m.focusSidebar()
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.session.RequestDelete(m.deleteTarget())
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if id, ok := m.session.Current(); ok {
			return m, m.loadMessages(id, true)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevAnswer):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextAnswer):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		log.Printf("LOGOUT | requested")
		return m, LogoutCmd(m.deps)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleSidebarKey moves through the conversation list.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sidebarCursor < len(m.session.Conversations)-1 {
			m.sidebarCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.sidebarCursor < len(m.session.Conversations) {
			id := m.session.Conversations[m.sidebarCursor].ID
			cmd := m.openConversation(id)
			m.focusInput()
			return m, tea.Batch(cmd, textinput.Blink)
		}
	case key.Matches(msg, m.keys.Close):
		m.focusInput()
		return m, textinput.Blink
	default:
		return m.handleActionKey(msg)
	}
	m.session.Dirty++
	return m, nil
}

// handleInputKey edits and submits the compose input. Single-character
// actions only fire while the input is empty so they never eat typing.
func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		return m, m.send()
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.Close):
		return m, nil
	}

	if m.input.Value() == "" {
		if next, cmd, ok := m.actionKey(msg); ok {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleActionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if next, cmd, ok := m.actionKey(msg); ok {
		return next, cmd
	}
	return m, nil
}

// actionKey handles the message actions and quick templates.
func (m Model) actionKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Template):
		tree := render.Build(m.session, render.Options{})
		if !tree.TemplatesVisible || tree.Kind != render.KindTemplates {
			return m, nil, false
		}
		i := int(msg.Runes[0] - '1')
		if i < 0 || i >= len(tree.Templates) {
			return m, nil, false
		}
		m.input.SetValue(tree.Templates[i].Prompt)
		m.input.CursorEnd()
		m.focusInput()
		return m, textinput.Blink, true

	case key.Matches(msg, m.keys.Positive):
		target := m.selectedMessage()
		if target == nil {
			return m, nil, true
		}
		return m, FeedbackCmd(m.deps, target.ID, panel.TogglePositive(target)), true

	case key.Matches(msg, m.keys.Negative):
		target := m.selectedMessage()
		if target == nil {
			return m, nil, true
		}
		m.feedback = components.NewFeedbackForm(panel.OpenNegative(target))
		m.session.OpenDialog(store.DialogFeedback, target.ID)
		return m, nil, true

	case key.Matches(msg, m.keys.Graph):
		target := m.toolTarget()
		if target == nil || !m.graph.Open(target.ID) {
			return m, nil, true
		}
		m.session.OpenDialog(store.DialogGraph, target.ID)
		return m, GraphCmd(m.deps, target.ID), true

	case key.Matches(msg, m.keys.Related):
		target := m.toolTarget()
		if target == nil || !m.related.Open(target.ID) {
			return m, nil, true
		}
		m.session.OpenDialog(store.DialogRelated, target.ID)
		return m, RelatedCmd(m.deps, target.ID), true
	}
	return m, nil, false
}

// toolTarget returns the selected answer if it offers the graph and related
// actions.
func (m *Model) toolTarget() *model.Message {
	target := m.selectedMessage()
	if target == nil || model.IsGenerationFailure(target.Content) || m.session.Reveal.Animating(target.ID) {
		return nil
	}
	return target
}

// deleteTarget is the highlighted sidebar entry when the sidebar has focus,
// otherwise the current conversation.
func (m *Model) deleteTarget() model.ID {
	if m.focus == FocusSidebar && m.sidebarCursor < len(m.session.Conversations) {
		return m.session.Conversations[m.sidebarCursor].ID
	}
	id, _ := m.session.Current()
	return id
}

// =============================================================================
// DIALOG KEYS
// =============================================================================

func (m Model) handleDialogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.session.Dialog.Kind {
	case store.DialogAlert:
		if key.Matches(msg, m.keys.Close, m.keys.Enter) {
			m.session.CloseDialog()
		}
		return m, nil

	case store.DialogConfirmDelete:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			if id, ok := m.session.ConfirmDelete(); ok {
				return m, DeleteConversationCmd(m.deps, id)
			}
		case key.Matches(msg, m.keys.Deny):
			m.session.CloseDialog()
		}
		return m, nil

	case store.DialogFeedback:
		return m.handleFeedbackKey(msg)

	case store.DialogGraph:
		if key.Matches(msg, m.keys.Close) {
			m.graph.Close()
			m.session.CloseDialog()
		}
		return m, nil

	case store.DialogRelated:
		switch {
		case key.Matches(msg, m.keys.Close):
			m.related.Close()
			m.session.CloseDialog()
		case key.Matches(msg, m.keys.Up):
			m.related.Move(-1)
			m.session.Dirty++
		case key.Matches(msg, m.keys.Down):
			m.related.Move(1)
			m.session.Dirty++
		case key.Matches(msg, m.keys.Enter):
			if q, ok := m.related.Choose(); ok {
				m.related.Close()
				m.session.CloseDialog()
				m.input.SetValue(q)
				m.input.CursorEnd()
				m.focusInput()
				return m, textinput.Blink
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleFeedbackKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	form := m.feedback
	if form == nil {
		m.session.CloseDialog()
		return m, nil
	}
	target := form.Dialog.MessageID

	switch {
	case key.Matches(msg, m.keys.Close):
		m.closeFeedback()
		return m, nil

	case key.Matches(msg, m.keys.SubmitFeedback):
		req, ok := form.Submit()
		if !ok {
			m.session.Dirty++
			return m, nil
		}
		m.closeFeedback()
		return m, FeedbackCmd(m.deps, target, req)

	case key.Matches(msg, m.keys.RemoveFeedback):
		req := form.Dialog.Remove()
		m.closeFeedback()
		return m, FeedbackCmd(m.deps, target, req)

	case key.Matches(msg, m.keys.Up):
		form.Move(-1)
		m.session.Dirty++
		return m, nil

	case key.Matches(msg, m.keys.Down):
		form.Move(1)
		m.session.Dirty++
		return m, nil

	case !form.TextFocused() && key.Matches(msg, m.keys.Reason):
		form.Select(int(msg.Runes[0] - '1'))
		m.session.Dirty++
		return m, nil
	}

	if form.TextFocused() {
		cmd := form.Update(msg)
		m.session.Dirty++
		return m, cmd
	}
	return m, nil
}

func (m *Model) closeFeedback() {
	m.feedback = nil
	m.session.CloseDialog()
}
