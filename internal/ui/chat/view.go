// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/render"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// bubbleChrome is the horizontal space taken by a bubble's border, padding
// and margin.
const bubbleChrome = 10

// =============================================================================
// VIEWPORT
// =============================================================================

// refresh rebuilds the viewport content when the session changed or an
// animated element needs a new frame.
func (m *Model) refresh() {
	if m.session.Dirty == m.rendered && !m.spinner.IsActive() {
		return
	}
	m.rendered = m.session.Dirty

	tree := render.Build(m.session, render.Options{SelectedMessage: m.selected})
	m.viewport.SetContent(m.renderTree(tree))
	if tree.ScrollToEnd {
		m.viewport.GotoBottom()
	}
}

// renderTree turns a projected tree into styled text.
func (m *Model) renderTree(tree render.Tree) string {
	width := m.viewport.Width
	switch tree.Kind {
	case render.KindEmptyPrompt:
		return m.renderPlaceholder(tree, width)
	case render.KindSpinner:
		return lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center,
			m.spinner.View(m.theme))
	case render.KindTemplates:
		return m.renderTemplates(tree, width)
	}

	var b strings.Builder
	for i, bub := range tree.Bubbles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderBubble(bub, width))
		b.WriteString("\n")
	}
	if tree.LoadingPlaceholder {
		b.WriteString("\n")
		b.WriteString(m.theme.AssistantBubble.Render(
			m.theme.Spinner.Render("…") + " " + m.theme.Pending.Render(render.PendingText)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderPlaceholder(tree render.Tree, width int) string {
	body := m.theme.EmptyHeading.Render(tree.Heading) + "\n\n" +
		m.theme.EmptyText.Width(min(width-4, 60)).Render(tree.Text)
	return lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderTemplates(tree render.Tree, width int) string {
	inner := min(width-4, 70)
	var b strings.Builder
	b.WriteString(m.theme.EmptyHeading.Render(tree.Heading))
	b.WriteString("\n\n")
	b.WriteString(m.theme.EmptyText.Width(inner).Render(tree.Text))
	b.WriteString("\n\n")
	for i, t := range tree.Templates {
		b.WriteString(m.theme.TemplateKey.Render(fmt.Sprintf("[%d] ", i+1)))
		b.WriteString(m.theme.TemplateTitle.Render(t.Title))
		b.WriteString("\n    ")
		b.WriteString(m.theme.TemplateText.Width(inner - 4).Render(t.Prompt))
		b.WriteString("\n")
	}
	return lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center, b.String())
}

// =============================================================================
// BUBBLES
// =============================================================================

func (m *Model) renderBubble(b render.Bubble, width int) string {
	inner := width - bubbleChrome
	if inner < 10 {
		inner = 10
	}
	label := m.theme.RoleLabel.Render(b.Role.DisplayName())

	if b.Role != model.RoleAssistant {
		style := m.theme.UserBubble
		if b.Role == model.RoleSystem {
			style = m.theme.SystemBubble
		}
		body := lipgloss.NewStyle().Width(inner).Render(b.Raw)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, label+"\n"+style.Render(body))
	}

	var sb strings.Builder
	sb.WriteString(m.renderLines(b.Lines))
	if b.Revealing {
		sb.WriteString(m.theme.RevealCursor.Render("▌"))
	}
	if b.Citations != nil && !b.Revealing {
		sb.WriteString("\n\n")
		sb.WriteString(m.renderCitations(b.Citations, inner-2))
	}
	if b.Feedback != nil && !b.Revealing {
		sb.WriteString("\n\n")
		sb.WriteString(m.renderFeedback(b))
	}

	style := m.theme.AssistantBubble
	if b.Selected {
		style = m.theme.SelectedBubble
	}
	body := lipgloss.NewStyle().Width(inner).Render(sb.String())
	return label + "\n" + style.Render(body)
}

func (m *Model) renderLines(lines []render.Line) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		var sb strings.Builder
		for _, span := range line {
			if span.Bold {
				sb.WriteString(m.theme.Bold.Render(span.Text))
			} else {
				sb.WriteString(span.Text)
			}
		}
		out[i] = sb.String()
	}
	return strings.Join(out, "\n")
}

func (m *Model) renderCitations(c *render.CitationBlock, width int) string {
	var sb strings.Builder
	sb.WriteString(m.theme.CitationTitle.Render(c.Label))
	for _, item := range c.Items {
		sb.WriteString("\n")
		sb.WriteString(m.theme.CitationLabel.Render("[" + item.Label + "] "))
		sb.WriteString(item.Title)
		if item.Byline != "" {
			sb.WriteString("\n    ")
			sb.WriteString(m.theme.CitationByline.Render(item.Byline))
		}
		var links []string
		if item.Link != "" {
			links = append(links, m.theme.Link.Render(item.Link))
		}
		if item.DOI != "" {
			links = append(links, m.theme.Link.Render(item.DOI))
		}
		if item.PubMed != "" {
			links = append(links, m.theme.Link.Render(item.PubMed))
		}
		for _, l := range links {
			sb.WriteString("\n    ")
			sb.WriteString(l)
		}
	}
	return m.theme.CitationBox.Width(width).Render(sb.String())
}

func (m *Model) renderFeedback(b render.Bubble) string {
	up, down := m.theme.FeedbackIdle.Render("[+] 좋아요"), m.theme.FeedbackIdle.Render("[-] 개선 필요")
	switch b.Feedback.State {
	case model.FeedbackPositive:
		up = m.theme.FeedbackPositive.Render("[+] 좋아요 ✓")
	case model.FeedbackNegative:
		text := "[-] 개선 필요 ✓"
		if b.Feedback.Reason != "" {
			text += " (" + b.Feedback.Reason + ")"
		}
		down = m.theme.FeedbackNegative.Render(text)
	}
	line := up + "  " + down
	if b.Tools && b.Selected {
		line += "  " + m.theme.ToolHint.Render("[g] 개념 그래프  [r] 관련 질문")
	}
	return line
}

// =============================================================================
// SCREEN
// =============================================================================

func (m Model) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	chat := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
	)
	body := chat
	if m.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), chat)
	}
	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())

	if overlay := m.renderDialog(); overlay != "" {
		return components.Overlay(overlay, m.width, m.height)
	}
	return screen
}

func (m Model) renderHeader() string {
	title := render.EmptyHeading
	if conv := m.session.CurrentConversation(); conv != nil {
		title = conv.DisplayTitle()
	}
	w := m.chatWidth()
	return m.theme.Header.Width(w).MaxHeight(headerHeight).
		Render(m.theme.HeaderTitle.Render(util.TruncateWidth(title, w-4)))
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.focus == FocusInput && !m.session.Dialog.Open() {
		style = m.theme.InputContainerFocused
	}
	line := m.input.View()
	if m.session.Sending {
		line = m.spinner.View(m.theme)
	}
	return style.Width(m.chatWidth() - 2).Render(line)
}

func (m Model) renderSidebar() string {
	height := m.height - statusBarHeight
	if height < 1 {
		height = 1
	}
	inner := sidebarWidth - 3

	items := render.Sidebar(m.session, m.now())
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("대화 목록"))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(m.theme.SidebarDate.Render("대화가 없습니다"))
	}
	for i, item := range items {
		style := m.theme.SidebarItem
		if item.Active {
			style = m.theme.SidebarItemActive
		}
		if m.focus == FocusSidebar && i == m.sidebarCursor {
			style = m.theme.SidebarItemCursor
		}
		title := util.PadWidth(item.Title, inner-util.StringWidth(item.Date)-1)
		b.WriteString(style.Render(title))
		b.WriteString(" ")
		b.WriteString(m.theme.SidebarDate.Render(item.Date))
		b.WriteString("\n")
	}

	style := m.theme.Sidebar
	if m.focus == FocusSidebar {
		style = m.theme.SidebarFocused
	}
	return style.Width(sidebarWidth - 1).Height(height).MaxHeight(height).Render(b.String())
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	if m.session.Dialog.Open() {
		parts = []string{m.dialogHelp(m.keys.Close)}
	}
	line := util.TruncateWidth(strings.Join(parts, "  "), m.width-2)
	return m.theme.StatusBar.Width(m.width).MaxHeight(statusBarHeight).Render(line)
}

func (m Model) dialogHelp(k key.Binding) string {
	h := k.Help()
	return m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc)
}

// renderDialog renders the open modal, or "" when none is open.
func (m Model) renderDialog() string {
	d := m.session.Dialog
	loading := m.spinner.View(m.theme)

	switch d.Kind {
	case store.DialogAlert:
		return components.RenderAlert(m.theme, d.Text, m.width)
	case store.DialogConfirmDelete:
		return components.RenderConfirm(m.theme, d.Text, m.width)
	case store.DialogFeedback:
		if m.feedback != nil {
			return m.feedback.View(m.theme, m.width)
		}
	case store.DialogGraph:
		return components.RenderGraphPanel(m.theme, m.graph, m.graphRenderer, loading, m.width)
	case store.DialogRelated:
		return components.RenderRelatedPanel(m.theme, m.related, loading, m.width)
	}
	return ""
}
