// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	NewChat       key.Binding
	ToggleSidebar key.Binding
	SwitchFocus   key.Binding
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Enter         key.Binding
	Delete        key.Binding
	Reload        key.Binding
	PrevAnswer    key.Binding
	NextAnswer    key.Binding
	Positive      key.Binding
	Negative      key.Binding
	Graph         key.Binding
	Related       key.Binding
	Template      key.Binding
	Logout        key.Binding
	Close         key.Binding
	Quit          key.Binding

	// Dialog keys
	Confirm        key.Binding
	Deny           key.Binding
	SubmitFeedback key.Binding
	RemoveFeedback key.Binding
	Reason         key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "새 대화"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "목록"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "포커스"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "위"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "아래"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "위로 스크롤"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "아래로 스크롤"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "열기/전송"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "삭제"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "새로고침"),
		),
		PrevAnswer: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-↑", "이전 답변"),
		),
		NextAnswer: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-↓", "다음 답변"),
		),
		Positive: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "좋아요"),
		),
		Negative: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "개선 필요"),
		),
		Graph: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "개념 그래프"),
		),
		Related: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "관련 질문"),
		),
		Template: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "템플릿"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "로그아웃"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "닫기"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "종료"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "확인"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "취소"),
		),
		SubmitFeedback: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "제출"),
		),
		RemoveFeedback: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "피드백 삭제"),
		),
		Reason: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "사유"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewChat, k.SwitchFocus, k.PrevAnswer, k.Positive, k.Negative, k.Graph, k.Related, k.Quit}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewChat, k.ToggleSidebar, k.SwitchFocus, k.Delete, k.Reload},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Enter},
		{k.PrevAnswer, k.NextAnswer, k.Positive, k.Negative, k.Graph, k.Related},
		{k.Template, k.Logout, k.Close, k.Quit},
	}
}
