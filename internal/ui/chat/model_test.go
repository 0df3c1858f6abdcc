// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/panel"
	"github.com/jeranaias/medchat-tui/internal/render"
	"github.com/jeranaias/medchat-tui/internal/store"
)

func seededBackend() *fakeBackend {
	b := newFakeBackend()
	b.seed("1", "스타틴 연구",
		&model.Message{ID: "11", Role: model.RoleUser, Content: "스타틴의 효과는?"},
		&model.Message{ID: "12", Role: model.RoleAssistant, Content: "LDL을 **낮춥니다**."},
	)
	b.seed("2", "")
	return b
}

func TestNew_HydratesSnapshot(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), Options{
		Initial:     []model.Conversation{{ID: "7", Title: "지난 대화"}},
		SidebarOpen: true,
	})

	id, ok := m.Session().Current()
	require.True(t, ok)
	assert.Equal(t, model.ID("7"), id)
	assert.Contains(t, m.View(), "지난 대화")
}

func TestInit_RefreshLoadsCurrent(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	m = pump(t, m, m.Init())

	s := m.Session()
	id, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, model.ID("1"), id)
	require.Len(t, s.CurrentMessages(), 2)
	assert.False(t, s.LoadingMessages)
	assert.Equal(t, model.ID("12"), m.Selected(), "newest answer is selected")
	assert.Contains(t, m.View(), "낮춥니다")
}

func TestInit_ListFailureKeepsSnapshot(t *testing.T) {
	b := seededBackend()
	b.failList = true
	m := newTestModel(t, b, Options{Initial: []model.Conversation{{ID: "9", Title: "보관"}}})
	m = pump(t, m, m.Init())

	assert.Len(t, m.Session().Conversations, 1)
	assert.False(t, m.Session().Dialog.Open(), "passive loads never alert")
}

func TestSend_CreatesConversationWhenNoneSelected(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = typeText(m, "메트포르민 부작용")
	m = press(t, m, keyOf(tea.KeyEnter))

	s := m.Session()
	id, ok := s.Current()
	require.True(t, ok)
	msgs := s.Messages(id)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.False(t, model.IsTemp(msgs[0].ID))
	assert.Equal(t, "**답변**: 메트포르민 부작용", msgs[1].Content, "reveal finishes with the full text")
	assert.False(t, s.Sending)
	assert.Zero(t, s.Reveal.Len())
	assert.Empty(t, m.Input())
	assert.Equal(t, 1, b.sendCount())
}

func TestSend_BlankAndDuplicateIgnored(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = typeText(m, "   ")
	m = press(t, m, keyOf(tea.KeyEnter))
	assert.Zero(t, b.sendCount())
	assert.Len(t, m.Session().CurrentMessages(), 2)

	m.Session().Sending = true
	m = typeText(m, "x")
	next, _ := m.Update(keyOf(tea.KeyEnter))
	m = next.(Model)
	assert.Len(t, m.Session().CurrentMessages(), 2, "a second send while pending is a no-op")
	assert.Equal(t, "   x", m.Input())
}

func TestSend_SpinnerShowsPendingText(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	m = pump(t, m, m.Init())

	m = typeText(m, "질문")
	next, cmd := m.Update(keyOf(tea.KeyEnter))
	m = next.(Model)
	require.True(t, m.Session().Sending)
	assert.Contains(t, m.renderInput(), render.PendingText)
	assert.NotContains(t, m.renderInput(), render.LoadingText)

	m = pump(t, m, cmd)
	assert.False(t, m.Session().Sending)
	assert.NotContains(t, m.renderInput(), render.PendingText)
}

func TestSend_FailureAlertsAndRemovesTemp(t *testing.T) {
	b := seededBackend()
	b.failSend = true
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = typeText(m, "질문")
	m = press(t, m, keyOf(tea.KeyEnter))

	s := m.Session()
	assert.Equal(t, store.DialogAlert, s.Dialog.Kind)
	assert.Equal(t, store.AlertSendFailed, s.Dialog.Text)
	assert.Len(t, s.CurrentMessages(), 2, "temporary message removed")
	assert.False(t, s.Sending)

	m = press(t, m, keyOf(tea.KeyEnter))
	assert.False(t, m.Session().Dialog.Open())
}

func TestCreate_FailureAlerts(t *testing.T) {
	b := newFakeBackend()
	b.failCreate = true
	m := newTestModel(t, b, Options{})

	m = typeText(m, "질문")
	m = press(t, m, keyOf(tea.KeyEnter))

	s := m.Session()
	assert.Equal(t, store.AlertCreateFailed, s.Dialog.Text)
	assert.False(t, s.Sending)
	assert.Zero(t, b.sendCount())
}

func TestDelete_ConfirmRefreshesWithoutPreserving(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{SidebarOpen: true})
	m = pump(t, m, m.Init())

	m = press(t, m, keyOf(tea.KeyCtrlD))
	require.Equal(t, store.DialogConfirmDelete, m.Session().Dialog.Kind)

	m = press(t, m, runes("n"))
	assert.False(t, m.Session().Dialog.Open())
	assert.Len(t, m.Session().Conversations, 2)

	m = press(t, m, keyOf(tea.KeyCtrlD))
	m = press(t, m, runes("y"))

	s := m.Session()
	require.Len(t, s.Conversations, 1)
	id, _ := s.Current()
	assert.Equal(t, model.ID("2"), id)
	assert.False(t, s.Cached("1"))
}

func TestSidebar_SelectLoadsConversation(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{SidebarOpen: true})
	m = pump(t, m, m.Init())

	m = press(t, m, keyOf(tea.KeyTab))
	assert.Equal(t, FocusSidebar, m.FocusedPane())
	m = press(t, m, keyOf(tea.KeyDown))
	m = press(t, m, keyOf(tea.KeyEnter))

	id, _ := m.Session().Current()
	assert.Equal(t, model.ID("2"), id)
	assert.True(t, m.Session().Cached("2"))
	assert.Equal(t, FocusInput, m.FocusedPane())

	tree := render.Build(m.Session(), render.Options{})
	assert.True(t, tree.TemplatesVisible)
}

func TestTemplates_InsertWithoutSending(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())
	cmd := m.openConversation("2")
	m = pump(t, m, cmd)

	m = press(t, m, runes("2"))
	assert.Equal(t, render.QuickTemplates[1].Prompt, m.Input())
	assert.Zero(t, b.sendCount())
}

func TestFeedback_PositiveToggles(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = press(t, m, runes("+"))
	msg, _ := m.Session().FindMessage("12")
	require.NotNil(t, msg)
	assert.Equal(t, model.FeedbackPositive, msg.Feedback)

	m = press(t, m, runes("+"))
	assert.Equal(t, model.FeedbackNone, msg.Feedback)
	require.Len(t, b.feedback, 2)
}

func TestFeedback_NegativeRequiresReason(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = press(t, m, runes("-"))
	require.Equal(t, store.DialogFeedback, m.Session().Dialog.Kind)

	m = press(t, m, keyOf(tea.KeyCtrlS))
	require.NotNil(t, m.FeedbackForm())
	assert.Equal(t, panel.PromptSelectReason, m.FeedbackForm().Dialog.Prompt)
	assert.Empty(t, b.feedback)

	m = press(t, m, runes("1"))
	m = press(t, m, keyOf(tea.KeyCtrlS))
	assert.False(t, m.Session().Dialog.Open())
	require.Len(t, b.feedback, 1)
	assert.Equal(t, model.FeedbackNegative, b.feedback[0].Feedback)
	assert.Equal(t, model.Reasons[0].Code, b.feedback[0].ReasonCode)

	msg, _ := m.Session().FindMessage("12")
	assert.Equal(t, model.Reasons[0].Code, msg.ReasonCode)
}

func TestFeedback_RemoveClosesDialog(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = press(t, m, runes("-"))
	m = press(t, m, keyOf(tea.KeyCtrlX))
	assert.False(t, m.Session().Dialog.Open())
	require.Len(t, b.feedback, 1)
	assert.Equal(t, model.FeedbackNone, b.feedback[0].Feedback)
}

func TestGraphPanel(t *testing.T) {
	b := seededBackend()
	b.graph = "```mermaid\ngraph TD\nA[LDL (mg/dL)] --> B['Statin']\n```"
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	next, cmd := m.Update(runes("g"))
	m = next.(Model)
	assert.Equal(t, store.DialogGraph, m.Session().Dialog.Kind)
	assert.Equal(t, panel.PhaseLoading, m.Graph().Phase())
	assert.Contains(t, m.View(), panel.GraphLoadingText)

	m = pump(t, m, cmd)
	assert.Equal(t, panel.PhaseResult, m.Graph().Phase())
	assert.Equal(t, "graph TD\nA[\"LDL (mg/dL)\"] --> B['Statin']", m.Graph().Source)

	m = press(t, m, keyOf(tea.KeyEsc))
	assert.False(t, m.Session().Dialog.Open())
	assert.Equal(t, panel.PhaseIdle, m.Graph().Phase())
}

func TestGraphPanel_StaleResponseIgnored(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	m = pump(t, m, m.Init())

	next, _ := m.Update(GraphMsg{MessageID: "999", Graph: "graph TD"})
	m = next.(Model)
	assert.Equal(t, panel.PhaseIdle, m.Graph().Phase())
}

func TestRelated_ChooseCopiesIntoInput(t *testing.T) {
	b := seededBackend()
	b.related = []string{"첫 질문", " ", "둘째 질문", "셋째", "넷째"}
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	m = press(t, m, runes("r"))
	require.Equal(t, panel.PhaseResult, m.Related().Phase())
	assert.Len(t, m.Related().Questions, 3)

	m = press(t, m, keyOf(tea.KeyDown))
	m = press(t, m, keyOf(tea.KeyEnter))

	assert.Equal(t, "둘째 질문", m.Input())
	assert.False(t, m.Session().Dialog.Open())
	assert.Zero(t, b.sendCount(), "choosing never sends")
}

func TestActionKeysTypeWhenInputNotEmpty(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	m = pump(t, m, m.Init())

	m = typeText(m, "a")
	m = typeText(m, "g")
	assert.Equal(t, "ag", m.Input())
	assert.False(t, m.Session().Dialog.Open())
}

func TestAnswerSelection(t *testing.T) {
	b := newFakeBackend()
	b.seed("1", "t",
		&model.Message{ID: "1", Role: model.RoleUser, Content: "q"},
		&model.Message{ID: "2", Role: model.RoleAssistant, Content: "a"},
		&model.Message{ID: "3", Role: model.RoleUser, Content: "q"},
		&model.Message{ID: "4", Role: model.RoleAssistant, Content: "b"},
	)
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())
	assert.Equal(t, model.ID("4"), m.Selected())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, model.ID("2"), m.Selected())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, model.ID("2"), m.Selected())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	assert.Equal(t, model.ID("4"), m.Selected())
}

func TestReloadForcesFetch(t *testing.T) {
	b := seededBackend()
	m := newTestModel(t, b, Options{})
	m = pump(t, m, m.Init())

	b.mu.Lock()
	b.msgs["1"] = append(b.msgs["1"], &model.Message{ID: "13", Role: model.RoleAssistant, Content: "추가"})
	b.mu.Unlock()

	m = press(t, m, keyOf(tea.KeyCtrlR))
	assert.Len(t, m.Session().CurrentMessages(), 3)
}

func TestConfigReloaded(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{SidebarOpen: true})
	m = press(t, m, keyOf(tea.KeyTab))
	require.Equal(t, FocusSidebar, m.FocusedPane())

	cfg := config.Default()
	cfg.UI.RevealIntervalMs = 50
	cfg.UI.SidebarOpen = false
	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)

	assert.Equal(t, 50_000_000, int(m.RevealInterval()))
	assert.False(t, m.SidebarOpen())
	assert.Equal(t, FocusInput, m.FocusedPane())
}

func TestConfigReloaded_SidebarRelayout(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	require.Equal(t, 120, m.viewport.Width)

	cfg := config.Default()
	cfg.UI.SidebarOpen = true
	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)

	assert.True(t, m.SidebarOpen())
	assert.Equal(t, 120-sidebarWidth, m.viewport.Width)
	assert.Equal(t, 120-sidebarWidth-6, m.input.Width)
}

func TestConfigReloaded_KeepsToggledSidebar(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{SidebarOpen: true})
	m = press(t, m, keyOf(tea.KeyCtrlB))
	require.False(t, m.SidebarOpen())

	cfg := config.Default()
	cfg.UI.SidebarOpen = true
	cfg.UI.RevealIntervalMs = 40
	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)

	assert.False(t, m.SidebarOpen(), "an unrelated edit keeps the ctrl+b state")
	assert.Equal(t, 120, m.viewport.Width)
}

func TestLogout(t *testing.T) {
	creds := &credentials.Static{Token: "tok"}
	m := newTestModelWith(t, Deps{Backend: newFakeBackend(), Credentials: creds}, Options{})
	next, cmd := m.Update(keyOf(tea.KeyCtrlL))
	msg := runCmd(cmd)
	require.IsType(t, LoggedOutMsg{}, msg)
	assert.True(t, creds.Cleared)

	next, cmd = next.Update(msg)
	assert.True(t, next.(Model).LoggedOut())
	assert.Equal(t, "", next.View())
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
