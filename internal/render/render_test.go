// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/reveal"
	"github.com/jeranaias/medchat-tui/internal/store"
)

func sessionWith(msgs ...*model.Message) *store.Session {
	s := store.New()
	s.ApplyConversations([]model.Conversation{{ID: "1", Title: "혈압 질문"}}, true)
	s.FinishLoad("1", msgs, nil)
	return s
}

func TestBuild_Branches(t *testing.T) {
	t.Run("no conversation", func(t *testing.T) {
		tree := Build(store.New(), Options{})
		assert.Equal(t, KindEmptyPrompt, tree.Kind)
		assert.False(t, tree.TemplatesVisible)
		assert.True(t, tree.ScrollToEnd)
	})

	t.Run("loading", func(t *testing.T) {
		s := store.New()
		s.ApplyConversations([]model.Conversation{{ID: "1"}}, true)
		s.BeginLoad("1", false)
		tree := Build(s, Options{})
		assert.Equal(t, KindSpinner, tree.Kind)
		assert.True(t, tree.TemplatesVisible)
		assert.Equal(t, model.DefaultTitle, tree.Title)
	})

	t.Run("empty conversation", func(t *testing.T) {
		tree := Build(sessionWith(), Options{})
		assert.Equal(t, KindTemplates, tree.Kind)
		assert.True(t, tree.TemplatesVisible)
		assert.Len(t, tree.Templates, 4)
		assert.Equal(t, "혈압 질문", tree.Title)
	})

	t.Run("messages", func(t *testing.T) {
		s := sessionWith(
			&model.Message{ID: "10", Role: model.RoleUser, Content: "**raw** user"},
			&model.Message{ID: "11", Role: model.RoleAssistant, Content: "answer"},
		)
		tree := Build(s, Options{SelectedMessage: "11"})
		require.Equal(t, KindBubbles, tree.Kind)
		assert.False(t, tree.TemplatesVisible)
		require.Len(t, tree.Bubbles, 2)
		assert.Equal(t, "**raw** user", tree.Bubbles[0].Raw)
		assert.Nil(t, tree.Bubbles[0].Lines, "user content is not parsed")
		assert.Nil(t, tree.Bubbles[0].Feedback)
		assert.True(t, tree.Bubbles[1].Selected)
		assert.False(t, tree.LoadingPlaceholder)
	})
}

func TestBuild_LoadingPlaceholderWhileSending(t *testing.T) {
	s := sessionWith(&model.Message{ID: "10", Role: model.RoleUser, Content: "hi"})
	_, action := s.BeginSend("again", time.Now())
	require.Equal(t, store.SendReady, action)

	tree := Build(s, Options{})
	assert.True(t, tree.LoadingPlaceholder)
	require.Len(t, tree.Bubbles, 2)
	assert.True(t, model.IsTemp(tree.Bubbles[1].MessageID))
}

func TestBuild_AssistantDecorations(t *testing.T) {
	cites := []model.Citation{
		{Label: "1", Title: "Trial A", DOI: "10.1/a", PMID: "123"},
		{Label: "2", Title: "Guideline https://example.org/g"},
	}
	s := sessionWith(
		&model.Message{ID: "11", Role: model.RoleAssistant, Content: "ok", Citations: cites,
			Feedback: model.FeedbackNegative, ReasonCode: "too_vague", ReferenceType: model.ReferenceInternal},
		&model.Message{ID: "12", Role: model.RoleAssistant, Content: "죄송합니다. 답변을 생성하지 못했습니다.", Citations: cites},
	)
	tree := Build(s, Options{})
	require.Len(t, tree.Bubbles, 2)

	ok := tree.Bubbles[0]
	require.NotNil(t, ok.Citations)
	assert.Equal(t, "내부 자료", ok.Citations.Label)
	require.Len(t, ok.Citations.Items, 2)
	assert.Equal(t, "https://doi.org/10.1/a", ok.Citations.Items[0].DOI)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/123", ok.Citations.Items[0].PubMed)
	assert.Equal(t, "https://example.org/g", ok.Citations.Items[1].Link)
	assert.Equal(t, "Guideline", ok.Citations.Items[1].Title)
	assert.True(t, ok.Tools)
	assert.Equal(t, model.FeedbackNegative, ok.Feedback.State)
	assert.Equal(t, "모호함", ok.Feedback.Reason)

	failed := tree.Bubbles[1]
	assert.Nil(t, failed.Citations, "citations are hidden on generation failure")
	assert.False(t, failed.Tools)
	assert.NotNil(t, failed.Feedback)
}

func TestBuild_RevealingFlag(t *testing.T) {
	reply := &model.Message{ID: "11", Role: model.RoleAssistant, Content: "a long enough answer"}
	s := sessionWith(reply)
	h := s.Reveal.Start(reply)

	tree := Build(s, Options{})
	assert.True(t, tree.Bubbles[0].Revealing)

	for {
		if _, done := s.Reveal.Advance(h.ID()); done {
			break
		}
	}
	tree = Build(s, Options{})
	assert.False(t, tree.Bubbles[0].Revealing)
	assert.Equal(t, "a long enough answer", tree.Bubbles[0].Raw)
	assert.Equal(t, 10, reveal.Ticks(len([]rune("a long enough answer"))))
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		in   string
		want []Line
	}{
		{"plain", []Line{{{Text: "plain"}}}},
		{"a **b** c", []Line{{{Text: "a "}, {Text: "b", Bold: true}, {Text: " c"}}}},
		{"**x**\ny", []Line{{{Text: "x", Bold: true}}, {{Text: "y"}}}},
		{"**open\nclose**", []Line{{{Text: "**open"}}, {{Text: "close**"}}}},
		{"****", []Line{{}}},
		{"", []Line{{}}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseInline(tc.in), "input %q", tc.in)
	}
}

// TestScenario_CreateSendRender walks the create, send and render path
// without a network: the conversation is created, "hello" is sent and the
// server answers with the confirmed user message and a cited reply.
func TestScenario_CreateSendRender(t *testing.T) {
	s := store.New()
	now := time.UnixMilli(1700000000000)

	_, action := s.BeginSend("hello", now)
	require.Equal(t, store.SendNeedsConversation, action)

	ticket, err := s.FinishCreate(model.Conversation{ID: "42", Title: "hello"}, nil, now)
	require.NoError(t, err)
	require.NotNil(t, ticket)

	reply := &model.Message{
		ID: "101", Role: model.RoleAssistant, Content: "Here is what I found.",
		Citations: []model.Citation{{Label: "1", Title: "A"}, {Label: "2", Title: "B"}},
	}
	handles := s.FinishSend(ticket, []*model.Message{
		{ID: "100", Role: model.RoleUser, Content: "hello"},
		reply,
	}, "", nil)
	s.Reveal.CancelAll()
	require.Len(t, handles, 1)

	tree := Build(s, Options{})
	require.Equal(t, KindBubbles, tree.Kind)
	require.Len(t, tree.Bubbles, 2)
	assert.Equal(t, model.RoleUser, tree.Bubbles[0].Role)
	assert.Equal(t, "hello", tree.Bubbles[0].Raw)
	assistant := tree.Bubbles[1]
	assert.Equal(t, model.RoleAssistant, assistant.Role)
	require.NotNil(t, assistant.Citations)
	assert.Len(t, assistant.Citations.Items, 2)
	assert.Equal(t, model.FeedbackNone, assistant.Feedback.State)
	assert.Equal(t, "Here is what I found.", assistant.Raw)
	assert.False(t, s.Sending)
}

func TestSidebar(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := store.New()
	s.ApplyConversations([]model.Conversation{
		{ID: "1", Title: "", UpdatedAt: now.Add(-2 * time.Hour).Format(time.RFC3339)},
		{ID: "2", Title: "old", UpdatedAt: now.Add(-40 * 24 * time.Hour).Format(time.RFC3339)},
		{ID: "3", Title: "  메트포르민 용량\n신기능 저하 시"},
		{ID: "4", Title: " \n "},
	}, true)

	items := Sidebar(s, now)
	require.Len(t, items, 4)
	assert.Equal(t, "메트포르민 용량", items[2].Title)
	assert.Equal(t, model.DefaultTitle, items[3].Title)
	assert.True(t, items[0].Active)
	assert.Equal(t, model.DefaultTitle, items[0].Title)
	assert.Equal(t, "오늘", items[0].Date)
	assert.False(t, items[1].Active)
	assert.Equal(t, "1월 29일", items[1].Date)
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{time.Minute, "오늘"},
		{-time.Hour, "오늘"},
		{25 * time.Hour, "어제"},
		{3 * 24 * time.Hour, "3일 전"},
		{6*24*time.Hour + time.Hour, "6일 전"},
		{8 * 24 * time.Hour, "3월 2일"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RelativeDate(now.Add(-tc.ago), now))
	}
	assert.Equal(t, "", RelativeDate(time.Time{}, now))
}
