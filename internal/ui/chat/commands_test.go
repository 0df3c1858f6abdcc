// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/storage"
	"github.com/jeranaias/medchat-tui/internal/store"
)

// chatServer is a minimal HTTP backend with one conversation.
func chatServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var csrf []string

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/api/conversations/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			mu.Lock()
			csrf = append(csrf, r.Header.Get("X-CSRFToken"))
			mu.Unlock()
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/chat/api/conversations/":
			json.NewEncoder(w).Encode(map[string]any{
				"conversations": []map[string]any{{"id": 5, "title": "LDL", "updated_at": "2025-03-10T09:00:00Z"}},
			})
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]any{
					{"id": 1, "role": "user", "content": "LDL?"},
					{"id": 2, "role": "assistant", "content": "낮춥니다",
						"citations": []map[string]any{{"id": 1, "title": "Trial https://x.test/1", "year": 2020}}},
				},
			})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]any{
					{"id": 3, "role": "user", "content": "더 알려줘"},
					{"id": 4, "role": "assistant", "content": "추가 설명"},
				},
				"error": "",
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &csrf
}

func TestCommands_AgainstHTTPBackend(t *testing.T) {
	server, csrf := chatServer(t)
	client, err := api.NewClient(server.URL, &credentials.Static{Token: "csrf-1"})
	require.NoError(t, err)

	db, err := storage.Open(filepath.Join(t.TempDir(), "medchat.db"), server.URL)
	require.NoError(t, err)
	defer db.Close()

	deps := Deps{Backend: client, Snapshot: db, Timeout: 5 * time.Second, HistoryLimit: 10}
	m := newTestModelWith(t, deps, Options{})
	m = pump(t, m, m.Init())

	s := m.Session()
	id, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, model.ID("5"), id)
	require.Len(t, s.CurrentMessages(), 2)
	assert.Equal(t, "https://x.test/1", s.CurrentMessages()[1].Citations[0].Link())

	snap, err := db.LoadConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Conversation{{ID: "5", Title: "LDL", UpdatedAt: "2025-03-10T09:00:00Z"}}, snap)

	m = typeText(m, "더 알려줘")
	m = press(t, m, keyOf(tea.KeyEnter))
	require.Len(t, m.Session().CurrentMessages(), 4)
	assert.Equal(t, "추가 설명", m.Session().CurrentMessages()[3].Content)
	assert.Equal(t, []string{"csrf-1"}, *csrf)

	history, err := db.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"더 알려줘"}, history)
}

func TestCommands_CarryTargetConversation(t *testing.T) {
	b := seededBackend()
	deps := Deps{Backend: b}

	msg := FetchMessagesCmd(deps, "1")()
	loaded, ok := msg.(MessagesMsg)
	require.True(t, ok)
	assert.Equal(t, model.ID("1"), loaded.ConversationID)
	assert.Len(t, loaded.Messages, 2)

	ticket := &store.SendTicket{ConversationID: "2", TempID: "temp-1", Content: "q"}
	sent := SendCmd(deps, ticket)().(SentMsg)
	assert.Same(t, ticket, sent.Ticket)
	require.NoError(t, sent.Err)
	assert.Len(t, sent.Result.Messages, 2)
}

func TestCommands_LocalWithoutSnapshot(t *testing.T) {
	deps := Deps{Backend: newFakeBackend()}
	assert.Nil(t, SaveSnapshotCmd(deps, nil))
	assert.Nil(t, AppendHistoryCmd(deps, "x"))

	out := LogoutCmd(deps)()
	assert.Equal(t, LoggedOutMsg{}, out)
}

func TestDeps_Timeout(t *testing.T) {
	ctx, cancel := Deps{Timeout: time.Second}.context()
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	ctx, cancel = Deps{}.context()
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}

func TestLateLoadForOtherConversation(t *testing.T) {
	m := newTestModel(t, seededBackend(), Options{})
	m = pump(t, m, m.Init())

	answer := &model.Message{ID: "50", Role: model.RoleAssistant, Content: "긴 답변입니다 긴 답변입니다"}
	h := m.Session().Reveal.Start(answer)
	require.False(t, h.Done())

	next, _ := m.Update(MessagesMsg{ConversationID: "2", Messages: []*model.Message{{ID: "60", Role: model.RoleUser, Content: "x"}}})
	m = next.(Model)

	assert.Len(t, m.Session().Messages("2"), 1, "late load fills its own cache")
	assert.Equal(t, 1, m.Session().Reveal.Len(), "current animations keep running")
}
