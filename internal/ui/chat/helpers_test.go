// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend is an in-memory api.Backend.
type fakeBackend struct {
	mu       sync.Mutex
	convs    []model.Conversation
	msgs     map[model.ID][]*model.Message
	nextID   int
	sends    []string
	feedback []api.FeedbackRequest
	graph    string
	related  []string

	failSend   bool
	failCreate bool
	failList   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{msgs: make(map[model.ID][]*model.Message), nextID: 100}
}

func (f *fakeBackend) id() model.ID {
	f.nextID++
	return model.ID(fmt.Sprint(f.nextID))
}

func (f *fakeBackend) seed(id model.ID, title string, msgs ...*model.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convs = append(f.convs, model.Conversation{ID: id, Title: title, UpdatedAt: "2025-03-10T09:00:00Z"})
	f.msgs[id] = msgs
}

func (f *fakeBackend) ListConversations(context.Context) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errBackend
	}
	return append([]model.Conversation(nil), f.convs...), nil
}

func (f *fakeBackend) CreateConversation(_ context.Context, title string) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return model.Conversation{}, errBackend
	}
	c := model.Conversation{ID: f.id(), Title: title}
	f.convs = append([]model.Conversation{c}, f.convs...)
	f.msgs[c.ID] = nil
	return c, nil
}

func (f *fakeBackend) GetMessages(_ context.Context, id model.ID) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Message, 0, len(f.msgs[id]))
	for _, m := range f.msgs[id] {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (f *fakeBackend) DeleteConversation(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := model.IndexOf(f.convs, id)
	if i < 0 {
		return &api.Error{Op: "delete conversation", Status: 404}
	}
	f.convs = append(f.convs[:i], f.convs[i+1:]...)
	delete(f.msgs, id)
	return nil
}

func (f *fakeBackend) SendMessage(_ context.Context, id model.ID, content string) (*api.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, content)
	if f.failSend {
		return nil, errBackend
	}
	user := &model.Message{ID: f.id(), Role: model.RoleUser, Content: content}
	answer := &model.Message{ID: f.id(), Role: model.RoleAssistant, Content: "**답변**: " + content}
	f.msgs[id] = append(f.msgs[id], user, answer)
	return &api.SendResult{Messages: []*model.Message{user.Clone(), answer.Clone()}}, nil
}

func (f *fakeBackend) SubmitFeedback(_ context.Context, id model.ID, req api.FeedbackRequest) (model.MessagePatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, req)
	fb := req.Feedback
	code, text := req.ReasonCode, req.ReasonText
	return model.MessagePatch{ID: &id, Feedback: &fb, ReasonCode: &code, ReasonText: &text}, nil
}

func (f *fakeBackend) ConceptGraph(context.Context, model.ID) (string, error) {
	return f.graph, nil
}

func (f *fakeBackend) RelatedQuestions(context.Context, model.ID) ([]string, error) {
	return f.related, nil
}

func (f *fakeBackend) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// =============================================================================
// HARNESS
// =============================================================================

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, backend api.Backend, opts Options) Model {
	t.Helper()
	return newTestModelWith(t, Deps{Backend: backend}, opts)
}

func newTestModelWith(t *testing.T, deps Deps, opts Options) Model {
	t.Helper()
	opts.RevealInterval = time.Millisecond
	opts.Now = func() time.Time { return testNow }
	m := New(styles.NewThemeNamed("dark"), deps, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// runCmd runs cmd, giving up after a short wait so cursor blinks and other
// long timers do not stall the test.
func runCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(150 * time.Millisecond):
		return nil
	}
}

// pump feeds cmd's results back into m until no work remains.
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 5000 {
			t.Fatal("pump did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := runCmd(c).(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

// press sends one key and pumps the resulting commands.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return pump(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// typeText enters s into the compose input without pumping blink timers.
func typeText(m Model, s string) Model {
	next, _ := m.Update(runes(s))
	return next.(Model)
}
