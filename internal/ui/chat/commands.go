// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/storage"
	"github.com/jeranaias/medchat-tui/internal/store"
)

// Deps are the collaborators the controller issues requests to. Only
// Backend is required.
type Deps struct {
	Backend     api.Backend
	Credentials credentials.Provider
	Snapshot    *storage.DB

	// Timeout bounds every request. Zero leaves requests unbounded.
	Timeout time.Duration

	// HistoryLimit caps the stored compose history.
	HistoryLimit int
}

func (d Deps) context() (context.Context, context.CancelFunc) {
	if d.Timeout > 0 {
		return context.WithTimeout(context.Background(), d.Timeout)
	}
	return context.WithCancel(context.Background())
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

// FetchConversationsCmd refreshes the conversation list.
func FetchConversationsCmd(d Deps, preserve bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		list, err := d.Backend.ListConversations(ctx)
		return ConversationsMsg{List: list, Preserve: preserve, Err: err}
	}
}

// FetchMessagesCmd loads the messages of id.
func FetchMessagesCmd(d Deps, id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		msgs, err := d.Backend.GetMessages(ctx, id)
		return MessagesMsg{ConversationID: id, Messages: msgs, Err: err}
	}
}

// CreateConversationCmd creates a conversation with the default title.
func CreateConversationCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		conv, err := d.Backend.CreateConversation(ctx, model.DefaultTitle)
		return CreatedMsg{Conversation: conv, Err: err}
	}
}

// DeleteConversationCmd deletes id.
func DeleteConversationCmd(d Deps, id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		return DeletedMsg{ID: id, Err: d.Backend.DeleteConversation(ctx, id)}
	}
}

// =============================================================================
// MESSAGE COMMANDS
// =============================================================================

// SendCmd sends the ticket's content to its conversation.
func SendCmd(d Deps, t *store.SendTicket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		res, err := d.Backend.SendMessage(ctx, t.ConversationID, t.Content)
		return SentMsg{Ticket: t, Result: res, Err: err}
	}
}

// FeedbackCmd submits feedback for a message.
func FeedbackCmd(d Deps, id model.ID, req api.FeedbackRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		patch, err := d.Backend.SubmitFeedback(ctx, id, req)
		return FeedbackMsg{MessageID: id, Patch: patch, Err: err}
	}
}

// GraphCmd requests the concept graph of a message.
func GraphCmd(d Deps, id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		graph, err := d.Backend.ConceptGraph(ctx, id)
		return GraphMsg{MessageID: id, Graph: graph, Err: err}
	}
}

// RelatedCmd requests follow-up questions for a message.
func RelatedCmd(d Deps, id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		qs, err := d.Backend.RelatedQuestions(ctx, id)
		return RelatedMsg{MessageID: id, Questions: qs, Err: err}
	}
}

// =============================================================================
// LOCAL COMMANDS
// =============================================================================

// SaveSnapshotCmd stores the conversation list for the next startup.
func SaveSnapshotCmd(d Deps, list []model.Conversation) tea.Cmd {
	if d.Snapshot == nil {
		return nil
	}
	list = append([]model.Conversation(nil), list...)
	return func() tea.Msg {
		if err := d.Snapshot.SaveConversations(context.Background(), list); err != nil {
			log.Printf("SNAPSHOT_SAVE_FAILED | error=%v", err)
		}
		return nil
	}
}

// AppendHistoryCmd records sent content in the compose history.
func AppendHistoryCmd(d Deps, content string) tea.Cmd {
	if d.Snapshot == nil {
		return nil
	}
	return func() tea.Msg {
		if err := d.Snapshot.AppendHistory(context.Background(), content, d.HistoryLimit); err != nil {
			log.Printf("HISTORY_SAVE_FAILED | error=%v", err)
		}
		return nil
	}
}

// LogoutCmd clears stored credentials and the local snapshot.
func LogoutCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		var err error
		if d.Credentials != nil {
			err = d.Credentials.Clear()
		}
		if d.Snapshot != nil {
			if serr := d.Snapshot.ClearConversations(context.Background()); serr != nil {
				log.Printf("SNAPSHOT_CLEAR_FAILED | error=%v", serr)
			}
		}
		return LoggedOutMsg{Err: err}
	}
}
