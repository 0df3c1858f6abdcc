// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/store"
)

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationsMsg carries a conversation list refresh.
type ConversationsMsg struct {
	List     []model.Conversation
	Preserve bool
	Err      error
}

// MessagesMsg carries the messages of one conversation.
type MessagesMsg struct {
	ConversationID model.ID
	Messages       []*model.Message
	Err            error
}

// CreatedMsg reports a conversation creation.
type CreatedMsg struct {
	Conversation model.Conversation
	Err          error
}

// DeletedMsg reports a conversation deletion.
type DeletedMsg struct {
	ID  model.ID
	Err error
}

// =============================================================================
// MESSAGE ACTIONS
// =============================================================================

// SentMsg carries the answer to a send.
type SentMsg struct {
	Ticket *store.SendTicket
	Result *api.SendResult
	Err    error
}

// FeedbackMsg carries the server's echo of a feedback submission.
type FeedbackMsg struct {
	MessageID model.ID
	Patch     model.MessagePatch
	Err       error
}

// GraphMsg carries a concept graph.
type GraphMsg struct {
	MessageID model.ID
	Graph     string
	Err       error
}

// RelatedMsg carries related question suggestions.
type RelatedMsg struct {
	MessageID model.ID
	Questions []string
	Err       error
}

// =============================================================================
// LIFECYCLE MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent by the config watcher after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// LoggedOutMsg reports that stored credentials were cleared.
type LoggedOutMsg struct {
	Err error
}
