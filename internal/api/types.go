// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the chat backend's JSON API.
package api

import (
	"github.com/jeranaias/medchat-tui/internal/model"
)

// MaxRelatedQuestions caps the suggestions shown in the related panel.
const MaxRelatedQuestions = 3

type conversationListResponse struct {
	Conversations *[]model.Conversation `json:"conversations"`
}

type createConversationRequest struct {
	Title string `json:"title"`
}

type conversationResponse struct {
	Conversation *model.Conversation `json:"conversation"`
}

type messageListResponse struct {
	Messages *[]*model.Message `json:"messages"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Messages *[]*model.Message `json:"messages"`
	Error    string            `json:"error"`
}

// SendResult is the server's answer to a posted user message.
type SendResult struct {
	// Messages holds the confirmed user message followed by any assistant
	// replies, in order.
	Messages []*model.Message
	// Warning carries a non-fatal upstream error (for example a failed
	// generation); the returned messages are still valid.
	Warning string
}

// FeedbackRequest is the body of a feedback PATCH. An empty Feedback clears
// the rating.
type FeedbackRequest struct {
	Feedback   model.Feedback `json:"feedback"`
	ReasonCode string         `json:"reason_code"`
	ReasonText string         `json:"reason_text"`
}

type feedbackResponse struct {
	Message *model.MessagePatch `json:"message"`
}

type graphResponse struct {
	Graph *string `json:"graph"`
	Error string  `json:"error"`
}

type relatedResponse struct {
	Questions *[]string `json:"questions"`
	Error     string    `json:"error"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
