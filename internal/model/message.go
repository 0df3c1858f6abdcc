// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// FEEDBACK
// =============================================================================

// Feedback is the tri-state rating of an assistant message.
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// ReferenceType selects how a message's citation block is labelled.
type ReferenceType string

const (
	ReferenceInternal ReferenceType = "internal"
	ReferenceExternal ReferenceType = "external"
)

// Label returns the heading shown above the citation block.
func (r ReferenceType) Label() string {
	if r == ReferenceInternal {
		return "내부 자료"
	}
	return "참고문헌"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        ID     `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`

	Feedback   Feedback `json:"feedback,omitempty"`
	ReasonCode string   `json:"reason_code,omitempty"`
	ReasonText string   `json:"reason_text,omitempty"`

	Citations     []Citation    `json:"citations,omitempty"`
	ReferenceType ReferenceType `json:"reference_type,omitempty"`
}

// NewOptimisticMessage creates the local placeholder for a user message that
// has not been confirmed by the server yet.
func NewOptimisticMessage(content string, now time.Time) *Message {
	return &Message{
		ID:        NewTempID(now),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// IsAssistant reports whether the message was produced by the assistant.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// Clone returns a copy that shares no slices with m.
func (m *Message) Clone() *Message {
	c := *m
	if m.Citations != nil {
		c.Citations = append([]Citation(nil), m.Citations...)
	}
	return &c
}

// =============================================================================
// PARTIAL UPDATES
// =============================================================================

// MessagePatch is a partial message. Nil fields were absent from the
// server's payload and leave the cached value untouched.
type MessagePatch struct {
	ID            *ID            `json:"id"`
	Role          *Role          `json:"role"`
	Content       *string        `json:"content"`
	CreatedAt     *string        `json:"created_at"`
	Feedback      *Feedback      `json:"feedback"`
	ReasonCode    *string        `json:"reason_code"`
	ReasonText    *string        `json:"reason_text"`
	Citations     *[]Citation    `json:"citations"`
	ReferenceType *ReferenceType `json:"reference_type"`
}

// Merge applies p over m. Every field present in p wins.
func (m *Message) Merge(p MessagePatch) {
	if p.ID != nil && !p.ID.IsZero() {
		m.ID = *p.ID
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
	}
	if p.Feedback != nil {
		m.Feedback = *p.Feedback
	}
	if p.ReasonCode != nil {
		m.ReasonCode = *p.ReasonCode
	}
	if p.ReasonText != nil {
		m.ReasonText = *p.ReasonText
	}
	if p.Citations != nil {
		m.Citations = append([]Citation(nil), (*p.Citations)...)
	}
	if p.ReferenceType != nil {
		m.ReferenceType = *p.ReferenceType
	}
}

// =============================================================================
// GENERATION FAILURE
// =============================================================================

// FailureMarkers are substrings the backend puts in the apology placeholder
// it stores when answer generation fails.
var FailureMarkers = []string{
	"응답을 생성하는 중 오류가 발생했습니다",
	"답변을 생성하지 못했습니다",
	"[generation_error]",
}

// IsGenerationFailure reports whether content is the backend's apology
// placeholder rather than a real answer.
func IsGenerationFailure(content string) bool {
	for _, marker := range FailureMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
