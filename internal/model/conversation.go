// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"time"
)

// DefaultTitle is the title the backend gives a conversation before the
// first user message renames it.
const DefaultTitle = "새로운 대화"

// Conversation is the summary of one chat session.
type Conversation struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// DisplayTitle returns the title, falling back to DefaultTitle.
func (c Conversation) DisplayTitle() string {
	if c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

// Updated parses UpdatedAt. The zero time is returned when the timestamp is
// missing or malformed.
func (c Conversation) Updated() time.Time {
	return ParseTimestamp(c.UpdatedAt)
}

// ParseTimestamp parses an ISO-8601 timestamp as emitted by the backend.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IndexOf returns the position of id in list, or -1.
func IndexOf(list []Conversation, id ID) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
