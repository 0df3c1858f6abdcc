// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log"
	"time"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/reveal"
)

// SendAction tells the controller what to do after BeginSend.
type SendAction int

const (
	// SendIgnored means the content was blank or a send is in flight.
	SendIgnored SendAction = iota
	// SendNeedsConversation means a conversation must be created first;
	// FinishCreate returns the ticket once it exists.
	SendNeedsConversation
	// SendReady means the ticket's request should be issued now.
	SendReady
)

// SendTicket identifies one in-flight send.
type SendTicket struct {
	ConversationID model.ID
	TempID         model.ID
	Content        string
}

// BeginSend starts sending content to the current conversation. The content
// is NFC-normalised before it is stored.
func (s *Session) BeginSend(content string, now time.Time) (*SendTicket, SendAction) {
	if s.Sending || model.IsBlank(content) {
		return nil, SendIgnored
	}
	content = model.NormalizeContent(content)
	s.Sending = true

	if s.current.IsZero() {
		s.parked = content
		s.touch()
		return nil, SendNeedsConversation
	}
	return s.appendOptimistic(s.current, content, now), SendReady
}

func (s *Session) appendOptimistic(convID model.ID, content string, now time.Time) *SendTicket {
	msg := model.NewOptimisticMessage(content, now)
	prev := s.cache[convID]
	msgs := make([]*model.Message, len(prev), len(prev)+1)
	copy(msgs, prev)
	s.cache[convID] = append(msgs, msg)
	s.touch()
	return &SendTicket{ConversationID: convID, TempID: msg.ID, Content: content}
}

// FinishSend applies the answer to ticket. The temporary message is removed;
// on success the server's messages are appended. Assistant messages are
// animated only if the conversation is still displayed, and their handles
// are returned so the controller can schedule ticks. Sending is cleared last
// in every case. An answer for a conversation deleted meanwhile is dropped.
func (s *Session) FinishSend(t *SendTicket, msgs []*model.Message, warning string, err error) []*reveal.Handle {
	defer func() {
		s.Sending = false
		s.touch()
	}()
	if t == nil {
		return nil
	}

	s.removeMessage(t.ConversationID, t.TempID)
	if !s.Cached(t.ConversationID) {
		log.Printf("SEND_DROPPED | conversation=%s reason=deleted error=%v", t.ConversationID, err)
		return nil
	}

	if err != nil {
		log.Printf("SEND_FAILED | conversation=%s error=%v", t.ConversationID, err)
		s.Alert(AlertSendFailed)
		return nil
	}
	if warning != "" {
		log.Printf("SEND_WARNING | conversation=%s warning=%q", t.ConversationID, warning)
	}

	cur := s.cache[t.ConversationID]
	next := make([]*model.Message, 0, len(cur)+len(msgs))
	next = append(next, cur...)
	for _, m := range msgs {
		if m != nil {
			next = append(next, m)
		}
	}
	s.cache[t.ConversationID] = next

	if t.ConversationID != s.current {
		return nil
	}
	var handles []*reveal.Handle
	for _, m := range msgs {
		if m == nil || !m.IsAssistant() {
			continue
		}
		if h := s.Reveal.Start(m); !h.Done() {
			handles = append(handles, h)
		}
	}
	return handles
}

func (s *Session) removeMessage(convID, id model.ID) {
	msgs, ok := s.cache[convID]
	if !ok {
		return
	}
	out := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			out = append(out, m)
		}
	}
	s.cache[convID] = out
}

// =============================================================================
// FEEDBACK
// =============================================================================

// ApplyFeedback merges the server's echo into the cached message. It
// returns false when the message is no longer cached.
func (s *Session) ApplyFeedback(msgID model.ID, patch model.MessagePatch) bool {
	msg, _ := s.FindMessage(msgID)
	if msg == nil {
		return false
	}
	msg.Merge(patch)
	s.touch()
	return true
}

// FailFeedback records a failed feedback submission.
func (s *Session) FailFeedback(msgID model.ID, err error) {
	log.Printf("FEEDBACK_FAILED | message=%s error=%v", msgID, err)
	s.Alert(AlertFeedbackFailed)
}
