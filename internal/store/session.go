// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log"
	"time"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/reveal"
)

// Session is the state of one chat client.
type Session struct {
	// Conversations is the sidebar list, most recent first.
	Conversations []model.Conversation

	// Sending is true while a user message is in flight.
	Sending bool

	// LoadingMessages is true while the current conversation's messages
	// are being fetched.
	LoadingMessages bool

	// Reveal holds the running reveal animations.
	Reveal *reveal.Set

	// Dialog is the open modal, if any.
	Dialog Dialog

	// Dirty increases on every state change.
	Dirty uint64

	current   model.ID
	cache     map[model.ID][]*model.Message
	loadingID model.ID
	parked    string
}

// New creates an empty session.
func New() *Session {
	return &Session{
		cache:  make(map[model.ID][]*model.Message),
		Reveal: reveal.NewSet(),
	}
}

func (s *Session) touch() { s.Dirty++ }

// =============================================================================
// ACCESSORS
// =============================================================================

// Current returns the selected conversation id.
func (s *Session) Current() (model.ID, bool) {
	return s.current, !s.current.IsZero()
}

// CurrentConversation returns the selected conversation summary, or nil when
// nothing is selected or the summary is not in the list.
func (s *Session) CurrentConversation() *model.Conversation {
	if s.current.IsZero() {
		return nil
	}
	if i := model.IndexOf(s.Conversations, s.current); i >= 0 {
		return &s.Conversations[i]
	}
	return nil
}

// Messages returns the cached messages of id. The slice must not be
// modified by the caller.
func (s *Session) Messages(id model.ID) []*model.Message {
	return s.cache[id]
}

// CurrentMessages returns the cached messages of the current conversation.
func (s *Session) CurrentMessages() []*model.Message {
	if s.current.IsZero() {
		return nil
	}
	return s.cache[s.current]
}

// Cached reports whether messages for id are in the cache.
func (s *Session) Cached(id model.ID) bool {
	_, ok := s.cache[id]
	return ok
}

// FindMessage looks a message up across every cached conversation.
func (s *Session) FindMessage(id model.ID) (*model.Message, model.ID) {
	if msg := findIn(s.cache[s.current], id); msg != nil {
		return msg, s.current
	}
	for convID, msgs := range s.cache {
		if msg := findIn(msgs, id); msg != nil {
			return msg, convID
		}
	}
	return nil, ""
}

func findIn(msgs []*model.Message, id model.ID) *model.Message {
	for _, m := range msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// =============================================================================
// DIALOGS
// =============================================================================

// Alert opens a blocking alert with text.
func (s *Session) Alert(text string) {
	s.Dialog = Dialog{Kind: DialogAlert, Text: text}
	s.touch()
}

// OpenDialog opens a per-message panel for target.
func (s *Session) OpenDialog(kind DialogKind, target model.ID) {
	s.Dialog = Dialog{Kind: kind, Target: target}
	s.touch()
}

// CloseDialog closes whatever modal is open.
func (s *Session) CloseDialog() {
	if s.Dialog.Open() {
		s.Dialog = Dialog{}
		s.touch()
	}
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// Hydrate seeds the conversation list before the first API refresh, the
// way a page would embed the initial list. The first entry becomes current.
func (s *Session) Hydrate(list []model.Conversation) {
	s.Conversations = append([]model.Conversation(nil), list...)
	if len(s.Conversations) > 0 && s.current.IsZero() {
		s.current = s.Conversations[0].ID
	}
	s.touch()
}

// ApplyConversations replaces the list after a refresh. When preserve is
// false, or the current conversation disappeared, the first conversation is
// selected. It returns the id whose messages should be loaded next, if any.
func (s *Session) ApplyConversations(list []model.Conversation, preserve bool) (model.ID, bool) {
	s.Conversations = append([]model.Conversation(nil), list...)
	defer s.touch()

	if len(list) == 0 {
		s.setCurrent("")
		return "", false
	}
	if !preserve || model.IndexOf(list, s.current) < 0 {
		s.setCurrent(list[0].ID)
	}
	return s.current, true
}

// FailConversations records a failed refresh. The existing list is kept.
func (s *Session) FailConversations(err error) {
	log.Printf("CONVERSATIONS_LOAD_FAILED | error=%v", err)
	s.touch()
}

// Select makes id current. It cancels running reveal animations and returns
// true when the conversation's messages must still be fetched.
func (s *Session) Select(id model.ID) bool {
	if id == s.current {
		return !s.Cached(id)
	}
	s.setCurrent(id)
	s.touch()
	return !s.Cached(id)
}

func (s *Session) setCurrent(id model.ID) {
	if id != s.current {
		s.Reveal.CancelAll()
		s.LoadingMessages = false
		s.loadingID = ""
	}
	s.current = id
}

// =============================================================================
// MESSAGE LOADING
// =============================================================================

// BeginLoad starts loading the messages of id. It returns false when the
// cache already holds them and force is not set, in which case no request
// should be made.
func (s *Session) BeginLoad(id model.ID, force bool) bool {
	if id.IsZero() {
		return false
	}
	if !force && s.Cached(id) {
		s.touch()
		return false
	}
	if id == s.current {
		s.LoadingMessages = true
		s.loadingID = id
	}
	s.touch()
	return true
}

// FinishLoad applies a message fetch for id. The cache is replaced wholesale
// and an error leaves it empty. Reveal animations and the loading flag are
// only reset when id is still the conversation being displayed.
func (s *Session) FinishLoad(id model.ID, msgs []*model.Message, err error) {
	if err != nil {
		log.Printf("MESSAGES_LOAD_FAILED | conversation=%s error=%v", id, err)
		msgs = nil
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	s.cache[id] = msgs

	if id == s.current {
		s.Reveal.CancelAll()
	}
	if id == s.loadingID {
		s.LoadingMessages = false
		s.loadingID = ""
	}
	s.touch()
}

// =============================================================================
// CREATE / DELETE
// =============================================================================

// FinishCreate applies a conversation creation. On success the conversation
// goes to the front of the list, becomes current and gets an empty cache.
// If a send was waiting for the conversation, its ticket is returned and
// the request should be issued next.
func (s *Session) FinishCreate(conv model.Conversation, err error, now time.Time) (*SendTicket, error) {
	if err != nil {
		log.Printf("CONVERSATION_CREATE_FAILED | error=%v", err)
		if s.parked != "" {
			s.parked = ""
			s.Sending = false
		}
		s.Alert(AlertCreateFailed)
		return nil, err
	}

	list := make([]model.Conversation, 0, len(s.Conversations)+1)
	list = append(list, conv)
	for _, c := range s.Conversations {
		if c.ID != conv.ID {
			list = append(list, c)
		}
	}
	s.Conversations = list
	s.setCurrent(conv.ID)
	s.cache[conv.ID] = []*model.Message{}
	s.touch()

	if s.parked == "" {
		return nil, nil
	}
	content := s.parked
	s.parked = ""
	return s.appendOptimistic(conv.ID, content, now), nil
}

// RequestDelete asks for confirmation before deleting id.
func (s *Session) RequestDelete(id model.ID) bool {
	if id.IsZero() || model.IndexOf(s.Conversations, id) < 0 {
		return false
	}
	s.Dialog = Dialog{Kind: DialogConfirmDelete, Text: ConfirmDeleteText, Target: id}
	s.touch()
	return true
}

// ConfirmDelete accepts the open delete confirmation and returns the id to
// delete.
func (s *Session) ConfirmDelete() (model.ID, bool) {
	if s.Dialog.Kind != DialogConfirmDelete {
		return "", false
	}
	id := s.Dialog.Target
	s.CloseDialog()
	return id, true
}

// FinishDelete applies a deletion. On success the cache of id is evicted and
// current is cleared if it matched; the caller then refreshes the list
// without preserving the selection. Failure leaves state unchanged.
func (s *Session) FinishDelete(id model.ID, err error) error {
	if err != nil {
		log.Printf("CONVERSATION_DELETE_FAILED | conversation=%s error=%v", id, err)
		s.Alert(AlertDeleteFailed)
		return err
	}
	delete(s.cache, id)
	if s.current == id {
		s.setCurrent("")
	}
	s.touch()
	return nil
}
