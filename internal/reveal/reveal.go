// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal animates the arrival of an assistant reply.
//
// The backend returns complete messages; there is no token stream. To keep
// the feel of a streamed answer, the message text is cleared and revealed
// again in fixed-size slices, one slice per tick. Each animation is a Handle
// owned by a Set so that every running animation can be canceled at once
// when the visible conversation changes.
//
// The animation is cosmetic. The message is already stored server-side
// before it starts, and a canceled handle puts the full text back.
package reveal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/model"
)

const (
	// DefaultInterval is the time between reveal steps.
	DefaultInterval = 30 * time.Millisecond

	// Frames is the nominal number of steps for a long message.
	Frames = 60

	// MinChunk is the smallest number of characters revealed per step.
	MinChunk = 2
)

// ChunkSize returns how many characters are revealed per step for a text of
// n characters: max(MinChunk, floor(n/Frames)).
func ChunkSize(n int) int {
	if c := n / Frames; c > MinChunk {
		return c
	}
	return MinChunk
}

// Ticks returns the number of steps needed to reveal n characters.
func Ticks(n int) int {
	if n <= 0 {
		return 0
	}
	c := ChunkSize(n)
	return (n + c - 1) / c
}

// =============================================================================
// HANDLE
// =============================================================================

// Handle is one running reveal animation.
type Handle struct {
	id     uint64
	msg    *model.Message
	full   []rune
	cursor int
	chunk  int
	done   bool
}

// ID returns the handle identifier carried by its tick messages.
func (h *Handle) ID() uint64 { return h.id }

// MessageID returns the animated message's identifier.
func (h *Handle) MessageID() model.ID { return h.msg.ID }

// Cursor returns how many characters are currently displayed.
func (h *Handle) Cursor() int { return h.cursor }

// Len returns the full text length in characters.
func (h *Handle) Len() int { return len(h.full) }

// Done reports whether the handle finished or was canceled.
func (h *Handle) Done() bool { return h.done }

// step reveals the next slice and reports whether the text is complete.
func (h *Handle) step() bool {
	if h.done {
		return true
	}
	h.cursor += h.chunk
	if h.cursor >= len(h.full) {
		h.cursor = len(h.full)
		h.done = true
	}
	h.msg.Content = string(h.full[:h.cursor])
	return h.done
}

// cancel stops the animation and restores the full text.
func (h *Handle) cancel() {
	h.cursor = len(h.full)
	h.msg.Content = string(h.full)
	h.done = true
}

// =============================================================================
// SET
// =============================================================================

// Set tracks the active animations of one chat session.
type Set struct {
	nextID uint64
	active map[uint64]*Handle
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{active: make(map[uint64]*Handle)}
}

// Start registers an animation for msg, whose Content must already hold the
// complete text. The displayed content is cleared immediately.
func (s *Set) Start(msg *model.Message) *Handle {
	s.nextID++
	full := []rune(msg.Content)
	h := &Handle{
		id:    s.nextID,
		msg:   msg,
		full:  full,
		chunk: ChunkSize(len(full)),
	}
	msg.Content = ""
	if len(full) == 0 {
		h.done = true
		return h
	}
	s.active[h.id] = h
	return h
}

// Advance performs one step of the animation id. It returns false when id is
// unknown (finished or canceled earlier), in which case no tick should be
// scheduled. finished is true on the step that completes the text; the
// handle is then removed from the set.
func (s *Set) Advance(id uint64) (ok, finished bool) {
	h, exists := s.active[id]
	if !exists {
		return false, false
	}
	if h.step() {
		delete(s.active, id)
		return true, true
	}
	return true, false
}

// CancelAll stops every running animation, restoring full texts, and
// returns how many were stopped.
func (s *Set) CancelAll() int {
	n := len(s.active)
	for id, h := range s.active {
		h.cancel()
		delete(s.active, id)
	}
	return n
}

// Len returns the number of running animations.
func (s *Set) Len() int { return len(s.active) }

// Animating reports whether the message with id is being revealed.
func (s *Set) Animating(id model.ID) bool {
	for _, h := range s.active {
		if h.msg.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// BUBBLE TEA GLUE
// =============================================================================

// TickMsg advances the animation with the given handle id.
type TickMsg struct {
	HandleID uint64
}

// Tick schedules the next step of handle id after interval.
func Tick(id uint64, interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return TickMsg{HandleID: id}
	})
}
