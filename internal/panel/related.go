// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/model"
)

// Related panel texts.
const (
	RelatedLoadingText = "관련 질문을 찾는 중입니다..."
	RelatedEmptyText   = "추천할 관련 질문이 없습니다."
	RelatedErrorText   = "관련 질문을 불러오지 못했습니다."
)

// RelatedPanel lists follow-up questions for one assistant message.
type RelatedPanel struct {
	req request

	Questions []string
	Cursor    int
}

// Open starts loading suggestions for msgID.
func (r *RelatedPanel) Open(msgID model.ID) bool {
	r.Questions = nil
	r.Cursor = 0
	return r.req.open(msgID)
}

// Phase returns the current phase.
func (r *RelatedPanel) Phase() Phase { return r.req.phase }

// Target returns the message the panel was opened for.
func (r *RelatedPanel) Target() model.ID { return r.req.target }

// Finish applies the response for msgID. Blank suggestions are dropped and
// at most api.MaxRelatedQuestions are kept.
func (r *RelatedPanel) Finish(msgID model.ID, questions []string, err error) bool {
	if !r.req.accepts(msgID) {
		return false
	}
	if err != nil {
		r.req.phase = PhaseFailed
		return true
	}
	r.Questions = r.Questions[:0]
	for _, q := range questions {
		if strings.TrimSpace(q) == "" {
			continue
		}
		r.Questions = append(r.Questions, q)
		if len(r.Questions) == api.MaxRelatedQuestions {
			break
		}
	}
	r.req.phase = PhaseResult
	return true
}

// Move shifts the highlighted suggestion by delta, clamped to the list.
func (r *RelatedPanel) Move(delta int) {
	r.Cursor += delta
	if r.Cursor >= len(r.Questions) {
		r.Cursor = len(r.Questions) - 1
	}
	if r.Cursor < 0 {
		r.Cursor = 0
	}
}

// Choose returns the highlighted question verbatim, for copying into the
// compose input. It never sends anything.
func (r *RelatedPanel) Choose() (string, bool) {
	if r.req.phase != PhaseResult || r.Cursor >= len(r.Questions) {
		return "", false
	}
	return r.Questions[r.Cursor], true
}

// Close resets the panel.
func (r *RelatedPanel) Close() {
	r.req.close()
	r.Questions = nil
	r.Cursor = 0
}
