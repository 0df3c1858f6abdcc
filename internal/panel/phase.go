// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import "github.com/jeranaias/medchat-tui/internal/model"

// Phase is the lifecycle of a request-backed panel.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResult
	PhaseFailed
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResult:
		return "result"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// request tracks which message a panel is loading for. A response for any
// other message, or one arriving after the panel closed, is dropped.
type request struct {
	phase  Phase
	target model.ID
}

func (r *request) open(target model.ID) bool {
	if target.IsZero() {
		return false
	}
	r.phase = PhaseLoading
	r.target = target
	return true
}

func (r *request) accepts(target model.ID) bool {
	return r.phase == PhaseLoading && r.target == target
}

func (r *request) close() {
	r.phase = PhaseIdle
	r.target = ""
}
