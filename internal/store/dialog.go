// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "github.com/jeranaias/medchat-tui/internal/model"

// DialogKind identifies the modal currently shown over the chat.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogAlert
	DialogConfirmDelete
	DialogFeedback
	DialogGraph
	DialogRelated
)

// String returns the dialog name used in logs.
func (k DialogKind) String() string {
	switch k {
	case DialogAlert:
		return "alert"
	case DialogConfirmDelete:
		return "confirm_delete"
	case DialogFeedback:
		return "feedback"
	case DialogGraph:
		return "graph"
	case DialogRelated:
		return "related"
	default:
		return "none"
	}
}

// Dialog is the single open modal. Target is the conversation id for a
// delete confirmation and the message id for the per-message panels.
type Dialog struct {
	Kind   DialogKind
	Text   string
	Target model.ID
}

// Open reports whether any dialog is shown.
func (d Dialog) Open() bool { return d.Kind != DialogNone }

// User-facing alert texts.
const (
	AlertCreateFailed   = "새 대화를 만들지 못했습니다. 다시 시도해주세요."
	AlertDeleteFailed   = "대화를 삭제하지 못했습니다. 다시 시도해주세요."
	AlertSendFailed     = "메시지를 전송하지 못했습니다. 다시 시도해주세요."
	AlertFeedbackFailed = "피드백을 저장하지 못했습니다. 다시 시도해주세요."
	ConfirmDeleteText   = "이 대화를 삭제할까요?"
)
