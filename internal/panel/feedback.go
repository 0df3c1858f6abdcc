// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/model"
)

// Validation prompts shown inside the feedback dialog.
const (
	PromptSelectReason = "사유를 선택해주세요."
	PromptOtherText    = "기타 사유를 입력해주세요."
)

// TogglePositive returns the request for pressing "positive" on msg: set it,
// or clear it when it is already positive.
func TogglePositive(msg *model.Message) api.FeedbackRequest {
	if msg.Feedback == model.FeedbackPositive {
		return api.FeedbackRequest{Feedback: model.FeedbackNone}
	}
	return api.FeedbackRequest{Feedback: model.FeedbackPositive}
}

// FeedbackDialog is the negative feedback form for one message.
type FeedbackDialog struct {
	MessageID  model.ID
	ReasonCode string
	ReasonText string

	// Prompt is the validation message of the last rejected submit.
	Prompt string
}

// OpenNegative opens the dialog pre-filled from the message's current reason.
func OpenNegative(msg *model.Message) *FeedbackDialog {
	d := &FeedbackDialog{MessageID: msg.ID}
	if model.ReasonIndex(msg.ReasonCode) >= 0 {
		d.ReasonCode = msg.ReasonCode
	}
	d.ReasonText = msg.ReasonText
	return d
}

// Selected returns the index of the chosen reason in model.Reasons, or -1.
func (d *FeedbackDialog) Selected() int {
	return model.ReasonIndex(d.ReasonCode)
}

// Select chooses the reason at index i of model.Reasons.
func (d *FeedbackDialog) Select(i int) {
	if i < 0 || i >= len(model.Reasons) {
		return
	}
	d.ReasonCode = model.Reasons[i].Code
	d.Prompt = ""
}

// Move shifts the selection by delta, wrapping around.
func (d *FeedbackDialog) Move(delta int) {
	n := len(model.Reasons)
	i := d.Selected()
	if i < 0 {
		if delta < 0 {
			i = 0
		} else {
			i = -1
		}
	}
	d.Select(((i+delta)%n + n) % n)
}

// NeedsText reports whether the free text field is required.
func (d *FeedbackDialog) NeedsText() bool {
	return d.ReasonCode == model.ReasonOther
}

// Submit validates the form. When it is incomplete, ok is false and Prompt
// says what is missing; the dialog stays open.
func (d *FeedbackDialog) Submit() (req api.FeedbackRequest, ok bool) {
	if d.ReasonCode == "" {
		d.Prompt = PromptSelectReason
		return api.FeedbackRequest{}, false
	}
	text := strings.TrimSpace(d.ReasonText)
	if d.NeedsText() && text == "" {
		d.Prompt = PromptOtherText
		return api.FeedbackRequest{}, false
	}
	d.Prompt = ""
	return api.FeedbackRequest{
		Feedback:   model.FeedbackNegative,
		ReasonCode: d.ReasonCode,
		ReasonText: text,
	}, true
}

// Remove returns the request that clears the message's feedback. The dialog
// closes regardless of the outcome.
func (d *FeedbackDialog) Remove() api.FeedbackRequest {
	return api.FeedbackRequest{Feedback: model.FeedbackNone}
}
