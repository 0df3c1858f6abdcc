// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

// ReasonOther is the reason code that requires free text.
const ReasonOther = "other"

// Reason is a selectable negative-feedback reason.
type Reason struct {
	Code  string
	Label string
}

// Reasons lists the negative-feedback reasons in display order.
var Reasons = []Reason{
	{Code: "incorrect_fact", Label: "사실과 다름"},
	{Code: "wrong_reference", Label: "참고문헌 오기"},
	{Code: "too_vague", Label: "모호함"},
	{Code: "misunderstood", Label: "질문을 이해 못함"},
	{Code: ReasonOther, Label: "기타"},
}

// ReasonIndex returns the position of code in Reasons, or -1.
func ReasonIndex(code string) int {
	for i, r := range Reasons {
		if r.Code == code {
			return i
		}
	}
	return -1
}

// ReasonLabel returns the display label for code, or code itself.
func ReasonLabel(code string) string {
	if i := ReasonIndex(code); i >= 0 {
		return Reasons[i].Label
	}
	return code
}
