// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeContent prepares composed text for sending. Some terminals (and
// macOS pasteboards) deliver Hangul decomposed into jamo; the backend stores
// and searches NFC, so the text is recomposed here.
func NormalizeContent(s string) string {
	return norm.NFC.String(s)
}

// IsBlank reports whether s has no visible content.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
