// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across medchat.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with an ellipsis
//   - PadWidth: pad a string to a display width
//   - FirstLine: first non-blank line, for one-line titles
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Conversation titles mix Hangul and ASCII, so truncate by cells
//	title := util.TruncateWidth(conv.Title, 24)
//
//	// Persist cookies without leaving a half-written file behind
//	err := util.AtomicWriteFile(path, data, 0600)
package util
