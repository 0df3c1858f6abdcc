// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
//
// # Key Types
//
//   - ID: opaque server identifier; decodes from JSON numbers or strings
//   - Conversation: summary row shown in the sidebar
//   - Message: one chat turn, optionally carrying feedback and citations
//   - Citation: display-only bibliographic reference
//   - MessagePatch: partial message echoed by the feedback endpoint
//
// Optimistic messages use temporary IDs of the form "temp-<unix millis>"
// (see NewTempID); the backend never issues IDs with that prefix.
package model
