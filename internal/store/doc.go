// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side conversation state.
//
// A Session is owned by exactly one controller (the Bubble Tea model or a
// CLI command) and is never shared between goroutines. Every operation that
// talks to the backend is split in two halves: a Begin half that validates
// and applies the local change, and a Finish half that applies the
// response. The controller performs the network call in between, so the
// store itself never blocks.
//
// Responses are always applied to the conversation they were issued for,
// which may no longer be the current one when they arrive.
package store
