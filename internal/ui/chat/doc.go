// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea controller of the medchat client.
//
// It owns a store.Session and turns key presses into store operations. Each
// network call runs as a tea.Cmd against an api.Backend and its result comes
// back as one of the *Msg types in messages.go, where the matching finish
// half of the store operation is applied. State is only mutated inside
// Update.
//
// # Layout
//
//	+-----------+---------------------------------+
//	| sidebar   | header                          |
//	|           | messages (viewport)             |
//	|           | compose input                   |
//	+-----------+---------------------------------+
//	| status bar                                  |
//	+---------------------------------------------+
//
// Dialogs (alert, delete confirmation, feedback, concept graph, related
// questions) are drawn centred over the whole screen.
package chat
