// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a small local SQLite database next to the config.
//
// It holds two things: a snapshot of the last conversation list, used to
// draw the sidebar before the first API refresh completes, and the compose
// history offered by the line-mode REPL. Messages are never stored locally;
// the server is the only source of truth for conversation content.
package storage
