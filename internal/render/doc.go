// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render projects a store.Session into a view tree.
//
// Build and Sidebar are pure: they read the session and return plain data.
// Turning the tree into terminal output is the job of internal/ui/chat,
// which keeps this package testable without a terminal.
package render
