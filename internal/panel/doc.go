// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel holds the per-message panel logic: the feedback dialog, the
// concept graph panel and the related questions panel. The state machines
// here are free of terminal code; internal/ui/components draws them.
package panel
