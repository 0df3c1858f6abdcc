// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the medchat TUI.

# Modals

Alerts, the delete confirmation, the feedback form, the concept graph
panel and the related questions panel are drawn as centered boxes over the
chat. Only one is shown at a time; the chat model decides which.

	box := components.RenderAlert(theme, text, width)
	view := components.Overlay(box, width, height)

# Graph Rendering

The concept graph is rendered through glamour as a fenced mermaid block.
If glamour fails, the normalised source is shown highlighted by chroma.

# Spinner

Spinner wraps bubbles/spinner with a message and elapsed time.
*/
package components
