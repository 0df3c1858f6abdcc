// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the medchat TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light
and dark terminals. The Theme struct groups the styles by screen area:

	theme := styles.NewTheme()
	theme.UserBubble.Render("...")

# Color System (colors.go)

  - Teal - brand color, sidebar selection, the assistant avatar
  - Indigo - user messages and focus rings
  - Emerald - positive feedback
  - Rose - negative feedback and alerts
  - Amber - warnings and the loading placeholder

# Theme Names

NewThemeNamed accepts "auto", "dark" or "light". "auto" follows termenv's
background detection; the others force a palette side, which is useful
when the terminal misreports its background.
*/
package styles
