// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading indicator with a message.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
	showTimer bool
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return Spinner{spinner: s, message: message}
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) { s.message = msg }

// SetShowTimer enables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) { s.showTimer = show }

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner. Calling Start on a running spinner keeps its
// start time and does not schedule a second tick loop.
func (s *Spinner) Start() tea.Cmd {
	if s.isActive {
		return nil
	}
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() { s.isActive = false }

// IsActive returns whether the spinner is running.
func (s *Spinner) IsActive() bool { return s.isActive }

// Elapsed returns the time since Start.
func (s *Spinner) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update advances the animation. Ticks are dropped while stopped, which ends
// the tick loop.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner line.
func (s Spinner) View(theme *styles.Theme) string {
	if !s.isActive {
		return ""
	}
	out := theme.Spinner.Render(s.spinner.View()) + " " + theme.EmptyText.Render(s.message)
	if s.showTimer {
		if secs := int(s.Elapsed().Seconds()); secs > 0 {
			out += theme.ShortcutDesc.Render(fmt.Sprintf(" %ds", secs))
		}
	}
	return out
}
