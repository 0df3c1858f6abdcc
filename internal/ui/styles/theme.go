// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Name         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarFocused    lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarItemCursor lipgloss.Style
	SidebarDate       lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SelectedBubble  lipgloss.Style
	SystemBubble    lipgloss.Style
	RoleLabel       lipgloss.Style
	Bold            lipgloss.Style
	Pending         lipgloss.Style
	RevealCursor    lipgloss.Style

	CitationBox    lipgloss.Style
	CitationTitle  lipgloss.Style
	CitationLabel  lipgloss.Style
	CitationByline lipgloss.Style
	Link           lipgloss.Style

	FeedbackPositive lipgloss.Style
	FeedbackNegative lipgloss.Style
	FeedbackIdle     lipgloss.Style
	ToolHint         lipgloss.Style

	// ==========================================================================
	// PLACEHOLDERS
	// ==========================================================================

	EmptyHeading  lipgloss.Style
	EmptyText     lipgloss.Style
	TemplateKey   lipgloss.Style
	TemplateTitle lipgloss.Style
	TemplateText  lipgloss.Style
	Spinner       lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	InputPrompt           lipgloss.Style

	// ==========================================================================
	// MODALS
	// ==========================================================================

	Modal         lipgloss.Style
	AlertModal    lipgloss.Style
	ModalTitle    lipgloss.Style
	ModalHint     lipgloss.Style
	OptionItem    lipgloss.Style
	OptionCursor  lipgloss.Style
	ValidationMsg lipgloss.Style
	ErrorText     lipgloss.Style
}

// NewTheme creates a theme that follows the terminal background.
func NewTheme() *Theme {
	return NewThemeNamed("auto")
}

// NewThemeNamed creates a theme for name: "auto", "dark" or "light".
// Unknown names behave like "auto".
func NewThemeNamed(name string) *Theme {
	colorProfile := termenv.ColorProfile()
	name = strings.ToLower(strings.TrimSpace(name))

	isDark := termenv.HasDarkBackground()
	switch name {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		name = "auto"
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// ValidThemeName reports whether name is accepted by NewThemeNamed.
func ValidThemeName(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto", "dark", "light":
		return true
	}
	return false
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Layout
	t.Header = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarFocused = t.Sidebar.BorderForeground(Teal)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarItemActive = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.SidebarItemCursor = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal)
	t.SidebarDate = lipgloss.NewStyle().Foreground(TextMuted)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)
	t.SelectedBubble = t.AssistantBubble.
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Amber)
	t.SystemBubble = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		Padding(0, 1)
	t.RoleLabel = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Pending = lipgloss.NewStyle().Italic(true).Foreground(Amber)
	t.RevealCursor = lipgloss.NewStyle().Foreground(Teal)

	t.CitationBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(CitationBorder).
		PaddingLeft(1)
	t.CitationTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.CitationLabel = lipgloss.NewStyle().Foreground(Teal)
	t.CitationByline = lipgloss.NewStyle().Foreground(TextMuted)
	t.Link = lipgloss.NewStyle().Underline(true).Foreground(Indigo)

	t.FeedbackPositive = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.FeedbackNegative = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.FeedbackIdle = lipgloss.NewStyle().Foreground(TextMuted)
	t.ToolHint = lipgloss.NewStyle().Foreground(TextMuted)

	// Placeholders
	t.EmptyHeading = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.EmptyText = lipgloss.NewStyle().Foreground(TextMuted)
	t.TemplateKey = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.TemplateTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.TemplateText = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Spinner = lipgloss.NewStyle().Foreground(Teal)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputContainerFocused = t.InputContainer.BorderForeground(Indigo)
	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Indigo)

	// Modals
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ModalBorder).
		Padding(1, 2)
	t.AlertModal = t.Modal.BorderForeground(AlertBorder)
	t.ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.ModalHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.OptionItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.OptionCursor = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.ValidationMsg = lipgloss.NewStyle().Foreground(Amber)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
}
