// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeNamed(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantDark *bool
	}{
		{"dark", "dark", boolPtr(true)},
		{"LIGHT", "light", boolPtr(false)},
		{"auto", "auto", nil},
		{"neon", "auto", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			theme := NewThemeNamed(tc.name)
			if theme.Name != tc.wantName {
				t.Errorf("Name = %q, want %q", theme.Name, tc.wantName)
			}
			if tc.wantDark != nil && theme.IsDark != *tc.wantDark {
				t.Errorf("IsDark = %v, want %v", theme.IsDark, *tc.wantDark)
			}
		})
	}
}

func TestValidThemeName(t *testing.T) {
	for _, name := range []string{"auto", "dark", " Light "} {
		if !ValidThemeName(name) {
			t.Errorf("ValidThemeName(%q) = false", name)
		}
	}
	if ValidThemeName("solarized") {
		t.Error("ValidThemeName accepted an unknown theme")
	}
}

func TestThemeRendersText(t *testing.T) {
	theme := NewThemeNamed("dark")
	out := theme.UserBubble.Render("안녕하세요")
	if !strings.Contains(out, "안녕하세요") {
		t.Errorf("rendered bubble lost its text: %q", out)
	}
}

func boolPtr(b bool) *bool { return &b }
