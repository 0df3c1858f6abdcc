// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"regexp"
	"strings"

	"github.com/jeranaias/medchat-tui/internal/model"
)

// Graph panel texts.
const (
	GraphLoadingText = "그래프를 생성하는 중입니다..."
	GraphEmptyText   = "그래프 데이터를 생성하지 못했습니다."
	GraphErrorText   = "그래프를 불러오지 못했습니다."
)

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	closingFence = regexp.MustCompile("```$")
	nodeLabel    = regexp.MustCompile(`\[([^\]]+)\]`)
)

// NormalizeGraph prepares a concept graph description for rendering. Code
// fences are removed and every bracketed node label is wrapped in double
// quotes so labels with parentheses or other punctuation are read as text.
// Labels already in single or double quotes are left as they are.
func NormalizeGraph(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if strings.HasPrefix(code, "```") {
		code = openingFence.ReplaceAllString(code, "")
		code = closingFence.ReplaceAllString(code, "")
		code = strings.TrimSpace(code)
	}
	return nodeLabel.ReplaceAllStringFunc(code, quoteLabel)
}

func quoteLabel(match string) string {
	inner := match[1 : len(match)-1]
	text := strings.TrimSpace(inner)
	if isQuoted(text) {
		return match
	}
	return `["` + strings.ReplaceAll(text, `"`, `\"`) + `"]`
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}

// GraphPanel is the concept graph modal for one assistant message.
type GraphPanel struct {
	req request

	// Source is the normalised graph description once loaded.
	Source string
}

// Open starts loading the graph of msgID.
func (g *GraphPanel) Open(msgID model.ID) bool {
	g.Source = ""
	return g.req.open(msgID)
}

// Phase returns the current phase.
func (g *GraphPanel) Phase() Phase { return g.req.phase }

// Target returns the message the panel was opened for.
func (g *GraphPanel) Target() model.ID { return g.req.target }

// Finish applies the response for msgID. Stale responses are ignored and
// false is returned.
func (g *GraphPanel) Finish(msgID model.ID, graph string, err error) bool {
	if !g.req.accepts(msgID) {
		return false
	}
	if err != nil {
		g.req.phase = PhaseFailed
		return true
	}
	g.Source = NormalizeGraph(graph)
	g.req.phase = PhaseResult
	return true
}

// Empty reports whether a loaded graph had nothing to draw.
func (g *GraphPanel) Empty() bool {
	return g.req.phase == PhaseResult && g.Source == ""
}

// Close resets the panel.
func (g *GraphPanel) Close() {
	g.req.close()
	g.Source = ""
}
