// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/store"
)

// Options adjusts a projection.
type Options struct {
	// SelectedMessage is the assistant message targeted by feedback and
	// panel actions.
	SelectedMessage model.ID
}

// Build projects the chat pane of s.
func Build(s *store.Session, opts Options) Tree {
	tree := Tree{ScrollToEnd: true}

	id, ok := s.Current()
	if !ok {
		tree.Kind = KindEmptyPrompt
		tree.Heading = EmptyHeading
		tree.Text = EmptyText
		return tree
	}
	if conv := s.CurrentConversation(); conv != nil {
		tree.Title = conv.DisplayTitle()
	}

	msgs := s.Messages(id)
	tree.TemplatesVisible = len(msgs) == 0

	switch {
	case s.LoadingMessages:
		tree.Kind = KindSpinner
		tree.Text = LoadingText
	case len(msgs) == 0:
		tree.Kind = KindTemplates
		tree.Heading = TemplatesHeading
		tree.Text = TemplatesText
		tree.Templates = QuickTemplates
	default:
		tree.Kind = KindBubbles
		tree.Bubbles = make([]Bubble, 0, len(msgs))
		for _, m := range msgs {
			b := bubble(m)
			b.Selected = m.ID == opts.SelectedMessage && m.IsAssistant()
			b.Revealing = s.Reveal.Animating(m.ID)
			tree.Bubbles = append(tree.Bubbles, b)
		}
		tree.LoadingPlaceholder = s.Sending
	}
	return tree
}

func bubble(m *model.Message) Bubble {
	b := Bubble{MessageID: m.ID, Role: m.Role, Raw: m.Content}
	if m.Role == model.RoleUser {
		return b
	}

	b.Lines = ParseInline(m.Content)
	failed := model.IsGenerationFailure(m.Content)
	if !m.IsAssistant() {
		return b
	}
	b.Feedback = &FeedbackControls{State: m.Feedback}
	if m.Feedback == model.FeedbackNegative && m.ReasonCode != "" {
		b.Feedback.Reason = model.ReasonLabel(m.ReasonCode)
	}
	if failed {
		return b
	}
	b.Tools = true
	if len(m.Citations) > 0 {
		b.Citations = citations(m)
	}
	return b
}

func citations(m *model.Message) *CitationBlock {
	block := &CitationBlock{
		Label: m.ReferenceType.Label(),
		Items: make([]CitationItem, 0, len(m.Citations)),
	}
	for _, c := range m.Citations {
		block.Items = append(block.Items, CitationItem{
			Label:  c.Label,
			Title:  c.DisplayTitle(),
			Byline: c.Byline(),
			Link:   c.Link(),
			DOI:    c.DOIURL(),
			PubMed: c.PubMedURL(),
		})
	}
	return block
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ParseInline splits content into lines and marks **bold** runs. Markers
// never span lines, and an unmatched marker is kept as literal text.
func ParseInline(content string) []Line {
	raw := strings.Split(content, "\n")
	lines := make([]Line, 0, len(raw))
	for _, text := range raw {
		lines = append(lines, parseLine(text))
	}
	return lines
}

func parseLine(text string) Line {
	line := Line{}
	last := 0
	for _, loc := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			line = append(line, Span{Text: text[last:loc[0]]})
		}
		if loc[3] > loc[2] {
			line = append(line, Span{Text: text[loc[2]:loc[3]], Bold: true})
		}
		last = loc[1]
	}
	if last < len(text) {
		line = append(line, Span{Text: text[last:]})
	}
	return line
}
