// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/medchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	conv := t.Conversation
	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(conv.DisplayTitle()))
		fmt.Fprintf(&sb, "conversation: %s\n", escapeYAML(conv.ID.String()))
		if conv.UpdatedAt != "" {
			fmt.Fprintf(&sb, "updated: %s\n", escapeYAML(conv.UpdatedAt))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(t.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
		sb.WriteString("generator: medchat-tui\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(conv.DisplayTitle()))

	for i, msg := range t.Messages {
		if msg == nil {
			continue
		}
		if e.options.IncludeTimestamps && msg.CreatedAt != "" {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", msg.Role.DisplayName(), formatTimestamp(msg.CreatedAt))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", msg.Role.DisplayName())
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if refs := CitationsMarkdown(msg); refs != "" {
			sb.WriteString(refs)
			sb.WriteString("\n")
		}
		if fb := e.formatFeedback(msg); fb != "" {
			sb.WriteString(fb)
			sb.WriteString("\n\n")
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// CitationsMarkdown renders the citation block of an assistant message as a
// numbered Markdown list, or "" when it has none.
func CitationsMarkdown(msg *model.Message) string {
	if !msg.IsAssistant() || len(msg.Citations) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", msg.ReferenceType.Label())
	for i, c := range msg.Citations {
		label := c.Label
		if label == "" {
			label = fmt.Sprint(i + 1)
		}
		title := escapeMarkdown(c.DisplayTitle())
		if link := c.Link(); link != "" {
			title = fmt.Sprintf("[%s](%s)", title, link)
		}
		fmt.Fprintf(&sb, "%d. [%s] %s", i+1, escapeMarkdown(label), title)
		if by := c.Byline(); by != "" {
			fmt.Fprintf(&sb, " - %s", by)
		}
		if u := c.DOIURL(); u != "" {
			fmt.Fprintf(&sb, " [DOI](%s)", u)
		}
		if u := c.PubMedURL(); u != "" {
			fmt.Fprintf(&sb, " [PubMed](%s)", u)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (e *MarkdownExporter) formatFeedback(msg *model.Message) string {
	switch msg.Feedback {
	case model.FeedbackPositive:
		return "<sub>Feedback: 👍</sub>"
	case model.FeedbackNegative:
		reason := model.ReasonLabel(msg.ReasonCode)
		if msg.ReasonText != "" {
			if reason != "" {
				reason += ": "
			}
			reason += msg.ReasonText
		}
		if reason == "" {
			return "<sub>Feedback: 👎</sub>"
		}
		return fmt.Sprintf("<sub>Feedback: 👎 (%s)</sub>", reason)
	}
	return ""
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
