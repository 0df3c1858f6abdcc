// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/medchat-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON. Messages are written in the
// backend's wire shape so the file can be diffed against API responses.
type JSONExporter struct {
	options *Options
}

type jsonDocument struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []*model.Message   `json:"messages"`
	ExportedAt   string             `json:"exported_at,omitempty"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	doc := jsonDocument{Conversation: t.Conversation, Messages: t.Messages}
	if e.options.IncludeMetadata {
		doc.ExportedAt = e.options.now().UTC().Format(time.RFC3339)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
