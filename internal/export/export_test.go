// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/model"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func sampleTranscript() *Transcript {
	return &Transcript{
		Conversation: model.Conversation{ID: "42", Title: "Statin: LDL 효과", UpdatedAt: "2025-03-10T09:00:00Z"},
		Messages: []*model.Message{
			{ID: "1", Role: model.RoleUser, Content: "스타틴의 효과는?", CreatedAt: "2025-03-10T09:00:00Z"},
			{
				ID:         "2",
				Role:       model.RoleAssistant,
				Content:    "LDL을 낮춥니다 [1].",
				Feedback:   model.FeedbackNegative,
				ReasonCode: model.ReasonOther,
				ReasonText: "출처 부족",
				Citations: []model.Citation{{
					Label: "1", Title: "Statin trial", Authors: "Kim J", Journal: "NEJM", Year: "2020",
					DOI: "10.1/abc", PMID: "123",
				}},
			},
		},
	}
}

func TestMarkdownExporter(t *testing.T) {
	opts := DefaultOptions()
	opts.Now = fixedNow
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: \"Statin: LDL 효과\"\n"))
	assert.Contains(t, md, "exported: 2025-03-10T09:30:00Z")
	assert.Contains(t, md, "# Statin: LDL 효과\n")
	assert.Contains(t, md, "### You <sub>")
	assert.Contains(t, md, "### Assistant\n\n")
	assert.Contains(t, md, "**참고문헌**")
	assert.Contains(t, md, "1. [1] Statin trial - Kim J • NEJM (2020)")
	assert.Contains(t, md, "[DOI](https://doi.org/10.1/abc)")
	assert.Contains(t, md, "[PubMed](https://pubmed.ncbi.nlm.nih.gov/123)")
	assert.Contains(t, md, "Feedback: 👎 (기타: 출처 부족)")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := &Options{}
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# "))
	assert.NotContains(t, string(out), "<sub>20")
}

func TestJSONExporter(t *testing.T) {
	opts := DefaultOptions()
	opts.Now = fixedNow
	out, err := NewJSONExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)

	var doc struct {
		Conversation struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"conversation"`
		Messages []map[string]any `json:"messages"`
		Exported string           `json:"exported_at"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "42", doc.Conversation.ID)
	assert.Len(t, doc.Messages, 2)
	assert.Equal(t, "negative", doc.Messages[1]["feedback"])
	assert.Equal(t, "2025-03-10T09:30:00Z", doc.Exported)
}

func TestExport_Empty(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(&Transcript{})
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = NewJSONExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		err    bool
	}{
		{"", ".md", false},
		{"Markdown", ".md", false},
		{"md", ".md", false},
		{"json", ".json", false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := ForFormat(tt.format, nil)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, e.FileExtension())
		})
	}
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = fixedNow

	path, err := ExportToFile(sampleTranscript(), NewJSONExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_Statin-_LDL_효과_20250310_093000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, 50, len([]rune(sanitizeFilename(strings.Repeat("가", 80)))))
}
