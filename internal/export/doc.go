// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation and its messages to a file.
//
// # Supported Formats
//
//   - Markdown: role headings, citation lists with DOI and PubMed links,
//     recorded feedback
//   - JSON: the messages as the backend returned them, wrapped with the
//     conversation summary
//
// # Usage
//
//	t := export.Transcript{Conversation: conv, Messages: msgs}
//	path, err := export.ExportToFile(&t, export.NewMarkdownExporter(nil), nil)
package export
