// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// Citation is a bibliographic or link reference attached to an assistant
// message. It has no identity beyond its position in the message.
type Citation struct {
	Label   string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	Year    string `json:"year,omitempty"`
	DOI     string `json:"doi,omitempty"`
	PMID    string `json:"pmid,omitempty"`
}

// citationWire accepts the loose shapes the backend has produced over time:
// numeric ids and years, and "pubmed" as an alias of "pmid".
type citationWire struct {
	Label   json.RawMessage `json:"id"`
	Title   string          `json:"title"`
	URL     string          `json:"url"`
	Authors json.RawMessage `json:"authors"`
	Journal string          `json:"journal"`
	Year    json.RawMessage `json:"year"`
	DOI     string          `json:"doi"`
	PMID    json.RawMessage `json:"pmid"`
	PubMed  json.RawMessage `json:"pubmed"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Citation) UnmarshalJSON(data []byte) error {
	var w citationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Citation{
		Label:   scalarString(w.Label),
		Title:   w.Title,
		URL:     w.URL,
		Authors: authorsString(w.Authors),
		Journal: w.Journal,
		Year:    scalarString(w.Year),
		DOI:     w.DOI,
		PMID:    scalarString(w.PMID),
	}
	if c.PMID == "" {
		c.PMID = scalarString(w.PubMed)
	}
	return nil
}

// scalarString renders a JSON string or number as a plain string.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// authorsString accepts either "Smith J, et al." or ["Smith J", "Doe A"].
func authorsString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var names []string
		if json.Unmarshal(raw, &names) == nil {
			return strings.Join(names, ", ")
		}
	}
	return scalarString(raw)
}

// Link returns the explicit URL, or the first URL embedded in the title.
func (c Citation) Link() string {
	if c.URL != "" {
		return c.URL
	}
	return urlPattern.FindString(c.Title)
}

// DisplayTitle returns the title with any embedded URL removed.
func (c Citation) DisplayTitle() string {
	if c.URL != "" {
		return strings.TrimSpace(c.Title)
	}
	title := strings.TrimSpace(urlPattern.ReplaceAllString(c.Title, ""))
	title = strings.TrimRight(title, " -:|(")
	if title == "" {
		return c.Link()
	}
	return title
}

// DOIURL returns the resolver link for the DOI, if any.
func (c Citation) DOIURL() string {
	if c.DOI == "" {
		return ""
	}
	return "https://doi.org/" + c.DOI
}

// PubMedURL returns the PubMed page for the PMID, if any.
func (c Citation) PubMedURL() string {
	if c.PMID == "" {
		return ""
	}
	return "https://pubmed.ncbi.nlm.nih.gov/" + c.PMID
}

// Byline joins authors, journal and year the way the citation block shows
// them: "Smith J, et al. • Journal of Medical AI (2024)".
func (c Citation) Byline() string {
	var parts []string
	if c.Authors != "" {
		parts = append(parts, c.Authors)
	}
	venue := c.Journal
	if c.Year != "" {
		if venue != "" {
			venue += " "
		}
		venue += "(" + c.Year + ")"
	}
	if venue != "" {
		parts = append(parts, venue)
	}
	return strings.Join(parts, " • ")
}
