// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TempPrefix marks identifiers synthesized for optimistic messages.
const TempPrefix = "temp-"

// ID is an opaque server-assigned identifier. The backend emits integer
// primary keys, so ID accepts both JSON numbers and strings.
type ID string

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// NewTempID returns a temporary message identifier derived from now.
func NewTempID(now time.Time) ID {
	return ID(TempPrefix + strconv.FormatInt(now.UnixMilli(), 10))
}

// IsTemp reports whether id was synthesized locally.
func IsTemp(id ID) bool {
	return strings.HasPrefix(string(id), TempPrefix)
}
