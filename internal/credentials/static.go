// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"net/http"
	"net/url"
)

// Static is a Provider with a fixed token and no cookies.
type Static struct {
	Token   string
	Cookies http.CookieJar
	Cleared bool
}

// Jar implements Provider.
func (s *Static) Jar() http.CookieJar { return s.Cookies }

// CSRFToken implements Provider.
func (s *Static) CSRFToken(*url.URL) string { return s.Token }

// Clear implements Provider.
func (s *Static) Clear() error {
	s.Token = ""
	s.Cleared = true
	return nil
}
