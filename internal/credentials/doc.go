// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials supplies the session cookies and CSRF token that the
// chat backend expects on every request.
//
// The backend issues a session cookie at login and a CSRF token in a cookie
// of the same name as the header value it checks. medchat does not log in by
// itself; the cookies come from configuration (copied from a browser) or
// from the cookies file saved by a previous run.
//
// # Providers
//
//   - FileProvider: cookie jar persisted to ~/.medchat/cookies.json (0600)
//   - Static: fixed in-memory values, used by tests
//
// Both satisfy Provider, which is the only type the api package depends on.
package credentials
