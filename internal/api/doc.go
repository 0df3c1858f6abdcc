// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the chat backend's JSON API.
//
// Endpoints (paths are configuration, shapes are fixed):
//
//	GET    <conversations>/                         -> {conversations: [...]}
//	POST   <conversations>/          {title}        -> {conversation: {...}}
//	GET    <conversations>/<id>/                    -> {messages: [...]}
//	DELETE <conversations>/<id>/                    -> 2xx
//	POST   <conversations>/<id>/messages/ {content} -> {messages: [...], error?}
//	PATCH  <messages>/<id>/feedback/                -> {message: {...}}
//	POST   <messages>/<id>/concept-graph/           -> {graph} | {error}
//	POST   <messages>/<id>/related-questions/       -> {questions} | {error}
//
// Every request carries the session cookies from a credentials.Provider;
// mutating requests also carry its CSRF token in the X-CSRFToken header.
// Requests are attempted exactly once. Callers treat transport failures,
// non-2xx statuses and malformed bodies alike.
package api
