// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/storage"
)

// fakeBackend serves the conversation endpoints with two fixed
// conversations and a canned answer for every posted message.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	session  string // when set, requests need sessionid=<session>
	fail     bool
	muts     []string
	csrf     []string
	contents []string
}

const answerJSON = `{"id": %d, "role": "assistant", "content": "스타틴은 LDL을 낮춥니다.",
	"created_at": "2025-03-01T10:00:05Z", "reference_type": "external",
	"citations": [{"id": "1", "title": "Statin trial", "journal": "Lancet", "year": 2019, "pmid": 123456}]}`

func newBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fail {
		http.Error(w, `{"error": "unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	if b.session != "" {
		c, err := r.Cookie("sessionid")
		if err != nil || c.Value != b.session {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	if r.Method != http.MethodGet {
		b.muts = append(b.muts, r.Method+" "+r.URL.Path)
		b.csrf = append(b.csrf, r.Header.Get("X-CSRFToken"))
	}

	const base = "/chat/api/conversations/"
	rest := strings.TrimPrefix(r.URL.Path, base)
	id, tail, _ := strings.Cut(rest, "/")

	w.Header().Set("Content-Type", "application/json")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		fmt.Fprint(w, `{"conversations": [
			{"id": 5, "title": "LDL 질문", "updated_at": "2025-03-01T10:00:05Z"},
			{"id": 6, "title": "빈 대화", "updated_at": "2025-02-20T08:00:00Z"}]}`)

	case rest == "" && r.Method == http.MethodPost:
		fmt.Fprint(w, `{"conversation": {"id": 100, "title": "", "updated_at": "2025-03-02T09:00:00Z"}}`)

	case tail == "" && r.Method == http.MethodGet:
		fmt.Fprintf(w, `{"messages": [
			{"id": 10, "role": "user", "content": "LDL은?", "created_at": "2025-03-01T10:00:00Z"},
			`+answerJSON+`]}`, 11)

	case tail == "" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)

	case tail == "messages/" && r.Method == http.MethodPost:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.contents = append(b.contents, req.Content)
		user, _ := json.Marshal(req.Content)
		fmt.Fprintf(w, `{"messages": [
			{"id": 20, "role": "user", "content": %s, "created_at": "2025-03-02T09:00:00Z"},
			`+answerJSON+`], "error": ""}`, user, 21)

	default:
		b.t.Logf("unexpected request %s %s (conversation %q)", r.Method, r.URL.Path, id)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) mutations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.muts...)
}

func (b *fakeBackend) tokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.csrf...)
}

func (b *fakeBackend) sentContents() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.contents...)
}

// testEnv returns an Env wired to b with a static CSRF token, a temporary
// snapshot and captured output.
func testEnv(t *testing.T, b *fakeBackend) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.BaseURL = b.server.URL
	cfg.Server.MaxRequestsPerSec = 0

	creds := &credentials.Static{Token: "csrf-1"}
	client, err := newClient(cfg, creds)
	require.NoError(t, err)

	snap, err := storage.Open(filepath.Join(t.TempDir(), "medchat.db"), b.server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { snap.Close() })

	var out, errOut bytes.Buffer
	env := &Env{
		Config:      cfg,
		Backend:     client,
		Credentials: creds,
		Snapshot:    snap,
		In:          strings.NewReader(""),
		Out:         &out,
		Err:         &errOut,
	}
	return env, &out, &errOut
}
