// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/model"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
		want func(*testing.T, Args)
	}{
		{name: "default tui", argv: nil, cmd: CmdTUI},
		{
			name: "ask joins words",
			argv: []string{"ask", "스타틴은", "안전한가요?"},
			cmd:  CmdAsk,
			want: func(t *testing.T, a Args) {
				assert.Equal(t, "스타틴은 안전한가요?", a.Query)
				assert.Empty(t, a.Conversation)
			},
		},
		{
			name: "ask into conversation",
			argv: []string{"ask", "-c", "42", "follow", "up"},
			cmd:  CmdAsk,
			want: func(t *testing.T, a Args) {
				assert.Equal(t, "42", a.Conversation)
				assert.Equal(t, "follow up", a.Query)
			},
		},
		{
			name: "chat with long flag",
			argv: []string{"chat", "--conversation=7"},
			cmd:  CmdChat,
			want: func(t *testing.T, a Args) { assert.Equal(t, "7", a.Conversation) },
		},
		{
			name: "delete yes before id",
			argv: []string{"rm", "--yes", "9"},
			cmd:  CmdDelete,
			want: func(t *testing.T, a Args) {
				assert.Equal(t, "9", a.Conversation)
				assert.True(t, a.Yes)
			},
		},
		{
			name: "export flags",
			argv: []string{"export", "3", "--format", "json", "-o", "out", "--no-metadata"},
			cmd:  CmdExport,
			want: func(t *testing.T, a Args) {
				assert.Equal(t, "3", a.Conversation)
				assert.Equal(t, "json", a.Format)
				assert.Equal(t, "out", a.Output)
				assert.True(t, a.NoMetadata)
			},
		},
		{
			name: "config set",
			argv: []string{"config", "set", "ui.theme", "dark"},
			cmd:  CmdConfig,
			want: func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, "ui.theme", a.ConfigKey)
				assert.Equal(t, "dark", a.ConfigVal)
			},
		},
		{
			name: "global flags anywhere",
			argv: []string{"list", "--json", "--server", "https://chat.example.org", "-v"},
			cmd:  CmdList,
			want: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.True(t, a.Verbose)
				assert.Equal(t, "https://chat.example.org", a.Server)
			},
		},
		{
			name: "login csrf",
			argv: []string{"login", "--csrf", "tok"},
			cmd:  CmdLogin,
			want: func(t *testing.T, a Args) { assert.Equal(t, "tok", a.CSRF) },
		},
		{
			name: "bare question",
			argv: []string{"what", "is", "HbA1c?"},
			cmd:  CmdAsk,
			want: func(t *testing.T, a Args) { assert.Equal(t, "what is HbA1c?", a.Query) },
		},
		{name: "version", argv: []string{"version"}, cmd: CmdVersion},
		{name: "help", argv: []string{"--help"}, cmd: CmdHelp},
		{name: "logout", argv: []string{"logout"}, cmd: CmdLogout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			assert.Equal(t, tt.cmd, cmd, "command %s", cmd)
			if tt.want != nil {
				tt.want(t, args)
			}
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"set", "--yes", "key", "--level=3", "--json=false", "--", "-1", "x"}, "yes")
	assert.Equal(t, "set", p.Subcommand())
	assert.True(t, p.BoolFlag("yes"))
	assert.False(t, p.BoolFlag("json"))
	assert.Equal(t, "3", p.Flag("level"))
	assert.Equal(t, "3", p.Flag("--level"))
	assert.Equal(t, []string{"set", "key", "-1", "x"}, p.PositionalFrom(0))
	assert.Equal(t, "key -1 x", JoinPositionalArgs(p, 1))
	assert.Equal(t, "", p.Positional(9))
	assert.Equal(t, "fallback", p.FlagOrDefault("missing", "fallback"))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "on"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "No", "n", "0", "off"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	var prompt bytes.Buffer
	assert.True(t, Confirm(&prompt, strings.NewReader("y\n"), "delete?"))
	assert.Contains(t, prompt.String(), "delete? [y/N]")
	assert.False(t, Confirm(io.Discard, strings.NewReader("\n"), "delete?"))
	assert.False(t, Confirm(io.Discard, strings.NewReader(""), "delete?"))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{ErrMissingArgument("ask", "question"), ExitUsageError},
		{fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{&api.Error{Op: "list conversations", Status: 401}, ExitAuthError},
		{&api.Error{Op: "send message", Status: 403}, ExitAuthError},
		{authError(&api.Error{Op: "list conversations", Status: 401}), ExitAuthError},
		{&api.Error{Op: "load messages", Status: 404}, ExitNotFound},
		{&api.Error{Op: "send message", Status: 502}, ExitNetworkError},
		{&TTYRequiredError{Operation: "chat"}, ExitUsageError},
		{errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%v", tt.err)
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &api.Error{Op: "send message", Status: 500, Message: "upstream"}, true)
	assert.Contains(t, buf.String(), `"status": 500`)
	assert.Contains(t, buf.String(), `"success": false`)
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestAsk_CreatesConversationAndPrintsAnswer(t *testing.T) {
	b := newBackend(t)
	env, out, _ := testEnv(t, b)

	require.NoError(t, runAsk(env, Args{Query: "LDL은?"}))

	assert.Equal(t, []string{"POST /chat/api/conversations/", "POST /chat/api/conversations/100/messages/"}, b.mutations())
	assert.Equal(t, []string{"csrf-1", "csrf-1"}, b.tokens())
	assert.Contains(t, out.String(), "LDL을 낮춥니다")
	assert.Contains(t, out.String(), "참고문헌")
	assert.Contains(t, out.String(), "conversation 100")
}

func TestAsk_ExistingConversationJSON(t *testing.T) {
	b := newBackend(t)
	env, out, _ := testEnv(t, b)

	require.NoError(t, runAsk(env, Args{Query: "더", Conversation: "5", JSON: true}))
	assert.Equal(t, []string{"POST /chat/api/conversations/5/messages/"}, b.mutations())
	assert.Contains(t, out.String(), `"conversation": "5"`)
	assert.Contains(t, out.String(), `"role": "assistant"`)
}

func TestAsk_ReadsQuestionFromPipe(t *testing.T) {
	b := newBackend(t)
	env, _, _ := testEnv(t, b)
	env.In = strings.NewReader("  piped question \n")

	require.NoError(t, runAsk(env, Args{Conversation: "5"}))
	assert.Equal(t, []string{"piped question"}, b.sentContents())
}

func TestAsk_BlankQuestion(t *testing.T) {
	b := newBackend(t)
	env, _, _ := testEnv(t, b)
	err := runAsk(env, Args{Query: "   "})
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)
	assert.Empty(t, b.mutations())
}

func TestAsk_Unauthorized(t *testing.T) {
	b := newBackend(t)
	b.session = "required"
	env, _, _ := testEnv(t, b)
	err := runAsk(env, Args{Query: "q"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestList_SavesSnapshotAndFallsBack(t *testing.T) {
	b := newBackend(t)
	env, out, errOut := testEnv(t, b)

	require.NoError(t, runList(env, Args{}))
	assert.Contains(t, out.String(), "LDL 질문")
	assert.Contains(t, out.String(), "빈 대화")

	saved, err := env.Snapshot.LoadConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 2)

	b.fail = true
	out.Reset()
	require.NoError(t, runList(env, Args{}))
	assert.Contains(t, out.String(), "LDL 질문")
	assert.Contains(t, errOut.String(), "[WARN]")
	assert.Contains(t, errOut.String(), "saved list")
}

func TestList_FailureWithoutSnapshot(t *testing.T) {
	b := newBackend(t)
	b.fail = true
	env, _, _ := testEnv(t, b)
	env.Snapshot = nil
	assert.Error(t, runList(env, Args{}))
}

func TestList_JSON(t *testing.T) {
	b := newBackend(t)
	env, out, _ := testEnv(t, b)
	require.NoError(t, runList(env, Args{JSON: true}))
	assert.Contains(t, out.String(), `"title": "LDL 질문"`)
}

func TestDelete(t *testing.T) {
	b := newBackend(t)
	env, out, _ := testEnv(t, b)
	require.NoError(t, runList(env, Args{}))

	env.In = strings.NewReader("n\n")
	require.NoError(t, runDelete(env, Args{Conversation: "5"}))
	assert.Empty(t, b.mutations())

	env.In = strings.NewReader("y\n")
	require.NoError(t, runDelete(env, Args{Conversation: "5"}))
	assert.Equal(t, []string{"DELETE /chat/api/conversations/5/"}, b.mutations())
	assert.Contains(t, out.String(), "deleted 5")

	saved, err := env.Snapshot.LoadConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, model.ID("6"), saved[0].ID)

	assert.Error(t, runDelete(env, Args{Yes: true}))
}

func TestExport(t *testing.T) {
	b := newBackend(t)
	env, out, _ := testEnv(t, b)
	dir := t.TempDir()

	require.NoError(t, runExport(env, Args{Conversation: "5", Output: dir}))
	path := strings.TrimSpace(out.String())
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# LDL 질문")
	assert.Contains(t, string(data), "LDL을 낮춥니다")

	out.Reset()
	require.NoError(t, runExport(env, Args{Conversation: "5", Output: dir, Format: "json"}))
	assert.Equal(t, ".json", filepath.Ext(strings.TrimSpace(out.String())))

	err = runExport(env, Args{Conversation: "5", Format: "pdf"})
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)
}

func TestLoginAndLogout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MEDCHAT_HOME", home)
	b := newBackend(t)
	b.session = "good"

	cfg := config.Default()
	cfg.Server.BaseURL = b.server.URL

	var out bytes.Buffer
	err := runLogin(cfg, &out, "bad", "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, statErr := os.Stat(filepath.Join(home, "cookies.json"))
	assert.True(t, os.IsNotExist(statErr), "rejected session must not be stored")

	require.NoError(t, runLogin(cfg, &out, "good", "tok"))
	assert.Contains(t, out.String(), "2 conversations")
	data, err := os.ReadFile(filepath.Join(home, "cookies.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"good"`)

	env, err := NewEnv(cfg)
	require.NoError(t, err)
	env.Out, env.Err = &out, io.Discard
	require.NoError(t, runList(env, Args{}))

	require.NoError(t, runLogout(env, Args{}))
	require.NoError(t, env.Close())
	_, statErr = os.Stat(filepath.Join(home, "cookies.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfigSetGet(t *testing.T) {
	t.Setenv("MEDCHAT_HOME", t.TempDir())
	var out bytes.Buffer

	require.NoError(t, runConfig(&out, Args{Subcommand: "set", ConfigKey: "ui.reveal_interval_ms", ConfigVal: "15"}))
	out.Reset()
	require.NoError(t, runConfig(&out, Args{Subcommand: "get", ConfigKey: "ui.reveal_interval_ms"}))
	assert.Equal(t, "15\n", out.String())

	require.NoError(t, runConfig(&out, Args{Subcommand: "set", ConfigKey: "auth.session_cookie", ConfigVal: "abcdef123"}))
	out.Reset()
	require.NoError(t, runConfig(&out, Args{Subcommand: "get", ConfigKey: "auth.session_cookie"}))
	assert.Equal(t, "****f123\n", out.String())

	err := runConfig(&out, Args{Subcommand: "set", ConfigKey: "ui.theme", ConfigVal: "neon"})
	assert.Error(t, err)
	err = runConfig(&out, Args{Subcommand: "set", ConfigKey: "ui.nope", ConfigVal: "1"})
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)

	out.Reset()
	require.NoError(t, runConfig(&out, Args{Subcommand: "show", JSON: true}))
	assert.Contains(t, out.String(), `"ui.reveal_interval_ms": 15`)
}

func TestConfigSet_KeepsJSONFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MEDCHAT_HOME", home)
	jsonPath := filepath.Join(home, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"ui": {"theme": "light"}}`), 0600))

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, Args{Subcommand: "set", ConfigKey: "ui.reveal_interval_ms", ConfigVal: "25"}))

	_, statErr := os.Stat(filepath.Join(home, "config.toml"))
	assert.True(t, os.IsNotExist(statErr), "a JSON config must not gain a TOML twin")

	cfg := config.Default()
	require.NoError(t, config.LoadJSON(cfg, jsonPath))
	assert.Equal(t, 25, cfg.UI.RevealIntervalMs)
	assert.Equal(t, "light", cfg.UI.Theme)
}

// =============================================================================
// REPL
// =============================================================================

// scriptedLines feeds the REPL fixed input and records history.
type scriptedLines struct {
	lines   []string
	history []string
	closed  bool
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(item string) { s.history = append(s.history, item) }

func (s *scriptedLines) Close() error {
	s.closed = true
	return nil
}

func TestChatREPL(t *testing.T) {
	b := newBackend(t)
	env, out, errOut := testEnv(t, b)
	require.NoError(t, env.Snapshot.AppendHistory(context.Background(), "earlier", 10))

	lines := &scriptedLines{lines: []string{
		"",
		"첫 질문",
		"/open 6",
		"두번째",
		"/bogus",
		"/new",
		"/quit",
		"never read",
	}}
	repl := NewChatREPL(env, lines, Args{Quiet: true})
	require.NoError(t, repl.Run())
	require.NoError(t, repl.Close())

	assert.Equal(t, []string{
		"POST /chat/api/conversations/",
		"POST /chat/api/conversations/100/messages/",
		"POST /chat/api/conversations/6/messages/",
	}, b.mutations())
	assert.Equal(t, []string{"첫 질문", "두번째"}, b.sentContents())
	assert.True(t, repl.Conversation().IsZero())
	assert.Contains(t, out.String(), "LDL을 낮춥니다")
	assert.Contains(t, errOut.String(), "unknown command")
	assert.True(t, lines.closed)
	assert.Equal(t, "earlier", lines.history[0])
	assert.Equal(t, []string{"never read"}, lines.lines)

	history, err := env.Snapshot.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"earlier", "첫 질문", "/open 6", "두번째", "/bogus", "/new", "/quit"}, history)
}

func TestChatREPL_ExitWord(t *testing.T) {
	b := newBackend(t)
	env, _, _ := testEnv(t, b)
	lines := &scriptedLines{lines: []string{"exit", "ignored"}}
	require.NoError(t, NewChatREPL(env, lines, Args{Quiet: true, Conversation: "5"}).Run())
	assert.Empty(t, b.mutations())
}
