// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/medchat-tui/internal/model"
)

// chatPrompt is plain text: liner measures the prompt by runes, so escape
// sequences would break cursor placement.
const chatPrompt = "medchat> "

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader is the line editor behind the REPL. *liner.State implements
// it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// newLiner returns a liner editor where Ctrl+C aborts the prompt.
func newLiner() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// =============================================================================
// REPL
// =============================================================================

// ChatREPL is a line-mode chat session bound to one conversation at a time.
type ChatREPL struct {
	env      *Env
	line     LineReader
	renderer *glamour.TermRenderer
	quiet    bool

	conv model.ID

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewChatREPL creates a REPL reading from line. Stored compose history is
// loaded into the editor.
func NewChatREPL(env *Env, line LineReader, args Args) *ChatREPL {
	r, err := newMarkdownRenderer(markdownWidth())
	if err != nil {
		log.Printf("MARKDOWN_RENDERER_FAILED | error=%v", err)
	}
	repl := &ChatREPL{
		env:      env,
		line:     line,
		renderer: r,
		quiet:    args.Quiet,
		conv:     model.ID(args.Conversation),
	}
	repl.loadHistory()
	return repl
}

// HandleChat handles "medchat chat".
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	env, err := OpenEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	repl := NewChatREPL(env, newLiner(), args)
	defer repl.Close()

	stop := repl.watchInterrupts()
	defer stop()
	return repl.Run()
}

// Close releases the line editor.
func (r *ChatREPL) Close() error {
	return r.line.Close()
}

// Conversation returns the conversation new messages go to, if any.
func (r *ChatREPL) Conversation() model.ID {
	return r.conv
}

func (r *ChatREPL) loadHistory() {
	if r.env.Snapshot == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	entries, err := r.env.Snapshot.History(ctx, r.env.Config.Storage.HistoryLimit)
	if err != nil {
		log.Printf("HISTORY_LOAD_FAILED | error=%v", err)
		return
	}
	for _, e := range entries {
		r.line.AppendHistory(e)
	}
}

func (r *ChatREPL) remember(input string) {
	r.line.AppendHistory(input)
	if r.env.Snapshot == nil {
		return
	}
	err := r.env.Snapshot.AppendHistory(context.Background(), input, r.env.Config.Storage.HistoryLimit)
	if err != nil {
		log.Printf("HISTORY_SAVE_FAILED | error=%v", err)
	}
}

// watchInterrupts cancels the in-flight request on Ctrl+C. The prompt
// itself handles Ctrl+C in raw mode.
func (r *ChatREPL) watchInterrupts() (stop func()) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, os.Interrupt)
	go func() {
		for {
			select {
			case <-sig:
				r.mu.Lock()
				if r.cancel != nil {
					r.cancel()
					r.cancel = nil
					fmt.Fprintln(r.env.Err, "\n"+WarningStyle.Render("[취소됨]"))
				}
				r.mu.Unlock()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

// Run reads and answers lines until /quit, Ctrl+C or EOF.
func (r *ChatREPL) Run() error {
	if !r.quiet {
		r.printWelcome()
	}
	for {
		input, err := r.line.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.env.Out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.remember(input)

		if strings.HasPrefix(input, "/") {
			done, err := r.command(input)
			if err != nil {
				DisplayError(r.env.Err, err, false)
			}
			if done {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := r.send(input); err != nil {
			DisplayError(r.env.Err, authError(err), false)
		}
	}
}

func (r *ChatREPL) printWelcome() {
	fmt.Fprintln(r.env.Out, TitleStyle.Render("medchat")+" "+DimStyle.Render(r.env.Config.Server.BaseURL))
	if !r.conv.IsZero() {
		fmt.Fprintln(r.env.Out, DimStyle.Render("conversation "+r.conv.String()))
	}
	fmt.Fprintln(r.env.Out, DimStyle.Render("/help for commands, Ctrl+D to exit"))
	fmt.Fprintln(r.env.Out)
}

// =============================================================================
// SENDING
// =============================================================================

// begin returns a request context that Ctrl+C can cancel.
func (r *ChatREPL) begin() (context.Context, context.CancelFunc) {
	ctx, cancel := r.env.context()
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	return ctx, func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}
}

// send posts input to the current conversation, creating one first when
// there is none.
func (r *ChatREPL) send(input string) error {
	ctx, done := r.begin()
	defer done()

	content := model.NormalizeContent(input)
	if r.conv.IsZero() {
		conv, err := r.env.Backend.CreateConversation(ctx, model.DefaultTitle)
		if err != nil {
			return err
		}
		r.conv = conv.ID
		log.Printf("CHAT_CONVERSATION_CREATED | id=%s", conv.ID)
	}

	if !r.quiet {
		fmt.Fprintln(r.env.Out, DimStyle.Render("답변 생성 중..."))
	}
	result, err := r.env.Backend.SendMessage(ctx, r.conv, content)
	if err != nil {
		return err
	}
	if result.Warning != "" {
		fmt.Fprintf(r.env.Err, "%s %s\n", WarningStyle.Render("[WARN]"), result.Warning)
	}
	printAnswers(r.env.Out, r.renderer, result.Messages)
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const chatHelp = `Commands:
  /new            Start a new conversation with the next message
  /list           List conversations
  /open <id>      Continue a conversation and show its last answer
  /delete         Delete the current conversation
  /help           Show this help
  /quit           Exit`

// command runs a slash command and reports whether the REPL should exit.
func (r *ChatREPL) command(input string) (bool, error) {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		fmt.Fprintln(r.env.Out, chatHelp)

	case "/new", "/n":
		r.conv = ""
		fmt.Fprintln(r.env.Out, DimStyle.Render("새 대화를 시작합니다"))

	case "/list", "/ls":
		return false, runList(r.env, Args{})

	case "/open", "/o":
		if len(fields) < 2 {
			return false, ErrMissingArgument("/open", "conversation id")
		}
		return false, r.open(model.ID(fields[1]))

	case "/delete":
		if r.conv.IsZero() {
			return false, errors.New("no current conversation")
		}
		if err := runDelete(r.env, Args{Conversation: r.conv.String(), Yes: true}); err != nil {
			return false, err
		}
		r.conv = ""

	default:
		return false, &UsageError{Command: fields[0], Reason: "unknown command, try /help"}
	}
	return false, nil
}

// open switches to id and prints its most recent answer.
func (r *ChatREPL) open(id model.ID) error {
	ctx, done := r.begin()
	defer done()

	msgs, err := r.env.Backend.GetMessages(ctx, id)
	if err != nil {
		return authError(err)
	}
	r.conv = id
	fmt.Fprintln(r.env.Out, DimStyle.Render(fmt.Sprintf("conversation %s (%d messages)", id, len(msgs))))
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistant() {
			fmt.Fprint(r.env.Out, renderAnswer(r.renderer, msgs[i]))
			break
		}
	}
	return nil
}
