// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/medchat-tui/internal/export"
	"github.com/jeranaias/medchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newMarkdownRenderer returns a glamour renderer for answers. Piped output
// gets the plain "notty" style.
func newMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	style := glamour.WithAutoStyle()
	if !ColorsEnabled() {
		style = glamour.WithStandardStyle("notty")
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
}

// renderAnswer renders one assistant message and its citations. A nil
// renderer or a render failure falls back to the raw Markdown.
func renderAnswer(r *glamour.TermRenderer, msg *model.Message) string {
	if model.IsGenerationFailure(msg.Content) {
		return ErrorStyle.Render(msg.Content) + "\n"
	}
	md := msg.Content
	if refs := export.CitationsMarkdown(msg); refs != "" {
		md += "\n\n" + refs
	}
	if r != nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return md + "\n"
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// askOutput is the --json form of an answer.
type askOutput struct {
	Conversation model.ID         `json:"conversation"`
	Messages     []*model.Message `json:"messages"`
	Warning      string           `json:"warning,omitempty"`
}

// HandleAsk handles "medchat ask". Without --conversation a new
// conversation is created for the question.
func HandleAsk(args Args) error {
	env, err := OpenEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()
	return runAsk(env, args)
}

func runAsk(env *Env, args Args) error {
	query := args.Query
	if query == "" && !stdinIsTerminal(env.In) {
		data, err := io.ReadAll(env.In)
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}
		query = string(data)
	}
	if model.IsBlank(query) {
		return ErrMissingArgument("ask", "question")
	}
	query = model.NormalizeContent(strings.TrimSpace(query))

	ctx, cancel := env.context()
	defer cancel()

	id := model.ID(args.Conversation)
	if id.IsZero() {
		conv, err := env.Backend.CreateConversation(ctx, model.DefaultTitle)
		if err != nil {
			return authError(err)
		}
		id = conv.ID
		log.Printf("ASK_CONVERSATION_CREATED | id=%s", id)
	}

	result, err := env.Backend.SendMessage(ctx, id, query)
	if err != nil {
		return authError(err)
	}
	log.Printf("ASK_ANSWERED | conversation=%s messages=%d", id, len(result.Messages))

	if args.JSON {
		return writeJSON(env.Out, askOutput{Conversation: id, Messages: result.Messages, Warning: result.Warning})
	}

	if result.Warning != "" {
		fmt.Fprintf(env.Err, "%s %s\n", WarningStyle.Render("[WARN]"), result.Warning)
	}
	r, err := newMarkdownRenderer(markdownWidth())
	if err != nil {
		log.Printf("MARKDOWN_RENDERER_FAILED | error=%v", err)
	}
	printAnswers(env.Out, r, result.Messages)
	if !args.Quiet {
		fmt.Fprintln(env.Out, DimStyle.Render("conversation "+id.String()))
	}
	return nil
}

// printAnswers writes every assistant message in msgs.
func printAnswers(w io.Writer, r *glamour.TermRenderer, msgs []*model.Message) {
	answered := false
	for _, msg := range msgs {
		if !msg.IsAssistant() {
			continue
		}
		fmt.Fprint(w, renderAnswer(r, msg))
		answered = true
	}
	if !answered {
		fmt.Fprintln(w, DimStyle.Render("(no answer)"))
	}
}

// stdinIsTerminal reports whether r is a terminal stdin, which must not be
// read to EOF for a question. A nil reader counts as one.
func stdinIsTerminal(r io.Reader) bool {
	if r == nil {
		return true
	}
	f, ok := r.(*os.File)
	return ok && f == os.Stdin && IsTTY()
}
