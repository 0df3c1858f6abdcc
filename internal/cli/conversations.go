// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jeranaias/medchat-tui/internal/export"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/render"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// listTitleWidth is the display width of the title column.
const listTitleWidth = 48

// withEnv opens the environment for args, runs fn and closes it.
func withEnv(args Args, fn func(*Env, Args) error) error {
	env, err := OpenEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env, args)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// LIST
// =============================================================================

// HandleList handles "medchat list".
func HandleList(args Args) error {
	return withEnv(args, runList)
}

// runList prints the conversation list. When the server cannot be reached
// the last saved snapshot is shown instead, with a warning.
func runList(env *Env, args Args) error {
	ctx, cancel := env.context()
	defer cancel()

	list, err := env.Backend.ListConversations(ctx)
	if err != nil {
		cached, at := loadSnapshot(ctx, env)
		if len(cached) == 0 {
			return authError(err)
		}
		log.Printf("LIST_FROM_SNAPSHOT | error=%v", err)
		fmt.Fprintf(env.Err, "%s %v\n", WarningStyle.Render("[WARN]"), err)
		fmt.Fprintln(env.Err, DimStyle.Render("saved list from "+at.Local().Format("2006-01-02 15:04")))
		list = cached
	} else {
		saveSnapshot(ctx, env, list)
	}

	if args.JSON {
		if list == nil {
			list = []model.Conversation{}
		}
		return writeJSON(env.Out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("대화가 없습니다"))
		return nil
	}

	idWidth := 0
	for _, c := range list {
		idWidth = max(idWidth, util.StringWidth(c.ID.String()))
	}
	now := time.Now()
	for _, c := range list {
		title := util.TruncateWidth(c.DisplayTitle(), listTitleWidth)
		fmt.Fprintf(env.Out, "%s  %s  %s\n",
			DimStyle.Render(util.PadWidth(c.ID.String(), idWidth)),
			util.PadWidth(title, listTitleWidth),
			DimStyle.Render(render.RelativeDate(c.Updated(), now)))
	}
	return nil
}

func loadSnapshot(ctx context.Context, env *Env) ([]model.Conversation, time.Time) {
	if env.Snapshot == nil {
		return nil, time.Time{}
	}
	list, err := env.Snapshot.LoadConversations(ctx)
	if err != nil {
		log.Printf("SNAPSHOT_LOAD_FAILED | error=%v", err)
		return nil, time.Time{}
	}
	at, _ := env.Snapshot.SnapshotTime(ctx)
	return list, at
}

func saveSnapshot(ctx context.Context, env *Env, list []model.Conversation) {
	if env.Snapshot == nil {
		return
	}
	if err := env.Snapshot.SaveConversations(ctx, list); err != nil {
		log.Printf("SNAPSHOT_SAVE_FAILED | error=%v", err)
	}
}

// =============================================================================
// DELETE
// =============================================================================

// HandleDelete handles "medchat delete <id>".
func HandleDelete(args Args) error {
	return withEnv(args, runDelete)
}

func runDelete(env *Env, args Args) error {
	id := model.ID(args.Conversation)
	if id.IsZero() {
		return ErrMissingArgument("delete", "conversation id")
	}
	if !args.Yes && !Confirm(env.Err, env.In, store.ConfirmDeleteText+" ("+id.String()+")") {
		fmt.Fprintln(env.Out, DimStyle.Render("취소됨"))
		return nil
	}

	ctx, cancel := env.context()
	defer cancel()
	if err := env.Backend.DeleteConversation(ctx, id); err != nil {
		return authError(err)
	}
	log.Printf("CONVERSATION_DELETED | id=%s", id)

	if cached, _ := loadSnapshot(ctx, env); len(cached) > 0 {
		if i := model.IndexOf(cached, id); i >= 0 {
			saveSnapshot(ctx, env, append(cached[:i], cached[i+1:]...))
		}
	}
	if !args.Quiet {
		fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("[OK]"), "deleted "+id.String())
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// HandleExport handles "medchat export <id>".
func HandleExport(args Args) error {
	return withEnv(args, runExport)
}

func runExport(env *Env, args Args) error {
	id := model.ID(args.Conversation)
	if id.IsZero() {
		return ErrMissingArgument("export", "conversation id")
	}

	opts := export.DefaultOptions()
	if args.Output != "" {
		opts.OutputDir = args.Output
	}
	opts.IncludeMetadata = !args.NoMetadata
	exporter, err := export.ForFormat(args.Format, opts)
	if err != nil {
		return &UsageError{Command: "export", Reason: err.Error()}
	}

	ctx, cancel := env.context()
	defer cancel()

	conv := model.Conversation{ID: id}
	if list, err := env.Backend.ListConversations(ctx); err == nil {
		if i := model.IndexOf(list, id); i >= 0 {
			conv = list[i]
		}
	} else {
		log.Printf("EXPORT_TITLE_LOOKUP_FAILED | id=%s error=%v", id, err)
	}

	msgs, err := env.Backend.GetMessages(ctx, id)
	if err != nil {
		return authError(err)
	}

	path, err := export.ExportToFile(&export.Transcript{Conversation: conv, Messages: msgs}, exporter, opts)
	if err != nil {
		return err
	}
	log.Printf("CONVERSATION_EXPORTED | id=%s path=%s", id, path)
	fmt.Fprintln(env.Out, path)
	return nil
}
