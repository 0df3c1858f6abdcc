// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// medchat.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed global flags plus the command's own arguments
//   - Env: the configured backend client, credentials and local snapshot
//     shared by every command that talks to the server
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdList:
//	    err = cli.HandleList(args)
//	// ...
//	}
//
// # Commands
//
//   - tui (default): full-screen chat
//   - ask: one question, answer rendered as Markdown
//   - chat: line-mode REPL with stored input history
//   - list, delete, export: conversation management
//   - config: show, get, set, path
//   - login, logout: session cookie management
//   - version, help
package cli
