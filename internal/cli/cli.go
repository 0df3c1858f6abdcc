// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdList
	CmdDelete
	CmdExport
	CmdConfig
	CmdLogin
	CmdLogout
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdList:
		return "list"
	case CmdDelete:
		return "delete"
	case CmdExport:
		return "export"
	case CmdConfig:
		return "config"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // machine-readable output
	Server  string // overrides server.base_url

	// Command-specific
	Query        string
	Conversation string // target conversation id
	Subcommand   string
	ConfigKey    string
	ConfigVal    string
	Format       string
	Output       string
	CSRF         string
	Yes          bool
	NoMetadata   bool

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `medchat - terminal client for the medical research assistant

Usage:
  medchat                          Start the chat TUI (default)
  medchat ask "question"           Ask one question and print the answer
  medchat chat                     Line-mode chat with input history
  medchat list, ls                 List conversations
  medchat delete, rm <id>          Delete a conversation
  medchat export <id>              Export a conversation transcript
  medchat config [show|get|set|path|keys]
                                   Configuration
  medchat login                    Store a browser session cookie
  medchat logout                   Forget the stored session
  medchat version                  Show version information

Ask / Chat:
  -c, --conversation ID            Continue an existing conversation
                                   (default: start a new one)

Delete:
  -y, --yes                        Skip the confirmation prompt

Export:
  --format md|json                 Output format (default: md)
  -o, --output DIR                 Output directory (default: current)
  --no-metadata                    Omit the front matter block

Login:
  --csrf TOKEN                     CSRF token to store with the session

Global Flags:
  --server URL                     Backend origin (overrides config)
  -q, --quiet                      Minimal output
  -v, --verbose                    Log requests to stderr
  --json                           JSON output (list, config)

Examples:
  medchat ask "스타틴과 LDL 감소의 관계는?"
  medchat chat -c 42
  medchat export 42 --format json -o ./exports
  medchat config set ui.reveal_interval_ms 15

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("medchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument vector without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseAskArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "list", "ls":
		return CmdList, parsedArgs

	case "delete", "rm":
		p := NewArgParser(remaining, "yes", "y")
		parsedArgs.Conversation = p.Positional(0)
		parsedArgs.Yes = p.BoolFlag("yes") || p.BoolFlag("y")
		return CmdDelete, parsedArgs

	case "export":
		p := NewArgParser(remaining, "no-metadata")
		parsedArgs.Conversation = p.Positional(0)
		parsedArgs.Format = p.Flag("format")
		parsedArgs.Output = p.FlagOrDefault("output", p.Flag("o"))
		parsedArgs.NoMetadata = p.BoolFlag("no-metadata")
		return CmdExport, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "login":
		p := NewArgParser(remaining)
		parsedArgs.CSRF = p.Flag("csrf")
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Anything else is treated as a question.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			parsedArgs.Quiet = true
		case arg == "-v" || arg == "--verbose":
			parsedArgs.Verbose = true
		case arg == "--json":
			parsedArgs.JSON = true
		case arg == "--server":
			if i+1 < len(args) {
				i++
				parsedArgs.Server = args[i]
			}
		case strings.HasPrefix(arg, "--server="):
			parsedArgs.Server = strings.TrimPrefix(arg, "--server=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsedArgs
}

// parseAskArgs reads the optional target conversation and joins the rest
// into the query.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Conversation = p.FlagOrDefault("conversation", p.Flag("c"))
	args.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
}

// parseConfigArgs parses "config <sub> [key] [value]".
func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Subcommand())
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = JoinPositionalArgs(p, 2)
}
