// medchat - terminal client for the medical research assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/cli"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	api.Version = Version
}

func main() {
	cmd, args := cli.Parse()
	if cmd != cli.CmdTUI {
		cli.SetupLogging(args)
	}

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdList:
		err = cli.HandleList(args)
	case cli.CmdDelete:
		err = cli.HandleDelete(args)
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	default:
		cli.PrintUsage()
	}
	cli.HandleErrorAndExit(err, args.JSON)
}

// runTUI starts the full-screen chat. Logs go to the log file so they never
// draw over the alternate screen.
func runTUI(args cli.Args) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if path, err := config.LogPath(); err == nil {
		if f, err := tea.LogToFile(path, "medchat"); err == nil {
			defer f.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}
	log.Printf("TUI_START | version=%s", Version)

	env, err := cli.OpenEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg := env.Config

	// The saved list fills the sidebar until the first refresh returns.
	var initial []model.Conversation
	if env.Snapshot != nil {
		initial, err = env.Snapshot.LoadConversations(context.Background())
		if err != nil {
			log.Printf("SNAPSHOT_LOAD_FAILED | error=%v", err)
		}
	}

	m := chat.New(styles.NewThemeNamed(cfg.UI.Theme), env.Deps(), chat.Options{
		Initial:        initial,
		RevealInterval: cfg.UI.RevealInterval(),
		SidebarOpen:    cfg.UI.SidebarOpen,
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if dir, err := config.ConfigDir(); err == nil {
		w, err := config.NewWatcher(dir, func(c *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: c})
		})
		if err != nil {
			log.Printf("CONFIG_WATCH_FAILED | error=%v", err)
		} else {
			w.Start()
			defer w.Close()
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	if fm, ok := final.(chat.Model); ok && fm.LoggedOut() {
		env.MarkLoggedOut()
	}
	log.Printf("TUI_EXIT")
	return nil
}
