// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/credentials"
)

// =============================================================================
// LOGIN
// =============================================================================

// HandleLogin handles "medchat login". The session cookie value is copied
// from a signed-in browser and read without echo.
func HandleLogin(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	session, err := ReadSecret(os.Stderr, fmt.Sprintf("Session cookie (%s): ", cfg.Auth.SessionCookieName))
	if err != nil {
		return err
	}
	return runLogin(cfg, os.Stdout, session, args.CSRF)
}

// runLogin checks the session against the backend and stores it only when
// the backend accepts it.
func runLogin(cfg *config.Config, w io.Writer, session, csrf string) error {
	if session == "" {
		return ErrMissingArgument("login", "session cookie")
	}
	opts := credentials.Options{
		BaseURL:       cfg.Server.BaseURL,
		SessionCookie: cfg.Auth.SessionCookieName,
		CSRFCookie:    cfg.Auth.CSRFCookieName,
		SessionValue:  session,
		CSRFValue:     csrf,
	}

	probe, err := credentials.NewFileProvider(opts)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, probe)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cfg)
	defer cancel()
	list, err := client.ListConversations(ctx)
	if err != nil {
		return authError(err)
	}

	opts.Path, err = cfg.CookiesPath()
	if err != nil {
		return err
	}
	stored, err := credentials.NewFileProvider(opts)
	if err != nil {
		return err
	}
	if err := stored.Save(); err != nil {
		return err
	}
	log.Printf("LOGIN | base=%s conversations=%d", cfg.Server.BaseURL, len(list))
	fmt.Fprintf(w, "%s logged in to %s (%d conversations)\n", SuccessStyle.Render("[OK]"), cfg.Server.BaseURL, len(list))
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// HandleLogout handles "medchat logout".
func HandleLogout(args Args) error {
	return withEnv(args, runLogout)
}

// runLogout forgets the stored cookies and the saved conversation list.
func runLogout(env *Env, args Args) error {
	if err := env.Credentials.Clear(); err != nil {
		return err
	}
	env.MarkLoggedOut()
	if env.Snapshot != nil {
		if err := env.Snapshot.ClearConversations(context.Background()); err != nil {
			log.Printf("SNAPSHOT_CLEAR_FAILED | error=%v", err)
		}
	}
	log.Printf("LOGOUT | base=%s", env.Config.Server.BaseURL)

	if !args.Quiet {
		fmt.Fprintf(env.Out, "%s logged out\n", SuccessStyle.Render("[OK]"))
	}
	if env.Config.Auth.SessionCookie != "" {
		fmt.Fprintf(env.Err, "%s auth.session_cookie is still set in the config or MEDCHAT_SESSION\n",
			WarningStyle.Render("[WARN]"))
	}
	return nil
}
