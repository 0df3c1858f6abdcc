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

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/storage"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
)

// Env is what a command needs to talk to the backend.
type Env struct {
	Config      *config.Config
	Backend     api.Backend
	Credentials credentials.Provider
	Snapshot    *storage.DB // nil when storage is disabled or unavailable

	In  io.Reader
	Out io.Writer
	Err io.Writer

	loggedOut bool
}

// saver is implemented by providers that persist cookies.
type saver interface {
	Save() error
}

// LoadConfig returns the global configuration with the --server override
// applied.
func LoadConfig(args Args) (*config.Config, error) {
	cfg := config.Global().Clone()
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	return cfg, nil
}

// SetupLogging sends the standard logger to stderr with --verbose and
// discards it otherwise.
func SetupLogging(args Args) {
	if args.Verbose {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// OpenEnv builds the environment for args from the global configuration.
func OpenEnv(args Args) (*Env, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return NewEnv(cfg)
}

// NewEnv wires the cookie store, API client and local snapshot for cfg. A
// snapshot that cannot be opened is logged and skipped.
func NewEnv(cfg *config.Config) (*Env, error) {
	cookies, err := cfg.CookiesPath()
	if err != nil {
		return nil, err
	}
	creds, err := credentials.NewFileProvider(credentials.Options{
		BaseURL:       cfg.Server.BaseURL,
		Path:          cookies,
		SessionCookie: cfg.Auth.SessionCookieName,
		CSRFCookie:    cfg.Auth.CSRFCookieName,
		SessionValue:  cfg.Auth.SessionCookie,
		CSRFValue:     cfg.Auth.CSRFToken,
	})
	if err != nil {
		return nil, err
	}

	client, err := newClient(cfg, creds)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:      cfg,
		Backend:     client,
		Credentials: creds,
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
	}

	if cfg.Storage.Enabled {
		path, err := cfg.DatabasePath()
		if err == nil {
			env.Snapshot, err = storage.Open(path, cfg.Server.BaseURL)
		}
		if err != nil {
			log.Printf("SNAPSHOT_OPEN_FAILED | error=%v", err)
		}
	}
	return env, nil
}

// newClient builds an API client for cfg.
func newClient(cfg *config.Config, creds credentials.Provider) (*api.Client, error) {
	client, err := api.NewClient(cfg.Server.BaseURL, creds)
	if err != nil {
		return nil, err
	}
	return client.WithPaths(cfg.Server.ConversationsPath, cfg.Server.MessagesPath).
		WithTimeout(cfg.API.Timeout()).
		WithRateLimit(cfg.Server.MaxRequestsPerSec), nil
}

// Deps returns the chat controller dependencies for this environment.
func (e *Env) Deps() chat.Deps {
	return chat.Deps{
		Backend:      e.Backend,
		Credentials:  e.Credentials,
		Snapshot:     e.Snapshot,
		Timeout:      e.Config.API.Timeout(),
		HistoryLimit: e.Config.Storage.HistoryLimit,
	}
}

// Close persists cookies the server may have rotated and closes the
// snapshot. Nothing is saved after a logout.
func (e *Env) Close() error {
	var errs []error
	if s, ok := e.Credentials.(saver); ok && !e.loggedOut {
		if err := s.Save(); err != nil {
			errs = append(errs, fmt.Errorf("save cookies: %w", err))
		}
	}
	if e.Snapshot != nil {
		if err := e.Snapshot.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MarkLoggedOut stops Close from writing the cleared cookies back.
func (e *Env) MarkLoggedOut() {
	e.loggedOut = true
}

func (e *Env) context() (context.Context, context.CancelFunc) {
	return requestContext(e.Config)
}

// requestContext bounds a request by the configured timeout, if any.
func requestContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if t := cfg.API.Timeout(); t > 0 {
		return context.WithTimeout(context.Background(), t)
	}
	return context.WithCancel(context.Background())
}
