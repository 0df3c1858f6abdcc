// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the configuration when a config file in the config
// directory changes. Editors often replace the file rather than write it,
// so the directory is watched, not the file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	load     func() (*Config, error)
	onChange func(*Config)

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher watches dir and calls onChange with every successfully loaded
// configuration. Invalid edits are logged and skipped.
func NewWatcher(dir string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		debounce: DefaultDebounce,
		load:     Load,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// WithDebounce overrides the debounce delay.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Start begins processing events in the background.
func (w *Watcher) Start() {
	go w.processEvents()
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func isConfigFile(name string) bool {
	base := filepath.Base(name)
	return base == "config.toml" || base == "config.json"
}

func (w *Watcher) processEvents() {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("CONFIG_WATCH_ERROR | error=%v", err)

		case now := <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && now.Sub(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if due {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.load()
	if err != nil || cfg == nil {
		log.Printf("CONFIG_RELOAD_FAILED | dir=%s error=%v", w.dir, err)
		return
	}
	log.Printf("CONFIG_RELOADED | dir=%s theme=%s reveal_ms=%d", w.dir, cfg.UI.Theme, cfg.UI.RevealIntervalMs)
	SetGlobal(cfg)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
