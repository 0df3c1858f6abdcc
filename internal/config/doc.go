// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for medchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend location, endpoint paths and request pacing
//   - AuthConfig: Session and CSRF cookie names and seed values
//   - UIConfig: Theme, reveal speed and layout, hot reloaded by Watcher
//   - StorageConfig: Local snapshot database
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MEDCHAT_*)
//   - ~/.medchat/config.toml
//   - ~/.medchat/config.json
//   - Built-in defaults
//
// MEDCHAT_HOME replaces ~/.medchat as the configuration directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := api.NewClient(cfg.Server.BaseURL, creds)
package config
