// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/medchat-tui/internal/config"
)

// HandleConfig handles "medchat config [show|get|set|path|keys]".
func HandleConfig(args Args) error {
	return runConfig(os.Stdout, args)
}

func runConfig(w io.Writer, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(w, args.JSON)
	case "get":
		return configGet(w, args.ConfigKey)
	case "set":
		return configSet(w, args.ConfigKey, args.ConfigVal)
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil
	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(w, k)
		}
		return nil
	default:
		return &UsageError{Command: "config", Reason: "unknown subcommand " + args.Subcommand}
	}
}

// configShow prints every key with its effective value. Credentials are
// masked.
func configShow(w io.Writer, jsonMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		if cfg == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", WarningStyle.Render("[WARN]"), err)
	}

	if jsonMode {
		values := make(map[string]any, len(config.GetAllKeys()))
		for _, k := range config.GetAllKeys() {
			v, _ := cfg.Get(k)
			values[k] = maskIfSecret(k, v)
		}
		return writeJSON(w, values)
	}

	path, _ := config.ConfigPathTOML()
	fmt.Fprintln(w, TitleStyle.Render("medchat configuration"))
	fmt.Fprintln(w, DimStyle.Render(path))
	fmt.Fprintln(w, RenderSeparator())
	section := ""
	for _, k := range config.GetAllKeys() {
		if head, _, ok := strings.Cut(k, "."); ok && head != section {
			section = head
			fmt.Fprintln(w, TitleStyle.Render("["+section+"]"))
		}
		v, _ := cfg.Get(k)
		fmt.Fprintf(w, "%s %s\n", RenderLabel(k), ValueStyle.Render(fmt.Sprint(maskIfSecret(k, v))))
	}
	return nil
}

func configGet(w io.Writer, key string) error {
	if key == "" {
		return ErrMissingArgument("config get", "key")
	}
	cfg, err := config.Load()
	if cfg == nil {
		return err
	}
	v, err := cfg.Get(key)
	if err != nil {
		return &UsageError{Command: "config get", Reason: err.Error()}
	}
	fmt.Fprintln(w, maskIfSecret(key, v))
	return nil
}

// configSet updates one key in the config file. Environment overrides are
// not applied, so they never end up saved.
func configSet(w io.Writer, key, value string) error {
	if key == "" {
		return ErrMissingArgument("config set", "key")
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	// A user who only has config.json keeps editing it.
	load, save := config.LoadTOML, config.SaveTOML
	if !fileExists(path) {
		jsonPath, err := config.ConfigPathJSON()
		if err != nil {
			return err
		}
		if fileExists(jsonPath) {
			path, load, save = jsonPath, config.LoadJSON, config.SaveJSON
		}
	}
	cfg := config.Default()
	if fileExists(path) {
		if err := load(cfg, path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Command: "config set", Reason: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("[OK]"), key, maskIfSecret(key, value))
	return nil
}

// maskIfSecret hides all but the last four characters of credential values.
func maskIfSecret(key string, v any) any {
	if !config.IsSecretKey(key) {
		return v
	}
	s := fmt.Sprint(v)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
