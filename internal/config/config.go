// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/medchat-tui/internal/util"
)

// CurrentVersion is the config file format version.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete medchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Server is the backend location and endpoint layout.
	Server ServerConfig `toml:"server" json:"server"`

	// API holds request behavior.
	API APIConfig `toml:"api" json:"api"`

	// Auth holds the session cookie configuration.
	Auth AuthConfig `toml:"auth" json:"auth"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage configures the local snapshot database.
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	// BaseURL is the origin of the chat application, e.g. https://chat.example.org
	BaseURL string `toml:"base_url" json:"base_url"`
	// ConversationsPath is the conversation collection endpoint.
	ConversationsPath string `toml:"conversations_path" json:"conversations_path"`
	// MessagesPath is the message collection endpoint.
	MessagesPath string `toml:"messages_path" json:"messages_path"`
	// MaxRequestsPerSec paces outgoing requests. 0 disables pacing.
	MaxRequestsPerSec float64 `toml:"max_requests_per_sec" json:"max_requests_per_sec"`
}

// APIConfig controls individual requests.
type APIConfig struct {
	// TimeoutSecs bounds each request. 0 means no client-side timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// AuthConfig names the cookies the backend issues and optionally seeds them.
type AuthConfig struct {
	SessionCookieName string `toml:"session_cookie_name" json:"session_cookie_name"`
	CSRFCookieName    string `toml:"csrf_cookie_name" json:"csrf_cookie_name"`
	// SessionCookie seeds the session cookie value, e.g. copied from a browser.
	SessionCookie string `toml:"session_cookie" json:"session_cookie"`
	// CSRFToken seeds the CSRF cookie value.
	CSRFToken string `toml:"csrf_token" json:"csrf_token"`
	// CookiesFile stores cookies between runs (empty = ~/.medchat/cookies.json).
	CookiesFile string `toml:"cookies_file" json:"cookies_file"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// RevealIntervalMs is the delay between reveal animation steps.
	RevealIntervalMs int `toml:"reveal_interval_ms" json:"reveal_interval_ms"`
	// SidebarOpen shows the conversation list at startup.
	SidebarOpen bool `toml:"sidebar_open" json:"sidebar_open"`
}

// StorageConfig configures the local SQLite snapshot.
type StorageConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path of the database (empty = ~/.medchat/medchat.db).
	Path string `toml:"path" json:"path"`
	// HistoryLimit caps the stored compose history entries.
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// RevealInterval returns the reveal step delay.
func (u UIConfig) RevealInterval() time.Duration {
	return time.Duration(u.RevealIntervalMs) * time.Millisecond
}

// Timeout returns the per-request timeout, zero when disabled.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			BaseURL:           "http://localhost:8000",
			ConversationsPath: "/chat/api/conversations/",
			MessagesPath:      "/chat/api/messages/",
			MaxRequestsPerSec: 10,
		},
		API: APIConfig{TimeoutSecs: 0},
		Auth: AuthConfig{
			SessionCookieName: "sessionid",
			CSRFCookieName:    "csrftoken",
		},
		UI: UIConfig{
			Theme:            "auto",
			RevealIntervalMs: 30,
			SidebarOpen:      true,
		},
		Storage: StorageConfig{
			Enabled:      true,
			HistoryLimit: 200,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the medchat configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("MEDCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".medchat"), nil
}

func configFile(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configFile("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configFile("config.json") }

// LogPath returns the TUI log file path.
func LogPath() (string, error) { return configFile("medchat.log") }

// CookiesPath returns the cookie file path for cfg.
func (c *Config) CookiesPath() (string, error) {
	if c.Auth.CookiesFile != "" {
		return c.Auth.CookiesFile, nil
	}
	return configFile("cookies.json")
}

// DatabasePath returns the snapshot database path for cfg.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	return configFile("medchat.db")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions narrows config file permissions to 0600; the file
// may hold a session cookie.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	for _, candidate := range []struct {
		path func() (string, error)
		load func(*Config, string) error
		kind string
	}{
		{ConfigPathTOML, LoadTOML, "TOML"},
		{ConfigPathJSON, LoadJSON, "JSON"},
	} {
		path, err := candidate.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := candidate.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s config: %w", candidate.kind, err)
			cfg = Default()
			continue
		}
		return finish(cfg)
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	// Return defaults with any load error for informational purposes
	return cfg, loadErr
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills empty values with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.ConversationsPath == "" {
		c.Server.ConversationsPath = d.Server.ConversationsPath
	}
	if c.Server.MessagesPath == "" {
		c.Server.MessagesPath = d.Server.MessagesPath
	}
	if c.Auth.SessionCookieName == "" {
		c.Auth.SessionCookieName = d.Auth.SessionCookieName
	}
	if c.Auth.CSRFCookieName == "" {
		c.Auth.CSRFCookieName = d.Auth.CSRFCookieName
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.RevealIntervalMs == 0 {
		c.UI.RevealIntervalMs = d.UI.RevealIntervalMs
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# medchat configuration file\n")
	buf.WriteString("# Generated by medchat - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(buf.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "dark", "light"}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if u, err := url.Parse(c.Server.BaseURL); err != nil {
		add("server.base_url", fmt.Sprintf("invalid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("server.base_url", "must use http or https")
	} else if u.Host == "" {
		add("server.base_url", "missing host")
	}
	for field, p := range map[string]string{
		"server.conversations_path": c.Server.ConversationsPath,
		"server.messages_path":      c.Server.MessagesPath,
	} {
		if !strings.HasPrefix(p, "/") {
			add(field, "must start with /")
		}
	}
	if c.Server.MaxRequestsPerSec < 0 {
		add("server.max_requests_per_sec", "must not be negative")
	}
	if c.API.TimeoutSecs < 0 {
		add("api.timeout_secs", "must not be negative")
	}
	if c.UI.RevealIntervalMs < 1 || c.UI.RevealIntervalMs > 1000 {
		add("ui.reveal_interval_ms", "must be between 1 and 1000")
	}
	valid := false
	for _, t := range ValidThemes {
		if strings.EqualFold(c.UI.Theme, t) {
			valid = true
		}
	}
	if !valid {
		add("ui.theme", fmt.Sprintf("must be one of %s", strings.Join(ValidThemes, ", ")))
	}
	if c.Storage.HistoryLimit < 0 {
		add("storage.history_limit", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - MEDCHAT_BASE_URL: overrides server.base_url
//   - MEDCHAT_SESSION: overrides auth.session_cookie
//   - MEDCHAT_CSRF_TOKEN: overrides auth.csrf_token
//   - MEDCHAT_THEME: overrides ui.theme
//   - MEDCHAT_TIMEOUT: overrides api.timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MEDCHAT_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("MEDCHAT_SESSION"); v != "" {
		c.Auth.SessionCookie = v
	}
	if v := os.Getenv("MEDCHAT_CSRF_TOKEN"); v != "" {
		c.Auth.CSRFToken = v
	}
	if v := os.Getenv("MEDCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("MEDCHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.base_url",
		"server.conversations_path",
		"server.messages_path",
		"server.max_requests_per_sec",
		"api.timeout_secs",
		"auth.session_cookie_name",
		"auth.csrf_cookie_name",
		"auth.session_cookie",
		"auth.csrf_token",
		"auth.cookies_file",
		"ui.theme",
		"ui.reveal_interval_ms",
		"ui.sidebar_open",
		"storage.enabled",
		"storage.path",
		"storage.history_limit",
	}
}

// IsSecretKey reports whether key holds a credential that must not be
// printed.
func IsSecretKey(key string) bool {
	return key == "auth.session_cookie" || key == "auth.csrf_token"
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging, with
// credentials redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Auth.SessionCookie != "" {
		safe.Auth.SessionCookie = "[REDACTED]"
	}
	if safe.Auth.CSRFToken != "" {
		safe.Auth.CSRFToken = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
