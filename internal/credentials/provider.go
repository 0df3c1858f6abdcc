// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials supplies the session cookies and CSRF token that the
// chat backend expects on every request.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/jeranaias/medchat-tui/internal/util"
)

// Default cookie names used by the backend.
const (
	DefaultSessionCookie = "sessionid"
	DefaultCSRFCookie    = "csrftoken"
)

// Provider supplies same-origin credentials for API requests.
type Provider interface {
	// Jar returns the cookie jar attached to the HTTP client.
	Jar() http.CookieJar
	// CSRFToken returns the anti-forgery token for requests to u.
	CSRFToken(u *url.URL) string
	// Clear forgets every stored credential.
	Clear() error
}

// Options configures a FileProvider.
type Options struct {
	BaseURL       string
	Path          string // cookies file; empty disables persistence
	SessionCookie string // cookie name, default "sessionid"
	CSRFCookie    string // cookie name, default "csrftoken"
	SessionValue  string // seed value, overrides the file
	CSRFValue     string // seed value, overrides the file
}

// storedCookie is the on-disk form of one cookie.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileProvider keeps cookies in a public-suffix aware jar and persists the
// cookies for the backend origin between runs.
type FileProvider struct {
	mu         sync.Mutex
	base       *url.URL
	path       string
	csrfCookie string
	jar        *cookiejar.Jar
}

// NewFileProvider builds a provider for opts.BaseURL, loading any cookies
// saved at opts.Path and then applying the seed values.
func NewFileProvider(opts Options) (*FileProvider, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	p := &FileProvider{
		base:       base,
		path:       opts.Path,
		csrfCookie: valueOr(opts.CSRFCookie, DefaultCSRFCookie),
		jar:        jar,
	}

	if opts.Path != "" {
		if err := p.load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("COOKIES_LOAD_FAILED | path=%s error=%v", opts.Path, err)
		}
	}

	var seeds []*http.Cookie
	if opts.SessionValue != "" {
		seeds = append(seeds, &http.Cookie{Name: valueOr(opts.SessionCookie, DefaultSessionCookie), Value: opts.SessionValue, Path: "/"})
	}
	if opts.CSRFValue != "" {
		seeds = append(seeds, &http.Cookie{Name: p.csrfCookie, Value: opts.CSRFValue, Path: "/"})
	}
	if len(seeds) > 0 {
		p.jar.SetCookies(base, seeds)
	}

	return p, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// Jar implements Provider.
func (p *FileProvider) Jar() http.CookieJar {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar
}

// CSRFToken implements Provider.
func (p *FileProvider) CSRFToken(u *url.URL) string {
	if u == nil {
		u = p.base
	}
	for _, c := range p.Jar().Cookies(u) {
		if c.Name == p.csrfCookie {
			return c.Value
		}
	}
	return ""
}

// HasSession reports whether any cookie is stored for the backend origin.
func (p *FileProvider) HasSession() bool {
	return len(p.Jar().Cookies(p.base)) > 0
}

// Save writes the backend cookies to the cookies file atomically with 0600
// permissions. The server may rotate its tokens, so this runs on exit.
func (p *FileProvider) Save() error {
	if p.path == "" {
		return nil
	}
	var stored []storedCookie
	for _, c := range p.Jar().Cookies(p.base) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(p.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	return nil
}

// Clear implements Provider. It empties the jar and removes the cookies file.
func (p *FileProvider) Clear() error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.jar = jar
	p.mu.Unlock()

	if p.path == "" {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cookies file: %w", err)
	}
	return nil
}

func (p *FileProvider) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to decode cookies file: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	p.jar.SetCookies(p.base, cookies)
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
