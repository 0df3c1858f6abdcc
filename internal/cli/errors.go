// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jeranaias/medchat-tui/internal/api"
	"github.com/jeranaias/medchat-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitNotFound     = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (see 'medchat help')", e.Command, e.Reason)
}

// ErrMissingArgument builds a UsageError for a missing positional.
func ErrMissingArgument(command, name string) error {
	return &UsageError{Command: command, Reason: "missing " + name}
}

// ErrNotLoggedIn is returned when the backend rejects the stored session.
var ErrNotLoggedIn = errors.New("not logged in; run 'medchat login'")

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON object in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		out := map[string]any{"success": false, "error": err.Error()}
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			out["status"] = apiErr.Status
			out["op"] = apiErr.Op
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// HandleErrorAndExit displays err on stderr and exits with its exit code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(os.Stderr, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}
	if errors.Is(err, ErrNotLoggedIn) || errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden) {
		return ExitAuthError
	}
	switch status := api.StatusCode(err); {
	case status == http.StatusNotFound:
		return ExitNotFound
	case status != 0:
		return ExitNetworkError
	}
	var tty *TTYRequiredError
	if errors.As(err, &tty) {
		return ExitUsageError
	}
	return ExitGeneralError
}

// authError replaces a rejected session with ErrNotLoggedIn.
func authError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", ErrNotLoggedIn, err)
	}
	return err
}
