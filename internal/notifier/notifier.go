// Package notifier tells a running host process to reload resources.
//
// Two commands exist: "refresh", which rescans the host's resource index,
// and "ensure <name>", which (re)starts one resource. Sends are
// fire-and-forget; no acknowledgment is awaited. Every implementation owns a
// single connection, redials once when a send fails and retries that send
// once before reporting the error.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CommandRefresh rescans the host resource index.
const CommandRefresh = "refresh"

// ErrClosed is returned by sends on a closed notifier.
var ErrClosed = errors.New("notifier is closed")

// Notifier sends reload commands to the host process.
type Notifier interface {
	// Connect establishes the connection. Implementations also dial lazily
	// on the first send, so calling Connect is optional.
	Connect(ctx context.Context) error
	Refresh(ctx context.Context) error
	Ensure(ctx context.Context, resource string) error
	Close() error
}

// EnsureCommand builds the command that restarts resource. The name is used
// verbatim; names that would split into several console arguments or
// commands are rejected.
func EnsureCommand(resource string) (string, error) {
	if resource == "" {
		return "", fmt.Errorf("resource name is empty")
	}
	if strings.ContainsAny(resource, " \t\r\n;") {
		return "", fmt.Errorf("invalid resource name %q", resource)
	}
	return "ensure " + resource, nil
}

// Nop discards every command. It backs the production profile.
type Nop struct{}

func (Nop) Connect(context.Context) error        { return nil }
func (Nop) Refresh(context.Context) error        { return nil }
func (Nop) Ensure(context.Context, string) error { return nil }
func (Nop) Close() error                         { return nil }
