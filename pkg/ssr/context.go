package ssr

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Context is an execution context.
type Context uint8

const (
	// Client is a live host: real events, connected elements.
	Client Context = iota
	// Server is template generation only.
	Server
)

// String returns the string representation of the Context.
func (c Context) String() string {
	switch c {
	case Client:
		return "client"
	case Server:
		return "server"
	default:
		return fmt.Sprintf("Context(%d)", c)
	}
}

// IsServer reports whether c is the server context.
func (c Context) IsServer() bool { return c == Server }

// ParseContext parses "client" or "server".
func ParseContext(s string) (Context, error) {
	switch s {
	case "client":
		return Client, nil
	case "server":
		return Server, nil
	default:
		return Client, fmt.Errorf("ssr: unknown context %q", s)
	}
}

var defaultContext atomic.Uint32

// Default returns the process-wide context.
func Default() Context {
	return Context(defaultContext.Load())
}

// SetDefault sets the process-wide context and returns the previous one.
func SetDefault(c Context) Context {
	return Context(defaultContext.Swap(uint32(c)))
}

// ClientOnly runs fn synchronously unless the process-wide context is
// Server, in which case fn is skipped. It reports whether fn ran.
func ClientOnly(fn func()) bool {
	return Default().ClientOnly(fn)
}

// ClientOnly runs fn unless c is Server. It reports whether fn ran.
func (c Context) ClientOnly(fn func()) bool {
	if c.IsServer() {
		slog.Debug("ssr: client-only callback skipped", "code", "E104")
		return false
	}
	fn()
	return true
}
