package live

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/render"
)

// Config holds configuration for a live Server.
type Config struct {
	// ReadTimeout is the maximum time to wait for a message from the
	// client. Pongs extend it. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between heartbeat pings. Default: 25 seconds.
	PingInterval time.Duration

	// AttachTimeout closes sessions created for a page whose client never
	// connected. Default: 30 seconds.
	AttachTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxQueue is the size of a session's task queue. Default: 256.
	MaxQueue int

	// Title is the page title written by ServePage.
	Title string

	// ScriptPath is where the client script is served. Default:
	// "/live/client.js".
	ScriptPath string

	// Registry is the global custom element registry of session documents.
	Registry dom.CustomElementRegistry

	// CheckOrigin validates the WebSocket origin. Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Observer receives session metrics. Optional.
	Observer Observer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   25 * time.Second,
		AttachTimeout:  30 * time.Second,
		MaxMessageSize: 64 * 1024,
		MaxQueue:       256,
		ScriptPath:     render.DefaultLiveScript,
		CheckOrigin:    SameOriginCheck,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.AttachTimeout <= 0 {
		c.AttachTimeout = d.AttachTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxQueue <= 0 {
		c.MaxQueue = d.MaxQueue
	}
	if c.ScriptPath == "" {
		c.ScriptPath = d.ScriptPath
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host equals the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || r.Host == "" {
		return false
	}
	return u.Host == r.Host
}

// Observer receives session events. Calls come from session goroutines.
type Observer interface {
	SessionOpened()
	SessionClosed()
	EventHandled(event string, elapsed time.Duration)
	PatchesSent(n int)
	ProtocolError()
}

type nopObserver struct{}

func (nopObserver) SessionOpened()                     {}
func (nopObserver) SessionClosed()                     {}
func (nopObserver) EventHandled(string, time.Duration) {}
func (nopObserver) PatchesSent(int)                    {}
func (nopObserver) ProtocolError()                     {}
