package ssr

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefineHook receives a tag name and the HTML generated for it on the
// server.
type DefineHook func(tag, html string)

type hookEntry struct {
	fn DefineHook
}

var (
	hooksMu sync.RWMutex
	hooks   []*hookEntry
)

// OnServerDefine registers fn to be called once for each definition that
// is defined while in server context. The returned function removes it.
func OnServerDefine(fn DefineHook) (unsubscribe func()) {
	entry := &hookEntry{fn: fn}
	hooksMu.Lock()
	hooks = append(hooks, entry)
	hooksMu.Unlock()

	return func() {
		hooksMu.Lock()
		defer hooksMu.Unlock()
		for i, h := range hooks {
			if h == entry {
				hooks = append(hooks[:i], hooks[i+1:]...)
				return
			}
		}
	}
}

// EmitServerDefine calls every registered hook with tag and html, in
// registration order. A panicking hook is logged and does not stop the
// others.
func EmitServerDefine(tag, html string) {
	hooksMu.RLock()
	snapshot := append([]*hookEntry(nil), hooks...)
	hooksMu.RUnlock()

	for _, h := range snapshot {
		callHook(h.fn, tag, html)
	}
}

func callHook(fn DefineHook, tag, html string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ssr: server define hook panicked",
				"tag", tag,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn(tag, html)
}

// HookCount returns the number of registered hooks.
func HookCount() int {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return len(hooks)
}
