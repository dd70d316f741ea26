package element

import (
	"sync/atomic"
	"time"
)

// Observer receives element lifecycle events. Calls happen on the goroutine
// that owns the element's document.
type Observer interface {
	SetupRan(tag string, elapsed time.Duration, err error)
	Connected(tag string)
	Disconnected(tag string)
}

var observerPtr atomic.Pointer[Observer]

// SetObserver installs the lifecycle observer. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		observerPtr.Store(nil)
		return
	}
	observerPtr.Store(&o)
}

type nopObserver struct{}

func (nopObserver) SetupRan(string, time.Duration, error) {}
func (nopObserver) Connected(string)                      {}
func (nopObserver) Disconnected(string)                   {}

func observer() Observer {
	if o := observerPtr.Load(); o != nil {
		return *o
	}
	return nopObserver{}
}
