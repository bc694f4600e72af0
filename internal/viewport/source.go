// Package viewport models the visible map area as an observable source and
// keeps a graticule layer in step with it.
package viewport

import (
	"sync"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// Listener is called with the new bounds after each viewport change.
type Listener func(domain.Bounds)

// Source exposes the current viewport and notifies subscribers of changes.
type Source interface {
	Bounds() domain.Bounds
	Subscribe(fn Listener) (unsubscribe func())
}

type subscription struct {
	id int
	fn Listener
}

// Emitter is a Source driven by explicit Move calls (pan, zoom, resize).
type Emitter struct {
	mu     sync.Mutex
	bounds domain.Bounds
	nextID int
	subs   []subscription
}

// NewEmitter returns an Emitter positioned at initial.
func NewEmitter(initial domain.Bounds) *Emitter {
	return &Emitter{bounds: initial}
}

// Bounds returns the current viewport.
func (e *Emitter) Bounds() domain.Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds
}

// Subscribe registers fn. The returned func removes it and is safe to call
// more than once.
func (e *Emitter) Subscribe(fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.subs = append(e.subs, subscription{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Move records the new viewport and calls every subscriber once, in
// registration order, on the calling goroutine. Listeners may subscribe or
// unsubscribe during the call; changes apply from the next Move.
func (e *Emitter) Move(b domain.Bounds) {
	e.mu.Lock()
	e.bounds = b
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(b)
	}
}
