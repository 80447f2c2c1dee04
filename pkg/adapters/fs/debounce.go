package fs

import (
	"sync"
	"time"

	"github.com/tmorell/inkwell/pkg/core"
)

// debouncer coalesces bursts of events for the same document ID.
// Editors tend to fire several writes per save; only the last one within the
// window is delivered.
type debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules delivery of the event after the debounce window.
// A newer event for the same ID replaces the pending one.
func (d *debouncer) add(event core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	key := event.ID
	if existing, ok := d.timers[key]; ok {
		if existing.Stop() {
			// Pending timer replaced; its wg slot carries over.
			d.timers[key] = d.newTimer(key, event, fire)
			return
		}
		// Timer already fired (or is firing); fall through to a fresh slot.
	}

	d.wg.Add(1)
	d.timers[key] = d.newTimer(key, event, fire)
}

// newTimer must be called with d.mu held.
func (d *debouncer) newTimer(key string, event core.Event, fire func(core.Event)) *time.Timer {
	return time.AfterFunc(d.window, func() {
		defer d.wg.Done()

		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()

		fire(event)
	})
}

// stopAndWait stops accepting new events, cancels pending timers, and waits
// (bounded by timeout) for in-flight deliveries to finish.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
