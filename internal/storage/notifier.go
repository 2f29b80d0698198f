package storage

import (
	"context"
	"sync"
)

// Notifier implements the change-notification attachment contract every
// backend accessor embeds. Accessors call Notify after, and only after, a
// successful local mutation.
//
// Notifier is safe for concurrent use. Notify delivers events synchronously
// in registration order; there is no queue or background worker, so the
// mutating caller does not return until every observer has run.
type Notifier struct {
	mu        sync.RWMutex
	observers []Observer
}

// AddObserver registers an observer. Adding the same observer twice results
// in it being invoked twice; callers are expected to attach each observer
// once at construction time.
func (n *Notifier) AddObserver(o Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, o)
}

// RemoveObserver unregisters a previously added observer. Removing an
// observer that was never added is a no-op.
func (n *Notifier) RemoveObserver(o Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.observers {
		if existing == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers the event to every registered observer.
func (n *Notifier) Notify(ctx context.Context, ev ChangeEvent) {
	n.mu.RLock()
	snapshot := make([]Observer, len(n.observers))
	copy(snapshot, n.observers)
	n.mu.RUnlock()

	for _, o := range snapshot {
		o.OnChange(ctx, ev)
	}
}

// Observable is implemented by every accessor that emits change events,
// exposing its notifier so observers can be attached at wiring time.
type Observable interface {
	Notifier() *Notifier
}
