package storage

import (
	"fmt"
	"sync"
)

// Facade resolves, for a requested entity family, the accessor bound to the
// currently active backend. Application code reads and writes through the
// family getters; sync code reaches "the other side" through Bundle, which
// hands out an explicit target-backend bundle instead of toggling the
// shared selector back and forth.
//
// The active-backend selector is process-wide mutable state and is guarded
// by a mutex; SetActive is expected to be called at startup and rarely, if
// ever, afterwards.
type Facade struct {
	mu      sync.RWMutex
	active  Backend
	bundles map[Backend]*Stores
}

// NewFacade creates a facade with the given backend active. Backends become
// usable once their store bundles are registered.
func NewFacade(active Backend) *Facade {
	return &Facade{
		active:  active,
		bundles: make(map[Backend]*Stores),
	}
}

// Register installs the store bundle for its backend, replacing any
// previous registration.
func (f *Facade) Register(s *Stores) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles[s.Backend] = s
}

// Active returns the currently active backend.
func (f *Facade) Active() Backend {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.active
}

// SetActive switches the active backend. The backend does not need to be
// registered yet; resolution fails later if it never is.
func (f *Facade) SetActive(b Backend) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = b
}

// Bundle returns the store bundle registered for the given backend.
func (f *Facade) Bundle(b Backend) (*Stores, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.bundles[b]
	if !ok {
		return nil, fmt.Errorf("no stores registered for backend %s", b)
	}
	return s, nil
}

// activeBundle resolves the bundle for the active backend, panicking if the
// wiring never registered it. Reaching this state is a programming error,
// not a runtime condition.
func (f *Facade) activeBundle() *Stores {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.bundles[f.active]
	if !ok {
		panic(fmt.Sprintf("storage: active backend %s has no registered stores", f.active))
	}
	return s
}

// Users returns the raw user store bound to the active backend.
func (f *Facade) Users() UserStore { return f.activeBundle().Users }

// Players returns the player store bound to the active backend.
func (f *Facade) Players() PlayerStore { return f.activeBundle().Players }

// Organizers returns the organizer store bound to the active backend.
func (f *Facade) Organizers() OrganizerStore { return f.activeBundle().Organizers }

// Venues returns the venue store bound to the active backend.
func (f *Facade) Venues() VenueStore { return f.activeBundle().Venues }

// Bookings returns the booking store bound to the active backend.
func (f *Facade) Bookings() BookingStore { return f.activeBundle().Bookings }

// Notifications returns the notification store bound to the active backend.
func (f *Facade) Notifications() NotificationStore { return f.activeBundle().Notifications }
