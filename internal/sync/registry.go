package sync

import (
	"log"
	gosync "sync"

	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Registry lazily builds and caches the observer set each backend's
// accessors register at construction: one replicator per non-volatile
// source direction plus one shared notification-generation observer.
type Registry struct {
	mu          gosync.Mutex
	facade      *storage.Facade
	logger      *log.Logger
	replicators map[storage.Backend]*Replicator
	notifier    *NotificationObserver
}

// NewRegistry creates an observer registry over the given facade.
// The logger, which may be nil, is shared by every observer it builds.
func NewRegistry(facade *storage.Facade, logger *log.Logger) *Registry {
	return &Registry{
		facade:      facade,
		logger:      logger,
		replicators: make(map[storage.Backend]*Replicator),
	}
}

// ReplicatorFor returns the cached replicator listening on the given source
// backend, building it on first use. The volatile backend has no
// replicator and returns (nil, false).
func (r *Registry) ReplicatorFor(source storage.Backend) (*Replicator, bool) {
	if _, ok := source.Complement(); !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.replicators[source]; ok {
		return rep, true
	}
	rep, err := NewReplicator(r.facade, source, r.logger)
	if err != nil {
		// Complement was checked above; construction cannot fail here.
		return nil, false
	}
	r.replicators[source] = rep
	return rep, true
}

// NotificationObserver returns the shared notification-generation observer,
// building it on first use.
func (r *Registry) NotificationObserver() *NotificationObserver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notifier == nil {
		r.notifier = NewNotificationObserver(r.facade, r.logger)
	}
	return r.notifier
}

// ObserversFor assembles the attachment list for accessors of the given
// backend: the notification observer always, plus the direction-specific
// replicator unless the backend is volatile.
func (r *Registry) ObserversFor(backend storage.Backend) []storage.Observer {
	observers := []storage.Observer{r.NotificationObserver()}
	if rep, ok := r.ReplicatorFor(backend); ok {
		observers = append(observers, rep)
	}
	return observers
}

// Attach registers the backend's observer set on every accessor in the
// bundle. Called once per bundle at wiring time.
func (r *Registry) Attach(bundle *storage.Stores) {
	observers := r.ObserversFor(bundle.Backend)
	for _, n := range bundle.Notifiers() {
		for _, o := range observers {
			n.AddObserver(o)
		}
	}
}
