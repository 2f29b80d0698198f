package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	gosync "sync"
	"time"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
	syncx "github.com/EliaCinti/HoopHub-sub002/internal/sync"
)

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before processing file changes.
	// This batches rapid updates together.
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[watch] ", log.LstdFlags),
	}
}

// Daemon replays out-of-band file-backend edits into the SQLite backend.
//
// Replays run under the propagation guard: the edit is already on disk, so
// the normal file-to-SQLite replicator must not fire a second time for the
// same change.
type Daemon struct {
	facade *storage.Facade
	dirs   map[string]storage.Kind
	config *Config

	watcher *Watcher

	queue   map[Event]time.Time
	queueMu gosync.Mutex
}

// NewDaemon creates a daemon watching the given family directories.
func NewDaemon(facade *storage.Facade, dirs map[string]storage.Kind, config *Config) (*Daemon, error) {
	if config == nil {
		config = DefaultConfig()
	}
	watcher, err := New()
	if err != nil {
		return nil, err
	}
	return &Daemon{
		facade:  facade,
		dirs:    dirs,
		config:  config,
		watcher: watcher,
		queue:   make(map[Event]time.Time),
	}, nil
}

// Run watches and replays until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.watcher.Start(d.dirs); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer d.watcher.Stop()

	d.config.Logger.Printf("Watching %d directories", len(d.dirs))

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.config.Logger.Println("Shutdown signal received")
			return nil

		case ev, ok := <-d.watcher.Events():
			if !ok {
				return nil
			}
			d.queueMu.Lock()
			d.queue[ev] = time.Now()
			d.queueMu.Unlock()

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return nil
			}
			d.config.Logger.Printf("WARNING: watcher error: %v", err)

		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

// flush applies every queued event older than the debounce interval.
func (d *Daemon) flush(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.DebounceInterval)

	d.queueMu.Lock()
	var ready []Event
	for ev, seen := range d.queue {
		if seen.Before(cutoff) {
			ready = append(ready, ev)
			delete(d.queue, ev)
		}
	}
	d.queueMu.Unlock()

	for _, ev := range ready {
		if err := d.apply(ctx, ev); err != nil {
			d.config.Logger.Printf("WARNING: failed to replay %s %s (id=%s): %v",
				ev.Op, ev.Kind, ev.ID, err)
		}
	}
}

// apply replays one file-backend change onto the SQLite backend.
func (d *Daemon) apply(ctx context.Context, ev Event) error {
	file, err := d.facade.Bundle(storage.File)
	if err != nil {
		return err
	}
	master, err := d.facade.Bundle(storage.SQLite)
	if err != nil {
		return err
	}

	ctx = syncx.Begin(ctx)

	switch ev.Kind {
	case storage.KindPlayer, storage.KindOrganizer:
		return d.applyRole(ctx, file, master, ev)
	case storage.KindVenue:
		return d.applyVenue(ctx, file, master, ev)
	case storage.KindBooking:
		return d.applyBooking(ctx, file, master, ev)
	case storage.KindNotification:
		return d.applyNotification(ctx, file, master, ev)
	case storage.KindUser:
		return nil
	}
	return nil
}

func (d *Daemon) applyRole(ctx context.Context, file, master *storage.Stores, ev Event) error {
	if ev.Op == storage.OpDelete {
		if ev.Kind == storage.KindPlayer {
			p, err := master.Players.FindByUsername(ctx, ev.ID)
			if storage.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			return master.Players.Delete(ctx, p)
		}
		o, err := master.Organizers.FindByUsername(ctx, ev.ID)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return master.Organizers.Delete(ctx, o)
	}

	// The file backend stores the full record, credential included, so an
	// upsert carries everything the master needs.
	rec, err := file.Users.FindByUsername(ctx, ev.ID)
	if err != nil {
		return err
	}
	if ev.Kind == storage.KindPlayer {
		return master.Players.Save(ctx, rec)
	}
	return master.Organizers.Save(ctx, rec)
}

func (d *Daemon) applyVenue(ctx context.Context, file, master *storage.Stores, ev Event) error {
	id, err := parseID(ev.ID)
	if err != nil {
		return err
	}
	if ev.Op == storage.OpDelete {
		v, err := master.Venues.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return master.Venues.Delete(ctx, v)
	}

	v, err := file.Venues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = master.Venues.Save(ctx, model.RecordFromVenue(v))
	return err
}

func (d *Daemon) applyBooking(ctx context.Context, file, master *storage.Stores, ev Event) error {
	id, err := parseID(ev.ID)
	if err != nil {
		return err
	}
	if ev.Op == storage.OpDelete {
		b, err := master.Bookings.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return master.Bookings.Delete(ctx, b)
	}

	b, err := file.Bookings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = master.Bookings.Save(ctx, model.RecordFromBooking(b))
	return err
}

func (d *Daemon) applyNotification(ctx context.Context, file, master *storage.Stores, ev Event) error {
	id, err := parseID(ev.ID)
	if err != nil {
		return err
	}
	if ev.Op == storage.OpDelete {
		n, err := master.Notifications.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return master.Notifications.Delete(ctx, n)
	}

	n, err := file.Notifications.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = master.Notifications.Save(ctx, model.RecordFromNotification(n))
	return err
}

// parseID parses the numeric identifier encoded in a record filename.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed record filename id %q: %w", s, err)
	}
	return id, nil
}
