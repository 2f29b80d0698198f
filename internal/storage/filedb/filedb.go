// Package filedb provides the JSON-file backend. Each entity family owns a
// directory under the data root (players/, organizers/, venues/, bookings/,
// notifications/) holding one pretty-printed JSON file per record, named by
// the record's identifier.
//
// Numeric families allocate monotonically increasing identifiers from a
// per-family counter. Writing a record that carries an explicit identifier
// advances the counter past it, so a bootstrap rebuild from the SQLite
// master leaves the counters consistent with the master's identifiers.
package filedb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	gosync "sync"

	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

const (
	playersDir       = "players"
	organizersDir    = "organizers"
	venuesDir        = "venues"
	bookingsDir      = "bookings"
	notificationsDir = "notifications"
)

var familyDirs = []string{playersDir, organizersDir, venuesDir, bookingsDir, notificationsDir}

// dir is one family directory with JSON-file records.
type dir struct {
	path string
}

func (d *dir) filename(id string) string {
	return filepath.Join(d.path, id+".json")
}

// write marshals v to {id}.json with pretty-printed formatting.
func (d *dir) write(id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", id, err)
	}
	path := d.filename(id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record file %s: %w", path, err)
	}
	return nil
}

// read unmarshals {id}.json into v. Reports os.IsNotExist errors unchanged
// so callers can translate them to a not-found condition.
func (d *dir) read(id string, v any) error {
	path := d.filename(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse record file %s: %w", path, err)
	}
	return nil
}

// remove deletes {id}.json. Reports os.IsNotExist errors unchanged.
func (d *dir) remove(id string) error {
	return os.Remove(d.filename(id))
}

// ids lists the record identifiers present in the directory.
func (d *dir) ids() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// counter allocates monotonically increasing numeric identifiers.
type counter struct {
	mu   gosync.Mutex
	next int64
}

// allocate returns id unchanged when non-zero, assigning the next free
// identifier otherwise, and advances the counter past whatever was used.
func (c *counter) allocate(id int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == 0 {
		id = c.next
	}
	if id >= c.next {
		c.next = id + 1
	}
	return id
}

func (c *counter) reset(next int64) {
	c.mu.Lock()
	c.next = next
	c.mu.Unlock()
}

// initCounter seeds a counter from the highest numeric filename already in
// the directory.
func initCounter(d *dir) (*counter, error) {
	ids, err := d.ids()
	if err != nil {
		return nil, err
	}
	var max int64
	for _, s := range ids {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Stray non-numeric files are ignored here and skipped on reads.
			continue
		}
		if id > max {
			max = id
		}
	}
	return &counter{next: max + 1}, nil
}

// Store is the JSON-file backend rooted at a data directory.
type Store struct {
	root          string
	logger        *log.Logger
	players       *roleStore
	organizers    *roleStore
	venues        *venueStore
	bookings      *bookingStore
	notifications *notificationStore
}

// Open creates the family directories under root if needed and seeds the
// identifier counters from the files already present. A nil logger falls
// back to stderr.
func Open(root string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[filedb] ", log.LstdFlags)
	}
	for _, name := range familyDirs {
		if err := os.MkdirAll(filepath.Join(root, name), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", name, err)
		}
	}

	s := &Store{
		root:       root,
		logger:     logger,
		players:    newRoleStore(filepath.Join(root, playersDir), storage.KindPlayer, logger),
		organizers: newRoleStore(filepath.Join(root, organizersDir), storage.KindOrganizer, logger),
	}

	var err error
	if s.venues, err = openVenueStore(filepath.Join(root, venuesDir), logger); err != nil {
		return nil, err
	}
	if s.bookings, err = openBookingStore(filepath.Join(root, bookingsDir), logger); err != nil {
		return nil, err
	}
	if s.notifications, err = openNotificationStore(filepath.Join(root, notificationsDir), logger); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the backend's data directory.
func (s *Store) Root() string { return s.root }

// FamilyDirs returns the absolute paths of every family directory, in
// dependency order. The file watcher watches exactly these.
func (s *Store) FamilyDirs() []string {
	dirs := make([]string, 0, len(familyDirs))
	for _, name := range familyDirs {
		dirs = append(dirs, filepath.Join(s.root, name))
	}
	return dirs
}

// Wipe removes every record file and resets the identifier counters. The
// family directories themselves are recreated empty.
func (s *Store) Wipe(ctx context.Context) error {
	for _, name := range familyDirs {
		path := filepath.Join(s.root, name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", path, err)
		}
	}
	s.venues.counter.reset(1)
	s.bookings.counter.reset(1)
	s.notifications.counter.reset(1)
	return nil
}

// Stores returns the accessor bundle for this backend.
func (s *Store) Stores() *storage.Stores {
	return &storage.Stores{
		Backend:       storage.File,
		Users:         &userStore{store: s},
		Players:       &playerStore{role: s.players},
		Organizers:    &organizerStore{role: s.organizers},
		Venues:        s.venues,
		Bookings:      s.bookings,
		Notifications: s.notifications,
		Wipe:          s.Wipe,
	}
}
