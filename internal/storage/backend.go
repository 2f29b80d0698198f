// Package storage defines the contracts shared by every HoopHub persistence
// backend: the backend and entity-kind sum types, the change-notification
// protocol accessors must honor, the per-family accessor interfaces, and the
// facade that resolves accessors for the currently active backend.
//
// Concrete backends live in the sqlitedb, filedb and memdb subpackages.
package storage

import "fmt"

// Backend identifies one of the three interchangeable storage mechanisms.
type Backend int

const (
	// SQLite is the relational backend and the master during bootstrap.
	SQLite Backend = iota
	// File is the JSON-file backend kept in sync with SQLite.
	File
	// Memory is the volatile backend; it participates in no sync direction.
	Memory
)

// String returns the canonical lowercase name of the backend.
func (b Backend) String() string {
	switch b {
	case SQLite:
		return "sqlite"
	case File:
		return "file"
	case Memory:
		return "memory"
	default:
		return "unknown"
	}
}

// ParseBackend converts a configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "sqlite":
		return SQLite, nil
	case "file":
		return File, nil
	case "memory":
		return Memory, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want sqlite, file or memory)", s)
	}
}

// Complement returns the backend on the other side of the sync pair.
// SQLite and File are complements of each other; Memory has none and
// reports ok=false.
func (b Backend) Complement() (Backend, bool) {
	switch b {
	case SQLite:
		return File, true
	case File:
		return SQLite, true
	default:
		return 0, false
	}
}
