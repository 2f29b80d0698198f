// Package model provides the domain objects and flat transfer records for
// HoopHub entities: users and their role aggregates, venues, bookings and
// notifications.
//
// Domain objects are what the application manipulates in memory. Transfer
// records are the flat, backend-agnostic form carried across write
// boundaries; every storage backend persists records, never domain objects.
package model

import "fmt"

// Role values for user records.
const (
	RolePlayer    = "player"
	RoleOrganizer = "organizer"
)

// User is the base identity shared by both role aggregates.
type User struct {
	Username string
	Password string
	Name     string
	Gender   string
	Role     string
}

// Player is the player-role aggregate wrapping a base user.
type Player struct {
	User
}

// Organizer is the organizer-role aggregate wrapping a base user.
type Organizer struct {
	User
}

// UserRecord is the flat transfer form of a user written at persistence
// boundaries. An empty Password on update means "leave the stored
// credential unchanged"; it never means "clear it".
type UserRecord struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Role     string `json:"role"`
}

// Validate checks that the record carries the fields every backend requires.
func (r *UserRecord) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Role != RolePlayer && r.Role != RoleOrganizer {
		return fmt.Errorf("role must be %q or %q (got %q)", RolePlayer, RoleOrganizer, r.Role)
	}
	return nil
}

// WithoutPassword returns a copy of the record with the credential removed.
// Used when a record must cross a boundary that has no business seeing it.
func (r *UserRecord) WithoutPassword() *UserRecord {
	clone := *r
	clone.Password = ""
	return &clone
}

// ToPlayer builds the player aggregate for this record.
func (r *UserRecord) ToPlayer() *Player {
	return &Player{User: r.toUser()}
}

// ToOrganizer builds the organizer aggregate for this record.
func (r *UserRecord) ToOrganizer() *Organizer {
	return &Organizer{User: r.toUser()}
}

func (r *UserRecord) toUser() User {
	return User{
		Username: r.Username,
		Password: r.Password,
		Name:     r.Name,
		Gender:   r.Gender,
		Role:     r.Role,
	}
}

// RecordFromUser converts a base user back to its flat record form.
func RecordFromUser(u User) *UserRecord {
	return &UserRecord{
		Username: u.Username,
		Password: u.Password,
		Name:     u.Name,
		Gender:   u.Gender,
		Role:     u.Role,
	}
}
