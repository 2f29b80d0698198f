package storage

import "context"

// Op is the kind of mutation a change event describes.
type Op int

const (
	// OpInsert indicates a new record was saved.
	OpInsert Op = iota
	// OpUpdate indicates an existing record was modified.
	OpUpdate
	// OpDelete indicates a record was removed.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Kind identifies the entity family a change event belongs to. It is a
// closed set: routing code switches over it exhaustively, so a new family
// that is missing from a router fails to compile rather than silently
// falling through a string comparison.
type Kind int

const (
	// KindUser is the role-agnostic user family, used when the caller knows
	// only the username and not which role aggregate it belongs to.
	KindUser Kind = iota
	// KindPlayer is the player role aggregate.
	KindPlayer
	// KindOrganizer is the organizer role aggregate.
	KindOrganizer
	// KindVenue is the venue family.
	KindVenue
	// KindBooking is the booking family.
	KindBooking
	// KindNotification is the notification family.
	KindNotification
)

// String returns a human-readable representation of the entity kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindPlayer:
		return "player"
	case KindOrganizer:
		return "organizer"
	case KindVenue:
		return "venue"
	case KindBooking:
		return "booking"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// ChangeEvent describes one committed local mutation.
//
// Payload carries the flat transfer record for inserts and the domain
// object for updates (update notifications fire after the mutation has
// already been applied to the domain graph). For deletes only the ID is
// available and Payload is nil.
type ChangeEvent struct {
	Op      Op
	Kind    Kind
	ID      string
	Payload any
}

// Observer receives change events from a backend accessor.
//
// OnChange is invoked synchronously after the local mutation has committed.
// Observers must contain their own failures; an observer error must never
// surface to the caller of the original mutation.
type Observer interface {
	OnChange(ctx context.Context, ev ChangeEvent)
}
