package storage

import (
	"context"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
)

// UserStore reads raw user records, credential included. The role stores
// deliberately omit the password on reads; bootstrap uses this store to
// fetch it independently and merge it back in.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.UserRecord, error)
}

// PlayerStore persists the player role family.
//
// Save takes the flat transfer record produced at the write boundary.
// Update takes the already-mutated domain object plus a record carrier; an
// empty Password on the carrier leaves the stored credential unchanged.
// Delete takes the domain object previously retrieved from this backend.
type PlayerStore interface {
	Observable
	Save(ctx context.Context, rec *model.UserRecord) error
	Update(ctx context.Context, p *model.Player, rec *model.UserRecord) error
	Delete(ctx context.Context, p *model.Player) error
	FindByUsername(ctx context.Context, username string) (*model.Player, error)
	FindAll(ctx context.Context) ([]*model.Player, error)
}

// OrganizerStore persists the organizer role family. Semantics mirror
// PlayerStore.
type OrganizerStore interface {
	Observable
	Save(ctx context.Context, rec *model.UserRecord) error
	Update(ctx context.Context, o *model.Organizer, rec *model.UserRecord) error
	Delete(ctx context.Context, o *model.Organizer) error
	FindByUsername(ctx context.Context, username string) (*model.Organizer, error)
	FindAll(ctx context.Context) ([]*model.Organizer, error)
}

// VenueStore persists the venue family. Save allocates an identifier when
// the record carries none and preserves an explicit one.
type VenueStore interface {
	Observable
	Save(ctx context.Context, rec *model.VenueRecord) (int64, error)
	Update(ctx context.Context, v *model.Venue) error
	Delete(ctx context.Context, v *model.Venue) error
	FindByID(ctx context.Context, id int64) (*model.Venue, error)
	FindAll(ctx context.Context) ([]*model.Venue, error)
}

// BookingStore persists the booking family. Identifier semantics match
// VenueStore.
type BookingStore interface {
	Observable
	Save(ctx context.Context, rec *model.BookingRecord) (int64, error)
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, b *model.Booking) error
	FindByID(ctx context.Context, id int64) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
}

// NotificationStore persists the notification family.
type NotificationStore interface {
	Observable
	Save(ctx context.Context, rec *model.NotificationRecord) (int64, error)
	Update(ctx context.Context, n *model.Notification) error
	Delete(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id int64) (*model.Notification, error)
	FindAll(ctx context.Context) ([]*model.Notification, error)
}

// Stores bundles every accessor of one backend.
//
// Ping probes backend connectivity; nil means the backend is always
// reachable. Wipe removes every record the backend holds; nil means the
// backend does not support being wiped. Only the file backend is expected
// to provide Wipe, since it is the side rebuilt during bootstrap.
type Stores struct {
	Backend       Backend
	Users         UserStore
	Players       PlayerStore
	Organizers    OrganizerStore
	Venues        VenueStore
	Bookings      BookingStore
	Notifications NotificationStore

	Ping func(ctx context.Context) error
	Wipe func(ctx context.Context) error
}

// Notifiers returns the notifier of every observable accessor in the
// bundle, in a fixed order. Wiring code attaches the observer set for the
// bundle's backend to each of them.
func (s *Stores) Notifiers() []*Notifier {
	return []*Notifier{
		s.Players.Notifier(),
		s.Organizers.Notifier(),
		s.Venues.Notifier(),
		s.Bookings.Notifier(),
		s.Notifications.Notifier(),
	}
}
