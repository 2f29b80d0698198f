package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// NotificationObserver generates in-app notifications for organizers when
// bookings on their venues change. It is backend-independent: one shared
// instance is attached to every backend, and its writes go through the
// facade's active backend so they replicate like any other mutation.
//
// It ignores events raised while a propagation is in flight; without that
// check a replicated booking would generate the same notification a second
// time on the other backend.
type NotificationObserver struct {
	facade *storage.Facade
	logger *log.Logger
	now    func() time.Time
}

// NewNotificationObserver creates the shared notification-generation
// observer. If logger is nil, a default logger writing to stderr is used.
func NewNotificationObserver(facade *storage.Facade, logger *log.Logger) *NotificationObserver {
	if logger == nil {
		logger = log.New(os.Stderr, "[notify] ", log.LstdFlags)
	}
	return &NotificationObserver{
		facade: facade,
		logger: logger,
		now:    time.Now,
	}
}

// OnChange implements storage.Observer.
func (n *NotificationObserver) OnChange(ctx context.Context, ev storage.ChangeEvent) {
	if InFlight(ctx) {
		return
	}
	if ev.Kind != storage.KindBooking {
		return
	}

	var err error
	switch ev.Op {
	case storage.OpInsert:
		err = n.onBookingCreated(ctx, ev)
	case storage.OpUpdate:
		err = n.onBookingUpdated(ctx, ev)
	default:
		return
	}
	if err != nil {
		n.logger.Printf("WARNING: failed to generate notification for %s %s (id=%s): %v",
			ev.Op, ev.Kind, ev.ID, err)
	}
}

func (n *NotificationObserver) onBookingCreated(ctx context.Context, ev storage.ChangeEvent) error {
	rec, ok := ev.Payload.(*model.BookingRecord)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", ev.Payload)
	}
	msg := fmt.Sprintf("%s booked your venue for %s", rec.Player, rec.StartsAt.Format(time.RFC1123))
	return n.deliver(ctx, rec.VenueID, msg)
}

func (n *NotificationObserver) onBookingUpdated(ctx context.Context, ev storage.ChangeEvent) error {
	b, ok := ev.Payload.(*model.Booking)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", ev.Payload)
	}
	if b.Status != model.BookingCancelled {
		return nil
	}
	msg := fmt.Sprintf("%s cancelled the booking for %s", b.Player, b.StartsAt.Format(time.RFC1123))
	return n.deliver(ctx, b.VenueID, msg)
}

// deliver resolves the venue's organizer on the active backend and writes
// the notification there. The write takes the normal notify path, so it is
// replicated to the complement backend like any mutation.
func (n *NotificationObserver) deliver(ctx context.Context, venueID int64, message string) error {
	venue, err := n.facade.Venues().FindByID(ctx, venueID)
	if err != nil {
		return fmt.Errorf("failed to resolve venue %d: %w", venueID, err)
	}

	rec := &model.NotificationRecord{
		Recipient: venue.Organizer,
		Message:   message,
		CreatedAt: n.now(),
	}
	if _, err := n.facade.Notifications().Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save notification for %s: %w", venue.Organizer, err)
	}
	return nil
}
