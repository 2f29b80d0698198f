package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Replicator replays change events from a fixed source backend onto its
// complement. One replicator is attached per non-volatile source direction.
//
// Every handler follows the same shape: if a propagation is already in
// flight the event is ignored, otherwise the context is marked and the
// mutation is replayed on the target. Replay failures are logged with full
// context and swallowed; the caller of the original mutation never sees
// them.
type Replicator struct {
	facade *storage.Facade
	source storage.Backend
	target storage.Backend
	logger *log.Logger
}

// NewReplicator creates a replicator for the given source backend.
//
// The target is always the structural complement of the source; asking for
// a replicator on the volatile backend is a wiring error.
//
// If logger is nil, a default logger writing to stderr is used.
func NewReplicator(facade *storage.Facade, source storage.Backend, logger *log.Logger) (*Replicator, error) {
	target, ok := source.Complement()
	if !ok {
		return nil, fmt.Errorf("backend %s has no sync complement", source)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Replicator{
		facade: facade,
		source: source,
		target: target,
		logger: logger,
	}, nil
}

// Source returns the backend this replicator listens to.
func (r *Replicator) Source() storage.Backend { return r.source }

// Target returns the backend this replicator writes to.
func (r *Replicator) Target() storage.Backend { return r.target }

// OnChange implements storage.Observer.
func (r *Replicator) OnChange(ctx context.Context, ev storage.ChangeEvent) {
	if InFlight(ctx) {
		return
	}
	ctx = Begin(ctx)

	tgt, err := r.facade.Bundle(r.target)
	if err != nil {
		r.logFailure(ev, err)
		return
	}

	switch ev.Op {
	case storage.OpInsert:
		err = r.replayInsert(ctx, tgt, ev)
	case storage.OpUpdate:
		err = r.replayUpdate(ctx, tgt, ev)
	case storage.OpDelete:
		err = r.replayDelete(ctx, tgt, ev)
	default:
		err = fmt.Errorf("unknown operation %d", ev.Op)
	}
	if err != nil {
		r.logFailure(ev, err)
	}
}

// replayInsert routes the flat transfer record in the event payload to the
// matching save operation on the target bundle.
func (r *Replicator) replayInsert(ctx context.Context, tgt *storage.Stores, ev storage.ChangeEvent) error {
	switch ev.Kind {
	case storage.KindPlayer:
		rec, err := payloadAs[*model.UserRecord](ev)
		if err != nil {
			return err
		}
		return tgt.Players.Save(ctx, rec)
	case storage.KindOrganizer:
		rec, err := payloadAs[*model.UserRecord](ev)
		if err != nil {
			return err
		}
		return tgt.Organizers.Save(ctx, rec)
	case storage.KindVenue:
		rec, err := payloadAs[*model.VenueRecord](ev)
		if err != nil {
			return err
		}
		_, err = tgt.Venues.Save(ctx, rec)
		return err
	case storage.KindBooking:
		rec, err := payloadAs[*model.BookingRecord](ev)
		if err != nil {
			return err
		}
		_, err = tgt.Bookings.Save(ctx, rec)
		return err
	case storage.KindNotification:
		rec, err := payloadAs[*model.NotificationRecord](ev)
		if err != nil {
			return err
		}
		_, err = tgt.Notifications.Save(ctx, rec)
		return err
	case storage.KindUser:
		// Inserts are always role-qualified at the write boundary; a bare
		// user insert has nowhere to route.
		r.logger.Printf("WARNING: skipping insert for unroutable kind %s (id=%s)", ev.Kind, ev.ID)
		return nil
	}
	r.logger.Printf("WARNING: skipping insert for unknown kind %s (id=%s)", ev.Kind, ev.ID)
	return nil
}

// replayUpdate drives the target's update from the already-mutated domain
// object in the event payload. Role families are reduced to a minimal
// record carrier that omits the credential, so the target treats the
// password as "leave unchanged".
func (r *Replicator) replayUpdate(ctx context.Context, tgt *storage.Stores, ev storage.ChangeEvent) error {
	switch ev.Kind {
	case storage.KindPlayer:
		p, err := payloadAs[*model.Player](ev)
		if err != nil {
			return err
		}
		return tgt.Players.Update(ctx, p, roleCarrier(p.User))
	case storage.KindOrganizer:
		o, err := payloadAs[*model.Organizer](ev)
		if err != nil {
			return err
		}
		return tgt.Organizers.Update(ctx, o, roleCarrier(o.User))
	case storage.KindVenue:
		v, err := payloadAs[*model.Venue](ev)
		if err != nil {
			return err
		}
		return tgt.Venues.Update(ctx, v)
	case storage.KindBooking:
		b, err := payloadAs[*model.Booking](ev)
		if err != nil {
			return err
		}
		return tgt.Bookings.Update(ctx, b)
	case storage.KindNotification:
		n, err := payloadAs[*model.Notification](ev)
		if err != nil {
			return err
		}
		return tgt.Notifications.Update(ctx, n)
	case storage.KindUser:
		r.logger.Printf("WARNING: skipping update for unroutable kind %s (id=%s)", ev.Kind, ev.ID)
		return nil
	}
	r.logger.Printf("WARNING: skipping update for unknown kind %s (id=%s)", ev.Kind, ev.ID)
	return nil
}

// replayDelete removes the entity on the target, but only if the target
// still holds it: a miss means there is nothing to do. For the generic user
// kind the role is unknown, so each role store is probed in turn and the
// first hit wins.
func (r *Replicator) replayDelete(ctx context.Context, tgt *storage.Stores, ev storage.ChangeEvent) error {
	switch ev.Kind {
	case storage.KindPlayer:
		p, err := tgt.Players.FindByUsername(ctx, ev.ID)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve player on target: %w", err)
		}
		return tgt.Players.Delete(ctx, p)
	case storage.KindOrganizer:
		o, err := tgt.Organizers.FindByUsername(ctx, ev.ID)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve organizer on target: %w", err)
		}
		return tgt.Organizers.Delete(ctx, o)
	case storage.KindUser:
		return r.deleteUnknownRole(ctx, tgt, ev.ID)
	case storage.KindVenue:
		id, err := parseNumericID(ev.ID)
		if err != nil {
			return err
		}
		v, err := tgt.Venues.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve venue on target: %w", err)
		}
		return tgt.Venues.Delete(ctx, v)
	case storage.KindBooking:
		id, err := parseNumericID(ev.ID)
		if err != nil {
			return err
		}
		b, err := tgt.Bookings.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve booking on target: %w", err)
		}
		return tgt.Bookings.Delete(ctx, b)
	case storage.KindNotification:
		id, err := parseNumericID(ev.ID)
		if err != nil {
			return err
		}
		n, err := tgt.Notifications.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve notification on target: %w", err)
		}
		return tgt.Notifications.Delete(ctx, n)
	}
	r.logger.Printf("WARNING: skipping delete for unknown kind %s (id=%s)", ev.Kind, ev.ID)
	return nil
}

// deleteUnknownRole probes each role store for the username and deletes on
// the first hit. No hit on either store means the record is already absent.
func (r *Replicator) deleteUnknownRole(ctx context.Context, tgt *storage.Stores, username string) error {
	p, err := tgt.Players.FindByUsername(ctx, username)
	if err == nil {
		return tgt.Players.Delete(ctx, p)
	}
	if !storage.IsNotFound(err) {
		return fmt.Errorf("failed to probe player on target: %w", err)
	}

	o, err := tgt.Organizers.FindByUsername(ctx, username)
	if err == nil {
		return tgt.Organizers.Delete(ctx, o)
	}
	if !storage.IsNotFound(err) {
		return fmt.Errorf("failed to probe organizer on target: %w", err)
	}
	return nil
}

func (r *Replicator) logFailure(ev storage.ChangeEvent, err error) {
	r.logger.Printf("WARNING: failed to propagate %s %s (id=%s) from %s to %s: %v",
		ev.Op, ev.Kind, ev.ID, r.source, r.target, err)
}

// roleCarrier builds the minimal record used to drive a role update on the
// target. The credential is explicitly omitted: the target update contract
// treats an empty password as "leave unchanged".
func roleCarrier(u model.User) *model.UserRecord {
	return &model.UserRecord{
		Username: u.Username,
		Name:     u.Name,
		Gender:   u.Gender,
		Role:     u.Role,
	}
}

// parseNumericID parses the string identifier of a numeric-keyed family.
// A malformed identifier is a contained replay error, never a crash.
func parseNumericID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed numeric id %q: %w", s, err)
	}
	return id, nil
}

// payloadAs asserts the event payload to the expected concrete type.
func payloadAs[T any](ev storage.ChangeEvent) (T, error) {
	v, ok := ev.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected payload type %T for %s %s (id=%s)", ev.Payload, ev.Op, ev.Kind, ev.ID)
	}
	return v, nil
}
