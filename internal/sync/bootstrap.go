package sync

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Bootstrap rebuilds the file backend from the SQLite master. It runs once
// at process start, before any user-facing operation accepts input, and can
// be re-run on demand to close a consistency window without a restart.
//
// The file backend is wiped and repopulated family by family in dependency
// order: role aggregates first, then venues, then bookings, then
// notifications, so parents always exist before children reference them.
// The whole run executes under the propagation guard, which suppresses
// per-record notification noise and reciprocal replication.
type Bootstrap struct {
	facade *storage.Facade
	logger *log.Logger
}

// NewBootstrap creates the one-shot startup reconciler.
// If logger is nil, a default logger writing to stderr is used.
func NewBootstrap(facade *storage.Facade, logger *log.Logger) *Bootstrap {
	if logger == nil {
		logger = log.New(os.Stderr, "[bootstrap] ", log.LstdFlags)
	}
	return &Bootstrap{facade: facade, logger: logger}
}

// Run performs the initial reconciliation for the given active backend.
//
// The volatile backend needs no reconciliation. If the SQLite master is
// unreachable, a warning is logged and the file backend is left exactly as
// it is; the system stays usable offline. Per-record failures inside a
// family are logged and skipped without aborting the family or the run.
func (b *Bootstrap) Run(ctx context.Context, active storage.Backend) error {
	if active == storage.Memory {
		b.logger.Printf("Volatile backend active, skipping initial sync")
		return nil
	}

	master, err := b.facade.Bundle(storage.SQLite)
	if err != nil {
		return fmt.Errorf("failed to resolve master stores: %w", err)
	}
	replica, err := b.facade.Bundle(storage.File)
	if err != nil {
		return fmt.Errorf("failed to resolve file stores: %w", err)
	}

	if master.Ping != nil {
		if err := master.Ping(ctx); err != nil {
			b.logger.Printf("WARNING: master unreachable, keeping existing file data: %v", err)
			return nil
		}
	}

	b.logger.Printf("Starting initial sync: rebuilding %s from %s", replica.Backend, master.Backend)
	ctx = Begin(ctx)

	if replica.Wipe == nil {
		return fmt.Errorf("file backend does not support wipe")
	}
	if err := replica.Wipe(ctx); err != nil {
		return fmt.Errorf("failed to wipe file backend: %w", err)
	}

	var written, failed int
	b.syncPlayers(ctx, master, replica, &written, &failed)
	b.syncOrganizers(ctx, master, replica, &written, &failed)
	b.syncVenues(ctx, master, replica, &written, &failed)
	b.syncBookings(ctx, master, replica, &written, &failed)
	b.syncNotifications(ctx, master, replica, &written, &failed)

	b.logger.Printf("Initial sync complete: written=%d failed=%d", written, failed)
	return nil
}

// syncPlayers copies every player from the master. The role-read path omits
// the credential, so it is fetched independently from the master's raw user
// record and merged into the transfer record before the write.
func (b *Bootstrap) syncPlayers(ctx context.Context, master, replica *storage.Stores, written, failed *int) {
	players, err := master.Players.FindAll(ctx)
	if err != nil {
		b.logger.Printf("WARNING: failed to read players from master: %v", err)
		return
	}
	for _, p := range players {
		rec := model.RecordFromUser(p.User)
		if err := b.mergeCredential(ctx, master, rec); err != nil {
			b.logger.Printf("WARNING: skipping player %s: %v", p.Username, err)
			*failed++
			continue
		}
		if err := replica.Players.Save(ctx, rec); err != nil {
			b.logger.Printf("WARNING: failed to write player %s: %v", p.Username, err)
			*failed++
			continue
		}
		*written++
	}
}

func (b *Bootstrap) syncOrganizers(ctx context.Context, master, replica *storage.Stores, written, failed *int) {
	organizers, err := master.Organizers.FindAll(ctx)
	if err != nil {
		b.logger.Printf("WARNING: failed to read organizers from master: %v", err)
		return
	}
	for _, o := range organizers {
		rec := model.RecordFromUser(o.User)
		if err := b.mergeCredential(ctx, master, rec); err != nil {
			b.logger.Printf("WARNING: skipping organizer %s: %v", o.Username, err)
			*failed++
			continue
		}
		if err := replica.Organizers.Save(ctx, rec); err != nil {
			b.logger.Printf("WARNING: failed to write organizer %s: %v", o.Username, err)
			*failed++
			continue
		}
		*written++
	}
}

func (b *Bootstrap) syncVenues(ctx context.Context, master, replica *storage.Stores, written, failed *int) {
	venues, err := master.Venues.FindAll(ctx)
	if err != nil {
		b.logger.Printf("WARNING: failed to read venues from master: %v", err)
		return
	}
	for _, v := range venues {
		if _, err := replica.Venues.Save(ctx, model.RecordFromVenue(v)); err != nil {
			b.logger.Printf("WARNING: failed to write venue %d: %v", v.ID, err)
			*failed++
			continue
		}
		*written++
	}
}

func (b *Bootstrap) syncBookings(ctx context.Context, master, replica *storage.Stores, written, failed *int) {
	bookings, err := master.Bookings.FindAll(ctx)
	if err != nil {
		b.logger.Printf("WARNING: failed to read bookings from master: %v", err)
		return
	}
	for _, bk := range bookings {
		if _, err := replica.Bookings.Save(ctx, model.RecordFromBooking(bk)); err != nil {
			b.logger.Printf("WARNING: failed to write booking %d: %v", bk.ID, err)
			*failed++
			continue
		}
		*written++
	}
}

func (b *Bootstrap) syncNotifications(ctx context.Context, master, replica *storage.Stores, written, failed *int) {
	notifications, err := master.Notifications.FindAll(ctx)
	if err != nil {
		b.logger.Printf("WARNING: failed to read notifications from master: %v", err)
		return
	}
	for _, n := range notifications {
		if _, err := replica.Notifications.Save(ctx, model.RecordFromNotification(n)); err != nil {
			b.logger.Printf("WARNING: failed to write notification %d: %v", n.ID, err)
			*failed++
			continue
		}
		*written++
	}
}

// mergeCredential fills the record's password from the master's raw user
// record. A role record without a credential on the replica would turn the
// next "leave unchanged" update into a permanently empty password.
func (b *Bootstrap) mergeCredential(ctx context.Context, master *storage.Stores, rec *model.UserRecord) error {
	raw, err := master.Users.FindByUsername(ctx, rec.Username)
	if err != nil {
		return fmt.Errorf("failed to fetch credential: %w", err)
	}
	rec.Password = raw.Password
	return nil
}
