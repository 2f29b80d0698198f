package filedb

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Stores) {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, s.Stores()
}

func playerRecord(username, password string) *model.UserRecord {
	return &model.UserRecord{
		Username: username,
		Password: password,
		Name:     "Test Player",
		Gender:   "m",
		Role:     model.RolePlayer,
	}
}

func TestOpenCreatesFamilyDirectories(t *testing.T) {
	s, _ := newTestStore(t)
	for _, dir := range s.FamilyDirs() {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("expected family directory %s: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}

func TestRoleSaveWritesRecordFile(t *testing.T) {
	s, stores := newTestStore(t)
	ctx := context.Background()

	if err := stores.Players.Save(ctx, playerRecord("mj23", "secret23")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(s.Root(), "players", "mj23.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected record file at %s: %v", path, err)
	}

	p, err := stores.Players.FindByUsername(ctx, "mj23")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if p.Name != "Test Player" {
		t.Errorf("unexpected player contents: %+v", p)
	}
}

func TestRoleSaveRejectsInvalidRecord(t *testing.T) {
	_, stores := newTestStore(t)
	err := stores.Players.Save(context.Background(), &model.UserRecord{Username: "x", Role: "referee"})
	if err == nil {
		t.Fatal("expected validation error for unknown role")
	}
}

func TestRoleUpdatePreservesCredentialWhenCarrierEmpty(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	if err := stores.Players.Save(ctx, playerRecord("mj23", "secret23")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p := &model.Player{User: model.User{Username: "mj23", Name: "Mike", Gender: "m", Role: model.RolePlayer}}
	carrier := &model.UserRecord{Username: "mj23", Name: "Mike", Gender: "m", Role: model.RolePlayer}
	if err := stores.Players.Update(ctx, p, carrier); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	raw, err := stores.Users.FindByUsername(ctx, "mj23")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if raw.Password != "secret23" {
		t.Errorf("expected credential preserved, got %q", raw.Password)
	}
	if raw.Name != "Mike" {
		t.Errorf("expected profile updated, got name %q", raw.Name)
	}
}

func TestRoleUpdateRotatesCredentialWhenCarrierSet(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	if err := stores.Players.Save(ctx, playerRecord("mj23", "secret23")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p := &model.Player{User: model.User{Username: "mj23", Name: "Mike", Gender: "m", Role: model.RolePlayer}}
	carrier := &model.UserRecord{Username: "mj23", Password: "rotated", Name: "Mike", Gender: "m", Role: model.RolePlayer}
	if err := stores.Players.Update(ctx, p, carrier); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	raw, err := stores.Users.FindByUsername(ctx, "mj23")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if raw.Password != "rotated" {
		t.Errorf("expected credential rotated, got %q", raw.Password)
	}
}

func TestRoleMissesReportNotFound(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	if _, err := stores.Players.FindByUsername(ctx, "ghost"); !storage.IsNotFound(err) {
		t.Errorf("expected not-found for missing player, got %v", err)
	}

	ghost := &model.Player{User: model.User{Username: "ghost"}}
	if err := stores.Players.Delete(ctx, ghost); !storage.IsNotFound(err) {
		t.Errorf("expected not-found for missing delete, got %v", err)
	}

	carrier := &model.UserRecord{Username: "ghost", Name: "x", Role: model.RolePlayer}
	if err := stores.Players.Update(ctx, ghost, carrier); !storage.IsNotFound(err) {
		t.Errorf("expected not-found for missing update, got %v", err)
	}
}

func TestUserStoreProbesBothRoleFamilies(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	if err := stores.Players.Save(ctx, playerRecord("mj23", "pw1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	organizer := &model.UserRecord{
		Username: "owner1", Password: "pw2", Name: "Owner", Gender: "f", Role: model.RoleOrganizer,
	}
	if err := stores.Organizers.Save(ctx, organizer); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if rec, err := stores.Users.FindByUsername(ctx, "mj23"); err != nil || rec.Role != model.RolePlayer {
		t.Errorf("expected player record, got %v, %v", rec, err)
	}
	if rec, err := stores.Users.FindByUsername(ctx, "owner1"); err != nil || rec.Role != model.RoleOrganizer {
		t.Errorf("expected organizer record, got %v, %v", rec, err)
	}
	if _, err := stores.Users.FindByUsername(ctx, "ghost"); !storage.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestVenueIdentifierAllocation(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	first, err := stores.Venues.Save(ctx, &model.VenueRecord{Name: "A", Capacity: 10, Organizer: "owner1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first != 1 {
		t.Errorf("expected first allocation to be 1, got %d", first)
	}

	explicit, err := stores.Venues.Save(ctx, &model.VenueRecord{ID: 7, Name: "B", Capacity: 10, Organizer: "owner1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if explicit != 7 {
		t.Errorf("expected explicit id preserved, got %d", explicit)
	}

	next, err := stores.Venues.Save(ctx, &model.VenueRecord{Name: "C", Capacity: 10, Organizer: "owner1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if next != 8 {
		t.Errorf("expected counter advanced past explicit id, got %d", next)
	}
}

func TestCountersSeedFromExistingFiles(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	s, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.Stores().Venues.Save(ctx, &model.VenueRecord{ID: 5, Name: "A", Capacity: 10, Organizer: "owner1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh open must continue after the highest id on disk.
	reopened, err := Open(root, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	id, err := reopened.Stores().Venues.Save(ctx, &model.VenueRecord{Name: "B", Capacity: 10, Organizer: "owner1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != 6 {
		t.Errorf("expected id 6 after reopen, got %d", id)
	}
}

func TestWipeClearsRecordsAndResetsCounters(t *testing.T) {
	s, stores := newTestStore(t)
	ctx := context.Background()

	if err := stores.Players.Save(ctx, playerRecord("mj23", "pw")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := stores.Venues.Save(ctx, &model.VenueRecord{ID: 9, Name: "A", Capacity: 10, Organizer: "owner1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Wipe(ctx); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	players, err := stores.Players.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(players) != 0 {
		t.Errorf("expected no players after wipe, got %d", len(players))
	}

	id, err := stores.Venues.Save(ctx, &model.VenueRecord{Name: "B", Capacity: 10, Organizer: "owner1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != 1 {
		t.Errorf("expected counter reset to 1 after wipe, got %d", id)
	}
}

func TestFindAllSkipsCorruptFiles(t *testing.T) {
	var warnings bytes.Buffer
	s, err := Open(t.TempDir(), log.New(&warnings, "", 0))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	stores := s.Stores()
	ctx := context.Background()

	if _, err := stores.Venues.Save(ctx, &model.VenueRecord{Name: "A", Capacity: 10, Organizer: "owner1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	corrupt := filepath.Join(s.Root(), "venues", "999.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	venues, err := stores.Venues.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(venues) != 1 {
		t.Errorf("expected the one valid venue, got %d", len(venues))
	}
	if !strings.Contains(warnings.String(), "skipping invalid venue file 999") {
		t.Errorf("expected skip warning on the injected logger, got %q", warnings.String())
	}
}

func TestFindByIDReportsCorruptFileAsReadError(t *testing.T) {
	s, stores := newTestStore(t)
	ctx := context.Background()

	corrupt := filepath.Join(s.Root(), "venues", "3.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	_, err := stores.Venues.FindByID(ctx, 3)
	if err == nil {
		t.Fatal("expected error for corrupt record file")
	}
	if storage.IsNotFound(err) {
		t.Errorf("expected read failure, not not-found: %v", err)
	}
	if !strings.Contains(err.Error(), "failed to read venue 3") {
		t.Errorf("expected read wording, got %v", err)
	}
}

func TestBookingRoundTrip(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	starts := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	id, err := stores.Bookings.Save(ctx, &model.BookingRecord{
		VenueID: 1, Player: "mj23", StartsAt: starts, Status: model.BookingConfirmed,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	b, err := stores.Bookings.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !b.StartsAt.Equal(starts) || b.Status != model.BookingConfirmed {
		t.Errorf("unexpected booking contents: %+v", b)
	}

	b.Status = model.BookingCancelled
	if err := stores.Bookings.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := stores.Bookings.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Status != model.BookingCancelled {
		t.Errorf("expected cancelled status persisted, got %q", got.Status)
	}

	if err := stores.Bookings.Delete(ctx, got); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := stores.Bookings.FindByID(ctx, id); !storage.IsNotFound(err) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}

func TestSaveEmitsChangeEvent(t *testing.T) {
	_, stores := newTestStore(t)
	ctx := context.Background()

	var events []storage.ChangeEvent
	stores.Venues.Notifier().AddObserver(observerFunc(func(ctx context.Context, ev storage.ChangeEvent) {
		events = append(events, ev)
	}))

	if _, err := stores.Venues.Save(ctx, &model.VenueRecord{Name: "A", Capacity: 10, Organizer: "owner1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(events))
	}
	ev := events[0]
	if ev.Op != storage.OpInsert || ev.Kind != storage.KindVenue || ev.ID != "1" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if _, ok := ev.Payload.(*model.VenueRecord); !ok {
		t.Errorf("expected record payload, got %T", ev.Payload)
	}
}

type observerFunc func(ctx context.Context, ev storage.ChangeEvent)

func (f observerFunc) OnChange(ctx context.Context, ev storage.ChangeEvent) { f(ctx, ev) }
