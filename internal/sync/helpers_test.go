package sync

import (
	"context"
	"fmt"
	"log"
	gosync "sync"
	"testing"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// callLog records store operations in order, shared by every fake store of
// one bundle so cross-family ordering can be asserted.
type callLog struct {
	mu    gosync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// fakeBundle is an in-memory store bundle that records every mutation and
// emits change events exactly like a real backend, so reciprocal observers
// fire during tests.
type fakeBundle struct {
	stores *storage.Stores
	log    *callLog

	players       *fakeRoleStore
	organizers    *fakeRoleStore
	venues        *fakeVenueStore
	bookings      *fakeBookingStore
	notifications *fakeNotificationStore

	pingErr error
	wiped   bool
}

func newFakeBundle(t *testing.T, backend storage.Backend) *fakeBundle {
	t.Helper()

	log := &callLog{}
	b := &fakeBundle{
		log:           log,
		players:       newFakeRoleStore(backend, storage.KindPlayer, log),
		organizers:    newFakeRoleStore(backend, storage.KindOrganizer, log),
		venues:        &fakeVenueStore{backend: backend, log: log, recs: map[int64]*model.VenueRecord{}},
		bookings:      &fakeBookingStore{backend: backend, log: log, recs: map[int64]*model.BookingRecord{}},
		notifications: &fakeNotificationStore{backend: backend, log: log, recs: map[int64]*model.NotificationRecord{}},
	}
	b.stores = &storage.Stores{
		Backend:       backend,
		Users:         &fakeUserStore{bundle: b},
		Players:       &fakePlayerStore{role: b.players},
		Organizers:    &fakeOrganizerStore{role: b.organizers},
		Venues:        b.venues,
		Bookings:      b.bookings,
		Notifications: b.notifications,
		Ping: func(ctx context.Context) error {
			return b.pingErr
		},
		Wipe: func(ctx context.Context) error {
			b.wiped = true
			log.add("wipe")
			b.players.recs = map[string]*model.UserRecord{}
			b.organizers.recs = map[string]*model.UserRecord{}
			b.venues.recs = map[int64]*model.VenueRecord{}
			b.bookings.recs = map[int64]*model.BookingRecord{}
			b.notifications.recs = map[int64]*model.NotificationRecord{}
			return nil
		},
	}
	return b
}

// newSyncedPair wires a sqlite and a file fake bundle into a facade with
// reciprocal replicators attached, mirroring production wiring.
func newSyncedPair(t *testing.T) (*storage.Facade, *fakeBundle, *fakeBundle) {
	t.Helper()

	facade := storage.NewFacade(storage.SQLite)
	master := newFakeBundle(t, storage.SQLite)
	replica := newFakeBundle(t, storage.File)
	facade.Register(master.stores)
	facade.Register(replica.stores)

	registry := NewRegistry(facade, testLogger(t))
	registry.Attach(master.stores)
	registry.Attach(replica.stores)

	return facade, master, replica
}

// fakeRoleStore backs one role family.
type fakeRoleStore struct {
	backend  storage.Backend
	kind     storage.Kind
	log      *callLog
	recs     map[string]*model.UserRecord
	notifier storage.Notifier

	failSave error
}

func newFakeRoleStore(backend storage.Backend, kind storage.Kind, log *callLog) *fakeRoleStore {
	return &fakeRoleStore{backend: backend, kind: kind, log: log, recs: map[string]*model.UserRecord{}}
}

func (s *fakeRoleStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *fakeRoleStore) save(ctx context.Context, rec *model.UserRecord) error {
	if s.failSave != nil {
		s.log.add("%s: save %s %s FAILED", s.backend, s.kind, rec.Username)
		return s.failSave
	}
	clone := *rec
	s.recs[rec.Username] = &clone
	s.log.add("%s: save %s %s password=%q", s.backend, s.kind, rec.Username, rec.Password)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpInsert, Kind: s.kind, ID: rec.Username, Payload: rec,
	})
	return nil
}

func (s *fakeRoleStore) update(ctx context.Context, rec *model.UserRecord, payload any) error {
	existing, ok := s.recs[rec.Username]
	if !ok {
		return fmt.Errorf("%s %s: %w", s.kind, rec.Username, storage.ErrNotFound)
	}
	existing.Name = rec.Name
	existing.Gender = rec.Gender
	if rec.Password != "" {
		existing.Password = rec.Password
	}
	s.log.add("%s: update %s %s password=%q", s.backend, s.kind, rec.Username, rec.Password)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpUpdate, Kind: s.kind, ID: rec.Username, Payload: payload,
	})
	return nil
}

func (s *fakeRoleStore) delete(ctx context.Context, username string) error {
	if _, ok := s.recs[username]; !ok {
		return fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}
	delete(s.recs, username)
	s.log.add("%s: delete %s %s", s.backend, s.kind, username)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpDelete, Kind: s.kind, ID: username,
	})
	return nil
}

func (s *fakeRoleStore) find(username string) (*model.UserRecord, error) {
	rec, ok := s.recs[username]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeRoleStore) allRecords() []*model.UserRecord {
	var out []*model.UserRecord
	for _, rec := range s.recs {
		clone := *rec
		out = append(out, &clone)
	}
	return out
}

// fakePlayerStore adapts fakeRoleStore to the PlayerStore interface.
type fakePlayerStore struct {
	role *fakeRoleStore
}

func (s *fakePlayerStore) Notifier() *storage.Notifier { return &s.role.notifier }

func (s *fakePlayerStore) Save(ctx context.Context, rec *model.UserRecord) error {
	return s.role.save(ctx, rec)
}

func (s *fakePlayerStore) Update(ctx context.Context, p *model.Player, rec *model.UserRecord) error {
	return s.role.update(ctx, rec, p)
}

func (s *fakePlayerStore) Delete(ctx context.Context, p *model.Player) error {
	return s.role.delete(ctx, p.Username)
}

func (s *fakePlayerStore) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.WithoutPassword().ToPlayer(), nil
}

func (s *fakePlayerStore) FindAll(ctx context.Context) ([]*model.Player, error) {
	var out []*model.Player
	for _, rec := range s.role.allRecords() {
		out = append(out, rec.WithoutPassword().ToPlayer())
	}
	return out, nil
}

// fakeOrganizerStore adapts fakeRoleStore to the OrganizerStore interface.
type fakeOrganizerStore struct {
	role *fakeRoleStore
}

func (s *fakeOrganizerStore) Notifier() *storage.Notifier { return &s.role.notifier }

func (s *fakeOrganizerStore) Save(ctx context.Context, rec *model.UserRecord) error {
	return s.role.save(ctx, rec)
}

func (s *fakeOrganizerStore) Update(ctx context.Context, o *model.Organizer, rec *model.UserRecord) error {
	return s.role.update(ctx, rec, o)
}

func (s *fakeOrganizerStore) Delete(ctx context.Context, o *model.Organizer) error {
	return s.role.delete(ctx, o.Username)
}

func (s *fakeOrganizerStore) FindByUsername(ctx context.Context, username string) (*model.Organizer, error) {
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.WithoutPassword().ToOrganizer(), nil
}

func (s *fakeOrganizerStore) FindAll(ctx context.Context) ([]*model.Organizer, error) {
	var out []*model.Organizer
	for _, rec := range s.role.allRecords() {
		out = append(out, rec.WithoutPassword().ToOrganizer())
	}
	return out, nil
}

// fakeUserStore exposes raw records, credential included, by probing both
// role families of its bundle.
type fakeUserStore struct {
	bundle *fakeBundle
}

func (s *fakeUserStore) FindByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	if rec, err := s.bundle.players.find(username); err == nil {
		return rec, nil
	}
	return s.bundle.organizers.find(username)
}

// fakeVenueStore backs the venue family.
type fakeVenueStore struct {
	backend  storage.Backend
	log      *callLog
	recs     map[int64]*model.VenueRecord
	next     int64
	notifier storage.Notifier

	failSave error
}

func (s *fakeVenueStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *fakeVenueStore) allocate(explicit int64) int64 {
	if s.next == 0 {
		s.next = 1
	}
	if explicit == 0 {
		id := s.next
		s.next++
		return id
	}
	if explicit >= s.next {
		s.next = explicit + 1
	}
	return explicit
}

func (s *fakeVenueStore) Save(ctx context.Context, rec *model.VenueRecord) (int64, error) {
	if s.failSave != nil {
		s.log.add("%s: save venue %d FAILED", s.backend, rec.ID)
		return 0, s.failSave
	}
	clone := *rec
	clone.ID = s.allocate(rec.ID)
	s.recs[clone.ID] = &clone
	s.log.add("%s: save venue %d", s.backend, clone.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpInsert, Kind: storage.KindVenue, ID: fmt.Sprint(clone.ID), Payload: &clone,
	})
	return clone.ID, nil
}

func (s *fakeVenueStore) Update(ctx context.Context, v *model.Venue) error {
	if _, ok := s.recs[v.ID]; !ok {
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}
	s.recs[v.ID] = model.RecordFromVenue(v)
	s.log.add("%s: update venue %d", s.backend, v.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpUpdate, Kind: storage.KindVenue, ID: fmt.Sprint(v.ID), Payload: v,
	})
	return nil
}

func (s *fakeVenueStore) Delete(ctx context.Context, v *model.Venue) error {
	if _, ok := s.recs[v.ID]; !ok {
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}
	delete(s.recs, v.ID)
	s.log.add("%s: delete venue %d", s.backend, v.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpDelete, Kind: storage.KindVenue, ID: fmt.Sprint(v.ID),
	})
	return nil
}

func (s *fakeVenueStore) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("venue %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToVenue(), nil
}

func (s *fakeVenueStore) FindAll(ctx context.Context) ([]*model.Venue, error) {
	var out []*model.Venue
	for _, rec := range s.recs {
		out = append(out, rec.ToVenue())
	}
	return out, nil
}

// fakeBookingStore backs the booking family.
type fakeBookingStore struct {
	backend  storage.Backend
	log      *callLog
	recs     map[int64]*model.BookingRecord
	next     int64
	notifier storage.Notifier
}

func (s *fakeBookingStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *fakeBookingStore) allocate(explicit int64) int64 {
	if s.next == 0 {
		s.next = 1
	}
	if explicit == 0 {
		id := s.next
		s.next++
		return id
	}
	if explicit >= s.next {
		s.next = explicit + 1
	}
	return explicit
}

func (s *fakeBookingStore) Save(ctx context.Context, rec *model.BookingRecord) (int64, error) {
	clone := *rec
	clone.ID = s.allocate(rec.ID)
	s.recs[clone.ID] = &clone
	s.log.add("%s: save booking %d", s.backend, clone.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpInsert, Kind: storage.KindBooking, ID: fmt.Sprint(clone.ID), Payload: &clone,
	})
	return clone.ID, nil
}

func (s *fakeBookingStore) Update(ctx context.Context, b *model.Booking) error {
	if _, ok := s.recs[b.ID]; !ok {
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}
	s.recs[b.ID] = model.RecordFromBooking(b)
	s.log.add("%s: update booking %d", s.backend, b.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpUpdate, Kind: storage.KindBooking, ID: fmt.Sprint(b.ID), Payload: b,
	})
	return nil
}

func (s *fakeBookingStore) Delete(ctx context.Context, b *model.Booking) error {
	if _, ok := s.recs[b.ID]; !ok {
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}
	delete(s.recs, b.ID)
	s.log.add("%s: delete booking %d", s.backend, b.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpDelete, Kind: storage.KindBooking, ID: fmt.Sprint(b.ID),
	})
	return nil
}

func (s *fakeBookingStore) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToBooking(), nil
}

func (s *fakeBookingStore) FindAll(ctx context.Context) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, rec := range s.recs {
		out = append(out, rec.ToBooking())
	}
	return out, nil
}

// fakeNotificationStore backs the notification family.
type fakeNotificationStore struct {
	backend  storage.Backend
	log      *callLog
	recs     map[int64]*model.NotificationRecord
	next     int64
	notifier storage.Notifier
}

func (s *fakeNotificationStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *fakeNotificationStore) allocate(explicit int64) int64 {
	if s.next == 0 {
		s.next = 1
	}
	if explicit == 0 {
		id := s.next
		s.next++
		return id
	}
	if explicit >= s.next {
		s.next = explicit + 1
	}
	return explicit
}

func (s *fakeNotificationStore) Save(ctx context.Context, rec *model.NotificationRecord) (int64, error) {
	clone := *rec
	clone.ID = s.allocate(rec.ID)
	s.recs[clone.ID] = &clone
	s.log.add("%s: save notification %d", s.backend, clone.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpInsert, Kind: storage.KindNotification, ID: fmt.Sprint(clone.ID), Payload: &clone,
	})
	return clone.ID, nil
}

func (s *fakeNotificationStore) Update(ctx context.Context, n *model.Notification) error {
	if _, ok := s.recs[n.ID]; !ok {
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}
	s.recs[n.ID] = model.RecordFromNotification(n)
	s.log.add("%s: update notification %d", s.backend, n.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpUpdate, Kind: storage.KindNotification, ID: fmt.Sprint(n.ID), Payload: n,
	})
	return nil
}

func (s *fakeNotificationStore) Delete(ctx context.Context, n *model.Notification) error {
	if _, ok := s.recs[n.ID]; !ok {
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}
	delete(s.recs, n.ID)
	s.log.add("%s: delete notification %d", s.backend, n.ID)
	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op: storage.OpDelete, Kind: storage.KindNotification, ID: fmt.Sprint(n.ID),
	})
	return nil
}

func (s *fakeNotificationStore) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("notification %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToNotification(), nil
}

func (s *fakeNotificationStore) FindAll(ctx context.Context) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, rec := range s.recs {
		out = append(out, rec.ToNotification())
	}
	return out, nil
}

// testLogger routes observer log output to the test log so failures carry
// the warnings that were emitted.
func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(testWriter{t}, "", 0)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
