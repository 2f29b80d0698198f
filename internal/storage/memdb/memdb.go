// Package memdb provides the volatile in-memory backend. It exists for
// demos and tests, holds everything in maps guarded by RWMutexes, and
// participates in no sync direction.
package memdb

import (
	"context"
	"fmt"
	"strconv"
	gosync "sync"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Store is the volatile backend. The zero value is not usable; create one
// with New.
type Store struct {
	players       *roleStore
	organizers    *roleStore
	venues        *venueStore
	bookings      *bookingStore
	notifications *notificationStore
}

// New creates an empty in-memory backend.
func New() *Store {
	return &Store{
		players:       newRoleStore(storage.KindPlayer),
		organizers:    newRoleStore(storage.KindOrganizer),
		venues:        &venueStore{recs: make(map[int64]*model.VenueRecord), next: 1},
		bookings:      &bookingStore{recs: make(map[int64]*model.BookingRecord), next: 1},
		notifications: &notificationStore{recs: make(map[int64]*model.NotificationRecord), next: 1},
	}
}

// Stores returns the accessor bundle for this backend.
func (s *Store) Stores() *storage.Stores {
	return &storage.Stores{
		Backend:       storage.Memory,
		Users:         &userStore{store: s},
		Players:       &playerStore{role: s.players},
		Organizers:    &organizerStore{role: s.organizers},
		Venues:        s.venues,
		Bookings:      s.bookings,
		Notifications: s.notifications,
	}
}

// roleStore holds the records of one role family keyed by username.
type roleStore struct {
	kind     storage.Kind
	mu       gosync.RWMutex
	recs     map[string]*model.UserRecord
	notifier storage.Notifier
}

func newRoleStore(kind storage.Kind) *roleStore {
	return &roleStore{kind: kind, recs: make(map[string]*model.UserRecord)}
}

func (s *roleStore) save(ctx context.Context, rec *model.UserRecord) error {
	if err := rec.Validate(); err != nil {
		return storage.NewStoreError(storage.Memory, s.kind, storage.OpInsert, err)
	}
	clone := *rec
	s.mu.Lock()
	s.recs[rec.Username] = &clone
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    s.kind,
		ID:      rec.Username,
		Payload: rec,
	})
	return nil
}

func (s *roleStore) update(ctx context.Context, rec *model.UserRecord, payload any) error {
	s.mu.Lock()
	existing, ok := s.recs[rec.Username]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s %s: %w", s.kind, rec.Username, storage.ErrNotFound)
	}
	existing.Name = rec.Name
	existing.Gender = rec.Gender
	if rec.Password != "" {
		existing.Password = rec.Password
	}
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    s.kind,
		ID:      rec.Username,
		Payload: payload,
	})
	return nil
}

func (s *roleStore) delete(ctx context.Context, username string) error {
	s.mu.Lock()
	_, ok := s.recs[username]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}
	delete(s.recs, username)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: s.kind,
		ID:   username,
	})
	return nil
}

func (s *roleStore) find(username string) (*model.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[username]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

func (s *roleStore) all() []*model.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]*model.UserRecord, 0, len(s.recs))
	for _, rec := range s.recs {
		clone := *rec
		recs = append(recs, &clone)
	}
	return recs
}

// playerStore adapts roleStore to the PlayerStore interface.
type playerStore struct {
	role *roleStore
}

func (s *playerStore) Notifier() *storage.Notifier { return &s.role.notifier }

func (s *playerStore) Save(ctx context.Context, rec *model.UserRecord) error {
	return s.role.save(ctx, rec)
}

func (s *playerStore) Update(ctx context.Context, p *model.Player, rec *model.UserRecord) error {
	return s.role.update(ctx, rec, p)
}

func (s *playerStore) Delete(ctx context.Context, p *model.Player) error {
	return s.role.delete(ctx, p.Username)
}

func (s *playerStore) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.ToPlayer(), nil
}

func (s *playerStore) FindAll(ctx context.Context) ([]*model.Player, error) {
	recs := s.role.all()
	players := make([]*model.Player, 0, len(recs))
	for _, rec := range recs {
		players = append(players, rec.ToPlayer())
	}
	return players, nil
}

// organizerStore adapts roleStore to the OrganizerStore interface.
type organizerStore struct {
	role *roleStore
}

func (s *organizerStore) Notifier() *storage.Notifier { return &s.role.notifier }

func (s *organizerStore) Save(ctx context.Context, rec *model.UserRecord) error {
	return s.role.save(ctx, rec)
}

func (s *organizerStore) Update(ctx context.Context, o *model.Organizer, rec *model.UserRecord) error {
	return s.role.update(ctx, rec, o)
}

func (s *organizerStore) Delete(ctx context.Context, o *model.Organizer) error {
	return s.role.delete(ctx, o.Username)
}

func (s *organizerStore) FindByUsername(ctx context.Context, username string) (*model.Organizer, error) {
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.ToOrganizer(), nil
}

func (s *organizerStore) FindAll(ctx context.Context) ([]*model.Organizer, error) {
	recs := s.role.all()
	organizers := make([]*model.Organizer, 0, len(recs))
	for _, rec := range recs {
		organizers = append(organizers, rec.ToOrganizer())
	}
	return organizers, nil
}

// userStore resolves raw user records by probing both role families.
type userStore struct {
	store *Store
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	if rec, err := s.store.players.find(username); err == nil {
		return rec, nil
	}
	return s.store.organizers.find(username)
}

// venueStore holds venue records keyed by id.
type venueStore struct {
	mu       gosync.Mutex
	recs     map[int64]*model.VenueRecord
	next     int64
	notifier storage.Notifier
}

func (s *venueStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *venueStore) Save(ctx context.Context, rec *model.VenueRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.Memory, storage.KindVenue, storage.OpInsert, err)
	}
	s.mu.Lock()
	if rec.ID == 0 {
		rec.ID = s.next
	}
	if rec.ID >= s.next {
		s.next = rec.ID + 1
	}
	clone := *rec
	s.recs[rec.ID] = &clone
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindVenue,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *venueStore) Update(ctx context.Context, v *model.Venue) error {
	s.mu.Lock()
	if _, ok := s.recs[v.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}
	s.recs[v.ID] = model.RecordFromVenue(v)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindVenue,
		ID:      strconv.FormatInt(v.ID, 10),
		Payload: v,
	})
	return nil
}

func (s *venueStore) Delete(ctx context.Context, v *model.Venue) error {
	s.mu.Lock()
	if _, ok := s.recs[v.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}
	delete(s.recs, v.ID)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindVenue,
		ID:   strconv.FormatInt(v.ID, 10),
	})
	return nil
}

func (s *venueStore) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("venue %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToVenue(), nil
}

func (s *venueStore) FindAll(ctx context.Context) ([]*model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	venues := make([]*model.Venue, 0, len(s.recs))
	for _, rec := range s.recs {
		venues = append(venues, rec.ToVenue())
	}
	return venues, nil
}

// bookingStore holds booking records keyed by id.
type bookingStore struct {
	mu       gosync.Mutex
	recs     map[int64]*model.BookingRecord
	next     int64
	notifier storage.Notifier
}

func (s *bookingStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *bookingStore) Save(ctx context.Context, rec *model.BookingRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.Memory, storage.KindBooking, storage.OpInsert, err)
	}
	s.mu.Lock()
	if rec.ID == 0 {
		rec.ID = s.next
	}
	if rec.ID >= s.next {
		s.next = rec.ID + 1
	}
	clone := *rec
	s.recs[rec.ID] = &clone
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindBooking,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *bookingStore) Update(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	if _, ok := s.recs[b.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}
	s.recs[b.ID] = model.RecordFromBooking(b)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindBooking,
		ID:      strconv.FormatInt(b.ID, 10),
		Payload: b,
	})
	return nil
}

func (s *bookingStore) Delete(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	if _, ok := s.recs[b.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}
	delete(s.recs, b.ID)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindBooking,
		ID:   strconv.FormatInt(b.ID, 10),
	})
	return nil
}

func (s *bookingStore) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToBooking(), nil
}

func (s *bookingStore) FindAll(ctx context.Context) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings := make([]*model.Booking, 0, len(s.recs))
	for _, rec := range s.recs {
		bookings = append(bookings, rec.ToBooking())
	}
	return bookings, nil
}

// notificationStore holds notification records keyed by id.
type notificationStore struct {
	mu       gosync.Mutex
	recs     map[int64]*model.NotificationRecord
	next     int64
	notifier storage.Notifier
}

func (s *notificationStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *notificationStore) Save(ctx context.Context, rec *model.NotificationRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.Memory, storage.KindNotification, storage.OpInsert, err)
	}
	s.mu.Lock()
	if rec.ID == 0 {
		rec.ID = s.next
	}
	if rec.ID >= s.next {
		s.next = rec.ID + 1
	}
	clone := *rec
	s.recs[rec.ID] = &clone
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindNotification,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *notificationStore) Update(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	if _, ok := s.recs[n.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}
	s.recs[n.ID] = model.RecordFromNotification(n)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindNotification,
		ID:      strconv.FormatInt(n.ID, 10),
		Payload: n,
	})
	return nil
}

func (s *notificationStore) Delete(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	if _, ok := s.recs[n.ID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}
	delete(s.recs, n.ID)
	s.mu.Unlock()

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindNotification,
		ID:   strconv.FormatInt(n.ID, 10),
	})
	return nil
}

func (s *notificationStore) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("notification %d: %w", id, storage.ErrNotFound)
	}
	return rec.ToNotification(), nil
}

func (s *notificationStore) FindAll(ctx context.Context) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := make([]*model.Notification, 0, len(s.recs))
	for _, rec := range s.recs {
		notifications = append(notifications, rec.ToNotification())
	}
	return notifications, nil
}
