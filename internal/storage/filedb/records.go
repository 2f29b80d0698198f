package filedb

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// venueStore persists venues as {id}.json files.
type venueStore struct {
	dir      dir
	counter  *counter
	logger   *log.Logger
	notifier storage.Notifier
}

func openVenueStore(path string, logger *log.Logger) (*venueStore, error) {
	d := dir{path: path}
	c, err := initCounter(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to seed venue counter: %w", err)
	}
	return &venueStore{dir: d, counter: c, logger: logger}, nil
}

func (s *venueStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *venueStore) Save(ctx context.Context, rec *model.VenueRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindVenue, storage.OpInsert, err)
	}
	rec.ID = s.counter.allocate(rec.ID)
	id := strconv.FormatInt(rec.ID, 10)
	if err := s.dir.write(id, rec); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindVenue, storage.OpInsert, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindVenue,
		ID:      id,
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *venueStore) Update(ctx context.Context, v *model.Venue) error {
	id := strconv.FormatInt(v.ID, 10)
	var existing model.VenueRecord
	if err := s.dir.read(id, &existing); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindVenue, storage.OpUpdate, err)
	}
	if err := s.dir.write(id, model.RecordFromVenue(v)); err != nil {
		return storage.NewStoreError(storage.File, storage.KindVenue, storage.OpUpdate, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindVenue,
		ID:      id,
		Payload: v,
	})
	return nil
}

func (s *venueStore) Delete(ctx context.Context, v *model.Venue) error {
	id := strconv.FormatInt(v.ID, 10)
	if err := s.dir.remove(id); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindVenue, storage.OpDelete, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindVenue,
		ID:   id,
	})
	return nil
}

func (s *venueStore) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	var rec model.VenueRecord
	if err := s.dir.read(strconv.FormatInt(id, 10), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("venue %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read venue %d: %w", id, err)
	}
	return rec.ToVenue(), nil
}

func (s *venueStore) FindAll(ctx context.Context) ([]*model.Venue, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, err
	}
	var venues []*model.Venue
	for _, id := range ids {
		var rec model.VenueRecord
		if err := s.dir.read(id, &rec); err != nil {
			s.logger.Printf("WARNING: skipping invalid venue file %s: %v", id, err)
			continue
		}
		venues = append(venues, rec.ToVenue())
	}
	return venues, nil
}

// bookingStore persists bookings as {id}.json files.
type bookingStore struct {
	dir      dir
	counter  *counter
	logger   *log.Logger
	notifier storage.Notifier
}

func openBookingStore(path string, logger *log.Logger) (*bookingStore, error) {
	d := dir{path: path}
	c, err := initCounter(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to seed booking counter: %w", err)
	}
	return &bookingStore{dir: d, counter: c, logger: logger}, nil
}

func (s *bookingStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *bookingStore) Save(ctx context.Context, rec *model.BookingRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindBooking, storage.OpInsert, err)
	}
	rec.ID = s.counter.allocate(rec.ID)
	id := strconv.FormatInt(rec.ID, 10)
	if err := s.dir.write(id, rec); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindBooking, storage.OpInsert, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindBooking,
		ID:      id,
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *bookingStore) Update(ctx context.Context, b *model.Booking) error {
	id := strconv.FormatInt(b.ID, 10)
	var existing model.BookingRecord
	if err := s.dir.read(id, &existing); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindBooking, storage.OpUpdate, err)
	}
	if err := s.dir.write(id, model.RecordFromBooking(b)); err != nil {
		return storage.NewStoreError(storage.File, storage.KindBooking, storage.OpUpdate, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindBooking,
		ID:      id,
		Payload: b,
	})
	return nil
}

func (s *bookingStore) Delete(ctx context.Context, b *model.Booking) error {
	id := strconv.FormatInt(b.ID, 10)
	if err := s.dir.remove(id); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindBooking, storage.OpDelete, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindBooking,
		ID:   id,
	})
	return nil
}

func (s *bookingStore) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	var rec model.BookingRecord
	if err := s.dir.read(strconv.FormatInt(id, 10), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("booking %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read booking %d: %w", id, err)
	}
	return rec.ToBooking(), nil
}

func (s *bookingStore) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, err
	}
	var bookings []*model.Booking
	for _, id := range ids {
		var rec model.BookingRecord
		if err := s.dir.read(id, &rec); err != nil {
			s.logger.Printf("WARNING: skipping invalid booking file %s: %v", id, err)
			continue
		}
		bookings = append(bookings, rec.ToBooking())
	}
	return bookings, nil
}

// notificationStore persists notifications as {id}.json files.
type notificationStore struct {
	dir      dir
	counter  *counter
	logger   *log.Logger
	notifier storage.Notifier
}

func openNotificationStore(path string, logger *log.Logger) (*notificationStore, error) {
	d := dir{path: path}
	c, err := initCounter(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to seed notification counter: %w", err)
	}
	return &notificationStore{dir: d, counter: c, logger: logger}, nil
}

func (s *notificationStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *notificationStore) Save(ctx context.Context, rec *model.NotificationRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindNotification, storage.OpInsert, err)
	}
	rec.ID = s.counter.allocate(rec.ID)
	id := strconv.FormatInt(rec.ID, 10)
	if err := s.dir.write(id, rec); err != nil {
		return 0, storage.NewStoreError(storage.File, storage.KindNotification, storage.OpInsert, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindNotification,
		ID:      id,
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *notificationStore) Update(ctx context.Context, n *model.Notification) error {
	id := strconv.FormatInt(n.ID, 10)
	var existing model.NotificationRecord
	if err := s.dir.read(id, &existing); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindNotification, storage.OpUpdate, err)
	}
	if err := s.dir.write(id, model.RecordFromNotification(n)); err != nil {
		return storage.NewStoreError(storage.File, storage.KindNotification, storage.OpUpdate, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindNotification,
		ID:      id,
		Payload: n,
	})
	return nil
}

func (s *notificationStore) Delete(ctx context.Context, n *model.Notification) error {
	id := strconv.FormatInt(n.ID, 10)
	if err := s.dir.remove(id); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, storage.KindNotification, storage.OpDelete, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindNotification,
		ID:   id,
	})
	return nil
}

func (s *notificationStore) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	var rec model.NotificationRecord
	if err := s.dir.read(strconv.FormatInt(id, 10), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("notification %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read notification %d: %w", id, err)
	}
	return rec.ToNotification(), nil
}

func (s *notificationStore) FindAll(ctx context.Context) ([]*model.Notification, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, err
	}
	var notifications []*model.Notification
	for _, id := range ids {
		var rec model.NotificationRecord
		if err := s.dir.read(id, &rec); err != nil {
			s.logger.Printf("WARNING: skipping invalid notification file %s: %v", id, err)
			continue
		}
		notifications = append(notifications, rec.ToNotification())
	}
	return notifications, nil
}
