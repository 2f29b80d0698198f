package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// NewStores returns the accessor bundle for this backend.
func NewStores(db *DB) *storage.Stores {
	return &storage.Stores{
		Backend:       storage.SQLite,
		Users:         &userStore{db: db},
		Players:       &playerStore{role: &roleStore{db: db, kind: storage.KindPlayer, role: model.RolePlayer}},
		Organizers:    &organizerStore{role: &roleStore{db: db, kind: storage.KindOrganizer, role: model.RoleOrganizer}},
		Venues:        &venueStore{db: db},
		Bookings:      &bookingStore{db: db},
		Notifications: &notificationStore{db: db},
		Ping:          db.Ping,
	}
}

// userStore reads raw user rows, password included.
type userStore struct {
	db *DB
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT username, password, name, gender, role FROM users WHERE username = ?`, username)

	var rec model.UserRecord
	err := row.Scan(&rec.Username, &rec.Password, &rec.Name, &rec.Gender, &rec.Role)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", username, err)
	}
	return &rec, nil
}

// roleStore implements the shared mechanics of both role families over the
// users table. Reads deliberately omit the password column; only the raw
// userStore exposes it.
type roleStore struct {
	db       *DB
	kind     storage.Kind
	role     string
	notifier storage.Notifier
}

func (s *roleStore) save(ctx context.Context, rec *model.UserRecord) error {
	if err := rec.Validate(); err != nil {
		return storage.NewStoreError(storage.SQLite, s.kind, storage.OpInsert, err)
	}

	query := `
	INSERT INTO users (username, password, name, gender, role)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(username) DO UPDATE SET
		password = excluded.password,
		name = excluded.name,
		gender = excluded.gender,
		role = excluded.role
	`
	_, err := s.db.conn.ExecContext(ctx, query,
		rec.Username, rec.Password, rec.Name, rec.Gender, s.role)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, s.kind, storage.OpInsert, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    s.kind,
		ID:      rec.Username,
		Payload: rec,
	})
	return nil
}

func (s *roleStore) update(ctx context.Context, rec *model.UserRecord, payload any) error {
	var res sql.Result
	var err error
	if rec.Password != "" {
		res, err = s.db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, gender = ?, password = ? WHERE username = ? AND role = ?`,
			rec.Name, rec.Gender, rec.Password, rec.Username, s.role)
	} else {
		// Absent credential means "leave unchanged", never "clear".
		res, err = s.db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, gender = ? WHERE username = ? AND role = ?`,
			rec.Name, rec.Gender, rec.Username, s.role)
	}
	if err != nil {
		return storage.NewStoreError(storage.SQLite, s.kind, storage.OpUpdate, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", s.kind, rec.Username, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    s.kind,
		ID:      rec.Username,
		Payload: payload,
	})
	return nil
}

func (s *roleStore) delete(ctx context.Context, username string) error {
	res, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE username = ? AND role = ?`, username, s.role)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, s.kind, storage.OpDelete, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: s.kind,
		ID:   username,
	})
	return nil
}

func (s *roleStore) find(ctx context.Context, username string) (*model.UserRecord, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT username, name, gender, role FROM users WHERE username = ? AND role = ?`,
		username, s.role)

	var rec model.UserRecord
	err := row.Scan(&rec.Username, &rec.Name, &rec.Gender, &rec.Role)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s %s: %w", s.kind, username, err)
	}
	return &rec, nil
}

func (s *roleStore) all(ctx context.Context) ([]*model.UserRecord, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT username, name, gender, role FROM users WHERE role = ? ORDER BY username`, s.role)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", s.kind, err)
	}
	defer rows.Close()

	var recs []*model.UserRecord
	for rows.Next() {
		var rec model.UserRecord
		if err := rows.Scan(&rec.Username, &rec.Name, &rec.Gender, &rec.Role); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", s.kind, err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", s.kind, err)
	}
	return recs, nil
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
	rec, err := s.role.find(ctx, username)
	if err != nil {
		return nil, err
	}
	return rec.ToPlayer(), nil
}

func (s *playerStore) FindAll(ctx context.Context) ([]*model.Player, error) {
	recs, err := s.role.all(ctx)
	if err != nil {
		return nil, err
	}
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
	rec, err := s.role.find(ctx, username)
	if err != nil {
		return nil, err
	}
	return rec.ToOrganizer(), nil
}

func (s *organizerStore) FindAll(ctx context.Context) ([]*model.Organizer, error) {
	recs, err := s.role.all(ctx)
	if err != nil {
		return nil, err
	}
	organizers := make([]*model.Organizer, 0, len(recs))
	for _, rec := range recs {
		organizers = append(organizers, rec.ToOrganizer())
	}
	return organizers, nil
}

// venueStore persists the venue family.
type venueStore struct {
	db       *DB
	notifier storage.Notifier
}

func (s *venueStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *venueStore) Save(ctx context.Context, rec *model.VenueRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpInsert, err)
	}

	if rec.ID == 0 {
		res, err := s.db.conn.ExecContext(ctx,
			`INSERT INTO venues (name, address, capacity, organizer) VALUES (?, ?, ?, ?)`,
			rec.Name, rec.Address, rec.Capacity, rec.Organizer)
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpInsert, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpInsert, err)
		}
		rec.ID = id
	} else {
		query := `
		INSERT INTO venues (id, name, address, capacity, organizer)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			capacity = excluded.capacity,
			organizer = excluded.organizer
		`
		if _, err := s.db.conn.ExecContext(ctx, query,
			rec.ID, rec.Name, rec.Address, rec.Capacity, rec.Organizer); err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpInsert, err)
		}
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindVenue,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *venueStore) Update(ctx context.Context, v *model.Venue) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE venues SET name = ?, address = ?, capacity = ?, organizer = ? WHERE id = ?`,
		v.Name, v.Address, v.Capacity, v.Organizer, v.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpUpdate, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindVenue,
		ID:      strconv.FormatInt(v.ID, 10),
		Payload: v,
	})
	return nil
}

func (s *venueStore) Delete(ctx context.Context, v *model.Venue) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, v.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindVenue, storage.OpDelete, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("venue %d: %w", v.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindVenue,
		ID:   strconv.FormatInt(v.ID, 10),
	})
	return nil
}

func (s *venueStore) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, address, capacity, organizer FROM venues WHERE id = ?`, id)

	var v model.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity, &v.Organizer)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("venue %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query venue %d: %w", id, err)
	}
	return &v, nil
}

func (s *venueStore) FindAll(ctx context.Context) ([]*model.Venue, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, address, capacity, organizer FROM venues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []*model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity, &v.Organizer); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}
	return venues, nil
}

// bookingStore persists the booking family. Timestamps are stored as
// RFC 3339 strings.
type bookingStore struct {
	db       *DB
	notifier storage.Notifier
}

func (s *bookingStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *bookingStore) Save(ctx context.Context, rec *model.BookingRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpInsert, err)
	}

	startsAt := rec.StartsAt.Format(time.RFC3339)
	if rec.ID == 0 {
		res, err := s.db.conn.ExecContext(ctx,
			`INSERT INTO bookings (venue_id, player, starts_at, status) VALUES (?, ?, ?, ?)`,
			rec.VenueID, rec.Player, startsAt, rec.Status)
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpInsert, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpInsert, err)
		}
		rec.ID = id
	} else {
		query := `
		INSERT INTO bookings (id, venue_id, player, starts_at, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			venue_id = excluded.venue_id,
			player = excluded.player,
			starts_at = excluded.starts_at,
			status = excluded.status
		`
		if _, err := s.db.conn.ExecContext(ctx, query,
			rec.ID, rec.VenueID, rec.Player, startsAt, rec.Status); err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpInsert, err)
		}
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindBooking,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *bookingStore) Update(ctx context.Context, b *model.Booking) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE bookings SET venue_id = ?, player = ?, starts_at = ?, status = ? WHERE id = ?`,
		b.VenueID, b.Player, b.StartsAt.Format(time.RFC3339), b.Status, b.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpUpdate, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindBooking,
		ID:      strconv.FormatInt(b.ID, 10),
		Payload: b,
	})
	return nil
}

func (s *bookingStore) Delete(ctx context.Context, b *model.Booking) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, b.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindBooking, storage.OpDelete, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d: %w", b.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindBooking,
		ID:   strconv.FormatInt(b.ID, 10),
	})
	return nil
}

func (s *bookingStore) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, venue_id, player, starts_at, status FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query booking %d: %w", id, err)
	}
	return b, nil
}

func (s *bookingStore) FindAll(ctx context.Context) ([]*model.Booking, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, venue_id, player, starts_at, status FROM bookings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func scanBooking(scan func(dest ...any) error) (*model.Booking, error) {
	var b model.Booking
	var startsAt string
	if err := scan(&b.ID, &b.VenueID, &b.Player, &startsAt, &b.Status); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return nil, fmt.Errorf("malformed starts_at %q: %w", startsAt, err)
	}
	b.StartsAt = t
	return &b, nil
}

// notificationStore persists the notification family.
type notificationStore struct {
	db       *DB
	notifier storage.Notifier
}

func (s *notificationStore) Notifier() *storage.Notifier { return &s.notifier }

func (s *notificationStore) Save(ctx context.Context, rec *model.NotificationRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpInsert, err)
	}

	createdAt := rec.CreatedAt.Format(time.RFC3339)
	if rec.ID == 0 {
		res, err := s.db.conn.ExecContext(ctx,
			`INSERT INTO notifications (recipient, message, created_at, read) VALUES (?, ?, ?, ?)`,
			rec.Recipient, rec.Message, createdAt, boolToInt(rec.Read))
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpInsert, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpInsert, err)
		}
		rec.ID = id
	} else {
		query := `
		INSERT INTO notifications (id, recipient, message, created_at, read)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recipient = excluded.recipient,
			message = excluded.message,
			created_at = excluded.created_at,
			read = excluded.read
		`
		if _, err := s.db.conn.ExecContext(ctx, query,
			rec.ID, rec.Recipient, rec.Message, createdAt, boolToInt(rec.Read)); err != nil {
			return 0, storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpInsert, err)
		}
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    storage.KindNotification,
		ID:      strconv.FormatInt(rec.ID, 10),
		Payload: rec,
	})
	return rec.ID, nil
}

func (s *notificationStore) Update(ctx context.Context, n *model.Notification) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE notifications SET recipient = ?, message = ?, created_at = ?, read = ? WHERE id = ?`,
		n.Recipient, n.Message, n.CreatedAt.Format(time.RFC3339), boolToInt(n.Read), n.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpUpdate, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpUpdate,
		Kind:    storage.KindNotification,
		ID:      strconv.FormatInt(n.ID, 10),
		Payload: n,
	})
	return nil
}

func (s *notificationStore) Delete(ctx context.Context, n *model.Notification) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, n.ID)
	if err != nil {
		return storage.NewStoreError(storage.SQLite, storage.KindNotification, storage.OpDelete, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("notification %d: %w", n.ID, storage.ErrNotFound)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: storage.KindNotification,
		ID:   strconv.FormatInt(n.ID, 10),
	})
	return nil
}

func (s *notificationStore) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, recipient, message, created_at, read FROM notifications WHERE id = ?`, id)

	n, err := scanNotification(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query notification %d: %w", id, err)
	}
	return n, nil
}

func (s *notificationStore) FindAll(ctx context.Context) ([]*model.Notification, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, recipient, message, created_at, read FROM notifications ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

func scanNotification(scan func(dest ...any) error) (*model.Notification, error) {
	var n model.Notification
	var createdAt string
	var read int
	if err := scan(&n.ID, &n.Recipient, &n.Message, &createdAt, &read); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("malformed created_at %q: %w", createdAt, err)
	}
	n.CreatedAt = t
	n.Read = read != 0
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
