package filedb

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/EliaCinti/HoopHub-sub002/internal/model"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// roleStore persists one role family as {username}.json files. The files
// carry the full flat record, credential included; this backend is the one
// rebuilt from the master, so it must retain everything needed to restore a
// usable account.
type roleStore struct {
	kind     storage.Kind
	dir      dir
	logger   *log.Logger
	notifier storage.Notifier
}

func newRoleStore(path string, kind storage.Kind, logger *log.Logger) *roleStore {
	return &roleStore{kind: kind, dir: dir{path: path}, logger: logger}
}

func (s *roleStore) save(ctx context.Context, rec *model.UserRecord) error {
	if err := rec.Validate(); err != nil {
		return storage.NewStoreError(storage.File, s.kind, storage.OpInsert, err)
	}
	if err := s.dir.write(rec.Username, rec); err != nil {
		return storage.NewStoreError(storage.File, s.kind, storage.OpInsert, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:      storage.OpInsert,
		Kind:    s.kind,
		ID:      rec.Username,
		Payload: rec,
	})
	return nil
}

// update rewrites the stored record from the carrier. An empty password on
// the carrier preserves the stored credential.
func (s *roleStore) update(ctx context.Context, rec *model.UserRecord, payload any) error {
	var existing model.UserRecord
	if err := s.dir.read(rec.Username, &existing); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", s.kind, rec.Username, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, s.kind, storage.OpUpdate, err)
	}

	existing.Name = rec.Name
	existing.Gender = rec.Gender
	if rec.Password != "" {
		existing.Password = rec.Password
	}

	if err := s.dir.write(existing.Username, &existing); err != nil {
		return storage.NewStoreError(storage.File, s.kind, storage.OpUpdate, err)
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
	if err := s.dir.remove(username); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
		}
		return storage.NewStoreError(storage.File, s.kind, storage.OpDelete, err)
	}

	s.notifier.Notify(ctx, storage.ChangeEvent{
		Op:   storage.OpDelete,
		Kind: s.kind,
		ID:   username,
	})
	return nil
}

func (s *roleStore) find(username string) (*model.UserRecord, error) {
	var rec model.UserRecord
	if err := s.dir.read(username, &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %s: %w", s.kind, username, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s %s: %w", s.kind, username, err)
	}
	return &rec, nil
}

func (s *roleStore) all() ([]*model.UserRecord, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, err
	}

	var recs []*model.UserRecord
	for _, id := range ids {
		rec, err := s.find(id)
		if err != nil {
			// Skip unreadable files; one corrupt record must not hide the rest.
			s.logger.Printf("WARNING: skipping invalid %s file %s: %v", s.kind, id, err)
			continue
		}
		recs = append(recs, rec)
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
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.ToPlayer(), nil
}

func (s *playerStore) FindAll(ctx context.Context) ([]*model.Player, error) {
	recs, err := s.role.all()
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
	rec, err := s.role.find(username)
	if err != nil {
		return nil, err
	}
	return rec.ToOrganizer(), nil
}

func (s *organizerStore) FindAll(ctx context.Context) ([]*model.Organizer, error) {
	recs, err := s.role.all()
	if err != nil {
		return nil, err
	}
	organizers := make([]*model.Organizer, 0, len(recs))
	for _, rec := range recs {
		organizers = append(organizers, rec.ToOrganizer())
	}
	return organizers, nil
}

// userStore resolves raw user records by probing both role directories.
type userStore struct {
	store *Store
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	if rec, err := s.store.players.find(username); err == nil {
		return rec, nil
	}
	return s.store.organizers.find(username)
}
