package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Record is anything the store can persist under a string key.
type Record interface {
	Key() string
	SetKey(id string)
}

// Store is the collection-agnostic layer every higher component reads
// and writes through. It deliberately supports only single-field
// equality queries; callers filter any further predicates themselves.
type Store struct {
	db  *gorm.DB
	bus *Bus
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, bus: NewBus()}
}

// Create assigns a fresh key when the record has none, persists it and
// publishes the change. The generated key is returned.
func (s *Store) Create(ctx context.Context, collection string, rec Record) (string, error) {
	if rec.Key() == "" {
		rec.SetKey(uuid.NewString())
	}
	if err := s.db.WithContext(ctx).Table(collection).Create(rec).Error; err != nil {
		return "", err
	}
	s.bus.publish(collection)
	return rec.Key(), nil
}

func (s *Store) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Update merges the given fields into the record and stamps
// updated_at. Updating a missing record is not an error.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	patch := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["updated_at"] = time.Now()
	if err := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Updates(patch).Error; err != nil {
		return err
	}
	s.bus.publish(collection)
	return nil
}

// Delete is idempotent: removing an absent record still succeeds.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM "+collection+" WHERE id = ?", id).Error; err != nil {
		return err
	}
	s.bus.publish(collection)
	return nil
}

// QueryByField runs the store's only query shape: exact equality on a
// single column, ordered by insertion.
func (s *Store) QueryByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error {
	return s.db.WithContext(ctx).Table(collection).
		Where(field+" = ?", value).
		Order("created_at, id").
		Find(out).Error
}

// Subscribe registers a live watcher on a collection. fn fires once
// immediately and again after every mutation of the collection; each
// firing is the watcher's cue to re-read its full matching set. The
// returned func cancels the subscription and must be called on
// teardown, or the watcher keeps firing against a torn-down consumer.
func (s *Store) Subscribe(collection string, fn func()) func() {
	unsub := s.bus.subscribe(collection, fn)
	deliver(fn)
	return unsub
}
