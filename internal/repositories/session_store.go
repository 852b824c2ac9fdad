package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore is a small key-value store for the persisted session.
type SessionStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// MemorySessionStore keeps values for the lifetime of the process.
type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: make(map[string]string)}
}

func (s *MemorySessionStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemorySessionStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySessionStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// SessionEntry is one persisted key.
type SessionEntry struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// GORMSessionStore persists values in the session_entries table so a session survives restarts.
type GORMSessionStore struct {
	db *gorm.DB
}

func NewGORMSessionStore(db *gorm.DB) *GORMSessionStore {
	return &GORMSessionStore{db: db}
}

func (s *GORMSessionStore) Get(key string) (string, bool, error) {
	var entry SessionEntry
	if err := s.db.First(&entry, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *GORMSessionStore) Set(key, value string) error {
	entry := SessionEntry{Name: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (s *GORMSessionStore) Remove(key string) error {
	if err := s.db.Delete(&SessionEntry{}, "name = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove session key %s: %w", key, err)
	}
	return nil
}
