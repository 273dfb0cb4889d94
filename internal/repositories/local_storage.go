package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/roamly/internal/shared"
)

// LocalStorage is a string key/value store backed by the local_storage table.
//
// It satisfies tokens.Storage, standing in for a browser's localStorage.
type LocalStorage struct {
	db *sql.DB
}

// NewLocalStorage creates a new [LocalStorage] with the given database connection
func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// GetItem returns the value stored under key. The boolean is false when the key is absent.
func (s *LocalStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %q: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// SetItem inserts or replaces the value stored under key
func (s *LocalStorage) SetItem(key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (s *LocalStorage) RemoveItem(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: failed to remove %q: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Clear removes every key.
func (s *LocalStorage) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM local_storage`); err != nil {
		return fmt.Errorf("%w: failed to clear storage: %v", shared.ErrStorage, err)
	}
	return nil
}

// Keys lists the stored keys in ascending order
func (s *LocalStorage) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM local_storage ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

// UpdatedAt reports when key was last written.
func (s *LocalStorage) UpdatedAt(key string) (time.Time, bool, error) {
	var updatedAt time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM local_storage WHERE key = ?`, key).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: failed to read %q: %v", shared.ErrStorage, key, err)
	}
	return updatedAt, true, nil
}
