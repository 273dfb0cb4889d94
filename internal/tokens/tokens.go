// Package tokens persists the access/refresh credential pair between runs.
//
// A [Store] sits on top of a [Storage], a small string key/value interface
// shaped like a browser's localStorage. Tokens are opaque: nothing here
// decodes or expires them, and writes are not synchronised across processes.
package tokens

import (
	"errors"
	"fmt"

	"github.com/desertthunder/roamly/internal/models"
)

// Fixed storage keys.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// Store persists the current credential pair.
type Store interface {
	Save(pair models.CredentialPair) error
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	Clear() error
}

// Storage is a string key/value store.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// StorageStore implements [Store] over any [Storage].
type StorageStore struct {
	storage Storage
}

// NewStorageStore wraps storage.
func NewStorageStore(storage Storage) *StorageStore {
	return &StorageStore{storage: storage}
}

// Save writes both tokens. An empty refresh token removes the stored one.
func (s *StorageStore) Save(pair models.CredentialPair) error {
	if !pair.Valid() {
		return fmt.Errorf("cannot save credentials without an access token")
	}
	if err := s.storage.SetItem(AccessTokenKey, pair.AccessToken); err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		return s.storage.RemoveItem(RefreshTokenKey)
	}
	return s.storage.SetItem(RefreshTokenKey, pair.RefreshToken)
}

// AccessToken returns the stored access token. Read failures count as absent.
func (s *StorageStore) AccessToken() (string, bool) {
	return s.get(AccessTokenKey)
}

// RefreshToken returns the stored refresh token. Read failures count as absent.
func (s *StorageStore) RefreshToken() (string, bool) {
	return s.get(RefreshTokenKey)
}

// Clear removes both tokens, attempting each even if the first fails.
func (s *StorageStore) Clear() error {
	return errors.Join(
		s.storage.RemoveItem(AccessTokenKey),
		s.storage.RemoveItem(RefreshTokenKey),
	)
}

func (s *StorageStore) get(key string) (string, bool) {
	v, ok, err := s.storage.GetItem(key)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}
