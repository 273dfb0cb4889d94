package tokens

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

type failingStorage struct {
	*MemoryStorage
	failRemove bool
	failGet    bool
}

func (f *failingStorage) GetItem(key string) (string, bool, error) {
	if f.failGet {
		return "", false, shared.ErrStorage
	}
	return f.MemoryStorage.GetItem(key)
}

func (f *failingStorage) RemoveItem(key string) error {
	if f.failRemove {
		return shared.ErrStorage
	}
	return f.MemoryStorage.RemoveItem(key)
}

func TestStorageStore(t *testing.T) {
	backings := map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage { return NewMemoryStorage() },
		"file": func(t *testing.T) Storage {
			return NewFileStorage(filepath.Join(t.TempDir(), "tokens.json"))
		},
		"sqlite": func(t *testing.T) Storage {
			store, closer, err := Open(shared.StorageConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "roamly.db")})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			t.Cleanup(func() { closer.Close() })
			return store.storage
		},
	}

	for name, backing := range backings {
		t.Run(name, func(t *testing.T) {
			t.Run("Empty", func(t *testing.T) {
				store := NewStorageStore(backing(t))
				if _, ok := store.AccessToken(); ok {
					t.Error("expected no access token")
				}
				if _, ok := store.RefreshToken(); ok {
					t.Error("expected no refresh token")
				}
			})

			t.Run("Save Then Read", func(t *testing.T) {
				store := NewStorageStore(backing(t))
				if err := store.Save(models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
				if got, ok := store.AccessToken(); !ok || got != "a1" {
					t.Errorf("AccessToken() = %q, %v", got, ok)
				}
				if got, ok := store.RefreshToken(); !ok || got != "r1" {
					t.Errorf("RefreshToken() = %q, %v", got, ok)
				}
			})

			t.Run("Save Replaces", func(t *testing.T) {
				store := NewStorageStore(backing(t))
				store.Save(models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"})
				store.Save(models.CredentialPair{AccessToken: "a2", RefreshToken: "r2"})
				if got, _ := store.AccessToken(); got != "a2" {
					t.Errorf("AccessToken() = %q, want a2", got)
				}
				if got, _ := store.RefreshToken(); got != "r2" {
					t.Errorf("RefreshToken() = %q, want r2", got)
				}
			})

			t.Run("Clear Removes Both", func(t *testing.T) {
				store := NewStorageStore(backing(t))
				store.Save(models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"})
				if err := store.Clear(); err != nil {
					t.Fatalf("Clear() error = %v", err)
				}
				if _, ok := store.AccessToken(); ok {
					t.Error("access token should be cleared")
				}
				if _, ok := store.RefreshToken(); ok {
					t.Error("refresh token should be cleared")
				}
				if err := store.Clear(); err != nil {
					t.Errorf("clearing an empty store should succeed, got %v", err)
				}
			})
		})
	}

	t.Run("Save Rejects Empty Access Token", func(t *testing.T) {
		store := NewStorageStore(NewMemoryStorage())
		if err := store.Save(models.CredentialPair{RefreshToken: "r1"}); err == nil {
			t.Error("expected error for missing access token")
		}
	})

	t.Run("Save Without Refresh Drops Old Refresh", func(t *testing.T) {
		store := NewStorageStore(NewMemoryStorage())
		store.Save(models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"})
		store.Save(models.CredentialPair{AccessToken: "a2"})
		if _, ok := store.RefreshToken(); ok {
			t.Error("stale refresh token should be removed")
		}
	})

	t.Run("Read Failure Counts As Absent", func(t *testing.T) {
		backing := &failingStorage{MemoryStorage: NewMemoryStorage(), failGet: true}
		store := NewStorageStore(backing)
		if _, ok := store.AccessToken(); ok {
			t.Error("expected absent token on read failure")
		}
	})

	t.Run("Clear Reports Failure", func(t *testing.T) {
		backing := &failingStorage{MemoryStorage: NewMemoryStorage(), failRemove: true}
		store := NewStorageStore(backing)
		if err := store.Clear(); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestFileStorage(t *testing.T) {
	t.Run("File Mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tokens.json")
		fs := NewFileStorage(path)
		if err := fs.SetItem(AccessTokenKey, "a1"); err != nil {
			t.Fatalf("SetItem() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}
	})

	t.Run("Corrupt File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		os.WriteFile(path, []byte("{not json"), 0600)

		fs := NewFileStorage(path)
		if _, _, err := fs.GetItem(AccessTokenKey); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Shared Across Instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		NewFileStorage(path).SetItem(RefreshTokenKey, "r1")

		got, ok, err := NewFileStorage(path).GetItem(RefreshTokenKey)
		if err != nil || !ok || got != "r1" {
			t.Errorf("GetItem() = %q, %v, %v", got, ok, err)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		store, closer, err := Open(shared.StorageConfig{Driver: "memory"})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer closer.Close()
		if store == nil {
			t.Fatal("expected store")
		}
	})

	t.Run("File Requires Path", func(t *testing.T) {
		if _, _, err := Open(shared.StorageConfig{Driver: "file"}); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		if _, _, err := Open(shared.StorageConfig{Driver: "redis"}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SQLite Persists Across Opens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roamly.db")
		cfg := shared.StorageConfig{Driver: "sqlite", Path: path}

		first, closer, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := first.Save(models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		closer.Close()

		second, closer, err := Open(cfg)
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		defer closer.Close()
		if got, ok := second.AccessToken(); !ok || got != "a1" {
			t.Errorf("AccessToken() after reopen = %q, %v", got, ok)
		}
	})
}
