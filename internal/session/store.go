package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/nacl/secretbox"
)

var bucketSessions = []byte("sessions")

// Keys used inside a session bucket
const (
	KeyUser    = "auth:user"
	KeyCookies = "auth:cookies"
	KeyFlash   = "flash"

	keyTouched = "_touched"
)

// ErrCorrupt is returned when a stored value cannot be opened with the current secret
var ErrCorrupt = errors.New("session value cannot be decrypted")

// Storage is the persisted key/value area of one browser session
type Storage interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Delete(key string) error
	// Modify decodes key into v, lets fn change it and stores the result,
	// all in one transaction. v is left untouched when the key is absent.
	Modify(key string, v any, fn func() error) error
}

// Store keeps every browser session in one bbolt file, one nested bucket
// per session id. Values are JSON sealed with secretbox.
type Store struct {
	db  *bolt.DB
	key [32]byte
}

// OpenStore opens or creates the session database at path
func OpenStore(path, secret string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{db: db, key: sha256.Sum256([]byte("leadboard-session-store:" + secret))}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Session returns the storage area of session id
func (s *Store) Session(id string) *Bucket {
	return &Bucket{store: s, id: []byte(id)}
}

// Remove deletes a session and everything stored in it
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketSessions).DeleteBucket([]byte(id))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// Sweep removes sessions not touched since before and returns how many were removed
func (s *Store) Sweep(before time.Time) (int, error) {
	var stale [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		return root.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			b := root.Bucket(k)
			var touched time.Time
			if raw := b.Get([]byte(keyTouched)); raw != nil {
				if err := touched.UnmarshalText(raw); err != nil {
					touched = time.Time{}
				}
			}
			if touched.Before(before) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSessions)
		for _, k := range stale {
			if err := root.DeleteBucket(k); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < 24 {
		return nil, ErrCorrupt
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &s.key)
	if !ok {
		return nil, ErrCorrupt
	}
	return plain, nil
}

// Bucket is the Storage of a single session
type Bucket struct {
	store *Store
	id    []byte
}

// Get decodes the value stored under key into v. It reports false when the key is absent.
func (b *Bucket) Get(key string, v any) (bool, error) {
	var sealed []byte
	err := b.store.db.View(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bucketSessions).Bucket(b.id)
		if sb == nil {
			return nil
		}
		if raw := sb.Get([]byte(key)); raw != nil {
			sealed = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if sealed == nil {
		return false, nil
	}

	plain, err := b.store.open(sealed)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Put stores v under key
func (b *Bucket) Put(key string, v any) error {
	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	sealed, err := b.store.seal(plain)
	if err != nil {
		return err
	}

	return b.store.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.Bucket(bucketSessions).CreateBucketIfNotExists(b.id)
		if err != nil {
			return err
		}
		return sb.Put([]byte(key), sealed)
	})
}

// Modify is a read-modify-write of key inside one bbolt transaction, so
// concurrent writers of the same session cannot drop each other's changes.
func (b *Bucket) Modify(key string, v any, fn func() error) error {
	return b.store.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.Bucket(bucketSessions).CreateBucketIfNotExists(b.id)
		if err != nil {
			return err
		}

		if raw := sb.Get([]byte(key)); raw != nil {
			plain, err := b.store.open(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if err := json.Unmarshal(plain, v); err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
		}

		if err := fn(); err != nil {
			return err
		}

		plain, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		sealed, err := b.store.seal(plain)
		if err != nil {
			return err
		}
		return sb.Put([]byte(key), sealed)
	})
}

// Delete removes key
func (b *Bucket) Delete(key string) error {
	return b.store.db.Update(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bucketSessions).Bucket(b.id)
		if sb == nil {
			return nil
		}
		return sb.Delete([]byte(key))
	})
}

// Touch records the last time the session was used
func (b *Bucket) Touch(now time.Time) error {
	stamp, err := now.UTC().MarshalText()
	if err != nil {
		return err
	}
	return b.store.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.Bucket(bucketSessions).CreateBucketIfNotExists(b.id)
		if err != nil {
			return err
		}
		return sb.Put([]byte(keyTouched), stamp)
	})
}
