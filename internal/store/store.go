// Package store caches extracted outlines in BadgerDB, keyed by the
// content hash of the source and the outline config that produced them.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const keyPrefix = "outline:"

var ErrDatabase = errors.New("outline store error")

// Record is a cached outline.
type Record struct {
	Result    doctree.Result `json:"result"`
	Filename  string         `json:"filename"`
	CreatedAt time.Time      `json:"created_at"`
}

// OutlineStore is a BadgerDB-backed outline cache. It is safe for
// concurrent use.
type OutlineStore struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the store under dir.
func Open(dir string, log *slog.Logger) (*OutlineStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(log *slog.Logger) (*OutlineStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log *slog.Logger) (*OutlineStore, error) {
	if log == nil {
		log = slog.Default()
	}
	opts = opts.
		WithLogger(newBadgerLogger(log.With("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %q: %w", ErrDatabase, opts.Dir, err)
	}
	return &OutlineStore{db: db, log: log}, nil
}

// ContentHash returns the hex SHA-256 of a source document.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func key(hash, fingerprint string) []byte {
	return []byte(keyPrefix + hash + ":" + fingerprint)
}

// Get looks up the outline for a content hash and config fingerprint.
// A missing entry is not an error.
func (s *OutlineStore) Get(hash, fingerprint string) (Record, bool, error) {
	var rec Record
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hash, fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				// Treat an undecodable value as a miss; the next Put overwrites it.
				s.log.Warn("discarding corrupt outline record", "hash", hash, "error", err)
				return nil
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: get %s: %w", ErrDatabase, hash, err)
	}
	return rec, found, nil
}

// Put stores rec for a content hash and config fingerprint, replacing any
// existing entry.
func (s *OutlineStore) Put(hash, fingerprint string, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	k := key(hash, fingerprint)
	err = s.dbUpdate(func(txn *badger.Txn) error {
		return txn.Set(k, val)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrDatabase, hash, err)
	}
	return nil
}

// Count returns the number of cached outlines.
func (s *OutlineStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrDatabase, err)
	}
	return count, nil
}

// Close flushes and closes the database.
func (s *OutlineStore) Close() error {
	return s.db.Close()
}

const maxConflictRetries = 10

// dbUpdate retries db.Update on transaction conflicts, which clear quickly.
func (s *OutlineStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("badger transaction conflict, retrying", "attempt", i+1, "max", maxConflictRetries)
	}
	return fmt.Errorf("transaction conflict not resolved after %d retries", maxConflictRetries)
}

// OpenDir opens a persistent store under dir, or an in-memory one when dir
// is empty.
func OpenDir(dir string, log *slog.Logger) (*OutlineStore, error) {
	if dir == "" {
		return OpenInMemory(log)
	}
	return Open(dir, log)
}
