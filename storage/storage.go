// Package storage persists the router's artifacts in a prefixed
// key-value store: accepted actions (with a reservation-based queue for
// background execution) and the pool configuration. The following
// prefixes are used:
//   - 'a/'  for actions
//   - 'ar/' for action reservations (queued for execution)
//   - 'c/'  for the pool configuration
package storage

import (
	"fmt"
	"sync"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	actionPrefix       = []byte("a/")
	actionReservPrefix = []byte("ar/")
	configPrefix       = []byte("c/")
)

const (
	// maxKeySize is the size of artifact keys, generated by truncating
	// the sha256 hash of the artifact itself.
	maxKeySize = 12
)

var (
	// ErrNotFound is returned when the artifact does not exist.
	ErrNotFound = fmt.Errorf("artifact not found")
	// ErrNoMoreElements is returned by queue getters when every element
	// is either consumed or reserved.
	ErrNoMoreElements = fmt.Errorf("no more elements")
)

// Storage wraps the database with the artifact and queue operations.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance on the given database.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close releases the storage. The wrapped database is shared with the
// shielded states and stays open; its owner closes it.
func (s *Storage) Close() {}

// isReserved reports whether a reservation exists for the key.
func (s *Storage) isReserved(prefix, key []byte) bool {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	_, err := rd.Get(key)
	return err == nil
}

// setReservation creates a reservation for the key.
func (s *Storage) setReservation(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, []byte{1}); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// deleteReservation removes a reservation for the key, if any.
func (s *Storage) deleteReservation(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}
