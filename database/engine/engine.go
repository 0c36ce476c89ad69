package engine

import "errors"

// ErrNotFound is returned by Snapshot.Get when the key does not exist.  Both
// backends normalize their own not found errors to it.
var ErrNotFound = errors.New("engine: key not found")

// Engine is a key/value store offering atomic write batches and consistent
// read snapshots.
type Engine interface {
	// Transaction starts a write batch.  Nothing is visible to readers
	// until it is committed.
	Transaction() (Transaction, error)

	// Snapshot returns a read view of the store as of the call.
	Snapshot() (Snapshot, error)

	// Close releases the underlying store.  Closing twice is an error.
	Close() error
}

// Transaction is an atomic write batch.
type Transaction interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error

	// Discard abandons the batch.  It is safe to call more than once and
	// after Commit.
	Discard()
}

// Snapshot is a consistent read only view of the store.
type Snapshot interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// NewIterator iterates the keys within the range in ascending order.
	// A nil range iterates every key.
	NewIterator(*Range) Iterator
	Releaser
}

// Releaser is implemented by values holding resources of the store.
type Releaser interface {
	Release()
}
