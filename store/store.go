// Package store defines the durable key/value backend used by mirrorcache.
//
// Implementations MUST be byte-for-byte transparent: Get and Scan must return
// exactly the same []byte that was previously passed to Put for a key (no
// prepended/appended metadata, no re-encoding, no mutation).
//
// Stores are opened at a schema version and drivers track the persisted
// version themselves: an unchanged version preserves data, an increased
// version drops and recreates the collection (then runs the upgrade hook)
// before the store is handed back, and a decreased version fails the open
// with ErrVersionDowngrade without touching data.
package store

import (
	"context"
	"errors"
)

// ErrVersionDowngrade is returned by drivers when a store is opened at a
// schema version lower than the persisted one.
var ErrVersionDowngrade = errors.New("store: schema version downgrade")

// Store is a durable key/value collection. All operations may touch disk or
// the network and may fail; mirrorcache never calls them on its read path.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, overwriting any previous record.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every record in the collection.
	Clear(ctx context.Context) error

	// Scan opens a forward cursor over the entire collection.
	Scan(ctx context.Context) (Cursor, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Cursor is a forward-only iteration over a Store's records. A cursor is
// valid until Close; Scan produces an independent cursor per call.
type Cursor interface {
	// Next returns the next record. ok=false with a nil error marks the end.
	Next(ctx context.Context) (key string, value []byte, ok bool, err error)

	// Delete removes the record most recently returned by Next.
	Delete() error

	// Close releases the cursor and any transaction backing it.
	Close() error
}

// Schema is the capability handed to an UpgradeFunc so a storage handler can
// extend the durable layout (e.g. auxiliary collections) during an upgrade.
// Drivers without named collections may implement both as no-ops.
type Schema interface {
	// CreateCollection ensures an auxiliary named collection exists.
	CreateCollection(name string) error

	// DropCollection removes an auxiliary named collection if present.
	DropCollection(name string) error
}

// UpgradeFunc runs once inside a driver's version-upgrade step, after the
// primary collection was recreated and before any data is visible.
type UpgradeFunc func(ctx context.Context, schema Schema, oldVersion int) error
