// Package bolt provides a bbolt-backed durable store. One database file can
// host several collections; each collection is a bucket with its own schema
// version tracked in a shared meta bucket.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/unkn0wn-root/mirrorcache/store"
)

const metaBucket = "__meta"

type Store struct {
	db     *bbolt.DB
	bucket []byte
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// Bucket is the logical collection name within the file. Required.
	Bucket string

	// Version is the schema version, >= 1. 0 means 1.
	Version int

	// OnUpgrade runs once when Version is higher than the persisted version,
	// after the data bucket was dropped and recreated.
	OnUpgrade store.UpgradeFunc
}

// Open opens (or creates) the database file at path and applies the version
// rules: an unchanged version keeps data, a higher version wipes the bucket
// and runs OnUpgrade, a lower version fails with store.ErrVersionDowngrade.
func Open(ctx context.Context, path string, cfg Config) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bolt: path is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bolt: bucket is required")
	}
	version := cfg.Version
	if version == 0 {
		version = 1
	}
	if version < 0 {
		return nil, fmt.Errorf("bolt: invalid version %d", cfg.Version)
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	s := &Store{db: db, bucket: []byte(cfg.Bucket)}
	if err := s.migrate(ctx, version, cfg.OnUpgrade); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context, version int, upgrade store.UpgradeFunc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("bolt: create meta bucket: %w", err)
		}
		stored := readVersion(meta, s.bucket)
		switch {
		case version < stored:
			return fmt.Errorf("bolt: bucket %q is at version %d, requested %d: %w",
				s.bucket, stored, version, store.ErrVersionDowngrade)
		case version > stored:
			// drop and recreate rather than patch; old data is discarded
			if tx.Bucket(s.bucket) != nil {
				if err := tx.DeleteBucket(s.bucket); err != nil {
					return fmt.Errorf("bolt: drop bucket %q: %w", s.bucket, err)
				}
			}
			if _, err := tx.CreateBucket(s.bucket); err != nil {
				return fmt.Errorf("bolt: create bucket %q: %w", s.bucket, err)
			}
			if upgrade != nil {
				if err := upgrade(ctx, txSchema{tx}, stored); err != nil {
					return fmt.Errorf("bolt: upgrade hook: %w", err)
				}
			}
			return writeVersion(meta, s.bucket, version)
		default:
			if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
				return fmt.Errorf("bolt: create bucket %q: %w", s.bucket, err)
			}
			return writeVersion(meta, s.bucket, version)
		}
	})
}

func readVersion(meta *bbolt.Bucket, bucket []byte) int {
	b := meta.Get(bucket)
	if len(b) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(b))
}

func writeVersion(meta *bbolt.Bucket, bucket []byte, v int) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return meta.Put(bucket, buf[:])
}

// txSchema exposes bucket management to upgrade hooks.
type txSchema struct{ tx *bbolt.Tx }

var _ store.Schema = txSchema{}

func (s txSchema) CreateCollection(name string) error {
	_, err := s.tx.CreateBucketIfNotExists([]byte(name))
	return err
}

func (s txSchema) DropCollection(name string) error {
	err := s.tx.DeleteBucket([]byte(name))
	if errors.Is(err, bbolt.ErrBucketNotFound) {
		return nil
	}
	return err
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var out []byte
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bolt: bucket %q is missing", s.bucket)
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...) // copy out of the tx
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bolt: bucket %q is missing", s.bucket)
		}
		return b.Put([]byte(key), value)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bolt: bucket %q is missing", s.bucket)
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) != nil {
			if err := tx.DeleteBucket(s.bucket); err != nil {
				return fmt.Errorf("bolt: drop bucket %q: %w", s.bucket, err)
			}
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

// Scan opens a writable transaction so the caller can prune records in
// place while draining the cursor. Close commits the transaction.
func (s *Store) Scan(ctx context.Context) (store.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("bolt: begin scan: %w", err)
	}
	b := tx.Bucket(s.bucket)
	if b == nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("bolt: bucket %q is missing", s.bucket)
	}
	return &cursor{tx: tx, c: b.Cursor()}, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

type cursor struct {
	tx      *bbolt.Tx
	c       *bbolt.Cursor
	started bool
	done    bool
}

var _ store.Cursor = (*cursor)(nil)

func (cu *cursor) Next(ctx context.Context) (string, []byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, false, err
	}
	if cu.done {
		return "", nil, false, nil
	}
	var k, v []byte
	if !cu.started {
		cu.started = true
		k, v = cu.c.First()
	} else {
		k, v = cu.c.Next()
	}
	if k == nil {
		cu.done = true
		return "", nil, false, nil
	}
	return string(k), append([]byte(nil), v...), true, nil
}

func (cu *cursor) Delete() error {
	return cu.c.Delete()
}

func (cu *cursor) Close() error {
	if cu.tx == nil {
		return nil
	}
	err := cu.tx.Commit()
	cu.tx = nil
	return err
}
