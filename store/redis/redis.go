// Package redis provides a Redis-backed durable store, for deployments where
// warm-start state should survive the host and not just the process.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/mirrorcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const scanBatch = 256

// Store keeps records under "<namespace>:<key>". The schema version lives
// under "<namespace>:__version" and is excluded from scans and Clear is
// prefix-wide. Records have no TTL; the mirror owns their lifetime.
type Store struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client goredis.UniversalClient

	// Namespace is the logical collection name, e.g. "app:responses". Required.
	Namespace string

	// Version is the schema version, >= 1. 0 means 1.
	Version int

	// OnUpgrade runs once when Version is higher than the persisted version,
	// after the namespace was cleared. Redis has no named collections, so the
	// Schema handle is a no-op.
	OnUpgrade store.UpgradeFunc

	CloseClient bool // set true only if this store exclusively owns the client
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if strings.TrimSpace(cfg.Namespace) == "" {
		return nil, errors.New("redis store: namespace is required")
	}
	version := cfg.Version
	if version == 0 {
		version = 1
	}
	if version < 0 {
		return nil, fmt.Errorf("redis store: invalid version %d", cfg.Version)
	}

	s := &Store{rdb: cfg.Client, prefix: cfg.Namespace + ":", closeClient: cfg.CloseClient}
	if err := s.migrate(ctx, version, cfg.OnUpgrade); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) versionKey() string        { return s.prefix + "__version" }
func (s *Store) dataKey(key string) string { return s.prefix + key }

func (s *Store) migrate(ctx context.Context, version int, upgrade store.UpgradeFunc) error {
	raw, err := s.rdb.Get(ctx, s.versionKey()).Result()
	stored := 0
	switch {
	case err == goredis.Nil:
		// fresh namespace
	case err != nil:
		return fmt.Errorf("redis store: read version: %w", err)
	default:
		stored, err = strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("redis store: parse version %q: %w", raw, err)
		}
	}

	switch {
	case version < stored:
		return fmt.Errorf("redis store: namespace %q is at version %d, requested %d: %w",
			strings.TrimSuffix(s.prefix, ":"), stored, version, store.ErrVersionDowngrade)
	case version > stored:
		if err := s.Clear(ctx); err != nil {
			return fmt.Errorf("redis store: clear on upgrade: %w", err)
		}
		if upgrade != nil {
			if err := upgrade(ctx, noSchema{}, stored); err != nil {
				return fmt.Errorf("redis store: upgrade hook: %w", err)
			}
		}
	}
	return s.rdb.Set(ctx, s.versionKey(), strconv.Itoa(version), 0).Err()
}

// noSchema satisfies store.Schema for a backend with no named collections.
type noSchema struct{}

func (noSchema) CreateCollection(string) error { return nil }
func (noSchema) DropCollection(string) error   { return nil }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.dataKey(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.dataKey(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.dataKey(key)).Err()
}

func (s *Store) Clear(ctx context.Context) error {
	var cur uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cur, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		del := keys[:0]
		for _, k := range keys {
			if k != s.versionKey() {
				del = append(del, k)
			}
		}
		if len(del) > 0 {
			if err := s.rdb.Del(ctx, del...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cur = next
	}
}

func (s *Store) Scan(ctx context.Context) (store.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &cursor{s: s}, nil
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type cursor struct {
	s    *Store
	cur  uint64
	buf  []string
	last string // storage key most recently returned by Next
	done bool
}

var _ store.Cursor = (*cursor)(nil)

func (cu *cursor) Next(ctx context.Context) (string, []byte, bool, error) {
	for {
		if len(cu.buf) == 0 {
			if cu.done {
				return "", nil, false, nil
			}
			keys, next, err := cu.s.rdb.Scan(ctx, cu.cur, cu.s.prefix+"*", scanBatch).Result()
			if err != nil {
				return "", nil, false, err
			}
			cu.cur = next
			if next == 0 {
				cu.done = true
			}
			cu.buf = keys
			continue
		}
		k := cu.buf[0]
		cu.buf = cu.buf[1:]
		if k == cu.s.versionKey() {
			continue
		}
		v, err := cu.s.rdb.Get(ctx, k).Bytes()
		if err == goredis.Nil {
			continue // deleted between SCAN and GET
		}
		if err != nil {
			return "", nil, false, err
		}
		cu.last = k
		return strings.TrimPrefix(k, cu.s.prefix), v, true, nil
	}
}

func (cu *cursor) Delete() error {
	if cu.last == "" {
		return nil
	}
	// fire-and-forget pruning; no deadline governs durable deletes
	return cu.s.rdb.Del(context.Background(), cu.last).Err()
}

func (cu *cursor) Close() error { return nil }
