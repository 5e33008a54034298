package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riftvoice/backend/pkg/kv"
)

// KVStore is a kv.Store backed by the kv_entries table.
type KVStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewKVStore creates a Postgres-backed key-value store. Rows written through
// Put expire after ttl; zero keeps them forever.
func NewKVStore(pool *pgxpool.Pool, ttl time.Duration) *KVStore {
	return &KVStore{pool: pool, ttl: ttl}
}

// Get returns the value under key. Expired rows read as absent.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	var value []byte
	err := s.pool.QueryRow(ctx, q, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, kv.ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, nil
}

// Put upserts value under key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	const q = `INSERT INTO kv_entries (key, value, updated_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW(), expires_at = EXCLUDED.expires_at`
	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}
	if _, err := s.pool.Exec(ctx, q, key, value, expiresAt); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and reports how many were removed.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("kv purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ kv.Store = (*KVStore)(nil)
