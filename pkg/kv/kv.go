// Package kv defines the key-value contract the session store is built on.
package kv

import (
	"context"
	"errors"
)

// ErrAbsent is returned by Get when no value is stored under the key.
var ErrAbsent = errors.New("kv: key absent")

// Store is a single-key-atomic key-value service. Values are opaque bytes;
// there is no transaction spanning two keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
