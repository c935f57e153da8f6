// Package cache stores json encoded values with optional expiry.
// It backs the cached app repository and the redis session store.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrKeyNotExist = errors.New("cache key not exists")

// Cache stores json-serializable value by key.
// Zero or negative expiry means the value never expires.
type Cache interface {
	GetAs(ctx context.Context, key string, out interface{}) error
	SetExp(ctx context.Context, key string, inValue interface{}, expireDur time.Duration) error
	Delete(ctx context.Context, key string) error
}
