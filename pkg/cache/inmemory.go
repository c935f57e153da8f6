package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/segmentio/encoding/json"
)

const defaultInMemoryMaxBytes = 32 * 1048576 // 32MB

// entry wraps the cached value, fastcache itself has no notion of expiry.
type entry struct {
	ExpiredAt int64           `json:"exp"` // unix nano, 0 means never expired
	Value     json.RawMessage `json:"val"`
}

type InMemory struct {
	DB  *fastcache.Cache
	now func() time.Time
}

var _ Cache = (*InMemory)(nil)

// NewInMemory creates fastcache backed Cache. maxBytes <= 0 will use 32MB.
func NewInMemory(maxBytes int) (*InMemory, error) {
	if maxBytes <= 0 {
		maxBytes = defaultInMemoryMaxBytes
	}

	return &InMemory{
		DB:  fastcache.New(maxBytes),
		now: time.Now,
	}, nil
}

func (i *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	result := i.DB.Get(nil, []byte(key))
	if result == nil {
		return ErrKeyNotExist
	}

	var e entry
	if err := json.Unmarshal(result, &e); err != nil {
		return fmt.Errorf("cannot unmarshal cache entry: %w", err)
	}

	if e.ExpiredAt > 0 && i.now().UnixNano() >= e.ExpiredAt {
		i.DB.Del([]byte(key))
		return ErrKeyNotExist
	}

	return json.Unmarshal(e.Value, out)
}

func (i *InMemory) SetExp(_ context.Context, key string, inValue interface{}, expireDur time.Duration) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	e := entry{Value: val}
	if expireDur > 0 {
		e.ExpiredAt = i.now().Add(expireDur).UnixNano()
	}

	b, err := json.Marshal(e)
	if err != nil {
		err = fmt.Errorf("cannot marshal cache entry: %w", err)
		return err
	}

	i.DB.Set([]byte(key), b)
	return nil
}

func (i *InMemory) Delete(_ context.Context, key string) error {
	i.DB.Del([]byte(key))
	return nil
}
