package sessionrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/appstore/pkg/cache"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
)

type CacheStoreConfig struct {
	Cache          cache.Cache `validate:"required"`
	CachePrefixKey string      `validate:"required,alphanum"`
}

// CacheStore keeps session only in cache (i.e: redis), the key expires along with the session.
type CacheStore struct {
	Config CacheStoreConfig

	// now is replaceable in test
	now func() time.Time
}

var _ Repo = (*CacheStore)(nil)

func NewCacheStore(cfg CacheStoreConfig) (*CacheStore, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CacheStore{
		Config: cfg,
		now:    time.Now,
	}, nil
}

func (c *CacheStore) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	ttl := time.UnixMicro(in.Session.ExpiresAt).Sub(c.now())
	if ttl <= 0 {
		err = fmt.Errorf("%w: session already expired", ErrValidation)
		return
	}

	err = c.Config.Cache.SetExp(ctx, c.key(in.Session.Token), in.Session, ttl)
	if err != nil {
		err = fmt.Errorf("cache session error: %w", err)
		return
	}

	out = OutCreate{
		Session: in.Session,
	}
	return
}

func (c *CacheStore) GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	s := Session{}
	err = c.Config.Cache.GetAs(ctx, c.key(in.Token), &s)
	if errors.Is(err, cache.ErrKeyNotExist) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("get session from cache error: %w", err)
		return
	}

	if s.ExpiresAt <= in.Now {
		err = ErrNotFound
		return
	}

	out = OutGetByToken{
		Session: s,
	}
	return
}

func (c *CacheStore) DelByToken(ctx context.Context, in InputDelByToken) (out OutDelByToken, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	err = c.Config.Cache.Delete(ctx, c.key(in.Token))
	if err != nil {
		err = fmt.Errorf("delete session from cache error: %w", err)
		return
	}

	out = OutDelByToken{
		Success: true,
	}
	return
}

func (c *CacheStore) key(token string) string {
	return fmt.Sprintf("%s:%s", c.Config.CachePrefixKey, token)
}
