package apprepo

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/appstore/pkg/cache"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type CachedConfig struct {
	Persistent     Repo          `validate:"required"`
	CacheExpiry    time.Duration `validate:"required"`
	CachePrefixKey string        `validate:"required,alphanum"`
	Cache          cache.Cache   `validate:"required"`
}

// CachedRepo caches single app lookup. Every write to an app evicts its key.
type CachedRepo struct {
	Config CachedConfig
}

var _ Repo = (*CachedRepo)(nil)

func NewCached(cfg CachedConfig) (*CachedRepo, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CachedRepo{
		Config: cfg,
	}, nil
}

func (c *CachedRepo) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	out, err = c.Config.Persistent.Create(ctx, in)
	if err != nil {
		err = fmt.Errorf("persist app to db error: %w", err)
		return
	}

	c.setByID(ctx, out.App)
	return
}

func (c *CachedRepo) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	// Get from cache first
	app, err := c.getByID(ctx, in.ID)
	if err == nil && app.ID == in.ID {
		out = OutGetByID{
			App: app,
		}
		return
	}

	if err != nil {
		ylog.Debug(ctx, fmt.Sprintf("app id %d miss from cache", in.ID), ylog.KV("error", err))
		err = nil
	}

	out, err = c.Config.Persistent.GetByID(ctx, in)
	if err != nil {
		err = fmt.Errorf("persistence storage fetch error: %w", err)
		return
	}

	// Try cache, only log when error
	c.setByID(ctx, out.App)
	return
}

// List is never cached: filters, sort and pagination make invalidation impractical.
func (c *CachedRepo) List(ctx context.Context, in InputList) (out OutList, err error) {
	return c.Config.Persistent.List(ctx, in)
}

func (c *CachedRepo) ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutListByDeveloper, err error) {
	return c.Config.Persistent.ListByDeveloper(ctx, in)
}

func (c *CachedRepo) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	c.evict(ctx, in.App.ID)

	out, err = c.Config.Persistent.Update(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.App)
	return
}

func (c *CachedRepo) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	out, err = c.Config.Persistent.DelByID(ctx, in)
	if err != nil {
		return
	}

	c.evict(ctx, in.ID)
	return
}

func (c *CachedRepo) IncrementDownloads(ctx context.Context, in InputIncrementDownloads) (out OutIncrementDownloads, err error) {
	out, err = c.Config.Persistent.IncrementDownloads(ctx, in)
	if err != nil {
		return
	}

	c.evict(ctx, in.ID)
	return
}

func (c *CachedRepo) SetRating(ctx context.Context, in InputSetRating) (out OutSetRating, err error) {
	c.evict(ctx, in.ID)

	out, err = c.Config.Persistent.SetRating(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.App)
	return
}

// -- cache

func (c *CachedRepo) genCacheKeyByID(id int64) string {
	return fmt.Sprintf("%s:%d", c.Config.CachePrefixKey, id)
}

func (c *CachedRepo) getByID(ctx context.Context, id int64) (App, error) {
	var app App
	err := c.Config.Cache.GetAs(ctx, c.genCacheKeyByID(id), &app)
	if err != nil {
		return App{}, err
	}

	ylog.Debug(ctx, fmt.Sprintf("get app id %d from cache", id))
	return app, nil
}

func (c *CachedRepo) setByID(ctx context.Context, app App) {
	err := c.Config.Cache.SetExp(ctx, c.genCacheKeyByID(app.ID), app, c.Config.CacheExpiry)
	if err != nil {
		ylog.Error(ctx, fmt.Sprintf("cannot save cache app id %d", app.ID), ylog.KV("error", err))
		return
	}

	ylog.Debug(ctx, fmt.Sprintf("caching app id %d", app.ID))
}

func (c *CachedRepo) evict(ctx context.Context, id int64) {
	err := c.Config.Cache.Delete(ctx, c.genCacheKeyByID(id))
	if err != nil {
		ylog.Error(ctx, fmt.Sprintf("cannot evict cache app id %d", id), ylog.KV("error", err))
	}
}
