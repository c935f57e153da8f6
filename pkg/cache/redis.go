package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
)

// RedisConfig accepts any topology from container.RedisConnMaker (single, sentinel or cluster).
type RedisConfig struct {
	Client redis.UniversalClient `validate:"required"`
}

// Redis relies on the redis TTL for expiry, so no envelope is stored around the value.
type Redis struct {
	client redis.UniversalClient
}

var _ Cache = (*Redis)(nil)

func NewRedis(conf RedisConfig) (*Redis, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("error validate cache redis: %w", err)
		return nil, err
	}

	return &Redis{client: conf.Client}, nil
}

func (r *Redis) GetAs(ctx context.Context, key string, out interface{}) (err error) {
	ctx, span := tracer.StartSpan(ctx, "cache.redis.GetAs")
	span.SetAttributes(attribute.String("cache.key", key))
	defer span.End()

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrKeyNotExist
	}

	if err != nil {
		err = fmt.Errorf("redis get %s: %w", key, err)
		span.RecordError(err)
		return
	}

	err = json.Unmarshal(val, out)
	if err != nil {
		err = fmt.Errorf("cannot unmarshal cached %s: %w", key, err)
		return
	}

	return
}

func (r *Redis) SetExp(ctx context.Context, key string, inValue interface{}, expireDur time.Duration) (err error) {
	ctx, span := tracer.StartSpan(ctx, "cache.redis.SetExp")
	span.SetAttributes(attribute.String("cache.key", key), attribute.Int64("cache.ttl_ms", expireDur.Milliseconds()))
	defer span.End()

	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return
	}

	if expireDur < 0 {
		expireDur = 0 // redis: zero means no expiration
	}

	err = r.client.Set(ctx, key, val, expireDur).Err()
	if err != nil {
		err = fmt.Errorf("redis set %s: %w", key, err)
		span.RecordError(err)
	}

	return
}

func (r *Redis) Delete(ctx context.Context, key string) (err error) {
	ctx, span := tracer.StartSpan(ctx, "cache.redis.Delete")
	span.SetAttributes(attribute.String("cache.key", key))
	defer span.End()

	err = r.client.Del(ctx, key).Err()
	if err != nil {
		err = fmt.Errorf("redis del %s: %w", key, err)
		span.RecordError(err)
	}

	return
}
