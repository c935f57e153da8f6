package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/appstore/pkg/closer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

// RedisConnMaker connects every redis resource once and hands out the client by its label.
type RedisConnMaker struct {
	ctx           context.Context
	conf          ConfigRedisResources
	redisSingle   map[string]*redis.Client
	redisSentinel map[string]*redis.Client
	redisCluster  map[string]*redis.ClusterClient
	closer        closer.Group
}

func NewRedisConnMaker(ctx context.Context, conf ConfigRedisResources) (*RedisConnMaker, error) {
	instance := &RedisConnMaker{
		ctx:           ctx,
		conf:          conf,
		redisSingle:   map[string]*redis.Client{},
		redisSentinel: map[string]*redis.Client{},
		redisCluster:  map[string]*redis.ClusterClient{},
	}

	err := instance.connect()
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = fmt.Errorf("close redis error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *RedisConnMaker) connect() error {
	ctx := i.ctx

	for key, connInfo := range i.conf {
		key = strings.TrimSpace(strings.ToLower(key))
		if err := validator.Var(key, "required,alphanum"); err != nil {
			err = fmt.Errorf("error connecting to redis key '%s': %w", key, err)
			return err
		}

		if len(connInfo.Address) <= 0 {
			return fmt.Errorf("redis %s has no address", key)
		}

		var redisClient redis.UniversalClient
		switch connInfo.Mode {
		case "single", "":
			single := redis.NewClient(&redis.Options{
				Addr:     connInfo.Address[0],
				Username: connInfo.Username,
				Password: connInfo.Password,
				DB:       connInfo.DB,
			})

			i.redisSingle[key] = single
			redisClient = single

		case "sentinel":
			sentinel := redis.NewFailoverClient(&redis.FailoverOptions{
				SentinelAddrs: connInfo.Address,
				Username:      connInfo.Username,
				Password:      connInfo.Password,
				DB:            connInfo.DB,
				MasterName:    connInfo.MasterName,
			})

			i.redisSentinel[key] = sentinel
			redisClient = sentinel

		case "cluster":
			// cluster mode is not support DB selection
			cluster := redis.NewClusterClient(&redis.ClusterOptions{
				Addrs:    connInfo.Address,
				Username: connInfo.Username,
				Password: connInfo.Password,
			})

			i.redisCluster[key] = cluster
			redisClient = cluster

		default:
			err := fmt.Errorf("unknown redis mode: %s", connInfo.Mode)
			return err
		}

		// register the closer before ping, so failed connection is still closed
		i.closer.Add("redis "+key, redisClient)

		err := redisClient.Ping(ctx).Err()
		if err != nil {
			err = fmt.Errorf("error ping redis %s: %w", key, err)
			return err
		}
	}

	return nil
}

func (i *RedisConnMaker) Get(key string) (redis.UniversalClient, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	if v, ok := i.redisSingle[key]; ok {
		return v, nil
	}

	if v, ok := i.redisSentinel[key]; ok {
		return v, nil
	}

	if v, ok := i.redisCluster[key]; ok {
		return v, nil
	}

	return nil, fmt.Errorf("key %s is not found in any redis topology", key)
}

func (i *RedisConnMaker) Close() error {
	if i == nil {
		return nil
	}

	labels := i.closer.Labels()
	err := i.closer.Close()
	if err != nil {
		ylog.Error(i.ctx, "redis: some error occurred when closing dep", ylog.KV("error", err))
		return err
	}

	ylog.Debug(i.ctx, "redis: success to close", ylog.KV("labels", labels))
	return nil
}
