package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func ConnectToRedis(conf Redis) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Host,
		Password: conf.Password,
		DB:       conf.DB,
	})
	return rdb
}

func PingRedis(rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
