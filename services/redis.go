package services

import (
	"context"
	"fmt"

	"socialfeed/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis открывает клиент Redis и проверяет соединение
func InitRedis(ctx context.Context, conf config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password: conf.Password,
		DB:       conf.DB,
	})

	// Тест соединения
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
