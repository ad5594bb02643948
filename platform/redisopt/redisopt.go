// Package redisopt turns REDIS_URL into client options for go-redis and asynq.
package redisopt

import (
	"errors"
	"fmt"

	"leadscore_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

var ErrNotConfigured = errors.New("redis: REDIS_URL not set")

// Parse reads a redis:// or rediss:// URL. tlsInsecure only affects rediss
// URLs; it never turns TLS on.
func Parse(rawURL string, tlsInsecure bool) (*redis.Options, error) {
	if rawURL == "" {
		return nil, ErrNotConfigured
	}
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse REDIS_URL: %w", err)
	}
	if opt.TLSConfig != nil {
		opt.TLSConfig = opt.TLSConfig.Clone()
		opt.TLSConfig.InsecureSkipVerify = tlsInsecure
	}
	return opt, nil
}

func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := Parse(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Asynq maps the parsed options onto asynq's connection settings.
func Asynq(cfg config.RedisConfig) (asynq.RedisClientOpt, error) {
	opt, err := Parse(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
