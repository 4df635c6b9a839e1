package redis

import (
	"context"
	"sync"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

var (
	instance *RedisClient
	once     sync.Once
)

// RedisClient wraps a single-node redis connection used as an optional
// synthesized-audio cache. A nil *RedisClient means caching is disabled.
type RedisClient struct {
	*redis.Client
	conf *RedisConfig
}

// NewRedisSingleClient creates a single-node client and verifies the
// connection with a ping.
func NewRedisSingleClient(cfg *RedisConfig) (*redis.Client, error) {
	cfg.DefaultConfig()
	r := redis.NewClient(&redis.Options{
		Addr:         cfg.Host,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  time.Second * time.Duration(cfg.DialTimeout),
		ReadTimeout:  time.Second * time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Second * time.Duration(cfg.WriteTimeout),
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxConnAge:   time.Minute * time.Duration(cfg.MaxConnAge),
		PoolTimeout:  time.Second * time.Duration(cfg.PoolTimeout),
		IdleTimeout:  time.Second * time.Duration(cfg.IdleTimeout),
		DB:           cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return r, nil
}

func CloseRedis(r *redis.Client) {
	if r != nil {
		if err := r.Close(); err != nil {
			log.Errorf("redis close error: %s", err.Error())
		}
	}
}

// GetBytes fetches a binary value. ok is false on a cache miss.
func (rc *RedisClient) GetBytes(ctx context.Context, key string) (value []byte, ok bool, err error) {
	value, err = rc.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// SetBytes stores a binary value with a TTL.
func (rc *RedisClient) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rc.Set(ctx, key, value, ttl).Err()
}

// GetInstance returns the shared client, or nil when caching is disabled
// or the server is unreachable. The service degrades to uncached calls.
func GetInstance() *RedisClient {
	once.Do(func() {
		cfg := config.GetInstance()
		if !cfg.GetBool(config.RedisClientEnabled) {
			return
		}

		conf := &RedisConfig{
			Host:     cfg.GetString(config.RedisClientHost),
			Password: cfg.GetString(config.RedisClientPassword),
			Db:       cfg.GetInt(config.RedisClientDb),
		}
		client, err := NewRedisSingleClient(conf)
		if err != nil {
			log.Errorf("redis unavailable, audio caching disabled: %s", err.Error())
			return
		}
		instance = &RedisClient{conf: conf, Client: client}
	})
	return instance
}
