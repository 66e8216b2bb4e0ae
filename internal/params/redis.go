package params

import (
	"context"
	"fmt"
	"sync"

	"settings-service/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	redisHash    = "params"
	redisChannel = "params"
)

// RedisEngine stores parameters as fields of the "params" hash. Every write
// publishes the key on the "params" channel.
type RedisEngine struct {
	client *redis.Client
	logger *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisEngine(host string, port int, l *logger.Logger) *RedisEngine {
	return NewRedisEngineWithClient(redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
		DB:   0,
	}), l)
}

func NewRedisEngineWithClient(client *redis.Client, l *logger.Logger) *RedisEngine {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEngine{
		client: client,
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RedisEngine) Get(key string) ([]byte, bool, error) {
	v, err := r.client.HGet(r.ctx, redisHash, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	return v, true, nil
}

func (r *RedisEngine) Put(key string, value []byte) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, redisHash, key, value)
	pipe.Publish(r.ctx, redisChannel, key)
	if _, err := pipe.Exec(r.ctx); err != nil {
		return unavailable("put", key, err)
	}
	return nil
}

func (r *RedisEngine) Remove(key string) error {
	pipe := r.client.Pipeline()
	pipe.HDel(r.ctx, redisHash, key)
	pipe.Publish(r.ctx, redisChannel, key)
	if _, err := pipe.Exec(r.ctx); err != nil {
		return unavailable("remove", key, err)
	}
	return nil
}

func (r *RedisEngine) List() ([]string, error) {
	keys, err := r.client.HKeys(r.ctx, redisHash).Result()
	if err != nil {
		return nil, unavailable("list", "", err)
	}
	return keys, nil
}

func (r *RedisEngine) Path(key string) string {
	return redisHash + "/" + key
}

func (r *RedisEngine) Subscribe(fn func(string)) error {
	pubsub := r.client.Subscribe(r.ctx, redisChannel)
	// Receive once so a dead server fails here instead of in the goroutine.
	if _, err := pubsub.Receive(r.ctx); err != nil {
		pubsub.Close()
		return unavailable("subscribe", "", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-r.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					r.logger.Warnf("params channel closed")
					return
				}
				r.logger.Debugf("params change: %s", msg.Payload)
				fn(msg.Payload)
			}
		}
	}()
	return nil
}

func (r *RedisEngine) Close() error {
	r.cancel()
	r.wg.Wait()
	return r.client.Close()
}
