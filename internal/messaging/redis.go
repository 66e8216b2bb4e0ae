package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"settings-service/internal/logger"
	"settings-service/internal/types"
	"settings-service/internal/ui"

	"github.com/redis/go-redis/v9"
)

const (
	// CommandList receives LPUSHed UI commands
	CommandList = "settings:command"

	// SettingsHash holds the latest payload per event type; the type is
	// published on SettingsChannel after every write.
	SettingsHash    = "settings"
	SettingsChannel = "settings"

	// UIHash is owned by the UI process
	UIHash    = "ui"
	UIChannel = "ui"
)

type Callbacks struct {
	CommandCallback func(string) error // one command line
	VisibleCallback func() error       // settings window was opened
}

type RedisClient struct {
	client    *redis.Client
	callbacks Callbacks
	logger    *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRedisClient(host string, port int, l *logger.Logger, callbacks Callbacks) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		callbacks: callbacks,
		logger:    l,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.callbacks = callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		r.logger.Infof("Redis connection failed: %v", err)
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")

	status, err := r.Engagement()
	if err != nil {
		r.logger.Infof("Failed to get initial engagement status: %v", err)
	} else {
		r.logger.Infof("Initial engagement status: %q", status)
	}

	return nil
}

// StartListening starts the command and UI listeners
func (r *RedisClient) StartListening() error {
	r.logger.Infof("Starting Redis listeners")

	pubsub := r.client.Subscribe(r.ctx, UIChannel)
	r.logger.Infof("Subscribed to Redis channels: %s", UIChannel)

	r.wg.Add(2)
	go r.redisListener(pubsub)
	go r.listCommandListener(CommandList, r.handleCommand)

	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting %s listener", key)
			return
		default:
			// Short timeout so cancellation is noticed
			result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if err == context.Canceled {
					r.logger.Infof("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Infof("Error reading from %s list: %v", key, err)
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := result[1]
				r.logger.Debugf("Received command from %s: %s", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleCommand(value string) error {
	if r.callbacks.CommandCallback == nil {
		return nil
	}
	return r.callbacks.CommandCallback(value)
}

func (r *RedisClient) redisListener(pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	r.logger.Infof("Starting Redis message listener")
	channel := pubsub.Channel()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting listener")
			return
		case msg, ok := <-channel:
			if !ok || msg == nil {
				r.logger.Infof("Redis channel closed unexpectedly")
				r.logger.Fatalf("Redis connection lost, exiting to allow systemd restart")
			}

			r.logger.Debugf("Received Redis message: channel=%s payload=%s", msg.Channel, msg.Payload)

			switch msg.Payload {
			case "settings-visible":
				if r.callbacks.VisibleCallback != nil {
					if err := r.callbacks.VisibleCallback(); err != nil {
						r.logger.Infof("Failed to handle settings visibility: %v", err)
					}
				}
			}
		}
	}
}

func (r *RedisClient) publishHashSet(hash, field string, value interface{}, channel, payload string) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, hash, field, value)
	pipe.Publish(r.ctx, channel, payload)
	_, err := pipe.Exec(r.ctx)
	return err
}

// Publish stores ev as JSON under its type and announces the type. It
// satisfies ui.Publisher.
func (r *RedisClient) Publish(ev ui.Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	r.logger.Debugf("Publishing %s event: %s", ev.Type, data)
	if err := r.publishHashSet(SettingsHash, ev.Type, string(data), SettingsChannel, ev.Type); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Engagement reads the UI's engagement status.
func (r *RedisClient) Engagement() (types.Engagement, error) {
	status, err := r.GetHashField(UIHash, "status")
	if err != nil {
		return types.EngagementUnknown, err
	}
	return types.ParseEngagement(status), nil
}

func (r *RedisClient) GetHashField(hash, field string) (string, error) {
	value, err := r.client.HGet(r.ctx, hash, field).Result()
	if err == redis.Nil {
		// Field doesn't exist, return empty string
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get hash field %s from %s: %w", field, hash, err)
	}
	return value, nil
}

func (r *RedisClient) Close() error {
	r.logger.Infof("Closing Redis client")
	r.cancel()

	// Wait for all goroutines to finish with a timeout
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Infof("All Redis goroutines finished")
	case <-time.After(5 * time.Second):
		r.logger.Infof("Timeout waiting for Redis goroutines to finish")
	}

	return r.client.Close()
}
