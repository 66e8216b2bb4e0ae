package params

import (
	"strconv"
	"strings"
	"sync"

	"settings-service/internal/logger"
)

// Change is delivered for every modification of a watched path.
type Change struct {
	Key  string
	Path string
}

// Client is the typed accessor used by every settings component.
// Each call goes to the engine; nothing is cached.
type Client struct {
	engine Engine
	logger *logger.Logger

	mu        sync.RWMutex
	watched   map[string]struct{}
	listeners []func(Change)
}

func NewClient(engine Engine, l *logger.Logger) *Client {
	return &Client{
		engine:  engine,
		logger:  l,
		watched: make(map[string]struct{}),
	}
}

// Start subscribes to engine change notifications.
func (c *Client) Start() error {
	return c.engine.Subscribe(c.dispatch)
}

func (c *Client) Close() error {
	return c.engine.Close()
}

func (c *Client) Get(key string) ([]byte, bool, error) {
	return c.engine.Get(key)
}

// GetString returns "" for an absent key.
func (c *Client) GetString(key string) (string, error) {
	v, ok, err := c.engine.Get(key)
	if err != nil || !ok {
		return "", err
	}
	return string(v), nil
}

// GetBool is false for absent keys and anything other than "1" or "true".
func (c *Client) GetBool(key string) (bool, error) {
	v, err := c.GetString(key)
	if err != nil {
		return false, err
	}
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true"), nil
}

// GetInt is 0 for absent or unparsable values.
func (c *Client) GetInt(key string) (int, error) {
	v, err := c.GetString(key)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.Atoi(strings.TrimSpace(v))
	if perr != nil {
		return 0, nil
	}
	return n, nil
}

func (c *Client) Put(key string, value []byte) error {
	c.logger.Debugf("put %s (%d bytes)", key, len(value))
	return c.engine.Put(key, value)
}

func (c *Client) PutString(key, value string) error {
	return c.Put(key, []byte(value))
}

func (c *Client) PutBool(key string, value bool) error {
	if value {
		return c.Put(key, []byte("1"))
	}
	return c.Put(key, []byte("0"))
}

func (c *Client) Remove(key string) error {
	c.logger.Debugf("remove %s", key)
	return c.engine.Remove(key)
}

// IsLocked reports whether the companion lock key of key is set.
func (c *Client) IsLocked(key string) (bool, error) {
	return c.GetBool(LockKey(key))
}

func (c *Client) PathOf(key string) string {
	return c.engine.Path(key)
}

func (c *Client) Keys() ([]string, error) {
	return c.engine.List()
}

// Watch starts delivering changes for path to OnChange listeners.
func (c *Client) Watch(path string) error {
	c.mu.Lock()
	c.watched[path] = struct{}{}
	c.mu.Unlock()
	c.logger.Debugf("watching %s", path)
	return nil
}

func (c *Client) Unwatch(path string) {
	c.mu.Lock()
	delete(c.watched, path)
	c.mu.Unlock()
}

func (c *Client) Watching(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.watched[path]
	return ok
}

func (c *Client) OnChange(fn func(Change)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Client) dispatch(key string) {
	path := c.engine.Path(key)

	c.mu.RLock()
	_, ok := c.watched[path]
	listeners := make([]func(Change), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	if !ok {
		return
	}
	for _, fn := range listeners {
		fn(Change{Key: key, Path: path})
	}
}
