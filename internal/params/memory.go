package params

import (
	"sort"
	"sync"
)

// MemoryEngine keeps parameters in process memory. Notifications are
// delivered synchronously from Put and Remove.
type MemoryEngine struct {
	mu          sync.Mutex
	values      map[string][]byte
	subscribers []func(string)

	// Err, when set, is returned (wrapped) by every operation.
	Err error
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{values: make(map[string][]byte)}
}

func (m *MemoryEngine) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, unavailable("get", key, m.Err)
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryEngine) Put(key string, value []byte) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return unavailable("put", key, m.Err)
	}
	m.values[key] = append([]byte(nil), value...)
	subs := m.subscribers
	m.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

func (m *MemoryEngine) Remove(key string) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return unavailable("remove", key, m.Err)
	}
	_, existed := m.values[key]
	delete(m.values, key)
	subs := m.subscribers
	m.mu.Unlock()

	if existed {
		for _, fn := range subs {
			fn(key)
		}
	}
	return nil
}

func (m *MemoryEngine) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, unavailable("list", "", m.Err)
	}
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryEngine) Path(key string) string {
	return "mem://" + key
}

func (m *MemoryEngine) Subscribe(fn func(string)) error {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
	return nil
}

func (m *MemoryEngine) Close() error { return nil }
