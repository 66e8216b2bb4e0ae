package params

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is returned when the persistence engine cannot be reached.
// An absent key is never reported with this error.
var ErrStoreUnavailable = errors.New("parameter store unavailable")

// Engine is the persistence backend behind a Client.
type Engine interface {
	// Get returns ok=false when the key does not exist.
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Remove(key string) error
	List() ([]string, error)

	// Path is the handle used to register change watchers for key.
	Path(key string) string

	// Subscribe registers fn to receive the key of every change, in the order
	// the engine observes them. fn may be called from another goroutine.
	Subscribe(fn func(key string)) error
	Close() error
}

func unavailable(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrStoreUnavailable, op, key, err)
}
