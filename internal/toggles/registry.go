package toggles

import (
	"errors"
	"fmt"

	"settings-service/internal/params"
)

var (
	ErrLocked        = errors.New("toggle is locked")
	ErrUnknownToggle = errors.New("unknown toggle")
)

type Descriptor struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Entry is a descriptor with its state at the time the list was built.
type Entry struct {
	Descriptor
	Enabled bool `json:"enabled"`
	Locked  bool `json:"locked"`
}

type Options struct {
	// MapsEnabled adds the 24h navigation clock toggle.
	MapsEnabled bool
}

type Registry struct {
	params *params.Client
	base   []Descriptor
}

func NewRegistry(p *params.Client, opts Options) *Registry {
	base := append([]Descriptor(nil), baseToggles...)
	if opts.MapsEnabled {
		base = append(base, navTime24h)
	}
	return &Registry{params: p, base: base}
}

// Toggles returns the main toggle list in display order. The radar toggle is
// appended last, and only when DisableRadar_Allow is set.
func (r *Registry) Toggles() ([]Entry, error) {
	descs, err := r.mainDescriptors()
	if err != nil {
		return nil, err
	}
	return r.resolve(descs)
}

// Community returns the community feature toggles.
func (r *Registry) Community() ([]Entry, error) {
	return r.resolve(communityToggles)
}

func (r *Registry) mainDescriptors() ([]Descriptor, error) {
	allowRadar, err := r.params.GetBool(params.KeyDisableRadarAllow)
	if err != nil {
		return nil, err
	}
	descs := append([]Descriptor(nil), r.base...)
	if allowRadar {
		descs = append(descs, disableRadar)
	}
	return descs, nil
}

func (r *Registry) resolve(descs []Descriptor) ([]Entry, error) {
	entries := make([]Entry, 0, len(descs))
	for _, d := range descs {
		locked, err := r.params.IsLocked(d.Key)
		if err != nil {
			return nil, fmt.Errorf("lock state of %s: %w", d.Key, err)
		}
		enabled, err := r.params.GetBool(d.Key)
		if err != nil {
			return nil, fmt.Errorf("value of %s: %w", d.Key, err)
		}
		entries = append(entries, Entry{Descriptor: d, Enabled: enabled, Locked: locked})
	}
	return entries, nil
}

// Set writes a toggle value. Only keys currently listed may be written, and
// never while locked.
func (r *Registry) Set(key string, on bool) error {
	descs, err := r.mainDescriptors()
	if err != nil {
		return err
	}
	if !containsKey(descs, key) && !containsKey(communityToggles, key) {
		return fmt.Errorf("%w: %s", ErrUnknownToggle, key)
	}

	locked, err := r.params.IsLocked(key)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%w: %s", ErrLocked, key)
	}
	return r.params.PutBool(key, on)
}

func containsKey(descs []Descriptor, key string) bool {
	for _, d := range descs {
		if d.Key == key {
			return true
		}
	}
	return false
}
