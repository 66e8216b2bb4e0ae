package navigation

import (
	"errors"
	"fmt"
	"sync"

	"settings-service/internal/types"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Panel identifiers
const (
	PanelDevice     = "device"
	PanelNetwork    = "network"
	PanelToggles    = "toggles"
	PanelSoftware   = "software"
	PanelCommunity  = "community"
	PanelNavigation = "navigation"
)

type Panel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Navigator tracks which settings panel is shown. Exactly one panel is
// active; the first is the default.
type Navigator struct {
	panels []Panel

	mu     sync.RWMutex
	active int

	Changed types.Signal[int]
}

func NewNavigator(mapsEnabled bool) *Navigator {
	panels := []Panel{
		{PanelDevice, "Device"},
		{PanelNetwork, "Network"},
		{PanelToggles, "Toggles"},
		{PanelSoftware, "Software"},
		{PanelCommunity, "Community"},
	}
	if mapsEnabled {
		panels = append(panels, Panel{PanelNavigation, "Navigation"})
	}
	return &Navigator{panels: panels}
}

func (n *Navigator) Panels() []Panel {
	out := make([]Panel, len(n.panels))
	copy(out, n.panels)
	return out
}

func (n *Navigator) Active() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}

func (n *Navigator) ActivePanel() Panel {
	return n.panels[n.Active()]
}

// Select makes the panel at index active. Selecting the active panel again
// changes nothing.
func (n *Navigator) Select(index int) error {
	if index < 0 || index >= len(n.panels) {
		return fmt.Errorf("panel %d: %w", index, ErrIndexOutOfRange)
	}
	n.set(index)
	return nil
}

// OnBecomeVisible resets to the first panel every time the surface opens.
func (n *Navigator) OnBecomeVisible() {
	n.set(0)
}

func (n *Navigator) set(index int) {
	n.mu.Lock()
	changed := n.active != index
	n.active = index
	n.mu.Unlock()

	if changed {
		n.Changed.Emit(index)
	}
}
