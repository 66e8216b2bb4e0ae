package navigation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"settings-service/internal/fsm"
	"settings-service/internal/logger"
	"settings-service/internal/params"
	"settings-service/internal/types"

	"github.com/librescoot/librefsm"
)

const (
	NotSelected   = "[ Not selected ]"
	SelectCarText = "Select your car"
)

var ErrNotListing = errors.New("car list is not open")

// CarList is the list screen contents. Rows[0] is always NotSelected.
type CarList struct {
	Rows    []string `json:"rows"`
	Current int      `json:"current"`
}

// CarSelection is the home/list flow behind the "Select your car" button.
type CarSelection struct {
	params   *params.Client
	listPath string
	logger   *logger.Logger

	machine *librefsm.Machine
	cancel  context.CancelFunc

	mu   sync.RWMutex
	list CarList

	ScreenChanged    types.Signal[types.CarScreen]
	ListChanged      types.Signal[CarList]
	SelectionChanged types.Signal[string]
}

func NewCarSelection(p *params.Client, listPath string, l *logger.Logger) *CarSelection {
	return &CarSelection{
		params:   p,
		listPath: listPath,
		logger:   l,
		list:     CarList{Rows: []string{NotSelected}},
	}
}

func (c *CarSelection) Start(ctx context.Context) error {
	machine, err := fsm.NewCarSelectionDefinition(c).Build()
	if err != nil {
		return fmt.Errorf("failed to build car selection machine: %w", err)
	}
	c.machine = machine

	c.machine.OnStateChange(func(from, to librefsm.StateID) {
		c.logger.Debugf("Car selection: %s -> %s", from, to)
		c.ScreenChanged.Emit(toScreen(to))
	})

	ctx, c.cancel = context.WithCancel(ctx)
	if err := c.machine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start car selection machine: %w", err)
	}
	return nil
}

func (c *CarSelection) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func toScreen(id librefsm.StateID) types.CarScreen {
	if id == fsm.StateCarList {
		return types.CarScreenList
	}
	return types.CarScreenHome
}

func (c *CarSelection) Screen() types.CarScreen {
	return toScreen(c.machine.CurrentState())
}

func (c *CarSelection) List() CarList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CarList{Rows: append([]string(nil), c.list.Rows...), Current: c.list.Current}
}

// ButtonText is the selected car, or a prompt when none is selected.
func (c *CarSelection) ButtonText() string {
	selected, err := c.params.GetString(params.KeySelectedCar)
	if err != nil {
		c.logger.Warnf("Failed to read %s: %v", params.KeySelectedCar, err)
	}
	if selected == "" {
		return SelectCarText
	}
	return selected
}

// Open shows the list screen.
func (c *CarSelection) Open() error {
	return c.machine.SendSync(librefsm.Event{ID: fsm.EvCarListOpened})
}

// Back returns home without changing the selection.
func (c *CarSelection) Back() error {
	return c.machine.SendSync(librefsm.Event{ID: fsm.EvCarListClosed})
}

// Select stores the car in row and returns home. Row 0 clears the selection.
func (c *CarSelection) Select(row int) error {
	if c.Screen() != types.CarScreenList {
		return ErrNotListing
	}

	list := c.List()
	if row < 0 || row >= len(list.Rows) {
		return fmt.Errorf("car row %d: %w", row, ErrIndexOutOfRange)
	}

	var err error
	if row == 0 {
		err = c.params.Remove(params.KeySelectedCar)
	} else {
		err = c.params.PutString(params.KeySelectedCar, list.Rows[row])
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.list.Current = row
	c.mu.Unlock()

	if err := c.machine.SendSync(librefsm.Event{ID: fsm.EvCarSelected}); err != nil {
		return err
	}
	c.SelectionChanged.Emit(c.ButtonText())
	return nil
}

// candidates reads the supported car names, one per line.
func (c *CarSelection) candidates() ([]string, error) {
	var raw string
	if c.listPath == "" {
		v, err := c.params.GetString(params.KeySupportedCars)
		if err != nil {
			return nil, err
		}
		raw = v
	} else {
		data, err := os.ReadFile(c.listPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read car list: %w", err)
		}
		raw = string(data)
	}

	var out []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// === State Actions ===

func (c *CarSelection) EnterList(ctx *librefsm.Context) error {
	names, err := c.candidates()
	if err != nil {
		c.logger.Errorf("Failed to load car list: %v", err)
	}

	selected, err := c.params.GetString(params.KeySelectedCar)
	if err != nil {
		c.logger.Warnf("Failed to read %s: %v", params.KeySelectedCar, err)
	}

	list := CarList{Rows: append([]string{NotSelected}, names...)}
	if selected != "" {
		for i, name := range names {
			if name == selected {
				list.Current = i + 1
				break
			}
		}
	}

	c.mu.Lock()
	c.list = list
	c.mu.Unlock()

	c.logger.Debugf("Loaded %d cars, current row %d", len(names), list.Current)
	c.ListChanged.Emit(CarList{Rows: append([]string(nil), list.Rows...), Current: list.Current})
	return nil
}

func (c *CarSelection) ExitList(ctx *librefsm.Context) error {
	c.logger.Debugf("Leaving car list at row %d", c.List().Current)
	return nil
}
