package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"settings-service/internal/fsm"
	"settings-service/internal/hardware"
	"settings-service/internal/logger"
	"settings-service/internal/params"
	"settings-service/internal/types"

	"github.com/librescoot/librefsm"
)

var (
	ErrNotOffroad      = errors.New("update check requires offroad")
	ErrAlreadyChecking = errors.New("update check already running")
)

// Event is a typed notification derived from a watched parameter path.
type Event int

const (
	UpdateTimeChanged Event = iota
	FailureCountChanged
)

func (e Event) String() string {
	switch e {
	case UpdateTimeChanged:
		return "update-time-changed"
	case FailureCountChanged:
		return "failure-count-changed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type PathWatcher interface {
	PathOf(key string) string
	Watch(path string) error
	Unwatch(path string)
}

type Runner interface {
	Run(ctx context.Context, command string) hardware.Result
}

type Options struct {
	Brand      string
	OSVersion  string
	UpdaterCmd string
}

// Workflow drives the "Check for Update" button.
type Workflow struct {
	params  *params.Client
	watcher PathWatcher
	runner  Runner
	logger  *logger.Logger
	opts    Options
	now     func() time.Time

	machine *librefsm.Machine
	cancel  context.CancelFunc

	mu     sync.RWMutex
	labels Labels

	LabelsChanged types.Signal[Labels]
	StateChanged  types.Signal[types.UpdateState]
}

func NewWorkflow(p *params.Client, watcher PathWatcher, runner Runner, l *logger.Logger, opts Options) *Workflow {
	return &Workflow{
		params:  p,
		watcher: watcher,
		runner:  runner,
		logger:  l,
		opts:    opts,
		now:     time.Now,
		labels:  Labels{Button: ButtonCheck, ButtonEnabled: true},
	}
}

// Start builds and starts the machine and loads the initial labels.
func (w *Workflow) Start(ctx context.Context) error {
	machine, err := fsm.NewUpdateDefinition(w).Build()
	if err != nil {
		return fmt.Errorf("failed to build update machine: %w", err)
	}
	w.machine = machine

	w.machine.OnStateChange(func(from, to librefsm.StateID) {
		w.logger.Infof("Update check: %s -> %s", from, to)
	})

	ctx, w.cancel = context.WithCancel(ctx)
	if err := w.machine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start update machine: %w", err)
	}

	if err := w.Refresh(); err != nil {
		w.logger.Warnf("Failed to load software labels: %v", err)
	}
	return nil
}

func (w *Workflow) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func toUpdateState(id librefsm.StateID) types.UpdateState {
	switch id {
	case fsm.StateUpdateChecking:
		return types.UpdateChecking
	case fsm.StateUpdateSucceeded:
		return types.UpdateSucceeded
	case fsm.StateUpdateFailed:
		return types.UpdateFailed
	default:
		return types.UpdateIdle
	}
}

func (w *Workflow) State() types.UpdateState {
	return toUpdateState(w.machine.CurrentState())
}

func (w *Workflow) Labels() Labels {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.labels
}

func (w *Workflow) setLabels(fn func(*Labels)) {
	w.mu.Lock()
	fn(&w.labels)
	l := w.labels
	w.mu.Unlock()
	w.LabelsChanged.Emit(l)
}

// Check starts an update check. Onroad it does nothing and returns
// ErrNotOffroad; no watchers are registered and the updater is not signalled.
func (w *Workflow) Check() error {
	if w.State() == types.UpdateChecking {
		return ErrAlreadyChecking
	}

	offroad, err := w.params.GetBool(params.KeyIsOffroad)
	if err != nil {
		return err
	}
	if !offroad {
		return ErrNotOffroad
	}

	if err := w.machine.SendSync(librefsm.Event{ID: fsm.EvCheckRequested}); err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if w.State() != types.UpdateChecking {
		return fmt.Errorf("update check did not start")
	}
	return nil
}

// HandleChange adapts a parameter change into a typed event.
func (w *Workflow) HandleChange(ch params.Change) {
	switch ch.Key {
	case params.KeyLastUpdateTime:
		w.Handle(UpdateTimeChanged)
	case params.KeyUpdateFailedCount:
		w.Handle(FailureCountChanged)
	}
}

// Handle resolves a running check. The failure count is read first on every
// notification, so a failure wins over a simultaneous time change.
func (w *Workflow) Handle(ev Event) {
	w.logger.Debugf("update event %s", ev)

	if w.State() != types.UpdateChecking {
		if ev == UpdateTimeChanged {
			if err := w.Refresh(); err != nil {
				w.logger.Warnf("Failed to refresh software labels: %v", err)
			}
		}
		return
	}

	failed, err := w.params.GetInt(params.KeyUpdateFailedCount)
	if err != nil {
		w.logger.Errorf("Failed to read %s: %v", params.KeyUpdateFailedCount, err)
		return
	}

	var next librefsm.EventID
	switch {
	case failed > 0:
		next = fsm.EvUpdateFailed
	case ev == UpdateTimeChanged:
		next = fsm.EvUpdateTimeChanged
	default:
		return
	}
	if err := w.machine.SendSync(librefsm.Event{ID: next}); err != nil {
		w.logger.Errorf("Failed to send %s: %v", next, err)
	}
}

// Refresh reloads every software label from the store. Button and status
// are left alone.
func (w *Workflow) Refresh() error {
	get := func(key string) (string, error) {
		v, err := w.params.GetString(key)
		return strings.TrimSpace(v), err
	}

	branch, err := get(params.KeyGitBranch)
	if err != nil {
		return err
	}
	commit, err := get(params.KeyGitCommit)
	if err != nil {
		return err
	}
	version, err := get(params.KeyVersion)
	if err != nil {
		return err
	}
	notes, err := get(params.KeyReleaseNotes)
	if err != nil {
		return err
	}
	lastRaw, err := get(params.KeyLastUpdateTime)
	if err != nil {
		return err
	}

	last := ""
	if t, ok := parseUpdateTime(lastRaw); ok {
		last = timeAgo(t, w.now())
	}

	w.setLabels(func(l *Labels) {
		l.Branch = branch
		l.Commit = left(commit, 10)
		l.OSVersion = w.opts.OSVersion
		l.Version = brandVersion(w.opts.Brand, version)
		l.ReleaseNotes = notes
		l.LastUpdate = last
	})
	return nil
}

func (w *Workflow) watchedPaths() []string {
	return []string{
		w.watcher.PathOf(params.KeyLastUpdateTime),
		w.watcher.PathOf(params.KeyUpdateFailedCount),
	}
}

// === State Entry Actions ===

func (w *Workflow) EnterChecking(c *librefsm.Context) error {
	for _, path := range w.watchedPaths() {
		if err := w.watcher.Watch(path); err != nil {
			w.logger.Errorf("Failed to watch %s: %v", path, err)
		}
	}

	w.setLabels(func(l *Labels) {
		l.Button = ButtonChecking
		l.ButtonEnabled = false
		l.Status = ""
	})
	w.StateChanged.Emit(types.UpdateChecking)

	res := w.runner.Run(context.Background(), w.opts.UpdaterCmd)
	if !res.Success() {
		// pkill exits 1 when the updater is not running; the check then
		// stays open until the updater writes one of the watched keys.
		w.logger.Warnf("Updater signal returned %d: %v", res.ExitCode, res.Err)
	}
	return nil
}

func (w *Workflow) stopWatching() {
	for _, path := range w.watchedPaths() {
		w.watcher.Unwatch(path)
	}
}

func (w *Workflow) EnterSucceeded(c *librefsm.Context) error {
	w.stopWatching()
	if err := w.Refresh(); err != nil {
		w.logger.Warnf("Failed to refresh software labels: %v", err)
	}
	w.setLabels(func(l *Labels) {
		l.Button = ButtonCheck
		l.ButtonEnabled = true
		l.Status = ""
	})
	w.StateChanged.Emit(types.UpdateSucceeded)
	return nil
}

func (w *Workflow) EnterFailed(c *librefsm.Context) error {
	w.stopWatching()
	w.setLabels(func(l *Labels) {
		l.Button = ButtonCheck
		l.ButtonEnabled = true
		l.Status = FailedText
	})
	w.StateChanged.Emit(types.UpdateFailed)
	return nil
}

// === Guards ===

func (w *Workflow) IsOffroad(c *librefsm.Context) bool {
	offroad, err := w.params.GetBool(params.KeyIsOffroad)
	if err != nil {
		w.logger.Errorf("Failed to read %s: %v", params.KeyIsOffroad, err)
		return false
	}
	return offroad
}
