package core

import (
	"context"
	"fmt"
	"time"

	"settings-service/internal/actions"
	"settings-service/internal/calibration"
	"settings-service/internal/config"
	"settings-service/internal/logger"
	"settings-service/internal/messaging"
	"settings-service/internal/navigation"
	"settings-service/internal/params"
	"settings-service/internal/toggles"
	"settings-service/internal/types"
	"settings-service/internal/ui"
	"settings-service/internal/update"
)

// UI event types
const (
	EventPanel            = "panel"
	EventToggles          = "toggles"
	EventCommunity        = "community"
	EventSoftware         = "software"
	EventDevice           = "device"
	EventCalibration      = "calibration"
	EventCar              = "car"
	EventCars             = "cars"
	EventClose            = "close"
	EventDriverView       = "driver-view"
	EventTrainingGuide    = "training-guide"
	EventRegulatory       = "regulatory"
	EventUninstallEnabled = "uninstall-enabled"
)

type PanelPayload struct {
	Active int                `json:"active"`
	Panels []navigation.Panel `json:"panels"`
}

type CarPayload struct {
	Screen types.CarScreen `json:"screen"`
	Button string          `json:"button"`
}

type DevicePayload struct {
	actions.DeviceInfo
	UninstallEnabled bool `json:"uninstall_enabled"`
}

type CalibrationPayload struct {
	Description string `json:"description"`
}

type RegulatoryPayload struct {
	HTML string `json:"html"`
}

// Deps are the external pieces SettingsSystem is assembled from. Server may
// be nil.
type Deps struct {
	Config    *config.Config
	Engine    params.Engine
	Messaging MessagingClient
	Server    UIServer
	Runner    CommandRunner
	Variant   types.HardwareVariant
	OSVersion string
	Logger    *logger.Logger
}

// SettingsSystem wires the settings components to the store and the UI
// transports and serializes all of them on one control loop.
type SettingsSystem struct {
	config  *config.Config
	logger  *logger.Logger
	redis   MessagingClient
	server  UIServer
	variant types.HardwareVariant

	loop       *Loop
	params     *params.Client
	broker     *ui.Broker
	toggles    *toggles.Registry
	dispatcher *actions.Dispatcher
	update     *update.Workflow
	navigator  *navigation.Navigator
	cars       *navigation.CarSelection

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSettingsSystem(deps Deps) *SettingsSystem {
	cfg := deps.Config
	l := deps.Logger

	s := &SettingsSystem{
		config:  cfg,
		logger:  l,
		redis:   deps.Messaging,
		server:  deps.Server,
		variant: deps.Variant,
		loop:    NewLoop(l.WithTag("Loop")),
		done:    make(chan struct{}),
	}

	s.params = params.NewClient(deps.Engine, l.WithTag("Params"))

	s.broker = ui.NewBroker(l.WithTag("UI"), deps.Messaging)
	if deps.Server != nil {
		s.broker.AddPublisher(deps.Server)
	}

	s.toggles = toggles.NewRegistry(s.params, toggles.Options{MapsEnabled: cfg.Features.MapsEnabled})

	s.dispatcher = actions.NewDispatcher(
		s.params,
		s.broker,
		deps.Messaging,
		deps.Runner,
		s.loop,
		l.WithTag("Actions"),
		actions.OptionsFromConfig(cfg, deps.Variant),
	)

	s.update = update.NewWorkflow(s.params, s.params, deps.Runner, l.WithTag("Update"), update.Options{
		Brand:      cfg.Features.Brand,
		OSVersion:  deps.OSVersion,
		UpdaterCmd: cfg.Commands.Updater,
	})

	s.navigator = navigation.NewNavigator(cfg.Features.MapsEnabled)
	s.cars = navigation.NewCarSelection(s.params, cfg.Cars.ListPath, l.WithTag("Cars"))

	s.connectSignals()
	return s
}

func (s *SettingsSystem) Start(ctx context.Context) error {
	s.logger.Infof("Starting settings system (hardware %s)", s.variant)

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go func() {
		defer close(s.done)
		s.loop.Run(loopCtx)
	}()

	s.redis.SetCallbacks(messaging.Callbacks{
		CommandCallback: s.Command,
		VisibleCallback: func() error { return s.Command("visible") },
	})
	if err := s.redis.Connect(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.params.OnChange(s.onParamChange)
	if err := s.params.Start(); err != nil {
		return fmt.Errorf("failed to subscribe to parameter changes: %w", err)
	}
	if err := s.params.Watch(s.params.PathOf(params.KeyIsOffroad)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", params.KeyIsOffroad, err)
	}

	// The machines outlive the loop. A notification already running on the
	// loop may still SendSync into them during Shutdown.
	machineCtx := context.WithoutCancel(ctx)
	if err := s.update.Start(machineCtx); err != nil {
		return err
	}
	if err := s.cars.Start(machineCtx); err != nil {
		return err
	}

	if err := s.loop.Do(func() error {
		s.refreshOffroad()
		s.publishAll()
		return nil
	}); err != nil {
		return err
	}

	if err := s.redis.StartListening(); err != nil {
		return fmt.Errorf("failed to start Redis listeners: %w", err)
	}

	if s.server != nil {
		if err := s.server.Start(); err != nil {
			return fmt.Errorf("failed to start UI server: %w", err)
		}
	}

	s.logger.Infof("Settings system started")
	return nil
}

func (s *SettingsSystem) Shutdown() {
	s.logger.Infof("Shutting down settings system")

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warnf("UI server shutdown: %v", err)
		}
		cancel()
	}
	if err := s.redis.Close(); err != nil {
		s.logger.Warnf("Redis close: %v", err)
	}

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.loop.Stop()
	s.update.Stop()
	s.cars.Stop()

	if err := s.params.Close(); err != nil {
		s.logger.Warnf("Parameter store close: %v", err)
	}
}

// Command runs one UI command on the control loop.
func (s *SettingsSystem) Command(cmd string) error {
	return s.loop.Do(func() error {
		return s.HandleCommand(cmd)
	})
}

// connectSignals turns component events into UI events. Handlers may run on
// state machine goroutines, so they only read and publish.
func (s *SettingsSystem) connectSignals() {
	s.navigator.Changed.Connect(func(int) { s.publishPanel() })

	s.dispatcher.Closed.Connect(func(struct{}) { s.broker.Publish(EventClose, nil) })
	s.dispatcher.DriverView.Connect(func(struct{}) { s.broker.Publish(EventDriverView, nil) })
	s.dispatcher.TrainingGuide.Connect(func(struct{}) { s.broker.Publish(EventTrainingGuide, nil) })
	s.dispatcher.Regulatory.Connect(func(html string) {
		s.broker.Publish(EventRegulatory, RegulatoryPayload{HTML: html})
	})
	s.dispatcher.UninstallEnabled.Connect(func(enabled bool) {
		s.broker.Publish(EventUninstallEnabled, enabled)
	})

	s.update.LabelsChanged.Connect(func(l update.Labels) { s.broker.Publish(EventSoftware, l) })
	s.update.StateChanged.Connect(func(st types.UpdateState) {
		s.logger.Infof("Update check %s", st)
	})

	s.cars.ScreenChanged.Connect(func(screen types.CarScreen) {
		s.broker.Publish(EventCar, CarPayload{Screen: screen, Button: s.cars.ButtonText()})
	})
	s.cars.ListChanged.Connect(func(list navigation.CarList) { s.broker.Publish(EventCars, list) })
	s.cars.SelectionChanged.Connect(func(button string) {
		s.broker.Publish(EventCar, CarPayload{Screen: s.cars.Screen(), Button: button})
	})
}

// onParamChange is called from the store's notification goroutine.
func (s *SettingsSystem) onParamChange(ch params.Change) {
	s.loop.Post(func() {
		switch ch.Key {
		case params.KeyIsOffroad:
			s.refreshOffroad()
		case params.KeyLastUpdateTime, params.KeyUpdateFailedCount:
			s.update.HandleChange(ch)
		default:
			s.logger.Debugf("Ignoring change of %s", ch.Path)
		}
	})
}

func (s *SettingsSystem) refreshOffroad() {
	offroad, err := s.params.GetBool(params.KeyIsOffroad)
	if err != nil {
		s.logger.Errorf("Failed to read %s: %v", params.KeyIsOffroad, err)
		return
	}
	s.dispatcher.SetOffroad(offroad)
}

// === Publishing ===

func (s *SettingsSystem) publishAll() {
	s.publishPanel()
	s.publishToggles()
	s.publishDevice()
	s.broker.Publish(EventSoftware, s.update.Labels())
	s.broker.Publish(EventCar, CarPayload{Screen: s.cars.Screen(), Button: s.cars.ButtonText()})
	s.broker.Publish(EventUninstallEnabled, s.dispatcher.UninstallAllowed())
}

func (s *SettingsSystem) publishPanel() {
	s.broker.Publish(EventPanel, PanelPayload{Active: s.navigator.Active(), Panels: s.navigator.Panels()})
}

func (s *SettingsSystem) publishToggles() {
	if entries, err := s.toggles.Toggles(); err != nil {
		s.logger.Errorf("Failed to build toggle list: %v", err)
	} else {
		s.broker.Publish(EventToggles, entries)
	}

	if entries, err := s.toggles.Community(); err != nil {
		s.logger.Errorf("Failed to build community list: %v", err)
	} else {
		s.broker.Publish(EventCommunity, entries)
	}
}

func (s *SettingsSystem) publishDevice() {
	info, err := s.dispatcher.DeviceInfo()
	if err != nil {
		s.logger.Errorf("Failed to read device info: %v", err)
	} else {
		s.broker.Publish(EventDevice, DevicePayload{DeviceInfo: info, UninstallEnabled: s.dispatcher.UninstallAllowed()})
	}

	desc, err := s.dispatcher.CalibrationDescription()
	if err != nil {
		s.logger.Errorf("Failed to read calibration: %v", err)
		desc = calibration.Description(calibration.Summary{})
	}
	s.broker.Publish(EventCalibration, CalibrationPayload{Description: desc})
}
