package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"settings-service/internal/calibration"
	"settings-service/internal/config"
	"settings-service/internal/hardware"
	"settings-service/internal/logger"
	"settings-service/internal/params"
	"settings-service/internal/types"
)

var (
	ErrUnknownHardware    = errors.New("unknown hardware variant")
	ErrPreconditionNotMet = errors.New("precondition not met")
)

// FailureMessage is shown when a store write behind a confirmed action fails.
const FailureMessage = "Something went wrong. Please try again."

type Options struct {
	Variant          types.HardwareVariant
	Recordings       config.VariantDirs
	Logs             config.VariantDirs
	PurgeRecordings  string
	PurgeLogs        string
	CalibrationTool  string
	RegulatoryPath   string
	SoftRestartDelay time.Duration
}

func OptionsFromConfig(cfg *config.Config, variant types.HardwareVariant) Options {
	return Options{
		Variant:          variant,
		Recordings:       cfg.Purge.Recordings,
		Logs:             cfg.Purge.Logs,
		PurgeRecordings:  cfg.Commands.PurgeRecordings,
		PurgeLogs:        cfg.Commands.PurgeLogs,
		CalibrationTool:  cfg.Commands.CalibrationTool,
		RegulatoryPath:   cfg.Features.RegulatoryPath,
		SoftRestartDelay: cfg.Timing.SoftRestartDelay.Std(),
	}
}

// DeviceInfo holds the identity labels of the device panel.
type DeviceInfo struct {
	DongleID string `json:"dongle_id"`
	Serial   string `json:"serial"`
}

// Dispatcher turns device panel intents into store writes and external commands.
// All methods, and all prompt replies, must run on the control thread.
type Dispatcher struct {
	params     *params.Client
	prompt     Prompter
	engagement EngagementSource
	runner     CommandRunner
	sched      Scheduler
	logger     *logger.Logger
	opts       Options

	uninstallEnabled bool

	Closed           types.Signal[struct{}]
	DriverView       types.Signal[struct{}]
	TrainingGuide    types.Signal[struct{}]
	Regulatory       types.Signal[string]
	UninstallEnabled types.Signal[bool]
}

func NewDispatcher(p *params.Client, prompt Prompter, engagement EngagementSource, runner CommandRunner, sched Scheduler, l *logger.Logger, opts Options) *Dispatcher {
	return &Dispatcher{
		params:     p,
		prompt:     prompt,
		engagement: engagement,
		runner:     runner,
		sched:      sched,
		logger:     l,
		opts:       opts,
	}
}

func (d *Dispatcher) close() {
	d.Closed.Emit(struct{}{})
}

// fail reports an error that happened after the user confirmed.
func (d *Dispatcher) fail(action string, err error) {
	d.logger.Errorf("%s failed: %v", action, err)
	d.prompt.Alert(FailureMessage)
}

func (d *Dispatcher) DeviceInfo() (DeviceInfo, error) {
	dongle, err := d.params.GetString(params.KeyDongleID)
	if err != nil {
		return DeviceInfo{}, err
	}
	if dongle == "" || dongle == params.UnregisteredDongleID {
		dongle = "N/A"
	}
	serial, err := d.params.GetString(params.KeyHardwareSerial)
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{DongleID: dongle, Serial: serial}, nil
}

// SoftRestart flags a restart of the driving stack and closes settings.
func (d *Dispatcher) SoftRestart() error {
	if err := d.params.PutBool(params.KeySoftRestartTriggered, true); err != nil {
		return err
	}
	d.logger.Infof("Soft restart triggered")
	d.close()
	return nil
}

func (d *Dispatcher) scheduleSoftRestart() {
	d.sched.After(d.opts.SoftRestartDelay, func() {
		if err := d.params.PutBool(params.KeySoftRestartTriggered, true); err != nil {
			d.logger.Errorf("Failed to trigger soft restart: %v", err)
		}
	})
}

// ResetCalibration clears calibration and live parameters, then restarts.
func (d *Dispatcher) ResetCalibration() error {
	d.prompt.Confirm("Are you sure you want to reset calibration and live params?", func(yes bool) {
		if !yes {
			return
		}
		for _, key := range []string{params.KeyCalibrationParams, params.KeyLiveParameters} {
			if err := d.params.Remove(key); err != nil {
				d.fail("reset calibration", err)
				return
			}
		}
		d.logger.Infof("Calibration reset")
		d.close()
		d.scheduleSoftRestart()
	})
	return nil
}

// ResetCalibrationOffroad only clears CalibrationParams; the row stays open.
func (d *Dispatcher) ResetCalibrationOffroad() error {
	d.prompt.Confirm("Are you sure you want to reset calibration?", func(yes bool) {
		if !yes {
			return
		}
		if err := d.params.Remove(params.KeyCalibrationParams); err != nil {
			d.fail("reset calibration", err)
		}
	})
	return nil
}

// CalibrationDescription is the text shown under the reset calibration row.
func (d *Dispatcher) CalibrationDescription() (string, error) {
	blob, _, err := d.params.Get(params.KeyCalibrationParams)
	if err != nil {
		return "", err
	}
	return calibration.Description(calibration.Summarize(blob, d.logger)), nil
}

func (d *Dispatcher) RunCalibrationTool() error {
	d.prompt.Confirm("Are you sure you want to run nTune calibration? This lags for a second.", func(yes bool) {
		if !yes {
			return
		}
		res := d.runner.Run(context.Background(), d.opts.CalibrationTool)
		if res.Success() {
			d.prompt.Alert("You have successfully run nTune!")
		} else {
			d.prompt.Alert("You have NOT successfully run nTune!")
		}
		d.close()
	})
	return nil
}

type purgeKind struct {
	name    string
	confirm string
	dirs    config.VariantDirs
	command string
	success string
	notDone string
}

func (d *Dispatcher) recordingsPurge() purgeKind {
	return purgeKind{
		name:    "screen recordings",
		confirm: "Are you sure you want to delete recordings? This cannot be undone.",
		dirs:    d.opts.Recordings,
		command: d.opts.PurgeRecordings,
		success: "You have successfully deleted screen recordings on %s!",
		notDone: "You have NOT successfully deleted screen recordings! : %s",
	}
}

func (d *Dispatcher) logsPurge() purgeKind {
	return purgeKind{
		name:    "logs",
		confirm: "Are you sure you want to delete all logs of drives to be uploaded? This cannot be undone.",
		dirs:    d.opts.Logs,
		command: d.opts.PurgeLogs,
		success: "You have successfully deleted logs of drives to be uploaded on %s!",
		notDone: "You have NOT successfully deleted logs of drives to be uploaded! : %s",
	}
}

func (d *Dispatcher) DeleteRecordings() error {
	d.prompt.Confirm(d.recordingsPurge().confirm, func(yes bool) {
		if yes {
			d.purge(d.recordingsPurge())
		}
	})
	return nil
}

func (d *Dispatcher) DeleteLogs() error {
	d.prompt.Confirm(d.logsPurge().confirm, func(yes bool) {
		if yes {
			d.purge(d.logsPurge())
		}
	})
	return nil
}

// purge always closes settings afterwards, including on unknown hardware.
func (d *Dispatcher) purge(k purgeKind) {
	defer d.close()

	var dir, device string
	switch d.opts.Variant {
	case types.VariantTICI:
		dir, device = k.dirs.TICI, "Comma 3"
	case types.VariantEON:
		dir, device = k.dirs.EON, "Comma 2"
	default:
		d.logger.Warnf("Not deleting %s: %v", k.name, ErrUnknownHardware)
		d.prompt.Alert(fmt.Sprintf(k.notDone, "Unknown location : Unknown Device"))
		return
	}

	res := d.runner.Run(context.Background(), hardware.Expand(k.command, dir))
	if !res.Success() {
		d.prompt.Alert(fmt.Sprintf(k.notDone, "Command failed"))
		return
	}
	d.logger.Infof("Deleted %s in %s", k.name, dir)
	d.prompt.Alert(fmt.Sprintf(k.success, device))
}

func (d *Dispatcher) disengaged() (bool, error) {
	status, err := d.engagement.Engagement()
	if err != nil {
		return false, fmt.Errorf("engagement status: %w", err)
	}
	return status == types.EngagementDisengaged, nil
}

func (d *Dispatcher) Reboot() error {
	return d.powerAction("Are you sure you want to reboot?", "Disengage to Reboot", params.KeyDoReboot)
}

func (d *Dispatcher) PowerOff() error {
	return d.powerAction("Are you sure you want to power off?", "Disengage to Power Off", params.KeyDoShutdown)
}

// powerAction prompts only while disengaged and checks again after the prompt,
// since the car may have engaged while it was open.
func (d *Dispatcher) powerAction(confirm, blocked, key string) error {
	ok, err := d.disengaged()
	if err != nil {
		return err
	}
	if !ok {
		d.logger.Infof("%s: %v", key, ErrPreconditionNotMet)
		d.prompt.Alert(blocked)
		return nil
	}

	d.prompt.Confirm(confirm, func(yes bool) {
		if !yes {
			return
		}
		ok, err := d.disengaged()
		if err != nil {
			d.fail(key, err)
			return
		}
		if !ok {
			d.logger.Infof("%s cancelled, engaged while prompt was open", key)
			return
		}
		if err := d.params.PutBool(key, true); err != nil {
			d.fail(key, err)
		}
	})
	return nil
}

// SetOffroad enables or disables the uninstall control.
func (d *Dispatcher) SetOffroad(offroad bool) {
	if d.uninstallEnabled == offroad {
		return
	}
	d.uninstallEnabled = offroad
	d.UninstallEnabled.Emit(offroad)
}

func (d *Dispatcher) UninstallAllowed() bool {
	return d.uninstallEnabled
}

func (d *Dispatcher) Uninstall() error {
	if !d.uninstallEnabled {
		return fmt.Errorf("uninstall: %w: not offroad", ErrPreconditionNotMet)
	}
	d.prompt.Confirm("Are you sure you want to uninstall?", func(yes bool) {
		if !yes {
			return
		}
		if err := d.params.PutBool(params.KeyDoUninstall, true); err != nil {
			d.fail("uninstall", err)
		}
	})
	return nil
}

func (d *Dispatcher) ShowDriverView() error {
	d.DriverView.Emit(struct{}{})
	return nil
}

// ReviewTrainingGuide is not offered on passive installs.
func (d *Dispatcher) ReviewTrainingGuide() error {
	passive, err := d.params.GetBool(params.KeyPassive)
	if err != nil {
		return err
	}
	if passive {
		return fmt.Errorf("training guide: %w: passive mode", ErrPreconditionNotMet)
	}
	d.prompt.Confirm("Are you sure you want to review the training guide?", func(yes bool) {
		if yes {
			d.TrainingGuide.Emit(struct{}{})
		}
	})
	return nil
}

// ShowRegulatory publishes the regulatory document. Only offered on TICI.
func (d *Dispatcher) ShowRegulatory() error {
	if d.opts.Variant != types.VariantTICI {
		return fmt.Errorf("regulatory: %w", ErrUnknownHardware)
	}
	text, err := os.ReadFile(d.opts.RegulatoryPath)
	if err != nil {
		return fmt.Errorf("regulatory: %w", err)
	}
	d.Regulatory.Emit(string(text))
	return nil
}
