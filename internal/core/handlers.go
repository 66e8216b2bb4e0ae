package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"settings-service/internal/actions"
	"settings-service/internal/params"
	"settings-service/internal/update"
)

var ErrUnknownCommand = errors.New("unknown command")

// HandleCommand executes one UI command. It must run on the control loop.
func (s *SettingsSystem) HandleCommand(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	s.logger.Debugf("Handling command %q", cmd)

	err := s.dispatch(cmd)
	if errors.Is(err, params.ErrStoreUnavailable) {
		s.logger.Errorf("Command %q: %v", cmd, err)
		s.broker.Alert(actions.FailureMessage)
	}
	return err
}

func (s *SettingsSystem) dispatch(cmd string) error {
	switch cmd {
	case "visible":
		s.navigator.OnBecomeVisible()
		if err := s.update.Refresh(); err != nil {
			s.logger.Warnf("Failed to refresh software labels: %v", err)
		}
		s.publishAll()
		return nil
	case "soft-restart":
		return s.dispatcher.SoftRestart()
	case "reset-calibration":
		return s.dispatcher.ResetCalibration()
	case "reset-calibration-offroad":
		return s.dispatcher.ResetCalibrationOffroad()
	case "run-calibration-tool":
		return s.dispatcher.RunCalibrationTool()
	case "delete-recordings":
		return s.dispatcher.DeleteRecordings()
	case "delete-logs":
		return s.dispatcher.DeleteLogs()
	case "reboot":
		return s.dispatcher.Reboot()
	case "poweroff":
		return s.dispatcher.PowerOff()
	case "uninstall":
		return s.dispatcher.Uninstall()
	case "driver-view":
		return s.dispatcher.ShowDriverView()
	case "training-guide":
		return s.dispatcher.ReviewTrainingGuide()
	case "regulatory":
		return s.dispatcher.ShowRegulatory()
	case "check-update":
		return s.handleCheckUpdate()
	}

	name, arg, _ := strings.Cut(cmd, ":")
	switch name {
	case "panel":
		return s.handlePanel(arg)
	case "toggle":
		return s.handleToggle(arg)
	case "car":
		return s.handleCar(arg)
	case "confirm":
		return s.handleConfirm(arg)
	}

	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

func (s *SettingsSystem) handleCheckUpdate() error {
	err := s.update.Check()
	if errors.Is(err, update.ErrNotOffroad) || errors.Is(err, update.ErrAlreadyChecking) {
		s.logger.Infof("Update check ignored: %v", err)
		return nil
	}
	return err
}

// panel:<index>
func (s *SettingsSystem) handlePanel(arg string) error {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid panel index %q", arg)
	}
	return s.navigator.Select(index)
}

// toggle:<key>:on|off
func (s *SettingsSystem) handleToggle(arg string) error {
	key, value, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("invalid toggle command %q", arg)
	}

	var on bool
	switch value {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("invalid toggle value %q", value)
	}

	if err := s.toggles.Set(key, on); err != nil {
		// Republish so the UI drops its optimistic state
		s.publishToggles()
		return err
	}
	s.logger.Infof("Toggle %s set to %v", key, on)
	s.publishToggles()
	return nil
}

// car:open, car:back, car:select:<row>
func (s *SettingsSystem) handleCar(arg string) error {
	switch arg {
	case "open":
		return s.cars.Open()
	case "back":
		return s.cars.Back()
	}

	row, ok := strings.CutPrefix(arg, "select:")
	if !ok {
		return fmt.Errorf("invalid car command %q", arg)
	}
	index, err := strconv.Atoi(row)
	if err != nil {
		return fmt.Errorf("invalid car row %q", row)
	}
	if err := s.cars.Select(index); err != nil {
		return err
	}
	s.publishToggles()
	return nil
}

// confirm:<id>:yes|no
func (s *SettingsSystem) handleConfirm(arg string) error {
	id, answer, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("invalid confirm command %q", arg)
	}
	switch answer {
	case "yes", "no":
	default:
		return fmt.Errorf("invalid confirm answer %q", answer)
	}
	return s.broker.Resolve(id, answer == "yes")
}
