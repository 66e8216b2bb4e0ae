package params

// Parameter keys read or written by the settings surface.
const (
	KeyOpenpilotEnabled  = "OpenpilotEnabledToggle"
	KeyIsMetric          = "IsMetric"
	KeyDisableRadar      = "DisableRadar"
	KeyDisableRadarAllow = "DisableRadar_Allow"

	KeyCalibrationParams = "CalibrationParams"
	KeyLiveParameters    = "LiveParameters"

	KeyDongleID       = "DongleId"
	KeyHardwareSerial = "HardwareSerial"
	KeyPassive        = "Passive"
	KeyIsOffroad      = "IsOffroad"

	KeyGitBranch         = "GitBranch"
	KeyGitCommit         = "GitCommit"
	KeyVersion           = "Version"
	KeyReleaseNotes      = "ReleaseNotes"
	KeyLastUpdateTime    = "LastUpdateTime"
	KeyUpdateFailedCount = "UpdateFailedCount"

	KeyDoReboot             = "DoReboot"
	KeyDoShutdown           = "DoShutdown"
	KeyDoUninstall          = "DoUninstall"
	KeySoftRestartTriggered = "SoftRestartTriggered"

	KeySelectedCar   = "SelectedCar"
	KeySupportedCars = "SupportedCars"

	// LockSuffix marks the companion key that makes a toggle read-only.
	LockSuffix = "Lock"
)

// UnregisteredDongleID is written by registration when the device has no account.
const UnregisteredDongleID = "UnregisteredDevice"

func LockKey(key string) string {
	return key + LockSuffix
}
