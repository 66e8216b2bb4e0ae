package hardware

import (
	"settings-service/internal/types"

	"github.com/shirou/gopsutil/v3/host"
)

// Detect identifies the device from marker files under root ("/" on target).
func Detect(root string) types.HardwareVariant {
	switch {
	case exists(root, TICIMarker):
		return types.VariantTICI
	case exists(root, EONMarker):
		return types.VariantEON
	default:
		return types.VariantUnknown
	}
}

// OSVersion is "AGNOS <VERSION>" or "NEOS <VERSION>" on known devices. Anything
// else falls back to the host platform reported by gopsutil.
func OSVersion(root string, variant types.HardwareVariant) string {
	if name, ok := osNames[string(variant)]; ok {
		if v, err := readTrimmed(root, VersionFile); err == nil && v != "" {
			return name + " " + v
		}
	}

	platform, _, version, err := host.PlatformInformation()
	if err != nil || platform == "" {
		return "unknown"
	}
	if version == "" {
		return platform
	}
	return platform + " " + version
}
