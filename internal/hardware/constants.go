package hardware

// Marker files relative to the hardware root. Their presence identifies the device.
const (
	TICIMarker  = "TICI"
	EONMarker   = "EON"
	VersionFile = "VERSION"
)

// OS names prefixed to the VERSION file contents.
var osNames = map[string]string{
	"tici": "AGNOS",
	"eon":  "NEOS",
}
