package calibration

import (
	"fmt"
	"math"
	"strconv"

	"settings-service/internal/logger"
)

const mountingText = "openpilot requires the device to be mounted within 4° left or right and " +
	"within 5° up or 8° down. openpilot is continuously calibrating, resetting is rarely required."

type Summary struct {
	HasAngles bool
	CalStatus int32
	PitchDeg  float64
	YawDeg    float64
	// Fragment is the " Your device is pointed ..." sentence, empty without angles.
	Fragment string
}

// Summarize never fails: an empty blob, a malformed blob or calStatus 0 all
// yield a summary without angles. Malformed input is logged as a warning.
func Summarize(blob []byte, l *logger.Logger) Summary {
	if len(blob) == 0 {
		return Summary{}
	}

	rec, err := Decode(blob)
	if err != nil {
		l.Warnf("%v", err)
		return Summary{}
	}
	if rec.CalStatus == 0 {
		return Summary{CalStatus: rec.CalStatus}
	}

	pitch := float64(rec.RPY[1]) * 180 / math.Pi
	yaw := float64(rec.RPY[2]) * 180 / math.Pi

	pitchDir := "up"
	if pitch > 0 {
		pitchDir = "down"
	}
	yawDir := "right"
	if yaw > 0 {
		yawDir = "left"
	}

	return Summary{
		HasAngles: true,
		CalStatus: rec.CalStatus,
		PitchDeg:  pitch,
		YawDeg:    yaw,
		Fragment: fmt.Sprintf(" Your device is pointed %s° %s and %s° %s.",
			formatAngle(pitch), pitchDir, formatAngle(yaw), yawDir),
	}
}

// Description is the full text for the reset calibration row.
func Description(s Summary) string {
	return mountingText + s.Fragment
}

// formatAngle prints whole degrees, or one significant digit below 1°.
// Values too small for 'g' to print without an exponent come out as 0.
func formatAngle(deg float64) string {
	a := math.Abs(deg)
	switch {
	case a >= 1:
		return strconv.FormatFloat(math.Round(a), 'f', 0, 64)
	case a < 1e-4:
		return "0"
	default:
		return strconv.FormatFloat(a, 'g', 1, 64)
	}
}
