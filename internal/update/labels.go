package update

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	ButtonCheck    = "CHECK"
	ButtonChecking = "CHECKING"
	FailedText     = "failed to fetch update"
)

// Labels is everything the software panel displays.
type Labels struct {
	Branch        string `json:"branch"`
	Commit        string `json:"commit"`
	OSVersion     string `json:"os_version"`
	Version       string `json:"version"`
	ReleaseNotes  string `json:"release_notes"`
	LastUpdate    string `json:"last_update"`
	Button        string `json:"button"`
	ButtonEnabled bool   `json:"button_enabled"`
	Status        string `json:"status,omitempty"`
}

func left(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// brandVersion renders "<brand> v<first 14 chars of Version>".
func brandVersion(brand, version string) string {
	return brand + " v" + strings.TrimSpace(left(version, 14))
}

// parseUpdateTime reads LastUpdateTime, written by the updater as a naive UTC
// ISO timestamp.
func parseUpdateTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, v+"Z"); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// timeAgo is "now" below one minute, otherwise "5 minutes ago" style.
func timeAgo(t, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
