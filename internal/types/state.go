package types

// UpdateState mirrors the update-check machine for publishing.
type UpdateState string

const (
	UpdateIdle      UpdateState = "idle"
	UpdateChecking  UpdateState = "checking"
	UpdateSucceeded UpdateState = "succeeded"
	UpdateFailed    UpdateState = "failed"
)

// Engagement is owned by the driving stack; this service only reads it.
type Engagement string

const (
	EngagementUnknown    Engagement = ""
	EngagementEngaged    Engagement = "engaged"
	EngagementDisengaged Engagement = "disengaged"
)

// ParseEngagement maps the value of the ui/status hash field.
// Anything that is not explicitly disengaged counts as engaged.
func ParseEngagement(s string) Engagement {
	switch s {
	case "disengaged", "offroad":
		return EngagementDisengaged
	case "":
		return EngagementUnknown
	default:
		return EngagementEngaged
	}
}

type HardwareVariant string

const (
	VariantTICI    HardwareVariant = "tici"
	VariantEON     HardwareVariant = "eon"
	VariantUnknown HardwareVariant = "unknown"
)

// CarScreen is the visible screen of the car-selection flow.
type CarScreen string

const (
	CarScreenHome CarScreen = "home"
	CarScreenList CarScreen = "list"
)
