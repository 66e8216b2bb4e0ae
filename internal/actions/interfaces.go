package actions

import (
	"context"
	"time"

	"settings-service/internal/hardware"
	"settings-service/internal/types"
)

// Prompter shows modal dialogs. reply is called once the user answers.
type Prompter interface {
	Confirm(message string, reply func(yes bool))
	Alert(message string)
}

// EngagementSource reports the driving stack's current engagement status.
type EngagementSource interface {
	Engagement() (types.Engagement, error)
}

type CommandRunner interface {
	Run(ctx context.Context, command string) hardware.Result
}

// Scheduler runs fn on the control thread after d.
type Scheduler interface {
	After(d time.Duration, fn func())
}
