package core

import (
	"context"

	"settings-service/internal/hardware"
	"settings-service/internal/messaging"
	"settings-service/internal/types"
	"settings-service/internal/ui"
)

// MessagingClient defines the Redis operations needed by SettingsSystem
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	// UI events
	Publish(ev ui.Event) error

	// Engagement status owned by the UI process
	Engagement() (types.Engagement, error)
}

// UIServer is the optional WebSocket transport
type UIServer interface {
	Start() error
	Shutdown(ctx context.Context) error
	Publish(ev ui.Event) error
}

// CommandRunner runs external commands
type CommandRunner interface {
	Run(ctx context.Context, command string) hardware.Result
}
