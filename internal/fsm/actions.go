package fsm

import "github.com/librescoot/librefsm"

// UpdateActions is implemented by the update workflow. Callbacks run while the
// machine holds its lock and must not call back into the machine.
type UpdateActions interface {
	EnterChecking(c *librefsm.Context) error
	EnterSucceeded(c *librefsm.Context) error
	EnterFailed(c *librefsm.Context) error

	// Guards
	IsOffroad(c *librefsm.Context) bool
}

// CarActions is implemented by the car selection flow.
type CarActions interface {
	EnterList(c *librefsm.Context) error
	ExitList(c *librefsm.Context) error
}
