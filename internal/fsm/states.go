package fsm

import "github.com/librescoot/librefsm"

// Update check states
const (
	StateUpdateIdle      librefsm.StateID = "idle"
	StateUpdateChecking  librefsm.StateID = "checking"
	StateUpdateSucceeded librefsm.StateID = "succeeded"
	StateUpdateFailed    librefsm.StateID = "failed"
)

// Car selection screens
const (
	StateCarHome librefsm.StateID = "home"
	StateCarList librefsm.StateID = "list"
)

// Update check events
const (
	// User pressed "Check for Update"
	EvCheckRequested librefsm.EventID = "check-requested"

	// Derived from watched parameter changes
	EvUpdateTimeChanged librefsm.EventID = "update-time-changed"
	EvUpdateFailed      librefsm.EventID = "update-failed"
)

// Car selection events
const (
	EvCarListOpened librefsm.EventID = "car-list-opened"
	EvCarListClosed librefsm.EventID = "car-list-closed"
	EvCarSelected   librefsm.EventID = "car-selected"
)
