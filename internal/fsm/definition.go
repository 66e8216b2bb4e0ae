package fsm

import "github.com/librescoot/librefsm"

// NewUpdateDefinition creates the update check machine. There is no timeout on
// checking: it resolves only when a watched parameter changes.
func NewUpdateDefinition(actions UpdateActions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateUpdateIdle).
		State(StateUpdateChecking,
			librefsm.WithOnEnter(actions.EnterChecking),
		).
		State(StateUpdateSucceeded,
			librefsm.WithOnEnter(actions.EnterSucceeded),
		).
		State(StateUpdateFailed,
			librefsm.WithOnEnter(actions.EnterFailed),
		).

		// A new check may start from any resolved state, offroad only
		Transition(StateUpdateIdle, EvCheckRequested, StateUpdateChecking,
			librefsm.WithGuard(actions.IsOffroad),
		).
		Transition(StateUpdateFailed, EvCheckRequested, StateUpdateChecking,
			librefsm.WithGuard(actions.IsOffroad),
		).
		Transition(StateUpdateSucceeded, EvCheckRequested, StateUpdateChecking,
			librefsm.WithGuard(actions.IsOffroad),
		).

		// Resolution
		Transition(StateUpdateChecking, EvUpdateFailed, StateUpdateFailed).
		Transition(StateUpdateChecking, EvUpdateTimeChanged, StateUpdateSucceeded).

		Initial(StateUpdateIdle)
}

// NewCarSelectionDefinition creates the two-screen car selection machine.
func NewCarSelectionDefinition(actions CarActions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateCarHome).
		State(StateCarList,
			librefsm.WithOnEnter(actions.EnterList),
			librefsm.WithOnExit(actions.ExitList),
		).
		Transition(StateCarHome, EvCarListOpened, StateCarList).
		Transition(StateCarList, EvCarSelected, StateCarHome).
		Transition(StateCarList, EvCarListClosed, StateCarHome).
		Initial(StateCarHome)
}
