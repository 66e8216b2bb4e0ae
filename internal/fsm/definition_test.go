package fsm

import (
	"context"
	"testing"
	"time"

	"github.com/librescoot/librefsm"
)

type fakeUpdateActions struct {
	offroad bool
	entered []librefsm.StateID
}

func (f *fakeUpdateActions) EnterChecking(c *librefsm.Context) error {
	f.entered = append(f.entered, StateUpdateChecking)
	return nil
}

func (f *fakeUpdateActions) EnterSucceeded(c *librefsm.Context) error {
	f.entered = append(f.entered, StateUpdateSucceeded)
	return nil
}

func (f *fakeUpdateActions) EnterFailed(c *librefsm.Context) error {
	f.entered = append(f.entered, StateUpdateFailed)
	return nil
}

func (f *fakeUpdateActions) IsOffroad(c *librefsm.Context) bool { return f.offroad }

type fakeCarActions struct {
	enters, exits int
}

func (f *fakeCarActions) EnterList(c *librefsm.Context) error { f.enters++; return nil }
func (f *fakeCarActions) ExitList(c *librefsm.Context) error  { f.exits++; return nil }

func startMachine(t *testing.T, def *librefsm.Definition) *librefsm.Machine {
	t.Helper()
	machine, err := def.Build()
	if err != nil {
		t.Fatalf("Failed to build machine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := machine.Start(ctx); err != nil {
		t.Fatalf("Failed to start machine: %v", err)
	}
	return machine
}

func send(machine *librefsm.Machine, ev librefsm.EventID) {
	machine.Send(librefsm.Event{ID: ev})
	time.Sleep(50 * time.Millisecond)
}

// ===== Update Machine Tests =====

func TestUpdateMachineGuardedByOffroad(t *testing.T) {
	actions := &fakeUpdateActions{}
	machine := startMachine(t, NewUpdateDefinition(actions))

	send(machine, EvCheckRequested)
	if machine.CurrentState() != StateUpdateIdle {
		t.Errorf("Expected idle while onroad, got %s", machine.CurrentState())
	}

	actions.offroad = true
	send(machine, EvCheckRequested)
	if machine.CurrentState() != StateUpdateChecking {
		t.Errorf("Expected checking, got %s", machine.CurrentState())
	}
}

func TestUpdateMachineResolution(t *testing.T) {
	actions := &fakeUpdateActions{offroad: true}
	machine := startMachine(t, NewUpdateDefinition(actions))

	send(machine, EvCheckRequested)
	send(machine, EvUpdateFailed)
	if machine.CurrentState() != StateUpdateFailed {
		t.Fatalf("Expected failed, got %s", machine.CurrentState())
	}

	send(machine, EvCheckRequested)
	send(machine, EvUpdateTimeChanged)
	if machine.CurrentState() != StateUpdateSucceeded {
		t.Fatalf("Expected succeeded, got %s", machine.CurrentState())
	}

	// a late notification outside of checking changes nothing
	send(machine, EvUpdateFailed)
	if machine.CurrentState() != StateUpdateSucceeded {
		t.Errorf("Expected succeeded to hold, got %s", machine.CurrentState())
	}

	want := []librefsm.StateID{StateUpdateChecking, StateUpdateFailed, StateUpdateChecking, StateUpdateSucceeded}
	if len(actions.entered) != len(want) {
		t.Fatalf("Unexpected entry sequence %v", actions.entered)
	}
	for i := range want {
		if actions.entered[i] != want[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, want[i], actions.entered[i])
		}
	}
}

// ===== Car Selection Machine Tests =====

func TestCarSelectionMachine(t *testing.T) {
	actions := &fakeCarActions{}
	machine := startMachine(t, NewCarSelectionDefinition(actions))

	if machine.CurrentState() != StateCarHome {
		t.Fatalf("Expected home, got %s", machine.CurrentState())
	}

	send(machine, EvCarListOpened)
	if machine.CurrentState() != StateCarList {
		t.Fatalf("Expected list, got %s", machine.CurrentState())
	}

	send(machine, EvCarSelected)
	if machine.CurrentState() != StateCarHome {
		t.Fatalf("Expected home after selection, got %s", machine.CurrentState())
	}

	send(machine, EvCarListOpened)
	send(machine, EvCarListClosed)
	if machine.CurrentState() != StateCarHome {
		t.Errorf("Expected home after back, got %s", machine.CurrentState())
	}

	if actions.enters != 2 || actions.exits != 2 {
		t.Errorf("Expected 2 enters and 2 exits, got %d/%d", actions.enters, actions.exits)
	}
}
