package ui

import (
	"errors"
	"testing"

	"settings-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestConfirmAndResolve(t *testing.T) {
	pub := &recordingPublisher{}
	b := NewBroker(logger.Discard(), pub)

	var answers []bool
	b.Confirm("Are you sure you want to reboot?", func(yes bool) { answers = append(answers, yes) })

	require.Len(t, pub.events, 1)
	assert.Equal(t, "confirm", pub.events[0].Type)
	payload := pub.events[0].Payload.(ConfirmPayload)
	assert.Equal(t, "Are you sure you want to reboot?", payload.Message)
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, 1, b.Pending())

	require.NoError(t, b.Resolve(payload.ID, true))
	assert.Equal(t, []bool{true}, answers)
	assert.Equal(t, 0, b.Pending())

	// a prompt answers once
	assert.ErrorIs(t, b.Resolve(payload.ID, false), ErrUnknownPrompt)
	assert.Equal(t, []bool{true}, answers)
}

func TestPublishFansOutDespiteErrors(t *testing.T) {
	broken := &recordingPublisher{err: errors.New("down")}
	ok := &recordingPublisher{}
	b := NewBroker(logger.Discard(), broken)
	b.AddPublisher(ok)

	b.Alert("Disengage to Reboot")

	require.Len(t, ok.events, 1)
	assert.Equal(t, "alert", ok.events[0].Type)
	assert.Equal(t, AlertPayload{Message: "Disengage to Reboot"}, ok.events[0].Payload)
	assert.Len(t, broken.events, 1)
}
