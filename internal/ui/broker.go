// Package ui carries events to the UI process and resolves its prompt replies.
package ui

import (
	"errors"
	"fmt"
	"sync"

	"settings-service/internal/logger"

	"github.com/google/uuid"
)

var ErrUnknownPrompt = errors.New("unknown prompt")

// Event is what every transport sends to the UI.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ev Event) error
}

type ConfirmPayload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type AlertPayload struct {
	Message string `json:"message"`
}

// Broker fans events out to all publishers and keeps the reply callbacks of
// open confirmation prompts until the UI answers them.
type Broker struct {
	logger *logger.Logger

	mu         sync.Mutex
	publishers []Publisher
	pending    map[string]func(bool)
}

func NewBroker(l *logger.Logger, publishers ...Publisher) *Broker {
	return &Broker{
		logger:     l,
		publishers: publishers,
		pending:    make(map[string]func(bool)),
	}
}

func (b *Broker) AddPublisher(p Publisher) {
	b.mu.Lock()
	b.publishers = append(b.publishers, p)
	b.mu.Unlock()
}

// Publish sends to every publisher. Failures are logged; one broken transport
// does not stop the others.
func (b *Broker) Publish(typ string, payload interface{}) {
	b.mu.Lock()
	pubs := make([]Publisher, len(b.publishers))
	copy(pubs, b.publishers)
	b.mu.Unlock()

	ev := Event{Type: typ, Payload: payload}
	for _, p := range pubs {
		if err := p.Publish(ev); err != nil {
			b.logger.Warnf("Failed to publish %s event: %v", typ, err)
		}
	}
}

// Confirm opens a yes/no prompt. reply runs when Resolve is called with the
// prompt's id.
func (b *Broker) Confirm(message string, reply func(bool)) {
	id := uuid.NewString()
	b.mu.Lock()
	b.pending[id] = reply
	b.mu.Unlock()

	b.logger.Debugf("prompt %s: %s", id, message)
	b.Publish("confirm", ConfirmPayload{ID: id, Message: message})
}

func (b *Broker) Alert(message string) {
	b.Publish("alert", AlertPayload{Message: message})
}

func (b *Broker) Resolve(id string, yes bool) error {
	b.mu.Lock()
	reply, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrompt, id)
	}
	reply(yes)
	return nil
}

func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
