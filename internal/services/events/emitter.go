// Package events carries outcome notifications across the engine
// boundary. Consumers (moderation queue, content publisher, user
// notification bot) live outside this service; the engine only emits.
package events

import (
	"context"
	"log"
)

// Event names emitted by the engine.
const (
	AdSubmitted         = "ad.submitted"
	AdWonAuction        = "auction.won"
	SettlementCompleted = "settlement.completed"
	WithdrawalRequested = "withdrawal.requested"
)

// Event is a single outbound notification.
type Event struct {
	Name    string
	Payload map[string]interface{}
}

// Emitter hands events to external collaborators.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// LogEmitter writes events to the process log. It stands in for the
// bot-facing notification transport, which is not part of this engine.
type LogEmitter struct{}

func NewLogEmitter() *LogEmitter { return &LogEmitter{} }

func (e *LogEmitter) Emit(ctx context.Context, event Event) {
	log.Printf("event %s: %v", event.Name, event.Payload)
}
