package claims

import (
	"time"

	"github.com/google/uuid"
)

// ClaimEventType represents the type of a claim domain event.
type ClaimEventType string

const (
	EventClaimCreated          ClaimEventType = "claim:created"
	EventClaimTransitioned     ClaimEventType = "claim:transitioned"
	EventProblemReported       ClaimEventType = "claim:problem-reported"
	EventProblemResolved       ClaimEventType = "claim:problem-resolved"
	EventCancellationRequested ClaimEventType = "claim:cancellation-requested"
	EventClaimCompleted        ClaimEventType = "claim:completed"
	EventClaimCanceled         ClaimEventType = "claim:canceled"
)

// ClaimEvent is one entry of the claim audit trail. Events are keyed by
// aggregate id and version, keeping the trail unambiguous even when two
// writers race on the same claim.
type ClaimEvent struct {
	ID            string                 `json:"id"`
	Type          ClaimEventType         `json:"type"`
	AggregateID   string                 `json:"aggregateId"`
	AggregateType string                 `json:"aggregateType"`
	Version       int                    `json:"version"`
	Timestamp     time.Time              `json:"timestamp"`
	Payload       map[string]interface{} `json:"payload"`
	ActorID       string                 `json:"actorId,omitempty"`
	ActorRole     ActorRole              `json:"actorRole,omitempty"`
	CorrelationID string                 `json:"correlationId,omitempty"`
}

// NewClaimEvent creates a new claim event.
func NewClaimEvent(eventType ClaimEventType, aggregateID string, version int, payload map[string]interface{}) *ClaimEvent {
	return &ClaimEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		AggregateID:   aggregateID,
		AggregateType: "warranty-claim",
		Version:       version,
		Timestamp:     time.Now(),
		Payload:       payload,
	}
}

// WithActor attaches the acting user to the event.
func (e *ClaimEvent) WithActor(actor Actor) *ClaimEvent {
	e.ActorID = actor.ID
	e.ActorRole = actor.Role
	return e
}

// WithCorrelation sets the correlation ID.
func (e *ClaimEvent) WithCorrelation(correlationID string) *ClaimEvent {
	e.CorrelationID = correlationID
	return e
}

// NewClaimCreatedEvent records a claim creation.
func NewClaimCreatedEvent(claim *Claim) *ClaimEvent {
	return NewClaimEvent(EventClaimCreated, claim.ID, claim.Version, map[string]interface{}{
		"claimNumber": claim.ClaimNumber,
		"status":      claim.Status,
		"customerId":  claim.Customer.ID,
		"vehicleId":   claim.Vehicle.ID,
	})
}

// NewClaimTransitionedEvent records one successful transition.
func NewClaimTransitionedEvent(claim *Claim, op Operation, from ClaimStatus) *ClaimEvent {
	eventType := EventClaimTransitioned
	switch op {
	case OpReportProblem:
		eventType = EventProblemReported
	case OpResolveProblem:
		eventType = EventProblemResolved
	case OpRequestCancellation:
		eventType = EventCancellationRequested
	case OpCompleteClaim:
		eventType = EventClaimCompleted
	case OpCompleteCancellation:
		eventType = EventClaimCanceled
	}
	return NewClaimEvent(eventType, claim.ID, claim.Version, map[string]interface{}{
		"operation": string(op),
		"oldStatus": from,
		"newStatus": claim.Status,
	})
}

// EventHandler is a function that handles claim events.
type EventHandler func(event *ClaimEvent)

// EventFilter defines criteria for filtering events.
type EventFilter struct {
	AggregateID string
	EventTypes  []ClaimEventType
	From        *time.Time
	To          *time.Time
}

// Matches returns true if the event matches the filter.
func (f EventFilter) Matches(event *ClaimEvent) bool {
	if f.AggregateID != "" && event.AggregateID != f.AggregateID {
		return false
	}
	if len(f.EventTypes) > 0 {
		found := false
		for _, t := range f.EventTypes {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && event.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && event.Timestamp.After(*f.To) {
		return false
	}
	return true
}
