package lifecycle

import (
	"time"

	"swachh-scan-api-server/internal/models"
)

// EventType names a completed lifecycle transition.
type EventType string

const (
	EventSubmitted EventType = "feedback.submitted"
	EventAssigned  EventType = "feedback.assigned"
	EventStarted   EventType = "feedback.started"
	EventResolved  EventType = "feedback.resolved"
)

// Event is emitted after a write has been applied to the store.
type Event struct {
	Type     EventType       `json:"type"`
	Feedback models.Feedback `json:"feedback"`
	At       time.Time       `json:"at"`
}

// Publisher receives lifecycle events, e.g. to refresh live dashboards.
// Publish must not block the caller for long.
type Publisher interface {
	Publish(event Event)
}

// Recorder counts transitions for metrics.
type Recorder interface {
	ObserveTransition(event EventType)
}
