package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the record of one completed workflow transition. The core
// mutation commits first; handlers subscribed to the event run afterwards as
// best-effort side effects.
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	EntityID  string                 `json:"entity_id"`
	ProjectID string                 `json:"project_id"`
	ActorID   string                 `json:"actor_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// New creates a domain event with a generated ID and the current timestamp
func New(eventType Type, entityID, projectID, actorID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ProjectID: projectID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// WithPayload returns a copy of the event with an added payload entry
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	clone := *e
	clone.Payload = newPayload
	return &clone
}

// PayloadString retrieves a string value from the payload, or ""
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
