package events

import "time"

// Event types published by this service.
const (
	// VectorStoreReadyType is emitted after a user's vector store has been rebuilt and uploaded.
	VectorStoreReadyType = "VECTORSTORE_READY"
	// VectorStoreFailedType is emitted when an ingestion job gives up.
	VectorStoreFailedType = "VECTORSTORE_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "VECTORSTORE_READY").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewVectorStoreReady(user, prefix string, chunks int) BaseEvent {
	return BaseEvent{
		Type: VectorStoreReadyType,
		Data: map[string]interface{}{
			"user":   user,
			"prefix": prefix,
			"chunks": chunks,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewVectorStoreFailed(user string, err error) BaseEvent {
	return BaseEvent{
		Type: VectorStoreFailedType,
		Data: map[string]interface{}{
			"user":  user,
			"error": err.Error(),
		},
		OccurredAt: time.Now().UTC(),
	}
}
