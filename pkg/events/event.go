package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REPORT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation.
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

const (
	TypeReportCompleted = "REPORT_COMPLETED"
	TypeReportFailed    = "REPORT_FAILED"
)

// NewReportCompleted announces that a generation run reached `complete`.
// persistFailed is set when the document exists in the progress record but
// durable persistence failed; downstream systems may want to re-fetch.
func NewReportCompleted(requestId string, persistFailed bool) Event {
	return BaseEvent{
		Type: TypeReportCompleted,
		Data: map[string]interface{}{
			"request_id":     requestId,
			"persist_failed": persistFailed,
		},
		OccurredAt: time.Now(),
	}
}

// NewReportFailed announces a terminal failed run with its reason code.
func NewReportFailed(requestId, errorCode string) Event {
	return BaseEvent{
		Type: TypeReportFailed,
		Data: map[string]interface{}{
			"request_id": requestId,
			"error_code": errorCode,
		},
		OccurredAt: time.Now(),
	}
}
