// Package eventstreams contains data types for the `caplink:eventstreams`
// capability: append-only event streams and queries against them.
package eventstreams

const (
	// Provider delivers an event to an actor
	OpDeliverEvent = "DeliverEvent"
	// Actor writes an event to a given stream
	OpWriteEvent = "WriteEvent"
	// Actor executes a query against a stream
	OpQueryStream = "QueryStream"
)

// Event is an immutable event within a stream.
type Event struct {
	EventID string            `cbor:"eventId"`
	Stream  string            `cbor:"stream"`
	Values  map[string]string `cbor:"values,omitempty"`
}

// WriteResponse acknowledges an event written to a stream.
type WriteResponse struct {
	EventID string `cbor:"eventId"`
}

// StreamQuery is a query against a given stream. Count 0 returns the maximum
// the provider makes available, which may not be every event.
type StreamQuery struct {
	StreamID string     `cbor:"streamId"`
	Range    *TimeRange `cbor:"range,omitempty"`
	Count    uint64     `cbor:"count"`
}

// StreamResults holds the events returned by a query.
type StreamResults struct {
	Events []Event `cbor:"events,omitempty"`
}

// TimeRange bounds a query to events occurring within a timeslice, in seconds
// since the epoch.
type TimeRange struct {
	MinTime uint64 `cbor:"minTime"`
	MaxTime uint64 `cbor:"maxTime"`
}
