// Package messaging contains data types for the `caplink:messaging` capability.
package messaging

import "errors"

const (
	// Actor publishes a message through the provider
	OpPublish = "Publish"
	// Provider delivers a message to an actor
	OpDeliverMessage = "DeliverMessage"
	// Actor performs a request-reply operation through the provider
	OpRequest = "Request"
)

// ErrRequestTimeout is returned when a request's timeout elapses before a
// reply arrives. A timeout is an error, never a zero-value success.
var ErrRequestTimeout = errors.New("messaging: request timeout elapsed")

// BrokerMessage is a message as seen by the broker.
type BrokerMessage struct {
	// Message subject or topic
	Subject string `cbor:"subject"`
	// Reply-to subject; empty if there is none
	ReplyTo string `cbor:"replyTo"`
	// Raw bytes of the message; contents are application-defined out of band
	Body []byte `cbor:"body,omitempty"`
}

// RequestMessage asks the broker to make a request-and-reply publication.
// Inbox lifecycle and correlation are handled by the provider implementation,
// never by the actor.
type RequestMessage struct {
	Subject string `cbor:"subject"`
	Body    []byte `cbor:"body,omitempty"`
	// Milliseconds to await a reply before giving up
	TimeoutMs int64 `cbor:"timeout"`
}
