// Package capabilities defines the dispatch contract between the host runtime
// and native capability providers: the Dispatcher a provider uses to reach
// actors, the CapabilityProvider interface the host uses to reach providers,
// and the self-describing capability descriptor.
package capabilities

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// OpGetCapabilityDescriptor is handled by every provider. It takes no payload
// and its result is always a serialized CapabilityDescriptor.
const OpGetCapabilityDescriptor = "GetCapabilityDescriptor"

// ErrUnknownOperation is returned by a provider when asked to perform an
// operation that is not in its descriptor.
var ErrUnknownOperation = errors.New("capabilities: unknown operation")

// Dispatcher is used by a capability provider to send an operation to an actor
// module, expecting a byte payload in return. Implementations must be safe for
// concurrent use by multiple goroutines.
type Dispatcher interface {
	Dispatch(actor string, op string, payload []byte) ([]byte, error)
}

// CapabilityProvider is implemented by every native capability provider.
// ConfigureDispatch is called exactly once, when the host runtime is ready and
// has a live dispatcher, strictly before any HandleCall. HandleCall is invoked
// for every actor-initiated operation and must tolerate concurrent invocation.
type CapabilityProvider interface {
	ConfigureDispatch(dispatcher Dispatcher) error
	HandleCall(actor string, op string, payload []byte) ([]byte, error)
}

// NullDispatcher is a placeholder for use before the host has configured a
// real dispatcher. Dispatching through it is a host/provider integration bug
// and aborts immediately rather than silently succeeding.
type NullDispatcher struct{}

func (NullDispatcher) Dispatch(actor string, op string, _ []byte) ([]byte, error) {
	log.Panicf("capabilities: dispatch of %q to actor %q before a dispatcher was configured", op, actor)
	return nil, nil
}
