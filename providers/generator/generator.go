// Package generator is the reference extras capability provider, serving the
// values a sandboxed guest cannot produce itself: GUIDs, per-actor sequence
// numbers and bounded random numbers.
package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"caplink/capabilities"
	"caplink/codec"
	"caplink/core"
	"caplink/extras"
)

// CapabilityID identifies the capability this provider implements.
const CapabilityID = "caplink:extras"

type Provider struct {
	mu         sync.Mutex
	configured bool
	sequences  map[string]uint64

	bindings *capabilities.Bindings
}

var _ capabilities.CapabilityProvider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		sequences: make(map[string]uint64),
		bindings:  capabilities.NewBindings(),
	}
}

func (p *Provider) ConfigureDispatch(capabilities.Dispatcher) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configured {
		return fmt.Errorf("generator: dispatcher already configured")
	}
	p.configured = true
	return nil
}

func (p *Provider) HandleCall(actor string, op string, payload []byte) ([]byte, error) {
	switch op {
	case capabilities.OpGetCapabilityDescriptor:
		return codec.Serialize(descriptor())
	case core.OpBindActor:
		var cfg core.CapabilityConfiguration
		if err := codec.Deserialize(payload, &cfg); err != nil {
			return nil, err
		}
		return nil, p.bindings.Bind(cfg)
	case core.OpRemoveActor:
		var cfg core.CapabilityConfiguration
		if err := codec.Deserialize(payload, &cfg); err != nil {
			return nil, err
		}
		p.bindings.Remove(cfg.Module)
		return nil, nil
	case extras.OpRequestGuid:
		guid := uuid.NewString()
		return codec.Serialize(&extras.GeneratorResult{Guid: &guid})
	case extras.OpRequestSequence:
		return codec.Serialize(&extras.GeneratorResult{SequenceNumber: p.nextSequence(actor)})
	case extras.OpRequestRandom:
		var req extras.GeneratorRequest
		if err := codec.Deserialize(payload, &req); err != nil {
			return nil, err
		}
		return codec.Serialize(&extras.GeneratorResult{RandomNumber: randomBetween(req.Min, req.Max)})
	default:
		return nil, fmt.Errorf("%w: %q for %s", capabilities.ErrUnknownOperation, op, CapabilityID)
	}
}

// nextSequence is monotonic per actor, starting at 1 for the first request.
func (p *Provider) nextSequence(actor string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sequences[actor]++
	return p.sequences[actor]
}

func randomBetween(min, max uint32) uint32 {
	if max <= min {
		return min
	}
	// The span is computed in uint64: a full-domain request would overflow
	// uint32 to a zero span.
	span := uint64(max) - uint64(min) + 1
	return min + uint32(rand.Uint64N(span))
}

func descriptor() capabilities.CapabilityDescriptor {
	return capabilities.NewDescriptorBuilder().
		ID(CapabilityID).
		Name("Extras Generator").
		Version(core.Version).
		Revision(1).
		LongDescription("Generates GUIDs, sequence numbers and random numbers for guest modules").
		WithOperation(extras.OpRequestGuid, capabilities.ToProvider, "Generate a GUID").
		WithOperation(extras.OpRequestSequence, capabilities.ToProvider, "Produce the next per-actor sequence number").
		WithOperation(extras.OpRequestRandom, capabilities.ToProvider, "Produce a random number within a range").
		Build()
}
