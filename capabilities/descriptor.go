package capabilities

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// OperationDirection indicates which way an operation flows: from the provider
// into an actor, from an actor into the provider, or both.
type OperationDirection int

const (
	ToActor OperationDirection = iota
	ToProvider
	Both
)

func (d OperationDirection) String() string {
	switch d {
	case ToActor:
		return "to_actor"
	case ToProvider:
		return "to_provider"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// MarshalText renders the direction in its stable textual form. Used by the
// JSON descriptor representation.
func (d OperationDirection) MarshalText() ([]byte, error) {
	switch d {
	case ToActor, ToProvider, Both:
		return []byte(d.String()), nil
	default:
		return nil, fmt.Errorf("capabilities: unknown operation direction %d", int(d))
	}
}

func (d *OperationDirection) UnmarshalText(text []byte) error {
	switch string(text) {
	case "to_actor":
		*d = ToActor
	case "to_provider":
		*d = ToProvider
	case "both":
		*d = Both
	default:
		return fmt.Errorf("capabilities: unknown operation direction %q", string(text))
	}
	return nil
}

func (d OperationDirection) MarshalCBOR() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(string(text))
}

func (d *OperationDirection) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// OperationDescriptor describes a single operation supported by a capability
// provider. The name must be unique per capability ID.
type OperationDescriptor struct {
	Name      string             `json:"name" cbor:"name"`
	Direction OperationDirection `json:"direction" cbor:"direction"`
	DocText   string             `json:"doctext" cbor:"doctext"`
}

// CapabilityDescriptor is the immutable metadata a provider exposes describing
// itself and the operations it supports. Field order is stable in the textual
// form.
type CapabilityDescriptor struct {
	// The capability ID of the provider, e.g. `caplink:messaging`
	ID string `json:"id" cbor:"id"`
	// Human-friendly name, displayed in short messages and log entries
	Name string `json:"name" cbor:"name"`
	// Semver string for the provider module
	Version string `json:"version" cbor:"version"`
	// Monotonically increasing revision number
	Revision uint32 `json:"revision" cbor:"revision"`
	// Longer, documentation-friendly description
	LongDescription string `json:"long_description" cbor:"long_description"`
	// All operations supported by this provider
	SupportedOperations []OperationDescriptor `json:"supported_operations" cbor:"supported_operations"`
}

// DescriptorBuilder accumulates a capability descriptor through with-style
// setters. Each setter returns an updated copy, so partially built values can
// be handed around without anyone observing a half-initialized descriptor.
type DescriptorBuilder struct {
	descriptor CapabilityDescriptor
}

// NewDescriptorBuilder starts an empty descriptor configuration.
func NewDescriptorBuilder() DescriptorBuilder {
	return DescriptorBuilder{}
}

func (b DescriptorBuilder) ID(id string) DescriptorBuilder {
	b.descriptor.ID = id
	return b
}

func (b DescriptorBuilder) Name(name string) DescriptorBuilder {
	b.descriptor.Name = name
	return b
}

func (b DescriptorBuilder) Version(version string) DescriptorBuilder {
	b.descriptor.Version = version
	return b
}

func (b DescriptorBuilder) Revision(revision uint32) DescriptorBuilder {
	b.descriptor.Revision = revision
	return b
}

func (b DescriptorBuilder) LongDescription(desc string) DescriptorBuilder {
	b.descriptor.LongDescription = desc
	return b
}

// WithOperation records an operation the provider supports. Adding an
// operation whose name is already present overwrites the earlier entry in
// place, so the last add wins and ordering stays deterministic.
func (b DescriptorBuilder) WithOperation(name string, direction OperationDirection, doctext string) DescriptorBuilder {
	op := OperationDescriptor{Name: name, Direction: direction, DocText: doctext}
	ops := make([]OperationDescriptor, len(b.descriptor.SupportedOperations), len(b.descriptor.SupportedOperations)+1)
	copy(ops, b.descriptor.SupportedOperations)
	for i := range ops {
		if ops[i].Name == name {
			ops[i] = op
			b.descriptor.SupportedOperations = ops
			return b
		}
	}
	b.descriptor.SupportedOperations = append(ops, op)
	return b
}

// Build materializes the immutable descriptor.
func (b DescriptorBuilder) Build() CapabilityDescriptor {
	return b.descriptor
}
