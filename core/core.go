// Package core contains data types and operation names used for actor and host
// runtime communication that are not specific to any given capability provider.
package core

import "errors"

// Version of the codec contract.
const Version = "1.0.0"

// SystemActor is the originator of messages dispatched by the host runtime
// itself rather than by a guest module.
const SystemActor = "system"

// Operations every provider or actor may be asked to handle by the host.
const (
	OpPerformLiveUpdate  = "PerformLiveUpdate"
	OpIdentifyCapability = "IdentifyCapability"
	OpHealthRequest      = "HealthRequest"
	OpInitialize         = "Initialize"
	OpBindActor          = "BindActor"
	OpRemoveActor        = "RemoveActor"
)

// Reserved keys under which the host places actor identity claims into the
// values map of a CapabilityConfiguration. Providers must treat any other key
// as forward-compatible extension data.
const (
	ConfigClaimsIssuer       = "__caplink_issuer"
	ConfigClaimsCapabilities = "__caplink_capabilities"
	ConfigClaimsName         = "__caplink_name"
	ConfigClaimsExpires      = "__caplink_expires"
	ConfigClaimsTags         = "__caplink_tags"
)

var ErrEmptyModule = errors.New("core: capability configuration has empty module")

// LiveUpdate is sent to an actor from the system origin when the module is
// being replaced. The bytes contained in this message will, if valid, replace
// the existing actor.
type LiveUpdate struct {
	NewModule []byte `cbor:"newModule"`
}

// HealthRequest is passed to an actor to allow it to return an empty result.
// If the guest module returns the empty result, it is considered healthy.
type HealthRequest struct {
	Placeholder bool `cbor:"placeholder"`
}

// CapabilityConfiguration carries per-actor configuration to a provider when
// the host binds an actor to it. Module is the actor's public identity and
// should be treated as an opaque key.
type CapabilityConfiguration struct {
	Module string            `cbor:"module"`
	Values map[string]string `cbor:"values,omitempty"`
}

// Validate checks the invariants a provider may rely on. The values map may be
// empty, the module key may not.
func (c CapabilityConfiguration) Validate() error {
	if c.Module == "" {
		return ErrEmptyModule
	}
	return nil
}

// Clone returns a copy that shares no state with the original.
func (c CapabilityConfiguration) Clone() CapabilityConfiguration {
	out := CapabilityConfiguration{Module: c.Module}
	if c.Values != nil {
		out.Values = make(map[string]string, len(c.Values))
		for k, v := range c.Values {
			out.Values[k] = v
		}
	}
	return out
}
