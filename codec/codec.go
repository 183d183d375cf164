// Package codec implements the shared binary payload convention used on every
// dispatch call between actors, capability providers and the host runtime.
// Payloads are CBOR maps addressed by lowerCamelCase field names so that either
// side can add fields without breaking the other: fields missing from an older
// payload decode to their type defaults, unknown fields are ignored.
package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrMalformedPayload indicates a payload that could not be decoded at all, as
// opposed to a well-formed payload the receiver chose to reject.
var ErrMalformedPayload = errors.New("codec: malformed payload")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Deterministic encoding keeps generated fixtures byte-stable across runs.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Serialize encodes a payload value into its wire form.
func Serialize(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: serialize %T: %w", v, err)
	}
	return data, nil
}

// Deserialize decodes a wire payload into v. Fields absent from the payload are
// left at their zero values.
func Deserialize(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
