// Package extras contains data types for miscellaneous generation operations
// that guest modules cannot perform themselves, like GUIDs, sequence numbers
// and random numbers, without warranting a full capability of their own.
package extras

const (
	OpRequestGuid     = "RequestGuid"
	OpRequestSequence = "RequestSequence"
	OpRequestRandom   = "RequestRandom"
)

// GeneratorRequest asks for one of the generated values. The struct is kept
// flat, with one flag per kind, for serialization compatibility with parsers
// that do not handle union types predictably.
type GeneratorRequest struct {
	Guid     bool   `cbor:"guid"`
	Sequence bool   `cbor:"sequence"`
	Random   bool   `cbor:"random"`
	Min      uint32 `cbor:"min"`
	Max      uint32 `cbor:"max"`
}

// GeneratorResult carries whichever value was requested; the others stay at
// their defaults.
type GeneratorResult struct {
	Guid           *string `cbor:"guid,omitempty"`
	SequenceNumber uint64  `cbor:"sequenceNumber"`
	RandomNumber   uint32  `cbor:"randomNumber"`
}
