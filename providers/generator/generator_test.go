package generator

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caplink/capabilities"
	"caplink/codec"
	"caplink/extras"
)

func call(t *testing.T, p *Provider, actor, op string, req *extras.GeneratorRequest) extras.GeneratorResult {
	t.Helper()
	var payload []byte
	if req != nil {
		var err error
		payload, err = codec.Serialize(req)
		require.NoError(t, err)
	}
	resp, err := p.HandleCall(actor, op, payload)
	require.NoError(t, err)
	var result extras.GeneratorResult
	require.NoError(t, codec.Deserialize(resp, &result))
	return result
}

func TestGuidGeneration(t *testing.T) {
	p := New()

	a := call(t, p, "ACTOR", extras.OpRequestGuid, &extras.GeneratorRequest{Guid: true})
	b := call(t, p, "ACTOR", extras.OpRequestGuid, &extras.GeneratorRequest{Guid: true})

	require.NotNil(t, a.Guid)
	require.NotNil(t, b.Guid)
	assert.NotEqual(t, *a.Guid, *b.Guid)
	_, err := uuid.Parse(*a.Guid)
	assert.NoError(t, err)
}

func TestSequencePerActor(t *testing.T) {
	p := New()

	req := &extras.GeneratorRequest{Sequence: true}
	assert.Equal(t, uint64(1), call(t, p, "A", extras.OpRequestSequence, req).SequenceNumber)
	assert.Equal(t, uint64(2), call(t, p, "A", extras.OpRequestSequence, req).SequenceNumber)
	// Each actor has its own counter.
	assert.Equal(t, uint64(1), call(t, p, "B", extras.OpRequestSequence, req).SequenceNumber)
}

func TestRandomWithinRange(t *testing.T) {
	p := New()

	for range 50 {
		r := call(t, p, "ACTOR", extras.OpRequestRandom, &extras.GeneratorRequest{Random: true, Min: 10, Max: 20})
		assert.GreaterOrEqual(t, r.RandomNumber, uint32(10))
		assert.LessOrEqual(t, r.RandomNumber, uint32(20))
	}

	// A degenerate range collapses to min.
	r := call(t, p, "ACTOR", extras.OpRequestRandom, &extras.GeneratorRequest{Random: true, Min: 7, Max: 7})
	assert.Equal(t, uint32(7), r.RandomNumber)
}

// A request spanning the whole uint32 domain is valid and must produce a
// number, not abort the provider.
func TestRandomFullRange(t *testing.T) {
	p := New()

	assert.NotPanics(t, func() {
		call(t, p, "ACTOR", extras.OpRequestRandom, &extras.GeneratorRequest{
			Random: true, Min: 0, Max: math.MaxUint32,
		})
	})

	r := call(t, p, "ACTOR", extras.OpRequestRandom, &extras.GeneratorRequest{
		Random: true, Min: math.MaxUint32 - 1, Max: math.MaxUint32,
	})
	assert.GreaterOrEqual(t, r.RandomNumber, uint32(math.MaxUint32-1))
}

func TestUnknownOperation(t *testing.T) {
	p := New()
	_, err := p.HandleCall("ACTOR", "RequestHaiku", nil)
	assert.ErrorIs(t, err, capabilities.ErrUnknownOperation)
}

func TestDescriptor(t *testing.T) {
	p := New()
	resp, err := p.HandleCall("system", capabilities.OpGetCapabilityDescriptor, nil)
	require.NoError(t, err)
	var d capabilities.CapabilityDescriptor
	require.NoError(t, codec.Deserialize(resp, &d))
	assert.Equal(t, CapabilityID, d.ID)
	assert.Len(t, d.SupportedOperations, 3)
}
