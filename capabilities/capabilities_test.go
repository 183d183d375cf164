package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caplink/core"
)

// Dispatching before a real dispatcher is installed is an initialization
// ordering bug; it must abort, never succeed quietly.
func TestNullDispatcherAborts(t *testing.T) {
	assert.Panics(t, func() {
		NullDispatcher{}.Dispatch("actor", "AnyOp", nil)
	})
}

func TestBindingsReplaceNotMerge(t *testing.T) {
	b := NewBindings()

	require.NoError(t, b.Bind(core.CapabilityConfiguration{
		Module: "MODA",
		Values: map[string]string{"subscription": "orders", "region": "eu"},
	}))
	require.NoError(t, b.Bind(core.CapabilityConfiguration{
		Module: "MODA",
		Values: map[string]string{"subscription": "invoices"},
	}))

	cfg, ok := b.Get("MODA")
	require.True(t, ok)
	assert.Equal(t, "invoices", cfg.Values["subscription"])
	// Re-binding replaces; the earlier region key must be gone.
	_, stale := cfg.Values["region"]
	assert.False(t, stale)
}

func TestBindingsUnknownKeysCarried(t *testing.T) {
	b := NewBindings()

	require.NoError(t, b.Bind(core.CapabilityConfiguration{
		Module: "MODA",
		Values: map[string]string{
			core.ConfigClaimsIssuer: "ISSUER",
			"x_future_extension":    "whatever",
		},
	}))

	cfg, ok := b.Get("MODA")
	require.True(t, ok)
	assert.Equal(t, "whatever", cfg.Values["x_future_extension"])
}

func TestBindingsRejectEmptyModule(t *testing.T) {
	b := NewBindings()
	err := b.Bind(core.CapabilityConfiguration{})
	assert.ErrorIs(t, err, core.ErrEmptyModule)
}

func TestBindingsGetReturnsCopy(t *testing.T) {
	b := NewBindings()
	require.NoError(t, b.Bind(core.CapabilityConfiguration{
		Module: "MODA",
		Values: map[string]string{"k": "v"},
	}))

	cfg, _ := b.Get("MODA")
	cfg.Values["k"] = "mutated"

	again, _ := b.Get("MODA")
	assert.Equal(t, "v", again.Values["k"])
}

func TestBindingsRemove(t *testing.T) {
	b := NewBindings()
	require.NoError(t, b.Bind(core.CapabilityConfiguration{Module: "MODA"}))
	b.Remove("MODA")
	_, ok := b.Get("MODA")
	assert.False(t, ok)
	// Removing an unbound module is a no-op.
	b.Remove("MODB")
	assert.Empty(t, b.Modules())
}
