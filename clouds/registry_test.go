package clouds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ionos-finops/core/types"
)

func zero(types.Attributes, types.PriceTable) types.CostResult { return types.ZeroCost() }

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		wantErr string
	}{
		{"valid", Handler{ResourceType: "ionos_lan", Kind: KindFree, Cost: zero}, ""},
		{"no type", Handler{Kind: KindFree, Cost: zero}, "no resource type"},
		{"zero kind", Handler{ResourceType: "x", Cost: zero}, "invalid kind"},
		{"out of range kind", Handler{ResourceType: "x", Kind: KindFree + 1, Cost: zero}, "invalid kind"},
		{"no cost func", Handler{ResourceType: "x", Kind: KindFree}, "no cost function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.handler)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	h := Handler{ResourceType: "ionos_lan", Kind: KindFree, Cost: zero}

	require.NoError(t, r.Register(h))
	err := r.Register(h)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Panics(t, func() { r.MustRegister(h) })
}

func TestLookupAndListing(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(
		Handler{ResourceType: "ionos_volume", Kind: KindBlockVolume, Cost: zero},
		Handler{ResourceType: "ionos_lan", Kind: KindFree, Cost: zero},
		Handler{ResourceType: "ionos_nic", Kind: KindFree, Cost: zero},
	)

	h, ok := r.Lookup("ionos_volume")
	require.True(t, ok)
	assert.Equal(t, KindBlockVolume, h.Kind)

	_, ok = r.Lookup("ionos_server")
	assert.False(t, ok)

	assert.Equal(t, []string{"ionos_lan", "ionos_nic", "ionos_volume"}, r.Types())
	assert.Equal(t, []string{"ionos_lan", "ionos_nic"}, r.ByKind(KindFree))
	assert.Empty(t, r.ByKind(KindSnapshot))
}

func TestKinds(t *testing.T) {
	kinds := Kinds()

	assert.Len(t, kinds, len(kindNames))
	assert.Equal(t, KindComputeInstance, kinds[0])
	assert.Equal(t, KindFree, kinds[len(kinds)-1])
	for _, k := range kinds {
		assert.True(t, k.Valid())
		assert.NotContains(t, k.String(), "kind(")
	}
	assert.Equal(t, "kind(0)", Kind(0).String())
}
