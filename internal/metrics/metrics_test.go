package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegisterRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { MustRegister(reg) })

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["deedd_engine_open_listings"])
	assert.True(t, names["deedd_regioncache_hits_total"])
	assert.True(t, names["deedd_regioncache_misses_total"])
}

func TestMustRegisterTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)
	assert.Panics(t, func() { MustRegister(reg) })
}
