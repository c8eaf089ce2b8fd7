package external

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
)

type fakeRegions struct {
	calls   int
	regions map[ledgercore.RegionID]RegionInfo
}

func (f *fakeRegions) Region(ctx context.Context, region ledgercore.RegionID) (RegionInfo, bool, error) {
	f.calls++
	info, ok := f.regions[region]
	return info, ok, nil
}

func (f *fakeRegions) LocationRegistered(ctx context.Context, region ledgercore.RegionID, location string) (bool, error) {
	return true, nil
}

func (f *fakeRegions) IsLawyer(ctx context.Context, region ledgercore.RegionID, account ledgercore.AccountID) (bool, error) {
	return false, nil
}

func TestCachedRegionsHitsAfterFirstLookup(t *testing.T) {
	upstream := &fakeRegions{regions: map[ledgercore.RegionID]RegionInfo{
		1: {TaxPermill: 500},
	}}
	cache, err := NewCachedRegions(upstream, 8)
	require.NoError(t, err)

	info, ok, err := cache.Region(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(500), info.TaxPermill)

	_, _, err = cache.Region(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCachedRegionsMissDoesNotCacheNotFound(t *testing.T) {
	upstream := &fakeRegions{regions: map[ledgercore.RegionID]RegionInfo{}}
	cache, err := NewCachedRegions(upstream, 8)
	require.NoError(t, err)

	_, ok, err := cache.Region(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cache.Region(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedRegionsInvalidate(t *testing.T) {
	upstream := &fakeRegions{regions: map[ledgercore.RegionID]RegionInfo{1: {TaxPermill: 10}}}
	cache, err := NewCachedRegions(upstream, 8)
	require.NoError(t, err)

	_, _, _ = cache.Region(context.Background(), 1)
	cache.Invalidate(1)
	_, _, _ = cache.Region(context.Background(), 1)

	assert.Equal(t, 2, upstream.calls)
}

func TestNewCachedRegionsDefaultsSize(t *testing.T) {
	cache, err := NewCachedRegions(&fakeRegions{regions: map[ledgercore.RegionID]RegionInfo{}}, 0)
	require.NoError(t, err)
	assert.NotNil(t, cache)
}
