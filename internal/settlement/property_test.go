package settlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/external/externalmock"
	"github.com/opendeed/deedd/internal/external"
	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
)

func newTestEngine(t *testing.T) (*settlement.Engine, *externalmock.Whitelist, *externalmock.Regions, *externalmock.PropertyToken) {
	t.Helper()
	wl := externalmock.NewWhitelist()
	regions := externalmock.NewRegions()
	token := externalmock.NewPropertyToken()

	eng := settlement.NewEngine(settlement.Config{
		Params: settlement.DefaultParams(),
		Whitelist: wl,
		Regions:   regions,
		Token:     token,
		Clock:     settlement.NewBlockClock(0),
	})
	return eng, wl, regions, token
}

func fundNative(t *testing.T, eng *settlement.Engine, account ledgercore.AccountID, amount ledgercore.Amount) {
	t.Helper()
	s := eng.State()
	s.Ledger.NativeCredit(account, amount)
	eng.Restore(s)
}

func fundUSDT(t *testing.T, eng *settlement.Engine, account ledgercore.AccountID, amount ledgercore.Amount) {
	t.Helper()
	s := eng.State()
	s.Ledger.Credit(ledgercore.USDT, account, amount)
	eng.Restore(s)
}

func externalRegionInfo() external.RegionInfo {
	return external.RegionInfo{
		CollectionID:          1,
		TaxPermill:            50,
		ListingDurationBlocks: 1000,
	}
}

func TestListPropertyRejectsUnwhitelistedDeveloper(t *testing.T) {
	eng, _, regions, _ := newTestEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("developer-account-02"))
	regions.AddRegion(1, externalRegionInfo(), "456 Oak Ave")
	fundNative(t, eng, developer, ledgercore.NewAmount(1_000_000))

	_, err := eng.ListProperty(context.Background(), 1, developer, 1, "456 Oak Ave", ledgercore.NewAmount(100), 150, false, nil)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeUserNotWhitelisted, settlement.CodeOf(err))
}

func TestListPropertyRejectsTokenAmountOutOfRange(t *testing.T) {
	eng, wl, regions, _ := newTestEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("developer-account-03"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, externalRegionInfo(), "789 Pine Rd")
	fundNative(t, eng, developer, ledgercore.NewAmount(1_000_000))

	_, err := eng.ListProperty(context.Background(), 1, developer, 1, "789 Pine Rd", ledgercore.NewAmount(100), 1, false, nil)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeTokenAmountTooLow, settlement.CodeOf(err))
}

func TestListPropertySucceedsAndOpensListing(t *testing.T) {
	eng, wl, regions, _ := newTestEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("developer-account-04"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, externalRegionInfo(), "1 Infinite Loop")
	fundNative(t, eng, developer, ledgercore.NewAmount(1_000_000))

	id, err := eng.ListProperty(context.Background(), 1, developer, 1, "1 Infinite Loop", ledgercore.NewAmount(100), 150, false, nil)
	require.NoError(t, err)

	listing, ok := eng.GetListing(id)
	require.True(t, ok)
	assert.Equal(t, developer, listing.Developer)
	assert.Equal(t, uint32(150), listing.TokenAmount)
}

func TestListPropertyRejectsReplayedSequence(t *testing.T) {
	eng, wl, regions, _ := newTestEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("developer-account-05"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, externalRegionInfo(), "2 Infinite Loop")
	fundNative(t, eng, developer, ledgercore.NewAmount(10_000_000))

	_, err := eng.ListProperty(context.Background(), 1, developer, 1, "2 Infinite Loop", ledgercore.NewAmount(100), 150, false, nil)
	require.NoError(t, err)

	_, err = eng.ListProperty(context.Background(), 1, developer, 1, "2 Infinite Loop", ledgercore.NewAmount(100), 150, false, nil)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeAlreadyApplied, settlement.CodeOf(err))
}
