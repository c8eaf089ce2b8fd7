package settlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/external/externalmock"
	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
)

func newListedProperty(t *testing.T, tokenAmount uint32) (*settlement.Engine, *externalmock.Whitelist, ledgercore.ListingID, ledgercore.AccountID) {
	t.Helper()
	eng, wl, regions, _ := newTestEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("developer-subscribe-01"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, externalRegionInfo(), "10 Subscribe Way")
	fundNative(t, eng, developer, ledgercore.NewAmount(1_000_000))

	id, err := eng.ListProperty(context.Background(), 1, developer, 1, "10 Subscribe Way", ledgercore.NewAmount(100), tokenAmount, false, nil)
	require.NoError(t, err)
	return eng, wl, id, developer
}

func TestBuyPropertyTokenRejectsUnwhitelistedInvestor(t *testing.T) {
	eng, _, id, _ := newListedProperty(t, 150)
	investor := ledgercore.AccountIDFromBytes([]byte("investor-01"))
	fundNative(t, eng, investor, ledgercore.NewAmount(1_000_000))

	err := eng.BuyPropertyToken(context.Background(), 1, investor, id, 10, ledgercore.USDT)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeUserNotWhitelisted, settlement.CodeOf(err))
}

func TestBuyPropertyTokenSucceedsAndAccruesFunds(t *testing.T) {
	eng, wl, id, _ := newListedProperty(t, 150)
	investor := ledgercore.AccountIDFromBytes([]byte("investor-02"))
	wl.Grant(investor, ledgercore.RoleRealEstateInvestor)
	fundUSDT(t, eng, investor, ledgercore.NewAmount(1_000_000))

	require.NoError(t, eng.BuyPropertyToken(context.Background(), 1, investor, id, 10, ledgercore.USDT))

	listing, ok := eng.GetListing(id)
	require.True(t, ok)
	assert.False(t, listing.CollectedFunds.Get(ledgercore.USDT).IsZero())
	assert.Equal(t, uint32(140), eng.State().TokenCounters[id])
}

func TestBuyPropertyTokenSellsOutAndCreatesLegalCase(t *testing.T) {
	eng, wl, id, _ := newListedProperty(t, 100)
	investor := ledgercore.AccountIDFromBytes([]byte("investor-04"))
	wl.Grant(investor, ledgercore.RoleRealEstateInvestor)
	fundUSDT(t, eng, investor, ledgercore.NewAmount(10_000_000))

	require.NoError(t, eng.BuyPropertyToken(context.Background(), 1, investor, id, 100, ledgercore.USDT))

	_, hasLegalCase := eng.State().LegalCases[id]
	assert.True(t, hasLegalCase)
	_, stillOpen := eng.State().TokenCounters[id]
	assert.False(t, stillOpen)
}

func TestBuyPropertyTokenRejectsPastExpiry(t *testing.T) {
	wl := externalmock.NewWhitelist()
	regions := externalmock.NewRegions()
	token := externalmock.NewPropertyToken()
	clock := settlement.NewBlockClock(0)
	eng := settlement.NewEngine(settlement.Config{
		Params:    settlement.DefaultParams(),
		Whitelist: wl,
		Regions:   regions,
		Token:     token,
		Clock:     clock,
	})

	developer := ledgercore.AccountIDFromBytes([]byte("developer-subscribe-02"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, externalRegionInfo(), "11 Subscribe Way")
	fundNative(t, eng, developer, ledgercore.NewAmount(1_000_000))

	id, err := eng.ListProperty(context.Background(), 1, developer, 1, "11 Subscribe Way", ledgercore.NewAmount(100), 150, false, nil)
	require.NoError(t, err)

	clock.Advance(2000)

	investor := ledgercore.AccountIDFromBytes([]byte("investor-05"))
	wl.Grant(investor, ledgercore.RoleRealEstateInvestor)
	fundNative(t, eng, investor, ledgercore.NewAmount(1_000_000))

	err = eng.BuyPropertyToken(context.Background(), 1, investor, id, 10, ledgercore.USDT)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeListingExpired, settlement.CodeOf(err))
}

func TestCancelPropertyPurchaseRestoresCounterAndFunds(t *testing.T) {
	eng, wl, id, _ := newListedProperty(t, 150)
	investor := ledgercore.AccountIDFromBytes([]byte("investor-06"))
	wl.Grant(investor, ledgercore.RoleRealEstateInvestor)
	fundUSDT(t, eng, investor, ledgercore.NewAmount(1_000_000))

	require.NoError(t, eng.BuyPropertyToken(context.Background(), 1, investor, id, 10, ledgercore.USDT))
	require.NoError(t, eng.CancelPropertyPurchase(2, investor, id))

	assert.Equal(t, uint32(150), eng.State().TokenCounters[id])
	_, stillSubscribed := eng.State().Subscriptions[settlement.SubscriptionKey{Investor: investor, ListingID: id}]
	assert.False(t, stillSubscribed)
}

func TestWithdrawExpiredRejectsBeforeExpiry(t *testing.T) {
	eng, wl, id, _ := newListedProperty(t, 150)
	investor := ledgercore.AccountIDFromBytes([]byte("investor-07"))
	wl.Grant(investor, ledgercore.RoleRealEstateInvestor)
	fundUSDT(t, eng, investor, ledgercore.NewAmount(1_000_000))
	require.NoError(t, eng.BuyPropertyToken(context.Background(), 1, investor, id, 10, ledgercore.USDT))

	err := eng.WithdrawExpired(context.Background(), 2, investor, id)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeListingNotExpired, settlement.CodeOf(err))
}
