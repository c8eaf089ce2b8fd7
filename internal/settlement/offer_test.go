package settlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
)

func relistedListing(t *testing.T) (*settlement.Engine, ledgercore.ListingID, ledgercore.AccountID) {
	t.Helper()
	eng, _, asset, seller := settledAsset(t)
	secondaryID, err := eng.RelistToken(context.Background(), 2, seller, asset, ledgercore.NewAmount(2000), 50)
	require.NoError(t, err)
	return eng, secondaryID, seller
}

func TestMakeOfferRejectsSecondOfferFromSameBuyer(t *testing.T) {
	eng, listingID, _ := relistedListing(t)
	buyer := ledgercore.AccountIDFromBytes([]byte("offeror-01"))
	fundNative(t, eng, buyer, ledgercore.NewAmount(0))
	s := eng.State()
	s.Ledger.Credit(ledgercore.USDT, buyer, ledgercore.NewAmount(1_000_000))
	eng.Restore(s)

	require.NoError(t, eng.MakeOffer(1, buyer, listingID, ledgercore.NewAmount(1900), 10, ledgercore.USDT))

	err := eng.MakeOffer(2, buyer, listingID, ledgercore.NewAmount(1800), 5, ledgercore.USDT)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeOnlyOneOfferPerUser, settlement.CodeOf(err))
}

func TestCancelOfferReleasesHold(t *testing.T) {
	eng, listingID, _ := relistedListing(t)
	buyer := ledgercore.AccountIDFromBytes([]byte("offeror-02"))
	s := eng.State()
	s.Ledger.Credit(ledgercore.USDT, buyer, ledgercore.NewAmount(1_000_000))
	eng.Restore(s)

	require.NoError(t, eng.MakeOffer(1, buyer, listingID, ledgercore.NewAmount(1900), 10, ledgercore.USDT))
	held := eng.State().Ledger.Held(ledgercore.USDT, settlement.ReasonMarketplace, buyer)
	assert.False(t, held.IsZero())

	require.NoError(t, eng.CancelOffer(2, buyer, listingID))
	afterHeld := eng.State().Ledger.Held(ledgercore.USDT, settlement.ReasonMarketplace, buyer)
	assert.True(t, afterHeld.IsZero())
}

func TestHandleOfferAcceptTransfersTokensAndClearsOffer(t *testing.T) {
	eng, listingID, seller := relistedListing(t)
	buyer := ledgercore.AccountIDFromBytes([]byte("offeror-03"))
	s := eng.State()
	s.Ledger.Credit(ledgercore.USDT, buyer, ledgercore.NewAmount(1_000_000))
	eng.Restore(s)

	require.NoError(t, eng.MakeOffer(1, buyer, listingID, ledgercore.NewAmount(1900), 10, ledgercore.USDT))
	require.NoError(t, eng.HandleOffer(context.Background(), 3, seller, listingID, buyer, true))

	listing, ok := eng.GetSecondaryListing(listingID)
	require.True(t, ok)
	assert.Equal(t, uint32(40), listing.AmountRemaining)

	_, offerStillOpen := eng.GetOffer(listingID, buyer)
	assert.False(t, offerStillOpen)
}

func TestHandleOfferRejectReleasesHoldWithoutTransfer(t *testing.T) {
	eng, listingID, seller := relistedListing(t)
	buyer := ledgercore.AccountIDFromBytes([]byte("offeror-04"))
	s := eng.State()
	s.Ledger.Credit(ledgercore.USDT, buyer, ledgercore.NewAmount(1_000_000))
	eng.Restore(s)

	require.NoError(t, eng.MakeOffer(1, buyer, listingID, ledgercore.NewAmount(1900), 10, ledgercore.USDT))
	require.NoError(t, eng.HandleOffer(context.Background(), 3, seller, listingID, buyer, false))

	listing, ok := eng.GetSecondaryListing(listingID)
	require.True(t, ok)
	assert.Equal(t, uint32(50), listing.AmountRemaining)
}
