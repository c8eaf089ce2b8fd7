package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
	"github.com/opendeed/deedd/internal/storage/leveldb"
)

func openTestDB(t *testing.T) *leveldb.DB {
	t.Helper()
	dir, err := os.MkdirTemp("", "deedd_store_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := leveldb.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreLoadWithNoSnapshotReturnsNil(t *testing.T) {
	store := New(openTestDB(t))
	s, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := New(openTestDB(t))

	in := settlement.NewState()
	in.NextListingID = 7
	acct := ledgercore.AccountIDFromBytes([]byte("developer-account-01"))
	in.Sequences[acct] = 3

	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.NextListingID, out.NextListingID)
	assert.Equal(t, in.Sequences[acct], out.Sequences[acct])
}

// A snapshot's entire value lies in its Amounts and its Ledger balances, so
// the round trip must survive those specifically, not just the scalar
// fields above.
func TestStoreSaveLoadRoundTripPreservesFundedListingAndLedger(t *testing.T) {
	store := New(openTestDB(t))

	developer := ledgercore.AccountIDFromBytes([]byte("developer-account-02"))
	investor := ledgercore.AccountIDFromBytes([]byte("investor-account-01"))

	in := settlement.NewState()
	in.NextListingID = 2
	in.Listings[1] = settlement.PropertyListing{
		ID:          1,
		Developer:   developer,
		TokenPrice:  ledgercore.NewAmount(1000),
		TokenAmount: 150,
		CollectedFunds: ledgercore.AssetAmounts{
			USDT: ledgercore.NewAmount(42_000),
		},
	}
	in.Ledger.NativeCredit(developer, ledgercore.NewAmount(1_000_000))
	in.Ledger.Credit(ledgercore.USDT, investor, ledgercore.NewAmount(500))
	require.NoError(t, in.Ledger.Hold(ledgercore.USDT, settlement.ReasonMarketplace, investor, ledgercore.NewAmount(200)))

	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)

	listing, ok := out.Listings[1]
	require.True(t, ok)
	assert.Equal(t, 0, ledgercore.NewAmount(1000).Cmp(listing.TokenPrice))
	assert.Equal(t, 0, ledgercore.NewAmount(42_000).Cmp(listing.CollectedFunds.USDT))

	assert.Equal(t, 0, ledgercore.NewAmount(1_000_000).Cmp(out.Ledger.NativeBalance(developer)))
	assert.Equal(t, 0, ledgercore.NewAmount(300).Cmp(out.Ledger.Balance(ledgercore.USDT, investor)))
	assert.Equal(t, 0, ledgercore.NewAmount(200).Cmp(out.Ledger.Held(ledgercore.USDT, settlement.ReasonMarketplace, investor)))
}
