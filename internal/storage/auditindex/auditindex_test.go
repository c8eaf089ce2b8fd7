package auditindex

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
	"github.com/opendeed/deedd/internal/storage/database/pebble"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	dir, err := os.MkdirTemp("", "deedd_auditindex_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	mgr := pebble.NewManager(dir)
	t.Cleanup(func() { mgr.Close() })

	db, err := mgr.OpenDB("auditindex")
	require.NoError(t, err)
	return New(db)
}

func TestPublishSkipsEventsWithNoAccounts(t *testing.T) {
	idx := openTestIndex(t)
	idx.Publish(settlement.Event{Kind: settlement.EventObjectListed})

	events, err := idx.ListByAccount(context.Background(), ledgercore.AccountIDFromBytes([]byte("nobody")))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPublishIndexesEventUnderEveryNamedAccount(t *testing.T) {
	idx := openTestIndex(t)
	developer := ledgercore.AccountIDFromBytes([]byte("history-developer-01"))
	investor := ledgercore.AccountIDFromBytes([]byte("history-investor-01"))

	idx.Publish(settlement.Event{
		Kind:      settlement.EventPropertyTokenBought,
		ListingID: 1,
		Accounts:  []ledgercore.AccountID{developer, investor},
		Amount:    10,
		Price:     ledgercore.NewAmount(500),
	})

	for _, account := range []ledgercore.AccountID{developer, investor} {
		events, err := idx.ListByAccount(context.Background(), account)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, settlement.EventPropertyTokenBought, events[0].Kind)
		assert.Equal(t, 0, ledgercore.NewAmount(500).Cmp(events[0].Price))
	}

	unrelated := ledgercore.AccountIDFromBytes([]byte("history-bystander-01"))
	events, err := idx.ListByAccount(context.Background(), unrelated)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListByAccountReturnsEventsOldestFirst(t *testing.T) {
	idx := openTestIndex(t)
	account := ledgercore.AccountIDFromBytes([]byte("history-sequence-01"))

	idx.Publish(settlement.Event{Kind: settlement.EventObjectListed, ListingID: 1, Accounts: []ledgercore.AccountID{account}})
	idx.Publish(settlement.Event{Kind: settlement.EventPropertyTokenBought, ListingID: 1, Accounts: []ledgercore.AccountID{account}})
	idx.Publish(settlement.Event{Kind: settlement.EventLegalCaseSettled, ListingID: 1, Accounts: []ledgercore.AccountID{account}})

	events, err := idx.ListByAccount(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, settlement.EventObjectListed, events[0].Kind)
	assert.Equal(t, settlement.EventPropertyTokenBought, events[1].Kind)
	assert.Equal(t, settlement.EventLegalCaseSettled, events[2].Kind)
}
