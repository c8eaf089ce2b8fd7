package rpc_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/external/externalmock"
	"github.com/opendeed/deedd/internal/external"
	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/rpc"
	"github.com/opendeed/deedd/internal/settlement"
)

func newTestServer(t *testing.T) (*rpc.Server, *externalmock.Whitelist, *externalmock.Regions) {
	t.Helper()
	server, wl, regions, _ := newTestServerWithEngine(t)
	return server, wl, regions
}

func newTestServerWithEngine(t *testing.T) (*rpc.Server, *externalmock.Whitelist, *externalmock.Regions, *settlement.Engine) {
	t.Helper()
	wl := externalmock.NewWhitelist()
	regions := externalmock.NewRegions()
	token := externalmock.NewPropertyToken()
	eng := settlement.NewEngine(settlement.Config{
		Params:    settlement.DefaultParams(),
		Whitelist: wl,
		Regions:   regions,
		Token:     token,
		Clock:     settlement.NewBlockClock(0),
	})
	return rpc.NewServer(eng, 5*time.Second), wl, regions, eng
}

func mustParams(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestExecuteUnknownMethodReturnsMethodNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)
	_, rerr := server.Execute(context.Background(), "not_a_real_command", nil)
	require.NotNil(t, rerr)
	assert.Equal(t, rpc.RpcErrorMethodNotFound("not_a_real_command").Code, rerr.Code)
}

func TestExecuteListPropertyThenGetListing(t *testing.T) {
	server, wl, regions, eng := newTestServerWithEngine(t)
	developer := ledgercore.AccountIDFromBytes([]byte("rpc-developer-01"))
	wl.Grant(developer, ledgercore.RoleRealEstateDeveloper)
	regions.AddRegion(1, external.RegionInfo{CollectionID: 1, ListingDurationBlocks: 1000}, "1 RPC Way")
	s := eng.State()
	s.Ledger.NativeCredit(developer, ledgercore.NewAmount(1_000_000))
	eng.Restore(s)

	result, rerr := server.Execute(context.Background(), "list_property", mustParams(t, map[string]interface{}{
		"seq":                   1,
		"developer":             developer.String(),
		"region":                1,
		"location":              "1 RPC Way",
		"token_price":           "100",
		"token_amount":          150,
		"tax_paid_by_developer": false,
	}))
	require.Nil(t, rerr)
	body, ok := result.(map[string]interface{})
	require.True(t, ok)
	listingID := body["listing_id"]
	require.NotNil(t, listingID)

	getResult, rerr := server.Execute(context.Background(), "get_listing", mustParams(t, map[string]interface{}{
		"listing_id": listingID,
	}))
	require.Nil(t, rerr)
	require.NotNil(t, getResult)
}

func TestExecuteListPropertyRejectsMalformedDeveloper(t *testing.T) {
	server, _, _ := newTestServer(t)
	_, rerr := server.Execute(context.Background(), "list_property", mustParams(t, map[string]interface{}{
		"seq":          1,
		"developer":    "not-hex",
		"region":       1,
		"location":     "nowhere",
		"token_price":  "100",
		"token_amount": 150,
	}))
	require.NotNil(t, rerr)
}

func TestExecuteGetListingUnknownIDReturnsError(t *testing.T) {
	server, _, _ := newTestServer(t)
	_, rerr := server.Execute(context.Background(), "get_listing", mustParams(t, map[string]interface{}{
		"listing_id": 999,
	}))
	require.NotNil(t, rerr)
}

func TestExecuteGetAccountHistoryUnregisteredWithoutHistoryReader(t *testing.T) {
	server, _, _ := newTestServer(t)
	_, rerr := server.Execute(context.Background(), "get_account_history", mustParams(t, map[string]interface{}{
		"account": ledgercore.AccountIDFromBytes([]byte("no-history-account")).String(),
	}))
	require.NotNil(t, rerr)
	assert.Equal(t, rpc.RpcErrorMethodNotFound("get_account_history").Code, rerr.Code)
}

type fakeHistoryReader struct {
	events []settlement.Event
	err    error
}

func (f *fakeHistoryReader) ListByAccount(ctx context.Context, account ledgercore.AccountID) ([]settlement.Event, error) {
	return f.events, f.err
}

func TestExecuteGetAccountHistoryReturnsReaderEvents(t *testing.T) {
	server, _, _ := newTestServer(t)
	account := ledgercore.AccountIDFromBytes([]byte("history-account-01"))
	server.SetHistoryReader(&fakeHistoryReader{events: []settlement.Event{
		{Kind: settlement.EventObjectListed, ListingID: 1, Accounts: []ledgercore.AccountID{account}},
	}})

	result, rerr := server.Execute(context.Background(), "get_account_history", mustParams(t, map[string]interface{}{
		"account": account.String(),
	}))
	require.Nil(t, rerr)
	body, ok := result.(map[string]interface{})
	require.True(t, ok)
	events, ok := body["events"].([]settlement.Event)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, settlement.EventObjectListed, events[0].Kind)
}

func TestExecuteGetAccountHistoryRejectsMalformedAccount(t *testing.T) {
	server, _, _ := newTestServer(t)
	server.SetHistoryReader(&fakeHistoryReader{})

	_, rerr := server.Execute(context.Background(), "get_account_history", mustParams(t, map[string]interface{}{
		"account": "not-hex",
	}))
	require.NotNil(t, rerr)
}
