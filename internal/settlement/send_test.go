package settlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/settlement"
)

func TestSendPropertyTokenRejectsSelfSend(t *testing.T) {
	eng, wl, _, _ := newTestEngine(t)
	account := ledgercore.AccountIDFromBytes([]byte("self-sender"))
	wl.Grant(account, ledgercore.RoleRealEstateInvestor)

	err := eng.SendPropertyToken(context.Background(), 1, account, ledgercore.AssetID(1), account, 5)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeInvalidIndex, settlement.CodeOf(err))
}

func TestSendPropertyTokenRejectsUnwhitelistedReceiver(t *testing.T) {
	eng, wl, _, _ := newTestEngine(t)
	sender := ledgercore.AccountIDFromBytes([]byte("sender-01"))
	receiver := ledgercore.AccountIDFromBytes([]byte("receiver-01"))
	wl.Grant(sender, ledgercore.RoleRealEstateInvestor)

	err := eng.SendPropertyToken(context.Background(), 1, sender, ledgercore.AssetID(1), receiver, 5)
	require.Error(t, err)
	assert.Equal(t, settlement.CodeUserNotWhitelisted, settlement.CodeOf(err))
}

func TestSendPropertyTokenSucceedsBetweenWhitelistedInvestors(t *testing.T) {
	eng, wl, asset, sender := settledAsset(t)
	receiver := ledgercore.AccountIDFromBytes([]byte("receiver-02"))
	wl.Grant(receiver, ledgercore.RoleRealEstateInvestor)

	require.NoError(t, eng.SendPropertyToken(context.Background(), 2, sender, asset, receiver, 10))
}
