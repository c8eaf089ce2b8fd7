package ledgercore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIDJSONRoundTrip(t *testing.T) {
	a := AccountIDFromBytes([]byte("01234567890123456789"))
	data, err := a.MarshalJSON()
	require.NoError(t, err)

	var b AccountID
	require.NoError(t, b.UnmarshalJSON(data))
	assert.Equal(t, a, b)
}

func TestAccountIDIsZero(t *testing.T) {
	var a AccountID
	assert.True(t, a.IsZero())
	a[0] = 1
	assert.False(t, a.IsZero())
}

func TestDerivePropertySubAccountDeterministic(t *testing.T) {
	a1 := DerivePropertySubAccount(AssetID(42))
	a2 := DerivePropertySubAccount(AssetID(42))
	a3 := DerivePropertySubAccount(AssetID(43))
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
}

func TestPaymentAssetValid(t *testing.T) {
	assert.True(t, USDT.Valid())
	assert.True(t, USDC.Valid())
	assert.False(t, invalidPaymentAsset.Valid())
}
