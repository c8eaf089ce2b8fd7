package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/ledgercore"
)

type sample struct {
	Name   string
	Values map[string]uint64
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{Name: "listing-1", Values: map[string]uint64{"a": 1, "b": 2}}

	data, err := Encode(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestEncodeDecodeCompressibleInput(t *testing.T) {
	// A long repeated string compresses well, exercising the flag=1 path.
	in := sample{Name: strings.Repeat("x", 4096)}

	data, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, byte(1), data[0])

	var out sample
	require.NoError(t, Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	var out sample
	err := Decode(nil, &out)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownFlag(t *testing.T) {
	var out sample
	err := Decode([]byte{9, 1, 2, 3}, &out)
	assert.Error(t, err)
}

// ledgercore.Amount keeps its value in an unexported big.Int field and
// relies on a Selfer (CodecEncodeSelf/CodecDecodeSelf) to survive this
// codec's reflection-based encoding; without it every Amount would decode
// back as zero. Exercise it directly, both bare and nested in a map value,
// since that's exactly how it's embedded in a settlement.State snapshot.
func TestEncodeDecodeAmountRoundTrip(t *testing.T) {
	in := struct {
		Price    ledgercore.Amount
		Balances map[string]ledgercore.Amount
	}{
		Price: ledgercore.NewAmount(123_456_789),
		Balances: map[string]ledgercore.Amount{
			"a": ledgercore.NewAmount(1),
			"b": ledgercore.Zero,
		},
	}

	data, err := Encode(in)
	require.NoError(t, err)

	var out struct {
		Price    ledgercore.Amount
		Balances map[string]ledgercore.Amount
	}
	require.NoError(t, Decode(data, &out))

	assert.Equal(t, 0, in.Price.Cmp(out.Price))
	require.Len(t, out.Balances, 2)
	assert.Equal(t, 0, in.Balances["a"].Cmp(out.Balances["a"]))
	assert.True(t, out.Balances["b"].IsZero())
}
