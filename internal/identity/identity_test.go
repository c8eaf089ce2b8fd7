package identity

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return secp256k1.PrivKeyFromBytes(seed[:])
}

func TestVerifyCommandAccepts(t *testing.T) {
	priv := testKey(t)
	pub := priv.PubKey().SerializeCompressed()
	payload := []byte(`{"method":"list_property","seq":1}`)

	sig := ecdsa.Sign(priv, hash32(payload))
	sigDER := sig.Serialize()

	signer, err := VerifyCommand(pub, payload, sigDER)
	require.NoError(t, err)
	assert.Equal(t, DeriveAccountID(pub), signer)
}

func TestVerifyCommandRejectsTamperedPayload(t *testing.T) {
	priv := testKey(t)
	pub := priv.PubKey().SerializeCompressed()
	payload := []byte(`{"method":"list_property","seq":1}`)
	sig := ecdsa.Sign(priv, hash32(payload))

	_, err := VerifyCommand(pub, append(payload, 'x'), sig.Serialize())
	assert.Error(t, err)
}

func TestVerifyCommandRejectsBadPubKey(t *testing.T) {
	_, err := VerifyCommand([]byte("not-a-key"), []byte("payload"), []byte("sig"))
	assert.Error(t, err)
}

func TestDeriveAccountIDStable(t *testing.T) {
	priv := testKey(t)
	pub := priv.PubKey().SerializeCompressed()
	a1 := DeriveAccountID(pub)
	a2 := DeriveAccountID(pub)
	assert.Equal(t, a1, a2)
	assert.False(t, a1.IsZero())
}

func hash32(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}
