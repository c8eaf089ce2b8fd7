package rpc

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeed/deedd/internal/identity"
)

func signPayload(t *testing.T, payload []byte) (pubKeyHex, sigHex string, pub []byte) {
	t.Helper()
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 7)
	}
	priv := secp256k1.PrivKeyFromBytes(seed[:])
	pub = priv.PubKey().SerializeCompressed()
	hash := sha256.Sum256(payload)
	sig := ecdsa.Sign(priv, hash[:])
	return hex.EncodeToString(pub), hex.EncodeToString(sig.Serialize()), pub
}

func TestAuthMiddlewarePassesThroughValidSignature(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"ping"}`)
	pubHex, sigHex, pub := signPayload(t, body)

	var gotSigner string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := SignerFromContext(r.Context())
		require.True(t, ok)
		gotSigner = a.String()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)))
	req.Header.Set("X-Public-Key", pubHex)
	req.Header.Set("X-Signature", sigHex)
	rec := httptest.NewRecorder()

	AuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, identity.DeriveAccountID(pub).String(), gotSigner)
}

func TestAuthMiddlewareRejectsMissingHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	AuthMiddleware(next).ServeHTTP(rec, req)

	var resp JsonRpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, RpcCommandUntrusted, resp.Error.Code)
}

func TestAuthMiddlewareRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"ping"}`)
	pubHex, sigHex, _ := signPayload(t, body)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)+"tampered"))
	req.Header.Set("X-Public-Key", pubHex)
	req.Header.Set("X-Signature", sigHex)
	rec := httptest.NewRecorder()

	AuthMiddleware(next).ServeHTTP(rec, req)

	var resp JsonRpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestAuthMiddlewareSkipsGetRequests(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/?command=ping", nil)
	rec := httptest.NewRecorder()

	AuthMiddleware(next).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
