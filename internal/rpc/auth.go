package rpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/opendeed/deedd/internal/identity"
	"github.com/opendeed/deedd/internal/ledgercore"
)

type contextKey int

const signerContextKey contextKey = 0

// SignerFromContext returns the account id identity.VerifyCommand recovered
// for this request, if AuthMiddleware ran and the request carried a valid
// signature.
func SignerFromContext(ctx context.Context) (ledgercore.AccountID, bool) {
	a, ok := ctx.Value(signerContextKey).(ledgercore.AccountID)
	return a, ok
}

// AuthMiddleware verifies the X-Public-Key/X-Signature headers against the
// request body with identity.VerifyCommand before handing the request to
// next, so every command the dispatcher in commands.go sees is already
// attributed to a real signer (see the comment on handlePostRequest). GET
// requests (read-only queries) pass through unauthenticated.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeAuthError(w, RpcErrorInternal("failed to read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		pubKeyHex := r.Header.Get("X-Public-Key")
		sigHex := r.Header.Get("X-Signature")
		if pubKeyHex == "" || sigHex == "" {
			writeAuthError(w, NewRpcError(RpcCommandUntrusted, "commandUntrusted", "missing X-Public-Key/X-Signature headers"))
			return
		}

		pubKey, err := hex.DecodeString(pubKeyHex)
		if err != nil {
			writeAuthError(w, RpcErrorInvalidParams("X-Public-Key must be hex"))
			return
		}
		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			writeAuthError(w, RpcErrorInvalidParams("X-Signature must be hex"))
			return
		}

		signer, err := identity.VerifyCommand(pubKey, body, sig)
		if err != nil {
			writeAuthError(w, NewRpcError(RpcCommandUntrusted, "commandUntrusted", err.Error()))
			return
		}

		ctx := context.WithValue(r.Context(), signerContextKey, signer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, rpcErr *RpcError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(JsonRpcResponse{JsonRpc: "2.0", Error: rpcErr})
}
