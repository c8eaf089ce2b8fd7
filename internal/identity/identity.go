// Package identity authenticates command submissions: every command in
// spec.md §6's surface "is dispatched by a signer", so the account that
// issued it must be recovered from a public key and a signature over the
// command payload before the settlement engine ever sees it. Grounded on
// the teacher's secp256k1 signing package and its RIPEMD160(SHA256(...))
// account-id recipe (internal/crypto/ids.go), generalized from XRPL
// transaction signing to this domain's command envelopes.
package identity

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// DeriveAccountID computes the account id from a compressed public key:
// RIPEMD160(SHA256(pubkey)), the same recipe ledgercore uses to derive
// PropertySubAccounts, so every account in the system (real or derived)
// is addressed the same way.
func DeriveAccountID(pubKey []byte) ledgercore.AccountID {
	sum := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sum[:])
	return ledgercore.AccountIDFromBytes(h.Sum(nil))
}

// VerifyCommand checks a DER-encoded ECDSA signature over a command
// payload and, on success, returns the signer's derived account id. The
// caller is expected to match that account id against the `from` field the
// command itself claims before applying it.
func VerifyCommand(pubKey, payload, sigDER []byte) (ledgercore.AccountID, error) {
	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return ledgercore.AccountID{}, fmt.Errorf("identity: invalid public key: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return ledgercore.AccountID{}, fmt.Errorf("identity: invalid signature encoding: %w", err)
	}
	hash := sha256.Sum256(payload)
	if !sig.Verify(hash[:], pub) {
		return ledgercore.AccountID{}, fmt.Errorf("identity: signature verification failed")
	}
	return DeriveAccountID(pubKey), nil
}
