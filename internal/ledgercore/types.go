package ledgercore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize matches the teacher's 160-bit account identifier width.
const AccountIDSize = 20

// AccountID identifies any party in the system: developer, investor, lawyer,
// regional operator, treasury, or a derived PropertySubAccount.
type AccountID [AccountIDSize]byte

func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalJSON renders the account id as its hex string, matching parseAccount
// in internal/rpc and the Amount.MarshalJSON convention of wire-safe strings.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a hex string back into an AccountID.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != AccountIDSize {
		return fmt.Errorf("ledgercore: invalid account id %q", s)
	}
	copy(a[:], b)
	return nil
}

// IsZero reports whether this is the zero account, used as "no lawyer
// claimed yet" in LegalCase.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// AccountIDFromBytes truncates/copies b into a fixed-width AccountID.
func AccountIDFromBytes(b []byte) AccountID {
	var a AccountID
	copy(a[:], b)
	return a
}

// RegionID, ItemID and AssetID are opaque identifiers minted by the external
// region/NFT collaborators (spec.md §6); the core never interprets them.
type (
	RegionID uint32
	ItemID   uint64
	AssetID  uint64
	ListingID uint32
)

// Role enumerates the whitelist roles the external Whitelist collaborator
// checks membership against.
type Role int

const (
	RoleRealEstateDeveloper Role = iota
	RoleRealEstateInvestor
	RoleLawyer
	RoleRegionalOperator
)

func (r Role) String() string {
	switch r {
	case RoleRealEstateDeveloper:
		return "RealEstateDeveloper"
	case RoleRealEstateInvestor:
		return "RealEstateInvestor"
	case RoleLawyer:
		return "Lawyer"
	case RoleRegionalOperator:
		return "RegionalOperator"
	default:
		return "Unknown"
	}
}

// PaymentAsset is drawn from the closed set P = {USDT, USDC} (spec.md §3).
type PaymentAsset uint8

const (
	USDT PaymentAsset = iota
	USDC
	invalidPaymentAsset
)

// PaymentAssets lists the closed set P in a stable order, used wherever the
// spec says "for each p in P".
var PaymentAssets = [2]PaymentAsset{USDT, USDC}

func (p PaymentAsset) String() string {
	switch p {
	case USDT:
		return "USDT"
	case USDC:
		return "USDC"
	default:
		return "INVALID"
	}
}

// Valid reports whether p is one of the two supported payment assets.
func (p PaymentAsset) Valid() bool {
	return p == USDT || p == USDC
}

// NativeCurrency is the single external constant identifying the chain's
// native deposit currency (spec.md §6); it is never one of PaymentAssets.
const NativeCurrency = "NATIVE"

// AssetAmounts is the fixed-arity replacement for the spec's
// "map<PaymentAsset,u128>" (Design Note, spec.md §9): since P has exactly
// two members, a struct is simpler and total, and there is no
// ExceedsMaxEntries error to model because there is no variable-arity map.
type AssetAmounts struct {
	USDT Amount
	USDC Amount
}

// Get returns the amount held under the given payment asset.
func (a AssetAmounts) Get(p PaymentAsset) Amount {
	switch p {
	case USDT:
		return a.USDT
	case USDC:
		return a.USDC
	default:
		return Zero
	}
}

// Set returns a copy of a with p's amount replaced.
func (a AssetAmounts) Set(p PaymentAsset, v Amount) AssetAmounts {
	switch p {
	case USDT:
		a.USDT = v
	case USDC:
		a.USDC = v
	}
	return a
}

// AddTo returns a copy of a with v added to p's amount.
func (a AssetAmounts) AddTo(p PaymentAsset, v Amount) AssetAmounts {
	return a.Set(p, a.Get(p).Add(v))
}

// SubFrom returns a copy of a with v subtracted from p's amount, or an error
// if that would underflow.
func (a AssetAmounts) SubFrom(p PaymentAsset, v Amount) (AssetAmounts, error) {
	cur, err := a.Get(p).Sub(v)
	if err != nil {
		return a, err
	}
	return a.Set(p, cur), nil
}

// Sum returns the sum across the whole closed set P (used by invariants I1,
// I8, and the held-escrow checks).
func (a AssetAmounts) Sum() Amount {
	return a.USDT.Add(a.USDC)
}

// DerivePropertySubAccount deterministically derives the per-asset escrow
// account for asset_id, the same RIPEMD160(SHA256(...)) recipe the teacher
// uses for CalcAccountID, so the sub-account is state-free and recoverable
// from the asset id alone (spec.md §9).
func DerivePropertySubAccount(asset AssetID) AccountID {
	var buf [9]byte
	buf[0] = 'P'
	for i := 0; i < 8; i++ {
		buf[1+i] = byte(asset >> (8 * i))
	}
	sum := sha256.Sum256(buf[:])
	h := ripemd160.New()
	h.Write(sum[:])
	return AccountIDFromBytes(h.Sum(nil))
}
