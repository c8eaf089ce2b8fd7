// Package ledgercore holds the account, amount, and held-balance primitives
// shared by every settlement component.
package ledgercore

import (
	"fmt"
	"math/big"

	"github.com/ugorji/go/codec"
)

// Amount is an unsigned, arbitrary-precision monetary quantity. The spec
// calls for unsigned 128-bit integers; Go has no native u128, so Amount
// wraps math/big.Int and enforces non-negativity on every operation instead
// of silently wrapping.
type Amount struct {
	v big.Int
}

// Zero is the additive identity.
var Zero = Amount{}

// NewAmount builds an Amount from a uint64, which covers every literal used
// by callers and tests.
func NewAmount(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.v.Sign() == 0
}

// Cmp compares two amounts the way big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// LessThan reports a < b.
func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

// GreaterThanOrEqual reports a >= b.
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.Cmp(b) >= 0 }

// Add returns a+b. Addition of two non-negative amounts can never underflow;
// it is checked only in the sense that the result is always well-defined.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.v.Add(&a.v, &b.v)
	return r
}

// Sub returns a-b, or ErrArithmeticUnderflow if b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.LessThan(b) {
		return Zero, fmt.Errorf("%w: %s - %s", ErrArithmeticUnderflow, a, b)
	}
	var r Amount
	r.v.Sub(&a.v, &b.v)
	return r, nil
}

// SaturatingSub returns a-b, floored at zero instead of erroring. Used by
// the protocol-pool computation in execute_deal, which the spec documents
// as "saturating subtraction".
func (a Amount) SaturatingSub(b Amount) Amount {
	if a.LessThan(b) {
		return Zero
	}
	r, _ := a.Sub(b)
	return r
}

// MulDivFloor computes floor(a*num/den) with full precision, matching the
// spec's `floor(x * pct / 100)` and `floor(x * permill / 1_000_000)` idiom.
// den must be non-zero.
func (a Amount) MulDivFloor(num, den uint64) Amount {
	var r, n, d big.Int
	n.SetUint64(num)
	d.SetUint64(den)
	r.Mul(&a.v, &n)
	r.Div(&r, &d)
	return Amount{v: r}
}

// MulUint32 multiplies by a plain token count (e.g. token_price * amount).
func (a Amount) MulUint32(n uint32) Amount {
	var r, m big.Int
	m.SetUint64(uint64(n))
	r.Mul(&a.v, &m)
	return Amount{v: r}
}

// HalveFloor returns floor(a/2), used by the operator/treasury protocol-pool
// split in execute_deal.
func (a Amount) HalveFloor() Amount {
	var r big.Int
	r.Rsh(&a.v, 1)
	return Amount{v: r}
}

func (a Amount) String() string {
	return a.v.String()
}

// MarshalJSON renders the amount as a decimal string so large values survive
// round-tripping through JSON-RPC without losing precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.String() + `"`), nil
}

// UnmarshalJSON parses a decimal string back into an Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		s = "0"
	}
	if _, ok := a.v.SetString(s, 10); !ok {
		return fmt.Errorf("ledgercore: invalid amount %q", s)
	}
	if a.v.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrArithmeticUnderflow, s)
	}
	return nil
}

// CodecEncodeSelf implements ugorji/go/codec's Selfer, which internal/storage/codec
// relies on to persist settlement.State snapshots. Amount's only field is
// unexported, so without a Selfer the default struct-field reflection would
// see nothing to write and every stored amount would decode back as zero.
func (a Amount) CodecEncodeSelf(e *codec.Encoder) {
	e.MustEncode(a.v.Bytes())
}

// CodecDecodeSelf implements ugorji/go/codec's Selfer, reversing CodecEncodeSelf.
func (a *Amount) CodecDecodeSelf(d *codec.Decoder) {
	var b []byte
	d.MustDecode(&b)
	a.v.SetBytes(b)
}
