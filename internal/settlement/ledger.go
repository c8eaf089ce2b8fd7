package settlement

import (
	"github.com/ugorji/go/codec"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// HoldReason names why funds are locked in held balance (spec.md §3, §4.A).
type HoldReason int

const (
	ReasonMarketplace HoldReason = iota
	ReasonListingDepositReserve
)

type paymentKey struct {
	asset   ledgercore.PaymentAsset
	account ledgercore.AccountID
}

type heldKey struct {
	asset   ledgercore.PaymentAsset
	reason  HoldReason
	account ledgercore.AccountID
}

type nativeHeldKey struct {
	reason  HoldReason
	account ledgercore.AccountID
}

// Ledger is the uniform facade over fungible payment-asset balances and
// native-currency balances, both liquid and held (spec.md §4.A). Property
// token balances are not modeled here: they are owned entirely by the
// external PropertyToken collaborator (spec.md §1 Non-goals).
//
// Every map is keyed by value types and every stored value is an immutable
// ledgercore.Amount, so State.Clone can copy these maps shallowly and still
// get full copy-on-write isolation between the live state and a staged
// command (spec.md §5).
type Ledger struct {
	liquid       map[paymentKey]ledgercore.Amount
	held         map[heldKey]ledgercore.Amount
	nativeLiquid map[ledgercore.AccountID]ledgercore.Amount
	nativeHeld   map[nativeHeldKey]ledgercore.Amount
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		liquid:       make(map[paymentKey]ledgercore.Amount),
		held:         make(map[heldKey]ledgercore.Amount),
		nativeLiquid: make(map[ledgercore.AccountID]ledgercore.Amount),
		nativeHeld:   make(map[nativeHeldKey]ledgercore.Amount),
	}
}

// Clone returns a deep-enough copy for copy-on-write staging: every map is
// rebuilt, every value is an immutable Amount.
func (l *Ledger) Clone() *Ledger {
	n := NewLedger()
	for k, v := range l.liquid {
		n.liquid[k] = v
	}
	for k, v := range l.held {
		n.held[k] = v
	}
	for k, v := range l.nativeLiquid {
		n.nativeLiquid[k] = v
	}
	for k, v := range l.nativeHeld {
		n.nativeHeld[k] = v
	}
	return n
}

// Balance returns account's liquid balance of asset.
func (l *Ledger) Balance(asset ledgercore.PaymentAsset, account ledgercore.AccountID) ledgercore.Amount {
	return l.liquid[paymentKey{asset, account}]
}

// Held returns account's held balance of asset under reason.
func (l *Ledger) Held(asset ledgercore.PaymentAsset, reason HoldReason, account ledgercore.AccountID) ledgercore.Amount {
	return l.held[heldKey{asset, reason, account}]
}

// NativeBalance returns account's liquid native balance.
func (l *Ledger) NativeBalance(account ledgercore.AccountID) ledgercore.Amount {
	return l.nativeLiquid[account]
}

// NativeHeld returns account's held native balance under reason.
func (l *Ledger) NativeHeld(reason HoldReason, account ledgercore.AccountID) ledgercore.Amount {
	return l.nativeHeld[nativeHeldKey{reason, account}]
}

// Credit mints liquid balance out of thin air. It funds accounts in tests,
// and Transfer and Release use it to land the receiving side of a move.
func (l *Ledger) Credit(asset ledgercore.PaymentAsset, account ledgercore.AccountID, amount ledgercore.Amount) {
	l.liquid[paymentKey{asset, account}] = l.Balance(asset, account).Add(amount)
}

// NativeCredit mints native liquid balance.
func (l *Ledger) NativeCredit(account ledgercore.AccountID, amount ledgercore.Amount) {
	l.nativeLiquid[account] = l.NativeBalance(account).Add(amount)
}

// CanWithdraw reports whether account's native liquid balance covers
// amount (spec.md §4.A can_withdraw).
func (l *Ledger) CanWithdraw(account ledgercore.AccountID, amount ledgercore.Amount) bool {
	return l.NativeBalance(account).GreaterThanOrEqual(amount)
}

// Hold moves amount from account's liquid balance into its held balance
// under reason. Fails without mutating anything if the liquid balance is
// insufficient (spec.md §4.A: "atomic per call; failure leaves all balances
// unchanged").
func (l *Ledger) Hold(asset ledgercore.PaymentAsset, reason HoldReason, account ledgercore.AccountID, amount ledgercore.Amount) error {
	bal := l.Balance(asset, account)
	newBal, err := bal.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.liquid[paymentKey{asset, account}] = newBal
	k := heldKey{asset, reason, account}
	l.held[k] = l.held[k].Add(amount)
	return nil
}

// Release moves amount back from held to liquid. If exact is true the held
// balance must contain exactly amount (used by cancel/refund paths that
// must release a precise accrual); if false, amount may be less than what
// is held.
func (l *Ledger) Release(asset ledgercore.PaymentAsset, reason HoldReason, account ledgercore.AccountID, amount ledgercore.Amount, exact bool) error {
	k := heldKey{asset, reason, account}
	cur := l.held[k]
	if exact && cur.Cmp(amount) != 0 {
		return Errf(CodeInternal, "held balance mismatch: have %s want %s", cur, amount)
	}
	newHeld, err := cur.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.held[k] = newHeld
	l.liquid[paymentKey{asset, account}] = l.Balance(asset, account).Add(amount)
	return nil
}

// Transfer moves amount of liquid balance from one account to another.
func (l *Ledger) Transfer(asset ledgercore.PaymentAsset, from, to ledgercore.AccountID, amount ledgercore.Amount) error {
	bal := l.Balance(asset, from)
	newBal, err := bal.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.liquid[paymentKey{asset, from}] = newBal
	l.Credit(asset, to, amount)
	return nil
}

// NativeHold, NativeRelease and NativeTransfer are the native-currency
// equivalents of Hold/Release/Transfer, used for the listing deposit.
func (l *Ledger) NativeHold(reason HoldReason, account ledgercore.AccountID, amount ledgercore.Amount) error {
	bal := l.NativeBalance(account)
	newBal, err := bal.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.nativeLiquid[account] = newBal
	k := nativeHeldKey{reason, account}
	l.nativeHeld[k] = l.nativeHeld[k].Add(amount)
	return nil
}

func (l *Ledger) NativeRelease(reason HoldReason, account ledgercore.AccountID, amount ledgercore.Amount, exact bool) error {
	k := nativeHeldKey{reason, account}
	cur := l.nativeHeld[k]
	if exact && cur.Cmp(amount) != 0 {
		return Errf(CodeInternal, "native held balance mismatch: have %s want %s", cur, amount)
	}
	newHeld, err := cur.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.nativeHeld[k] = newHeld
	l.NativeCredit(account, amount)
	return nil
}

func (l *Ledger) NativeTransfer(from, to ledgercore.AccountID, amount ledgercore.Amount) error {
	bal := l.NativeBalance(from)
	newBal, err := bal.Sub(amount)
	if err != nil {
		return Err(CodeNotEnoughFunds)
	}
	l.nativeLiquid[from] = newBal
	l.NativeCredit(to, amount)
	return nil
}

// ledgerSnapshot is the exported, flattened form of Ledger's four private
// maps, used only by CodecEncodeSelf/CodecDecodeSelf below. Every mutation
// outside of persistence still goes through Hold/Release/Credit/Transfer;
// this exists purely so internal/storage/codec's ugorji-based snapshot
// encoder has exported fields to see.
type ledgerSnapshot struct {
	Liquid       []ledgerBalanceEntry
	Held         []ledgerHeldBalanceEntry
	NativeLiquid []ledgerNativeBalanceEntry
	NativeHeld   []ledgerNativeHeldBalanceEntry
}

type ledgerBalanceEntry struct {
	Asset   ledgercore.PaymentAsset
	Account ledgercore.AccountID
	Amount  ledgercore.Amount
}

type ledgerHeldBalanceEntry struct {
	Asset   ledgercore.PaymentAsset
	Reason  HoldReason
	Account ledgercore.AccountID
	Amount  ledgercore.Amount
}

type ledgerNativeBalanceEntry struct {
	Account ledgercore.AccountID
	Amount  ledgercore.Amount
}

type ledgerNativeHeldBalanceEntry struct {
	Reason  HoldReason
	Account ledgercore.AccountID
	Amount  ledgercore.Amount
}

// CodecEncodeSelf implements ugorji/go/codec's Selfer. Ledger's balance maps
// are unexported (so callers can only mutate them through Hold/Release/
// Credit/Transfer), which also means the default struct-field reflection
// internal/storage/codec relies on for State snapshots would see nothing to
// write; this flattens them into ledgerSnapshot instead.
func (l *Ledger) CodecEncodeSelf(e *codec.Encoder) {
	snap := ledgerSnapshot{
		Liquid:       make([]ledgerBalanceEntry, 0, len(l.liquid)),
		Held:         make([]ledgerHeldBalanceEntry, 0, len(l.held)),
		NativeLiquid: make([]ledgerNativeBalanceEntry, 0, len(l.nativeLiquid)),
		NativeHeld:   make([]ledgerNativeHeldBalanceEntry, 0, len(l.nativeHeld)),
	}
	for k, v := range l.liquid {
		snap.Liquid = append(snap.Liquid, ledgerBalanceEntry{Asset: k.asset, Account: k.account, Amount: v})
	}
	for k, v := range l.held {
		snap.Held = append(snap.Held, ledgerHeldBalanceEntry{Asset: k.asset, Reason: k.reason, Account: k.account, Amount: v})
	}
	for k, v := range l.nativeLiquid {
		snap.NativeLiquid = append(snap.NativeLiquid, ledgerNativeBalanceEntry{Account: k, Amount: v})
	}
	for k, v := range l.nativeHeld {
		snap.NativeHeld = append(snap.NativeHeld, ledgerNativeHeldBalanceEntry{Reason: k.reason, Account: k.account, Amount: v})
	}
	e.MustEncode(snap)
}

// CodecDecodeSelf implements ugorji/go/codec's Selfer, rebuilding the
// private balance maps from the flattened form CodecEncodeSelf wrote.
func (l *Ledger) CodecDecodeSelf(d *codec.Decoder) {
	var snap ledgerSnapshot
	d.MustDecode(&snap)

	l.liquid = make(map[paymentKey]ledgercore.Amount, len(snap.Liquid))
	for _, entry := range snap.Liquid {
		l.liquid[paymentKey{asset: entry.Asset, account: entry.Account}] = entry.Amount
	}
	l.held = make(map[heldKey]ledgercore.Amount, len(snap.Held))
	for _, entry := range snap.Held {
		l.held[heldKey{asset: entry.Asset, reason: entry.Reason, account: entry.Account}] = entry.Amount
	}
	l.nativeLiquid = make(map[ledgercore.AccountID]ledgercore.Amount, len(snap.NativeLiquid))
	for _, entry := range snap.NativeLiquid {
		l.nativeLiquid[entry.Account] = entry.Amount
	}
	l.nativeHeld = make(map[nativeHeldKey]ledgercore.Amount, len(snap.NativeHeld))
	for _, entry := range snap.NativeHeld {
		l.nativeHeld[nativeHeldKey{reason: entry.Reason, account: entry.Account}] = entry.Amount
	}
}
