package ledgercore

import "errors"

// Low-level arithmetic sentinels. Every settlement component wraps these
// into a settlement.Error carrying the richer semantic error kind (spec §7);
// ledgercore itself has no notion of "commands", only checked arithmetic.
var (
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")
)
