package settlement

// Clock supplies the current block height, the only notion of time the
// core uses (listing_expiry comparisons, spec.md §5: "enforced by comparing
// block height at operation entry"). Production wiring reads this off the
// host chain; tests use a manually-advanced counter.
type Clock interface {
	BlockHeight() uint64
}

// BlockClock is a simple in-memory Clock, advanced explicitly by the host
// (or by a test) after each block closes.
type BlockClock struct {
	height uint64
}

// NewBlockClock returns a clock starting at the given height.
func NewBlockClock(start uint64) *BlockClock {
	return &BlockClock{height: start}
}

func (c *BlockClock) BlockHeight() uint64 { return c.height }

// Advance moves the clock forward by n blocks and returns the new height.
func (c *BlockClock) Advance(n uint64) uint64 {
	c.height += n
	return c.height
}

// Set pins the clock to an exact height, used by tests that assert
// behavior at a precise boundary (e.g. exactly at listing_expiry).
func (c *BlockClock) Set(height uint64) {
	c.height = height
}
