// Package settlement implements the deterministic, multi-party settlement
// state machine: primary issuance, the lawyer-approval two-phase commit
// with retry and refund, the secondary relisting and offer engine, and the
// fee/tax/lawyer-cost split arithmetic.
package settlement

import (
	"sync"

	"github.com/opendeed/deedd/internal/external"
	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/logging"
	"github.com/opendeed/deedd/internal/metrics"
)

// Engine is the single serialization point for every command: it owns the
// live State and applies commands as copy-on-write transactions, the same
// "stage, then commit-or-discard" idiom the teacher's ApplyStateTable uses
// for transaction application, simplified to this domain's single-threaded
// cooperative model (spec.md §5).
type Engine struct {
	mu     sync.Mutex
	state  *State
	params Params

	whitelist external.Whitelist
	regions   external.Regions
	token     external.PropertyToken

	clock    Clock
	sink     Sink
	treasury ledgercore.AccountID

	log *logging.Logger
}

// Config bundles the collaborators and constants an Engine is wired with.
type Config struct {
	Params    Params
	Whitelist external.Whitelist
	Regions   external.Regions
	Token     external.PropertyToken
	Clock     Clock
	Sink      Sink
	Treasury  ledgercore.AccountID
}

// NewEngine returns an Engine over a fresh, empty State.
func NewEngine(cfg Config) *Engine {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink
	}
	return &Engine{
		state:     NewState(),
		params:    cfg.Params,
		whitelist: cfg.Whitelist,
		regions:   cfg.Regions,
		token:     cfg.Token,
		clock:     cfg.Clock,
		sink:      sink,
		treasury:  cfg.Treasury,
		log:       logging.New("settlement"),
	}
}

// State returns a point-in-time clone of the live state, safe for read-only
// inspection by internal/rpc's query handlers without holding the engine
// lock for the duration of the caller's use.
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Restore replaces the live state with s, for startup recovery from a
// persisted snapshot (internal/storage.Store.Load). It must be called
// before the engine serves any command.
func (e *Engine) Restore(s *State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	metrics.OpenListings.Set(float64(len(s.Listings)))
}

// txn is the per-command handler signature: given a staged, isolated copy
// of State it either returns the events to publish on commit, or an error
// that discards the entire staged copy untouched.
type txn func(s *State) ([]Event, error)

// apply runs fn against a cloned State, commits the clone and publishes its
// events only if fn succeeds, and otherwise leaves the live state exactly
// as it was (spec.md §5: "fully commits... or fully reverts with no
// observable change").
func (e *Engine) apply(fn txn) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staged := e.state.Clone()
	events, err := fn(staged)
	if err != nil {
		return err
	}
	e.state = staged
	metrics.OpenListings.Set(float64(len(staged.Listings)))
	for _, ev := range events {
		e.sink.Publish(ev)
	}
	return nil
}

// checkSequence enforces the idempotent command-replay guard
// (SPEC_FULL.md §5.1): each account's commands must be submitted with a
// strictly increasing sequence number starting at 1. A replayed or
// out-of-order sequence is rejected without mutating anything.
func checkSequence(s *State, account ledgercore.AccountID, seq uint64) error {
	want := s.Sequences[account] + 1
	if seq != want {
		return Errf(CodeAlreadyApplied, "account %s: got seq %d, want %d", account, seq, want)
	}
	s.Sequences[account] = seq
	return nil
}
