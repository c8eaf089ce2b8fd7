package settlement

import "github.com/opendeed/deedd/internal/ledgercore"

// Params holds the external percentage/limit constants named in spec.md §6:
// FeePercent and ListingDepositPercent are hundredths, MinTokens/MaxTokens
// bound token_amount on list_property.
type Params struct {
	FeePercent            uint64
	ListingDepositPercent uint64
	MinTokens             uint32
	MaxTokens             uint32
}

// DefaultParams matches the constants spec.md §8 uses for its scenarios.
func DefaultParams() Params {
	return Params{
		FeePercent:            1,
		ListingDepositPercent: 2,
		MinTokens:             100,
		MaxTokens:             250,
	}
}

// State is the complete persisted keyspace of spec.md §6, held in memory and
// mirrored to storage by internal/storage. Every map holds value types (not
// pointers) so that Clone is a correct, cheap copy-on-write snapshot: no
// handler can mutate an entry in the live state through a reference leaked
// from a staged clone.
type State struct {
	NextListingID ledgercore.ListingID

	Listings          map[ledgercore.ListingID]PropertyListing
	TokenCounters     map[ledgercore.ListingID]uint32
	TokenBuyers       map[ledgercore.ListingID]map[ledgercore.AccountID]bool
	Subscriptions     map[SubscriptionKey]InvestorSubscription
	LegalCases        map[ledgercore.ListingID]LegalCase
	RefundBooks       map[ledgercore.ListingID]RefundBook
	ListingDeposits   map[ledgercore.ListingID]ListingDeposit
	SecondaryListings map[ledgercore.ListingID]SecondaryListing
	Offers            map[OfferKey]Offer

	// SPVCreated mirrors the external PropertyToken.RegisterSPV flag so the
	// secondary market and offer engine can gate on it without a round trip
	// through the collaborator on every read (spec.md §4.G).
	SPVCreated map[ledgercore.AssetID]bool

	// Sequences backs the idempotent command-replay guard (SPEC_FULL.md
	// §5.1): the last sequence number accepted from this account; the next
	// command must carry a number one higher.
	Sequences map[ledgercore.AccountID]uint64

	// AssetRegistry retains item_id/collection_id for a settled asset past
	// the point execute_deal deletes its PropertyListing, so the secondary
	// market can still populate SecondaryListing.ItemID/CollectionID.
	AssetRegistry map[ledgercore.AssetID]AssetRecord

	Ledger *Ledger
}

// AssetRecord is the slice of PropertyListing the secondary market still
// needs once the primary listing itself is gone.
type AssetRecord struct {
	ItemID       ledgercore.ItemID
	CollectionID uint64
}

// NewState returns an empty, ready-to-use state.
func NewState() *State {
	return &State{
		NextListingID:     1,
		Listings:          make(map[ledgercore.ListingID]PropertyListing),
		TokenCounters:     make(map[ledgercore.ListingID]uint32),
		TokenBuyers:       make(map[ledgercore.ListingID]map[ledgercore.AccountID]bool),
		Subscriptions:     make(map[SubscriptionKey]InvestorSubscription),
		LegalCases:        make(map[ledgercore.ListingID]LegalCase),
		RefundBooks:       make(map[ledgercore.ListingID]RefundBook),
		ListingDeposits:   make(map[ledgercore.ListingID]ListingDeposit),
		SecondaryListings: make(map[ledgercore.ListingID]SecondaryListing),
		Offers:            make(map[OfferKey]Offer),
		SPVCreated:        make(map[ledgercore.AssetID]bool),
		Sequences:         make(map[ledgercore.AccountID]uint64),
		AssetRegistry:     make(map[ledgercore.AssetID]AssetRecord),
		Ledger:            NewLedger(),
	}
}

// Clone returns an isolated copy suitable for staging one command: every
// top-level map is rebuilt, and the one nested map (TokenBuyers' per-listing
// set) is rebuilt too so a staged mutation never aliases the live state.
func (s *State) Clone() *State {
	n := &State{
		NextListingID:     s.NextListingID,
		Listings:          make(map[ledgercore.ListingID]PropertyListing, len(s.Listings)),
		TokenCounters:     make(map[ledgercore.ListingID]uint32, len(s.TokenCounters)),
		TokenBuyers:       make(map[ledgercore.ListingID]map[ledgercore.AccountID]bool, len(s.TokenBuyers)),
		Subscriptions:     make(map[SubscriptionKey]InvestorSubscription, len(s.Subscriptions)),
		LegalCases:        make(map[ledgercore.ListingID]LegalCase, len(s.LegalCases)),
		RefundBooks:       make(map[ledgercore.ListingID]RefundBook, len(s.RefundBooks)),
		ListingDeposits:   make(map[ledgercore.ListingID]ListingDeposit, len(s.ListingDeposits)),
		SecondaryListings: make(map[ledgercore.ListingID]SecondaryListing, len(s.SecondaryListings)),
		Offers:            make(map[OfferKey]Offer, len(s.Offers)),
		SPVCreated:        make(map[ledgercore.AssetID]bool, len(s.SPVCreated)),
		Sequences:         make(map[ledgercore.AccountID]uint64, len(s.Sequences)),
		AssetRegistry:     make(map[ledgercore.AssetID]AssetRecord, len(s.AssetRegistry)),
		Ledger:            s.Ledger.Clone(),
	}
	for k, v := range s.Listings {
		n.Listings[k] = v
	}
	for k, v := range s.TokenCounters {
		n.TokenCounters[k] = v
	}
	for k, set := range s.TokenBuyers {
		ns := make(map[ledgercore.AccountID]bool, len(set))
		for a := range set {
			ns[a] = true
		}
		n.TokenBuyers[k] = ns
	}
	for k, v := range s.Subscriptions {
		n.Subscriptions[k] = v
	}
	for k, v := range s.LegalCases {
		n.LegalCases[k] = v
	}
	for k, v := range s.RefundBooks {
		n.RefundBooks[k] = v
	}
	for k, v := range s.ListingDeposits {
		n.ListingDeposits[k] = v
	}
	for k, v := range s.SecondaryListings {
		n.SecondaryListings[k] = v
	}
	for k, v := range s.Offers {
		n.Offers[k] = v
	}
	for k, v := range s.SPVCreated {
		n.SPVCreated[k] = v
	}
	for k, v := range s.Sequences {
		n.Sequences[k] = v
	}
	for k, v := range s.AssetRegistry {
		n.AssetRegistry[k] = v
	}
	return n
}
