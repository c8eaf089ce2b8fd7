package settlement

import "github.com/opendeed/deedd/internal/ledgercore"

// The read-only query surface (SPEC_FULL.md §5.1) takes a lock just long
// enough to copy the requested record; it never touches the copy-on-write
// apply path since it never mutates anything.

// GetListing returns the primary listing, if any.
func (e *Engine) GetListing(id ledgercore.ListingID) (PropertyListing, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.state.Listings[id]
	return l, ok
}

// GetSubscription returns one investor's subscription on a primary listing.
func (e *Engine) GetSubscription(investor ledgercore.AccountID, id ledgercore.ListingID) (InvestorSubscription, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub, ok := e.state.Subscriptions[SubscriptionKey{Investor: investor, ListingID: id}]
	return sub, ok
}

// GetLegalCase returns a listing's in-flight legal case.
func (e *Engine) GetLegalCase(id ledgercore.ListingID) (LegalCase, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lc, ok := e.state.LegalCases[id]
	return lc, ok
}

// GetSecondaryListing returns a secondary-market listing.
func (e *Engine) GetSecondaryListing(id ledgercore.ListingID) (SecondaryListing, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.state.SecondaryListings[id]
	return l, ok
}

// GetOffer returns a buyer's offer against a secondary listing.
func (e *Engine) GetOffer(id ledgercore.ListingID, buyer ledgercore.AccountID) (Offer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.state.Offers[OfferKey{ListingID: id, Buyer: buyer}]
	return o, ok
}
