package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// MakeOffer implements make_offer (spec.md §4.H): an offeror locks
// offer_price*amount in payment_asset against a secondary listing, subject
// to at most one offer per (listing, offeror).
func (e *Engine) MakeOffer(
	seq uint64,
	offeror ledgercore.AccountID,
	listingID ledgercore.ListingID,
	offerPrice ledgercore.Amount,
	amount uint32,
	asset ledgercore.PaymentAsset,
) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, offeror, seq); err != nil {
			return nil, err
		}
		if offerPrice.IsZero() {
			return nil, Err(CodeInvalidTokenPrice)
		}
		if amount == 0 {
			return nil, Err(CodeAmountCannotBeZero)
		}
		if !asset.Valid() {
			return nil, Err(CodePaymentAssetNotSupported)
		}
		key := OfferKey{ListingID: listingID, Buyer: offeror}
		if _, exists := s.Offers[key]; exists {
			return nil, Err(CodeOnlyOneOfferPerUser)
		}
		listing, ok := s.SecondaryListings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		if listing.AmountRemaining < amount {
			return nil, Err(CodeNotEnoughTokenAvailable)
		}
		total := offerPrice.MulUint32(amount)
		if err := s.Ledger.Hold(asset, ReasonMarketplace, offeror, total); err != nil {
			return nil, err
		}
		s.Offers[key] = Offer{
			ListingID:    listingID,
			Buyer:        offeror,
			TokenPrice:   offerPrice,
			Amount:       amount,
			PaymentAsset: asset,
		}
		return []Event{{
			Kind:      EventOfferMade,
			ListingID: listingID,
			AssetID:   listing.AssetID,
			Accounts:  []ledgercore.AccountID{offeror},
			Amount:    amount,
			Price:     offerPrice,
			Asset:     asset,
		}}, nil
	})
}

// HandleOffer implements handle_offer (spec.md §4.H): the listing's seller
// accepts (running the same buy path as buy_relisted_token at the offered
// price) or rejects an offer; either way the offeror's hold is released.
func (e *Engine) HandleOffer(ctx context.Context, seq uint64, seller ledgercore.AccountID, listingID ledgercore.ListingID, offeror ledgercore.AccountID, accept bool) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, seller, seq); err != nil {
			return nil, err
		}
		listing, ok := s.SecondaryListings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		if listing.Seller != seller {
			return nil, Err(CodeNoPermission)
		}
		key := OfferKey{ListingID: listingID, Buyer: offeror}
		offer, ok := s.Offers[key]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		total := offer.TokenPrice.MulUint32(offer.Amount)
		if err := s.Ledger.Release(offer.PaymentAsset, ReasonMarketplace, offeror, total, true); err != nil {
			return nil, err
		}
		delete(s.Offers, key)

		if !accept {
			return []Event{{
				Kind:      EventOfferRejected,
				ListingID: listingID,
				AssetID:   listing.AssetID,
				Accounts:  []ledgercore.AccountID{offeror},
			}}, nil
		}

		ev, err := e.buyRelisted(ctx, s, offeror, listingID, offer.Amount, offer.TokenPrice, offer.PaymentAsset)
		if err != nil {
			return nil, err
		}
		ev.Kind = EventOfferAccepted
		return []Event{ev}, nil
	})
}

// CancelOffer implements cancel_offer (spec.md §4.H).
func (e *Engine) CancelOffer(seq uint64, offeror ledgercore.AccountID, listingID ledgercore.ListingID) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, offeror, seq); err != nil {
			return nil, err
		}
		key := OfferKey{ListingID: listingID, Buyer: offeror}
		offer, ok := s.Offers[key]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		total := offer.TokenPrice.MulUint32(offer.Amount)
		if err := s.Ledger.Release(offer.PaymentAsset, ReasonMarketplace, offeror, total, true); err != nil {
			return nil, err
		}
		delete(s.Offers, key)
		return []Event{{
			Kind:      EventOfferCancelled,
			ListingID: listingID,
			Accounts:  []ledgercore.AccountID{offeror},
		}}, nil
	})
}
