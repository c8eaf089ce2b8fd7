package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// RelistToken implements relist_token (spec.md §4.G): a token holder escrows
// amount property tokens into the asset's PropertySubAccount and opens a
// new secondary listing at token_price.
func (e *Engine) RelistToken(
	ctx context.Context,
	seq uint64,
	seller ledgercore.AccountID,
	asset ledgercore.AssetID,
	tokenPrice ledgercore.Amount,
	amount uint32,
) (ledgercore.ListingID, error) {
	var id ledgercore.ListingID
	err := e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, seller, seq); err != nil {
			return nil, err
		}
		if tokenPrice.IsZero() {
			return nil, Err(CodeInvalidTokenPrice)
		}
		if amount == 0 {
			return nil, Err(CodeAmountCannotBeZero)
		}
		if !s.SPVCreated[asset] {
			return nil, Err(CodeSpvNotCreated)
		}
		ok, err := e.whitelist.IsMember(ctx, seller, ledgercore.RoleRealEstateInvestor)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeUserNotWhitelisted)
		}
		record := s.AssetRegistry[asset]
		subAccount := ledgercore.DerivePropertySubAccount(asset)
		if err := e.token.Transfer(ctx, asset, seller, seller, subAccount, amount); err != nil {
			return nil, Wrap(CodeNotEnoughToken, err)
		}

		id = s.NextListingID
		s.NextListingID++
		s.SecondaryListings[id] = SecondaryListing{
			ID:              id,
			Seller:          seller,
			AssetID:         asset,
			ItemID:          record.ItemID,
			CollectionID:    record.CollectionID,
			TokenPrice:      tokenPrice,
			AmountRemaining: amount,
		}
		return nil, nil
	})
	return id, err
}

// buyRelisted is the shared buy path for buy_relisted_token and an accepted
// offer (spec.md §4.G, §4.H): pay price split as fee+seller_part, hand the
// escrowed tokens to the buyer, and shrink or close the listing.
func (e *Engine) buyRelisted(ctx context.Context, s *State, buyer ledgercore.AccountID, listingID ledgercore.ListingID, amount uint32, tokenPrice ledgercore.Amount, asset ledgercore.PaymentAsset) (Event, error) {
	listing, ok := s.SecondaryListings[listingID]
	if !ok {
		return Event{}, Err(CodeInvalidIndex)
	}
	if listing.AmountRemaining < amount {
		return Event{}, Err(CodeNotEnoughTokenAvailable)
	}

	price := tokenPrice.MulUint32(amount)
	fee := price.MulDivFloor(e.params.FeePercent, 100)
	sellerPart := price.SaturatingSub(fee)

	if !fee.IsZero() {
		if err := s.Ledger.Transfer(asset, buyer, e.treasury, fee); err != nil {
			return Event{}, err
		}
	}
	if err := s.Ledger.Transfer(asset, buyer, listing.Seller, sellerPart); err != nil {
		return Event{}, err
	}

	subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)
	if err := e.token.Transfer(ctx, listing.AssetID, subAccount, subAccount, buyer, amount); err != nil {
		return Event{}, Wrap(CodeTokenOwnerNotFound, err)
	}

	listing.AmountRemaining -= amount
	if listing.AmountRemaining == 0 {
		delete(s.SecondaryListings, listingID)
	} else {
		s.SecondaryListings[listingID] = listing
	}

	return Event{
		Kind:      EventRelistedTokenBought,
		ListingID: listingID,
		AssetID:   listing.AssetID,
		Accounts:  []ledgercore.AccountID{buyer, listing.Seller},
		Amount:    amount,
		Price:     tokenPrice,
		Asset:     asset,
	}, nil
}

// BuyRelistedToken implements buy_relisted_token (spec.md §4.G).
func (e *Engine) BuyRelistedToken(ctx context.Context, seq uint64, buyer ledgercore.AccountID, listingID ledgercore.ListingID, amount uint32, asset ledgercore.PaymentAsset) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, buyer, seq); err != nil {
			return nil, err
		}
		if !asset.Valid() {
			return nil, Err(CodePaymentAssetNotSupported)
		}
		listing, ok := s.SecondaryListings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		ok, err := e.whitelist.IsMember(ctx, buyer, ledgercore.RoleRealEstateInvestor)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeUserNotWhitelisted)
		}
		ev, err := e.buyRelisted(ctx, s, buyer, listingID, amount, listing.TokenPrice, asset)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil
	})
}

// UpgradeListing implements upgrade_listing (spec.md §4.G).
func (e *Engine) UpgradeListing(seq uint64, seller ledgercore.AccountID, listingID ledgercore.ListingID, newPrice ledgercore.Amount) error {
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
		if newPrice.IsZero() {
			return nil, Err(CodeInvalidTokenPrice)
		}
		listing.TokenPrice = newPrice
		s.SecondaryListings[listingID] = listing
		return nil, nil
	})
}

// DelistToken implements delist_token (spec.md §4.G): the seller reclaims
// whatever tokens remain escrowed and the listing is removed.
func (e *Engine) DelistToken(ctx context.Context, seq uint64, seller ledgercore.AccountID, listingID ledgercore.ListingID) error {
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
		subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)
		if err := e.token.Transfer(ctx, listing.AssetID, subAccount, subAccount, seller, listing.AmountRemaining); err != nil {
			return nil, Wrap(CodeTokenOwnerNotFound, err)
		}
		delete(s.SecondaryListings, listingID)
		return nil, nil
	})
}
