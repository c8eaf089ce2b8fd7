package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// ListProperty implements list_property (spec.md §4.C): mints the parent
// NFT and fractional supply through the external PropertyToken collaborator,
// takes the developer's listing deposit, and opens the primary listing.
func (e *Engine) ListProperty(
	ctx context.Context,
	seq uint64,
	developer ledgercore.AccountID,
	region ledgercore.RegionID,
	location string,
	tokenPrice ledgercore.Amount,
	tokenAmount uint32,
	taxPaidByDeveloper bool,
	metadata []byte,
) (ledgercore.ListingID, error) {
	var id ledgercore.ListingID
	err := e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, developer, seq); err != nil {
			return nil, err
		}
		if tokenPrice.IsZero() {
			return nil, Err(CodeInvalidTokenPrice)
		}
		if tokenAmount < e.params.MinTokens || tokenAmount > e.params.MaxTokens {
			if tokenAmount < e.params.MinTokens {
				return nil, Err(CodeTokenAmountTooLow)
			}
			return nil, Err(CodeTooManyToken)
		}
		ok, err := e.whitelist.IsMember(ctx, developer, ledgercore.RoleRealEstateDeveloper)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeUserNotWhitelisted)
		}
		info, ok, err := e.regions.Region(ctx, region)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeRegionUnknown)
		}
		registered, err := e.regions.LocationRegistered(ctx, region, location)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !registered {
			return nil, Err(CodeLocationUnknown)
		}

		propertyPrice := tokenPrice.MulUint32(tokenAmount)
		deposit := propertyPrice.MulDivFloor(e.params.ListingDepositPercent, 100)
		if !s.Ledger.CanWithdraw(developer, deposit) {
			return nil, Err(CodeNotEnoughFunds)
		}

		itemID, assetID, err := e.token.Create(ctx, developer, region, location, tokenAmount, propertyPrice, metadata)
		if err != nil {
			return nil, Wrap(CodeNftNotFound, err)
		}

		id = s.NextListingID
		s.NextListingID++

		listing := PropertyListing{
			ID:                 id,
			Developer:          developer,
			Region:             region,
			Location:           location,
			CollectionID:       info.CollectionID,
			ItemID:             itemID,
			AssetID:            assetID,
			TokenPrice:         tokenPrice,
			TokenAmount:        tokenAmount,
			TaxPaidByDeveloper: taxPaidByDeveloper,
			ListingExpiryBlock: e.clock.BlockHeight() + info.ListingDurationBlocks,
		}
		s.Listings[id] = listing
		s.TokenCounters[id] = tokenAmount

		if err := s.Ledger.NativeHold(ReasonListingDepositReserve, developer, deposit); err != nil {
			return nil, err
		}
		s.ListingDeposits[id] = ListingDeposit{ListingID: id, Depositor: developer, Amount: deposit}

		return []Event{{
			Kind:      EventObjectListed,
			ListingID: id,
			AssetID:   assetID,
			Accounts:  []ledgercore.AccountID{developer},
			Amount:    tokenAmount,
			Price:     tokenPrice,
		}}, nil
	})
	return id, err
}

// UpgradeObject implements upgrade_object (spec.md §4.G): the developer may
// reprice a primary listing while it is still open, not expired, and has
// not sold a single token.
func (e *Engine) UpgradeObject(seq uint64, developer ledgercore.AccountID, listingID ledgercore.ListingID, newPrice ledgercore.Amount) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, developer, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		if listing.Developer != developer {
			return nil, Err(CodeNoPermission)
		}
		counter, open := s.TokenCounters[listingID]
		if !open {
			return nil, Err(CodePropertyAlreadySold)
		}
		if counter != listing.TokenAmount {
			return nil, Err(CodePropertyAlreadySold)
		}
		if e.clock.BlockHeight() >= listing.ListingExpiryBlock {
			return nil, Err(CodeListingExpired)
		}
		if newPrice.IsZero() {
			return nil, Err(CodeInvalidTokenPrice)
		}
		listing.TokenPrice = newPrice
		s.Listings[listingID] = listing
		return nil, nil
	})
}
