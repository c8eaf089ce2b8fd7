package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// BuyPropertyToken implements buy_property_token (spec.md §4.D): an
// investor subscribes amount tokens of a primary listing, paying principal
// plus fee plus (when the investor bears it) tax, held under the
// Marketplace reason until sell-out triggers token distribution.
func (e *Engine) BuyPropertyToken(
	ctx context.Context,
	seq uint64,
	investor ledgercore.AccountID,
	listingID ledgercore.ListingID,
	amount uint32,
	asset ledgercore.PaymentAsset,
) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, investor, seq); err != nil {
			return nil, err
		}
		if amount == 0 {
			return nil, Err(CodeAmountCannotBeZero)
		}
		if !asset.Valid() {
			return nil, Err(CodePaymentAssetNotSupported)
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeTokenNotForSale)
		}
		counter, open := s.TokenCounters[listingID]
		if !open {
			return nil, Err(CodeSpvAlreadyCreated)
		}
		if e.clock.BlockHeight() >= listing.ListingExpiryBlock {
			return nil, Err(CodeListingExpired)
		}
		if counter < amount {
			return nil, Err(CodeNotEnoughTokenAvailable)
		}
		ok, err := e.whitelist.IsMember(ctx, investor, ledgercore.RoleRealEstateInvestor)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeUserNotWhitelisted)
		}
		info, ok, err := e.regions.Region(ctx, listing.Region)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !ok {
			return nil, Err(CodeRegionUnknown)
		}

		principal := listing.TokenPrice.MulUint32(amount)
		fee := principal.MulDivFloor(e.params.FeePercent, 100)
		tax := principal.MulDivFloor(uint64(info.TaxPermill), 1_000_000)
		total := principal.Add(fee)
		if !listing.TaxPaidByDeveloper {
			total = total.Add(tax)
		}

		if err := s.Ledger.Hold(asset, ReasonMarketplace, investor, total); err != nil {
			return nil, err
		}

		s.TokenCounters[listingID] = counter - amount

		if s.TokenBuyers[listingID] == nil {
			s.TokenBuyers[listingID] = make(map[ledgercore.AccountID]bool)
		}
		s.TokenBuyers[listingID][investor] = true

		key := SubscriptionKey{Investor: investor, ListingID: listingID}
		sub := s.Subscriptions[key]
		sub.Investor = investor
		sub.ListingID = listingID
		sub.TokenAmount += amount
		sub.PaidFunds = sub.PaidFunds.AddTo(asset, principal)
		if !listing.TaxPaidByDeveloper {
			sub.PaidTax = sub.PaidTax.AddTo(asset, tax)
		}
		s.Subscriptions[key] = sub

		listing.CollectedFunds = listing.CollectedFunds.AddTo(asset, principal)
		listing.CollectedTax = listing.CollectedTax.AddTo(asset, tax)
		listing.CollectedFees = listing.CollectedFees.AddTo(asset, fee)
		s.Listings[listingID] = listing

		events := []Event{{
			Kind:      EventPropertyTokenBought,
			ListingID: listingID,
			AssetID:   listing.AssetID,
			Accounts:  []ledgercore.AccountID{investor},
			Amount:    amount,
			Price:     listing.TokenPrice,
			Asset:     asset,
		}}

		if s.TokenCounters[listingID] == 0 {
			delete(s.TokenCounters, listingID)
			s.LegalCases[listingID] = LegalCase{ListingID: listingID}
			distEvents, err := e.distributeTokens(ctx, s, listing)
			if err != nil {
				return nil, err
			}
			events = append(events, distEvents...)
		}

		return events, nil
	})
}

// distributeTokens is the internal token_distribution step (spec.md §4.D),
// invoked exactly once per listing on sell-out. It moves every buyer's held
// commitment into the listing's PropertySubAccount and hands out the
// already-minted property tokens through the external collaborator.
func (e *Engine) distributeTokens(ctx context.Context, s *State, listing PropertyListing) ([]Event, error) {
	subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)
	var events []Event

	for buyer := range s.TokenBuyers[listing.ID] {
		key := SubscriptionKey{Investor: buyer, ListingID: listing.ID}
		sub, ok := s.Subscriptions[key]
		if !ok {
			continue
		}
		for _, p := range ledgercore.PaymentAssets {
			paid := sub.PaidFunds.Get(p)
			if paid.IsZero() {
				continue
			}
			investorFee := paid.MulDivFloor(e.params.FeePercent, 100)
			total := paid.Add(investorFee).Add(sub.PaidTax.Get(p))
			if err := s.Ledger.Release(p, ReasonMarketplace, buyer, total, true); err != nil {
				return nil, err
			}
			if err := s.Ledger.Transfer(p, buyer, subAccount, total); err != nil {
				return nil, err
			}
		}
		if err := e.token.DistributeToOwner(ctx, listing.AssetID, buyer, sub.TokenAmount); err != nil {
			return nil, Wrap(CodeNftNotFound, err)
		}
		events = append(events, Event{
			Kind:      EventPropertyTokenSent,
			ListingID: listing.ID,
			AssetID:   listing.AssetID,
			Accounts:  []ledgercore.AccountID{buyer},
			Amount:    sub.TokenAmount,
		})
	}
	return events, nil
}

// CancelPropertyPurchase implements cancel_property_purchase (spec.md
// §4.D): an investor reverses their subscription before the primary
// listing sells out, restoring both the ledger and listing accruals
// exactly.
func (e *Engine) CancelPropertyPurchase(seq uint64, investor ledgercore.AccountID, listingID ledgercore.ListingID) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, investor, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		if _, settled := s.LegalCases[listingID]; settled {
			return nil, Err(CodeSpvAlreadyCreated)
		}
		if e.clock.BlockHeight() >= listing.ListingExpiryBlock {
			return nil, Err(CodeListingExpired)
		}
		key := SubscriptionKey{Investor: investor, ListingID: listingID}
		sub, ok := s.Subscriptions[key]
		if !ok {
			return nil, Err(CodeNoTokenBought)
		}

		for _, p := range ledgercore.PaymentAssets {
			paid := sub.PaidFunds.Get(p)
			if paid.IsZero() {
				continue
			}
			fee := paid.MulDivFloor(e.params.FeePercent, 100)
			total := paid.Add(fee).Add(sub.PaidTax.Get(p))
			if err := s.Ledger.Release(p, ReasonMarketplace, investor, total, true); err != nil {
				return nil, err
			}
			listing.CollectedFunds, _ = listing.CollectedFunds.SubFrom(p, paid)
			listing.CollectedTax, _ = listing.CollectedTax.SubFrom(p, sub.PaidTax.Get(p))
			listing.CollectedFees, _ = listing.CollectedFees.SubFrom(p, fee)
		}
		s.Listings[listingID] = listing
		s.TokenCounters[listingID] += sub.TokenAmount
		delete(s.TokenBuyers[listingID], investor)
		delete(s.Subscriptions, key)

		return nil, nil
	})
}

// WithdrawExpired implements withdraw_expired (spec.md §4.F): an investor
// reverses their subscription on a primary listing that never sold out and
// has passed its expiry. When the last outstanding subscriber withdraws,
// the listing finalizes automatically.
func (e *Engine) WithdrawExpired(ctx context.Context, seq uint64, investor ledgercore.AccountID, listingID ledgercore.ListingID) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, investor, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		if e.clock.BlockHeight() <= listing.ListingExpiryBlock {
			return nil, Err(CodeListingNotExpired)
		}
		if _, settled := s.LegalCases[listingID]; settled {
			return nil, Err(CodeSpvAlreadyCreated)
		}
		key := SubscriptionKey{Investor: investor, ListingID: listingID}
		sub, ok := s.Subscriptions[key]
		if !ok {
			return nil, Err(CodeNoTokenBought)
		}

		for _, p := range ledgercore.PaymentAssets {
			paid := sub.PaidFunds.Get(p)
			if paid.IsZero() {
				continue
			}
			fee := paid.MulDivFloor(e.params.FeePercent, 100)
			total := paid.Add(fee).Add(sub.PaidTax.Get(p))
			if err := s.Ledger.Release(p, ReasonMarketplace, investor, total, true); err != nil {
				return nil, err
			}
			listing.CollectedFunds, _ = listing.CollectedFunds.SubFrom(p, paid)
			listing.CollectedTax, _ = listing.CollectedTax.SubFrom(p, sub.PaidTax.Get(p))
			listing.CollectedFees, _ = listing.CollectedFees.SubFrom(p, fee)
		}
		s.Listings[listingID] = listing
		s.TokenCounters[listingID] += sub.TokenAmount
		delete(s.TokenBuyers[listingID], investor)
		delete(s.Subscriptions, key)

		events := []Event{{
			Kind:      EventTokenSent,
			ListingID: listingID,
			AssetID:   listing.AssetID,
			Accounts:  []ledgercore.AccountID{investor},
			Amount:    sub.TokenAmount,
		}}

		if s.TokenCounters[listingID] >= listing.TokenAmount {
			finEvents, err := e.finalizeUnsold(ctx, s, listing)
			if err != nil {
				return nil, err
			}
			events = append(events, finEvents...)
		}
		return events, nil
	})
}

// WithdrawDepositUnsold implements withdraw_deposit_unsold (spec.md §4.F):
// the developer reclaims their listing deposit once every subscriber (if
// any) has been refunded and the listing has passed expiry unsold.
func (e *Engine) WithdrawDepositUnsold(ctx context.Context, seq uint64, developer ledgercore.AccountID, listingID ledgercore.ListingID) error {
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
		if e.clock.BlockHeight() <= listing.ListingExpiryBlock {
			return nil, Err(CodeListingNotExpired)
		}
		if _, settled := s.LegalCases[listingID]; settled {
			return nil, Err(CodeSpvAlreadyCreated)
		}
		counter, open := s.TokenCounters[listingID]
		if !open || counter < listing.TokenAmount {
			return nil, Err(CodeTokenNotReturned)
		}
		return e.finalizeUnsold(ctx, s, listing)
	})
}

// finalizeUnsold is the common tail of withdraw_expired (once fully
// refunded) and withdraw_deposit_unsold: burn the unsold supply, release
// the listing deposit, sweep any residual native balance to the developer,
// and drop the listing.
func (e *Engine) finalizeUnsold(ctx context.Context, s *State, listing PropertyListing) ([]Event, error) {
	if err := e.token.Burn(ctx, listing.AssetID); err != nil {
		return nil, Wrap(CodeNftNotFound, err)
	}
	deposit, hasDeposit := s.ListingDeposits[listing.ID]
	if hasDeposit {
		if err := s.Ledger.NativeRelease(ReasonListingDepositReserve, deposit.Depositor, deposit.Amount, true); err != nil {
			return nil, err
		}
		delete(s.ListingDeposits, listing.ID)
	}
	subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)
	if residual := s.Ledger.NativeBalance(subAccount); !residual.IsZero() {
		if err := s.Ledger.NativeTransfer(subAccount, listing.Developer, residual); err != nil {
			return nil, err
		}
	}
	delete(s.Listings, listing.ID)
	delete(s.TokenCounters, listing.ID)
	delete(s.TokenBuyers, listing.ID)
	return nil, nil
}
