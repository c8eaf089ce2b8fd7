package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// executeDeal implements execute_deal (spec.md §4.F): both sides approved.
// For each payment asset it splits the listing's collected funds between
// the developer, both lawyers, the regional operator, and the treasury,
// drains the PropertySubAccount to exactly zero, releases the listing
// deposit, and tears down every per-listing record.
func (e *Engine) executeDeal(ctx context.Context, s *State, listing PropertyListing, lc LegalCase) ([]Event, error) {
	subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)

	info, ok, err := e.regions.Region(ctx, listing.Region)
	if err != nil {
		return nil, Wrap(CodeInternal, err)
	}
	if !ok {
		return nil, Err(CodeRegionUnknown)
	}

	for _, p := range ledgercore.PaymentAssets {
		cf := listing.CollectedFunds.Get(p)
		tax := listing.CollectedTax.Get(p)
		fees := listing.CollectedFees.Get(p)
		devCost := lc.DeveloperLawyerCosts.Get(p)
		spvCost := lc.SPVLawyerCosts.Get(p)

		developerShare := cf.MulDivFloor(100-e.params.FeePercent, 100)
		if listing.TaxPaidByDeveloper {
			developerShare = developerShare.SaturatingSub(tax)
		}
		developerLawyerPayout := tax.Add(devCost)

		protocolPool := cf.MulDivFloor(1, 100).Add(fees)
		protocolPool = protocolPool.SaturatingSub(devCost).SaturatingSub(spvCost)
		regionOperatorShare := protocolPool.HalveFloor()
		treasuryShare := protocolPool.SaturatingSub(regionOperatorShare)

		if err := s.Ledger.Transfer(p, subAccount, listing.Developer, developerShare); err != nil {
			return nil, err
		}
		if lc.HasDeveloperLawyer && !developerLawyerPayout.IsZero() {
			if err := s.Ledger.Transfer(p, subAccount, lc.DeveloperLawyer, developerLawyerPayout); err != nil {
				return nil, err
			}
		}
		if lc.HasSPVLawyer && !spvCost.IsZero() {
			if err := s.Ledger.Transfer(p, subAccount, lc.SPVLawyer, spvCost); err != nil {
				return nil, err
			}
		}
		if !treasuryShare.IsZero() {
			if err := s.Ledger.Transfer(p, subAccount, e.treasury, treasuryShare); err != nil {
				return nil, err
			}
		}
		if !regionOperatorShare.IsZero() {
			if err := s.Ledger.Transfer(p, subAccount, info.Operator, regionOperatorShare); err != nil {
				return nil, err
			}
		}
	}

	if err := e.token.RegisterSPV(ctx, listing.AssetID); err != nil {
		return nil, Wrap(CodeNftNotFound, err)
	}
	s.SPVCreated[listing.AssetID] = true
	s.AssetRegistry[listing.AssetID] = AssetRecord{ItemID: listing.ItemID, CollectionID: listing.CollectionID}

	if deposit, ok := s.ListingDeposits[listing.ID]; ok {
		if err := s.Ledger.NativeRelease(ReasonListingDepositReserve, deposit.Depositor, deposit.Amount, true); err != nil {
			return nil, err
		}
		delete(s.ListingDeposits, listing.ID)
	}
	if residual := s.Ledger.NativeBalance(subAccount); !residual.IsZero() {
		if err := s.Ledger.NativeTransfer(subAccount, listing.Developer, residual); err != nil {
			return nil, err
		}
	}

	for buyer := range s.TokenBuyers[listing.ID] {
		delete(s.Subscriptions, SubscriptionKey{Investor: buyer, ListingID: listing.ID})
	}
	delete(s.TokenBuyers, listing.ID)
	delete(s.Listings, listing.ID)
	delete(s.LegalCases, listing.ID)

	accounts := []ledgercore.AccountID{listing.Developer, e.treasury, info.Operator}
	if lc.HasDeveloperLawyer {
		accounts = append(accounts, lc.DeveloperLawyer)
	}
	if lc.HasSPVLawyer {
		accounts = append(accounts, lc.SPVLawyer)
	}

	return []Event{{
		Kind:      EventLegalCaseSettled,
		ListingID: listing.ID,
		AssetID:   listing.AssetID,
		Accounts:  accounts,
	}}, nil
}

// createRefundBook implements the refund branch of spec.md §4.F: both
// sides rejected (or a mixed retry exhausted its second attempt). Investors
// must each withdraw individually through WithdrawRejected.
func (e *Engine) createRefundBook(s *State, listing PropertyListing, lc LegalCase) ([]Event, error) {
	s.RefundBooks[listing.ID] = RefundBook{
		ListingID:             listing.ID,
		RefundAmountRemaining: listing.TokenAmount,
		LegalSnapshot:         lc,
	}
	delete(s.LegalCases, listing.ID)
	return []Event{{
		Kind:      EventLegalCaseRefunded,
		ListingID: listing.ID,
		AssetID:   listing.AssetID,
	}}, nil
}

// WithdrawRejected implements withdraw_rejected (spec.md §4.F): one
// investor's share of a refund. When the last outstanding investor
// withdraws, the PropertySubAccount is drained to zero: the unsold tokens
// (now all returned) are burned, the listing deposit is released, the
// SPV-lawyer is paid, and the residual (collected_fees − spv_lawyer_costs)
// goes to the treasury.
func (e *Engine) WithdrawRejected(ctx context.Context, seq uint64, investor ledgercore.AccountID, listingID ledgercore.ListingID) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, investor, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		rb, ok := s.RefundBooks[listingID]
		if !ok {
			return nil, Err(CodeTokenNotRefunded)
		}
		key := SubscriptionKey{Investor: investor, ListingID: listingID}
		sub, ok := s.Subscriptions[key]
		if !ok {
			return nil, Err(CodeNoTokenBought)
		}
		subAccount := ledgercore.DerivePropertySubAccount(listing.AssetID)

		for _, p := range ledgercore.PaymentAssets {
			paid := sub.PaidFunds.Get(p)
			if paid.IsZero() {
				continue
			}
			total := paid.Add(sub.PaidTax.Get(p))
			if err := s.Ledger.Transfer(p, subAccount, investor, total); err != nil {
				return nil, err
			}
		}
		if err := e.token.Transfer(ctx, listing.AssetID, investor, investor, subAccount, sub.TokenAmount); err != nil {
			return nil, Wrap(CodeTokenNotRefunded, err)
		}
		delete(s.Subscriptions, key)
		delete(s.TokenBuyers[listingID], investor)

		rb.RefundAmountRemaining -= sub.TokenAmount
		s.RefundBooks[listingID] = rb

		events := []Event{{
			Kind:      EventTokenSent,
			ListingID: listingID,
			AssetID:   listing.AssetID,
			Accounts:  []ledgercore.AccountID{investor},
			Amount:    sub.TokenAmount,
		}}

		if rb.RefundAmountRemaining == 0 {
			if err := e.token.Burn(ctx, listing.AssetID); err != nil {
				return nil, Wrap(CodeNftNotFound, err)
			}
			if deposit, ok := s.ListingDeposits[listingID]; ok {
				if err := s.Ledger.NativeRelease(ReasonListingDepositReserve, deposit.Depositor, deposit.Amount, true); err != nil {
					return nil, err
				}
				delete(s.ListingDeposits, listingID)
			}
			if rb.LegalSnapshot.HasSPVLawyer {
				for _, p := range ledgercore.PaymentAssets {
					c := rb.LegalSnapshot.SPVLawyerCosts.Get(p)
					if c.IsZero() {
						continue
					}
					if err := s.Ledger.Transfer(p, subAccount, rb.LegalSnapshot.SPVLawyer, c); err != nil {
						return nil, err
					}
				}
			}
			for _, p := range ledgercore.PaymentAssets {
				remaining := s.Ledger.Balance(p, subAccount)
				if remaining.IsZero() {
					continue
				}
				if err := s.Ledger.Transfer(p, subAccount, e.treasury, remaining); err != nil {
					return nil, err
				}
			}
			if residual := s.Ledger.NativeBalance(subAccount); !residual.IsZero() {
				if err := s.Ledger.NativeTransfer(subAccount, listing.Developer, residual); err != nil {
					return nil, err
				}
			}
			delete(s.Listings, listingID)
			delete(s.RefundBooks, listingID)
			delete(s.TokenBuyers, listingID)
			events = append(events, Event{Kind: EventLegalCaseRefunded, ListingID: listingID, AssetID: listing.AssetID})
		}
		return events, nil
	})
}
