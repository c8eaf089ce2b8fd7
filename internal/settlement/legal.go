package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// LawyerClaimProperty implements lawyer_claim_property (spec.md §4.E): a
// lawyer registered for the listing's region claims one side of the legal
// case, staking a requested cost allocated against the listing's accrued
// fees, USDT first then USDC for the residual.
func (e *Engine) LawyerClaimProperty(
	ctx context.Context,
	seq uint64,
	lawyer ledgercore.AccountID,
	listingID ledgercore.ListingID,
	side LegalSide,
	costs ledgercore.Amount,
) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, lawyer, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		lc, ok := s.LegalCases[listingID]
		if !ok {
			return nil, Err(CodeSpvNotCreated)
		}
		isLawyer, err := e.regions.IsLawyer(ctx, listing.Region, lawyer)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !isLawyer {
			return nil, Err(CodeLawyerNotFound)
		}

		switch side {
		case SideDeveloper:
			if lc.HasDeveloperLawyer {
				return nil, Err(CodeLawyerJobTaken)
			}
			if lc.HasSPVLawyer && lc.SPVLawyer == lawyer {
				return nil, Err(CodeLawyerJobTaken)
			}
		case SideSPV:
			if lc.HasSPVLawyer {
				return nil, Err(CodeLawyerJobTaken)
			}
			if lc.HasDeveloperLawyer && lc.DeveloperLawyer == lawyer {
				return nil, Err(CodeLawyerJobTaken)
			}
		default:
			return nil, Err(CodeInvalidIndex)
		}

		if listing.CollectedFees.Sum().LessThan(costs) {
			return nil, Err(CodeCostsTooHigh)
		}
		usdtFee := listing.CollectedFees.Get(ledgercore.USDT)
		usdtPortion := costs
		if usdtFee.LessThan(costs) {
			usdtPortion = usdtFee
		}
		residual, err := costs.Sub(usdtPortion)
		if err != nil {
			return nil, Wrap(CodeArithmeticUnderflow, err)
		}
		alloc := ledgercore.AssetAmounts{}.Set(ledgercore.USDT, usdtPortion).Set(ledgercore.USDC, residual)

		switch side {
		case SideDeveloper:
			lc.DeveloperLawyer = lawyer
			lc.HasDeveloperLawyer = true
			lc.DeveloperLawyerCosts = alloc
		case SideSPV:
			lc.SPVLawyer = lawyer
			lc.HasSPVLawyer = true
			lc.SPVLawyerCosts = alloc
		}
		s.LegalCases[listingID] = lc
		return nil, nil
	})
}

// RemoveFromCase implements remove_from_case (spec.md §4.E): a lawyer may
// withdraw from a side while it is still Pending.
func (e *Engine) RemoveFromCase(seq uint64, lawyer ledgercore.AccountID, listingID ledgercore.ListingID) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, lawyer, seq); err != nil {
			return nil, err
		}
		lc, ok := s.LegalCases[listingID]
		if !ok {
			return nil, Err(CodeSpvNotCreated)
		}
		switch {
		case lc.HasDeveloperLawyer && lc.DeveloperLawyer == lawyer:
			if lc.DeveloperStatus != LegalPending {
				return nil, Err(CodeAlreadyConfirmed)
			}
			lc.HasDeveloperLawyer = false
			lc.DeveloperLawyer = ledgercore.AccountID{}
			lc.DeveloperLawyerCosts = ledgercore.AssetAmounts{}
		case lc.HasSPVLawyer && lc.SPVLawyer == lawyer:
			if lc.SPVStatus != LegalPending {
				return nil, Err(CodeAlreadyConfirmed)
			}
			lc.HasSPVLawyer = false
			lc.SPVLawyer = ledgercore.AccountID{}
			lc.SPVLawyerCosts = ledgercore.AssetAmounts{}
		default:
			return nil, Err(CodeLawyerNotFound)
		}
		s.LegalCases[listingID] = lc
		return nil, nil
	})
}

// LawyerConfirmDocuments implements lawyer_confirm_documents (spec.md
// §4.E): the claimed lawyer on a side approves or rejects, and the joint
// transition table fires once both sides have a non-Pending status.
func (e *Engine) LawyerConfirmDocuments(ctx context.Context, seq uint64, lawyer ledgercore.AccountID, listingID ledgercore.ListingID, approve bool) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, lawyer, seq); err != nil {
			return nil, err
		}
		listing, ok := s.Listings[listingID]
		if !ok {
			return nil, Err(CodeInvalidIndex)
		}
		lc, ok := s.LegalCases[listingID]
		if !ok {
			return nil, Err(CodeSpvNotCreated)
		}

		status := LegalRejected
		if approve {
			status = LegalApproved
		}

		switch {
		case lc.HasDeveloperLawyer && lc.DeveloperLawyer == lawyer:
			if lc.DeveloperStatus != LegalPending {
				return nil, Err(CodeAlreadyConfirmed)
			}
			lc.DeveloperStatus = status
		case lc.HasSPVLawyer && lc.SPVLawyer == lawyer:
			if lc.SPVStatus != LegalPending {
				return nil, Err(CodeAlreadyConfirmed)
			}
			lc.SPVStatus = status
		default:
			return nil, Err(CodeNoPermission)
		}
		s.LegalCases[listingID] = lc

		switch {
		case lc.DeveloperStatus == LegalApproved && lc.SPVStatus == LegalApproved:
			return e.executeDeal(ctx, s, listing, lc)

		case lc.DeveloperStatus == LegalRejected && lc.SPVStatus == LegalRejected:
			return e.createRefundBook(s, listing, lc)

		case lc.DeveloperStatus != LegalPending && lc.SPVStatus != LegalPending:
			// mixed: one approved, one rejected.
			if lc.SecondAttempt {
				return e.createRefundBook(s, listing, lc)
			}
			lc.DeveloperStatus = LegalPending
			lc.SPVStatus = LegalPending
			lc.SecondAttempt = true
			s.LegalCases[listingID] = lc
			return []Event{{
				Kind:      EventLegalCaseRetried,
				ListingID: listingID,
				AssetID:   listing.AssetID,
			}}, nil

		default:
			return nil, nil
		}
	})
}
