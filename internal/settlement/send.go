package settlement

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// SendPropertyToken implements send_property_token (SPEC_FULL.md §5.1): a
// plain peer-to-peer transfer of already-distributed property tokens, named
// in spec.md §6's command list but left undetailed there. No fee or tax
// applies; both parties must be whitelisted investors and the balance check
// itself is enforced by the external PropertyToken collaborator, which owns
// the actual per-account token balances.
func (e *Engine) SendPropertyToken(ctx context.Context, seq uint64, sender ledgercore.AccountID, asset ledgercore.AssetID, receiver ledgercore.AccountID, amount uint32) error {
	return e.apply(func(s *State) ([]Event, error) {
		if err := checkSequence(s, sender, seq); err != nil {
			return nil, err
		}
		if amount == 0 {
			return nil, Err(CodeAmountCannotBeZero)
		}
		if sender == receiver {
			return nil, Err(CodeInvalidIndex)
		}
		senderOK, err := e.whitelist.IsMember(ctx, sender, ledgercore.RoleRealEstateInvestor)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !senderOK {
			return nil, Err(CodeUserNotWhitelisted)
		}
		receiverOK, err := e.whitelist.IsMember(ctx, receiver, ledgercore.RoleRealEstateInvestor)
		if err != nil {
			return nil, Wrap(CodeInternal, err)
		}
		if !receiverOK {
			return nil, Err(CodeUserNotWhitelisted)
		}
		if err := e.token.Transfer(ctx, asset, sender, sender, receiver, amount); err != nil {
			return nil, Wrap(CodeNotEnoughToken, err)
		}
		return []Event{{
			Kind:     EventPropertyTokenSent,
			AssetID:  asset,
			Accounts: []ledgercore.AccountID{sender, receiver},
			Amount:   amount,
		}}, nil
	})
}
