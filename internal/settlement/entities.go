package settlement

import "github.com/opendeed/deedd/internal/ledgercore"

// LegalStatus is a side's status within a LegalCase (spec.md §3, §4.E).
type LegalStatus int

const (
	LegalPending LegalStatus = iota
	LegalApproved
	LegalRejected
)

func (s LegalStatus) String() string {
	switch s {
	case LegalApproved:
		return "Approved"
	case LegalRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// LegalSide identifies which half of a LegalCase a lawyer is claiming.
type LegalSide int

const (
	SideDeveloper LegalSide = iota
	SideSPV
)

// PropertyListing is the primary listing entity (spec.md §3).
type PropertyListing struct {
	ID                  ledgercore.ListingID
	Developer           ledgercore.AccountID
	Region              ledgercore.RegionID
	Location            string
	CollectionID        uint64
	ItemID              ledgercore.ItemID
	AssetID             ledgercore.AssetID
	TokenPrice          ledgercore.Amount
	TokenAmount         uint32
	TaxPaidByDeveloper  bool
	ListingExpiryBlock  uint64
	CollectedFunds      ledgercore.AssetAmounts
	CollectedTax        ledgercore.AssetAmounts
	CollectedFees       ledgercore.AssetAmounts
}

// InvestorSubscription tracks one investor's stake in a primary listing
// (spec.md §3), keyed by (investor, listing id) in State.Subscriptions.
type InvestorSubscription struct {
	Investor    ledgercore.AccountID
	ListingID   ledgercore.ListingID
	TokenAmount uint32
	PaidFunds   ledgercore.AssetAmounts
	PaidTax     ledgercore.AssetAmounts
}

// SubscriptionKey is the composite key for State.Subscriptions.
type SubscriptionKey struct {
	Investor  ledgercore.AccountID
	ListingID ledgercore.ListingID
}

// LegalCase is the two-phase-commit record created on primary sell-out
// (spec.md §3, §4.E).
type LegalCase struct {
	ListingID          ledgercore.ListingID
	DeveloperLawyer    ledgercore.AccountID
	HasDeveloperLawyer bool
	SPVLawyer          ledgercore.AccountID
	HasSPVLawyer       bool
	DeveloperStatus    LegalStatus
	SPVStatus          LegalStatus
	DeveloperLawyerCosts ledgercore.AssetAmounts
	SPVLawyerCosts       ledgercore.AssetAmounts
	SecondAttempt        bool
}

// RefundBook tracks an in-progress refund (spec.md §3, §4.F).
type RefundBook struct {
	ListingID             ledgercore.ListingID
	RefundAmountRemaining uint32
	LegalSnapshot         LegalCase
}

// ListingDeposit is the native-currency deposit a developer posts at
// list_property time (spec.md §3).
type ListingDeposit struct {
	ListingID ledgercore.ListingID
	Depositor ledgercore.AccountID
	Amount    ledgercore.Amount
}

// SecondaryListing is a post-settlement resale listing (spec.md §3, §4.G).
type SecondaryListing struct {
	ID              ledgercore.ListingID
	Seller          ledgercore.AccountID
	AssetID         ledgercore.AssetID
	ItemID          ledgercore.ItemID
	CollectionID    uint64
	TokenPrice      ledgercore.Amount
	AmountRemaining uint32
}

// Offer is a buy offer against a secondary listing (spec.md §3, §4.H).
type Offer struct {
	ListingID    ledgercore.ListingID
	Buyer        ledgercore.AccountID
	TokenPrice   ledgercore.Amount
	Amount       uint32
	PaymentAsset ledgercore.PaymentAsset
}

// OfferKey is the composite key for State.Offers.
type OfferKey struct {
	ListingID ledgercore.ListingID
	Buyer     ledgercore.AccountID
}
