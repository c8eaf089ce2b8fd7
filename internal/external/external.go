// Package external defines the collaborator contracts the settlement core
// consumes but never implements: whitelist/role gating, region lifecycle,
// and NFT/fractional-token mechanics (spec.md §1, §6). Production wiring for
// these lives outside this repository; deedd only needs the interfaces.
package external

import (
	"context"

	"github.com/opendeed/deedd/internal/ledgercore"
)

// RegionInfo mirrors spec.md §3's external Region entity.
type RegionInfo struct {
	CollectionID      uint64
	TaxPermill        uint32
	ListingDurationBlocks uint64
	Operator          ledgercore.AccountID
}

// Whitelist answers role-membership questions for an account. Backed in
// production by an on-chain role registry; out of scope here (spec.md §1).
type Whitelist interface {
	IsMember(ctx context.Context, account ledgercore.AccountID, role ledgercore.Role) (bool, error)
}

// Regions answers region/location lookups and lawyer registration for a
// region. Region lifecycle (creation, operator election, lawyer
// registration) is out of scope here; deedd only reads through this
// interface.
type Regions interface {
	Region(ctx context.Context, region ledgercore.RegionID) (RegionInfo, bool, error)
	LocationRegistered(ctx context.Context, region ledgercore.RegionID, location string) (bool, error)
	IsLawyer(ctx context.Context, region ledgercore.RegionID, account ledgercore.AccountID) (bool, error)
}

// PropertyToken owns the low-level NFT collection/item storage and
// fractional-token mechanics that spec.md §1 declares out of scope: minting
// the parent NFT and fungible supply, moving already-minted tokens between
// accounts, burning the supply on refund, and flipping the SPV-created flag
// that gates the secondary market.
type PropertyToken interface {
	Create(ctx context.Context, developer ledgercore.AccountID, region ledgercore.RegionID, location string, tokenAmount uint32, propertyPrice ledgercore.Amount, metadata []byte) (itemID ledgercore.ItemID, assetID ledgercore.AssetID, err error)
	DistributeToOwner(ctx context.Context, asset ledgercore.AssetID, owner ledgercore.AccountID, amount uint32) error
	Transfer(ctx context.Context, asset ledgercore.AssetID, sender, fundsSource, receiver ledgercore.AccountID, amount uint32) error
	Burn(ctx context.Context, asset ledgercore.AssetID) error
	RemoveOwner(ctx context.Context, asset ledgercore.AssetID, owner ledgercore.AccountID) error
	RemoveOwnerList(ctx context.Context, asset ledgercore.AssetID) error
	RegisterSPV(ctx context.Context, asset ledgercore.AssetID) error
}
