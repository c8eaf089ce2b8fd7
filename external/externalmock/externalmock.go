// Package externalmock provides in-memory stand-ins for the
// internal/external collaborator interfaces, for tests and for running
// deedd standalone without the production whitelist/region/token services
// wired up.
package externalmock

import (
	"context"
	"fmt"
	"sync"

	"github.com/opendeed/deedd/internal/external"
	"github.com/opendeed/deedd/internal/ledgercore"
)

// Whitelist is an in-memory external.Whitelist keyed by account+role.
type Whitelist struct {
	mu      sync.RWMutex
	members map[ledgercore.AccountID]map[ledgercore.Role]bool
}

func NewWhitelist() *Whitelist {
	return &Whitelist{members: make(map[ledgercore.AccountID]map[ledgercore.Role]bool)}
}

// Grant marks account as holding role.
func (w *Whitelist) Grant(account ledgercore.AccountID, role ledgercore.Role) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.members[account] == nil {
		w.members[account] = make(map[ledgercore.Role]bool)
	}
	w.members[account][role] = true
}

func (w *Whitelist) IsMember(ctx context.Context, account ledgercore.AccountID, role ledgercore.Role) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.members[account][role], nil
}

var _ external.Whitelist = (*Whitelist)(nil)

// Regions is an in-memory external.Regions backed by a fixed table plus a
// per-region set of registered locations and lawyers.
type Regions struct {
	mu        sync.RWMutex
	regions   map[ledgercore.RegionID]external.RegionInfo
	locations map[ledgercore.RegionID]map[string]bool
	lawyers   map[ledgercore.RegionID]map[ledgercore.AccountID]bool
}

func NewRegions() *Regions {
	return &Regions{
		regions:   make(map[ledgercore.RegionID]external.RegionInfo),
		locations: make(map[ledgercore.RegionID]map[string]bool),
		lawyers:   make(map[ledgercore.RegionID]map[ledgercore.AccountID]bool),
	}
}

// AddRegion registers region with info, and marks location as its valid
// listing location.
func (r *Regions) AddRegion(region ledgercore.RegionID, info external.RegionInfo, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[region] = info
	if r.locations[region] == nil {
		r.locations[region] = make(map[string]bool)
	}
	r.locations[region][location] = true
}

// AddLawyer registers account as an eligible lawyer for region.
func (r *Regions) AddLawyer(region ledgercore.RegionID, account ledgercore.AccountID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lawyers[region] == nil {
		r.lawyers[region] = make(map[ledgercore.AccountID]bool)
	}
	r.lawyers[region][account] = true
}

func (r *Regions) Region(ctx context.Context, region ledgercore.RegionID) (external.RegionInfo, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.regions[region]
	return info, ok, nil
}

func (r *Regions) LocationRegistered(ctx context.Context, region ledgercore.RegionID, location string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locations[region][location], nil
}

func (r *Regions) IsLawyer(ctx context.Context, region ledgercore.RegionID, account ledgercore.AccountID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lawyers[region][account], nil
}

var _ external.Regions = (*Regions)(nil)

// PropertyToken is an in-memory external.PropertyToken: it tracks per-asset
// owner balances and an SPV flag, enough to exercise every settlement
// command path without a real NFT/fractional-token backend.
type PropertyToken struct {
	mu       sync.Mutex
	nextItem ledgercore.ItemID
	nextAsset ledgercore.AssetID
	balances map[ledgercore.AssetID]map[ledgercore.AccountID]uint32
	spv      map[ledgercore.AssetID]bool
}

func NewPropertyToken() *PropertyToken {
	return &PropertyToken{balances: make(map[ledgercore.AssetID]map[ledgercore.AccountID]uint32)}
}

func (t *PropertyToken) Create(ctx context.Context, developer ledgercore.AccountID, region ledgercore.RegionID, location string, tokenAmount uint32, propertyPrice ledgercore.Amount, metadata []byte) (ledgercore.ItemID, ledgercore.AssetID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextItem++
	t.nextAsset++
	item, asset := t.nextItem, t.nextAsset
	t.balances[asset] = make(map[ledgercore.AccountID]uint32)
	t.balances[asset][developer] = tokenAmount
	return item, asset, nil
}

func (t *PropertyToken) DistributeToOwner(ctx context.Context, asset ledgercore.AssetID, owner ledgercore.AccountID, amount uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal, ok := t.balances[asset]
	if !ok {
		return fmt.Errorf("externalmock: unknown asset %d", asset)
	}
	bal[owner] += amount
	return nil
}

func (t *PropertyToken) Transfer(ctx context.Context, asset ledgercore.AssetID, sender, fundsSource, receiver ledgercore.AccountID, amount uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal, ok := t.balances[asset]
	if !ok {
		return fmt.Errorf("externalmock: unknown asset %d", asset)
	}
	if bal[fundsSource] < amount {
		return fmt.Errorf("externalmock: insufficient token balance for %x", fundsSource)
	}
	bal[fundsSource] -= amount
	bal[receiver] += amount
	return nil
}

func (t *PropertyToken) Burn(ctx context.Context, asset ledgercore.AssetID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.balances, asset)
	delete(t.spv, asset)
	return nil
}

func (t *PropertyToken) RemoveOwner(ctx context.Context, asset ledgercore.AssetID, owner ledgercore.AccountID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bal, ok := t.balances[asset]; ok {
		delete(bal, owner)
	}
	return nil
}

func (t *PropertyToken) RemoveOwnerList(ctx context.Context, asset ledgercore.AssetID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[asset] = make(map[ledgercore.AccountID]uint32)
	return nil
}

func (t *PropertyToken) RegisterSPV(ctx context.Context, asset ledgercore.AssetID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.spv == nil {
		t.spv = make(map[ledgercore.AssetID]bool)
	}
	t.spv[asset] = true
	return nil
}

// BalanceOf returns owner's current token balance for asset, for test
// assertions.
func (t *PropertyToken) BalanceOf(asset ledgercore.AssetID, owner ledgercore.AccountID) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[asset][owner]
}

var _ external.PropertyToken = (*PropertyToken)(nil)
