// commands.go registers one MethodHandler per settlement command named in
// spec.md §6, each a thin JSON-decode-then-call-Engine wrapper in the shape
// of the teacher's per-method RPC handlers (one small struct and Handle
// method per command, registered by name in registerAllMethods).
package rpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/metrics"
	"github.com/opendeed/deedd/internal/settlement"
)

// registerAllMethods wires every settlement command into s.registry.
func (s *Server) registerAllMethods() {
	eng := s.engine
	s.registry.Register("list_property", &listPropertyMethod{eng})
	s.registry.Register("upgrade_object", &upgradeObjectMethod{eng})
	s.registry.Register("buy_property_token", &buyPropertyTokenMethod{eng})
	s.registry.Register("cancel_property_purchase", &cancelPropertyPurchaseMethod{eng})
	s.registry.Register("withdraw_expired", &withdrawExpiredMethod{eng})
	s.registry.Register("withdraw_deposit_unsold", &withdrawDepositUnsoldMethod{eng})
	s.registry.Register("withdraw_rejected", &withdrawRejectedMethod{eng})
	s.registry.Register("lawyer_claim_property", &lawyerClaimPropertyMethod{eng})
	s.registry.Register("remove_from_case", &removeFromCaseMethod{eng})
	s.registry.Register("lawyer_confirm_documents", &lawyerConfirmDocumentsMethod{eng})
	s.registry.Register("relist_token", &relistTokenMethod{eng})
	s.registry.Register("buy_relisted_token", &buyRelistedTokenMethod{eng})
	s.registry.Register("upgrade_listing", &upgradeListingMethod{eng})
	s.registry.Register("delist_token", &delistTokenMethod{eng})
	s.registry.Register("make_offer", &makeOfferMethod{eng})
	s.registry.Register("handle_offer", &handleOfferMethod{eng})
	s.registry.Register("cancel_offer", &cancelOfferMethod{eng})
	s.registry.Register("send_property_token", &sendPropertyTokenMethod{eng})
	s.registry.Register("get_listing", &getListingMethod{eng})
	s.registry.Register("get_subscription", &getSubscriptionMethod{eng})
	s.registry.Register("get_legal_case", &getLegalCaseMethod{eng})
	s.registry.Register("get_secondary_listing", &getSecondaryListingMethod{eng})
	s.registry.Register("get_offer", &getOfferMethod{eng})
}

func parseAccount(s string) (ledgercore.AccountID, *RpcError) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != ledgercore.AccountIDSize {
		return ledgercore.AccountID{}, RpcErrorInvalidParams("malformed account id: " + s)
	}
	return ledgercore.AccountIDFromBytes(b), nil
}

func decodeParams(raw json.RawMessage, v interface{}) *RpcError {
	if len(raw) == 0 {
		return RpcErrorInvalidParams("missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return RpcErrorInvalidParams(err.Error())
	}
	return nil
}

func observe(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = settlement.CodeOf(err).String()
	}
	metrics.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// --- list_property ---

type listPropertyMethod struct{ e *settlement.Engine }

func (m *listPropertyMethod) RequiredRole() Role { return RoleUser }

func (m *listPropertyMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq                uint64            `json:"seq"`
		Developer          string            `json:"developer"`
		Region             ledgercore.RegionID `json:"region"`
		Location           string            `json:"location"`
		TokenPrice         ledgercore.Amount `json:"token_price"`
		TokenAmount        uint32            `json:"token_amount"`
		TaxPaidByDeveloper bool              `json:"tax_paid_by_developer"`
		Metadata           []byte            `json:"metadata"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	developer, rerr := parseAccount(p.Developer)
	if rerr != nil {
		return nil, rerr
	}
	id, err := m.e.ListProperty(ctx.Context, p.Seq, developer, p.Region, p.Location, p.TokenPrice, p.TokenAmount, p.TaxPaidByDeveloper, p.Metadata)
	observe("list_property", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{"listing_id": id}, nil
}

// --- upgrade_object ---

type upgradeObjectMethod struct{ e *settlement.Engine }

func (m *upgradeObjectMethod) RequiredRole() Role { return RoleUser }

func (m *upgradeObjectMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64                `json:"seq"`
		Developer string                `json:"developer"`
		ListingID ledgercore.ListingID  `json:"listing_id"`
		NewPrice  ledgercore.Amount     `json:"new_price"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	developer, rerr := parseAccount(p.Developer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.UpgradeObject(p.Seq, developer, p.ListingID, p.NewPrice)
	observe("upgrade_object", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- buy_property_token ---

type buyPropertyTokenMethod struct{ e *settlement.Engine }

func (m *buyPropertyTokenMethod) RequiredRole() Role { return RoleUser }

func (m *buyPropertyTokenMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Investor  string               `json:"investor"`
		ListingID ledgercore.ListingID `json:"listing_id"`
		Amount    uint32               `json:"amount"`
		Asset     ledgercore.PaymentAsset `json:"asset"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	investor, rerr := parseAccount(p.Investor)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.BuyPropertyToken(ctx.Context, p.Seq, investor, p.ListingID, p.Amount, p.Asset)
	observe("buy_property_token", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- cancel_property_purchase ---

type cancelPropertyPurchaseMethod struct{ e *settlement.Engine }

func (m *cancelPropertyPurchaseMethod) RequiredRole() Role { return RoleUser }

func (m *cancelPropertyPurchaseMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Investor  string               `json:"investor"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	investor, rerr := parseAccount(p.Investor)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.CancelPropertyPurchase(p.Seq, investor, p.ListingID)
	observe("cancel_property_purchase", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- withdraw_expired ---

type withdrawExpiredMethod struct{ e *settlement.Engine }

func (m *withdrawExpiredMethod) RequiredRole() Role { return RoleUser }

func (m *withdrawExpiredMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Investor  string               `json:"investor"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	investor, rerr := parseAccount(p.Investor)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.WithdrawExpired(ctx.Context, p.Seq, investor, p.ListingID)
	observe("withdraw_expired", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- withdraw_deposit_unsold ---

type withdrawDepositUnsoldMethod struct{ e *settlement.Engine }

func (m *withdrawDepositUnsoldMethod) RequiredRole() Role { return RoleUser }

func (m *withdrawDepositUnsoldMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Developer string               `json:"developer"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	developer, rerr := parseAccount(p.Developer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.WithdrawDepositUnsold(ctx.Context, p.Seq, developer, p.ListingID)
	observe("withdraw_deposit_unsold", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- withdraw_rejected ---

type withdrawRejectedMethod struct{ e *settlement.Engine }

func (m *withdrawRejectedMethod) RequiredRole() Role { return RoleUser }

func (m *withdrawRejectedMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Investor  string               `json:"investor"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	investor, rerr := parseAccount(p.Investor)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.WithdrawRejected(ctx.Context, p.Seq, investor, p.ListingID)
	observe("withdraw_rejected", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- lawyer_claim_property ---

type lawyerClaimPropertyMethod struct{ e *settlement.Engine }

func (m *lawyerClaimPropertyMethod) RequiredRole() Role { return RoleUser }

func (m *lawyerClaimPropertyMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64                  `json:"seq"`
		Lawyer    string                  `json:"lawyer"`
		ListingID ledgercore.ListingID    `json:"listing_id"`
		Side      settlement.LegalSide    `json:"side"`
		Costs     ledgercore.Amount       `json:"costs"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	lawyer, rerr := parseAccount(p.Lawyer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.LawyerClaimProperty(ctx.Context, p.Seq, lawyer, p.ListingID, p.Side, p.Costs)
	observe("lawyer_claim_property", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- remove_from_case ---

type removeFromCaseMethod struct{ e *settlement.Engine }

func (m *removeFromCaseMethod) RequiredRole() Role { return RoleUser }

func (m *removeFromCaseMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Lawyer    string               `json:"lawyer"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	lawyer, rerr := parseAccount(p.Lawyer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.RemoveFromCase(p.Seq, lawyer, p.ListingID)
	observe("remove_from_case", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- lawyer_confirm_documents ---

type lawyerConfirmDocumentsMethod struct{ e *settlement.Engine }

func (m *lawyerConfirmDocumentsMethod) RequiredRole() Role { return RoleUser }

func (m *lawyerConfirmDocumentsMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Lawyer    string               `json:"lawyer"`
		ListingID ledgercore.ListingID `json:"listing_id"`
		Approve   bool                 `json:"approve"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	lawyer, rerr := parseAccount(p.Lawyer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.LawyerConfirmDocuments(ctx.Context, p.Seq, lawyer, p.ListingID, p.Approve)
	observe("lawyer_confirm_documents", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- relist_token ---

type relistTokenMethod struct{ e *settlement.Engine }

func (m *relistTokenMethod) RequiredRole() Role { return RoleUser }

func (m *relistTokenMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq        uint64             `json:"seq"`
		Seller     string             `json:"seller"`
		Asset      ledgercore.AssetID `json:"asset"`
		TokenPrice ledgercore.Amount  `json:"token_price"`
		Amount     uint32             `json:"amount"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	seller, rerr := parseAccount(p.Seller)
	if rerr != nil {
		return nil, rerr
	}
	id, err := m.e.RelistToken(ctx.Context, p.Seq, seller, p.Asset, p.TokenPrice, p.Amount)
	observe("relist_token", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{"listing_id": id}, nil
}

// --- buy_relisted_token ---

type buyRelistedTokenMethod struct{ e *settlement.Engine }

func (m *buyRelistedTokenMethod) RequiredRole() Role { return RoleUser }

func (m *buyRelistedTokenMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64                  `json:"seq"`
		Buyer     string                  `json:"buyer"`
		ListingID ledgercore.ListingID    `json:"listing_id"`
		Amount    uint32                  `json:"amount"`
		Asset     ledgercore.PaymentAsset `json:"asset"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	buyer, rerr := parseAccount(p.Buyer)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.BuyRelistedToken(ctx.Context, p.Seq, buyer, p.ListingID, p.Amount, p.Asset)
	observe("buy_relisted_token", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- upgrade_listing ---

type upgradeListingMethod struct{ e *settlement.Engine }

func (m *upgradeListingMethod) RequiredRole() Role { return RoleUser }

func (m *upgradeListingMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Seller    string               `json:"seller"`
		ListingID ledgercore.ListingID `json:"listing_id"`
		NewPrice  ledgercore.Amount    `json:"new_price"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	seller, rerr := parseAccount(p.Seller)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.UpgradeListing(p.Seq, seller, p.ListingID, p.NewPrice)
	observe("upgrade_listing", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- delist_token ---

type delistTokenMethod struct{ e *settlement.Engine }

func (m *delistTokenMethod) RequiredRole() Role { return RoleUser }

func (m *delistTokenMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Seller    string               `json:"seller"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	seller, rerr := parseAccount(p.Seller)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.DelistToken(ctx.Context, p.Seq, seller, p.ListingID)
	observe("delist_token", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- make_offer ---

type makeOfferMethod struct{ e *settlement.Engine }

func (m *makeOfferMethod) RequiredRole() Role { return RoleUser }

func (m *makeOfferMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq        uint64                  `json:"seq"`
		Offeror    string                  `json:"offeror"`
		ListingID  ledgercore.ListingID    `json:"listing_id"`
		OfferPrice ledgercore.Amount       `json:"offer_price"`
		Amount     uint32                  `json:"amount"`
		Asset      ledgercore.PaymentAsset `json:"asset"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	offeror, rerr := parseAccount(p.Offeror)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.MakeOffer(p.Seq, offeror, p.ListingID, p.OfferPrice, p.Amount, p.Asset)
	observe("make_offer", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- handle_offer ---

type handleOfferMethod struct{ e *settlement.Engine }

func (m *handleOfferMethod) RequiredRole() Role { return RoleUser }

func (m *handleOfferMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Seller    string               `json:"seller"`
		ListingID ledgercore.ListingID `json:"listing_id"`
		Offeror   string               `json:"offeror"`
		Accept    bool                 `json:"accept"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	seller, rerr := parseAccount(p.Seller)
	if rerr != nil {
		return nil, rerr
	}
	offeror, rerr := parseAccount(p.Offeror)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.HandleOffer(ctx.Context, p.Seq, seller, p.ListingID, offeror, p.Accept)
	observe("handle_offer", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- cancel_offer ---

type cancelOfferMethod struct{ e *settlement.Engine }

func (m *cancelOfferMethod) RequiredRole() Role { return RoleUser }

func (m *cancelOfferMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq       uint64               `json:"seq"`
		Offeror   string               `json:"offeror"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	offeror, rerr := parseAccount(p.Offeror)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.CancelOffer(p.Seq, offeror, p.ListingID)
	observe("cancel_offer", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- send_property_token ---

type sendPropertyTokenMethod struct{ e *settlement.Engine }

func (m *sendPropertyTokenMethod) RequiredRole() Role { return RoleUser }

func (m *sendPropertyTokenMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Seq      uint64             `json:"seq"`
		Sender   string             `json:"sender"`
		Asset    ledgercore.AssetID `json:"asset"`
		Receiver string             `json:"receiver"`
		Amount   uint32             `json:"amount"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	sender, rerr := parseAccount(p.Sender)
	if rerr != nil {
		return nil, rerr
	}
	receiver, rerr := parseAccount(p.Receiver)
	if rerr != nil {
		return nil, rerr
	}
	err := m.e.SendPropertyToken(ctx.Context, p.Seq, sender, p.Asset, receiver, p.Amount)
	observe("send_property_token", err)
	if err != nil {
		return nil, rpcErrorFromEngine(err)
	}
	return map[string]interface{}{}, nil
}

// --- read-only queries ---

type getListingMethod struct{ e *settlement.Engine }

func (m *getListingMethod) RequiredRole() Role { return RoleGuest }

func (m *getListingMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	listing, ok := m.e.GetListing(p.ListingID)
	if !ok {
		return nil, rpcErrorFromEngine(settlement.Err(settlement.CodeInvalidIndex))
	}
	return listing, nil
}

type getSubscriptionMethod struct{ e *settlement.Engine }

func (m *getSubscriptionMethod) RequiredRole() Role { return RoleGuest }

func (m *getSubscriptionMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Investor  string               `json:"investor"`
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	investor, rerr := parseAccount(p.Investor)
	if rerr != nil {
		return nil, rerr
	}
	sub, ok := m.e.GetSubscription(investor, p.ListingID)
	if !ok {
		return nil, rpcErrorFromEngine(settlement.Err(settlement.CodeInvalidIndex))
	}
	return sub, nil
}

type getLegalCaseMethod struct{ e *settlement.Engine }

func (m *getLegalCaseMethod) RequiredRole() Role { return RoleGuest }

func (m *getLegalCaseMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	lc, ok := m.e.GetLegalCase(p.ListingID)
	if !ok {
		return nil, rpcErrorFromEngine(settlement.Err(settlement.CodeSpvNotCreated))
	}
	return lc, nil
}

type getSecondaryListingMethod struct{ e *settlement.Engine }

func (m *getSecondaryListingMethod) RequiredRole() Role { return RoleGuest }

func (m *getSecondaryListingMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		ListingID ledgercore.ListingID `json:"listing_id"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	sl, ok := m.e.GetSecondaryListing(p.ListingID)
	if !ok {
		return nil, rpcErrorFromEngine(settlement.Err(settlement.CodeInvalidIndex))
	}
	return sl, nil
}

type getOfferMethod struct{ e *settlement.Engine }

func (m *getOfferMethod) RequiredRole() Role { return RoleGuest }

func (m *getOfferMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		ListingID ledgercore.ListingID `json:"listing_id"`
		Buyer     string               `json:"buyer"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	buyer, rerr := parseAccount(p.Buyer)
	if rerr != nil {
		return nil, rerr
	}
	offer, ok := m.e.GetOffer(p.ListingID, buyer)
	if !ok {
		return nil, rpcErrorFromEngine(settlement.Err(settlement.CodeInvalidIndex))
	}
	return offer, nil
}

// getAccountHistoryMethod is registered only when a HistoryReader is
// configured (Server.SetHistoryReader); see HistoryReader for why.
type getAccountHistoryMethod struct{ history HistoryReader }

func (m *getAccountHistoryMethod) RequiredRole() Role { return RoleGuest }

func (m *getAccountHistoryMethod) Handle(ctx *RpcContext, raw json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Account string `json:"account"`
	}
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	account, rerr := parseAccount(p.Account)
	if rerr != nil {
		return nil, rerr
	}
	events, err := m.history.ListByAccount(ctx.Context, account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]interface{}{"events": events}, nil
}
