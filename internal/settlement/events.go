package settlement

import "github.com/opendeed/deedd/internal/ledgercore"

// EventKind enumerates the events named throughout spec.md §4.
type EventKind string

const (
	EventObjectListed        EventKind = "ObjectListed"
	EventPropertyTokenBought EventKind = "PropertyTokenBought"
	EventPropertyTokenSent   EventKind = "PropertyTokenSent"
	EventLegalCaseSettled    EventKind = "LegalCaseSettled"
	EventLegalCaseRefunded   EventKind = "LegalCaseRefunded"
	EventLegalCaseRetried    EventKind = "LegalCaseRetried"
	EventRelistedTokenBought EventKind = "RelistedTokenBought"
	EventOfferMade           EventKind = "OfferMade"
	EventOfferAccepted       EventKind = "OfferAccepted"
	EventOfferRejected       EventKind = "OfferRejected"
	EventOfferCancelled      EventKind = "OfferCancelled"
	EventTokenSent           EventKind = "TokenSent"
)

// Event carries enough of the transition to reconstruct state changes
// downstream (spec.md §6: "each carries listing_id, relevant account(s),
// asset id, amount, and price sufficient to reconstruct state transitions").
type Event struct {
	Kind      EventKind
	ListingID ledgercore.ListingID
	AssetID   ledgercore.AssetID
	Accounts  []ledgercore.AccountID
	Amount    uint32
	Price     ledgercore.Amount
	Asset     ledgercore.PaymentAsset
}

// Sink receives committed events. internal/rpc's websocket feed and
// internal/audit both implement Sink.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// NopSink discards every event; the Engine's default when no sink is wired.
var NopSink Sink = SinkFunc(func(Event) {})

// MultiSink fans a single event out to several sinks, used to wire both the
// websocket feed and the audit log off one Engine.
type MultiSink []Sink

func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		s.Publish(e)
	}
}
