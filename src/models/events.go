package models

// -----------------------------------------------------------------------------

// MMarketSide identifies which side of the order book an event refers to.
// SideUnknown is a valid decoded value, not an error: it is produced for any
// side string the exchange sends that we do not recognize.
type MMarketSide string

const (
	SideBid     MMarketSide = "bid"
	SideAsk     MMarketSide = "ask"
	SideUnknown MMarketSide = "unknown"
)

// -----------------------------------------------------------------------------

// ParseMarketSide maps a wire side string to a MMarketSide.
// The mapping is case-sensitive: anything other than the exact strings
// "ask" and "bid" yields SideUnknown.
func ParseMarketSide(s string) MMarketSide {
	switch s {
	case "ask":
		return SideAsk
	case "bid":
		return SideBid
	default:
		return SideUnknown
	}
}

// -----------------------------------------------------------------------------

// MMessageKind identifies the subtype of a single wire event.
// KindUnknown covers every event-type string we do not recognize, so new
// wire-level subtypes never break decoding.
type MMessageKind string

const (
	KindTrade   MMessageKind = "trade"
	KindChange  MMessageKind = "change"
	KindUnknown MMessageKind = "unknown"
)

// -----------------------------------------------------------------------------

// ParseMessageKind maps a wire event-type string to a MMessageKind.
func ParseMessageKind(s string) MMessageKind {
	switch s {
	case "trade":
		return KindTrade
	case "change":
		return KindChange
	default:
		return KindUnknown
	}
}

// -----------------------------------------------------------------------------

// MQuote is a decoded "change" event: one price level of the book changed.
// Delta stays nil when the field is absent on the wire; an explicit zero
// delta is a different thing than no delta at all.
type MQuote struct {
	Price     float64     `json:"price"`
	Reason    string      `json:"reason"`
	Remaining float64     `json:"remaining"`
	Side      MMarketSide `json:"side"`
	Delta     *float64    `json:"delta,omitempty"`
}

// -----------------------------------------------------------------------------

// MTrade is a decoded "trade" event: a matched trade at a given price/amount.
type MTrade struct {
	Price     float64     `json:"price"`
	Amount    float64     `json:"amount"`
	MakerSide MMarketSide `json:"maker_side"`
}

// -----------------------------------------------------------------------------

// MEvent is one entry of a market message's event list, tagged by Kind.
// Exactly one of Quote/Trade is set for the corresponding kind; both are nil
// for KindUnknown, which is a deliberate forward-compatibility sentinel.
type MEvent struct {
	Kind  MMessageKind `json:"kind"`
	Quote *MQuote      `json:"quote,omitempty"`
	Trade *MTrade      `json:"trade,omitempty"`
}

// -----------------------------------------------------------------------------

// MMarketMessage is the decoded envelope of one raw websocket frame.
// Events preserves wire order. Timestamp (seconds) and TimestampMS
// (milliseconds) are independently optional; both may be nil.
type MMarketMessage struct {
	EventID        uint64   `json:"event_id"`
	Events         []MEvent `json:"events"`
	Timestamp      *uint64  `json:"timestamp,omitempty"`
	TimestampMS    *uint64  `json:"timestampms,omitempty"`
	SocketSequence uint32   `json:"socket_sequence"`
}

// -----------------------------------------------------------------------------

// MBestBidOffer is the aggregated top-of-book state. The zero value means
// "no market data observed yet"; note that it is indistinguishable from an
// explicitly observed zero price or quantity.
type MBestBidOffer struct {
	BestBid            float64 `json:"best_bid"`
	BestOffer          float64 `json:"best_offer"`
	BidAmountRemaining float64 `json:"bid_amount_remaining"`
	AskAmountRemaining float64 `json:"ask_amount_remaining"`
}

// -----------------------------------------------------------------------------

// MTradeReport is what the reporting sinks receive for each trade event:
// the trade itself plus its notional (dollar) value.
type MTradeReport struct {
	Trade    MTrade  `json:"trade"`
	Notional float64 `json:"notional"`
}

// -----------------------------------------------------------------------------

// NewTradeReport builds the report for a single trade event.
// Notional is price times amount.
func NewTradeReport(t *MTrade) *MTradeReport {
	return &MTradeReport{
		Trade:    *t,
		Notional: t.Price * t.Amount,
	}
}
