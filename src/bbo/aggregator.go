package bbo

import (
	"sync"

	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------

// Aggregator folds quote events into the single top-of-book record. The
// record is exclusively owned here; callers only ever get value snapshots.
type Aggregator struct {
	mu   sync.Mutex
	book models.MBestBidOffer
}

// -----------------------------------------------------------------------------

// NewAggregator creates an Aggregator with an all-zero book, meaning no
// market data has been observed yet.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// -----------------------------------------------------------------------------

// Apply folds one quote into the book and returns the resulting snapshot.
//
// A bid quote overwrites only the bid price and bid remaining amount, an ask
// quote only the ask pair. The two fields of a side change together under
// the lock, so a concurrent Snapshot never sees a fresh price paired with a
// stale remaining amount. A quote with an unknown side changes nothing but
// still returns the current snapshot so the caller can report it.
func (a *Aggregator) Apply(quote *models.MQuote) models.MBestBidOffer {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch quote.Side {
	case models.SideBid:
		a.book.BestBid = quote.Price
		a.book.BidAmountRemaining = quote.Remaining
	case models.SideAsk:
		a.book.BestOffer = quote.Price
		a.book.AskAmountRemaining = quote.Remaining
	case models.SideUnknown:
		// no-op
	}

	return a.book
}

// -----------------------------------------------------------------------------

// Snapshot returns a point-in-time copy of the book without modifying it.
func (a *Aggregator) Snapshot() models.MBestBidOffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.book
}
