package reporters

import (
	"fmt"
	"io"
	"os"
	"sync"

	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------

// Console implements interfaces.IReporter by writing one line per report to
// an output sink, by default stdout.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// -----------------------------------------------------------------------------

// NewConsole creates a console reporter. A nil writer selects stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// -----------------------------------------------------------------------------

// OnTrade writes the trade and its notional value.
func (c *Console) OnTrade(report *models.MTradeReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Trade { price: %g, amount: %g, maker_side: %s } $%g\n",
		report.Trade.Price, report.Trade.Amount, report.Trade.MakerSide, report.Notional)
}

// -----------------------------------------------------------------------------

// OnBBO writes the full top-of-book snapshot.
func (c *Console) OnBBO(snapshot models.MBestBidOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "BestBidOffer { best_bid: %g, best_offer: %g, bid_amount_remaining: %g, ask_amount_remaining: %g }\n",
		snapshot.BestBid, snapshot.BestOffer, snapshot.BidAmountRemaining, snapshot.AskAmountRemaining)
}
