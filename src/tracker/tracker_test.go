package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbo-tracker/src/bbo"
	"bbo-tracker/src/config"
	"bbo-tracker/src/decoder"
	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

// fakeReporter records every report it receives, in order.
type fakeReporter struct {
	trades    []*models.MTradeReport
	snapshots []models.MBestBidOffer
}

func (f *fakeReporter) OnTrade(report *models.MTradeReport) {
	f.trades = append(f.trades, report)
}

func (f *fakeReporter) OnBBO(snapshot models.MBestBidOffer) {
	f.snapshots = append(f.snapshots, snapshot)
}

// -----------------------------------------------------------------------------

func newTestTracker(t *testing.T) (*Tracker, *fakeReporter) {
	t.Helper()

	cfg := &config.Config{MConfig: &models.MConfig{Name: "test", LogLevel: "error"}}
	fake := &fakeReporter{}

	return &Tracker{
		Name:       "BBOTracker",
		Config:     cfg,
		Logger:     logger.NewLogger(cfg, "test"),
		Aggregator: bbo.NewAggregator(),
		Reporters:  []interfaces.IReporter{fake},
		Sources:    make(map[string]interfaces.IFeedSource),
	}, fake
}

func mustDecode(t *testing.T, raw string) *models.MMarketMessage {
	t.Helper()
	msg, err := decoder.Decode([]byte(raw))
	require.NoError(t, err)
	return msg
}

// -----------------------------------------------------------------------------

func TestProcessMessage_TradeNotional(t *testing.T) {
	tracker, fake := newTestTracker(t)

	msg := mustDecode(t, `{
		"eventId": 1,
		"socket_sequence": 1,
		"events": [{"type": "trade", "price": "100.50", "amount": "2.0", "makerSide": "bid"}]
	}`)

	tracker.ProcessMessage("gemini", msg)

	require.Len(t, fake.trades, 1)
	assert.Equal(t, 100.50, fake.trades[0].Trade.Price)
	assert.Equal(t, 2.0, fake.trades[0].Trade.Amount)
	assert.Equal(t, models.SideBid, fake.trades[0].Trade.MakerSide)
	assert.Equal(t, 201.00, fake.trades[0].Notional)

	assert.Empty(t, fake.snapshots, "a trade must not produce a book snapshot")
	assert.Equal(t, models.MBestBidOffer{}, tracker.GetBBO(), "trades never touch the book")
}

func TestProcessMessage_QuoteSequence(t *testing.T) {
	tracker, fake := newTestTracker(t)

	msg := mustDecode(t, `{
		"eventId": 2,
		"socket_sequence": 2,
		"events": [
			{"type": "change", "side": "bid", "price": "50000.00", "remaining": "1.5"},
			{"type": "change", "side": "ask", "price": "50010.00", "remaining": "0.8"}
		]
	}`)

	tracker.ProcessMessage("gemini", msg)

	// One snapshot per quote, in wire order
	require.Len(t, fake.snapshots, 2)
	assert.Equal(t, models.MBestBidOffer{
		BestBid:            50000.00,
		BidAmountRemaining: 1.5,
	}, fake.snapshots[0])
	assert.Equal(t, models.MBestBidOffer{
		BestBid:            50000.00,
		BidAmountRemaining: 1.5,
		BestOffer:          50010.00,
		AskAmountRemaining: 0.8,
	}, fake.snapshots[1])

	assert.Equal(t, fake.snapshots[1], tracker.GetBBO())
}

func TestProcessMessage_UnknownSideQuoteStillReports(t *testing.T) {
	tracker, fake := newTestTracker(t)

	tracker.ProcessMessage("gemini", mustDecode(t, `{
		"eventId": 3,
		"socket_sequence": 3,
		"events": [{"type": "change", "side": "bid", "price": "100.0", "remaining": "2.0"}]
	}`))
	tracker.ProcessMessage("gemini", mustDecode(t, `{
		"eventId": 4,
		"socket_sequence": 4,
		"events": [{"type": "change", "side": "whatever", "price": "999.0", "remaining": "9.0"}]
	}`))

	// The unknown-side quote changes nothing but still yields one report
	require.Len(t, fake.snapshots, 2)
	assert.Equal(t, fake.snapshots[0], fake.snapshots[1])
}

func TestProcessMessage_UnknownEventsAreSkipped(t *testing.T) {
	tracker, fake := newTestTracker(t)

	msg := mustDecode(t, `{
		"eventId": 5,
		"socket_sequence": 5,
		"events": [
			{"type": "liquidation", "price": "1.0"},
			{"type": "trade", "price": "10.0", "amount": "3.0"}
		]
	}`)

	tracker.ProcessMessage("gemini", msg)

	assert.Empty(t, fake.snapshots)
	require.Len(t, fake.trades, 1)
	assert.Equal(t, 30.0, fake.trades[0].Notional)

	stats := tracker.GetStats()
	assert.Equal(t, int64(1), stats.MessagesProcessed)
	assert.Equal(t, int64(1), stats.UnknownEvents)
	assert.Equal(t, int64(1), stats.TradeEvents)
	assert.Equal(t, int64(0), stats.QuoteEvents)
}

func TestOnDecodeFailure_Counts(t *testing.T) {
	tracker, _ := newTestTracker(t)

	tracker.onDecodeFailure("gemini", decoder.ErrMalformedMessage)
	tracker.onDecodeFailure("gemini", decoder.ErrMalformedMessage)

	assert.Equal(t, int64(2), tracker.GetStats().DecodeFailures)
}

func TestFeedManagement_UnknownFeed(t *testing.T) {
	tracker, _ := newTestTracker(t)

	assert.Error(t, tracker.StartFeed("nope"))
	assert.Error(t, tracker.StopFeed("nope"))
	assert.Error(t, tracker.RemoveFeed("nope"))
	_, err := tracker.GetFeedStatus("nope")
	assert.Error(t, err)
	assert.Empty(t, tracker.ListFeeds())
}
