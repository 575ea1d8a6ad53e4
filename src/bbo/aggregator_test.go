package bbo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbo-tracker/src/models"
)

func TestApply_BidTouchesOnlyBidFields(t *testing.T) {
	agg := NewAggregator()

	agg.Apply(&models.MQuote{Price: 50010.00, Remaining: 0.8, Side: models.SideAsk})
	snapshot := agg.Apply(&models.MQuote{Price: 50000.00, Remaining: 1.5, Side: models.SideBid})

	assert.Equal(t, 50000.00, snapshot.BestBid)
	assert.Equal(t, 1.5, snapshot.BidAmountRemaining)
	assert.Equal(t, 50010.00, snapshot.BestOffer, "a bid update must not touch ask fields")
	assert.Equal(t, 0.8, snapshot.AskAmountRemaining)
}

func TestApply_AskTouchesOnlyAskFields(t *testing.T) {
	agg := NewAggregator()

	agg.Apply(&models.MQuote{Price: 50000.00, Remaining: 1.5, Side: models.SideBid})
	snapshot := agg.Apply(&models.MQuote{Price: 50010.00, Remaining: 0.8, Side: models.SideAsk})

	assert.Equal(t, 50010.00, snapshot.BestOffer)
	assert.Equal(t, 0.8, snapshot.AskAmountRemaining)
	assert.Equal(t, 50000.00, snapshot.BestBid, "an ask update must not touch bid fields")
	assert.Equal(t, 1.5, snapshot.BidAmountRemaining)
}

func TestApply_UnknownSideIsNoOp(t *testing.T) {
	agg := NewAggregator()
	agg.Apply(&models.MQuote{Price: 50000.00, Remaining: 1.5, Side: models.SideBid})
	agg.Apply(&models.MQuote{Price: 50010.00, Remaining: 0.8, Side: models.SideAsk})
	before := agg.Snapshot()

	snapshot := agg.Apply(&models.MQuote{Price: 99999.99, Remaining: 99.0, Side: models.SideUnknown})

	assert.Equal(t, before, snapshot, "unknown side must leave the book unchanged but still yield a snapshot")
	assert.Equal(t, before, agg.Snapshot())
}

func TestApply_SequenceExample(t *testing.T) {
	agg := NewAggregator()

	agg.Apply(&models.MQuote{Price: 50000.00, Remaining: 1.5, Side: models.SideBid})
	snapshot := agg.Apply(&models.MQuote{Price: 50010.00, Remaining: 0.8, Side: models.SideAsk})

	require.Equal(t, models.MBestBidOffer{
		BestBid:            50000.00,
		BestOffer:          50010.00,
		BidAmountRemaining: 1.5,
		AskAmountRemaining: 0.8,
	}, snapshot)
}

func TestApply_LatestQuoteWins(t *testing.T) {
	agg := NewAggregator()

	agg.Apply(&models.MQuote{Price: 50000.00, Remaining: 1.5, Side: models.SideBid})
	snapshot := agg.Apply(&models.MQuote{Price: 49999.00, Remaining: 2.0, Side: models.SideBid})

	assert.Equal(t, 49999.00, snapshot.BestBid)
	assert.Equal(t, 2.0, snapshot.BidAmountRemaining)
}

func TestApply_PriceAndRemainingChangeAtomically(t *testing.T) {
	// Each writer always uses price == remaining for its side, so any
	// snapshot where they differ proves a torn read.
	agg := NewAggregator()
	agg.Apply(&models.MQuote{Price: 1, Remaining: 1, Side: models.SideBid})
	agg.Apply(&models.MQuote{Price: 1, Remaining: 1, Side: models.SideAsk})

	const iterations = 2000
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 2; i < iterations; i++ {
			agg.Apply(&models.MQuote{Price: float64(i), Remaining: float64(i), Side: models.SideBid})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 2; i < iterations; i++ {
			agg.Apply(&models.MQuote{Price: float64(i), Remaining: float64(i), Side: models.SideAsk})
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			final := agg.Snapshot()
			assert.Equal(t, final.BestBid, final.BidAmountRemaining)
			assert.Equal(t, final.BestOffer, final.AskAmountRemaining)
			return
		default:
			snapshot := agg.Snapshot()
			require.Equal(t, snapshot.BestBid, snapshot.BidAmountRemaining,
				"torn read: bid price and remaining must change together")
			require.Equal(t, snapshot.BestOffer, snapshot.AskAmountRemaining,
				"torn read: ask price and remaining must change together")
		}
	}
}

func TestSnapshot_ZeroValueBeforeAnyQuote(t *testing.T) {
	agg := NewAggregator()
	assert.Equal(t, models.MBestBidOffer{}, agg.Snapshot())
}
