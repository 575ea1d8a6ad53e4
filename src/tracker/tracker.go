package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"bbo-tracker/src/bbo"
	"bbo-tracker/src/config"
	"bbo-tracker/src/factories"
	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
	"bbo-tracker/src/publishers"
	"bbo-tracker/src/reporters"
	"bbo-tracker/src/serializers"
)

// -----------------------------------------------------------------------------
// Core Application Structs
// -----------------------------------------------------------------------------

// Tracker consumes decoded market messages from the configured feeds, folds
// quote events into the top-of-book aggregate and fans every result out to
// the reporting sinks.
type Tracker struct {
	Name   string
	Config *config.Config
	Logger *logger.Logger

	// Aggregator owns the single top-of-book record
	Aggregator *bbo.Aggregator

	// Publisher routes reports to the message bus (NATS)
	Publisher interfaces.IPublisher

	// Reporters receive every trade report and snapshot (includes Publisher)
	Reporters []interfaces.IReporter

	// Factory dependency to create feed and connection clients
	Factory *factories.FeedFactory

	// Running feed source instances
	Sources map[string]interfaces.IFeedSource

	stats  Stats
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------

// Stats counts what flowed through the dispatch loop since startup.
type Stats struct {
	MessagesProcessed int64 `json:"messages_processed"`
	DecodeFailures    int64 `json:"decode_failures"`
	TradeEvents       int64 `json:"trade_events"`
	QuoteEvents       int64 `json:"quote_events"`
	UnknownEvents     int64 `json:"unknown_events"`
}

// -----------------------------------------------------------------------------

// NewTracker creates a new Tracker instance
func NewTracker(config *config.Config, logger *logger.Logger) (*Tracker, error) {
	ctx, cancel := context.WithCancel(context.Background())

	serializer, err := serializers.New(config.Serialization)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create serializer: %w", err)
	}

	// The published subjects carry the streamed symbol of the first feed
	symbol := config.Feeds[0].Symbols[0]
	publisher := publishers.NewNATSPublisher(&config.NATS, logger, serializer, symbol)

	tracker := &Tracker{
		Name:   "BBOTracker",
		Config: config,
		Logger: logger,

		Aggregator: bbo.NewAggregator(),
		Publisher:  publisher,
		Reporters: []interfaces.IReporter{
			reporters.NewConsole(nil),
			publisher,
		},

		Sources: make(map[string]interfaces.IFeedSource),
		ctx:     ctx,
		cancel:  cancel,
	}

	// The factory routes every decoded message into the dispatch loop
	tracker.Factory = factories.NewFeedFactory(config, logger, tracker.ProcessMessage, tracker.onDecodeFailure)

	return tracker, nil
}

// -----------------------------------------------------------------------------
// Public Lifecycle Methods (All Sources)
// -----------------------------------------------------------------------------

// Start begins consuming market data from all configured feeds
func (t *Tracker) Start() error {
	t.Logger.Info("%s : starting tracker", t.Name)

	// 1. Connect to publisher first - fail fast if publisher unavailable
	t.Logger.Info("%s : connecting to publisher", t.Name)
	if err := t.Publisher.Connect(); err != nil {
		return fmt.Errorf("failed to connect to publisher: %w", err)
	}
	t.Logger.Info("%s : publisher connected successfully", t.Name)

	// 2. Create all sources using the factory
	if err := t.createAllSources(); err != nil {
		return fmt.Errorf("failed to create all feed sources: %w", err)
	}

	// 3. Start all connections concurrently
	t.startAllSources()

	t.Logger.Info("%s : tracker started successfully, monitoring %d connections", t.Name, len(t.Sources))
	return nil
}

// -----------------------------------------------------------------------------

// Stop gracefully shuts down the tracker and all feed sources
func (t *Tracker) Stop() error {
	t.Logger.Info("%s : stopping tracker", t.Name)

	// Call stop on all sources
	t.mu.RLock()
	for _, source := range t.Sources {
		source.Stop()
	}
	t.mu.RUnlock()

	// Signal goroutines to exit (if they check the context)
	t.cancel()

	// Wait for all connection goroutines to finish
	t.wg.Wait()

	// Disconnect publisher after all feed sources have stopped
	t.Logger.Info("%s : disconnecting publisher", t.Name)
	if err := t.Publisher.Disconnect(); err != nil {
		t.Logger.Error("%s : failed to disconnect publisher: %v", t.Name, err)
	}

	t.Logger.Info("%s : tracker stopped", t.Name)
	return nil
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

// ProcessMessage dispatches one decoded market message. Events are handled
// one at a time in wire order: trades go straight to the reporting sinks
// with their notional value, quotes go through the aggregator and the
// resulting snapshot is reported, unknown events are counted and skipped.
// The message's event list is processed to completion before the transport
// hands over the next message.
func (t *Tracker) ProcessMessage(feedName string, message *models.MMarketMessage) {
	atomic.AddInt64(&t.stats.MessagesProcessed, 1)

	for i := range message.Events {
		event := &message.Events[i]
		switch event.Kind {
		case models.KindTrade:
			atomic.AddInt64(&t.stats.TradeEvents, 1)
			report := models.NewTradeReport(event.Trade)
			for _, reporter := range t.Reporters {
				reporter.OnTrade(report)
			}

		case models.KindChange:
			atomic.AddInt64(&t.stats.QuoteEvents, 1)
			snapshot := t.Aggregator.Apply(event.Quote)
			for _, reporter := range t.Reporters {
				reporter.OnBBO(snapshot)
			}

		default:
			atomic.AddInt64(&t.stats.UnknownEvents, 1)
			t.Logger.Debug("%s : skipping unknown event %d of message %d from %s", t.Name, i, message.EventID, feedName)
		}
	}
}

// -----------------------------------------------------------------------------

// GetBBO returns the current top-of-book snapshot.
func (t *Tracker) GetBBO() models.MBestBidOffer {
	return t.Aggregator.Snapshot()
}

// -----------------------------------------------------------------------------

// GetStats returns a copy of the dispatch counters.
func (t *Tracker) GetStats() Stats {
	return Stats{
		MessagesProcessed: atomic.LoadInt64(&t.stats.MessagesProcessed),
		DecodeFailures:    atomic.LoadInt64(&t.stats.DecodeFailures),
		TradeEvents:       atomic.LoadInt64(&t.stats.TradeEvents),
		QuoteEvents:       atomic.LoadInt64(&t.stats.QuoteEvents),
		UnknownEvents:     atomic.LoadInt64(&t.stats.UnknownEvents),
	}
}

// -----------------------------------------------------------------------------

// onDecodeFailure counts malformed frames; the factory already logged them.
func (t *Tracker) onDecodeFailure(feedName string, err error) {
	atomic.AddInt64(&t.stats.DecodeFailures, 1)
}

// -----------------------------------------------------------------------------
// Dynamic Feed Source Management Methods
// -----------------------------------------------------------------------------

// StartFeed starts a single, named feed source synchronously.
func (t *Tracker) StartFeed(feedName string) error {
	t.mu.RLock()
	source, ok := t.Sources[feedName]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("feed source '%s' not found", feedName)
	}

	t.Logger.Info("%s : starting feed source %s", t.Name, feedName)
	if err := source.Start(); err != nil {
		t.Logger.Error("%s : feed source %s startup error: %v", t.Name, feedName, err)
		return err
	}

	t.Logger.Info("%s : feed source '%s' started successfully", t.Name, feedName)
	return nil
}

// -----------------------------------------------------------------------------

// StopFeed stops a single, named feed source.
func (t *Tracker) StopFeed(feedName string) error {
	t.mu.RLock()
	source, ok := t.Sources[feedName]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s : feed source '%s' not found", t.Name, feedName)
	}

	t.Logger.Info("%s : stopping feed source %s", t.Name, feedName)
	return source.Stop()
}

// -----------------------------------------------------------------------------

// AddFeed creates a new feed source instance based on the configuration name, and stores it.
func (t *Tracker) AddFeed(feedName string) error {
	t.Logger.Info("%s : attempting to add new feed source: %s", t.Name, feedName)

	t.mu.RLock()
	_, exists := t.Sources[feedName]
	t.mu.RUnlock()

	if exists {
		return fmt.Errorf("feed source '%s' is already registered", feedName)
	}

	feed, connection, err := t.Factory.CreateFeedWithConnection(feedName)
	if err != nil {
		return fmt.Errorf("failed to create feed/connection for %s: %w", feedName, err)
	}

	t.mu.Lock()
	t.Sources[feedName] = &FeedSource{
		Name:   feedName,
		Logger: t.Logger,
		Feed:   feed,
		Client: connection,
	}
	t.mu.Unlock()

	t.Logger.Info("%s : feed source '%s' successfully added, ready to be started", t.Name, feedName)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveFeed removes a feed source instance from the map.
func (t *Tracker) RemoveFeed(feedName string) error {
	t.mu.RLock()
	source, exists := t.Sources[feedName]
	t.mu.RUnlock()

	if !exists {
		return fmt.Errorf("feed source '%s' not found for deletion", feedName)
	}

	if source.GetStatus().Running {
		source.Stop()
	}

	t.mu.Lock()
	delete(t.Sources, feedName)
	t.mu.Unlock()
	t.Logger.Info("%s : feed source '%s' successfully deleted from management map", t.Name, feedName)
	return nil
}

// -----------------------------------------------------------------------------

// ListFeeds returns the names of all managed feed sources.
func (t *Tracker) ListFeeds() []string {
	var names []string

	t.mu.RLock()
	defer t.mu.RUnlock()

	for name := range t.Sources {
		names = append(names, name)
	}
	return names
}

// -----------------------------------------------------------------------------
// Status Methods
// -----------------------------------------------------------------------------

// GetFeedStatus returns the current status information for a single feed source.
func (t *Tracker) GetFeedStatus(feedName string) (*models.MFeedStatus, error) {
	t.mu.RLock()
	source, ok := t.Sources[feedName]
	t.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("feed source '%s' not found in tracker map", feedName)
	}

	return source.GetStatus(), nil
}

// -----------------------------------------------------------------------------
// Subscription Management Methods
// -----------------------------------------------------------------------------

// SubscribeFeed subscribes a single, named feed source to the given symbols.
func (t *Tracker) SubscribeFeed(feedName string, symbols []string) error {
	t.mu.RLock()
	source, ok := t.Sources[feedName]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("feed source '%s' not found", feedName)
	}

	t.Logger.Info("%s : sending subscription for symbols %v to feed source: %s", t.Name, symbols, feedName)
	return source.Subscribe(symbols)
}

// -----------------------------------------------------------------------------

// UnSubscribeFeed unsubscribes a single, named feed source from the given symbols.
func (t *Tracker) UnSubscribeFeed(feedName string, symbols []string) error {
	t.mu.RLock()
	source, ok := t.Sources[feedName]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("feed source '%s' not found", feedName)
	}

	t.Logger.Info("%s : sending unsubscription for symbols %v to feed source: %s", t.Name, symbols, feedName)
	return source.UnSubscribe(symbols)
}

// -----------------------------------------------------------------------------
// Private/Helper Methods
// -----------------------------------------------------------------------------

// createAllSources uses the FeedFactory to initialize all necessary
// feed and connection clients based on the config.
func (t *Tracker) createAllSources() error {
	t.Sources = make(map[string]interfaces.IFeedSource)

	for _, feedConfig := range t.Config.Feeds {
		feedName := feedConfig.Name
		feed, connection, err := t.Factory.CreateFeedWithConnection(feedName)
		if err != nil {
			t.Logger.Error("%s : skipping feed source %s: failed to create feed/connection: %v", t.Name, feedName, err)
			continue
		}

		t.Sources[feedName] = &FeedSource{
			Name:   feedName,
			Logger: t.Logger,
			Feed:   feed,
			Client: connection,
		}
	}

	if len(t.Sources) == 0 {
		return fmt.Errorf("no valid feed sources were initialized from configuration")
	}

	return nil
}

// -----------------------------------------------------------------------------

// startAllSources starts all registered feed sources concurrently
func (t *Tracker) startAllSources() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for name, source := range t.Sources {
		t.wg.Add(1)
		go func(n string, s interfaces.IFeedSource) {
			defer t.wg.Done()
			t.Logger.Info("%s : starting feed source %s", t.Name, n)
			if err := s.Start(); err != nil {
				t.Logger.Error("%s : feed source %s startup error: %v", t.Name, n, err)
			}
			// Start() blocks only until the connection client is running; the
			// actual data flow happens inside the IConnectionClient.
		}(name, source)
	}
}
