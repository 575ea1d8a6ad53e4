package factories

import (
	"fmt"

	"bbo-tracker/src/config"
	"bbo-tracker/src/feeds"
	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
	"bbo-tracker/src/transports"
)

// -----------------------------------------------------------------------------

// FeedFactory creates feed instances and their connection clients based on
// configuration.
type FeedFactory struct {
	Name   string
	Config *config.Config
	Logger *logger.Logger

	// OnMessageCallback receives each successfully decoded market message
	OnMessageCallback func(string, *models.MMarketMessage)

	// OnDecodeFailure is invoked when a raw frame cannot be decoded; the
	// frame is skipped but the stream keeps running
	OnDecodeFailure func(string, error)
}

// -----------------------------------------------------------------------------

// NewFeedFactory creates a new FeedFactory instance
func NewFeedFactory(config *config.Config, logger *logger.Logger, onMessage func(string, *models.MMarketMessage), onDecodeFailure func(string, error)) *FeedFactory {
	return &FeedFactory{
		Name:              "FeedFactory",
		Config:            config,
		Logger:            logger,
		OnMessageCallback: onMessage,
		OnDecodeFailure:   onDecodeFailure,
	}
}

// -----------------------------------------------------------------------------

// CreateFeed creates a feed instance by name using the dynamic registry.
func (ff *FeedFactory) CreateFeed(feedName string) (interfaces.IFeed, error) {
	// Dynamically fetch the constructor from the feeds package registry
	constructor, err := feeds.GetConstructor(feedName)
	if err != nil {
		return nil, err // Returns "unknown feed type: ..." error
	}

	newFeed, err := constructor(ff.Config, ff.Logger, feedName)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed %s: %w", feedName, err)
	}

	ff.Logger.Info("%s : successfully created feed %s of type %s",
		ff.Name,
		newFeed.GetName(),
		newFeed.GetType(),
	)

	return newFeed, nil
}

// -----------------------------------------------------------------------------

// CreateConnectionClient creates a connection client for a feed
func (ff *FeedFactory) CreateConnectionClient(feedName string) (interfaces.IConnectionClient, error) {
	feedConfig := ff.Config.GetFeedByName(feedName)
	if feedConfig == nil {
		return nil, fmt.Errorf("feed %s not found in config", feedName)
	}

	// 1. Get the IFeed instance to access the DecodeMessage method and the
	// full stream endpoint
	feedInstance, err := ff.CreateFeed(feedName)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed %s for connection client: %w", feedName, err)
	}

	// 2. Define the onRawData callback closure for the transport client.
	// Malformed frames are logged with a raw snippet and skipped; the
	// stream itself keeps running.
	onRawData := func(message []byte) {
		marketMessage, err := feedInstance.DecodeMessage(message)
		if err != nil {
			ff.Logger.Error("%s : failed to decode message for %s: %v (raw: %s)", ff.Name, feedName, err, rawSnippet(message))
			if ff.OnDecodeFailure != nil {
				ff.OnDecodeFailure(feedName, err)
			}
			return
		}

		if marketMessage != nil && ff.OnMessageCallback != nil {
			ff.OnMessageCallback(feedName, marketMessage)
		}
	}

	// 3. Create the appropriate connection client based on transport type
	switch feedConfig.Type {
	case "websocket":
		return transports.NewWebSocketClient(
			feedConfig,
			ff.Logger,
			feedName,
			feedInstance.GetStreamEndpoint(),
			onRawData,
		), nil
	default:
		// Raise an error if the connection type is not explicitly supported.
		return nil, fmt.Errorf("unsupported connection type '%s' for feed %s", feedConfig.Type, feedName)
	}
}

// -----------------------------------------------------------------------------

// CreateFeedWithConnection creates both feed and connection client
func (ff *FeedFactory) CreateFeedWithConnection(feedName string) (interfaces.IFeed, interfaces.IConnectionClient, error) {
	feed, err := ff.CreateFeed(feedName)
	if err != nil {
		return nil, nil, err
	}

	connection, err := ff.CreateConnectionClient(feedName)
	if err != nil {
		return nil, nil, err
	}

	return feed, connection, nil
}

// -----------------------------------------------------------------------------

// rawSnippet truncates a raw frame for log output.
func rawSnippet(message []byte) string {
	const maxLen = 256
	if len(message) > maxLen {
		return string(message[:maxLen]) + "..."
	}
	return string(message)
}
