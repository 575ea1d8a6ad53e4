package interfaces

import (
	"bbo-tracker/src/config"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------

// IFeedConstructor defines the function signature for creating a new IFeed instance.
type IFeedConstructor func(config *config.Config, logger *logger.Logger, name string) (IFeed, error)

// -----------------------------------------------------------------------------

// IFeed defines the core interface for all market-data feed implementations
type IFeed interface {
	// GetName returns the feed name
	GetName() string

	// GetType returns the asset type (crypto, equity...)
	GetType() string

	// GetEndPoint returns the base API endpoint of the feed (for display/logging)
	GetEndPoint() string

	// GetStreamEndpoint returns the full endpoint the connection client dials,
	// including the streamed symbol and any credentials or stream options
	GetStreamEndpoint() string

	// GetSymbols returns the streamed symbols list
	GetSymbols() []string

	// AddSubscription creates the subscription payload for symbols.
	// Feeds that subscribe through the stream URL return a nil payload.
	AddSubscription(symbols []string) ([]byte, error)

	// RemoveSubscription creates the unsubscription payload for symbols
	RemoveSubscription(symbols []string) ([]byte, error)

	// DecodeMessage decodes a raw frame into a market message
	DecodeMessage(message []byte) (*models.MMarketMessage, error)
}
