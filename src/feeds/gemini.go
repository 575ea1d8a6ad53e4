package feeds

import (
	"fmt"
	"strings"

	"bbo-tracker/src/config"
	"bbo-tracker/src/decoder"
	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// Gemini implements interfaces.IFeed for the Gemini v1 marketdata stream
type Gemini struct {
	Name   string
	Logger *logger.Logger
	Config *models.MFeedConfig
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR AND REGISTRATION
// -----------------------------------------------------------------------------

func init() {
	// Register the feed with the name "gemini" for dynamic creation
	if err := Register("gemini", NewGemini); err != nil {
		fmt.Printf("Error registering Gemini feed: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// NewGemini creates a new Gemini feed instance.
// Matches the interfaces.IFeedConstructor signature: (config, logger, name) -> (IFeed, error)
func NewGemini(config *config.Config, logger *logger.Logger, name string) (interfaces.IFeed, error) {
	feedConfig := config.GetFeedByName(name)
	if feedConfig == nil {
		logger.Warning("%s : Gemini config not found; returning error", name)
		return nil, fmt.Errorf("feed config '%s' not found", name)
	}

	feed := &Gemini{
		Name:   name,
		Logger: logger,
		Config: feedConfig,
	}

	if err := feed.ValidateConfiguration(); err != nil {
		return nil, fmt.Errorf("invalid gemini configuration: %w", err)
	}

	return feed, nil
}

// -----------------------------------------------------------------------------
// IFeed IMPLEMENTATION
// -----------------------------------------------------------------------------

// GetName returns the feed name
func (g *Gemini) GetName() string {
	return g.Name
}

// -----------------------------------------------------------------------------

// GetType returns the asset type
func (g *Gemini) GetType() string {
	return "crypto"
}

// -----------------------------------------------------------------------------

// GetEndPoint returns the base WebSocket endpoint URL
func (g *Gemini) GetEndPoint() string {
	return g.Config.Endpoint
}

// -----------------------------------------------------------------------------

// GetStreamEndpoint returns the full URL the connection client dials.
// Gemini v1 marketdata is a per-symbol stream, so the streamed symbol and
// the top-of-book option are part of the URL, not a subscription message.
func (g *Gemini) GetStreamEndpoint() string {
	base := strings.TrimRight(g.Config.Endpoint, "/")
	symbol := strings.ToLower(g.Config.Symbols[0])
	return fmt.Sprintf("%s/%s?top_of_book=true", base, symbol)
}

// -----------------------------------------------------------------------------

// GetSymbols returns the list of configured trading symbols
func (g *Gemini) GetSymbols() []string {
	return g.Config.Symbols
}

// -----------------------------------------------------------------------------

// AddSubscription returns the subscription payload for the given symbols.
// Gemini v1 subscribes through the stream URL, so there is no payload to send.
func (g *Gemini) AddSubscription(symbols []string) ([]byte, error) {
	g.Logger.Debug("%s : symbols %v are subscribed through the stream URL, no payload needed", g.Name, symbols)
	return nil, nil
}

// -----------------------------------------------------------------------------

// RemoveSubscription returns the unsubscription payload for the given symbols.
// Gemini v1 has no unsubscribe message; dropping the connection ends the stream.
func (g *Gemini) RemoveSubscription(symbols []string) ([]byte, error) {
	g.Logger.Debug("%s : symbols %v cannot be unsubscribed individually on a v1 stream", g.Name, symbols)
	return nil, nil
}

// -----------------------------------------------------------------------------

// DecodeMessage decodes a raw frame into a market message.
func (g *Gemini) DecodeMessage(message []byte) (*models.MMarketMessage, error) {
	return decoder.Decode(message)
}

// -----------------------------------------------------------------------------

// ValidateConfiguration validates Gemini feed configuration
func (g *Gemini) ValidateConfiguration() error {
	// Check if essential fields are set
	if g.Config.Endpoint == "" {
		return fmt.Errorf("gemini endpoint cannot be empty")
	}

	// Gemini-specific validation: enforce secure websocket protocol
	if !strings.HasPrefix(g.Config.Endpoint, "wss://") {
		return fmt.Errorf("gemini endpoint must use wss:// protocol")
	}

	if len(g.Config.Symbols) == 0 {
		return fmt.Errorf("gemini feed needs at least one symbol")
	}

	return nil
}
