package tracker

import (
	"context"
	"fmt"

	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------

// FeedSource holds the feed and connection client for a single data stream
type FeedSource struct {
	Name   string
	Logger *logger.Logger
	Feed   interfaces.IFeed
	Client interfaces.IConnectionClient
}

// -----------------------------------------------------------------------------

// GetName returns the source name.
func (s *FeedSource) GetName() string {
	return s.Name
}

// -----------------------------------------------------------------------------

// Start initiates the connection client.
func (s *FeedSource) Start() error {
	s.Logger.Info("%s : starting connection client for feed", s.Name)
	if err := s.Client.Connect(context.Background()); err != nil {
		return fmt.Errorf("failed to start client %s: %w", s.Name, err)
	}

	s.Logger.Info("%s : connection client started", s.Name)
	return nil
}

// -----------------------------------------------------------------------------

// Stop closes the connection client.
func (s *FeedSource) Stop() error {
	s.Logger.Info("%s : stopping connection client for feed", s.Name)
	return s.Client.Disconnect()
}

// -----------------------------------------------------------------------------
// Subscription Methods
// -----------------------------------------------------------------------------

// Subscribe creates a subscription payload for the given symbols and sends
// it over the connection. Feeds that subscribe through the stream URL yield
// a nil payload, in which case there is nothing to send.
func (s *FeedSource) Subscribe(symbols []string) error {
	if len(symbols) == 0 {
		return nil // Nothing to subscribe to
	}

	subscriptionMsg, err := s.Feed.AddSubscription(symbols)
	if err != nil {
		return fmt.Errorf("failed to build subscription payload for %s: %w", s.Name, err)
	}

	if subscriptionMsg == nil {
		s.Logger.Debug("%s : feed subscribes through its stream URL, nothing to send", s.Name)
		return nil
	}

	if err := s.Client.SendMessage(subscriptionMsg); err != nil {
		return fmt.Errorf("failed to send subscription message for %s: %w", s.Name, err)
	}

	s.Logger.Info("%s : successfully sent subscription message for %d symbols", s.Name, len(symbols))
	return nil
}

// -----------------------------------------------------------------------------

// UnSubscribe creates an unsubscription payload for the given symbols and
// sends it over the connection.
func (s *FeedSource) UnSubscribe(symbols []string) error {
	if len(symbols) == 0 {
		return nil // Nothing to unsubscribe from
	}

	unsubscriptionMsg, err := s.Feed.RemoveSubscription(symbols)
	if err != nil {
		return fmt.Errorf("failed to build unsubscription payload for %s: %w", s.Name, err)
	}

	if unsubscriptionMsg == nil {
		s.Logger.Debug("%s : feed has no unsubscription message, nothing to send", s.Name)
		return nil
	}

	if err := s.Client.SendMessage(unsubscriptionMsg); err != nil {
		return fmt.Errorf("failed to send unsubscription message for %s: %w", s.Name, err)
	}

	s.Logger.Info("%s : successfully sent unsubscription message for %d symbols", s.Name, len(symbols))
	return nil
}

// -----------------------------------------------------------------------------

// GetStatus aggregates runtime status from the feed and connection client.
func (s *FeedSource) GetStatus() *models.MFeedStatus {
	return &models.MFeedStatus{
		FeedName:      s.Feed.GetName(),
		Running:       s.Client.IsRunning(),
		Type:          s.Feed.GetType(),
		TransportType: s.Client.GetType(),
		Endpoint:      s.Feed.GetEndPoint(),
		Symbols:       s.Feed.GetSymbols(),
	}
}
