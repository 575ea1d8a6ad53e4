package models

// -----------------------------------------------------------------------------

// MFeedStatus represents the runtime status and technical metadata of a feed.
// It aggregates information from the underlying feed and connection client.

type MFeedStatus struct {
	FeedName      string   `json:"feed_name"`      // The name of the feed
	Running       bool     `json:"running"`        // From IConnectionClient.IsRunning()
	Type          string   `json:"type"`           // e.g. "crypto" (from IFeed.GetType())
	TransportType string   `json:"transport_type"` // e.g. "websocket" (from IConnectionClient.GetType())
	Endpoint      string   `json:"endpoint"`       // From IFeed.GetEndPoint()
	Symbols       []string `json:"symbols"`        // List of streamed symbols
}
