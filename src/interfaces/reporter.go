package interfaces

import "bbo-tracker/src/models"

// -----------------------------------------------------------------------------

// IReporter defines the interface for reporting sinks. Sinks receive
// structured values only; formatting is the sink's concern.
type IReporter interface {
	// OnTrade receives one report per decoded trade event
	OnTrade(report *models.MTradeReport)

	// OnBBO receives the full top-of-book snapshot after each quote event,
	// as an immutable point-in-time copy
	OnBBO(snapshot models.MBestBidOffer)
}

// -----------------------------------------------------------------------------

// IPublisher is a reporter that publishes to an external message broker and
// therefore carries a connection lifecycle.
type IPublisher interface {
	IReporter

	// Connect establishes connection to the message broker
	Connect() error

	// Disconnect closes the connection to the message broker
	Disconnect() error

	// IsConnected returns the current connection status
	IsConnected() bool
}
