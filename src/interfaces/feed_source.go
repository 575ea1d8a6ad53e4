package interfaces

import "bbo-tracker/src/models"

// -----------------------------------------------------------------------------

// IFeedSource defines the interface for managing a single data stream
type IFeedSource interface {
	GetName() string
	Start() error
	Stop() error
	Subscribe(symbols []string) error
	UnSubscribe(symbols []string) error
	GetStatus() *models.MFeedStatus
}
