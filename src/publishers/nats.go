package publishers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"bbo-tracker/src/interfaces"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// -----------------------------------------------------------------------------
// NATSPublisher implements interfaces.IPublisher
// -----------------------------------------------------------------------------

// NATSPublisher publishes trade reports and top-of-book snapshots to NATS.
type NATSPublisher struct {
	name   string
	symbol string
	config *models.MNATSConfig
	logger *logger.Logger

	useJetStream bool

	mu sync.RWMutex

	nc         *nats.Conn             // NATS core connection
	js         nats.JetStreamContext  // JetStream context (if enabled)
	serializer interfaces.ISerializer // serialize message before sending

	connected bool
}

// -----------------------------------------------------------------------------

// NewNATSPublisher creates a new NATS publisher instance. The symbol becomes
// part of the published subjects. The client name gets a random suffix so
// parallel instances do not collide on the server.
func NewNATSPublisher(config *models.MNATSConfig, logger *logger.Logger, serializer interfaces.ISerializer, symbol string) interfaces.IPublisher {
	return &NATSPublisher{
		name:   fmt.Sprintf("%s-%s", config.ClientID, uuid.NewString()[:8]),
		symbol: strings.ToLower(symbol),
		config: config,
		logger: logger,

		serializer: serializer,
	}
}

// -----------------------------------------------------------------------------

// OnTrade publishes one trade report with its notional value.
func (np *NATSPublisher) OnTrade(report *models.MTradeReport) {
	np.logger.Info("%s : TRADE: %s %.8g @ %.8g ($%.2f)", np.name, np.symbol, report.Trade.Amount, report.Trade.Price, report.Notional)

	subject := fmt.Sprintf("trade.%s", np.symbol)
	np.publishObject(subject, report)
}

// -----------------------------------------------------------------------------

// OnBBO publishes the current top-of-book snapshot.
func (np *NATSPublisher) OnBBO(snapshot models.MBestBidOffer) {
	np.logger.Info("%s : BBO: %s | Bid: %.8g (%.8g) / Ask: %.8g (%.8g)", np.name, np.symbol,
		snapshot.BestBid, snapshot.BidAmountRemaining, snapshot.BestOffer, snapshot.AskAmountRemaining)

	subject := fmt.Sprintf("bbo.%s", np.symbol)
	np.publishObject(subject, &snapshot)
}

// -----------------------------------------------------------------------------

// publishObject serializes the object and sends it on the given subject.
func (np *NATSPublisher) publishObject(subject string, obj interface{}) {
	data, err := np.serializer.Marshal(obj)
	if err != nil {
		np.logger.Error("%s : failed to serialize payload for NATS subject %s: %v", np.name, subject, err)
		return
	}

	if np.useJetStream {
		err = np.PublishJetStream(subject, data)
	} else {
		err = np.Publish(subject, data)
	}

	if err != nil {
		np.logger.Error("%s : failed to publish to NATS subject %s: %v", np.name, subject, err)
	}
}

// -----------------------------------------------------------------------------

// Publish sends raw data to a NATS core subject.
func (np *NATSPublisher) Publish(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	// Prefix the subject for consistency, if configured
	fullSubject := np.getSubject(subject)

	// This is fire-and-forget; use PublishJetStream for persistence
	return np.nc.Publish(fullSubject, data)
}

// -----------------------------------------------------------------------------

// PublishJetStream sends raw data using JetStream.
func (np *NATSPublisher) PublishJetStream(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	if np.js == nil {
		return fmt.Errorf("jetstream is not initialized or enabled")
	}

	fullSubject := np.getSubject(subject)

	// Publish with persistence and guaranteed delivery acknowledgement
	_, err := np.js.Publish(fullSubject, data)
	if err != nil {
		np.logger.Error("%s : jetstream publish failed for %s: %v", np.name, fullSubject, err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Connect establishes connection to NATS server and sets up JetStream context if configured.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}

	opts := []nats.Option{
		nats.Name(np.name),
		nats.Timeout(np.config.ConnectTimeout.Duration()),
		nats.ReconnectWait(np.config.ReconnectWait.Duration()),
		nats.MaxReconnects(np.config.MaxReconnects),
		nats.FlusherTimeout(np.config.FlushTimeout.Duration()),

		// Connection Event Handlers
		nats.RetryOnFailedConnect(true),
		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Error("%s : NATS connection closed unexpectedly", np.name)
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warning("%s : NATS disconnected, attempting reconnect: %v", np.name, err)
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("%s : NATS successfully reconnected to %s", np.name, nc.ConnectedUrl())
			np.setConnected(true)
		}),
	}

	var err error
	np.nc, err = nats.Connect(np.config.Servers[0], opts...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}

	np.setConnected(true)
	np.logger.Info("%s : successfully connected to NATS at %s", np.name, np.nc.ConnectedUrl())

	// Set the publish function based on configuration
	if np.config.JetStream != nil && np.config.JetStream.Enabled {
		np.useJetStream = true
		np.logger.Info("%s : publisher using NATS JetStream for persistent data publishing", np.name)

		np.js, err = np.nc.JetStream()
		if err != nil {
			np.logger.Error("%s : failed to create JetStream context: %v", np.name, err)
			return fmt.Errorf("jetstream context creation failed: %w", err)
		}
		np.logger.Info("%s : JetStream context initialized", np.name)

		// Automatically create or update the stream based on configuration
		if err := np.ensureStreamExists(); err != nil {
			np.logger.Warning("%s : failed to ensure stream exists: %v (continuing anyway)", np.name, err)
			// Don't return error - allow publishing to fail later if stream really doesn't exist
		}

	} else {

		np.useJetStream = false
		np.logger.Warning("%s : publisher using NATS Core (fire-and-forget), JetStream is disabled in config", np.name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// ensureStreamExists creates or updates the JetStream stream based on configuration.
// This is called automatically during Connect() to ensure the stream is ready for publishing.
func (np *NATSPublisher) ensureStreamExists() error {
	if np.js == nil || np.config.JetStream == nil {
		return fmt.Errorf("jetstream not initialized")
	}

	streamName := np.config.JetStream.StreamName
	if streamName == "" {
		return fmt.Errorf("stream name not configured")
	}

	// Check if stream already exists
	stream, err := np.js.StreamInfo(streamName)
	if err == nil {
		// Stream exists - log and return
		np.logger.Info("%s : JetStream stream '%s' already exists with %d subjects",
			np.name, streamName, len(stream.Config.Subjects))
		return nil
	}

	// Stream doesn't exist - create it
	np.logger.Info("%s : creating JetStream stream '%s'", np.name, streamName)

	// Use max_age from config
	maxAge := np.config.JetStream.MaxAge.Duration()
	if maxAge == 0 {
		maxAge = 72 * time.Hour // Default to 72 hours
	}

	// Build stream configuration from config
	streamConfig := &nats.StreamConfig{
		Name:       streamName,
		Subjects:   np.config.JetStream.Subjects,
		Retention:  nats.LimitsPolicy, // Always use limits for trading data
		Storage:    nats.FileStorage,  // Always use file storage
		Replicas:   np.config.JetStream.Replicas,
		MaxAge:     maxAge,
		MaxMsgs:    np.config.JetStream.MaxMsgs,
		MaxBytes:   np.config.JetStream.MaxBytes,
		MaxMsgSize: np.config.JetStream.MaxMsgSize,
		Discard:    nats.DiscardOld, // Discard old messages when limits are reached
	}

	// Create the stream
	_, err = np.js.AddStream(streamConfig)
	if err != nil {
		return fmt.Errorf("failed to create stream '%s': %w", streamName, err)
	}

	np.logger.Info("%s : successfully created JetStream stream '%s' with subjects: %v",
		np.name, streamName, np.config.JetStream.Subjects)
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect closes the NATS connection
func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil || np.nc.IsClosed() {
		return nil
	}

	np.nc.Close()
	np.setConnected(false)
	np.logger.Info("%s : NATS connection closed successfully", np.name)
	return nil
}

// -----------------------------------------------------------------------------

// IsConnected returns connection status
func (np *NATSPublisher) IsConnected() bool {
	np.mu.RLock()
	defer np.mu.RUnlock()
	return np.connected
}

// -----------------------------------------------------------------------------

// GetName returns client identifier
func (np *NATSPublisher) GetName() string {
	return np.name
}

// -----------------------------------------------------------------------------

// Flush waits for all published messages to be acknowledged by the server (for core NATS).
func (np *NATSPublisher) Flush() error {
	if !np.IsConnected() {
		return fmt.Errorf("cannot flush: nats client not connected")
	}
	return np.nc.Flush()
}

// -----------------------------------------------------------------------------

// setConnected updates the connection status.
// This method is called from NATS connection event handlers (different goroutines),
// while the caller holds the mutex or during handler dispatch.
func (np *NATSPublisher) setConnected(status bool) {
	np.connected = status
}

// -----------------------------------------------------------------------------

// getSubject prepends the configured subject prefix if it exists.
func (np *NATSPublisher) getSubject(subject string) string {
	if np.config.SubjectPrefix != "" {
		return fmt.Sprintf("%s.%s", np.config.SubjectPrefix, subject)
	}
	return subject
}
