package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbo-tracker/src/config"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

func testConfig(endpoint string, symbols []string) *config.Config {
	return &config.Config{MConfig: &models.MConfig{
		Name:     "test",
		LogLevel: "error",
		Feeds: []*models.MFeedConfig{
			{
				Name:     "gemini",
				Type:     "websocket",
				Endpoint: endpoint,
				Symbols:  symbols,
			},
		},
	}}
}

func TestNewGemini_StreamEndpoint(t *testing.T) {
	cfg := testConfig("wss://api.gemini.com/v1/marketdata", []string{"BTCUSD"})
	log := logger.NewLogger(cfg, "test")

	feed, err := NewGemini(cfg, log, "gemini")
	require.NoError(t, err)

	assert.Equal(t, "gemini", feed.GetName())
	assert.Equal(t, "crypto", feed.GetType())
	assert.Equal(t, "wss://api.gemini.com/v1/marketdata", feed.GetEndPoint())
	assert.Equal(t, "wss://api.gemini.com/v1/marketdata/btcusd?top_of_book=true", feed.GetStreamEndpoint())
}

func TestNewGemini_RejectsInsecureEndpoint(t *testing.T) {
	cfg := testConfig("ws://api.gemini.com/v1/marketdata", []string{"btcusd"})
	log := logger.NewLogger(cfg, "test")

	_, err := NewGemini(cfg, log, "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wss://")
}

func TestNewGemini_UnknownFeedName(t *testing.T) {
	cfg := testConfig("wss://api.gemini.com/v1/marketdata", []string{"btcusd"})
	log := logger.NewLogger(cfg, "test")

	_, err := NewGemini(cfg, log, "kraken")
	require.Error(t, err)
}

func TestGemini_SubscriptionPayloadsAreNil(t *testing.T) {
	cfg := testConfig("wss://api.gemini.com/v1/marketdata", []string{"btcusd"})
	log := logger.NewLogger(cfg, "test")

	feed, err := NewGemini(cfg, log, "gemini")
	require.NoError(t, err)

	payload, err := feed.AddSubscription([]string{"btcusd"})
	require.NoError(t, err)
	assert.Nil(t, payload)

	payload, err = feed.RemoveSubscription([]string{"btcusd"})
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestGemini_DecodeMessage(t *testing.T) {
	cfg := testConfig("wss://api.gemini.com/v1/marketdata", []string{"btcusd"})
	log := logger.NewLogger(cfg, "test")

	feed, err := NewGemini(cfg, log, "gemini")
	require.NoError(t, err)

	msg, err := feed.DecodeMessage([]byte(`{"eventId": 1, "socket_sequence": 1, "events": []}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), msg.EventID)

	_, err = feed.DecodeMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestRegistry_GeminiIsRegistered(t *testing.T) {
	constructor, err := GetConstructor("gemini")
	require.NoError(t, err)
	assert.NotNil(t, constructor)

	_, err = GetConstructor("nope")
	assert.Error(t, err)
}
