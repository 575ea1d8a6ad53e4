package rest

import (
	"encoding/json"
	"net/http"

	"bbo-tracker/src/config"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/tracker"
)

// -----------------------------------------------------------------------------
// APIHandler exposes the tracker's control surface over HTTP
// -----------------------------------------------------------------------------

type APIHandler struct {
	Name    string
	config  *config.Config
	logger  *logger.Logger
	tracker *tracker.Tracker
}

// -----------------------------------------------------------------------------

// NewAPIHandler creates a new APIHandler instance
func NewAPIHandler(config *config.Config, logger *logger.Logger, tracker *tracker.Tracker) (*APIHandler, error) {
	return &APIHandler{
		Name:    "APIHandler",
		config:  config,
		logger:  logger,
		tracker: tracker,
	}, nil
}

// -----------------------------------------------------------------------------

// Register wires every endpoint onto the given mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/rest/health", h.HealthCheck)
	mux.HandleFunc("/rest/bbo", h.BBOSnapshot)
	mux.HandleFunc("/rest/stats", h.Stats)
	mux.HandleFunc("/rest/feeds/add", h.AddFeed)
	mux.HandleFunc("/rest/feeds/remove", h.RemoveFeed)
	mux.HandleFunc("/rest/feeds/start", h.StartFeed)
	mux.HandleFunc("/rest/feeds/stop", h.StopFeed)
	mux.HandleFunc("/rest/feeds/status", h.FeedStatus)
	mux.HandleFunc("/rest/feeds/list", h.ListFeeds)
	mux.HandleFunc("/rest/feeds/symbols/add", h.SubscribeSymbols)
	mux.HandleFunc("/rest/feeds/symbols/remove", h.UnSubscribeSymbols)
}

// -----------------------------------------------------------------------------
// Endpoint Handlers
// -----------------------------------------------------------------------------

// HealthCheck reports liveness and the number of managed feed sources.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"name":   h.config.Name,
		"feeds":  len(h.tracker.ListFeeds()),
	})
}

// -----------------------------------------------------------------------------

// BBOSnapshot returns the current best bid/offer state.
func (h *APIHandler) BBOSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tracker.GetBBO())
}

// -----------------------------------------------------------------------------

// Stats returns the dispatch counters.
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tracker.GetStats())
}

// -----------------------------------------------------------------------------

// AddFeed registers a feed source named in the configuration.
func (h *APIHandler) AddFeed(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	if err := h.tracker.AddFeed(feedName); err != nil {
		h.writeError(w, http.StatusConflict, err)
		return
	}
	h.writeResult(w, feedName, "added")
}

// -----------------------------------------------------------------------------

// RemoveFeed deletes a feed source, stopping it first if needed.
func (h *APIHandler) RemoveFeed(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	if err := h.tracker.RemoveFeed(feedName); err != nil {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	h.writeResult(w, feedName, "removed")
}

// -----------------------------------------------------------------------------

// StartFeed starts a single registered feed source.
func (h *APIHandler) StartFeed(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	if err := h.tracker.StartFeed(feedName); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeResult(w, feedName, "started")
}

// -----------------------------------------------------------------------------

// StopFeed stops a single registered feed source.
func (h *APIHandler) StopFeed(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	if err := h.tracker.StopFeed(feedName); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeResult(w, feedName, "stopped")
}

// -----------------------------------------------------------------------------

// FeedStatus returns the status record of a single feed source.
func (h *APIHandler) FeedStatus(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	status, err := h.tracker.GetFeedStatus(feedName)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// -----------------------------------------------------------------------------

// ListFeeds returns the names of every managed feed source.
func (h *APIHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"feeds": h.tracker.ListFeeds(),
	})
}

// -----------------------------------------------------------------------------

// SubscribeSymbols forwards a subscription request to a feed source.
func (h *APIHandler) SubscribeSymbols(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	symbols := r.URL.Query()["symbol"]
	if err := h.tracker.SubscribeFeed(feedName, symbols); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeResult(w, feedName, "subscribed")
}

// -----------------------------------------------------------------------------

// UnSubscribeSymbols forwards an unsubscription request to a feed source.
func (h *APIHandler) UnSubscribeSymbols(w http.ResponseWriter, r *http.Request) {
	feedName, ok := h.requireFeedName(w, r)
	if !ok {
		return
	}

	symbols := r.URL.Query()["symbol"]
	if err := h.tracker.UnSubscribeFeed(feedName, symbols); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeResult(w, feedName, "unsubscribed")
}

// -----------------------------------------------------------------------------
// Private/Helper Methods
// -----------------------------------------------------------------------------

// requireFeedName pulls the mandatory ?feed= query parameter.
func (h *APIHandler) requireFeedName(w http.ResponseWriter, r *http.Request) (string, bool) {
	feedName := r.URL.Query().Get("feed")
	if feedName == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "missing required query parameter 'feed'",
		})
		return "", false
	}
	return feedName, true
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeResult(w http.ResponseWriter, feedName string, action string) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"feed":   feedName,
		"result": action,
	})
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Error("%s : request failed: %v", h.Name, err)
	h.writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("%s : failed to encode response: %v", h.Name, err)
	}
}
