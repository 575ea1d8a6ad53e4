package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"bbo-tracker/src/models"
)

// -----------------------------------------------------------------------------
// ERROR TAXONOMY
// -----------------------------------------------------------------------------

var (
	// ErrMalformedMessage means the raw frame is not valid JSON or a
	// mandatory top-level field (eventId, events, socket_sequence) is
	// missing or mistyped. The whole frame is rejected.
	ErrMalformedMessage = errors.New("malformed market message")

	// ErrMalformedEventField means a mandatory per-event field (price, or
	// amount for trades) is missing, not a string, or not parseable as a
	// decimal. The whole containing frame is rejected.
	ErrMalformedEventField = errors.New("malformed event field")
)

// -----------------------------------------------------------------------------
// PUBLIC API
// -----------------------------------------------------------------------------

// Decode turns one raw JSON frame into a MMarketMessage.
//
// The frame is parsed into a generic document first, then projected field by
// field into the typed model, because the wire schema sends prices and
// quantities as strings and varies its optional fields by event subtype.
// Unrecognized event subtypes and side strings decode to Unknown sentinels
// instead of failing.
//
// Decode is pure: the same input bytes always yield the same message.
func Decode(raw []byte) (*models.MMarketMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	// Keep numbers as json.Number so 64-bit ids survive without float
	// rounding and non-integers are rejected cleanly.
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedMessage, err)
	}

	eventID, err := requiredUint(doc, "eventId")
	if err != nil {
		return nil, err
	}

	socketSequence, err := requiredUint(doc, "socket_sequence")
	if err != nil {
		return nil, err
	}

	rawEvents, ok := doc["events"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: 'events' field missing or not an array", ErrMalformedMessage)
	}

	events := make([]models.MEvent, 0, len(rawEvents))
	for i, rawEvent := range rawEvents {
		obj, ok := rawEvent.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: event %d is not an object", ErrMalformedEventField, i)
		}

		event, err := decodeEvent(obj)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, event)
	}

	return &models.MMarketMessage{
		EventID:        eventID,
		Events:         events,
		Timestamp:      optionalUint(doc, "timestamp"),
		TimestampMS:    optionalUint(doc, "timestampms"),
		SocketSequence: uint32(socketSequence),
	}, nil
}

// -----------------------------------------------------------------------------
// PER-EVENT DECODING
// -----------------------------------------------------------------------------

// decodeEvent projects a single generic event object into a typed MEvent.
// The price field is mandatory for every event, whatever its subtype.
func decodeEvent(obj map[string]interface{}) (models.MEvent, error) {
	price, err := requiredDecimal(obj, "price")
	if err != nil {
		return models.MEvent{}, err
	}

	kind := models.KindUnknown
	if typeStr, ok := obj["type"].(string); ok {
		kind = models.ParseMessageKind(typeStr)
	}

	switch kind {
	case models.KindChange:
		quote, err := decodeQuote(obj, price)
		if err != nil {
			return models.MEvent{}, err
		}
		return models.MEvent{Kind: models.KindChange, Quote: quote}, nil

	case models.KindTrade:
		trade, err := decodeTrade(obj, price)
		if err != nil {
			return models.MEvent{}, err
		}
		return models.MEvent{Kind: models.KindTrade, Trade: trade}, nil

	default:
		// Forward compatibility: new wire subtypes land here without error.
		return models.MEvent{Kind: models.KindUnknown}, nil
	}
}

// -----------------------------------------------------------------------------

// decodeQuote builds the quote for a "change" event. Each optional field
// defaults independently when missing or not the expected JSON type.
func decodeQuote(obj map[string]interface{}, price float64) (*models.MQuote, error) {
	quote := &models.MQuote{
		Price: price,
		Side:  models.SideUnknown,
	}

	if reason, ok := obj["reason"].(string); ok {
		quote.Reason = reason
	}

	if remaining, ok := obj["remaining"].(string); ok {
		parsed, err := strconv.ParseFloat(remaining, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: 'remaining' is not a decimal: %v", ErrMalformedEventField, err)
		}
		quote.Remaining = parsed
	}

	if side, ok := obj["side"].(string); ok {
		quote.Side = models.ParseMarketSide(side)
	}

	if delta, ok := obj["delta"].(string); ok {
		parsed, err := strconv.ParseFloat(delta, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: 'delta' is not a decimal: %v", ErrMalformedEventField, err)
		}
		quote.Delta = &parsed
	}

	return quote, nil
}

// -----------------------------------------------------------------------------

// decodeTrade builds the trade for a "trade" event. The amount is mandatory;
// the maker side defaults to unknown when absent.
func decodeTrade(obj map[string]interface{}, price float64) (*models.MTrade, error) {
	amount, err := requiredDecimal(obj, "amount")
	if err != nil {
		return nil, err
	}

	trade := &models.MTrade{
		Price:     price,
		Amount:    amount,
		MakerSide: models.SideUnknown,
	}

	if makerSide, ok := obj["makerSide"].(string); ok {
		trade.MakerSide = models.ParseMarketSide(makerSide)
	}

	return trade, nil
}

// -----------------------------------------------------------------------------
// FIELD HELPERS
// -----------------------------------------------------------------------------

// requiredUint reads a mandatory top-level unsigned integer field.
func requiredUint(doc map[string]interface{}, key string) (uint64, error) {
	num, ok := doc[key].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: '%s' field missing or not a number", ErrMalformedMessage, key)
	}

	value, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not an unsigned integer: %v", ErrMalformedMessage, key, err)
	}
	return value, nil
}

// -----------------------------------------------------------------------------

// optionalUint reads an optional top-level unsigned integer field.
// Absent or non-integer values yield nil, never an error.
func optionalUint(doc map[string]interface{}, key string) *uint64 {
	num, ok := doc[key].(json.Number)
	if !ok {
		return nil
	}

	value, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

// -----------------------------------------------------------------------------

// requiredDecimal reads a mandatory per-event decimal field, which the wire
// encodes as a JSON string.
func requiredDecimal(obj map[string]interface{}, key string) (float64, error) {
	str, ok := obj[key].(string)
	if !ok {
		return 0, fmt.Errorf("%w: '%s' field missing or not a string", ErrMalformedEventField, key)
	}

	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a decimal: %v", ErrMalformedEventField, key, err)
	}
	return value, nil
}
