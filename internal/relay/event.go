// Package relay implements the push-path ingestion handler fed by
// externally-triggered gateway events. Unlike the poll loop, this path does
// no threshold evaluation: field readings are persisted and acknowledged
// only. That asymmetry is intentional and mirrors the deployed design.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

// Client input errors; both map to a 400 response.
var (
	ErrEmptyPayload     = errors.New("empty payload")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Payload is the canonical relayed sensor payload once the transport shape
// has been unwrapped. Missing fields keep their zero values.
type Payload struct {
	DeviceID    string
	Temperature float64
	Moisture    float64
}

// ParseEvent folds the three transport shapes a gateway may deliver —
// {"body": "<json-string>"}, {"body": {...}}, or a bare mapping — into one
// canonical payload. An empty or unparseable event is a client error.
func ParseEvent(raw []byte) (*Payload, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	var event map[string]interface{}
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	body := event
	if wrapped, ok := event["body"]; ok {
		switch v := wrapped.(type) {
		case string:
			// Gateways that pass the body through unparsed
			body = nil
			if err := json.Unmarshal([]byte(v), &body); err != nil {
				return nil, fmt.Errorf("%w: body: %v", ErrMalformedPayload, err)
			}
		case map[string]interface{}:
			// Gateways that already unpacked the JSON
			body = v
		case nil:
			body = nil
		default:
			return nil, fmt.Errorf("%w: unsupported body type %T", ErrMalformedPayload, wrapped)
		}
	}

	if len(body) == 0 {
		return nil, ErrEmptyPayload
	}

	p := &Payload{DeviceID: models.UnknownDevice}
	if id, ok := body["device_id"].(string); ok && id != "" {
		p.DeviceID = id
	}
	p.Temperature = numberField(body, "temperature")
	p.Moisture = numberField(body, "moisture")
	return p, nil
}

// numberField reads a numeric field, defaulting to 0 when absent or
// non-numeric.
func numberField(body map[string]interface{}, key string) float64 {
	if v, ok := body[key].(float64); ok {
		return v
	}
	return 0
}
