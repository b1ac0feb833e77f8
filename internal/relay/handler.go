package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
	"github.com/znodanilo2017-byte/harvest-guard/internal/store"
)

// maxEventSize bounds one inbound event body.
const maxEventSize = 1 << 20 // 1MB

// Response is the structured result handed back to the host runtime.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler processes one relayed event: parse, normalize, persist, respond.
// Stateless and safe for concurrent invocation; the object store is the only
// shared resource.
type Handler struct {
	sink *store.Writer
	now  func() time.Time
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Sink *store.Writer

	// Now overrides the ingestion clock (tests)
	Now func() time.Time
}

// NewHandler builds a relay handler.
func NewHandler(cfg HandlerConfig) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{sink: cfg.Sink, now: now}
}

// Handle is the synchronous core, independent of any transport. 200 with a
// confirmation on success, 400 for an empty or malformed payload, 500 with
// the error detail for anything unexpected during processing.
func (h *Handler) Handle(ctx context.Context, raw []byte) Response {
	log := logger.WithComponent("relay")

	payload, err := ParseEvent(raw)
	if err != nil {
		log.Warn().Err(err).Msg("event rejected")
		metrics.RelayEventsTotal.WithLabelValues("rejected").Inc()
		return Response{StatusCode: http.StatusBadRequest, Body: err.Error()}
	}

	reading := models.NewReading(payload.DeviceID, h.now())
	reading.Metrics[models.MetricTemperature] = payload.Temperature
	reading.Metrics[models.MetricMoisture] = payload.Moisture
	// Field sensors report moisture as a raw percentage
	reading.Units[models.MetricMoisture] = models.UnitPercent
	reading.Normalize()

	if err := reading.Validate(); err != nil {
		log.Error().Err(err).Msg("reading invalid after normalization")
		metrics.RelayEventsTotal.WithLabelValues("error").Inc()
		return Response{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("error: %v", err)}
	}

	key, err := h.sink.WriteReading(ctx, store.NamespaceRelayed, reading)
	if err != nil {
		// Error detail in the body is deliberate: this is a
		// low-sensitivity telemetry path and operators debug from it.
		log.Error().Err(err).Msg("store write failed")
		metrics.RelayEventsTotal.WithLabelValues("error").Inc()
		return Response{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("error: %v", err)}
	}

	log.Info().
		Str("device_id", reading.DeviceID).
		Str("key", key).
		Msg("relayed reading stored")
	metrics.RelayEventsTotal.WithLabelValues("accepted").Inc()

	return Response{StatusCode: http.StatusOK, Body: fmt.Sprintf("✅ saved %s", key)}
}

// ServeHTTP adapts the handler to an HTTP host: the response status mirrors
// Response.StatusCode and the body is a small JSON envelope.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEventSize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	resp := h.Handle(r.Context(), raw)
	writeJSON(w, resp.StatusCode, resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status >= 200 && status < 300,
		"message": message,
	})
}
