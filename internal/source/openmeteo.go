package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/logger"
	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// currentMetrics is the fixed metric set requested from the forecast API.
const currentMetrics = "temperature_2m,soil_moisture_0_to_1cm,precipitation_probability"

// OpenMeteo polls the open-meteo current-conditions endpoint for a fixed
// coordinate pair and maps its response into the canonical metric names.
type OpenMeteo struct {
	url      string
	deviceID string
	client   *http.Client
	now      func() time.Time
}

// OpenMeteoConfig holds configuration for the polled source.
type OpenMeteoConfig struct {
	Latitude  float64
	Longitude float64
	DeviceID  string

	// BaseURL overrides the forecast endpoint (tests)
	BaseURL string

	// Client overrides the HTTP client (tests)
	Client *http.Client

	// Now overrides the ingestion clock (tests)
	Now func() time.Time
}

// NewOpenMeteo builds the polled source.
func NewOpenMeteo(cfg OpenMeteoConfig) *OpenMeteo {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.2f", cfg.Latitude))
	q.Set("longitude", fmt.Sprintf("%.2f", cfg.Longitude))
	q.Set("current", currentMetrics)

	client := cfg.Client
	if client == nil {
		// No timeout: a hung upstream stalls the loop rather than
		// producing a partial tick. Accepted gap.
		client = &http.Client{}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &OpenMeteo{
		url:      base + "?" + q.Encode(),
		deviceID: cfg.DeviceID,
		client:   client,
		now:      now,
	}
}

// forecastResponse mirrors the slice of the open-meteo payload we consume.
// Pointer fields distinguish absent keys from zero values.
type forecastResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		Moisture    *float64 `json:"soil_moisture_0_to_1cm"`
		RainProb    *float64 `json:"precipitation_probability"`
	} `json:"current"`
}

// Fetch issues one request and maps the current-conditions block into a
// reading stamped with local ingestion time. Any network error, non-2xx
// status, malformed body, or missing expected field yields ErrNoReading.
func (o *OpenMeteo) Fetch(ctx context.Context) (*models.Reading, error) {
	log := logger.WithComponent("source")

	start := time.Now()
	reading, err := o.fetch(ctx)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchTotal.WithLabelValues("no_reading").Inc()
		log.Warn().Err(err).Msg("fetch produced no reading")
		return nil, err
	}

	metrics.FetchTotal.WithLabelValues("success").Inc()
	return reading, nil
}

func (o *OpenMeteo) fetch(ctx context.Context) (*models.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNoReading, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReading, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrNoReading, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNoReading, err)
	}

	cur := payload.Current
	if cur == nil || cur.Temperature == nil || cur.Moisture == nil || cur.RainProb == nil {
		return nil, fmt.Errorf("%w: current conditions block missing or incomplete", ErrNoReading)
	}

	reading := models.NewReading(o.deviceID, o.now())
	reading.Metrics[models.MetricTemperature] = *cur.Temperature
	reading.Metrics[models.MetricMoisture] = *cur.Moisture
	reading.Metrics[models.MetricRainProb] = *cur.RainProb
	reading.Units[models.MetricMoisture] = models.UnitFraction
	return reading, nil
}
