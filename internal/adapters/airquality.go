package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akbarpn/shower-o-meter/internal/hygiene"
	"github.com/akbarpn/shower-o-meter/internal/monitoring"
	"github.com/akbarpn/shower-o-meter/internal/resilience"
)

const defaultAirBaseURL = "https://api.waqi.info"

// waqiResponse mirrors the WAQI city feed payload
type waqiResponse struct {
	Status string `json:"status"`
	Data   struct {
		AQI  float64 `json:"aqi"`
		Time struct {
			ISO string `json:"iso"`
		} `json:"time"`
	} `json:"data"`
}

// AirQualityAdapter fetches AQI readings from the WAQI city feed
type AirQualityAdapter struct {
	baseURL string
	city    string
	token   string
	pool    *resilience.ConnectionPool
	metrics *monitoring.Metrics
}

// NewAirQualityAdapter creates an air quality adapter with connection pooling
func NewAirQualityAdapter(baseURL, city, token string, metrics *monitoring.Metrics) *AirQualityAdapter {
	if baseURL == "" {
		baseURL = defaultAirBaseURL
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	pool := resilience.NewConnectionPool(5, 10, 30*time.Second, cb)

	return &AirQualityAdapter{
		baseURL: baseURL,
		city:    city,
		token:   token,
		pool:    pool,
		metrics: metrics,
	}
}

// FetchCurrent fetches the latest AQI reading for the configured city
func (a *AirQualityAdapter) FetchCurrent(ctx context.Context) (*hygiene.AirReading, error) {
	url := fmt.Sprintf("%s/feed/%s/?token=%s", a.baseURL, a.city, a.token)

	resp, err := a.makeRequest(ctx, url)
	a.recordCall(err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("air quality API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload waqiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode air quality payload: %w", err)
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("air quality API returned status %q", payload.Status)
	}

	ts, err := time.Parse(time.RFC3339, payload.Data.Time.ISO)
	if err != nil {
		ts = time.Now()
	}

	return &hygiene.AirReading{
		Timestamp: ts,
		AQI:       payload.Data.AQI,
	}, nil
}

func (a *AirQualityAdapter) makeRequest(ctx context.Context, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Shower-o-Meter/1.0",
	}

	return a.pool.DoRequest(ctx, "GET", url, headers)
}

func (a *AirQualityAdapter) recordCall(success bool) {
	if a.metrics == nil {
		return
	}
	a.metrics.IncrementAirCalls()
	a.metrics.RecordExternalAPIRequest("waqi", success)
}

// GetPoolStats returns connection pool statistics
func (a *AirQualityAdapter) GetPoolStats() map[string]interface{} {
	return a.pool.GetStats()
}

// Close closes the connection pool
func (a *AirQualityAdapter) Close() error {
	return a.pool.Close()
}
