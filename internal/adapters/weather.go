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

const defaultWeatherBaseURL = "https://api.bmkg.go.id/publik/prakiraan-cuaca"

// bmkgResponse mirrors the BMKG public forecast payload. Forecasts come
// grouped per day, each entry carrying local time, temperature and humidity.
type bmkgResponse struct {
	Data []struct {
		Cuaca [][]bmkgForecast `json:"cuaca"`
	} `json:"data"`
}

type bmkgForecast struct {
	LocalDatetime string  `json:"local_datetime"`
	Temperature   float64 `json:"t"`
	Humidity      float64 `json:"hu"`
}

// WeatherAdapter fetches temperature and humidity from the BMKG forecast API
type WeatherAdapter struct {
	baseURL  string
	areaCode string
	pool     *resilience.ConnectionPool
	metrics  *monitoring.Metrics
}

// NewWeatherAdapter creates a weather adapter with connection pooling.
// areaCode is the BMKG level-IV administrative code for the location.
func NewWeatherAdapter(baseURL, areaCode string, metrics *monitoring.Metrics) *WeatherAdapter {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	pool := resilience.NewConnectionPool(5, 10, 30*time.Second, cb)

	return &WeatherAdapter{
		baseURL:  baseURL,
		areaCode: areaCode,
		pool:     pool,
		metrics:  metrics,
	}
}

// FetchCurrent fetches the forecast entry closest to now and returns it as a
// weather reading
func (w *WeatherAdapter) FetchCurrent(ctx context.Context) (*hygiene.WeatherReading, error) {
	url := fmt.Sprintf("%s?adm4=%s", w.baseURL, w.areaCode)

	resp, err := w.makeRequest(ctx, url)
	w.recordCall(err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("weather API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload bmkgResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather payload: %w", err)
	}

	reading, err := nearestForecast(payload, time.Now())
	if err != nil {
		return nil, err
	}

	return reading, nil
}

// nearestForecast flattens the grouped forecasts and picks the entry whose
// timestamp is closest to ref
func nearestForecast(payload bmkgResponse, ref time.Time) (*hygiene.WeatherReading, error) {
	var best *hygiene.WeatherReading
	var bestDistance time.Duration

	for _, day := range payload.Data {
		for _, group := range day.Cuaca {
			for _, fc := range group {
				ts, err := time.Parse("2006-01-02 15:04:05", fc.LocalDatetime)
				if err != nil {
					continue
				}

				distance := ts.Sub(ref)
				if distance < 0 {
					distance = -distance
				}

				if best == nil || distance < bestDistance {
					best = &hygiene.WeatherReading{
						Timestamp:   ts,
						Temperature: fc.Temperature,
						Humidity:    fc.Humidity,
					}
					bestDistance = distance
				}
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("weather payload contained no usable forecast entries")
	}

	return best, nil
}

func (w *WeatherAdapter) makeRequest(ctx context.Context, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Shower-o-Meter/1.0",
	}

	return w.pool.DoRequest(ctx, "GET", url, headers)
}

func (w *WeatherAdapter) recordCall(success bool) {
	if w.metrics == nil {
		return
	}
	w.metrics.IncrementWeatherCalls()
	w.metrics.RecordExternalAPIRequest("bmkg", success)
}

// GetPoolStats returns connection pool statistics
func (w *WeatherAdapter) GetPoolStats() map[string]interface{} {
	return w.pool.GetStats()
}

// Close closes the connection pool
func (w *WeatherAdapter) Close() error {
	return w.pool.Close()
}
