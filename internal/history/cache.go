package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/akbarpn/shower-o-meter/internal/cache"
)

// HistoryCache provides caching for evaluation history queries
type HistoryCache struct {
	cache *cache.Cache
}

// NewHistoryCache creates a new history cache
func NewHistoryCache(ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		cache: cache.NewCache(ttl),
	}
}

func historyKey(limit int) string {
	return fmt.Sprintf("history:%d", limit)
}

func summaryKey(period string) string {
	return fmt.Sprintf("summary:%s", period)
}

// GetHistory retrieves a cached history page
func (hc *HistoryCache) GetHistory(limit int) (*HistoryResponse, bool) {
	data, found := hc.cache.Get(historyKey(limit))
	if !found {
		return nil, false
	}

	var response HistoryResponse
	if err := json.Unmarshal(data, &response); err != nil {
		slog.Error("Failed to unmarshal cached history", "error", err, "limit", limit)
		return nil, false
	}

	slog.Debug("History cache hit", "limit", limit)
	return &response, true
}

// SetHistory caches a history page
func (hc *HistoryCache) SetHistory(limit int, response *HistoryResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal history for cache", "error", err, "limit", limit)
		return
	}

	hc.cache.Set(historyKey(limit), data)
}

// GetSummary retrieves a cached summary
func (hc *HistoryCache) GetSummary(period string) (*Summary, bool) {
	data, found := hc.cache.Get(summaryKey(period))
	if !found {
		return nil, false
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		slog.Error("Failed to unmarshal cached summary", "error", err, "period", period)
		return nil, false
	}

	slog.Debug("Summary cache hit", "period", period)
	return &summary, true
}

// SetSummary caches a summary
func (hc *HistoryCache) SetSummary(period string, summary *Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		slog.Error("Failed to marshal summary for cache", "error", err, "period", period)
		return
	}

	hc.cache.Set(summaryKey(period), data)
}

// InvalidateAll drops every cached history entry. Called after each new
// evaluation is recorded so readers never see stale history.
func (hc *HistoryCache) InvalidateAll() {
	hc.cache.Clear()
}

// GetStats returns cache statistics
func (hc *HistoryCache) GetStats() map[string]interface{} {
	return hc.cache.Stats()
}
