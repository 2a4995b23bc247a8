package history

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/akbarpn/shower-o-meter/internal/database"
	"github.com/akbarpn/shower-o-meter/internal/hygiene"
)

// Summary aggregates evaluation history over a period
type Summary struct {
	Period              string         `json:"period"`
	PeriodStart         time.Time      `json:"period_start"`
	PeriodEnd           time.Time      `json:"period_end"`
	Evaluations         int            `json:"evaluations"`
	AvgFinalScore       float64        `json:"avg_final_score"`
	MaxFinalScore       float64        `json:"max_final_score"`
	MinFinalScore       float64        `json:"min_final_score"`
	AvgHoursSinceShower float64        `json:"avg_hours_since_shower"`
	Recommendations     map[string]int `json:"recommendations"`
}

// HistoryResponse carries a page of evaluation history
type HistoryResponse struct {
	Entries []database.ResultRow `json:"entries"`
	Total   int                  `json:"total"`
}

// Service handles evaluation history operations
type Service struct {
	db    *database.DB
	repo  *database.Repository
	cache *HistoryCache
}

// NewService creates a new history service
func NewService(db *database.DB) *Service {
	return &Service{
		db:    db,
		repo:  database.NewRepository(db),
		cache: NewHistoryCache(5 * time.Minute),
	}
}

// NewServiceWithCache creates a history service with a custom cache
func NewServiceWithCache(db *database.DB, cache *HistoryCache) *Service {
	return &Service{
		db:    db,
		repo:  database.NewRepository(db),
		cache: cache,
	}
}

// Record appends an evaluation result and invalidates cached history
func (s *Service) Record(res hygiene.Result) (*database.ResultRow, error) {
	row, err := s.repo.AppendResult(res)
	if err != nil {
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}

	s.cache.InvalidateAll()

	slog.Info("Evaluation recorded",
		"id", row.ID,
		"final_score", res.FinalScore,
		"recommendation", res.Recommendation,
	)

	return row, nil
}

// Latest returns the most recent evaluation, or nil when none exists
func (s *Service) Latest() (*database.ResultRow, error) {
	return s.repo.LatestResult()
}

// List returns recent evaluations, newest first
func (s *Service) List(limit int) (*HistoryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if cached, found := s.cache.GetHistory(limit); found {
		return cached, nil
	}

	rows, err := s.repo.ListResults(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	response := &HistoryResponse{
		Entries: rows,
		Total:   len(rows),
	}

	s.cache.SetHistory(limit, response)

	return response, nil
}

// Summarize aggregates evaluation history for a period: daily, weekly,
// monthly or all_time
func (s *Service) Summarize(period string) (*Summary, error) {
	if cached, found := s.cache.GetSummary(period); found {
		return cached, nil
	}

	now := time.Now()
	periodStart, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Period:          period,
		PeriodStart:     periodStart,
		PeriodEnd:       now,
		Recommendations: make(map[string]int),
	}

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(AVG(final_score), 0),
		       COALESCE(MAX(final_score), 0),
		       COALESCE(MIN(final_score), 0),
		       COALESCE(AVG(hours_since_shower), 0)
		FROM evaluation_results
		WHERE generated_at >= ?`, periodStart)

	if err := row.Scan(
		&summary.Evaluations,
		&summary.AvgFinalScore,
		&summary.MaxFinalScore,
		&summary.MinFinalScore,
		&summary.AvgHoursSinceShower,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT recommendation, COUNT(*)
		FROM evaluation_results
		WHERE generated_at >= ?
		GROUP BY recommendation`, periodStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count recommendations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation count: %w", err)
		}
		summary.Recommendations[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cache.SetSummary(period, summary)

	return summary, nil
}

// periodStart resolves a named period to its start time
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "daily":
		return now.Truncate(24 * time.Hour), nil
	case "weekly":
		days := int(now.Weekday()-time.Monday) % 7
		if days < 0 {
			days += 7
		}
		return now.AddDate(0, 0, -days).Truncate(24 * time.Hour), nil
	case "monthly":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case "all_time":
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("invalid period: %s", period)
	}
}

// GetCacheStats returns history cache statistics
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats()
}
