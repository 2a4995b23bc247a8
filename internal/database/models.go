package database

import (
	"time"

	"github.com/google/uuid"
)

// ActivityRow is a persisted activity-log entry
type ActivityRow struct {
	ID              string    `json:"id" db:"id"`
	ActivityID      string    `json:"activity_id" db:"activity_id"`
	DurationMinutes float64   `json:"duration_minutes" db:"duration_minutes"`
	LoggedAt        time.Time `json:"logged_at" db:"logged_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CatalogRow is a master-catalog activity definition
type CatalogRow struct {
	ActivityID      string    `json:"activity_id" db:"activity_id"`
	Name            string    `json:"name" db:"name"`
	MetabolicWeight float64   `json:"metabolic_weight" db:"metabolic_weight"`
	Category        string    `json:"category" db:"category"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ShowerRow is a persisted shower-log entry
type ShowerRow struct {
	ID         string    `json:"id" db:"id"`
	ShoweredAt time.Time `json:"showered_at" db:"showered_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WeatherRow is a persisted weather observation
type WeatherRow struct {
	ID          string    `json:"id" db:"id"`
	ObservedAt  time.Time `json:"observed_at" db:"observed_at"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AirRow is a persisted air-quality observation
type AirRow struct {
	ID         string    `json:"id" db:"id"`
	ObservedAt time.Time `json:"observed_at" db:"observed_at"`
	AQI        float64   `json:"aqi" db:"aqi"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ResultRow is a persisted evaluation result. The table is append-only:
// every evaluation inserts a fresh row and nothing ever updates one.
type ResultRow struct {
	ID               string    `json:"id" db:"id"`
	AnchorShowerTime time.Time `json:"anchor_shower_time" db:"anchor_shower_time"`
	HoursSinceShower float64   `json:"hours_since_shower" db:"hours_since_shower"`
	DirtinessScore   float64   `json:"dirtiness_score" db:"dirtiness_score"`
	OdorScore        float64   `json:"odor_score" db:"odor_score"`
	AQIScore         float64   `json:"aqi_score" db:"aqi_score"`
	FinalScore       float64   `json:"final_score" db:"final_score"`
	Recommendation   string    `json:"recommendation" db:"recommendation"`
	Explanation      string    `json:"explanation" db:"explanation"`
	Confidence       float64   `json:"confidence" db:"confidence"`
	GeneratedAt      time.Time `json:"generated_at" db:"generated_at"`
}

// NewActivityRow creates an activity-log row with a generated ID
func NewActivityRow(activityID string, durationMinutes float64, loggedAt time.Time) *ActivityRow {
	return &ActivityRow{
		ID:              uuid.New().String(),
		ActivityID:      activityID,
		DurationMinutes: durationMinutes,
		LoggedAt:        loggedAt,
		CreatedAt:       time.Now(),
	}
}

// NewShowerRow creates a shower-log row with a generated ID
func NewShowerRow(showeredAt time.Time) *ShowerRow {
	return &ShowerRow{
		ID:         uuid.New().String(),
		ShoweredAt: showeredAt,
		CreatedAt:  time.Now(),
	}
}

// NewWeatherRow creates a weather-observation row with a generated ID
func NewWeatherRow(observedAt time.Time, temperature, humidity float64) *WeatherRow {
	return &WeatherRow{
		ID:          uuid.New().String(),
		ObservedAt:  observedAt,
		Temperature: temperature,
		Humidity:    humidity,
		CreatedAt:   time.Now(),
	}
}

// NewAirRow creates an air-quality row with a generated ID
func NewAirRow(observedAt time.Time, aqi float64) *AirRow {
	return &AirRow{
		ID:         uuid.New().String(),
		ObservedAt: observedAt,
		AQI:        aqi,
		CreatedAt:  time.Now(),
	}
}
