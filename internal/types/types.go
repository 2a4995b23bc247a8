package types

// LogActivityRequest is the payload for logging an activity
type LogActivityRequest struct {
	ActivityID      string  `json:"activity_id" binding:"required"`
	DurationMinutes float64 `json:"duration_minutes" binding:"required,gt=0"`
	LoggedAt        string  `json:"logged_at"` // RFC3339, defaults to now
}

// LogShowerRequest is the payload for logging a shower event
type LogShowerRequest struct {
	ShoweredAt string `json:"showered_at"` // RFC3339, defaults to now
}

// WeatherReadingRequest is the payload for a manual weather reading
type WeatherReadingRequest struct {
	Temperature float64 `json:"temperature" binding:"required"`
	Humidity    float64 `json:"humidity" binding:"min=0,max=100"`
	ObservedAt  string  `json:"observed_at"` // RFC3339, defaults to now
}

// AirReadingRequest is the payload for a manual air quality reading
type AirReadingRequest struct {
	AQI        float64 `json:"aqi" binding:"min=0"`
	ObservedAt string  `json:"observed_at"` // RFC3339, defaults to now
}

// EvaluateRequest is the payload for an on-demand evaluation. Now overrides
// the evaluation clock, mainly for reproducing a past recommendation.
type EvaluateRequest struct {
	Now string `json:"now"` // RFC3339, optional
}

// PreferenceUpdateRequest is the payload for updating a scoring preference
type PreferenceUpdateRequest struct {
	Value string `json:"value" binding:"required"`
}

// CatalogUpsertRequest is the payload for adding or updating a catalog entry
type CatalogUpsertRequest struct {
	ActivityID      string  `json:"activity_id"` // generated when omitted
	Name            string  `json:"name" binding:"required"`
	MetabolicWeight float64 `json:"metabolic_weight" binding:"required,gt=0"`
	Category        string  `json:"category" binding:"required"`
}
