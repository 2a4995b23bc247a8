package hygiene

import "time"

// ActivityRecord is a manually logged activity. Immutable once captured.
type ActivityRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	ActivityID      string    `json:"activity_id"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// CatalogEntry is the master-catalog row an activity joins to by ActivityID.
type CatalogEntry struct {
	ActivityID      string  `json:"activity_id"`
	Name            string  `json:"name,omitempty"`
	MetabolicWeight float64 `json:"metabolic_weight"`
	Category        string  `json:"category"`
}

// ShowerEvent marks a completed hygiene event.
type ShowerEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// WeatherReading is one sample from the weather source.
type WeatherReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// AirReading is one sample from the air-quality source. The two environment
// sources arrive on independent schedules, so they stay separate datasets.
type AirReading struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       float64   `json:"aqi"`
}

// Snapshot bundles the fully-resolved in-memory datasets one evaluation
// consumes. The engine never reaches outside a Snapshot.
type Snapshot struct {
	Activities []ActivityRecord
	Catalog    []CatalogEntry
	Showers    []ShowerEvent
	Weather    []WeatherReading
	Air        []AirReading
	// Overrides holds sparse preference parameters as raw strings;
	// unknown names and non-numeric values fall back per key.
	Overrides map[string]string
}

// Breakdown carries the three component scores for auditability.
type Breakdown struct {
	Dirtiness float64 `json:"dirtiness"`
	Odor      float64 `json:"odor"`
	AQI       float64 `json:"aqi"`
}

// Result is the sole output artifact of an evaluation. GeneratedAt is the
// only wall-clock-derived field; identical inputs and an identical "now"
// produce an otherwise identical Result.
type Result struct {
	AnchorShowerTime time.Time `json:"anchor_shower_time"`
	HoursSinceShower float64   `json:"hours_since_shower"`
	DirtinessScore   float64   `json:"dirtiness_score"`
	OdorScore        float64   `json:"odor_score"`
	AQIScore         float64   `json:"aqi_score"`
	FinalScore       float64   `json:"final_score"`
	Recommendation   string    `json:"recommendation"`
	Explanation      string    `json:"explanation"`
	Confidence       float64   `json:"confidence"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Recommendation labels, worst tier first.
const (
	LabelShowerNow       = "WAJIB MANDI SEKARANG"
	LabelStronglyAdvised = "SANGAT DISARANKAN"
	LabelCanDefer        = "MANDI BISA DITUNDA"
	LabelStillFresh      = "MASIH SEGAR"
	LabelOdorOverride    = "WAJIB MANDI (odor override)"
)
