package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akbarpn/shower-o-meter/internal/hygiene"
)

// Repository handles fact-store operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertActivity appends a logged activity
func (r *Repository) InsertActivity(activityID string, durationMinutes float64, loggedAt time.Time) (*ActivityRow, error) {
	row := NewActivityRow(activityID, durationMinutes, loggedAt)

	stmt, err := r.db.GetPreparedStatement("insert_activity")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(row.ID, row.ActivityID, row.DurationMinutes, row.LoggedAt, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	return row, nil
}

// InsertShower appends a shower event
func (r *Repository) InsertShower(showeredAt time.Time) (*ShowerRow, error) {
	row := NewShowerRow(showeredAt)

	stmt, err := r.db.GetPreparedStatement("insert_shower")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(row.ID, row.ShoweredAt, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert shower: %w", err)
	}

	return row, nil
}

// InsertWeather appends a weather observation
func (r *Repository) InsertWeather(observedAt time.Time, temperature, humidity float64) (*WeatherRow, error) {
	row := NewWeatherRow(observedAt, temperature, humidity)

	stmt, err := r.db.GetPreparedStatement("insert_weather")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(row.ID, row.ObservedAt, row.Temperature, row.Humidity, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert weather reading: %w", err)
	}

	return row, nil
}

// InsertAir appends an air-quality observation
func (r *Repository) InsertAir(observedAt time.Time, aqi float64) (*AirRow, error) {
	row := NewAirRow(observedAt, aqi)

	stmt, err := r.db.GetPreparedStatement("insert_air")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(row.ID, row.ObservedAt, row.AQI, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert air reading: %w", err)
	}

	return row, nil
}

// UpsertCatalogEntry creates or updates one master-catalog activity
func (r *Repository) UpsertCatalogEntry(entry hygiene.CatalogEntry) error {
	stmt, err := r.db.GetPreparedStatement("upsert_catalog")
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(entry.ActivityID, entry.Name, entry.MetabolicWeight, entry.Category, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert catalog entry %s: %w", entry.ActivityID, err)
	}
	return nil
}

// ListCatalog returns the full master catalog
func (r *Repository) ListCatalog() ([]hygiene.CatalogEntry, error) {
	rows, err := r.db.Query(`SELECT activity_id, COALESCE(name, ''), metabolic_weight, category FROM activity_catalog ORDER BY activity_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var catalog []hygiene.CatalogEntry
	for rows.Next() {
		var e hygiene.CatalogEntry
		if err := rows.Scan(&e.ActivityID, &e.Name, &e.MetabolicWeight, &e.Category); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		catalog = append(catalog, e)
	}
	return catalog, rows.Err()
}

// SetPreference stores one sparse preference override. Values are kept as raw
// strings; the resolver decides whether they parse.
func (r *Repository) SetPreference(parameter, value string) error {
	stmt, err := r.db.GetPreparedStatement("upsert_preference")
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(parameter, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set preference %s: %w", parameter, err)
	}
	return nil
}

// ListPreferences returns the sparse override map
func (r *Repository) ListPreferences() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT parameter, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		overrides[name] = value
	}
	return overrides, rows.Err()
}

// LoadSnapshot materializes the fully-resolved in-memory snapshot the scoring
// engine consumes. Rows with null timestamps are skipped here so the engine
// only ever sees usable points in time.
func (r *Repository) LoadSnapshot() (hygiene.Snapshot, error) {
	var snap hygiene.Snapshot

	activities, err := r.loadActivities()
	if err != nil {
		return snap, err
	}
	catalog, err := r.ListCatalog()
	if err != nil {
		return snap, err
	}
	showers, err := r.loadShowers()
	if err != nil {
		return snap, err
	}
	weather, err := r.loadWeather()
	if err != nil {
		return snap, err
	}
	air, err := r.loadAir()
	if err != nil {
		return snap, err
	}
	overrides, err := r.ListPreferences()
	if err != nil {
		return snap, err
	}

	snap = hygiene.Snapshot{
		Activities: activities,
		Catalog:    catalog,
		Showers:    showers,
		Weather:    weather,
		Air:        air,
		Overrides:  overrides,
	}
	return snap, nil
}

func (r *Repository) loadActivities() ([]hygiene.ActivityRecord, error) {
	rows, err := r.db.Query(`SELECT logged_at, activity_id, duration_minutes FROM activity_log ORDER BY logged_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var out []hygiene.ActivityRecord
	for rows.Next() {
		var ts sql.NullTime
		var rec hygiene.ActivityRecord
		if err := rows.Scan(&ts, &rec.ActivityID, &rec.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if !ts.Valid {
			continue
		}
		rec.Timestamp = ts.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) loadShowers() ([]hygiene.ShowerEvent, error) {
	rows, err := r.db.Query(`SELECT showered_at FROM shower_log ORDER BY showered_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shower log: %w", err)
	}
	defer rows.Close()

	var out []hygiene.ShowerEvent
	for rows.Next() {
		var ts sql.NullTime
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan shower: %w", err)
		}
		if !ts.Valid {
			continue
		}
		out = append(out, hygiene.ShowerEvent{Timestamp: ts.Time})
	}
	return out, rows.Err()
}

func (r *Repository) loadWeather() ([]hygiene.WeatherReading, error) {
	rows, err := r.db.Query(`SELECT observed_at, temperature, humidity FROM weather_readings ORDER BY observed_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather readings: %w", err)
	}
	defer rows.Close()

	var out []hygiene.WeatherReading
	for rows.Next() {
		var ts sql.NullTime
		var w hygiene.WeatherReading
		if err := rows.Scan(&ts, &w.Temperature, &w.Humidity); err != nil {
			return nil, fmt.Errorf("failed to scan weather reading: %w", err)
		}
		if !ts.Valid {
			continue
		}
		w.Timestamp = ts.Time
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *Repository) loadAir() ([]hygiene.AirReading, error) {
	rows, err := r.db.Query(`SELECT observed_at, aqi FROM air_readings ORDER BY observed_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query air readings: %w", err)
	}
	defer rows.Close()

	var out []hygiene.AirReading
	for rows.Next() {
		var ts sql.NullTime
		var a hygiene.AirReading
		if err := rows.Scan(&ts, &a.AQI); err != nil {
			return nil, fmt.Errorf("failed to scan air reading: %w", err)
		}
		if !ts.Valid {
			continue
		}
		a.Timestamp = ts.Time
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppendResult persists one evaluation result. History is append-only; the
// insert never conflicts because every row gets a fresh ID.
func (r *Repository) AppendResult(res hygiene.Result) (*ResultRow, error) {
	row := &ResultRow{
		ID:               uuid.New().String(),
		AnchorShowerTime: res.AnchorShowerTime,
		HoursSinceShower: res.HoursSinceShower,
		DirtinessScore:   res.DirtinessScore,
		OdorScore:        res.OdorScore,
		AQIScore:         res.AQIScore,
		FinalScore:       res.FinalScore,
		Recommendation:   res.Recommendation,
		Explanation:      res.Explanation,
		Confidence:       res.Confidence,
		GeneratedAt:      res.GeneratedAt,
	}

	stmt, err := r.db.GetPreparedStatement("insert_result")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(row.ID, row.AnchorShowerTime, row.HoursSinceShower, row.DirtinessScore,
		row.OdorScore, row.AQIScore, row.FinalScore, row.Recommendation,
		row.Explanation, row.Confidence, row.GeneratedAt); err != nil {
		return nil, fmt.Errorf("failed to append result: %w", err)
	}

	return row, nil
}

// LatestResult returns the most recent evaluation, or nil when none exists
func (r *Repository) LatestResult() (*ResultRow, error) {
	stmt, err := r.db.GetPreparedStatement("latest_result")
	if err != nil {
		return nil, err
	}

	var row ResultRow
	err = stmt.QueryRow().Scan(
		&row.ID, &row.AnchorShowerTime, &row.HoursSinceShower, &row.DirtinessScore,
		&row.OdorScore, &row.AQIScore, &row.FinalScore, &row.Recommendation,
		&row.Explanation, &row.Confidence, &row.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest result: %w", err)
	}

	return &row, nil
}

// ListResults returns recent evaluations, newest first
func (r *Repository) ListResults(limit int) ([]ResultRow, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`SELECT id, anchor_shower_time, hours_since_shower, dirtiness_score,
		odor_score, aqi_score, final_score, recommendation, explanation, confidence, generated_at
		FROM evaluation_results ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var row ResultRow
		if err := rows.Scan(
			&row.ID, &row.AnchorShowerTime, &row.HoursSinceShower, &row.DirtinessScore,
			&row.OdorScore, &row.AQIScore, &row.FinalScore, &row.Recommendation,
			&row.Explanation, &row.Confidence, &row.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SeedCatalog loads the default master activity list on first run. An already
// populated catalog is left untouched.
func (r *Repository) SeedCatalog() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM activity_catalog`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, entry := range defaultCatalog {
		if err := r.UpsertCatalogEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

// defaultCatalog mirrors the master_aktivitas sheet shipped with the tracker.
var defaultCatalog = []hygiene.CatalogEntry{
	{ActivityID: "lari_pagi", Name: "Lari pagi", MetabolicWeight: 7.0, Category: "outdoor"},
	{ActivityID: "sepeda", Name: "Bersepeda", MetabolicWeight: 6.5, Category: "outdoor"},
	{ActivityID: "jalan_kaki", Name: "Jalan kaki", MetabolicWeight: 3.5, Category: "outdoor"},
	{ActivityID: "angkat_beban", Name: "Angkat beban", MetabolicWeight: 6.0, Category: "indoor"},
	{ActivityID: "kerja_kantor", Name: "Kerja kantor", MetabolicWeight: 1.5, Category: "indoor"},
	{ActivityID: "masak", Name: "Memasak", MetabolicWeight: 2.5, Category: "indoor"},
	{ActivityID: "bersih_rumah", Name: "Bersih-bersih rumah", MetabolicWeight: 3.5, Category: "indoor"},
	{ActivityID: "berkebun", Name: "Berkebun", MetabolicWeight: 4.0, Category: "outdoor"},
	{ActivityID: "tidur", Name: "Tidur", MetabolicWeight: 0.9, Category: "indoor"},
	{ActivityID: "futsal", Name: "Futsal", MetabolicWeight: 8.0, Category: "outdoor"},
}
