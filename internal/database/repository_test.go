package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akbarpn/shower-o-meter/internal/hygiene"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db)
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SeedCatalog())
	require.NoError(t, repo.SeedCatalog())

	catalog, err := repo.ListCatalog()
	require.NoError(t, err)
	assert.Len(t, catalog, 10)
}

func TestInsertActivity(t *testing.T) {
	repo := newTestRepo(t)

	loggedAt := time.Date(2025, 6, 1, 6, 30, 0, 0, time.UTC)
	row, err := repo.InsertActivity("lari_pagi", 45, loggedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "lari_pagi", row.ActivityID)
	assert.Equal(t, 45.0, row.DurationMinutes)
	assert.True(t, row.LoggedAt.Equal(loggedAt))
}

func TestLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.SeedCatalog())

	now := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)

	_, err := repo.InsertShower(now.Add(-24 * time.Hour))
	require.NoError(t, err)

	_, err = repo.InsertActivity("futsal", 90, now.Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = repo.InsertWeather(now.Add(-time.Hour), 33.0, 80.0)
	require.NoError(t, err)

	_, err = repo.InsertAir(now.Add(-time.Hour), 150.0)
	require.NoError(t, err)

	require.NoError(t, repo.SetPreference("threshold_mandi", "5.0"))

	snap, err := repo.LoadSnapshot()
	require.NoError(t, err)

	assert.Len(t, snap.Showers, 1)
	assert.Len(t, snap.Activities, 1)
	assert.Len(t, snap.Weather, 1)
	assert.Len(t, snap.Air, 1)
	assert.Len(t, snap.Catalog, 10)
	assert.Equal(t, "5.0", snap.Overrides["threshold_mandi"])

	assert.Equal(t, "futsal", snap.Activities[0].ActivityID)
	assert.Equal(t, 90.0, snap.Activities[0].DurationMinutes)
	assert.Equal(t, 150.0, snap.Air[0].AQI)
}

func TestUpsertCatalogEntry(t *testing.T) {
	repo := newTestRepo(t)

	entry := hygiene.CatalogEntry{
		ActivityID:      "renang",
		Name:            "Berenang",
		MetabolicWeight: 6.0,
		Category:        "outdoor",
	}
	require.NoError(t, repo.UpsertCatalogEntry(entry))

	entry.MetabolicWeight = 7.5
	require.NoError(t, repo.UpsertCatalogEntry(entry))

	catalog, err := repo.ListCatalog()
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, 7.5, catalog[0].MetabolicWeight)
	assert.Equal(t, "Berenang", catalog[0].Name)
}

func TestPreferencesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SetPreference("bobot_kotor", "0.5"))
	require.NoError(t, repo.SetPreference("bobot_kotor", "0.6"))
	require.NoError(t, repo.SetPreference("bobot_aqi", "0.1"))

	prefs, err := repo.ListPreferences()
	require.NoError(t, err)
	assert.Equal(t, "0.6", prefs["bobot_kotor"])
	assert.Equal(t, "0.1", prefs["bobot_aqi"])
	assert.Len(t, prefs, 2)
}

func TestResultHistoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	latest, err := repo.LatestResult()
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		res := hygiene.Result{
			AnchorShowerTime: base.Add(-24 * time.Hour),
			HoursSinceShower: 24.0 + float64(i),
			DirtinessScore:   5.0,
			OdorScore:        6.0,
			AQIScore:         3.0,
			FinalScore:       5.0 + float64(i),
			Recommendation:   hygiene.LabelStronglyAdvised,
			Explanation:      "test",
			Confidence:       0.8,
			GeneratedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		row, err := repo.AppendResult(res)
		require.NoError(t, err)
		assert.NotEmpty(t, row.ID)
	}

	latest, err = repo.LatestResult()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 7.0, latest.FinalScore)

	rows, err := repo.ListResults(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, 7.0, rows[0].FinalScore)
	assert.Equal(t, 6.0, rows[1].FinalScore)
}
