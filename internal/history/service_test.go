package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akbarpn/shower-o-meter/internal/database"
	"github.com/akbarpn/shower-o-meter/internal/hygiene"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(db)
}

func record(t *testing.T, s *Service, finalScore float64, label string, generatedAt time.Time) {
	t.Helper()

	_, err := s.Record(hygiene.Result{
		AnchorShowerTime: generatedAt.Add(-12 * time.Hour),
		HoursSinceShower: 12,
		DirtinessScore:   4,
		OdorScore:        5,
		AQIScore:         2,
		FinalScore:       finalScore,
		Recommendation:   label,
		Explanation:      "test",
		Confidence:       0.8,
		GeneratedAt:      generatedAt,
	})
	require.NoError(t, err)
}

func TestLatestAndList(t *testing.T) {
	s := newTestService(t)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Now()
	record(t, s, 3.0, hygiene.LabelCanDefer, now.Add(-2*time.Hour))
	record(t, s, 7.0, hygiene.LabelShowerNow, now.Add(-time.Hour))

	latest, err = s.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 7.0, latest.FinalScore)

	resp, err := s.List(0)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, hygiene.LabelShowerNow, resp.Entries[0].Recommendation)
}

func TestListCacheInvalidatedByRecord(t *testing.T) {
	s := newTestService(t)

	now := time.Now()
	record(t, s, 3.0, hygiene.LabelCanDefer, now.Add(-time.Hour))

	resp, err := s.List(0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	// Recording again must not serve the stale cached listing.
	record(t, s, 8.0, hygiene.LabelShowerNow, now)

	resp, err = s.List(0)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestSummarize(t *testing.T) {
	s := newTestService(t)

	// Anchor on noon today so the records always land inside the daily
	// period no matter when the test runs.
	y, m, d := time.Now().Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, time.Local)
	record(t, s, 2.0, hygiene.LabelStillFresh, noon)
	record(t, s, 6.0, hygiene.LabelStronglyAdvised, noon.Add(10*time.Minute))
	record(t, s, 8.0, hygiene.LabelShowerNow, noon.Add(20*time.Minute))

	summary, err := s.Summarize("daily")
	require.NoError(t, err)

	assert.Equal(t, "daily", summary.Period)
	assert.Equal(t, 3, summary.Evaluations)
	assert.InDelta(t, (2.0+6.0+8.0)/3, summary.AvgFinalScore, 0.001)
	assert.InDelta(t, 8.0, summary.MaxFinalScore, 0.001)
	assert.InDelta(t, 2.0, summary.MinFinalScore, 0.001)
	assert.Equal(t, 1, summary.Recommendations[hygiene.LabelShowerNow])
	assert.Equal(t, 1, summary.Recommendations[hygiene.LabelStillFresh])
}

func TestSummarizeAllTimeAndInvalidPeriod(t *testing.T) {
	s := newTestService(t)

	now := time.Now()
	record(t, s, 5.0, hygiene.LabelStronglyAdvised, now)

	summary, err := s.Summarize("all_time")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Evaluations)

	_, err = s.Summarize("fortnightly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period")
}
