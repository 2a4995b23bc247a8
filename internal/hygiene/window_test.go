package hygiene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func TestSelectWindow(t *testing.T) {
	tests := []struct {
		name           string
		activities     []ActivityRecord
		showers        []ShowerEvent
		now            time.Time
		expectedAnchor time.Time
		expectedWindow int
	}{
		{
			name: "anchors at most recent shower",
			activities: []ActivityRecord{
				{Timestamp: base.Add(-2 * time.Hour), ActivityID: "lari"},
				{Timestamp: base.Add(2 * time.Hour), ActivityID: "lari"},
				{Timestamp: base.Add(3 * time.Hour), ActivityID: "tidur"},
			},
			showers: []ShowerEvent{
				{Timestamp: base.Add(-24 * time.Hour)},
				{Timestamp: base},
			},
			now:            base.Add(6 * time.Hour),
			expectedAnchor: base,
			expectedWindow: 2,
		},
		{
			name: "bootstraps to earliest activity when no showers",
			activities: []ActivityRecord{
				{Timestamp: base.Add(time.Hour), ActivityID: "lari"},
				{Timestamp: base, ActivityID: "tidur"},
			},
			showers:        nil,
			now:            base.Add(6 * time.Hour),
			expectedAnchor: base,
			expectedWindow: 1, // the anchor record itself is excluded
		},
		{
			name:           "collapses to now with no data at all",
			activities:     nil,
			showers:        nil,
			now:            base,
			expectedAnchor: base,
			expectedWindow: 0,
		},
		{
			name: "clamps future-dated shower to now",
			activities: []ActivityRecord{
				{Timestamp: base.Add(-time.Hour), ActivityID: "lari"},
			},
			showers: []ShowerEvent{
				{Timestamp: base.Add(48 * time.Hour)},
			},
			now:            base,
			expectedAnchor: base,
			expectedWindow: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor, window := SelectWindow(tt.activities, tt.showers, tt.now)
			assert.True(t, anchor.Equal(tt.expectedAnchor), "anchor %v != %v", anchor, tt.expectedAnchor)
			assert.Len(t, window, tt.expectedWindow)
			for _, rec := range window {
				assert.True(t, rec.Timestamp.After(anchor), "window record at %v not after anchor", rec.Timestamp)
			}
		})
	}
}

func TestSanitizeActivities(t *testing.T) {
	in := []ActivityRecord{
		{Timestamp: base.Add(time.Hour), ActivityID: "b", DurationMinutes: 30},
		{Timestamp: time.Time{}, ActivityID: "no-timestamp", DurationMinutes: 30},
		{Timestamp: base, ActivityID: "a", DurationMinutes: 30},
		{Timestamp: base.Add(2 * time.Hour), ActivityID: "negative", DurationMinutes: -5},
	}

	out := sanitizeActivities(in)

	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ActivityID, "sorted ascending")
	assert.Equal(t, "b", out[1].ActivityID)
}

func TestSanitizeShowers(t *testing.T) {
	out := sanitizeShowers([]ShowerEvent{
		{Timestamp: base},
		{Timestamp: time.Time{}},
	})
	assert.Len(t, out, 1)
}

func TestLatestReadings(t *testing.T) {
	assert.Nil(t, latestWeather(nil))
	assert.Nil(t, latestAir([]AirReading{{Timestamp: time.Time{}, AQI: 80}}))

	w := latestWeather([]WeatherReading{
		{Timestamp: base, Temperature: 25},
		{Timestamp: base.Add(time.Hour), Temperature: 31},
		{Timestamp: base.Add(-time.Hour), Temperature: 28},
	})
	assert.NotNil(t, w)
	assert.Equal(t, 31.0, w.Temperature)

	a := latestAir([]AirReading{
		{Timestamp: base.Add(2 * time.Hour), AQI: 90},
		{Timestamp: base, AQI: 40},
	})
	assert.NotNil(t, a)
	assert.Equal(t, 90.0, a.AQI)
}
