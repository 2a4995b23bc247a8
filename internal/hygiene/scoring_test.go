package hygiene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func catalogFixture() []CatalogEntry {
	return []CatalogEntry{
		{ActivityID: "lari", Name: "Lari pagi", MetabolicWeight: 5, Category: "Outdoor"},
		{ActivityID: "kerja", Name: "Kerja kantor", MetabolicWeight: 1.5, Category: "Indoor"},
		{ActivityID: "gym", Name: "Angkat beban", MetabolicWeight: 6, Category: "Indoor"},
	}
}

func TestOutdoorFactor(t *testing.T) {
	tests := []struct {
		name     string
		weather  *WeatherReading
		air      *AirReading
		expected float64
	}{
		{
			name:     "neutral without readings",
			expected: 1.0,
		},
		{
			name:     "floors at one in mild conditions",
			weather:  &WeatherReading{Temperature: 20},
			air:      &AirReading{AQI: 30},
			expected: 1.0,
		},
		{
			name:     "amplifies heat and smog",
			weather:  &WeatherReading{Temperature: 35},
			air:      &AirReading{AQI: 150},
			expected: 2.04, // 0.6*35/25 + 0.4*150/50
		},
		{
			name:     "missing air source defaults its term",
			weather:  &WeatherReading{Temperature: 50},
			expected: 1.6, // 0.6*2 + 0.4*1
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, OutdoorFactor(tt.weather, tt.air), 1e-9)
		})
	}
}

func TestDirtinessScore(t *testing.T) {
	window := []ActivityRecord{
		{ActivityID: "kerja", DurationMinutes: 60},
	}

	tests := []struct {
		name     string
		window   []ActivityRecord
		catalog  []CatalogEntry
		weather  *WeatherReading
		air      *AirReading
		expected float64
	}{
		{
			name:     "empty window scores zero",
			window:   nil,
			catalog:  catalogFixture(),
			expected: 0,
		},
		{
			name:     "empty catalog scores zero",
			window:   window,
			catalog:  nil,
			expected: 0,
		},
		{
			name: "indoor record ignores outdoor factor",
			window: []ActivityRecord{
				{ActivityID: "gym", DurationMinutes: 60},
			},
			catalog:  catalogFixture(),
			weather:  &WeatherReading{Temperature: 40},
			air:      &AirReading{AQI: 200},
			expected: 2.4, // 60*6/10/15
		},
		{
			name: "outdoor record amplified",
			window: []ActivityRecord{
				{ActivityID: "lari", DurationMinutes: 60},
			},
			catalog:  catalogFixture(),
			weather:  &WeatherReading{Temperature: 35},
			air:      &AirReading{AQI: 150},
			expected: 4.08, // 60*5/10 = 30, *2.04 = 61.2, /15
		},
		{
			name: "join miss contributes zero, not an error",
			window: []ActivityRecord{
				{ActivityID: "unknown", DurationMinutes: 500},
				{ActivityID: "kerja", DurationMinutes: 60},
			},
			catalog:  catalogFixture(),
			expected: 0.6, // only kerja: 60*1.5/10/15
		},
		{
			name: "clamps at ten",
			window: []ActivityRecord{
				{ActivityID: "gym", DurationMinutes: 100000},
			},
			catalog:  catalogFixture(),
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirtinessScore(tt.window, tt.catalog, tt.weather, tt.air)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestOdorScore(t *testing.T) {
	tests := []struct {
		name     string
		window   []ActivityRecord
		hours    float64
		weather  *WeatherReading
		expected float64
	}{
		{
			name:     "humidity default applies without weather",
			hours:    0,
			expected: 1.0, // 0.5*2
		},
		{
			name:     "negative hours guarded to zero",
			hours:    -7,
			weather:  &WeatherReading{Humidity: 0},
			expected: 0,
		},
		{
			name: "counts strenuous and outdoor triggers only",
			window: []ActivityRecord{
				{ActivityID: "lari"},  // outdoor
				{ActivityID: "gym"},   // weight 6 > 3
				{ActivityID: "kerja"}, // indoor, weight 1.5
			},
			hours:    4,
			weather:  &WeatherReading{Humidity: 80},
			expected: 4.2, // 4*0.3 + 2*0.7 + 0.8*2
		},
		{
			name:     "clamps at ten",
			hours:    1000,
			weather:  &WeatherReading{Humidity: 100},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OdorScore(tt.window, catalogFixture(), tt.hours, tt.weather)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestAirQualityScore(t *testing.T) {
	assert.Equal(t, 0.0, AirQualityScore(nil))
	assert.InDelta(t, 0.8, AirQualityScore(&AirReading{AQI: 40}), 1e-9)
	assert.InDelta(t, 3.0, AirQualityScore(&AirReading{AQI: 150}), 1e-9)
	assert.InDelta(t, 10.0, AirQualityScore(&AirReading{AQI: 9999}), 1e-9)
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, clip(-1, 0, 10))
	assert.Equal(t, 10.0, clip(11, 0, 10))
	assert.Equal(t, 5.5, clip(5.5, 0, 10))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2.36, round2(2.3551))
	assert.Equal(t, 4.0, round1(3.96))
}
