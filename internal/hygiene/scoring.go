package hygiene

import (
	"math"
	"strings"
)

var (
	// Dirtiness normalization: summed per-record contributions divide by
	// this before clamping to the 0-10 band.
	dirtinessNorm = 15.0

	// Outdoor amplification reference points: 25C and AQI 50 are the
	// neutral values at which the factor bottoms out at 1.0.
	refTemperature = 25.0
	refAQI         = 50.0

	// Odor model coefficients.
	odorHoursCoeff    = 0.3
	odorActivityCoeff = 0.7
	odorHumidityCoeff = 2.0
	odorTriggerWeight = 3.0

	// Humidity fraction assumed when no weather reading is available.
	defaultHumidityFrac = 0.5
)

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round1(x float64) float64 { return math.Round(x*10) / 10 }

// catalogIndex builds the join map for window records. Entries with a missing
// metabolic weight simply carry 0, matching the zero-contribution policy for
// unknown activities.
func catalogIndex(catalog []CatalogEntry) map[string]CatalogEntry {
	idx := make(map[string]CatalogEntry, len(catalog))
	for _, e := range catalog {
		idx[e.ActivityID] = e
	}
	return idx
}

func isOutdoor(category string) bool {
	return strings.Contains(strings.ToLower(category), "outdoor")
}

// OutdoorFactor amplifies soiling for outdoor activity based on heat and
// ambient air. With either reading absent its term sits at the neutral
// reference, so no readings at all means factor 1.0.
func OutdoorFactor(weather *WeatherReading, air *AirReading) float64 {
	temp := refTemperature
	if weather != nil {
		temp = weather.Temperature
	}
	aqi := refAQI
	if air != nil {
		aqi = air.AQI
	}
	f := 0.6*(temp/refTemperature) + 0.4*(aqi/refAQI)
	return math.Max(1.0, f)
}

// DirtinessScore converts windowed activity into a 0-10 physical-soiling
// score. Each record left-joins the catalog by activity id; a join miss
// contributes zero rather than dropping the row.
func DirtinessScore(window []ActivityRecord, catalog []CatalogEntry, weather *WeatherReading, air *AirReading) float64 {
	if len(window) == 0 || len(catalog) == 0 {
		return 0
	}
	idx := catalogIndex(catalog)
	factor := OutdoorFactor(weather, air)

	sum := 0.0
	for _, rec := range window {
		entry := idx[rec.ActivityID] // zero value on miss
		base := rec.DurationMinutes * (entry.MetabolicWeight / 10)
		if isOutdoor(entry.Category) {
			base *= factor
		}
		sum += base
	}
	return round2(clip(sum/dirtinessNorm, 0, 10))
}

// OdorScore models body-odor risk from elapsed time, odor-triggering activity
// count, and humidity. Triggering records are the strenuous ones (metabolic
// weight above 3.0) or anything outdoor.
func OdorScore(window []ActivityRecord, catalog []CatalogEntry, hoursSinceShower float64, weather *WeatherReading) float64 {
	if hoursSinceShower < 0 {
		hoursSinceShower = 0
	}

	idx := catalogIndex(catalog)
	triggering := 0
	for _, rec := range window {
		entry := idx[rec.ActivityID]
		if entry.MetabolicWeight > odorTriggerWeight || isOutdoor(entry.Category) {
			triggering++
		}
	}

	humidityFrac := defaultHumidityFrac
	if weather != nil {
		humidityFrac = weather.Humidity / 100
	}

	score := hoursSinceShower*odorHoursCoeff +
		float64(triggering)*odorActivityCoeff +
		humidityFrac*odorHumidityCoeff
	return round2(clip(score, 0, 10))
}

// AirQualityScore maps the latest AQI reading onto the 0-10 band, 0 when no
// reading is available.
func AirQualityScore(air *AirReading) float64 {
	if air == nil {
		return 0
	}
	return round2(clip(air.AQI/refAQI, 0, 10))
}
