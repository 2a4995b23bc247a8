package hygiene

import (
	"fmt"
	"time"
)

// Odor scores at or above this force the shower recommendation regardless of
// the final-score tier.
var odorOverrideThreshold = 9.0

// Evaluate runs one full scoring pass over a snapshot. It is a pure function
// of the snapshot and now (GeneratedAt aside) and always produces a Result;
// degraded inputs degrade to documented defaults instead of failing.
func Evaluate(snap Snapshot, now time.Time) Result {
	if now.IsZero() {
		now = time.Now()
	}

	activities := sanitizeActivities(snap.Activities)
	showers := sanitizeShowers(snap.Showers)
	weather := latestWeather(snap.Weather)
	air := latestAir(snap.Air)
	prefs := ResolvePreferences(snap.Overrides)

	anchor, window := SelectWindow(activities, showers, now)
	hours := now.Sub(anchor).Hours()
	if hours < 0 {
		hours = 0
	}

	dirtiness := DirtinessScore(window, snap.Catalog, weather, air)
	odor := OdorScore(window, snap.Catalog, hours, weather)
	aqi := AirQualityScore(air)

	// Weights are meant to sum to 1 but overrides are free not to; the final
	// score stays inside the component band either way.
	final := round2(clip(dirtiness*prefs.WeightDirtiness+
		odor*prefs.WeightOdor+
		aqi*prefs.WeightAQI, 0, 10))

	label, explanation := recommend(final, odor, prefs.Threshold, hours, len(window))

	return Result{
		AnchorShowerTime: anchor,
		HoursSinceShower: round1(hours),
		DirtinessScore:   dirtiness,
		OdorScore:        odor,
		AQIScore:         aqi,
		FinalScore:       final,
		Recommendation:   label,
		Explanation:      explanation,
		Confidence:       confidence(snap, weather, air),
		GeneratedAt:      time.Now(),
	}
}

// recommend maps the final score onto the four-tier ladder, then applies the
// odor safety override, which wins over whatever tier was selected.
func recommend(final, odor, threshold, hours float64, windowLen int) (string, string) {
	var label string
	switch {
	case final >= threshold:
		label = LabelShowerNow
	case final >= threshold-1.0:
		label = LabelStronglyAdvised
	case final >= threshold-2.0:
		label = LabelCanDefer
	default:
		label = LabelStillFresh
	}

	if odor >= odorOverrideThreshold {
		return LabelOdorOverride, fmt.Sprintf(
			"odor score %.2f reached the %.1f safety limit; shower regardless of the combined score %.2f",
			odor, odorOverrideThreshold, final)
	}

	return label, fmt.Sprintf(
		"final score %.2f against threshold %.1f after %.1fh since the anchor shower and %d logged activities",
		final, threshold, hours, windowLen)
}

// confidence grades how much of the input surface was actually present, so a
// caller can tell an all-defaults Result from a well-grounded one.
func confidence(snap Snapshot, weather *WeatherReading, air *AirReading) float64 {
	available := 0
	if len(snap.Activities) > 0 {
		available++
	}
	if len(snap.Catalog) > 0 {
		available++
	}
	if len(snap.Showers) > 0 {
		available++
	}
	if weather != nil {
		available++
	}
	if air != nil {
		available++
	}

	switch {
	case available >= 5:
		return 0.95
	case available >= 3:
		return 0.8
	case available >= 1:
		return 0.6
	default:
		return 0.3
	}
}
