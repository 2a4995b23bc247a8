package hygiene

import "sort"

// Records with unusable fields are dropped before windowing rather than
// failing the batch: a missing timestamp or a negative duration makes a row
// meaningless but never makes the evaluation fatal.

func sanitizeActivities(in []ActivityRecord) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(in))
	for _, r := range in {
		if r.Timestamp.IsZero() || r.DurationMinutes < 0 {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func sanitizeShowers(in []ShowerEvent) []ShowerEvent {
	out := make([]ShowerEvent, 0, len(in))
	for _, s := range in {
		if s.Timestamp.IsZero() {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// latestWeather returns the max-timestamp weather reading, or nil when no
// usable reading exists.
func latestWeather(in []WeatherReading) *WeatherReading {
	var latest *WeatherReading
	for i := range in {
		if in[i].Timestamp.IsZero() {
			continue
		}
		if latest == nil || in[i].Timestamp.After(latest.Timestamp) {
			latest = &in[i]
		}
	}
	return latest
}

// latestAir returns the max-timestamp air-quality reading, or nil.
func latestAir(in []AirReading) *AirReading {
	var latest *AirReading
	for i := range in {
		if in[i].Timestamp.IsZero() {
			continue
		}
		if latest == nil || in[i].Timestamp.After(latest.Timestamp) {
			latest = &in[i]
		}
	}
	return latest
}
