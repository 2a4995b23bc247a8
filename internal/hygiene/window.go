package hygiene

import "time"

// SelectWindow determines the scoring window: the anchor point and every
// activity strictly after it. The anchor is the most recent shower; with no
// shower history it bootstraps to the earliest known activity, and with no
// data at all it collapses to now. A future-dated anchor (clock skew in a
// manual log) is clamped to now so elapsed time can never go negative.
//
// Inputs are expected pre-sanitized; SelectWindow itself is pure.
func SelectWindow(activities []ActivityRecord, showers []ShowerEvent, now time.Time) (time.Time, []ActivityRecord) {
	anchor := now
	switch {
	case len(showers) > 0:
		anchor = showers[0].Timestamp
		for _, s := range showers[1:] {
			if s.Timestamp.After(anchor) {
				anchor = s.Timestamp
			}
		}
	case len(activities) > 0:
		anchor = activities[0].Timestamp
		for _, a := range activities[1:] {
			if a.Timestamp.Before(anchor) {
				anchor = a.Timestamp
			}
		}
	}

	if anchor.After(now) {
		anchor = now
	}

	window := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		if a.Timestamp.After(anchor) {
			window = append(window, a)
		}
	}
	return anchor, window
}
