package hygiene

import "strconv"

// Preference parameter names match the spreadsheet rows the overrides are
// sourced from.
const (
	ParamWeightDirtiness = "bobot_kotor"
	ParamWeightOdor      = "bobot_bau"
	ParamWeightAQI       = "bobot_aqi"
	ParamThreshold       = "threshold_mandi"
)

// Preferences is the fully-populated scoring parameter set.
type Preferences struct {
	WeightDirtiness float64 `json:"weight_dirtiness"`
	WeightOdor      float64 `json:"weight_odor"`
	WeightAQI       float64 `json:"weight_aqi"`
	Threshold       float64 `json:"threshold"`
}

// DefaultPreferences returns the canonical defaults. The weights split
// 0.4/0.4/0.2 and are intended to sum to 1, though nothing enforces it.
func DefaultPreferences() Preferences {
	return Preferences{
		WeightDirtiness: 0.4,
		WeightOdor:      0.4,
		WeightAQI:       0.2,
		Threshold:       6.0,
	}
}

// ResolvePreferences fills a Preferences from sparse raw overrides. A missing
// key or a value that does not parse as a number falls back to the default
// for that key only; resolution never fails and is idempotent.
func ResolvePreferences(overrides map[string]string) Preferences {
	p := DefaultPreferences()
	p.WeightDirtiness = resolveParam(overrides, ParamWeightDirtiness, p.WeightDirtiness)
	p.WeightOdor = resolveParam(overrides, ParamWeightOdor, p.WeightOdor)
	p.WeightAQI = resolveParam(overrides, ParamWeightAQI, p.WeightAQI)
	p.Threshold = resolveParam(overrides, ParamThreshold, p.Threshold)
	return p
}

func resolveParam(overrides map[string]string, name string, def float64) float64 {
	raw, ok := overrides[name]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
