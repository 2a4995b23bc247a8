package hygiene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePreferences(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		expected  Preferences
	}{
		{
			name:      "nil overrides yield defaults",
			overrides: nil,
			expected:  Preferences{WeightDirtiness: 0.4, WeightOdor: 0.4, WeightAQI: 0.2, Threshold: 6.0},
		},
		{
			name: "partial overrides touch only their keys",
			overrides: map[string]string{
				ParamThreshold: "7.5",
			},
			expected: Preferences{WeightDirtiness: 0.4, WeightOdor: 0.4, WeightAQI: 0.2, Threshold: 7.5},
		},
		{
			name: "non-numeric value falls back per key",
			overrides: map[string]string{
				ParamWeightOdor: "banyak",
				ParamWeightAQI:  "0.3",
			},
			expected: Preferences{WeightDirtiness: 0.4, WeightOdor: 0.4, WeightAQI: 0.3, Threshold: 6.0},
		},
		{
			name: "unknown parameter names are ignored",
			overrides: map[string]string{
				"bobot_misterius": "99",
			},
			expected: DefaultPreferences(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolvePreferences(tt.overrides))
		})
	}
}

func TestResolvePreferencesIdempotent(t *testing.T) {
	overrides := map[string]string{
		ParamWeightDirtiness: "0.5",
		ParamWeightOdor:      "not-a-number",
	}

	first := ResolvePreferences(overrides)
	second := ResolvePreferences(overrides)

	assert.Equal(t, first, second)
}
