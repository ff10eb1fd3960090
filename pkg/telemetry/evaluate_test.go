package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hgarcia-dev/riego/pkg/config"
)

func TestEvaluateGas(t *testing.T) {
	bands := config.GasThresholds{Good: 30, Regular: 100, Bad: 150}

	tests := []struct {
		name     string
		value    float64
		level    Severity
		eligible bool
	}{
		{"clean air", 20, Normal, false},
		{"exactly good", 30, Normal, false},
		{"regular", 80, Warning, false},
		{"exactly regular", 100, Warning, false},
		{"contaminated", 120, Danger, true},
		{"exactly bad", 150, Danger, true},
		{"above bad", 151, Critical, true},
		{"way above", 500, Critical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateGas(tt.value, bands)
			assert.Equal(t, tt.level, ev.Level)
			assert.Equal(t, tt.eligible, ev.AlertEligible)
			assert.NotEmpty(t, ev.Message)
		})
	}
}

func TestEvaluateTank(t *testing.T) {
	bands := config.TankThresholds{Min: 5, Regular: 15, Max: 25}

	tests := []struct {
		name     string
		value    float64
		level    Severity
		eligible bool
	}{
		{"no data sentinel", 0, Normal, false},
		{"negative is no data", -1, Normal, false},
		{"empty", 3, Danger, true},
		{"exactly min", 5, Danger, true},
		{"regular", 10, Warning, false},
		{"full", 20, Normal, false},
		{"exactly max", 25, Normal, false},
		{"overflow", 26, Critical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateTank(tt.value, bands)
			assert.Equal(t, tt.level, ev.Level)
			assert.Equal(t, tt.eligible, ev.AlertEligible)
		})
	}
}

func TestEvaluateSoil(t *testing.T) {
	plant := config.PlantConfig{SoilOptimal: 50, SoilMin: 25, SoilMax: 75}

	tests := []struct {
		name     string
		value    float64
		level    Severity
		eligible bool
	}{
		{"no data sentinel", 0, Normal, false},
		{"optimal low edge", 25, Normal, false},
		{"optimal", 50, Normal, false},
		{"optimal high edge", 75, Normal, false},
		{"dry", 20, Warning, true},
		{"just above critical", 18, Warning, true},
		{"critically dry", 17, Danger, true},
		{"bone dry", 5, Danger, true},
		{"too wet", 80, Warning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateSoil(tt.value, plant)
			assert.Equal(t, tt.level, ev.Level)
			assert.Equal(t, tt.eligible, ev.AlertEligible)
		})
	}
}

func TestEvaluateSoil_CriticalLevelScalesWithMin(t *testing.T) {
	// critical boundary sits at 70% of the configured minimum
	plant := config.PlantConfig{SoilOptimal: 55, SoilMin: 40, SoilMax: 80}

	assert.Equal(t, Warning, EvaluateSoil(29, plant).Level) // above 28
	assert.Equal(t, Danger, EvaluateSoil(27, plant).Level)  // below 28
}

func TestEvaluateTemperature(t *testing.T) {
	plant := config.PlantConfig{TempOptimal: 25}

	tests := []struct {
		name     string
		value    float64
		level    Severity
		eligible bool
	}{
		{"no data sentinel", 0, Normal, false},
		{"optimal", 25, Normal, false},
		{"near optimal", 27, Normal, false},
		{"moderate", 30, Warning, false},
		{"not ideal below", 33, Warning, false},
		{"boundary deviation stays warning", 40, Warning, false},
		{"extreme hot", 41, Danger, true},
		{"extreme cold", 9, Danger, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateTemperature(tt.value, plant)
			assert.Equal(t, tt.level, ev.Level)
			assert.Equal(t, tt.eligible, ev.AlertEligible)
		})
	}
}

func TestEvaluateHumidity(t *testing.T) {
	plant := config.PlantConfig{HumidOptimal: 60}

	tests := []struct {
		name     string
		value    float64
		level    Severity
		eligible bool
	}{
		{"no data sentinel", 0, Normal, false},
		{"ideal", 60, Normal, false},
		{"near ideal", 65, Normal, false},
		{"acceptable", 75, Warning, false},
		{"not ideal", 85, Warning, false},
		{"boundary deviation stays warning", 90, Warning, false},
		{"extreme", 95, Danger, true},
		{"extremely dry air", 25, Danger, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateHumidity(tt.value, plant)
			assert.Equal(t, tt.level, ev.Level)
			assert.Equal(t, tt.eligible, ev.AlertEligible)
		})
	}
}

func TestClassify_CoversAllChannels(t *testing.T) {
	cfg := config.Default()

	for _, c := range Channels() {
		ev := Classify(c, 50, cfg)
		assert.NotEmpty(t, ev.Message, "channel %s", c)
		assert.NotEmpty(t, ev.Icon, "channel %s", c)
	}

	// every value maps to exactly one level
	for v := -10.0; v <= 300; v += 0.5 {
		for _, c := range Channels() {
			ev := Classify(c, v, cfg)
			assert.Contains(t, []Severity{Normal, Warning, Danger, Critical}, ev.Level)
		}
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "danger", Danger.String())
	assert.Equal(t, "critical", Critical.String())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, Critical, ParseSeverity("critical"))
	assert.Equal(t, Warning, ParseSeverity("warning"))
	assert.Equal(t, Normal, ParseSeverity("unknown-level"))
}
