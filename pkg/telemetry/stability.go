package telemetry

import (
	"math"
	"sync"
	"time"

	"github.com/hgarcia-dev/riego/pkg/config"
)

// StableState holds the last accepted value per channel. Downstream
// consumers only ever see snapshots of it.
type StableState struct {
	Gas         float64
	Ultrasonic  float64
	Soil        float64
	Temperature float64
	Humidity    float64
	LastUpdate  time.Time
}

// Value returns the stable value for the given channel.
func (s StableState) Value(c Channel) float64 {
	switch c {
	case ChannelGas:
		return s.Gas
	case ChannelUltrasonic:
		return s.Ultrasonic
	case ChannelSoil:
		return s.Soil
	case ChannelTemperature:
		return s.Temperature
	case ChannelHumidity:
		return s.Humidity
	}
	return 0
}

// StabilityFilter debounces raw telemetry into stable readings. Without it,
// every raw line would churn history buffers and defeat alert cooldowns.
type StabilityFilter struct {
	mu    sync.RWMutex
	cfg   config.StabilityConfig
	state StableState
}

// NewStabilityFilter creates a filter with the given tuning.
func NewStabilityFilter(cfg config.StabilityConfig) *StabilityFilter {
	return &StabilityFilter{cfg: cfg}
}

// Accept decides whether a raw reading becomes the new stable state.
// A reading is accepted when the update interval has elapsed since the last
// accepted reading, or when any channel moved by more than its significance
// delta. On acceptance all five channels are updated atomically, even the
// ones that did not individually trigger.
func (f *StabilityFilter) Accept(r Reading) (StableState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	significant := math.Abs(r.Gas-f.state.Gas) > f.cfg.GasDelta ||
		math.Abs(r.Ultrasonic-f.state.Ultrasonic) > f.cfg.UltrasonicDelta ||
		math.Abs(r.Soil-f.state.Soil) > f.cfg.SoilDelta ||
		math.Abs(r.Temperature-f.state.Temperature) > f.cfg.TemperatureDelta ||
		math.Abs(r.Humidity-f.state.Humidity) > f.cfg.HumidityDelta

	elapsed := r.CapturedAt.Sub(f.state.LastUpdate)
	if !significant && elapsed <= f.cfg.UpdateInterval {
		return f.state, false
	}

	f.state = StableState{
		Gas:         r.Gas,
		Ultrasonic:  r.Ultrasonic,
		Soil:        r.Soil,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		LastUpdate:  r.CapturedAt,
	}
	return f.state, true
}

// State returns a snapshot of the current stable state.
func (f *StabilityFilter) State() StableState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Reset clears the stable state, as when sensors are reset by the user.
func (f *StabilityFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StableState{}
}
