package alert

import (
	"sync"
	"time"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// DefaultCooldown is the minimum time between two surfaced alerts for the
// same channel.
const DefaultCooldown = 5 * time.Second

// Gate rate-limits user-visible alerts per channel so a noisy sensor
// cannot spam the dashboard.
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastSent map[telemetry.Channel]time.Time
}

// NewGate creates a gate with the given cooldown.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{
		cooldown: cooldown,
		lastSent: make(map[telemetry.Channel]time.Time),
	}
}

// ShouldAlert reports whether an alert-eligible condition on the channel may
// surface right now. On true it stamps the channel, so at most one alert per
// channel passes per cooldown window.
func (g *Gate) ShouldAlert(c telemetry.Channel, eligible bool, now time.Time) bool {
	if !eligible {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.lastSent[c]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.lastSent[c] = now
	return true
}

// Reset clears all cooldown stamps.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSent = make(map[telemetry.Channel]time.Time)
}
