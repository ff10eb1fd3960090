package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

func TestGate_CooldownWindow(t *testing.T) {
	g := NewGate(5 * time.Second)
	now := time.Now()

	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now))

	// repeated eligible conditions inside the window stay silent
	assert.False(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(time.Second)))
	assert.False(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(4*time.Second)))

	// window elapsed, next alert passes and restarts the window
	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(5*time.Second)))
	assert.False(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(6*time.Second)))
}

func TestGate_ChannelsAreIndependent(t *testing.T) {
	g := NewGate(5 * time.Second)
	now := time.Now()

	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now))
	assert.True(t, g.ShouldAlert(telemetry.ChannelSoil, true, now))
	assert.True(t, g.ShouldAlert(telemetry.ChannelUltrasonic, true, now.Add(time.Second)))
}

func TestGate_IneligibleNeverAlerts(t *testing.T) {
	g := NewGate(5 * time.Second)
	now := time.Now()

	assert.False(t, g.ShouldAlert(telemetry.ChannelGas, false, now))

	// an ineligible condition must not stamp the channel
	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(time.Millisecond)))
}

func TestGate_Reset(t *testing.T) {
	g := NewGate(5 * time.Second)
	now := time.Now()

	g.ShouldAlert(telemetry.ChannelGas, true, now)
	g.Reset()

	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(time.Millisecond)))
}

func TestNewGate_DefaultCooldown(t *testing.T) {
	g := NewGate(0)
	now := time.Now()

	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now))
	assert.False(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(DefaultCooldown-time.Millisecond)))
	assert.True(t, g.ShouldAlert(telemetry.ChannelGas, true, now.Add(DefaultCooldown)))
}
