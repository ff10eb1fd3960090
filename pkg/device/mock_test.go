package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgarcia-dev/riego/pkg/config"
	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

func TestMockSensors_GeneratesParsableTelemetry(t *testing.T) {
	m := NewMockSensors(config.MockConfig{SampleRate: 10 * time.Millisecond, NoiseLevel: 0.5})
	require.NoError(t, m.Connect())
	defer m.Close()

	select {
	case line := <-m.Lines():
		r, err := telemetry.ParseLine(line, time.Now())
		require.NoError(t, err)
		assert.Greater(t, r.Gas, 0.0)
		assert.Greater(t, r.Soil, 0.0)
		assert.Greater(t, r.Temperature, 0.0)
	case <-time.After(time.Second):
		t.Fatal("no telemetry line generated")
	}
}

func TestMockSensors_SoilTrend(t *testing.T) {
	m := NewMockSensors(config.MockConfig{SampleRate: time.Hour, SoilDryRate: 1, SoilWetRate: 2})

	// dry trend while the pump is off
	first, err := telemetry.ParseLine(m.nextLine(), time.Now())
	require.NoError(t, err)
	second, err := telemetry.ParseLine(m.nextLine(), time.Now())
	require.NoError(t, err)
	assert.Less(t, second.Soil, first.Soil)

	// recovery while irrigating
	m.SetIrrigating(true)
	third, err := telemetry.ParseLine(m.nextLine(), time.Now())
	require.NoError(t, err)
	assert.Greater(t, third.Soil, second.Soil)
}

func TestMockSensors_ConnectTwice(t *testing.T) {
	m := NewMockSensors(config.MockConfig{SampleRate: time.Hour})
	require.NoError(t, m.Connect())
	defer m.Close()

	assert.ErrorIs(t, m.Connect(), ErrAlreadyConnected)
}

func TestMockSensors_CloseClosesLines(t *testing.T) {
	m := NewMockSensors(config.MockConfig{SampleRate: time.Hour})
	require.NoError(t, m.Connect())

	lines := m.Lines()
	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	select {
	case _, ok := <-lines:
		assert.False(t, ok, "line channel must be closed")
	case <-time.After(time.Second):
		t.Fatal("line channel not closed")
	}
}

func TestMockPump_CommandProtocol(t *testing.T) {
	p := NewMockPump()
	require.NoError(t, p.Connect())
	defer p.Close()

	require.NoError(t, p.WriteLine("ON"))
	assert.True(t, p.PumpActive())
	assert.Equal(t, "BOMBA ENCENDIDA", <-p.Lines())
	assert.Equal(t, `{"pump_active":true,"auto_mode":false}`, <-p.Lines())

	require.NoError(t, p.WriteLine("OFF"))
	assert.False(t, p.PumpActive())
	assert.Equal(t, "BOMBA APAGADA", <-p.Lines())
	assert.Equal(t, `{"pump_active":false,"auto_mode":false}`, <-p.Lines())
}

func TestMockPump_AutoModeCommands(t *testing.T) {
	p := NewMockPump()
	require.NoError(t, p.Connect())
	defer p.Close()

	require.NoError(t, p.WriteLine("AUTO_MODE_ON"))
	assert.Equal(t, "MODO AUTO ACTIVADO", <-p.Lines())

	require.NoError(t, p.WriteLine("AUTO_MODE_OFF"))
	assert.Equal(t, "MODO AUTO DESACTIVADO", <-p.Lines())
}

func TestMockPump_UnknownCommand(t *testing.T) {
	p := NewMockPump()
	require.NoError(t, p.Connect())
	defer p.Close()

	require.NoError(t, p.WriteLine("REBOOT"))
	assert.Equal(t, "COMANDO DESCONOCIDO: REBOOT", <-p.Lines())
	assert.False(t, p.PumpActive())
}

func TestMockPump_OnPumpChange(t *testing.T) {
	p := NewMockPump()
	require.NoError(t, p.Connect())
	defer p.Close()

	var got []bool
	p.OnPumpChange = func(active bool) { got = append(got, active) }

	require.NoError(t, p.WriteLine("ON"))
	require.NoError(t, p.WriteLine("OFF"))
	require.NoError(t, p.WriteLine("AUTO_MODE_ON")) // no relay change

	assert.Equal(t, []bool{true, false}, got)
}

func TestMockPump_InjectLine(t *testing.T) {
	p := NewMockPump()
	require.NoError(t, p.Connect())
	defer p.Close()

	p.InjectLine(`{"pump_active":true,"auto_mode":false}`)
	assert.Equal(t, `{"pump_active":true,"auto_mode":false}`, <-p.Lines())
}

func TestMockPump_WriteWhenDisconnected(t *testing.T) {
	p := NewMockPump()
	assert.ErrorIs(t, p.WriteLine("ON"), ErrNotConnected)
}
