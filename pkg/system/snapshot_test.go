package system

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgarcia-dev/riego/pkg/config"
)

func populatedSystem(t *testing.T) *System {
	t.Helper()

	s, _, _, _ := newTestSystem(t)
	s.processSensorLine(`{"gas":20,"ultrasonic":18,"soil":50,"temperature":24,"humidity":60}`)
	s.processSensorLine(`{"gas":200,"ultrasonic":18,"soil":50,"temperature":24,"humidity":60}`)
	s.TurnPumpOn()
	require.NoError(t, s.UpdateGasThresholds(config.GasThresholds{Good: 40, Regular: 120, Bad: 180}))
	return s
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := populatedSystem(t)
	data, err := src.Export()
	require.NoError(t, err)

	dst, _, _, _ := newTestSystem(t)
	require.NoError(t, dst.Import(data))

	srcSeries, dstSeries := src.Store().Series(), dst.Store().Series()
	assert.Equal(t, srcSeries.Gas, dstSeries.Gas)
	assert.Equal(t, srcSeries.Ultrasonic, dstSeries.Ultrasonic)
	assert.Equal(t, srcSeries.Soil, dstSeries.Soil)
	assert.Equal(t, srcSeries.Temperature, dstSeries.Temperature)
	assert.Equal(t, srcSeries.Humidity, dstSeries.Humidity)
	require.Equal(t, srcSeries.Len(), dstSeries.Len())
	for i := range srcSeries.Timestamps {
		assert.True(t, srcSeries.Timestamps[i].Equal(dstSeries.Timestamps[i]))
	}
	assert.Equal(t, src.Store().Histogram(), dst.Store().Histogram())
	assert.Equal(t, src.Stats().TotalReadings, dst.Stats().TotalReadings)
	assert.Equal(t, src.Stats().AlertCount, dst.Stats().AlertCount)
	assert.Equal(t, src.Stats().IrrigationCount, dst.Stats().IrrigationCount)
	assert.Equal(t, src.Config().Gas, dst.Config().Gas)
	assert.Equal(t, src.Config().Tank, dst.Config().Tank)
	assert.Equal(t, src.Config().Plant, dst.Config().Plant)

	srcEvents := src.History().Events()
	dstEvents := dst.History().Events()
	require.Len(t, dstEvents, len(srcEvents))
	for i := range srcEvents {
		assert.Equal(t, srcEvents[i].ID, dstEvents[i].ID)
		assert.Equal(t, srcEvents[i].Message, dstEvents[i].Message)
		assert.Equal(t, srcEvents[i].Severity, dstEvents[i].Severity, "severity rebuilt from level string")
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	s, _, _, _ := newTestSystem(t)
	assert.Error(t, s.Import([]byte("not json")))
}

func TestImport_MalformedSectionSkipped(t *testing.T) {
	src := populatedSystem(t)
	data, err := src.Export()
	require.NoError(t, err)

	var sections map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &sections))
	sections["sensor_data"] = json.RawMessage(`"garbage"`)
	corrupted, err := json.Marshal(sections)
	require.NoError(t, err)

	dst, _, _, _ := newTestSystem(t)
	require.NoError(t, dst.Import(corrupted), "a bad section is skipped, not fatal")

	assert.Equal(t, 0, dst.Store().Series().Len(), "corrupt buffers not applied")
	assert.Equal(t, src.Config().Gas, dst.Config().Gas, "intact sections still applied")
}

func TestImport_InvalidThresholdsRejected(t *testing.T) {
	src := populatedSystem(t)
	data, err := src.Export()
	require.NoError(t, err)

	var sections map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &sections))
	sections["gas_parameters"] = json.RawMessage(`{"good":150,"regular":100,"bad":30}`)
	corrupted, err := json.Marshal(sections)
	require.NoError(t, err)

	dst, _, _, _ := newTestSystem(t)
	before := dst.Config().Gas
	require.NoError(t, dst.Import(corrupted))

	assert.Equal(t, before, dst.Config().Gas, "snapshot cannot bypass threshold validation")
}

func TestImport_EmergencyStopNeverRestored(t *testing.T) {
	src := populatedSystem(t)
	src.EmergencyStop()
	require.True(t, src.Controller().Status().EmergencyStop)

	data, err := src.Export()
	require.NoError(t, err)

	dst, _, _, _ := newTestSystem(t)
	require.NoError(t, dst.Import(data))
	assert.False(t, dst.Controller().Status().EmergencyStop)
}

func TestSaveLoadState(t *testing.T) {
	src := populatedSystem(t)
	path := filepath.Join(t.TempDir(), StateFile)

	require.NoError(t, src.SaveState(path))

	dst, _, _, _ := newTestSystem(t)
	require.NoError(t, dst.LoadState(path))
	assert.Equal(t, src.Stats().TotalReadings, dst.Stats().TotalReadings)
}

func TestLoadState_MissingFileIsFine(t *testing.T) {
	s, _, _, _ := newTestSystem(t)
	require.NoError(t, s.LoadState(filepath.Join(t.TempDir(), "absent.json")))
	assert.Equal(t, 0, s.Stats().TotalReadings)
}

func TestExport_IsValidJSON(t *testing.T) {
	s := populatedSystem(t)
	data, err := s.Export()
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))
	for _, key := range []string{"timestamp", "sensor_data", "system_stats", "plant_parameters",
		"gas_parameters", "ultrasonic_parameters", "alert_stats", "system_info"} {
		assert.Contains(t, snap, key)
	}
}
