package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.SensorsPort)
	assert.Equal(t, 9600, cfg.Serial.SensorsBaud)
	assert.Equal(t, float64(30), cfg.Gas.Good)
	assert.Equal(t, float64(100), cfg.Gas.Regular)
	assert.Equal(t, float64(150), cfg.Gas.Bad)
	assert.Equal(t, float64(5), cfg.Tank.Min)
	assert.Equal(t, float64(15), cfg.Tank.Regular)
	assert.Equal(t, float64(25), cfg.Tank.Max)
	assert.Equal(t, "tomate", cfg.Plant.Name)
	assert.Equal(t, float64(25), cfg.Plant.SoilMin)
	assert.Equal(t, float64(75), cfg.Plant.SoilMax)
	assert.Equal(t, 2*time.Second, cfg.Stability.UpdateInterval)
	assert.Equal(t, 5*time.Second, cfg.Alerts.Cooldown)
	assert.Equal(t, 50, cfg.Alerts.HistoryCap)
	assert.NoError(t, cfg.Validate())
}

func TestPresets(t *testing.T) {
	presets := Presets()
	require.Len(t, presets, 4)

	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
		assert.NoError(t, p.Validate(), "preset %s", p.Name)
	}
	assert.Equal(t, []string{"tomate", "rosa", "cacao", "banano"}, names)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.SensorsPort)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  sensors_port: "/dev/ttyUSB0"
  pump_port: "/dev/ttyUSB1"

gas:
  good: 40
  regular: 120
  bad: 180

tank:
  min: 4
  regular: 12
  max: 20

plant:
  name: "rosa"
  soil_optimal: 55
  soil_min: 35
  soil_max: 70
  temp_optimal: 22
  humid_optimal: 65

stability:
  update_interval: 3s
  gas_delta: 8
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.SensorsPort)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.PumpPort)
	assert.Equal(t, float64(40), cfg.Gas.Good)
	assert.Equal(t, float64(180), cfg.Gas.Bad)
	assert.Equal(t, float64(20), cfg.Tank.Max)
	assert.Equal(t, "rosa", cfg.Plant.Name)
	assert.Equal(t, float64(35), cfg.Plant.SoilMin)
	assert.Equal(t, 3*time.Second, cfg.Stability.UpdateInterval)
	assert.Equal(t, float64(8), cfg.Stability.GasDelta)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  sensors_port: "/dev/ttyUSB0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.SensorsPort)
	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.PumpPort)         // default
	assert.Equal(t, float64(30), cfg.Gas.Good)                   // default
	assert.Equal(t, 2*time.Second, cfg.Stability.UpdateInterval) // default
}

func TestLoad_RejectsInvalidThresholds(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
gas:
  good: 100
  regular: 50
  bad: 150
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.SensorsPort = "/dev/ttyUSB0"
	cfg.Gas.Bad = 200

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.SensorsPort)
	assert.Equal(t, float64(200), loaded.Gas.Bad)
}

func TestGasThresholds_Validate(t *testing.T) {
	assert.NoError(t, GasThresholds{Good: 30, Regular: 100, Bad: 150}.Validate())
	assert.Error(t, GasThresholds{Good: 100, Regular: 100, Bad: 150}.Validate())
	assert.Error(t, GasThresholds{Good: 30, Regular: 160, Bad: 150}.Validate())
}

func TestTankThresholds_Validate(t *testing.T) {
	assert.NoError(t, TankThresholds{Min: 5, Regular: 15, Max: 25}.Validate())
	assert.Error(t, TankThresholds{Min: 15, Regular: 15, Max: 25}.Validate())
	assert.Error(t, TankThresholds{Min: 5, Regular: 30, Max: 25}.Validate())
}

func TestPlantConfig_Validate(t *testing.T) {
	assert.NoError(t, PlantConfig{SoilOptimal: 50, SoilMin: 25, SoilMax: 75}.Validate())
	assert.Error(t, PlantConfig{SoilOptimal: 50, SoilMin: 75, SoilMax: 25}.Validate())
	assert.Error(t, PlantConfig{SoilOptimal: 90, SoilMin: 25, SoilMax: 75}.Validate())
}
