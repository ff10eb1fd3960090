package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Gas       GasThresholds   `yaml:"gas"`
	Tank      TankThresholds  `yaml:"tank"`
	Plant     PlantConfig     `yaml:"plant"`
	Stability StabilityConfig `yaml:"stability"`
	Alerts    AlertConfig     `yaml:"alerts"`
	Pump      PumpConfig      `yaml:"pump"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains the ports and baud rates for both units.
type SerialConfig struct {
	SensorsPort string        `yaml:"sensors_port"`
	SensorsBaud int           `yaml:"sensors_baud"`
	PumpPort    string        `yaml:"pump_port"`
	PumpBaud    int           `yaml:"pump_baud"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// GasThresholds defines the upper bound of each gas quality band (ppm).
// Anything above Bad is classified as critical.
type GasThresholds struct {
	Good    float64 `yaml:"good"`
	Regular float64 `yaml:"regular"`
	Bad     float64 `yaml:"bad"`
}

// Validate checks that the band boundaries are strictly increasing.
func (g GasThresholds) Validate() error {
	if g.Good >= g.Regular || g.Regular >= g.Bad {
		return fmt.Errorf("gas thresholds must satisfy good < regular < bad, got %.1f/%.1f/%.1f",
			g.Good, g.Regular, g.Bad)
	}
	return nil
}

// TankThresholds defines the tank level bands measured by the ultrasonic
// sensor (cm). Anything above Max is treated as overflow.
type TankThresholds struct {
	Min     float64 `yaml:"min"`
	Regular float64 `yaml:"regular"`
	Max     float64 `yaml:"max"`
}

// Validate checks that the band boundaries are strictly increasing.
func (t TankThresholds) Validate() error {
	if t.Min >= t.Regular || t.Regular >= t.Max {
		return fmt.Errorf("tank thresholds must satisfy min < regular < max, got %.1f/%.1f/%.1f",
			t.Min, t.Regular, t.Max)
	}
	return nil
}

// PlantConfig contains the plant-specific optimal values and tolerance bands.
type PlantConfig struct {
	Name          string  `yaml:"name"`
	SoilOptimal   float64 `yaml:"soil_optimal"`
	SoilMin       float64 `yaml:"soil_min"`
	SoilMax       float64 `yaml:"soil_max"`
	TempOptimal   float64 `yaml:"temp_optimal"`
	HumidOptimal  float64 `yaml:"humid_optimal"`
	IrrigationSec int     `yaml:"irrigation_sec"`
}

// Validate checks that the soil band is ordered and contains the optimum.
func (p PlantConfig) Validate() error {
	if p.SoilMin >= p.SoilMax {
		return fmt.Errorf("plant soil band must satisfy min < max, got %.1f/%.1f", p.SoilMin, p.SoilMax)
	}
	if p.SoilOptimal < p.SoilMin || p.SoilOptimal > p.SoilMax {
		return fmt.Errorf("plant soil optimum %.1f outside band [%.1f, %.1f]", p.SoilOptimal, p.SoilMin, p.SoilMax)
	}
	return nil
}

// StabilityConfig tunes the stability filter that debounces raw telemetry.
// Deltas are the per-channel absolute change that counts as significant.
type StabilityConfig struct {
	UpdateInterval   time.Duration `yaml:"update_interval"`
	GasDelta         float64       `yaml:"gas_delta"`
	UltrasonicDelta  float64       `yaml:"ultrasonic_delta"`
	SoilDelta        float64       `yaml:"soil_delta"`
	TemperatureDelta float64       `yaml:"temperature_delta"`
	HumidityDelta    float64       `yaml:"humidity_delta"`
}

// AlertConfig tunes alert surfacing.
type AlertConfig struct {
	Cooldown   time.Duration `yaml:"cooldown"`
	HistoryCap int           `yaml:"history_cap"`
}

// PumpConfig tunes pump command handling.
type PumpConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// MockConfig contains mock device configuration for -mock runs.
type MockConfig struct {
	SampleRate  time.Duration `yaml:"sample_rate"`   // Time between telemetry lines
	NoiseLevel  float64       `yaml:"noise_level"`   // Noise amplitude added to each channel
	SoilDryRate float64       `yaml:"soil_dry_rate"` // Soil moisture lost per sample while pump is off
	SoilWetRate float64       `yaml:"soil_wet_rate"` // Soil moisture gained per sample while pump is on
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			SensorsPort: "/dev/ttyACM0",
			SensorsBaud: 9600,
			PumpPort:    "/dev/ttyACM1",
			PumpBaud:    9600,
			OpenTimeout: 10 * time.Second,
		},
		Gas: GasThresholds{
			Good:    30,
			Regular: 100,
			Bad:     150,
		},
		Tank: TankThresholds{
			Min:     5,
			Regular: 15,
			Max:     25,
		},
		Plant: PlantConfig{
			Name:          "tomate",
			SoilOptimal:   50,
			SoilMin:       25,
			SoilMax:       75,
			TempOptimal:   25,
			HumidOptimal:  60,
			IrrigationSec: 30,
		},
		Stability: StabilityConfig{
			UpdateInterval:   2 * time.Second,
			GasDelta:         5,
			UltrasonicDelta:  2,
			SoilDelta:        3,
			TemperatureDelta: 1,
			HumidityDelta:    3,
		},
		Alerts: AlertConfig{
			Cooldown:   5 * time.Second,
			HistoryCap: 50,
		},
		Pump: PumpConfig{
			SettleDelay: time.Second,
		},
		Mock: MockConfig{
			SampleRate:  500 * time.Millisecond,
			NoiseLevel:  0.5,
			SoilDryRate: 0.2,
			SoilWetRate: 2.0,
		},
	}
}

// Presets returns the built-in plant parameter presets.
func Presets() []PlantConfig {
	return []PlantConfig{
		{Name: "tomate", SoilOptimal: 50, SoilMin: 25, SoilMax: 75, TempOptimal: 25, HumidOptimal: 60, IrrigationSec: 30},
		{Name: "rosa", SoilOptimal: 55, SoilMin: 35, SoilMax: 70, TempOptimal: 22, HumidOptimal: 65, IrrigationSec: 20},
		{Name: "cacao", SoilOptimal: 60, SoilMin: 40, SoilMax: 80, TempOptimal: 26, HumidOptimal: 75, IrrigationSec: 45},
		{Name: "banano", SoilOptimal: 65, SoilMin: 45, SoilMax: 85, TempOptimal: 27, HumidOptimal: 80, IrrigationSec: 40},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks all threshold orderings.
func (c *Config) Validate() error {
	if err := c.Gas.Validate(); err != nil {
		return err
	}
	if err := c.Tank.Validate(); err != nil {
		return err
	}
	return c.Plant.Validate()
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.SensorsPort == "" {
		c.Serial.SensorsPort = def.Serial.SensorsPort
	}
	if c.Serial.SensorsBaud == 0 {
		c.Serial.SensorsBaud = def.Serial.SensorsBaud
	}
	if c.Serial.PumpPort == "" {
		c.Serial.PumpPort = def.Serial.PumpPort
	}
	if c.Serial.PumpBaud == 0 {
		c.Serial.PumpBaud = def.Serial.PumpBaud
	}
	if c.Serial.OpenTimeout == 0 {
		c.Serial.OpenTimeout = def.Serial.OpenTimeout
	}

	if c.Gas == (GasThresholds{}) {
		c.Gas = def.Gas
	}
	if c.Tank == (TankThresholds{}) {
		c.Tank = def.Tank
	}

	if c.Plant.SoilMin == 0 && c.Plant.SoilMax == 0 {
		c.Plant = def.Plant
	}
	if c.Plant.IrrigationSec == 0 {
		c.Plant.IrrigationSec = def.Plant.IrrigationSec
	}

	if c.Stability.UpdateInterval == 0 {
		c.Stability.UpdateInterval = def.Stability.UpdateInterval
	}
	if c.Stability.GasDelta == 0 {
		c.Stability.GasDelta = def.Stability.GasDelta
	}
	if c.Stability.UltrasonicDelta == 0 {
		c.Stability.UltrasonicDelta = def.Stability.UltrasonicDelta
	}
	if c.Stability.SoilDelta == 0 {
		c.Stability.SoilDelta = def.Stability.SoilDelta
	}
	if c.Stability.TemperatureDelta == 0 {
		c.Stability.TemperatureDelta = def.Stability.TemperatureDelta
	}
	if c.Stability.HumidityDelta == 0 {
		c.Stability.HumidityDelta = def.Stability.HumidityDelta
	}

	if c.Alerts.Cooldown == 0 {
		c.Alerts.Cooldown = def.Alerts.Cooldown
	}
	if c.Alerts.HistoryCap == 0 {
		c.Alerts.HistoryCap = def.Alerts.HistoryCap
	}

	if c.Pump.SettleDelay == 0 {
		c.Pump.SettleDelay = def.Pump.SettleDelay
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.SoilDryRate == 0 {
		c.Mock.SoilDryRate = def.Mock.SoilDryRate
	}
	if c.Mock.SoilWetRate == 0 {
		c.Mock.SoilWetRate = def.Mock.SoilWetRate
	}
}
