package system

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hgarcia-dev/riego/pkg/alert"
	"github.com/hgarcia-dev/riego/pkg/config"
	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// seriesJSON is the wire shape of the telemetry buffers.
type seriesJSON struct {
	Gas         []float64   `json:"gas"`
	Ultrasonic  []float64   `json:"ultrasonic"`
	Soil        []float64   `json:"soil"`
	Temperature []float64   `json:"temperature"`
	Humidity    []float64   `json:"humidity"`
	Timestamps  []time.Time `json:"timestamps"`
}

// statsJSON is the wire shape of the statistics block.
type statsJSON struct {
	TotalReadings   int       `json:"total_readings"`
	AlertCount      int       `json:"alert_count"`
	IrrigationCount int       `json:"irrigation_count"`
	StartTime       time.Time `json:"start_time"`
}

// systemInfoJSON records connection context at export time; informational
// only, never applied on import.
type systemInfoJSON struct {
	NoSensorMode     bool `json:"no_sensor_mode"`
	SensorsConnected bool `json:"sensors_connected"`
	PumpConnected    bool `json:"pump_connected"`
	AutoModeActive   bool `json:"auto_mode_active"`
}

// snapshot bundles the complete exportable state. Sections are raw on
// import so a malformed or unknown section is skipped, not fatal.
type snapshot struct {
	Timestamp            time.Time                `json:"timestamp"`
	SensorData           *seriesJSON              `json:"sensor_data,omitempty"`
	SystemStats          *statsJSON               `json:"system_stats,omitempty"`
	PlantParameters      *config.PlantConfig      `json:"plant_parameters,omitempty"`
	GasParameters        *config.GasThresholds    `json:"gas_parameters,omitempty"`
	UltrasonicParameters *config.TankThresholds   `json:"ultrasonic_parameters,omitempty"`
	AlertHistory         []alert.Event            `json:"alert_history,omitempty"`
	AlertStats           *telemetry.Histogram     `json:"alert_stats,omitempty"`
	SystemInfo           *systemInfoJSON          `json:"system_info,omitempty"`
}

// Export serializes the complete core state: telemetry buffers, counters,
// histogram, alert history and all threshold configs.
func (s *System) Export() ([]byte, error) {
	s.mu.RLock()
	cfg := s.cfg
	noSensor := s.noSensorMode
	start := s.startTime
	s.mu.RUnlock()

	series := s.store.Series()
	stats := s.Stats()
	pumpStatus := s.controller.Status()

	snap := snapshot{
		Timestamp: time.Now(),
		SensorData: &seriesJSON{
			Gas:         series.Gas,
			Ultrasonic:  series.Ultrasonic,
			Soil:        series.Soil,
			Temperature: series.Temperature,
			Humidity:    series.Humidity,
			Timestamps:  series.Timestamps,
		},
		SystemStats: &statsJSON{
			TotalReadings:   stats.TotalReadings,
			AlertCount:      stats.AlertCount,
			IrrigationCount: stats.IrrigationCount,
			StartTime:       start,
		},
		PlantParameters:      &cfg.Plant,
		GasParameters:        &cfg.Gas,
		UltrasonicParameters: &cfg.Tank,
		AlertHistory:         s.history.Events(),
		AlertStats: func() *telemetry.Histogram {
			h := s.store.Histogram()
			return &h
		}(),
		SystemInfo: &systemInfoJSON{
			NoSensorMode:     noSensor,
			SensorsConnected: s.sensors.IsConnected(),
			PumpConnected:    s.pumpLink.IsConnected(),
			AutoModeActive:   pumpStatus.Mode.String() == "automatic",
		},
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Import re-hydrates state from an exported snapshot. Sections are applied
// independently: a section that fails its own validation is skipped with a
// log entry, never fatal. Threshold sections must pass the same ordering
// validation as interactive updates.
func (s *System) Import(data []byte) error {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	if raw, ok := sections["sensor_data"]; ok {
		var series seriesJSON
		if err := json.Unmarshal(raw, &series); err != nil {
			log.Printf("import: skipping sensor_data: %v", err)
		} else {
			total := s.store.TotalReadings()
			hist := s.store.Histogram()
			s.store.Restore(telemetry.Series{
				Gas:         series.Gas,
				Ultrasonic:  series.Ultrasonic,
				Soil:        series.Soil,
				Temperature: series.Temperature,
				Humidity:    series.Humidity,
				Timestamps:  series.Timestamps,
			}, total, hist)
		}
	}

	if raw, ok := sections["system_stats"]; ok {
		var stats statsJSON
		if err := json.Unmarshal(raw, &stats); err != nil {
			log.Printf("import: skipping system_stats: %v", err)
		} else {
			hist := s.store.Histogram()
			s.store.Restore(s.store.Series(), stats.TotalReadings, hist)
			s.controller.RestoreCounters(stats.IrrigationCount)
			// StartTime is never imported; uptime is session-local.
		}
	}

	if raw, ok := sections["plant_parameters"]; ok {
		var p config.PlantConfig
		if err := unmarshalValid(raw, &p); err != nil {
			log.Printf("import: skipping plant_parameters: %v", err)
		} else {
			s.mu.Lock()
			s.cfg.Plant = p
			s.mu.Unlock()
		}
	}

	if raw, ok := sections["gas_parameters"]; ok {
		var g config.GasThresholds
		if err := unmarshalValid(raw, &g); err != nil {
			log.Printf("import: skipping gas_parameters: %v", err)
		} else {
			s.mu.Lock()
			s.cfg.Gas = g
			s.mu.Unlock()
		}
	}

	if raw, ok := sections["ultrasonic_parameters"]; ok {
		var t config.TankThresholds
		if err := unmarshalValid(raw, &t); err != nil {
			log.Printf("import: skipping ultrasonic_parameters: %v", err)
		} else {
			s.mu.Lock()
			s.cfg.Tank = t
			s.mu.Unlock()
		}
	}

	if raw, ok := sections["alert_history"]; ok {
		var events []alert.Event
		if err := json.Unmarshal(raw, &events); err != nil {
			log.Printf("import: skipping alert_history: %v", err)
		} else {
			for i := range events {
				events[i].Severity = telemetry.ParseSeverity(events[i].Level)
			}
			count := s.history.Count()
			if raw, ok := sections["system_stats"]; ok {
				var stats statsJSON
				if json.Unmarshal(raw, &stats) == nil {
					count = stats.AlertCount
				}
			}
			s.history.Restore(events, count)
		}
	}

	if raw, ok := sections["alert_stats"]; ok {
		var hist telemetry.Histogram
		if err := json.Unmarshal(raw, &hist); err != nil {
			log.Printf("import: skipping alert_stats: %v", err)
		} else {
			s.store.Restore(s.store.Series(), s.store.TotalReadings(), hist)
		}
	}

	s.notify(Notice{Kind: NoticeSuccess, Message: "Datos importados correctamente"})
	s.publish()
	return nil
}

type validator interface {
	Validate() error
}

// unmarshalValid decodes a section and runs its validation, so an imported
// snapshot cannot smuggle in threshold orderings an interactive update
// would have rejected.
func unmarshalValid(raw json.RawMessage, dst validator) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	return dst.Validate()
}

// StateFile is the default name of the persisted state snapshot next to the
// config file.
const StateFile = "riego_state.json"

// SaveState persists the current snapshot to disk. Called on demand and by
// the periodic auto-save; the emergency stop flag is never persisted.
func (s *System) SaveState(path string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadState re-hydrates from a state file if one exists.
func (s *System) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}
	return s.Import(data)
}

// AutoSave persists the snapshot on the given interval until the system is
// stopped.
func (s *System) AutoSave(path string, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if err := s.SaveState(path); err != nil {
					log.Printf("auto-save failed: %v", err)
				}
			}
		}
	}()
}
