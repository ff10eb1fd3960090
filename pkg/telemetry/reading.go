package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Channel identifies one sensor type of the rig.
type Channel string

const (
	ChannelGas         Channel = "gas"
	ChannelUltrasonic  Channel = "ultrasonic"
	ChannelSoil        Channel = "soil"
	ChannelTemperature Channel = "temperature"
	ChannelHumidity    Channel = "humidity"
)

// Channels lists all channels in display order.
func Channels() []Channel {
	return []Channel{ChannelGas, ChannelUltrasonic, ChannelSoil, ChannelTemperature, ChannelHumidity}
}

// DisplayName returns the human-readable channel name used in alerts.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelGas:
		return "Gas"
	case ChannelUltrasonic:
		return "Nivel de Tanque"
	case ChannelSoil:
		return "Humedad del Suelo"
	case ChannelTemperature:
		return "Temperatura"
	case ChannelHumidity:
		return "Humedad del Aire"
	}
	return string(c)
}

// Reading is one parsed telemetry line from the sensor unit.
// Immutable once constructed.
type Reading struct {
	Gas         float64
	Ultrasonic  float64
	Soil        float64
	Temperature float64
	Humidity    float64
	CapturedAt  time.Time
}

// Value returns the reading's value for the given channel.
func (r Reading) Value(c Channel) float64 {
	switch c {
	case ChannelGas:
		return r.Gas
	case ChannelUltrasonic:
		return r.Ultrasonic
	case ChannelSoil:
		return r.Soil
	case ChannelTemperature:
		return r.Temperature
	case ChannelHumidity:
		return r.Humidity
	}
	return 0
}

// ParseLine parses one line of sensor unit output into a Reading.
// A valid line is a JSON object; missing or non-numeric fields default to 0
// so a partially populated firmware payload still yields a usable reading.
func ParseLine(line string, now time.Time) (Reading, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return Reading{}, fmt.Errorf("not a JSON object: %q", trimmed)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return Reading{}, fmt.Errorf("malformed telemetry line: %w", err)
	}

	return Reading{
		Gas:         numericField(fields, "gas"),
		Ultrasonic:  numericField(fields, "ultrasonic"),
		Soil:        numericField(fields, "soil"),
		Temperature: numericField(fields, "temperature"),
		Humidity:    numericField(fields, "humidity"),
		CapturedAt:  now,
	}, nil
}

// numericField coerces a JSON field to float64, tolerating numeric strings.
func numericField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
