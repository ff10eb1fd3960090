package telemetry

import (
	"math"

	"github.com/hgarcia-dev/riego/pkg/config"
)

// Temperature and humidity deviation bands (distance from the configured
// optimum). Inside the inner band the value is optimal, inside the outer
// band it is acceptable, beyond the extreme band it is dangerous.
const (
	tempInnerBand   = 3
	tempOuterBand   = 7
	tempExtremeBand = 15

	humidInnerBand   = 10
	humidOuterBand   = 20
	humidExtremeBand = 30
)

// Evaluation is the result of classifying one channel value.
type Evaluation struct {
	Level         Severity
	Message       string
	Icon          string
	AlertEligible bool
}

// Classify maps a channel value to its evaluation. It is total: every value
// maps to exactly one severity level.
func Classify(c Channel, value float64, cfg *config.Config) Evaluation {
	switch c {
	case ChannelGas:
		return EvaluateGas(value, cfg.Gas)
	case ChannelUltrasonic:
		return EvaluateTank(value, cfg.Tank)
	case ChannelSoil:
		return EvaluateSoil(value, cfg.Plant)
	case ChannelTemperature:
		return EvaluateTemperature(value, cfg.Plant)
	case ChannelHumidity:
		return EvaluateHumidity(value, cfg.Plant)
	}
	return Evaluation{Level: Normal, Message: "Canal desconocido", Icon: "❌"}
}

// EvaluateGas classifies an air quality reading against the gas bands.
func EvaluateGas(value float64, t config.GasThresholds) Evaluation {
	switch {
	case value <= t.Good:
		return Evaluation{Level: Normal, Message: "Aire limpio", Icon: "🟢"}
	case value <= t.Regular:
		return Evaluation{Level: Warning, Message: "Calidad regular", Icon: "🟡"}
	case value <= t.Bad:
		return Evaluation{Level: Danger, Message: "Aire contaminado", Icon: "🟠", AlertEligible: true}
	default:
		return Evaluation{Level: Critical, Message: "¡PELIGROSO!", Icon: "🔴", AlertEligible: true}
	}
}

// EvaluateTank classifies an ultrasonic tank level reading. A value of zero
// or below is the no-data sentinel from a disconnected sensor and must not
// be confused with an empty tank.
func EvaluateTank(value float64, t config.TankThresholds) Evaluation {
	switch {
	case value <= 0:
		return Evaluation{Level: Normal, Message: "Sin datos del sensor", Icon: "❌"}
	case value <= t.Min:
		return Evaluation{Level: Danger, Message: "Nivel mínimo - Vacío", Icon: "🔴", AlertEligible: true}
	case value <= t.Regular:
		return Evaluation{Level: Warning, Message: "Nivel regular", Icon: "🟡"}
	case value <= t.Max:
		return Evaluation{Level: Normal, Message: "Nivel máximo - Lleno", Icon: "🟢"}
	default:
		return Evaluation{Level: Critical, Message: "¡DESBORDE!", Icon: "⚠️", AlertEligible: true}
	}
}

// EvaluateSoil classifies a soil moisture reading against the plant band.
// Below 70% of the minimum the soil is critically dry.
func EvaluateSoil(value float64, p config.PlantConfig) Evaluation {
	if value == 0 {
		return Evaluation{Level: Normal, Message: "Sin datos del sensor", Icon: "❌"}
	}

	switch {
	case value >= p.SoilMin && value <= p.SoilMax:
		return Evaluation{Level: Normal, Message: "Humedad óptima", Icon: "🟢"}
	case value < p.SoilMin:
		criticalLevel := p.SoilMin * 0.7
		if value < criticalLevel {
			return Evaluation{Level: Danger, Message: "Suelo muy seco - ¡RIEGO URGENTE!", Icon: "🔴", AlertEligible: true}
		}
		return Evaluation{Level: Warning, Message: "Suelo seco - Necesita riego", Icon: "🟡", AlertEligible: true}
	default:
		return Evaluation{Level: Warning, Message: "Suelo muy húmedo - Reducir riego", Icon: "🟡", AlertEligible: true}
	}
}

// EvaluateTemperature classifies an air temperature reading by its distance
// from the plant optimum. Only extreme deviations are alert-eligible.
func EvaluateTemperature(value float64, p config.PlantConfig) Evaluation {
	if value == 0 {
		return Evaluation{Level: Normal, Message: "Sin datos", Icon: "❌"}
	}

	diff := math.Abs(value - p.TempOptimal)
	switch {
	case diff < tempInnerBand:
		return Evaluation{Level: Normal, Message: "Temperatura óptima", Icon: "🟢"}
	case diff < tempOuterBand:
		return Evaluation{Level: Warning, Message: "Temperatura moderada", Icon: "🟡"}
	case diff > tempExtremeBand:
		return Evaluation{Level: Danger, Message: "Temperatura extrema - ¡REVISAR!", Icon: "🔴", AlertEligible: true}
	default:
		return Evaluation{Level: Warning, Message: "Temperatura no ideal", Icon: "🟡"}
	}
}

// EvaluateHumidity classifies an air humidity reading by its distance from
// the plant optimum. Only extreme deviations are alert-eligible.
func EvaluateHumidity(value float64, p config.PlantConfig) Evaluation {
	if value == 0 {
		return Evaluation{Level: Normal, Message: "Sin datos", Icon: "❌"}
	}

	diff := math.Abs(value - p.HumidOptimal)
	switch {
	case diff < humidInnerBand:
		return Evaluation{Level: Normal, Message: "Humedad ideal", Icon: "🟢"}
	case diff < humidOuterBand:
		return Evaluation{Level: Warning, Message: "Humedad aceptable", Icon: "🟡"}
	case diff > humidExtremeBand:
		return Evaluation{Level: Danger, Message: "Humedad extrema - ¡REVISAR!", Icon: "🔴", AlertEligible: true}
	default:
		return Evaluation{Level: Warning, Message: "Humedad no ideal", Icon: "🟡"}
	}
}
