//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcGas   machine.ADC
	adcSoil  machine.ADC
	adcTemp  machine.ADC
	adcHumid machine.ADC
	uart     = machine.UART0

	// ADC averaging - running sums and counts
	gasSum      uint32
	soilSum     uint32
	tempSum     uint32
	humidSum    uint32
	sampleCount int

	// Timing
	lastADCRead time.Time
	lastReport  time.Time
)

func main() {
	PIN_GAS_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_SOIL_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_TEMP_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HUMID_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	PIN_ULTRA_TRIG.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_ULTRA_ECHO.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_ULTRA_TRIG.Low()

	adcGas = machine.ADC{Pin: PIN_GAS_ADC}
	adcSoil = machine.ADC{Pin: PIN_SOIL_ADC}
	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}
	adcHumid = machine.ADC{Pin: PIN_HUMID_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcGas.Configure(adcConfig)
	adcSoil.Configure(adcConfig)
	adcTemp.Configure(adcConfig)
	adcHumid.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastADCRead = time.Now()
	lastReport = time.Now()

	for {
		now := time.Now()

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readAnalogSensors()
			lastADCRead = now
		}

		if now.Sub(lastReport) >= time.Duration(REPORT_INTERVAL_MS)*time.Millisecond {
			outputReading()
			gasSum = 0
			soilSum = 0
			tempSum = 0
			humidSum = 0
			sampleCount = 0
			lastReport = now
		}

		time.Sleep(500 * time.Microsecond)
	}
}

func readAnalogSensors() {
	if sampleCount >= NUM_SAMPLES {
		return
	}
	gasSum += uint32(adcGas.Get())
	soilSum += uint32(adcSoil.Get())
	tempSum += uint32(adcTemp.Get())
	humidSum += uint32(adcHumid.Get())
	sampleCount++
}

// measureDistanceCM triggers the HC-SR04 and times the echo pulse.
// Returns 0 when no echo arrives within the timeout.
func measureDistanceCM() uint32 {
	PIN_ULTRA_TRIG.High()
	time.Sleep(10 * time.Microsecond)
	PIN_ULTRA_TRIG.Low()

	deadline := time.Now().Add(ULTRA_ECHO_TIMEOUT_US * time.Microsecond)
	for !PIN_ULTRA_ECHO.Get() {
		if time.Now().After(deadline) {
			return 0
		}
	}
	start := time.Now()
	for PIN_ULTRA_ECHO.Get() {
		if time.Now().After(deadline) {
			return 0
		}
	}
	elapsedUS := uint32(time.Since(start).Microseconds())

	// Sound travels ~343 m/s; distance = elapsed / 58 gives cm one-way.
	return elapsedUS / 58
}

func outputReading() {
	n := sampleCount
	if n == 0 {
		n = 1
	}

	// Gas: raw ADC mapped to a 0-1023 style scale the monitor thresholds use
	gas := (gasSum / uint32(n)) * 1023 / ADC_MAX

	// Soil moisture: probe reads high when dry, invert to percent wet
	soilRaw := soilSum / uint32(n)
	soil := (uint32(ADC_MAX) - soilRaw) * 100 / ADC_MAX

	// LM35: 10mV per degree C
	tempMV := (tempSum / uint32(n)) * ADC_REFERENCE_MV / ADC_MAX
	temp := tempMV / 10

	// Analog humidity module: linear 0-100%
	humid := (humidSum / uint32(n)) * 100 / ADC_MAX

	distance := measureDistanceCM()

	// One JSON object per line, e.g.
	// {"gas":120,"ultrasonic":12,"soil":45,"temperature":24,"humidity":61}
	print("{\"gas\":")
	print(gas)
	print(",\"ultrasonic\":")
	print(distance)
	print(",\"soil\":")
	print(soil)
	print(",\"temperature\":")
	print(temp)
	print(",\"humidity\":")
	print(humid)
	print("}\n")
}
