//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 50 // ADC read interval in milliseconds
	NUM_SAMPLES        = 40 // Number of samples to average per report
	REPORT_INTERVAL_MS = 2000

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_MAX          = 4095

	// Analog sensor pins
	PIN_GAS_ADC   = machine.A0 // MQ-135 analog output
	PIN_SOIL_ADC  = machine.A1 // capacitive soil moisture probe
	PIN_TEMP_ADC  = machine.A2 // LM35 analog temperature
	PIN_HUMID_ADC = machine.A3 // analog air humidity module

	// HC-SR04 ultrasonic pins
	PIN_ULTRA_TRIG = machine.D7
	PIN_ULTRA_ECHO = machine.D8

	// Echo timeout: ~4m round trip at 343 m/s is ~23ms
	ULTRA_ECHO_TIMEOUT_US = 25000

	// Serial configuration
	// One JSON line per report, roughly 80 bytes:
	// {"gas":123.4,"ultrasonic":12.3,"soil":45.6,"temperature":24.1,"humidity":61.2}
	// One report every 2s keeps 9600 baud comfortable.
	UART_BAUD_RATE = 9600
)
