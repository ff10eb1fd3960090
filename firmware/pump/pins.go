//go:build tinygo

package main

import "machine"

const (
	// Relay pin driving the pump
	PIN_PUMP_RELAY = machine.D2

	// Status LED mirrors the relay state
	PIN_STATUS_LED = machine.D3

	// Periodic status report interval
	STATUS_INTERVAL_MS = 5000

	// Serial configuration
	// Commands are short tokens (ON, OFF, AUTO_MODE_ON, AUTO_MODE_OFF);
	// responses are one confirmation line plus a small JSON status object.
	UART_BAUD_RATE = 9600
)
