//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	uart = machine.UART0

	pumpActive bool
	autoMode   bool

	// Serial buffer for reading command lines
	serialBuffer [16]byte
	serialPos    int
	overflow     bool

	lastStatus time.Time
)

func main() {
	PIN_PUMP_RELAY.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_STATUS_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_PUMP_RELAY.Low()
	PIN_STATUS_LED.Low()

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastStatus = time.Now()

	for {
		processSerial()

		if time.Since(lastStatus) >= time.Duration(STATUS_INTERVAL_MS)*time.Millisecond {
			printStatus()
			lastStatus = time.Now()
		}

		time.Sleep(time.Millisecond)
	}
}

func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos > 0 && !overflow {
				handleCommand(string(serialBuffer[:serialPos]))
			}
			serialPos = 0
			overflow = false
			continue
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			// Too long to be a valid command, discard until newline
			overflow = true
		}
	}
}

func handleCommand(cmd string) {
	switch cmd {
	case "ON":
		setPump(true)
		print("BOMBA ENCENDIDA\n")
	case "OFF":
		setPump(false)
		print("BOMBA APAGADA\n")
	case "AUTO_MODE_ON":
		autoMode = true
		print("MODO AUTO ACTIVADO\n")
	case "AUTO_MODE_OFF":
		autoMode = false
		print("MODO AUTO DESACTIVADO\n")
	default:
		print("COMANDO DESCONOCIDO: ")
		print(cmd)
		print("\n")
		return
	}
	printStatus()
	lastStatus = time.Now()
}

func setPump(active bool) {
	pumpActive = active
	if active {
		PIN_PUMP_RELAY.High()
		PIN_STATUS_LED.High()
	} else {
		PIN_PUMP_RELAY.Low()
		PIN_STATUS_LED.Low()
	}
}

func printStatus() {
	// {"pump_active":true,"auto_mode":false}
	print("{\"pump_active\":")
	printBool(pumpActive)
	print(",\"auto_mode\":")
	printBool(autoMode)
	print("}\n")
}

func printBool(b bool) {
	if b {
		print("true")
	} else {
		print("false")
	}
}
