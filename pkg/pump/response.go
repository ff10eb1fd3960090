package pump

import (
	"encoding/json"
	"strings"
)

// Command tokens understood by the pump unit.
const (
	CmdOn          = "ON"
	CmdOff         = "OFF"
	CmdAutoModeOn  = "AUTO_MODE_ON"
	CmdAutoModeOff = "AUTO_MODE_OFF"
)

// Confirmation phrases printed by the pump unit firmware.
const (
	PhrasePumpOn  = "BOMBA ENCENDIDA"
	PhrasePumpOff = "BOMBA APAGADA"
)

// ResponseKind tags a parsed device line.
type ResponseKind int

const (
	// Recognized is a relay state report, either a confirmation phrase or
	// a JSON status line.
	Recognized ResponseKind = iota
	// PlainText is any other readable line; logged only.
	PlainText
	// Malformed is a line that looked like a JSON status but wasn't.
	Malformed
)

// Response is the tagged result of parsing one pump unit line.
type Response struct {
	Kind       ResponseKind
	PumpActive bool // valid only when Kind == Recognized
	Text       string
}

type statusLine struct {
	PumpActive *bool `json:"pump_active"`
}

// ParseResponse classifies one line from the pump unit.
func ParseResponse(line string) Response {
	trimmed := strings.TrimSpace(line)

	if strings.Contains(trimmed, PhrasePumpOn) {
		return Response{Kind: Recognized, PumpActive: true, Text: trimmed}
	}
	if strings.Contains(trimmed, PhrasePumpOff) {
		return Response{Kind: Recognized, PumpActive: false, Text: trimmed}
	}

	if strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, "pump_active") {
		var status statusLine
		if err := json.Unmarshal([]byte(trimmed), &status); err != nil || status.PumpActive == nil {
			return Response{Kind: Malformed, Text: trimmed}
		}
		return Response{Kind: Recognized, PumpActive: *status.PumpActive, Text: trimmed}
	}

	return Response{Kind: PlainText, Text: trimmed}
}
