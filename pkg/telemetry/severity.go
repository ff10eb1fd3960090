package telemetry

// Severity classifies a channel's current condition, ordered by escalation.
type Severity int

const (
	Normal Severity = iota
	Warning
	Danger
	Critical
)

// String returns the severity name used in snapshots and logs.
func (s Severity) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// ParseSeverity maps a severity name back to its value. Unknown names map
// to Normal so that imported snapshots from older versions stay loadable.
func ParseSeverity(name string) Severity {
	switch name {
	case "warning":
		return Warning
	case "danger":
		return Danger
	case "critical":
		return Critical
	default:
		return Normal
	}
}
