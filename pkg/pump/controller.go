package pump

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hgarcia-dev/riego/pkg/device"
)

// Mode selects who decides when to irrigate.
type Mode int

const (
	Manual Mode = iota
	Automatic
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Automatic {
		return "automatic"
	}
	return "manual"
}

// Action reports what an automatic evaluation decided.
type Action int

const (
	ActionNone Action = iota
	ActionTurnedOn
	ActionTurnedOff
)

var (
	// ErrAlreadyOn is returned when the pump is already running.
	ErrAlreadyOn = errors.New("pump already on")
	// ErrAlreadyOff is returned when the pump is already stopped.
	ErrAlreadyOff = errors.New("pump already off")
	// ErrEmergencyStop is returned while the emergency stop is active.
	ErrEmergencyStop = errors.New("emergency stop active")
)

// Status is a snapshot of the controller state.
type Status struct {
	Commanded       bool
	DeviceConfirmed bool
	Mode            Mode
	EmergencyStop   bool
	IrrigationCount int
}

// Controller governs the pump relay through the pump device link. It tracks
// its own intent (commanded) separately from the state the device last
// reported, and lets device reports win on disagreement.
type Controller struct {
	link   device.Conn
	settle time.Duration

	// cmdMu serializes whole command sequences (check, write, settle,
	// commit) so an emergency stop cannot interleave with a half-issued
	// ON. Always taken before mu, never while holding it.
	cmdMu sync.Mutex

	mu              sync.Mutex
	commanded       bool
	confirmed       bool
	mode            Mode
	emergency       bool
	irrigationCount int
}

// NewController creates a controller driving the given pump link. settle is
// how long to wait after a command before trusting the new state.
func NewController(link device.Conn, settle time.Duration) *Controller {
	return &Controller{
		link:   link,
		settle: settle,
		mode:   Manual,
	}
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Commanded:       c.commanded,
		DeviceConfirmed: c.confirmed,
		Mode:            c.mode,
		EmergencyStop:   c.emergency,
		IrrigationCount: c.irrigationCount,
	}
}

// TurnOn starts the pump. No-op (with error) if already on, not connected,
// or the emergency stop is active. Commanded state changes only after the
// command was written and the settle period passed.
func (c *Controller) TurnOn() error {
	if !c.link.IsConnected() {
		return device.ErrNotConnected
	}

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.emergency {
		c.mu.Unlock()
		return ErrEmergencyStop
	}
	if c.commanded {
		c.mu.Unlock()
		return ErrAlreadyOn
	}
	c.mu.Unlock()

	if err := c.link.WriteLine(CmdOn); err != nil {
		return fmt.Errorf("pump on: %w", err)
	}
	time.Sleep(c.settle)

	c.mu.Lock()
	c.commanded = true
	c.irrigationCount++
	c.mu.Unlock()
	return nil
}

// TurnOff stops the pump. No-op (with error) if already off or not
// connected. Allowed during emergency stop.
func (c *Controller) TurnOff() error {
	if !c.link.IsConnected() {
		return device.ErrNotConnected
	}

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if !c.commanded {
		c.mu.Unlock()
		return ErrAlreadyOff
	}
	c.mu.Unlock()

	if err := c.link.WriteLine(CmdOff); err != nil {
		return fmt.Errorf("pump off: %w", err)
	}
	time.Sleep(c.settle)

	c.mu.Lock()
	c.commanded = false
	c.mu.Unlock()
	return nil
}

// Toggle inverts the current commanded state.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	target := !c.commanded
	c.mu.Unlock()

	if target {
		return c.TurnOn()
	}
	return c.TurnOff()
}

// SetAutomatic switches between manual and automatic mode, informing the
// pump unit. Automatic mode cannot be enabled during an emergency stop.
func (c *Controller) SetAutomatic(enabled bool) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if enabled && c.emergency {
		c.mu.Unlock()
		return ErrEmergencyStop
	}
	c.mu.Unlock()

	cmd := CmdAutoModeOff
	if enabled {
		cmd = CmdAutoModeOn
	}
	if c.link.IsConnected() {
		if err := c.link.WriteLine(cmd); err != nil {
			return fmt.Errorf("set mode: %w", err)
		}
	}

	c.mu.Lock()
	if enabled {
		c.mode = Automatic
	} else {
		c.mode = Manual
	}
	c.mu.Unlock()
	return nil
}

// EvaluateAutomatic applies the two-threshold bang-bang rule to a stable
// soil reading: below soilMin turn on, above soilMax turn off. Runs only in
// automatic mode with the emergency stop clear. There is no hysteresis
// margin beyond the band itself; a value hugging a boundary can chatter.
func (c *Controller) EvaluateAutomatic(soil, soilMin, soilMax float64) (Action, error) {
	c.mu.Lock()
	if c.mode != Automatic || c.emergency {
		c.mu.Unlock()
		return ActionNone, nil
	}
	commanded := c.commanded
	c.mu.Unlock()

	switch {
	case soil < soilMin && !commanded:
		if err := c.TurnOn(); err != nil {
			return ActionNone, err
		}
		return ActionTurnedOn, nil
	case soil > soilMax && commanded:
		if err := c.TurnOff(); err != nil {
			return ActionNone, err
		}
		return ActionTurnedOff, nil
	default:
		return ActionNone, nil
	}
}

// Reconcile records a relay state reported by the device. If it disagrees
// with the commanded state, the device's report wins; no corrective command
// is sent. Returns true when the commanded state was corrected.
func (c *Controller) Reconcile(deviceActive bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.confirmed = deviceActive
	if c.commanded != deviceActive {
		c.commanded = deviceActive
		return true
	}
	return false
}

// EmergencyStop toggles the emergency stop. Activation forces an immediate
// OFF (when connected) and drops to manual mode; deactivation stays in
// manual — automatic mode must be re-enabled explicitly.
func (c *Controller) EmergencyStop() (active bool, err error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	c.emergency = !c.emergency
	active = c.emergency
	c.mu.Unlock()

	if !active {
		return false, nil
	}

	if c.link.IsConnected() {
		if werr := c.link.WriteLine(CmdOff); werr != nil {
			err = fmt.Errorf("emergency off: %w", werr)
		} else {
			time.Sleep(c.settle / 2)
		}
	}

	c.mu.Lock()
	c.commanded = false
	c.mode = Manual
	c.mu.Unlock()
	return true, err
}

// OnConnected must be called right after the pump link connects. The device
// state is unknown at that point, so the pump is unconditionally forced OFF
// before any further command is accepted.
func (c *Controller) OnConnected() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if err := c.link.WriteLine(CmdOff); err != nil {
		return fmt.Errorf("initial off: %w", err)
	}
	time.Sleep(c.settle)

	c.mu.Lock()
	c.commanded = false
	c.confirmed = false
	c.mu.Unlock()
	return nil
}

// RestoreCounters reloads persisted statistics after an import.
func (c *Controller) RestoreCounters(irrigationCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.irrigationCount = irrigationCount
}
