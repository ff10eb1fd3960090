package device

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hgarcia-dev/riego/pkg/config"
)

// MockSensors simulates the sensor unit for -mock runs and tests. It emits
// JSON telemetry lines at the configured sample rate. Soil moisture drifts
// down over time and recovers while irrigation is marked active, so the
// automatic mode can be exercised end to end without hardware.
type MockSensors struct {
	cfg config.MockConfig

	mu        sync.RWMutex
	lines     chan string
	ctx       context.Context
	cancel    context.CancelFunc
	state     State
	startTime time.Time

	irrigating bool
	soil       float64
	tank       float64
}

// NewMockSensors creates a mock sensor unit.
func NewMockSensors(cfg config.MockConfig) *MockSensors {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 500 * time.Millisecond
	}
	return &MockSensors{
		cfg:   cfg,
		state: Disconnected,
		soil:  55,
		tank:  20,
	}
}

// Connect starts generating telemetry lines.
func (m *MockSensors) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Connected {
		return ErrAlreadyConnected
	}

	m.lines = make(chan string, DefaultBufferSize)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.state = Connected
	m.startTime = time.Now()

	go m.generate(m.lines, m.ctx)

	return nil
}

// Close stops the mock.
func (m *MockSensors) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Connected {
		m.state = Disconnected
		return nil
	}

	m.cancel()
	m.state = Disconnected
	return nil
}

// Lines returns the telemetry line channel for the current connection.
func (m *MockSensors) Lines() <-chan string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lines
}

// WriteLine is accepted and ignored; the sensor unit takes no commands.
func (m *MockSensors) WriteLine(string) error {
	if !m.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns whether the mock is running.
func (m *MockSensors) IsConnected() bool { return m.State() == Connected }

// State returns the current connection state.
func (m *MockSensors) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetIrrigating marks whether the simulated pump is watering, which drives
// the soil moisture trend.
func (m *MockSensors) SetIrrigating(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irrigating = active
}

func (m *MockSensors) generate(lines chan<- string, ctx context.Context) {
	defer close(lines)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			line := m.nextLine()
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (m *MockSensors) nextLine() string {
	m.mu.Lock()
	if m.irrigating {
		m.soil += m.cfg.SoilWetRate
		m.tank -= 0.1
	} else {
		m.soil -= m.cfg.SoilDryRate
	}
	m.soil = clamp(m.soil, 5, 95)
	m.tank = clamp(m.tank, 1, 28)
	soil, tank := m.soil, m.tank
	elapsed := time.Since(m.startTime).Seconds()
	m.mu.Unlock()

	noise := func() float64 { return (rand.Float64()*2 - 1) * m.cfg.NoiseLevel }

	gas := 20 + 5*math.Sin(elapsed/30) + noise()
	temp := 25 + 3*math.Sin(elapsed/60) + noise()
	humid := 60 + 8*math.Sin(elapsed/45) + noise()

	payload := map[string]float64{
		"gas":         round1(gas),
		"ultrasonic":  round1(tank + noise()),
		"soil":        round1(soil + noise()),
		"temperature": round1(temp),
		"humidity":    round1(humid),
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// MockPump simulates the pump unit: it honors the command protocol and
// answers with the same confirmation phrases and JSON status lines the
// Arduino sketch prints.
type MockPump struct {
	mu    sync.RWMutex
	lines chan string
	state State

	pumpActive bool
	autoMode   bool

	// OnPumpChange is invoked with the new relay state after each accepted
	// ON/OFF command. Used to couple the mock rig together.
	OnPumpChange func(active bool)
}

// NewMockPump creates a mock pump unit.
func NewMockPump() *MockPump {
	return &MockPump{state: Disconnected}
}

// Connect starts the mock.
func (p *MockPump) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Connected {
		return ErrAlreadyConnected
	}

	p.lines = make(chan string, DefaultBufferSize)
	p.state = Connected
	p.pumpActive = false
	return nil
}

// Close stops the mock.
func (p *MockPump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Connected {
		close(p.lines)
	}
	p.state = Disconnected
	return nil
}

// Lines returns the response line channel for the current connection.
func (p *MockPump) Lines() <-chan string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lines
}

// WriteLine accepts a command token and queues the device's response.
func (p *MockPump) WriteLine(line string) error {
	p.mu.Lock()

	if p.state != Connected {
		p.mu.Unlock()
		return ErrNotConnected
	}

	var responses []string
	var notify func(bool)
	switch strings.TrimSpace(line) {
	case "ON":
		p.pumpActive = true
		responses = []string{"BOMBA ENCENDIDA", p.statusJSON()}
		notify = p.OnPumpChange
	case "OFF":
		p.pumpActive = false
		responses = []string{"BOMBA APAGADA", p.statusJSON()}
		notify = p.OnPumpChange
	case "AUTO_MODE_ON":
		p.autoMode = true
		responses = []string{"MODO AUTO ACTIVADO"}
	case "AUTO_MODE_OFF":
		p.autoMode = false
		responses = []string{"MODO AUTO DESACTIVADO"}
	default:
		responses = []string{fmt.Sprintf("COMANDO DESCONOCIDO: %s", strings.TrimSpace(line))}
	}

	active := p.pumpActive
	lines := p.lines
	p.mu.Unlock()

	for _, r := range responses {
		select {
		case lines <- r:
		default:
			// Response buffer full; the real device would also just drop.
		}
	}
	if notify != nil {
		notify(active)
	}
	return nil
}

// IsConnected returns whether the mock is running.
func (p *MockPump) IsConnected() bool { return p.State() == Connected }

// State returns the current connection state.
func (p *MockPump) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// PumpActive returns the simulated relay state.
func (p *MockPump) PumpActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pumpActive
}

// InjectLine pushes an unsolicited device line, as when the relay is
// toggled by the physical button on the unit.
func (p *MockPump) InjectLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Connected {
		return
	}
	select {
	case p.lines <- line:
	default:
	}
}

func (p *MockPump) statusJSON() string {
	return fmt.Sprintf(`{"pump_active":%t,"auto_mode":%t}`, p.pumpActive, p.autoMode)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
