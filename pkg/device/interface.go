package device

// Conn defines the interface for a serial-connected unit (real or mocked).
type Conn interface {
	Connect() error
	Close() error
	Lines() <-chan string
	WriteLine(line string) error
	IsConnected() bool
	State() State
}

// Ensure Link implements Conn.
var _ Conn = (*Link)(nil)

// Ensure the mocks implement Conn.
var _ Conn = (*MockSensors)(nil)
var _ Conn = (*MockPump)(nil)
