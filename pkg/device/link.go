package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the rig's Arduino sketches.
	DefaultBaudRate = 9600
	// DefaultOpenTimeout bounds how long a Connect may take.
	DefaultOpenTimeout = 10 * time.Second
	// DefaultBufferSize is the lines channel buffer.
	DefaultBufferSize = 64
)

// State is the connection lifecycle state of a link.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Errored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Errored:
		return "error"
	}
	return "unknown"
}

var (
	// ErrAlreadyConnected is returned by Connect on a connected link.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrNotConnected is returned by WriteLine on a disconnected link.
	ErrNotConnected = errors.New("not connected")
	// ErrOpenTimeout is returned when the port does not open in time.
	ErrOpenTimeout = errors.New("timeout opening port")
)

// Link wraps one serial byte-stream with connection lifecycle, newline
// framing and a write path. The rig uses two instances: sensors and pump.
type Link struct {
	name        string
	port        string
	baudRate    int
	openTimeout time.Duration
	bufSize     int

	// open is serial.Open, swappable in tests.
	open func(port string, mode *serial.Mode) (serial.Port, error)

	mu     sync.RWMutex
	conn   serial.Port
	lines  chan string
	ctx    context.Context
	cancel context.CancelFunc
	state  State
}

// NewLink creates a link for the given port. name is used in logs only.
func NewLink(name, port string, baudRate int, openTimeout time.Duration) *Link {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if openTimeout == 0 {
		openTimeout = DefaultOpenTimeout
	}

	return &Link{
		name:        name,
		port:        port,
		baudRate:    baudRate,
		openTimeout: openTimeout,
		bufSize:     DefaultBufferSize,
		open:        serial.Open,
		state:       Disconnected,
	}
}

// Ports returns the names of the available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port and starts the read loop. The open is
// bounded by the configured timeout; on timeout the link is left in the
// error state and a fresh Connect is required.
func (l *Link) Connect() error {
	l.mu.Lock()
	if l.state == Connected || l.state == Connecting {
		l.mu.Unlock()
		return ErrAlreadyConnected
	}
	l.state = Connecting
	l.mu.Unlock()

	type openResult struct {
		port serial.Port
		err  error
	}
	result := make(chan openResult, 1)
	go func() {
		port, err := l.open(l.port, &serial.Mode{BaudRate: l.baudRate})
		result <- openResult{port: port, err: err}
	}()

	var port serial.Port
	select {
	case r := <-result:
		if r.err != nil {
			l.failConnecting()
			return fmt.Errorf("failed to open serial port %s: %w", l.port, r.err)
		}
		port = r.port
	case <-time.After(l.openTimeout):
		// The open may still complete later; release the port if it does.
		go func() {
			if r := <-result; r.err == nil {
				r.port.Close()
			}
		}()
		l.failConnecting()
		return fmt.Errorf("serial port %s: %w", l.port, ErrOpenTimeout)
	}

	l.mu.Lock()
	// Close may have raced the open. Commit only if the connect is still
	// wanted; otherwise the freshly opened port must be released.
	if l.state != Connecting {
		l.mu.Unlock()
		port.Close()
		return fmt.Errorf("serial port %s: connect aborted: %w", l.port, ErrNotConnected)
	}
	l.conn = port
	l.lines = make(chan string, l.bufSize)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.state = Connected
	lines, ctx := l.lines, l.ctx
	l.mu.Unlock()

	go l.readLines(port, lines, ctx)

	return nil
}

// failConnecting marks a failed connect attempt, unless Close already moved
// the link to Disconnected in the meantime.
func (l *Link) failConnecting() {
	l.mu.Lock()
	if l.state == Connecting {
		l.state = Errored
	}
	l.mu.Unlock()
}

// Close cancels any in-flight read, releases the port and transitions to
// Disconnected. Safe to call when already disconnected.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Connected && l.state != Errored {
		l.state = Disconnected
		return nil
	}

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Printf("%s: error closing serial port: %v", l.name, err)
		}
		l.conn = nil
	}
	l.state = Disconnected

	return nil
}

// Lines returns the channel of framed text lines for the current
// connection. The channel is closed when the stream ends or the link
// disconnects; a new connection yields a new channel.
func (l *Link) Lines() <-chan string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lines
}

// WriteLine sends one newline-terminated command to the device. On failure
// the caller's state must remain unchanged; the link stays connected.
func (l *Link) WriteLine(line string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.state != Connected || l.conn == nil {
		return ErrNotConnected
	}

	if _, err := l.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("%s: failed to write command: %w", l.name, err)
	}
	return nil
}

// IsConnected returns whether the link is currently connected.
func (l *Link) IsConnected() bool {
	return l.State() == Connected
}

// State returns the current connection state.
func (l *Link) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Link) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// readLines frames the byte stream on newlines and delivers complete lines
// in arrival order. The scanner buffers a trailing partial line until its
// terminator arrives. A read aborted by Close is normal termination, not an
// error, so user-initiated disconnects do not spam the log.
func (l *Link) readLines(port serial.Port, lines chan<- string, ctx context.Context) {
	defer close(lines)

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("%s: read loop ended: %v", l.name, err)
		l.setState(Errored)
		return
	}

	// Stream closed underneath us (device unplugged or explicit Close).
	if ctx.Err() == nil {
		l.mu.Lock()
		if l.state == Connected {
			l.state = Disconnected
		}
		l.mu.Unlock()
	}
}
