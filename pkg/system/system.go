package system

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hgarcia-dev/riego/pkg/alert"
	"github.com/hgarcia-dev/riego/pkg/config"
	"github.com/hgarcia-dev/riego/pkg/device"
	"github.com/hgarcia-dev/riego/pkg/pump"
	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeDanger  NoticeKind = "danger"
)

// Notice is a short one-line message for the presentation layer.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Update is the snapshot handed to OnUpdate subscribers. The presentation
// layer derives everything it shows from this; it never reaches into the
// orchestrator's state.
type Update struct {
	Stable      telemetry.StableState
	Evaluations map[telemetry.Channel]telemetry.Evaluation
	Series      telemetry.Series
	Histogram   telemetry.Histogram
	Stats       Stats
	Pump        pump.Status
	Sensors     device.State
	PumpLink    device.State
	NoSensor    bool
}

// Stats is the aggregate statistics block.
type Stats struct {
	TotalReadings    int
	AlertCount       int
	IrrigationCount  int
	Uptime           time.Duration
	LastDataReceived time.Time
}

// source tags which link an event came from.
type source int

const (
	srcSensors source = iota
	srcPump
)

// event is one unit of work for the processing loop.
type event struct {
	src    source
	line   string
	closed bool // link's line channel closed
}

// System wires the device links, stability filter, evaluator, alert gate,
// telemetry store and irrigation controller together. All shared state is
// mutated only from the single processing goroutine (or under the
// components' own locks for UI-triggered commands).
type System struct {
	mu  sync.RWMutex
	cfg *config.Config

	sensors    device.Conn
	pumpLink   device.Conn
	filter     *telemetry.StabilityFilter
	store      *telemetry.Store
	gate       *alert.Gate
	history    *alert.History
	controller *pump.Controller
	notifier   alert.Notifier

	noSensorMode     bool
	lastDataReceived time.Time
	startTime        time.Time

	events chan event
	done   chan struct{}

	cbMu     sync.RWMutex
	onUpdate []func(Update)
	onNotice []func(Notice)
}

// New creates a system around the two device links.
func New(cfg *config.Config, sensors, pumpLink device.Conn, notifier alert.Notifier) *System {
	if notifier == nil {
		notifier = &alert.LogNotifier{}
	}
	return &System{
		cfg:          cfg,
		sensors:      sensors,
		pumpLink:     pumpLink,
		filter:       telemetry.NewStabilityFilter(cfg.Stability),
		store:        telemetry.NewStore(telemetry.DefaultHistoryCap),
		gate:         alert.NewGate(cfg.Alerts.Cooldown),
		history:      alert.NewHistory(cfg.Alerts.HistoryCap),
		controller:   pump.NewController(pumpLink, cfg.Pump.SettleDelay),
		notifier:     notifier,
		noSensorMode: true,
		startTime:    time.Now(),
		events:       make(chan event, device.DefaultBufferSize),
		done:         make(chan struct{}),
	}
}

// Controller exposes the irrigation controller for the pump panel.
func (s *System) Controller() *pump.Controller { return s.controller }

// Store exposes the telemetry store for the chart widget.
func (s *System) Store() *telemetry.Store { return s.store }

// History exposes the alert history.
func (s *System) History() *alert.History { return s.history }

// Config returns the active configuration.
func (s *System) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// OnUpdate registers a callback invoked after every processed event.
// Callbacks must copy quickly and return fast.
func (s *System) OnUpdate(cb func(Update)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onUpdate = append(s.onUpdate, cb)
}

// OnNotice registers a callback for user-visible notices.
func (s *System) OnNotice(cb func(Notice)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onNotice = append(s.onNotice, cb)
}

// Start launches the processing loop.
func (s *System) Start() {
	go s.run()
}

// Stop shuts the system down: both links closed, loop stopped.
func (s *System) Stop() {
	if s.sensors.IsConnected() {
		s.sensors.Close()
	}
	if s.pumpLink.IsConnected() {
		s.pumpLink.Close()
	}
	close(s.done)
}

func (s *System) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.process(ev)
		}
	}
}

func (s *System) process(ev event) {
	switch {
	case ev.closed && ev.src == srcSensors:
		s.mu.Lock()
		s.noSensorMode = true
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeWarning, Message: "Sensores desconectados"})
		s.publish()
	case ev.closed && ev.src == srcPump:
		s.notify(Notice{Kind: NoticeWarning, Message: "Arduino de bomba desconectado"})
		s.publish()
	case ev.src == srcSensors:
		s.processSensorLine(ev.line)
	case ev.src == srcPump:
		s.processPumpLine(ev.line)
	}
}

// ConnectSensors opens the sensor link and starts forwarding its lines into
// the processing loop.
func (s *System) ConnectSensors() error {
	if err := s.sensors.Connect(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error conectando sensores: %v", err)})
		return err
	}

	s.mu.Lock()
	s.noSensorMode = false
	s.mu.Unlock()

	go s.forward(srcSensors, s.sensors.Lines())

	s.notify(Notice{Kind: NoticeSuccess, Message: "Sensores conectados"})
	s.publish()
	return nil
}

// ConnectPump opens the pump link, forces the relay OFF (its state is
// unknown at connect time) and starts forwarding device reports.
func (s *System) ConnectPump() error {
	if err := s.pumpLink.Connect(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error conectando bomba: %v", err)})
		return err
	}

	go s.forward(srcPump, s.pumpLink.Lines())

	if err := s.controller.OnConnected(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error forzando bomba OFF: %v", err)})
		return err
	}

	s.notify(Notice{Kind: NoticeSuccess, Message: "Bomba conectada y forzada a OFF"})
	s.publish()
	return nil
}

// DisconnectSensors closes the sensor link.
func (s *System) DisconnectSensors() {
	s.sensors.Close()
}

// DisconnectPump closes the pump link.
func (s *System) DisconnectPump() {
	s.pumpLink.Close()
}

// forward moves lines from one link into the single processing loop,
// preserving per-link arrival order. It exits when the link's channel
// closes, which happens on disconnect or stream failure.
func (s *System) forward(src source, lines <-chan string) {
	if lines == nil {
		return
	}
	for line := range lines {
		select {
		case s.events <- event{src: src, line: line}:
		case <-s.done:
			return
		}
	}
	select {
	case s.events <- event{src: src, closed: true}:
	case <-s.done:
	}
}

// processSensorLine handles one raw line from the sensor unit: parse,
// debounce, store, classify, alert, and drive automatic irrigation.
func (s *System) processSensorLine(line string) {
	now := time.Now()

	reading, err := telemetry.ParseLine(line, now)
	if err != nil {
		// Non-JSON chatter from the firmware is expected; log and discard.
		log.Printf("sensors: discarding line: %v", err)
		return
	}

	s.mu.Lock()
	s.lastDataReceived = now
	noSensor := s.noSensorMode
	cfg := s.cfg
	s.mu.Unlock()

	stable, accepted := s.filter.Accept(reading)
	if !accepted {
		// No new data point; the display just resyncs from the stable state.
		s.publish()
		return
	}

	if !noSensor && s.sensors.IsConnected() {
		s.store.Append(stable)

		for _, ch := range telemetry.Channels() {
			value := stable.Value(ch)
			eval := telemetry.Classify(ch, value, cfg)

			if value > 0 {
				s.store.Record(eval.Level)
			}
			s.maybeAlert(ch, value, eval, now)
		}

		if action, err := s.controller.EvaluateAutomatic(stable.Soil, cfg.Plant.SoilMin, cfg.Plant.SoilMax); err != nil {
			s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Riego automático: %v", err)})
		} else {
			switch action {
			case pump.ActionTurnedOn:
				s.notify(Notice{Kind: NoticeSuccess, Message: "Riego automático activado - Suelo seco detectado"})
			case pump.ActionTurnedOff:
				s.notify(Notice{Kind: NoticeWarning, Message: "Riego automático desactivado - Suelo saturado"})
			}
		}
	}

	s.publish()
}

// maybeAlert surfaces one channel evaluation. Critical conditions (worst
// gas band, tank overflow) always go through the blocking acknowledged
// path; everything else is cooldown-gated and transient.
func (s *System) maybeAlert(ch telemetry.Channel, value float64, eval telemetry.Evaluation, now time.Time) {
	if !eval.AlertEligible || value <= 0 {
		return
	}

	message := fmt.Sprintf("%s: %s", ch.DisplayName(), eval.Message)
	ev := alert.NewEvent(message, eval.Level, ch, now)

	if eval.Level == telemetry.Critical {
		s.history.Add(ev)
		s.notifier.Blocking(ev)
		return
	}

	if s.gate.ShouldAlert(ch, true, now) {
		s.history.Add(ev)
		s.notifier.Transient(ev)
	}
}

// processPumpLine handles one line from the pump unit, reconciling the
// controller's intent with whatever the device reports.
func (s *System) processPumpLine(line string) {
	resp := pump.ParseResponse(line)
	switch resp.Kind {
	case pump.Recognized:
		if s.controller.Reconcile(resp.PumpActive) {
			state := "OFF"
			if resp.PumpActive {
				state = "ON"
			}
			s.notify(Notice{Kind: NoticeInfo, Message: fmt.Sprintf("Estado de bomba sincronizado: %s", state)})
		}
		s.publish()
	case pump.Malformed:
		log.Printf("pump: malformed status line: %q", resp.Text)
	default:
		log.Printf("pump: %s", resp.Text)
	}
}

// TurnPumpOn starts the pump manually, mapping controller errors to notices.
func (s *System) TurnPumpOn() {
	switch err := s.controller.TurnOn(); err {
	case nil:
		s.notify(Notice{Kind: NoticeSuccess, Message: "Bomba ENCENDIDA"})
	case device.ErrNotConnected:
		s.notify(Notice{Kind: NoticeWarning, Message: "Arduino de bomba no conectado"})
	case pump.ErrEmergencyStop:
		s.notify(Notice{Kind: NoticeDanger, Message: "Sistema en parada de emergencia"})
	case pump.ErrAlreadyOn:
		s.notify(Notice{Kind: NoticeInfo, Message: "La bomba ya está encendida"})
	default:
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error encendiendo bomba: %v", err)})
	}
	s.publish()
}

// TurnPumpOff stops the pump manually.
func (s *System) TurnPumpOff() {
	switch err := s.controller.TurnOff(); err {
	case nil:
		s.notify(Notice{Kind: NoticeWarning, Message: "Bomba APAGADA"})
	case device.ErrNotConnected:
		s.notify(Notice{Kind: NoticeWarning, Message: "Arduino de bomba no conectado"})
	case pump.ErrAlreadyOff:
		s.notify(Notice{Kind: NoticeInfo, Message: "La bomba ya está apagada"})
	default:
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error apagando bomba: %v", err)})
	}
	s.publish()
}

// TogglePump inverts the pump state.
func (s *System) TogglePump() {
	if s.controller.Status().Commanded {
		s.TurnPumpOff()
	} else {
		s.TurnPumpOn()
	}
}

// SetAutomaticMode switches irrigation mode.
func (s *System) SetAutomaticMode(enabled bool) {
	if err := s.controller.SetAutomatic(enabled); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error cambiando modo: %v", err)})
		return
	}
	if enabled {
		s.notify(Notice{Kind: NoticeSuccess, Message: "Modo automático activado"})
	} else {
		s.notify(Notice{Kind: NoticeWarning, Message: "Modo manual activado"})
	}
	s.publish()
}

// EmergencyStop toggles the emergency stop.
func (s *System) EmergencyStop() {
	active, err := s.controller.EmergencyStop()
	if err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Parada de emergencia: %v", err)})
	}
	if active {
		s.notify(Notice{Kind: NoticeDanger, Message: "PARADA DE EMERGENCIA ACTIVADA - Bomba apagada"})
	} else {
		s.notify(Notice{Kind: NoticeSuccess, Message: "Parada de emergencia desactivada"})
	}
	s.publish()
}

// UpdateGasThresholds applies a validated gas threshold update. On
// validation failure the previous configuration is retained.
func (s *System) UpdateGasThresholds(g config.GasThresholds) error {
	if err := g.Validate(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error: %v", err)})
		return err
	}
	s.mu.Lock()
	s.cfg.Gas = g
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeSuccess, Message: "Parámetros de gas actualizados correctamente"})
	s.publish()
	return nil
}

// UpdateTankThresholds applies a validated tank threshold update.
func (s *System) UpdateTankThresholds(t config.TankThresholds) error {
	if err := t.Validate(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error: %v", err)})
		return err
	}
	s.mu.Lock()
	s.cfg.Tank = t
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeSuccess, Message: "Parámetros de ultrasonido actualizados correctamente"})
	s.publish()
	return nil
}

// UpdatePlantParameters applies a validated plant parameter update.
func (s *System) UpdatePlantParameters(p config.PlantConfig) error {
	if err := p.Validate(); err != nil {
		s.notify(Notice{Kind: NoticeDanger, Message: fmt.Sprintf("Error: %v", err)})
		return err
	}
	s.mu.Lock()
	s.cfg.Plant = p
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeSuccess, Message: fmt.Sprintf("Parámetros de planta actualizados (%s)", p.Name)})
	s.publish()
	return nil
}

// ResetTelemetry clears buffers, histogram, counters, alert log and the
// stable state. Explicit user action.
func (s *System) ResetTelemetry() {
	s.store.Reset()
	s.filter.Reset()
	s.gate.Reset()
	s.history.Reset()
	s.notify(Notice{Kind: NoticeSuccess, Message: "Datos de sensores reseteados"})
	s.publish()
}

// ClearAll wipes everything except threshold configuration, including the
// irrigation counter and the uptime clock.
func (s *System) ClearAll() {
	s.store.Reset()
	s.filter.Reset()
	s.gate.Reset()
	s.history.Reset()
	s.controller.RestoreCounters(0)
	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeSuccess, Message: "Todos los datos limpiados"})
	s.publish()
}

// Stats returns the aggregate statistics block.
func (s *System) Stats() Stats {
	s.mu.RLock()
	start := s.startTime
	last := s.lastDataReceived
	s.mu.RUnlock()

	return Stats{
		TotalReadings:    s.store.TotalReadings(),
		AlertCount:       s.history.Count(),
		IrrigationCount:  s.controller.Status().IrrigationCount,
		Uptime:           time.Since(start),
		LastDataReceived: last,
	}
}

// NoSensorMode reports whether telemetry recording is suppressed.
func (s *System) NoSensorMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noSensorMode
}

func (s *System) snapshotUpdate() Update {
	s.mu.RLock()
	cfg := s.cfg
	noSensor := s.noSensorMode
	s.mu.RUnlock()

	stable := s.filter.State()
	evals := make(map[telemetry.Channel]telemetry.Evaluation, 5)
	for _, ch := range telemetry.Channels() {
		evals[ch] = telemetry.Classify(ch, stable.Value(ch), cfg)
	}

	return Update{
		Stable:      stable,
		Evaluations: evals,
		Series:      s.store.Series(),
		Histogram:   s.store.Histogram(),
		Stats:       s.Stats(),
		Pump:        s.controller.Status(),
		Sensors:     s.sensors.State(),
		PumpLink:    s.pumpLink.State(),
		NoSensor:    noSensor,
	}
}

func (s *System) publish() {
	update := s.snapshotUpdate()

	s.cbMu.RLock()
	callbacks := append([]func(Update){}, s.onUpdate...)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(update)
	}
}

func (s *System) notify(n Notice) {
	log.Printf("[%s] %s", n.Kind, n.Message)

	s.cbMu.RLock()
	callbacks := append([]func(Notice){}, s.onNotice...)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(n)
	}
}
