package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/joho/godotenv"

	"github.com/hgarcia-dev/riego/pkg/config"
	"github.com/hgarcia-dev/riego/pkg/device"
	"github.com/hgarcia-dev/riego/pkg/scope"
	"github.com/hgarcia-dev/riego/pkg/system"
)

const autoSaveInterval = 5 * time.Minute

func main() {
	var (
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		sensorsFlag = flag.String("sensors-port", "", "Sensor unit serial port override")
		pumpFlag    = flag.String("pump-port", "", "Pump unit serial port override")
		mockFlag    = flag.Bool("mock", false, "Use mocked devices instead of serial ports")
	)
	flag.Parse()

	// .env overrides are handy on the greenhouse laptop where ports differ
	// per machine; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if port := os.Getenv("RIEGO_SENSORS_PORT"); port != "" {
		cfg.Serial.SensorsPort = port
	}
	if port := os.Getenv("RIEGO_PUMP_PORT"); port != "" {
		cfg.Serial.PumpPort = port
	}
	if baud := os.Getenv("RIEGO_SENSORS_BAUD"); baud != "" {
		if v, err := strconv.Atoi(baud); err == nil {
			cfg.Serial.SensorsBaud = v
		}
	}
	if baud := os.Getenv("RIEGO_PUMP_BAUD"); baud != "" {
		if v, err := strconv.Atoi(baud); err == nil {
			cfg.Serial.PumpBaud = v
		}
	}
	if *sensorsFlag != "" {
		cfg.Serial.SensorsPort = *sensorsFlag
	}
	if *pumpFlag != "" {
		cfg.Serial.PumpPort = *pumpFlag
	}

	application := app.NewWithID("dev.hgarcia.riego")
	window := application.NewWindow("Sistema de Riego")
	window.Resize(fyne.NewSize(1100, 720))
	window.CenterOnScreen()

	sensors, pumpLink := buildLinks(cfg, *mockFlag)

	notifier := newFyneNotifier(window)
	sys := system.New(cfg, sensors, pumpLink, notifier)

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		sys:        sys,
		window:     window,
		chart:      scope.New(),
	}

	content := container.NewBorder(
		createToolbar(state),
		state.buildStatusBar(),
		nil,
		nil,
		container.NewVSplit(
			state.buildCards(),
			container.NewBorder(state.buildTraceToggles(), nil, nil, nil, state.chart),
		),
	)
	window.SetContent(content)

	sys.OnUpdate(func(u system.Update) {
		fyne.Do(func() { state.applyUpdate(u) })
	})
	sys.OnNotice(func(n system.Notice) {
		fyne.Do(func() { state.showNotice(n) })
	})

	sys.Start()
	if err := sys.LoadState(system.StateFile); err != nil {
		log.Printf("Failed to load saved state: %v", err)
	}
	sys.AutoSave(system.StateFile, autoSaveInterval)

	window.SetCloseIntercept(func() {
		if err := sys.SaveState(system.StateFile); err != nil {
			log.Printf("Failed to save state: %v", err)
		}
		sys.Stop()
		window.Close()
	})

	window.ShowAndRun()
}

// buildLinks creates the two device links, real or mocked. The mock pump
// feeds its relay state back into the mock sensors so soil moisture reacts
// to irrigation.
func buildLinks(cfg *config.Config, mock bool) (device.Conn, device.Conn) {
	if mock {
		sensors := device.NewMockSensors(cfg.Mock)
		pumpUnit := device.NewMockPump()
		pumpUnit.OnPumpChange = sensors.SetIrrigating
		return sensors, pumpUnit
	}

	sensors := device.NewLink("sensors", cfg.Serial.SensorsPort, cfg.Serial.SensorsBaud, cfg.Serial.OpenTimeout)
	pumpLink := device.NewLink("pump", cfg.Serial.PumpPort, cfg.Serial.PumpBaud, cfg.Serial.OpenTimeout)
	return sensors, pumpLink
}

// appState holds the application widgets and their data sources.
type appState struct {
	cfg        *config.Config
	configPath string
	sys        *system.System
	window     fyne.Window
	chart      *scope.Widget

	cards       map[string]*sensorCard
	statusLabel *widget.Label
	statsLabel  *widget.Label
	pumpBtn     *widget.Button
	modeBtn     *widget.Button

	autoMode bool
}

// createToolbar creates the toolbar with connection, pump and data actions.
func createToolbar(state *appState) fyne.CanvasObject {
	state.pumpBtn = widget.NewButtonWithIcon("Bomba", theme.MediaPlayIcon(), func() {
		go state.sys.TogglePump()
	})
	state.modeBtn = widget.NewButtonWithIcon("Modo: Manual", theme.MediaSkipNextIcon(), func() {
		go state.sys.SetAutomaticMode(!state.autoMode)
	})

	return container.NewHBox(
		widget.NewButtonWithIcon("Sensores", theme.SearchIcon(), func() {
			go func() {
				if state.sys.NoSensorMode() {
					state.sys.ConnectSensors()
				} else {
					state.sys.DisconnectSensors()
				}
			}()
		}),
		widget.NewButtonWithIcon("Bomba (conexión)", theme.MediaRecordIcon(), func() {
			go state.sys.ConnectPump()
		}),
		state.pumpBtn,
		state.modeBtn,
		widget.NewButtonWithIcon("EMERGENCIA", theme.ErrorIcon(), func() {
			go state.sys.EmergencyStop()
		}),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Ajustes", theme.SettingsIcon(), func() {
			showSettingsDialog(state)
		}),
		widget.NewButtonWithIcon("Exportar", theme.DownloadIcon(), func() {
			exportSnapshot(state)
		}),
		widget.NewButtonWithIcon("Importar", theme.UploadIcon(), func() {
			importSnapshot(state)
		}),
		widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
			dialog.ShowConfirm("Reset", "¿Resetear los datos de sensores?", func(ok bool) {
				if ok {
					state.sys.ResetTelemetry()
				}
			}, state.window)
		}),
	)
}

func (s *appState) buildStatusBar() fyne.CanvasObject {
	s.statusLabel = widget.NewLabel("")
	s.statsLabel = widget.NewLabel("Lecturas: 0 | Alertas: 0 | Riegos: 0")
	return container.NewBorder(nil, nil, s.statsLabel, nil, s.statusLabel)
}

// exportSnapshot writes the full state snapshot to a user-chosen file.
func exportSnapshot(state *appState) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		data, err := state.sys.Export()
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
}

// importSnapshot re-hydrates state from a user-chosen snapshot file.
func importSnapshot(state *appState) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		data, err := os.ReadFile(reader.URI().Path())
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if err := state.sys.Import(data); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
}
