package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/hgarcia-dev/riego/pkg/config"
	"github.com/hgarcia-dev/riego/pkg/device"
)

// showSettingsDialog displays a settings dialog with tabs for thresholds,
// plant parameters and serial ports.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createGasTab(state),
		createTankTab(state),
		createPlantTab(state),
		createSerialTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(520, 420))

	d := dialog.NewCustom("Ajustes", "Cerrar", content, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// createGasTab edits the gas quality bands. Values must be strictly
// increasing; rejected updates keep the previous configuration.
func createGasTab(state *appState) *container.TabItem {
	cfg := state.sys.Config()

	good := newFloatEntry(cfg.Gas.Good)
	regular := newFloatEntry(cfg.Gas.Regular)
	bad := newFloatEntry(cfg.Gas.Bad)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Bueno hasta", Widget: good},
			{Text: "Regular hasta", Widget: regular},
			{Text: "Malo hasta", Widget: bad},
		},
		OnSubmit: func() {
			thresholds := config.GasThresholds{
				Good:    parseFloat(good),
				Regular: parseFloat(regular),
				Bad:     parseFloat(bad),
			}
			if err := state.sys.UpdateGasThresholds(thresholds); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.saveConfig()
		},
	}

	return container.NewTabItem("Gas", form)
}

// createTankTab edits the ultrasonic tank level bands.
func createTankTab(state *appState) *container.TabItem {
	cfg := state.sys.Config()

	min := newFloatEntry(cfg.Tank.Min)
	regular := newFloatEntry(cfg.Tank.Regular)
	max := newFloatEntry(cfg.Tank.Max)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Mínimo (vacío) hasta", Widget: min},
			{Text: "Regular hasta", Widget: regular},
			{Text: "Máximo (lleno) hasta", Widget: max},
		},
		OnSubmit: func() {
			thresholds := config.TankThresholds{
				Min:     parseFloat(min),
				Regular: parseFloat(regular),
				Max:     parseFloat(max),
			}
			if err := state.sys.UpdateTankThresholds(thresholds); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.saveConfig()
		},
	}

	return container.NewTabItem("Tanque", form)
}

// createPlantTab edits the plant parameters, with built-in presets.
func createPlantTab(state *appState) *container.TabItem {
	cfg := state.sys.Config()

	soilMin := newFloatEntry(cfg.Plant.SoilMin)
	soilMax := newFloatEntry(cfg.Plant.SoilMax)
	soilOpt := newFloatEntry(cfg.Plant.SoilOptimal)
	tempOpt := newFloatEntry(cfg.Plant.TempOptimal)
	humidOpt := newFloatEntry(cfg.Plant.HumidOptimal)

	presets := config.Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}

	presetSelect := widget.NewSelect(names, func(selected string) {
		for _, p := range presets {
			if p.Name == selected {
				soilMin.SetText(formatFloat(p.SoilMin))
				soilMax.SetText(formatFloat(p.SoilMax))
				soilOpt.SetText(formatFloat(p.SoilOptimal))
				tempOpt.SetText(formatFloat(p.TempOptimal))
				humidOpt.SetText(formatFloat(p.HumidOptimal))
				break
			}
		}
	})
	presetSelect.SetSelected(cfg.Plant.Name)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Planta", Widget: presetSelect},
			{Text: "Suelo mínimo (%)", Widget: soilMin},
			{Text: "Suelo máximo (%)", Widget: soilMax},
			{Text: "Suelo óptimo (%)", Widget: soilOpt},
			{Text: "Temperatura óptima (°C)", Widget: tempOpt},
			{Text: "Humedad óptima (%)", Widget: humidOpt},
		},
		OnSubmit: func() {
			plant := config.PlantConfig{
				Name:          presetSelect.Selected,
				SoilMin:       parseFloat(soilMin),
				SoilMax:       parseFloat(soilMax),
				SoilOptimal:   parseFloat(soilOpt),
				TempOptimal:   parseFloat(tempOpt),
				HumidOptimal:  parseFloat(humidOpt),
				IrrigationSec: cfg.Plant.IrrigationSec,
			}
			if err := state.sys.UpdatePlantParameters(plant); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.saveConfig()
		},
	}

	return container.NewTabItem("Planta", form)
}

// createSerialTab selects the serial port for each unit.
func createSerialTab(state *appState) *container.TabItem {
	cfg := state.sys.Config()

	options, err := device.Ports()
	if err != nil || len(options) == 0 {
		options = []string{cfg.Serial.SensorsPort, cfg.Serial.PumpPort}
	}

	sensorsSelect := widget.NewSelect(options, nil)
	sensorsSelect.SetSelected(cfg.Serial.SensorsPort)
	pumpSelect := widget.NewSelect(options, nil)
	pumpSelect.SetSelected(cfg.Serial.PumpPort)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Puerto sensores", Widget: sensorsSelect},
			{Text: "Puerto bomba", Widget: pumpSelect},
		},
		OnSubmit: func() {
			if sensorsSelect.Selected != "" {
				cfg.Serial.SensorsPort = sensorsSelect.Selected
			}
			if pumpSelect.Selected != "" {
				cfg.Serial.PumpPort = pumpSelect.Selected
			}
			state.saveConfig()
		},
	}

	return container.NewTabItem("Serial", form)
}

func (s *appState) saveConfig() {
	if err := s.sys.Config().Save(s.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), s.window)
	}
}

func newFloatEntry(value float64) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(formatFloat(value))
	return entry
}

func parseFloat(entry *widget.Entry) float64 {
	v, err := strconv.ParseFloat(entry.Text, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
