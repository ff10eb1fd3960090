package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/hgarcia-dev/riego/pkg/system"
	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// sensorCard shows one channel's stable value and its evaluation.
type sensorCard struct {
	channel telemetry.Channel
	value   *widget.Label
	status  *widget.Label
	card    *widget.Card
}

// cardUnits maps channels to their display unit.
var cardUnits = map[telemetry.Channel]string{
	telemetry.ChannelGas:         " ppm",
	telemetry.ChannelUltrasonic:  " cm",
	telemetry.ChannelSoil:        "%",
	telemetry.ChannelTemperature: "°C",
	telemetry.ChannelHumidity:    "%",
}

func (s *appState) buildCards() fyne.CanvasObject {
	s.cards = make(map[string]*sensorCard, 5)

	var objects []fyne.CanvasObject
	for _, ch := range telemetry.Channels() {
		c := &sensorCard{
			channel: ch,
			value:   widget.NewLabel("0"),
			status:  widget.NewLabel("Sin datos"),
		}
		c.card = widget.NewCard(ch.DisplayName(), "", container.NewVBox(c.value, c.status))
		s.cards[string(ch)] = c
		objects = append(objects, c.card)
	}

	return container.NewGridWithColumns(5, objects...)
}

// buildTraceToggles creates one check per channel to show or hide its
// trace on the chart.
func (s *appState) buildTraceToggles() fyne.CanvasObject {
	var objects []fyne.CanvasObject
	for _, ch := range telemetry.Channels() {
		check := widget.NewCheck(ch.DisplayName(), func(visible bool) {
			s.chart.SetVisible(ch, visible)
		})
		check.SetChecked(true)
		objects = append(objects, check)
	}
	return container.NewHBox(objects...)
}

// applyUpdate refreshes cards, chart and stats from one orchestrator
// snapshot. Must run on the main Fyne thread.
func (s *appState) applyUpdate(u system.Update) {
	for _, ch := range telemetry.Channels() {
		c := s.cards[string(ch)]
		eval := u.Evaluations[ch]

		c.value.SetText(fmt.Sprintf("%.1f%s", u.Stable.Value(ch), cardUnits[ch]))
		if u.NoSensor {
			c.status.SetText("Sin datos")
		} else {
			c.status.SetText(fmt.Sprintf("%s %s", eval.Icon, eval.Message))
		}
	}

	s.chart.UpdateData(u.Series)

	s.statsLabel.SetText(fmt.Sprintf("Lecturas: %d | Alertas: %d | Riegos: %d | Activo: %s",
		u.Stats.TotalReadings, u.Stats.AlertCount, u.Stats.IrrigationCount,
		u.Stats.Uptime.Round(time.Second)))

	s.autoMode = u.Pump.Mode.String() == "automatic"
	if s.autoMode {
		s.modeBtn.SetText("Modo: Automático")
	} else if u.Pump.EmergencyStop {
		s.modeBtn.SetText("Modo: EMERGENCIA")
	} else {
		s.modeBtn.SetText("Modo: Manual")
	}

	if u.Pump.Commanded {
		s.pumpBtn.SetText("BOMBA ACTIVA - Apagar")
	} else {
		s.pumpBtn.SetText("BOMBA INACTIVA - Encender")
	}
}

// showNotice displays a transient one-line notice in the status bar.
func (s *appState) showNotice(n system.Notice) {
	s.statusLabel.SetText(fmt.Sprintf("[%s] %s", n.Kind, n.Message))
}
