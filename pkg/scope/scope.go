package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// channelColors maps each telemetry channel to its trace color.
var channelColors = map[telemetry.Channel]color.Color{
	telemetry.ChannelGas:         color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
	telemetry.ChannelUltrasonic:  color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	telemetry.ChannelSoil:        color.NRGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	telemetry.ChannelTemperature: color.NRGBA{R: 0xff, G: 0x57, B: 0x22, A: 0xff},
	telemetry.ChannelHumidity:    color.NRGBA{R: 0x03, G: 0xa9, B: 0xf4, A: 0xff},
}

// Widget is a strip chart of the stable telemetry history. It only ever
// draws the snapshot handed to UpdateData; it never reads live state.
type Widget struct {
	widget.BaseWidget

	mu     sync.RWMutex
	series telemetry.Series

	// Channels currently drawn.
	visible map[telemetry.Channel]bool
}

// New creates an empty strip chart showing all channels.
func New() *Widget {
	w := &Widget{
		visible: make(map[telemetry.Channel]bool, 5),
	}
	for _, ch := range telemetry.Channels() {
		w.visible[ch] = true
	}
	w.ExtendBaseWidget(w)
	return w
}

// UpdateData replaces the drawn series. Call from the main Fyne thread
// via fyne.Do.
func (w *Widget) UpdateData(series telemetry.Series) {
	w.mu.Lock()
	w.series = series
	w.mu.Unlock()
	w.Refresh()
}

// SetVisible toggles one channel's trace.
func (w *Widget) SetVisible(ch telemetry.Channel, visible bool) {
	w.mu.Lock()
	w.visible[ch] = visible
	w.mu.Unlock()
	w.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(w)
}
