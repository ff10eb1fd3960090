package scope

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

const (
	padding  = 8
	gridRows = 4
	traceCap = telemetry.DefaultHistoryCap
)

// chartRenderer draws the strip chart: background, horizontal grid with
// value labels, and one polyline per visible channel.
type chartRenderer struct {
	chart *Widget

	background *canvas.Rectangle
	gridLines  []*canvas.Line
	gridTexts  []*canvas.Text
	traces     map[telemetry.Channel][]*canvas.Line

	objects []fyne.CanvasObject
}

func newRenderer(w *Widget) *chartRenderer {
	r := &chartRenderer{
		chart:      w,
		background: canvas.NewRectangle(color.NRGBA{R: 0x10, G: 0x14, B: 0x18, A: 0xff}),
		traces:     make(map[telemetry.Channel][]*canvas.Line, 5),
	}

	r.objects = append(r.objects, r.background)

	for i := 0; i <= gridRows; i++ {
		line := canvas.NewLine(color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff})
		line.StrokeWidth = 1
		text := canvas.NewText("", color.NRGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xff})
		text.TextSize = 10
		r.gridLines = append(r.gridLines, line)
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, line, text)
	}

	// One reusable segment pool per channel; capacity matches the history
	// buffer so no allocation happens while drawing.
	for _, ch := range telemetry.Channels() {
		segments := make([]*canvas.Line, 0, traceCap-1)
		for i := 0; i < traceCap-1; i++ {
			seg := canvas.NewLine(channelColors[ch])
			seg.StrokeWidth = 2
			seg.Hidden = true
			segments = append(segments, seg)
			r.objects = append(r.objects, seg)
		}
		r.traces[ch] = segments
	}

	return r
}

// MinSize returns the minimum widget size.
func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 260)
}

// Layout resizes the background; traces are positioned in Refresh.
func (r *chartRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.refreshAt(size)
}

// Refresh redraws grid and traces for the current series.
func (r *chartRenderer) Refresh() {
	r.refreshAt(r.chart.Size())
}

func (r *chartRenderer) refreshAt(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}

	r.chart.mu.RLock()
	series := r.chart.series
	visible := make(map[telemetry.Channel]bool, len(r.chart.visible))
	for ch, v := range r.chart.visible {
		visible[ch] = v
	}
	r.chart.mu.RUnlock()

	yMin, yMax := valueRange(series, visible)

	plotW := size.Width - 2*padding
	plotH := size.Height - 2*padding

	for i, line := range r.gridLines {
		frac := float32(i) / float32(gridRows)
		y := padding + plotH*frac
		line.Position1 = fyne.NewPos(padding, y)
		line.Position2 = fyne.NewPos(padding+plotW, y)
		line.Refresh()

		value := yMax - (yMax-yMin)*frac
		r.gridTexts[i].Text = fmt.Sprintf("%.0f", value)
		r.gridTexts[i].Move(fyne.NewPos(padding+2, y-12))
		r.gridTexts[i].Refresh()
	}

	for _, ch := range telemetry.Channels() {
		segments := r.traces[ch]
		values := series.Values(ch)

		for i, seg := range segments {
			if !visible[ch] || i+1 >= len(values) {
				seg.Hidden = true
				seg.Refresh()
				continue
			}

			x1 := padding + plotW*float32(i)/float32(traceCap-1)
			x2 := padding + plotW*float32(i+1)/float32(traceCap-1)
			seg.Position1 = fyne.NewPos(x1, valueToY(values[i], yMin, yMax, plotH))
			seg.Position2 = fyne.NewPos(x2, valueToY(values[i+1], yMin, yMax, plotH))
			seg.Hidden = false
			seg.Refresh()
		}
	}

	canvas.Refresh(r.background)
}

// Objects returns all canvas objects.
func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy is a no-op.
func (r *chartRenderer) Destroy() {}

// valueRange computes the vertical scale across all visible channels,
// padded so flat traces don't sit on the border.
func valueRange(series telemetry.Series, visible map[telemetry.Channel]bool) (float32, float32) {
	yMin := float32(math32.MaxFloat32)
	yMax := -float32(math32.MaxFloat32)
	found := false

	for _, ch := range telemetry.Channels() {
		if !visible[ch] {
			continue
		}
		for _, v := range series.Values(ch) {
			f := float32(v)
			yMin = math32.Min(yMin, f)
			yMax = math32.Max(yMax, f)
			found = true
		}
	}

	if !found {
		return 0, 100
	}

	span := yMax - yMin
	if span < 1 {
		span = 1
	}
	return yMin - span*0.1, yMax + span*0.1
}

func valueToY(v float64, yMin, yMax, plotH float32) float32 {
	frac := (float32(v) - yMin) / (yMax - yMin)
	return padding + plotH*(1-frac)
}
