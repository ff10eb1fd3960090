package telemetry

import (
	"sync"
	"time"
)

// DefaultHistoryCap is how many stable readings each channel buffer keeps.
const DefaultHistoryCap = 20

// Histogram counts evaluated readings per severity level. Monotonic,
// reset only by explicit user action.
type Histogram struct {
	Normal   int `json:"normal"`
	Warning  int `json:"warning"`
	Danger   int `json:"danger"`
	Critical int `json:"critical"`
}

// Record increments the counter for the given level.
func (h *Histogram) Record(level Severity) {
	switch level {
	case Normal:
		h.Normal++
	case Warning:
		h.Warning++
	case Danger:
		h.Danger++
	case Critical:
		h.Critical++
	}
}

// Total returns the sum of all counters.
func (h Histogram) Total() int {
	return h.Normal + h.Warning + h.Danger + h.Critical
}

// Series is a copy of the bounded history buffers, timestamps kept in
// lock-step with the per-channel values.
type Series struct {
	Gas         []float64
	Ultrasonic  []float64
	Soil        []float64
	Temperature []float64
	Humidity    []float64
	Timestamps  []time.Time
}

// Len returns the number of stored readings.
func (s Series) Len() int { return len(s.Timestamps) }

// Values returns the series for the given channel.
func (s Series) Values(c Channel) []float64 {
	switch c {
	case ChannelGas:
		return s.Gas
	case ChannelUltrasonic:
		return s.Ultrasonic
	case ChannelSoil:
		return s.Soil
	case ChannelTemperature:
		return s.Temperature
	case ChannelHumidity:
		return s.Humidity
	}
	return nil
}

// Store owns the bounded per-channel history buffers, the reading counter
// and the severity histogram.
type Store struct {
	mu  sync.RWMutex
	cap int

	series        Series
	totalReadings int
	histogram     Histogram
}

// NewStore creates a store keeping up to cap readings per channel.
func NewStore(cap int) *Store {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &Store{cap: cap}
}

// Append pushes one stable reading into every channel buffer, dropping the
// oldest entry once the cap is reached, and increments totalReadings.
func (s *Store) Append(st StableState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series.Gas = appendBounded(s.series.Gas, st.Gas, s.cap)
	s.series.Ultrasonic = appendBounded(s.series.Ultrasonic, st.Ultrasonic, s.cap)
	s.series.Soil = appendBounded(s.series.Soil, st.Soil, s.cap)
	s.series.Temperature = appendBounded(s.series.Temperature, st.Temperature, s.cap)
	s.series.Humidity = appendBounded(s.series.Humidity, st.Humidity, s.cap)

	s.series.Timestamps = append(s.series.Timestamps, st.LastUpdate)
	if len(s.series.Timestamps) > s.cap {
		s.series.Timestamps = s.series.Timestamps[1:]
	}

	s.totalReadings++
}

// Record adds one evaluated severity to the histogram.
func (s *Store) Record(level Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histogram.Record(level)
}

// Series returns a copy of the history buffers.
func (s *Store) Series() Series {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Series{
		Gas:         append([]float64(nil), s.series.Gas...),
		Ultrasonic:  append([]float64(nil), s.series.Ultrasonic...),
		Soil:        append([]float64(nil), s.series.Soil...),
		Temperature: append([]float64(nil), s.series.Temperature...),
		Humidity:    append([]float64(nil), s.series.Humidity...),
		Timestamps:  append([]time.Time(nil), s.series.Timestamps...),
	}
}

// TotalReadings returns how many stable readings have been appended.
func (s *Store) TotalReadings() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalReadings
}

// Histogram returns a copy of the severity histogram.
func (s *Store) Histogram() Histogram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.histogram
}

// Reset clears buffers, counters and the histogram. Explicit user action
// only, never automatic.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = Series{}
	s.totalReadings = 0
	s.histogram = Histogram{}
}

// Restore replaces the store contents from an imported snapshot.
func (s *Store) Restore(series Series, totalReadings int, hist Histogram) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = series
	s.totalReadings = totalReadings
	s.histogram = hist
}

func appendBounded(buf []float64, v float64, cap int) []float64 {
	buf = append(buf, v)
	if len(buf) > cap {
		buf = buf[1:]
	}
	return buf
}
