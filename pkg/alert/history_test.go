package alert

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

func TestNewEvent(t *testing.T) {
	now := time.Now()
	e := NewEvent("Aire contaminado", telemetry.Danger, telemetry.ChannelGas, now)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Aire contaminado", e.Message)
	assert.Equal(t, telemetry.Danger, e.Severity)
	assert.Equal(t, "danger", e.Level)
	assert.Equal(t, telemetry.ChannelGas, e.Channel)
	assert.Equal(t, now, e.Timestamp)

	e2 := NewEvent("otro", telemetry.Warning, telemetry.ChannelSoil, now)
	assert.NotEqual(t, e.ID, e2.ID)
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory(50)
	now := time.Now()

	h.Add(NewEvent("uno", telemetry.Warning, telemetry.ChannelGas, now))
	h.Add(NewEvent("dos", telemetry.Danger, telemetry.ChannelSoil, now))

	events := h.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "uno", events[0].Message)
	assert.Equal(t, "dos", events[1].Message)
	assert.Equal(t, 2, h.Count())
}

func TestHistory_CapDropsOldest(t *testing.T) {
	h := NewHistory(50)
	now := time.Now()

	for i := 0; i < 55; i++ {
		h.Add(NewEvent(fmt.Sprintf("alerta %d", i), telemetry.Warning, telemetry.ChannelGas, now))
	}

	events := h.Events()
	require.Len(t, events, 50)
	assert.Equal(t, "alerta 5", events[0].Message)
	assert.Equal(t, "alerta 54", events[49].Message)

	// the counter keeps counting past the buffer cap
	assert.Equal(t, 55, h.Count())
}

func TestHistory_CountExcludesInformational(t *testing.T) {
	h := NewHistory(50)
	now := time.Now()

	h.Add(NewEvent("conectado", telemetry.Normal, "", now))
	h.Add(NewEvent("suelo seco", telemetry.Warning, telemetry.ChannelSoil, now))
	h.Add(NewEvent("desborde", telemetry.Critical, telemetry.ChannelUltrasonic, now))

	assert.Len(t, h.Events(), 3, "informational events still appear in the log")
	assert.Equal(t, 2, h.Count(), "only warning and worse count")
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(50)
	h.Add(NewEvent("alerta", telemetry.Danger, telemetry.ChannelGas, time.Now()))

	h.Reset()

	assert.Empty(t, h.Events())
	assert.Equal(t, 0, h.Count())
}

func TestHistory_Restore(t *testing.T) {
	h := NewHistory(50)
	now := time.Now()

	events := make([]Event, 60)
	for i := range events {
		events[i] = NewEvent(fmt.Sprintf("alerta %d", i), telemetry.Warning, telemetry.ChannelGas, now)
	}
	h.Restore(events, 60)

	restored := h.Events()
	require.Len(t, restored, 50, "imported overflow trimmed to cap")
	assert.Equal(t, "alerta 10", restored[0].Message)
	assert.Equal(t, 60, h.Count())
}

func TestLogNotifier(t *testing.T) {
	n := &LogNotifier{}
	now := time.Now()

	n.Transient(NewEvent("aviso", telemetry.Warning, telemetry.ChannelGas, now))
	n.Blocking(NewEvent("crítica", telemetry.Critical, telemetry.ChannelUltrasonic, now))

	logged := n.Logged()
	require.Len(t, logged, 2)
	assert.Equal(t, "aviso", logged[0].Message)
	assert.Equal(t, "crítica", logged[1].Message)
}
