package core

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusRegisterRejectsDuplicates(t *testing.T) {
	bus := NewEventBus()
	listener := &struct{}{}
	cb := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }

	assert.True(t, bus.Register(EVENT_CODE_EXCEPTION_OCCURRED, listener, cb))
	assert.False(t, bus.Register(EVENT_CODE_EXCEPTION_OCCURRED, listener, cb))
	assert.False(t, bus.Register(EVENT_CODE_EXCEPTION_OCCURRED, nil, nil))
}

func TestEventBusHandledStopsPropagation(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	first, second := "first", "second"

	bus.Register(EVENT_CODE_RESIZED, &first, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, first)
		return true
	})
	bus.Register(EVENT_CODE_RESIZED, &second, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, second)
		return false
	})

	assert.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
	assert.Equal(t, []string{"first"}, calls)

	require.True(t, bus.Unregister(EVENT_CODE_RESIZED, &first))
	assert.False(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, &first))
}

func TestEventBusCarriesError(t *testing.T) {
	bus := NewEventBus()
	var got error
	bus.Register(EVENT_CODE_EXCEPTION_OCCURRED, nil, func(_ SystemEventCode, _ interface{}, _ interface{}, data EventContext) bool {
		got = data.Err
		return true
	})
	bus.Fire(EVENT_CODE_EXCEPTION_OCCURRED, nil, EventContext{Err: ErrFrameAborted})
	assert.True(t, errors.Is(got, ErrFrameAborted))
}

func TestFrameMetricsAverage(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < AVG_COUNT+5; i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)
	assert.EqualValues(t, AVG_COUNT+5, m.TotalFrames)

	for i := 0; i < 200; i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 100, m.FPSValue(), 1)
}

func TestNewLoggerWritesPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "test", log.InfoLevel)
	l.Debug("hidden")
	l.Info("frame", "n", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "frame")

	var sink LogSink = l
	sink.Warn("warned")
	assert.Contains(t, buf.String(), "warned")
}

func TestSetLogLevelRejectsGarbage(t *testing.T) {
	assert.Error(t, SetLogLevel("loud"))
	assert.NoError(t, SetLogLevel("info"))
}

func TestLogHelpersUseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	l := DefaultLogger()
	l.SetOutput(&buf)
	defer l.SetOutput(os.Stderr)
	require.NoError(t, SetLogLevel("info"))
	defer SetLogLevel("debug")

	LogDebug("hidden %d", 1)
	LogInfo("frame %d", 7)
	LogWarn("slow %s", "frame")
	LogError("lost %s", "device")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "frame 7")
	assert.Contains(t, out, "slow frame")
	assert.Contains(t, out, "lost device")
}
