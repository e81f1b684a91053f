package testbed

import (
	"context"
	"testing"
	"time"

	"github.com/spaghettifunk/retina/engine"
	"github.com/spaghettifunk/retina/engine/config"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestbedRendersAndHitTests(t *testing.T) {
	settings := config.Default()
	settings.Width, settings.Height = 320, 200
	settings.FrameInterval = "1ms"
	settings.LogLevel = "error"

	tb := NewTestGame(&engine.ApplicationConfig{Name: "testbed", Host: settings, MaxFrames: hitTestEvery + 1}, core.NopSink{})
	e, err := engine.New(tb.Game, software.NewDevice, core.NopSink{})
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	defer e.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	state := tb.State.(*gameState)
	assert.Equal(t, uint64(hitTestEvery+1), e.Frames())
	assert.Equal(t, 1, state.sinceHitTest)
	assert.True(t, state.viewBox.IsAttached())
	assert.NotEqual(t, math.NewQuatIdentity(), state.spinner.Transform.Rotation)

	stats := e.Host().RenderStatistics()
	assert.Positive(t, stats.Triangles)
	assert.Equal(t, 2, stats.NumLights)

	dev, ok := e.Host().Device().(*software.Device)
	require.True(t, ok)
	assert.NotNil(t, dev.Snapshot())
}
