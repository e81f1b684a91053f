package d2d

import (
	"testing"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesFollowDetailFlags(t *testing.T) {
	stats := metadata.RenderStatistics{FPS: 60, FrameTimeMS: 16.6, DrawCalls: 4, Triangles: 12}

	assert.Empty(t, Lines(stats, metadata.RenderDetailNone))
	assert.Len(t, Lines(stats, metadata.RenderDetailFPS), 1)
	assert.Len(t, Lines(stats, metadata.RenderDetailStatistics), 3)

	lines := Lines(stats, metadata.RenderDetailFPS|metadata.RenderDetailTriangle)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "FPS: 60.0")
	assert.Equal(t, "Draw calls: 4  Triangles: 12", lines[1])
}

func TestDrawPaintsPanel(t *testing.T) {
	device := software.New(nil)
	rtv, _, err := device.CreateRenderTargets(200, 100, metadata.MSAADisable)
	require.NoError(t, err)
	device.ImmediateContext().ClearRenderTargetView(rtv, math.NewVec4(0, 0, 0, 0))

	o := NewStatisticsOverlay()
	require.NoError(t, o.Draw(rtv, metadata.RenderStatistics{FPS: 30}, metadata.RenderDetailFPS))
	require.NoError(t, device.Present(rtv))

	img := device.Snapshot()
	require.NotNil(t, img)
	_, _, _, a := img.At(int(o.Margin)+10, int(o.Margin)+10).RGBA()
	assert.NotZero(t, a)
	_, _, _, a = img.At(199, 99).RGBA()
	assert.Zero(t, a)
}

type plainTarget struct{}

func (plainTarget) ID() core.GUID { return core.GUID{} }
func (plainTarget) Width() int    { return 1 }
func (plainTarget) Height() int   { return 1 }

func TestDrawWithoutCanvas(t *testing.T) {
	o := NewStatisticsOverlay()
	assert.NoError(t, o.Draw(plainTarget{}, metadata.RenderStatistics{}, metadata.RenderDetailNone))
	assert.ErrorIs(t, o.Draw(plainTarget{}, metadata.RenderStatistics{}, metadata.RenderDetailFPS), ErrNoCanvas)
}
