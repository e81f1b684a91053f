package software

import (
	"testing"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox(t *testing.T, d *Device) (renderer.Buffer, renderer.Buffer) {
	t.Helper()
	vertices, indices := math.GenerateBoxGeometry(2, 2, 2, math.NewVec4(1, 0, 0, 1))
	vb, err := d.CreateBuffer(renderer.BufferDesc{Name: "box", Kind: renderer.BufferKindVertex, Vertices: vertices})
	require.NoError(t, err)
	ib, err := d.CreateBuffer(renderer.BufferDesc{Name: "box", Kind: renderer.BufferKindIndex, Indices: indices})
	require.NoError(t, err)
	return vb, ib
}

func TestDeviceTracksLiveBuffers(t *testing.T) {
	d := New(nil)
	vb, ib := newBox(t, d)
	assert.Equal(t, 2, d.LiveResources())

	require.NoError(t, vb.Release())
	assert.ErrorIs(t, vb.Release(), core.ErrResourceReleased)
	assert.Equal(t, 1, d.LiveResources())

	require.NoError(t, d.Release())
	assert.True(t, ib.IsReleased())
	assert.Equal(t, 0, d.LiveResources())

	_, err := d.CreateBuffer(renderer.BufferDesc{Kind: renderer.BufferKindConstant, ByteSize: 64})
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
}

func TestDeviceRejectsEmptyBuffers(t *testing.T) {
	d := New(nil)
	_, err := d.CreateBuffer(renderer.BufferDesc{Name: "empty", Kind: renderer.BufferKindVertex})
	assert.Error(t, err)
}

func TestCreateRenderTargetsValidatesSize(t *testing.T) {
	d := New(nil)
	_, _, err := d.CreateRenderTargets(0, 10, metadata.MSAADisable)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
	_, _, err = d.CreateRenderTargets(10, 10, metadata.MSAALevel(3))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	rtv, dsv, err := d.CreateRenderTargets(64, 32, metadata.MSAAFour)
	require.NoError(t, err)
	assert.Equal(t, 64, rtv.Width())
	assert.Equal(t, 32, dsv.Height())
	assert.Equal(t, 1, d.LiveTargets())

	d.ReleaseRenderTargets(rtv, dsv)
	assert.Equal(t, 0, d.LiveTargets())
}

func TestDrawIndexedFillsViewport(t *testing.T) {
	d := New(nil)
	vb, ib := newBox(t, d)
	rtv, dsv, err := d.CreateRenderTargets(64, 64, metadata.MSAADisable)
	require.NoError(t, err)

	dc := d.ImmediateContext()
	dc.SetRenderTargets(rtv, dsv)
	dc.SetViewport(renderer.NewViewport(64, 64))
	dc.ClearRenderTargetView(rtv, math.NewVec4(0, 0, 0, 1))
	dc.ClearDepthStencilView(dsv, 1, 0)

	view := math.NewMat4LookAtRH(math.NewVec3(0, 0, 5), math.NewVec3Zero(), math.NewVec3Up())
	proj := math.NewMat4PerspectiveFovRH(math.DegToRad(45), 1, 0.1, 100)
	err = dc.DrawIndexed(renderer.DrawCall{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		World:        math.NewMat4Identity(),
		View:         view,
		Projection:   proj,
		CullMode:     metadata.FaceCullModeBack,
		DepthTest:    true,
	})
	require.NoError(t, err)

	counters := dc.Counters()
	assert.Equal(t, 1, counters.DrawCalls)
	// only the two front facing triangles survive back face culling
	assert.Equal(t, 2, counters.Triangles)
	assert.Equal(t, 1, counters.ColourClears)
	assert.Equal(t, 1, counters.DepthClears)

	require.NoError(t, d.Present(rtv))
	img := d.Snapshot()
	require.NotNil(t, img)
	r, _, _, _ := img.At(32, 32).RGBA()
	assert.Greater(t, r, uint32(0x8000))
	r, _, _, _ = img.At(1, 1).RGBA()
	assert.Less(t, r, uint32(0x1000))
}

func TestDrawIndexedRejectsReleasedBuffers(t *testing.T) {
	d := New(nil)
	vb, ib := newBox(t, d)
	rtv, dsv, err := d.CreateRenderTargets(8, 8, metadata.MSAADisable)
	require.NoError(t, err)
	dc := d.ImmediateContext()
	dc.SetRenderTargets(rtv, dsv)
	dc.SetViewport(renderer.NewViewport(8, 8))

	require.NoError(t, vb.Release())
	err = dc.DrawIndexed(renderer.DrawCall{VertexBuffer: vb, IndexBuffer: ib})
	assert.ErrorIs(t, err, core.ErrResourceReleased)
}
