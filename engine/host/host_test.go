package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/renderer/software"
	"github.com/spaghettifunk/retina/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCore struct {
	*cores.EmptyCore
	name     string
	log      *[]string
	err      error
	panicMsg string
	onRender func()
}

func newRecordingCore(name string, log *[]string) *recordingCore {
	return &recordingCore{EmptyCore: cores.NewEmptyCore(), name: name, log: log}
}

func (c *recordingCore) Render(*renderer.RenderContext, renderer.DeviceContext) error {
	if !c.CanRender() {
		return nil
	}
	*c.log = append(*c.log, c.name)
	if c.onRender != nil {
		c.onRender()
	}
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	return c.err
}

type recordingLight struct {
	*recordingCore
}

func (c recordingLight) Light() renderer.LightParams {
	return renderer.LightParams{Kind: renderer.LightKindAmbient, Colour: math.NewVec4(1, 1, 1, 1)}
}

type recordingPost struct {
	*recordingCore
}

func (c recordingPost) EffectName() string { return c.name }

func (c recordingPost) RenderPostEffect(_ *renderer.RenderContext, _ renderer.DeviceContext, targets []cores.PostEffectTarget) error {
	*c.log = append(*c.log, c.name)
	return nil
}

type recordingNode struct {
	scene.NodeBase
	core cores.RenderCore
}

func newRecordingNode(name string, rt metadata.RenderType, c cores.RenderCore) *recordingNode {
	n := &recordingNode{core: c}
	n.InitNode(n, name, rt)
	return n
}

func (n *recordingNode) OnCreateRenderCore() cores.RenderCore { return n.core }

type fixture struct {
	host   *RenderHost
	device *software.Device
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	f := &fixture{}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 800, 600
	if mutate != nil {
		mutate(&cfg)
	}
	factory := func(logger core.LogSink) (renderer.Device, error) {
		f.device = software.New(logger)
		return f.device, nil
	}
	h, err := New(cfg, factory, core.NopSink{})
	require.NoError(t, err)
	f.host = h
	return f
}

func TestNewValidatesConfig(t *testing.T) {
	factory := func(core.LogSink) (renderer.Device, error) { return software.New(nil), nil }

	_, err := New(Config{Width: 0, Height: 10}, factory, nil)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
	_, err = New(Config{Width: 10, Height: 10, MSAA: 3}, factory, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	_, err = New(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestRenderBeforeStartIsRefused(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.host.UpdateAndRender())
	require.NoError(t, f.host.Resize(320, 200))
	assert.Equal(t, float32(320), f.host.ActualWidth())
}

func TestResizeThenRender(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.host.StartD3D(800, 600))
	defer f.host.EndD3D()

	resized := 0
	f.host.Events().Register(core.EVENT_CODE_RESIZED, t, func(_ core.SystemEventCode, _, _ interface{}, data core.EventContext) bool {
		resized++
		assert.Equal(t, uint32(1024), data.Data.U32[0])
		return true
	})

	require.NoError(t, f.host.Resize(1024, 768))
	require.True(t, f.host.UpdateAndRender())
	assert.Equal(t, 1, resized)
	assert.Equal(t, 1024, f.host.RenderTarget().Width())
	assert.Equal(t, 768, f.host.RenderTarget().Height())
	assert.Equal(t, 1, f.device.LiveTargets())

	img := f.device.Snapshot()
	require.NotNil(t, img)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 768, img.Bounds().Dy())

	assert.ErrorIs(t, f.host.Resize(-1, 10), core.ErrInvalidSize)
}

func TestPassOrder(t *testing.T) {
	f := newFixture(t, nil)
	var log []string
	h := f.host

	// tree order differs from pass order on purpose
	require.NoError(t, h.AddNode(newRecordingNode("post", metadata.RenderTypePostProc, recordingPost{newRecordingCore("post", &log)})))
	require.NoError(t, h.AddNode(newRecordingNode("particle", metadata.RenderTypeParticle, newRecordingCore("particle", &log))))
	require.NoError(t, h.AddNode(newRecordingNode("light", metadata.RenderTypeLight, recordingLight{newRecordingCore("light", &log)})))
	require.NoError(t, h.AddNode(newRecordingNode("transparent", metadata.RenderTypeTransparent, newRecordingCore("transparent", &log))))
	overlay := scene.NewScreenSpacedNode("overlay")
	require.NoError(t, overlay.AddChild(newRecordingNode("overlay.child", metadata.RenderTypeOpaque, newRecordingCore("screenspaced", &log))))
	require.NoError(t, h.AddNode(overlay))
	require.NoError(t, h.AddNode(newRecordingNode("opaque", metadata.RenderTypeOpaque, newRecordingCore("opaque", &log))))
	require.NoError(t, h.AddNode(newRecordingNode("preproc", metadata.RenderTypePreProc, newRecordingCore("preproc", &log))))

	require.NoError(t, h.StartD3D(800, 600))
	defer h.EndD3D()
	require.True(t, h.UpdateAndRender())
	assert.Equal(t, []string{"preproc", "opaque", "transparent", "particle", "light", "screenspaced", "post"}, log)
	assert.Equal(t, 1, h.RenderStatistics().NumLights)
	assert.Equal(t, 1, h.RenderStatistics().NumScreenSpaced)

	log = nil
	cfg := h.RenderConfiguration()
	cfg.RenderLights = false
	h.SetRenderConfiguration(cfg)
	require.True(t, h.UpdateAndRender())
	assert.NotContains(t, log, "light")
}

func TestClearGating(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	require.NoError(t, h.StartD3D(64, 64))
	defer h.EndD3D()

	require.True(t, h.UpdateAndRender())
	counters := h.DeviceContext().Counters()
	assert.Equal(t, 1, counters.ColourClears)
	assert.Equal(t, 1, counters.DepthClears)
	assert.Equal(t, 1, counters.Presents)

	cfg := h.RenderConfiguration()
	cfg.ClearEachFrame = false
	h.SetRenderConfiguration(cfg)
	require.True(t, h.UpdateAndRender())
	assert.Equal(t, 0, h.DeviceContext().Counters().ColourClears)

	dc := h.DeviceContext()
	dc.ResetCounters()
	h.ClearRenderTarget(dc, false, true)
	assert.Equal(t, 0, dc.Counters().ColourClears)
	assert.Equal(t, 1, dc.Counters().DepthClears)
}

func TestFrameFailuresAreReported(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	var log []string
	var reported []error
	var frames []uint32
	h.Events().Register(core.EVENT_CODE_EXCEPTION_OCCURRED, t, func(_ core.SystemEventCode, _, _ interface{}, data core.EventContext) bool {
		reported = append(reported, data.Err)
		frames = append(frames, data.Data.U32[0])
		return true
	})

	panicking := newRecordingCore("panics", &log)
	panicking.panicMsg = "boom"
	panicNode := newRecordingNode("panics", metadata.RenderTypeOpaque, panicking)
	require.NoError(t, h.AddNode(panicNode))
	require.NoError(t, h.StartD3D(64, 64))
	defer h.EndD3D()

	assert.False(t, h.UpdateAndRender())
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], core.ErrFrameAborted)
	assert.Contains(t, reported[0].Error(), "boom")
	assert.False(t, h.IsRendering())
	assert.False(t, h.IsBusy())

	failure := errors.New("draw failed")
	panicking.panicMsg = ""
	panicking.err = failure
	assert.False(t, h.UpdateAndRender())
	require.Len(t, reported, 2)
	assert.ErrorIs(t, reported[1], failure)
	assert.ErrorIs(t, reported[1], core.ErrFrameAborted)
	assert.Equal(t, []uint32{1, 2}, frames)

	require.True(t, h.RemoveNode(panicNode))
	assert.True(t, h.UpdateAndRender())
}

func TestUpdateAndRenderIsNotReentrant(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	var log []string
	nested := true
	rendering := false
	c := newRecordingCore("nested", &log)
	c.onRender = func() {
		rendering = h.IsRendering() && h.IsBusy()
		nested = h.UpdateAndRender()
	}
	require.NoError(t, h.AddNode(newRecordingNode("nested", metadata.RenderTypeOpaque, c)))
	require.NoError(t, h.StartD3D(64, 64))
	defer h.EndD3D()

	assert.True(t, h.UpdateAndRender())
	assert.False(t, nested)
	assert.True(t, rendering)
	assert.Len(t, log, 1)
}

func TestInvalidateIsCoalesced(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	require.NoError(t, h.StartD3D(64, 64))
	defer h.EndD3D()

	assert.True(t, h.Tick())
	assert.False(t, h.Tick())

	h.InvalidateRender()
	h.InvalidateRender()
	h.InvalidateRender()
	assert.True(t, h.Tick())
	assert.False(t, h.Tick())
	assert.Equal(t, uint64(2), h.RenderStatistics().FrameNumber)
}

func TestPostEffectCoresAreSubsetOfGeneral(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	tagged := scene.NewBoxNode("tagged", 1, 1, 1, math.NewVec4(1, 0, 0, 1))
	tagged.AddPostEffect(cores.DefaultOutlineEffectName)
	plain := scene.NewBoxNode("plain", 1, 1, 1, math.NewVec4(0, 1, 0, 1))
	plain.Transform.SetPosition(math.NewVec3(2, 0, 0))
	require.NoError(t, h.AddNode(tagged))
	require.NoError(t, h.AddNode(plain))
	require.NoError(t, h.AddNode(scene.NewOutlineEffectNode("outline", "", math.NewVec4(1, 1, 0, 1))))
	require.NoError(t, h.StartD3D(200, 200))
	defer h.EndD3D()

	require.True(t, h.UpdateAndRender())
	general := h.PerFrameGeneralRenderCores()
	withPost := h.PerFrameGeneralCoresWithPostEffect()
	require.Len(t, withPost, 1)
	for _, c := range withPost {
		assert.Contains(t, general, cores.RenderCore(c))
	}
	assert.Same(t, tagged.RenderCore(), withPost[0])
	assert.Equal(t, 1, h.RenderStatistics().NumPostEffectCores)
	assert.Greater(t, h.DeviceContext().Counters().Lines, 0)
}

func TestFrustumCulling(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.EnableRenderFrustum = true })
	h := f.host
	visible := scene.NewBoxNode("visible", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	hidden := scene.NewBoxNode("hidden", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	hidden.Transform.SetPosition(math.NewVec3(1000, 0, 0))
	require.NoError(t, h.AddNode(visible))
	require.NoError(t, h.AddNode(hidden))

	cfg := h.RenderConfiguration()
	cfg.AutoUpdateOctree = true
	h.SetRenderConfiguration(cfg)

	require.NoError(t, h.StartD3D(200, 200))
	defer h.EndD3D()
	require.True(t, h.UpdateAndRender())
	assert.Equal(t, 1, h.RenderStatistics().NumCulled)
	assert.NotContains(t, h.PerFrameGeneralRenderCores(), hidden.RenderCore())
	assert.Contains(t, h.PerFrameGeneralRenderCores(), visible.RenderCore())
}

func TestEndD3DReleasesAndRestartReattaches(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	box := scene.NewBoxNode("box", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, h.AddNode(box))
	require.NoError(t, h.StartD3D(64, 64))
	first := f.device
	assert.Equal(t, 2, first.LiveResources())
	boxCore := box.RenderCore()

	h.EndD3D()
	assert.False(t, box.IsAttached())
	assert.False(t, boxCore.IsAttached())
	assert.Equal(t, 0, first.LiveResources())
	assert.Equal(t, 0, first.LiveTargets())
	assert.Nil(t, h.Device())
	h.EndD3D()

	require.NoError(t, h.StartD3D(64, 64))
	defer h.EndD3D()
	assert.NotSame(t, first, f.device)
	assert.Same(t, boxCore, box.RenderCore())
	assert.Equal(t, 2, f.device.LiveResources())
	assert.True(t, h.UpdateAndRender())
}

func TestStartFailsOnMissingTechnique(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.RenderTechnique = "missing" })
	h := f.host
	require.NoError(t, h.AddNode(scene.NewGroupNode("group")))

	err := h.StartD3D(64, 64)
	assert.ErrorIs(t, err, core.ErrTechniqueNotFound)
	assert.False(t, h.IsStarted())
	assert.Nil(t, h.Device())
}

func TestHitTestThroughHost(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	box := scene.NewBoxNode("box", 2, 2, 2, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, h.AddNode(box))
	require.NoError(t, h.StartD3D(800, 600))
	defer h.EndD3D()

	hits := h.HitTest(400, 300)
	require.Len(t, hits, 1)
	assert.Same(t, box, hits[0].Node)
	assert.InDelta(t, 9, hits[0].Distance, 0.2)
	assert.Empty(t, h.HitTest(5, 5))
}

func TestRunEmitsLoopEvents(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	require.NoError(t, h.StartD3D(32, 32))
	defer h.EndD3D()

	started, stopped := 0, 0
	h.Events().Register(core.EVENT_CODE_START_RENDER_LOOP, t, func(core.SystemEventCode, interface{}, interface{}, core.EventContext) bool {
		started++
		return true
	})
	var stoppedAt uint32
	h.Events().Register(core.EVENT_CODE_STOP_RENDER_LOOP, t, func(_ core.SystemEventCode, _, _ interface{}, data core.EventContext) bool {
		stopped++
		stoppedAt = data.Data.U32[0]
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx, time.Millisecond))
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, stopped)
	assert.GreaterOrEqual(t, h.RenderStatistics().FrameNumber, uint64(1))
	assert.Equal(t, uint32(h.RenderStatistics().FrameNumber), stoppedAt)
}

func TestNewRenderTargetCarriesSize(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	var sizes [][2]uint32
	var targets []interface{}
	h.Events().Register(core.EVENT_CODE_NEW_RENDER_TARGET, t, func(_ core.SystemEventCode, _, _ interface{}, data core.EventContext) bool {
		sizes = append(sizes, [2]uint32{data.Data.U32[0], data.Data.U32[1]})
		targets = append(targets, data.Payload)
		return true
	})

	require.NoError(t, h.StartD3D(800, 600))
	defer h.EndD3D()
	require.NoError(t, h.Resize(320, 240))

	assert.Equal(t, [][2]uint32{{800, 600}, {320, 240}}, sizes)
	require.Len(t, targets, 2)
	assert.Equal(t, h.RenderTarget(), targets[1])
}

func TestFailedGeometrySwapKeepsRendering(t *testing.T) {
	f := newFixture(t, nil)
	h := f.host
	box := scene.NewBoxNode("box", 2, 2, 2, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, h.AddNode(box))
	require.NoError(t, h.StartD3D(200, 200))
	defer h.EndD3D()
	require.True(t, h.UpdateAndRender())

	before := box.Geometry()
	bounds := box.Bounds()
	live := f.device.LiveResources()

	empty := metadata.NewGeometry("empty", nil, nil, metadata.TopologyTriangleList)
	require.Error(t, box.SetGeometry(empty))
	assert.Same(t, before, box.Geometry())
	assert.Equal(t, bounds, box.Bounds())
	assert.Equal(t, live, f.device.LiveResources())

	for i := 0; i < 3; i++ {
		assert.True(t, h.UpdateAndRender())
	}
	assert.Positive(t, h.RenderStatistics().Triangles)

	vertices, indices := math.GenerateBoxGeometry(4, 4, 4, math.NewVec4(0, 1, 0, 1))
	bigger := metadata.NewGeometry("bigger", vertices, indices, metadata.TopologyTriangleList)
	require.NoError(t, box.SetGeometry(bigger))
	assert.Same(t, bigger, box.Geometry())
	assert.NotEqual(t, bounds, box.Bounds())
	assert.Equal(t, live, f.device.LiveResources())
	assert.True(t, h.UpdateAndRender())
}
