package host

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/components"
	"github.com/spaghettifunk/retina/engine/renderer/d2d"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/scene"
)

// Overlay draws 2D content on top of a finished 3D frame.
type Overlay interface {
	Draw(target renderer.RenderTargetView, stats metadata.RenderStatistics, detail metadata.RenderDetail) error
}

/** @brief Host settings fixed at construction, most can be changed later. */
type Config struct {
	Width               int
	Height              int
	ClearColor          math.Vec4
	MSAA                metadata.MSAALevel
	ShadowMapEnabled    bool
	RenderTechnique     string
	Render              metadata.RenderConfiguration
	RenderDetail        metadata.RenderDetail
	EnableRenderFrustum bool
}

func DefaultConfig() Config {
	return Config{
		Width:           1280,
		Height:          720,
		ClearColor:      math.NewVec4(0.1, 0.1, 0.12, 1),
		MSAA:            metadata.MSAADisable,
		RenderTechnique: effects.TechniqueMesh,
		Render:          metadata.DefaultRenderConfiguration(),
	}
}

/**
 * @brief Owns the device, its render targets and the scene root, and
 * draws one frame per UpdateAndRender call in a fixed pass order.
 */
type RenderHost struct {
	id      core.GUID
	logger  core.LogSink
	factory renderer.DeviceFactory
	effects *effects.Manager
	events  *core.EventBus
	camera  *components.Camera
	root    *scene.GroupNode
	overlay Overlay

	clearColor    math.Vec4
	msaa          metadata.MSAALevel
	shadowMap     bool
	technique     string
	configuration metadata.RenderConfiguration
	renderDetail  metadata.RenderDetail
	enableFrustum bool

	device  renderer.Device
	context renderer.DeviceContext
	rtv     renderer.RenderTargetView
	dsv     renderer.DepthStencilView
	width   int
	height  int
	started bool

	rc          *renderer.RenderContext
	snapshot    *FrameSnapshot
	stats       metadata.RenderStatistics
	metrics     *core.FrameMetrics
	clock       *core.Clock
	frameNumber uint64

	invalidated atomic.Bool
	rendering   atomic.Bool
	busy        atomic.Bool
}

func New(cfg Config, factory renderer.DeviceFactory, logger core.LogSink) (*RenderHost, error) {
	if factory == nil {
		return nil, fmt.Errorf("render host: nil device factory: %w", core.ErrInvalidConfig)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("render host: %dx%d: %w", cfg.Width, cfg.Height, core.ErrInvalidSize)
	}
	if cfg.MSAA == 0 {
		cfg.MSAA = metadata.MSAADisable
	}
	if !cfg.MSAA.IsValid() {
		return nil, fmt.Errorf("render host: msaa %d: %w", cfg.MSAA, core.ErrInvalidConfig)
	}
	if cfg.RenderTechnique == "" {
		cfg.RenderTechnique = effects.TechniqueMesh
	}
	if logger == nil {
		logger = core.DefaultLogger()
	}

	h := &RenderHost{
		id:            core.NewGUID(),
		logger:        logger,
		factory:       factory,
		effects:       effects.NewDefaultManager(),
		events:        core.NewEventBus(),
		camera:        components.NewCamera(),
		root:          scene.NewGroupNode("root"),
		overlay:       d2d.NewStatisticsOverlay(),
		clearColor:    cfg.ClearColor,
		msaa:          cfg.MSAA,
		shadowMap:     cfg.ShadowMapEnabled,
		technique:     cfg.RenderTechnique,
		configuration: cfg.Render,
		renderDetail:  cfg.RenderDetail,
		enableFrustum: cfg.EnableRenderFrustum,
		width:         cfg.Width,
		height:        cfg.Height,
		rc:            renderer.NewRenderContext(),
		metrics:       core.NewFrameMetrics(),
		clock:         core.NewClock(),
	}
	return h, nil
}

/**
 * @brief Creates the device and the render targets and attaches the scene.
 * Calling it again on a started host only resizes.
 */
func (h *RenderHost) StartD3D(width, height int) error {
	if h.started {
		return h.Resize(width, height)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("start: %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	device, err := h.factory(h.logger)
	if err != nil {
		return fmt.Errorf("start: create device: %w", err)
	}
	h.device = device
	h.context = device.ImmediateContext()
	h.width, h.height = width, height
	if err := h.createTargets(); err != nil {
		h.releaseDevice()
		return fmt.Errorf("start: %w", err)
	}
	h.started = true

	if err := h.root.Attach(h); err != nil {
		h.started = false
		h.releaseTargets()
		h.releaseDevice()
		return fmt.Errorf("start: attach scene: %w", err)
	}
	h.clock.Start()
	h.logger.Info("render host started", "id", core.ShortID(h.id), "width", width, "height", height, "msaa", h.msaa)
	h.InvalidateRender()
	return nil
}

// EndD3D detaches the scene, which frees every node's device resources, and releases the device.
func (h *RenderHost) EndD3D() {
	if !h.started {
		return
	}
	h.root.Detach()
	h.releaseTargets()
	h.releaseDevice()
	h.started = false
	h.snapshot = nil
	h.clock.Stop()
	h.logger.Info("render host stopped", "id", core.ShortID(h.id), "frames", h.frameNumber)
}

// Resize recreates the render targets. Before StartD3D it only records the size.
func (h *RenderHost) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize: %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	if h.rendering.Load() {
		return fmt.Errorf("resize: frame in flight: %w", core.ErrDeviceNotReady)
	}
	h.width, h.height = width, height
	if !h.started {
		return nil
	}
	h.releaseTargets()
	if err := h.createTargets(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	ctx := core.EventContext{}
	ctx.Data.U32[0], ctx.Data.U32[1] = uint32(width), uint32(height)
	h.events.Fire(core.EVENT_CODE_RESIZED, h, ctx)
	h.InvalidateRender()
	return nil
}

func (h *RenderHost) createTargets() error {
	rtv, dsv, err := h.device.CreateRenderTargets(h.width, h.height, h.msaa)
	if err != nil {
		return fmt.Errorf("render targets %dx%d: %w", h.width, h.height, err)
	}
	h.rtv, h.dsv = rtv, dsv
	ctx := core.EventContext{Payload: rtv}
	ctx.Data.U32[0], ctx.Data.U32[1] = uint32(h.width), uint32(h.height)
	h.events.Fire(core.EVENT_CODE_NEW_RENDER_TARGET, h, ctx)
	return nil
}

func (h *RenderHost) releaseTargets() {
	if h.device != nil && h.rtv != nil {
		h.device.ReleaseRenderTargets(h.rtv, h.dsv)
	}
	h.rtv, h.dsv = nil, nil
}

func (h *RenderHost) releaseDevice() {
	if h.device == nil {
		return
	}
	if err := h.device.Release(); err != nil {
		h.logger.Warn("device release", "err", err)
	}
	h.device = nil
	h.context = nil
}

// InvalidateRender requests a frame on the next Tick. Safe from any goroutine.
func (h *RenderHost) InvalidateRender() {
	h.invalidated.Store(true)
}

/**
 * @brief Draws one frame. Returns false when the host is not started,
 * a frame is already in flight, or the frame failed. Failures, panics
 * included, are published as EVENT_CODE_EXCEPTION_OCCURRED and leave the
 * host usable.
 */
func (h *RenderHost) UpdateAndRender() (ok bool) {
	if !h.rendering.CompareAndSwap(false, true) {
		return false
	}
	defer h.rendering.Store(false)
	if !h.started {
		return false
	}
	h.busy.Store(true)
	defer h.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			h.abortFrame(fmt.Errorf("%w: panic: %v", core.ErrFrameAborted, r))
			ok = false
		}
	}()
	if err := h.renderFrame(); err != nil {
		h.abortFrame(fmt.Errorf("%w: %w", core.ErrFrameAborted, err))
		return false
	}
	return true
}

func (h *RenderHost) abortFrame(err error) {
	h.logger.Error("frame aborted", "frame", h.frameNumber, "err", err)
	ctx := core.EventContext{Err: err}
	ctx.Data.U32[0] = uint32(h.frameNumber)
	h.events.Fire(core.EVENT_CODE_EXCEPTION_OCCURRED, h, ctx)
}

func (h *RenderHost) renderFrame() error {
	h.clock.Update()
	elapsed := h.clock.Elapsed()
	h.clock.Start()
	h.metrics.Update(elapsed)
	h.frameNumber++

	rc := h.rc
	rc.Update(h.camera, float32(h.width), float32(h.height))
	rc.FrameNumber = h.frameNumber
	rc.RenderTarget, rc.DepthStencil = h.rtv, h.dsv
	rc.EnableRenderFrustum = h.enableFrustum
	rc.Lights = rc.Lights[:0]

	h.root.UpdateWorld(math.NewMat4Identity())
	if h.configuration.AutoUpdateOctree {
		h.root.RefreshWorldBounds()
	}
	if h.configuration.UpdatePerFrameData || h.snapshot == nil {
		h.snapshot = buildSnapshot(rc, h.root, h.frameNumber, h.enableFrustum)
	}
	s := h.snapshot
	dc := h.context
	dc.ResetCounters()

	h.SetDefaultRenderTargets(h.configuration.ClearEachFrame)

	if h.configuration.RenderLights {
		lights := make([]renderer.LightParams, 0, len(s.lights))
		for _, l := range s.lights {
			if l.CanRender() {
				lights = append(lights, l.Light())
			}
		}
		dc.SetLights(lights)
	} else {
		dc.SetLights(nil)
	}

	for _, c := range s.preProc {
		if err := c.Render(rc, dc); err != nil {
			return fmt.Errorf("pre-process pass: %w", err)
		}
	}
	for _, c := range s.general {
		if err := c.Render(rc, dc); err != nil {
			return fmt.Errorf("general pass: %w", err)
		}
	}
	if h.configuration.RenderLights {
		for _, l := range s.lights {
			if err := l.Render(rc, dc); err != nil {
				return fmt.Errorf("light pass: %w", err)
			}
		}
	}
	for _, n := range s.screenSpaced {
		if err := n.Render(rc, dc); err != nil {
			return fmt.Errorf("screen spaced pass: %w", err)
		}
	}
	for _, p := range s.postEffects {
		if err := p.RenderPostEffect(rc, dc, s.withPost); err != nil {
			return fmt.Errorf("post effect %q: %w", p.EffectName(), err)
		}
	}

	h.updateStatistics(s, dc.Counters())
	if h.configuration.RenderD2D && h.overlay != nil {
		if err := h.overlay.Draw(h.rtv, h.stats, h.renderDetail); err != nil {
			return fmt.Errorf("2d overlay: %w", err)
		}
	}
	if err := h.device.Present(h.rtv); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

func (h *RenderHost) updateStatistics(s *FrameSnapshot, counters renderer.Counters) {
	p := h.camera.Position
	h.stats = metadata.RenderStatistics{
		FrameNumber:        h.frameNumber,
		FPS:                h.metrics.FPSValue(),
		FrameTimeMS:        h.metrics.FrameTime(),
		NumRenderables:     len(s.renderables),
		NumLights:          len(s.lights),
		NumGeneralCores:    len(s.general),
		NumPostEffectCores: len(s.withPost),
		NumScreenSpaced:    len(s.screenSpaced),
		NumCulled:          s.culled,
		DrawCalls:          counters.DrawCalls,
		Triangles:          counters.Triangles,
		CameraPosition:     [3]float32{p.X, p.Y, p.Z},
	}
}

// SetDefaultRenderTargets binds the host targets and the full viewport, optionally clearing both.
func (h *RenderHost) SetDefaultRenderTargets(clear bool) {
	if h.context == nil {
		return
	}
	h.context.SetRenderTargets(h.rtv, h.dsv)
	h.context.SetViewport(renderer.NewViewport(float32(h.width), float32(h.height)))
	if clear {
		h.ClearRenderTarget(h.context, true, true)
	}
}

// ClearRenderTarget clears the colour target and the depth target independently.
func (h *RenderHost) ClearRenderTarget(dc renderer.DeviceContext, clearBackBuffer, clearDepthStencil bool) {
	if clearBackBuffer && h.rtv != nil {
		dc.ClearRenderTargetView(h.rtv, h.clearColor)
	}
	if clearDepthStencil && h.dsv != nil {
		dc.ClearDepthStencilView(h.dsv, 1, 0)
	}
}

// HitTest picks the scene at a pixel of the host target, nearest hit first.
func (h *RenderHost) HitTest(x, y float32) []scene.HitTestResult {
	if !h.started || h.rendering.Load() {
		return nil
	}
	h.rc.Update(h.camera, float32(h.width), float32(h.height))
	h.root.UpdateWorld(math.NewMat4Identity())
	return scene.HitTestScreenPoint(h.rc, h.root, x, y)
}

// AddNode attaches n under the scene root.
func (h *RenderHost) AddNode(n scene.Node) error {
	return h.root.AddChild(n)
}

func (h *RenderHost) RemoveNode(n scene.Node) bool {
	return h.root.RemoveChild(n)
}
