package host

import (
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/components"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/scene"
)

func (h *RenderHost) ID() core.GUID { return h.id }

func (h *RenderHost) Device() renderer.Device { return h.device }

func (h *RenderHost) DeviceContext() renderer.DeviceContext { return h.context }

func (h *RenderHost) EffectsManager() *effects.Manager { return h.effects }

func (h *RenderHost) Logger() core.LogSink { return h.logger }

func (h *RenderHost) Events() *core.EventBus { return h.events }

func (h *RenderHost) Camera() *components.Camera { return h.camera }

func (h *RenderHost) SetCamera(camera *components.Camera) {
	h.camera = camera
	h.InvalidateRender()
}

func (h *RenderHost) Root() *scene.GroupNode { return h.root }

func (h *RenderHost) SetOverlay(o Overlay) { h.overlay = o }

func (h *RenderHost) RenderTarget() renderer.RenderTargetView { return h.rtv }

func (h *RenderHost) DepthStencil() renderer.DepthStencilView { return h.dsv }

func (h *RenderHost) RenderContext() *renderer.RenderContext { return h.rc }

func (h *RenderHost) ClearColor() math.Vec4 { return h.clearColor }

func (h *RenderHost) SetClearColor(c math.Vec4) {
	h.clearColor = c
	h.InvalidateRender()
}

func (h *RenderHost) IsShadowMapEnabled() bool { return h.shadowMap }

func (h *RenderHost) SetShadowMapEnabled(enabled bool) {
	h.shadowMap = enabled
	h.InvalidateRender()
}

func (h *RenderHost) MSAA() metadata.MSAALevel { return h.msaa }

// SetMSAA recreates the render targets of a started host with the new sample count.
func (h *RenderHost) SetMSAA(level metadata.MSAALevel) error {
	if !level.IsValid() {
		return core.ErrInvalidConfig
	}
	if level == h.msaa {
		return nil
	}
	h.msaa = level
	return h.Resize(h.width, h.height)
}

// RenderTechnique names the technique used by nodes without one of their own.
func (h *RenderHost) RenderTechnique() string { return h.technique }

// IsDeferredLighting is always false; the pipeline is forward only.
func (h *RenderHost) IsDeferredLighting() bool { return false }

func (h *RenderHost) RenderConfiguration() metadata.RenderConfiguration { return h.configuration }

func (h *RenderHost) SetRenderConfiguration(cfg metadata.RenderConfiguration) {
	h.configuration = cfg
	h.InvalidateRender()
}

func (h *RenderHost) ShowRenderDetail() metadata.RenderDetail { return h.renderDetail }

func (h *RenderHost) SetShowRenderDetail(detail metadata.RenderDetail) {
	h.renderDetail = detail
	h.InvalidateRender()
}

func (h *RenderHost) EnableRenderFrustum() bool { return h.enableFrustum }

func (h *RenderHost) SetEnableRenderFrustum(enable bool) {
	h.enableFrustum = enable
	h.InvalidateRender()
}

func (h *RenderHost) ActualWidth() float32 { return float32(h.width) }

func (h *RenderHost) ActualHeight() float32 { return float32(h.height) }

// IsBusy is true while a frame is being drawn.
func (h *RenderHost) IsBusy() bool { return h.busy.Load() }

// IsRendering is true between entering and leaving UpdateAndRender.
func (h *RenderHost) IsRendering() bool { return h.rendering.Load() }

func (h *RenderHost) IsStarted() bool { return h.started }

func (h *RenderHost) RenderStatistics() metadata.RenderStatistics { return h.stats }

// Snapshot returns the buckets of the last frame, nil before the first one.
func (h *RenderHost) Snapshot() *FrameSnapshot { return h.snapshot }

func (h *RenderHost) PerFrameRenderables() []scene.Node {
	if h.snapshot == nil {
		return nil
	}
	return h.snapshot.Renderables()
}

func (h *RenderHost) PerFrameLights() []cores.LightSource {
	if h.snapshot == nil {
		return nil
	}
	return h.snapshot.Lights()
}

func (h *RenderHost) PerFrameGeneralRenderCores() []cores.RenderCore {
	if h.snapshot == nil {
		return nil
	}
	return h.snapshot.GeneralRenderCores()
}

func (h *RenderHost) PerFrameGeneralCoresWithPostEffect() []cores.PostEffectTarget {
	if h.snapshot == nil {
		return nil
	}
	return h.snapshot.GeneralCoresWithPostEffect()
}
