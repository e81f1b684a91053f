package cores

import (
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
)

// Drawable issues device work for one frame.
type Drawable interface {
	Render(rc *renderer.RenderContext, dc renderer.DeviceContext) error
}

/**
 * @brief Device side state of a scene node. A core is created once per
 * node, acquires its buffers on Attach and releases them on Detach. It can
 * be attached again afterwards.
 */
type RenderCore interface {
	Drawable
	Attach(device renderer.Device, technique *effects.Technique) error
	Detach()
	IsAttached() bool
	Technique() *effects.Technique
	SetModelMatrix(m math.Mat4)
	ModelMatrix() math.Mat4
	SetVisible(visible bool)
	// CanRender is true when attached and visible.
	CanRender() bool
}

// PostEffectTarget is implemented by cores that post effects can be applied to.
type PostEffectTarget interface {
	RenderCore
	HasPostEffect(name string) bool
	RenderWithPass(rc *renderer.RenderContext, dc renderer.DeviceContext, pass effects.Pass, tint math.Vec4) error
}

// PostEffectRenderer applies an effect over the targets tagged with its name.
type PostEffectRenderer interface {
	RenderCore
	EffectName() string
	RenderPostEffect(rc *renderer.RenderContext, dc renderer.DeviceContext, targets []PostEffectTarget) error
}

// LightSource contributes lights to the frame.
type LightSource interface {
	RenderCore
	Light() renderer.LightParams
}

// baseCore carries the lifecycle state shared by every core.
type baseCore struct {
	technique *effects.Technique
	attached  bool
	visible   bool
	model     math.Mat4
}

func newBaseCore() baseCore {
	return baseCore{visible: true, model: math.NewMat4Identity()}
}

func (b *baseCore) bind(technique *effects.Technique) {
	b.technique = technique
	b.attached = true
}

func (b *baseCore) unbind() {
	b.technique = nil
	b.attached = false
}

func (b *baseCore) IsAttached() bool { return b.attached }
func (b *baseCore) Technique() *effects.Technique { return b.technique }
func (b *baseCore) SetModelMatrix(m math.Mat4) { b.model = m }
func (b *baseCore) ModelMatrix() math.Mat4 { return b.model }
func (b *baseCore) SetVisible(visible bool) { b.visible = visible }
func (b *baseCore) CanRender() bool { return b.attached && b.visible }

// EmptyCore backs nodes that only group children.
type EmptyCore struct {
	baseCore
}

func NewEmptyCore() *EmptyCore {
	return &EmptyCore{baseCore: newBaseCore()}
}

func (c *EmptyCore) Attach(_ renderer.Device, technique *effects.Technique) error {
	c.bind(technique)
	return nil
}

func (c *EmptyCore) Detach() {
	c.unbind()
}

func (c *EmptyCore) Render(*renderer.RenderContext, renderer.DeviceContext) error {
	return nil
}
