package cores

import (
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
)

// LightCore appends its light to the frame during the light pass.
type LightCore struct {
	baseCore
	params renderer.LightParams
}

func NewLightCore(params renderer.LightParams) *LightCore {
	return &LightCore{baseCore: newBaseCore(), params: params}
}

func (c *LightCore) Attach(_ renderer.Device, technique *effects.Technique) error {
	c.bind(technique)
	return nil
}

func (c *LightCore) Detach() {
	c.unbind()
}

func (c *LightCore) SetLight(params renderer.LightParams) {
	c.params = params
}

// Light returns the parameters with positions and directions moved to world space.
func (c *LightCore) Light() renderer.LightParams {
	p := c.params
	p.Position = p.Position.Transform(c.model)
	p.Direction = c.model.TransformNormal(p.Direction)
	return p
}

func (c *LightCore) Render(rc *renderer.RenderContext, _ renderer.DeviceContext) error {
	if !c.CanRender() {
		return nil
	}
	rc.Lights = append(rc.Lights, c.Light())
	return nil
}
