package cores

import (
	"fmt"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
)

const DefaultOutlineEffectName = "highlight"

// PostEffectOutlineCore strokes the silhouette edges of every tagged target.
type PostEffectOutlineCore struct {
	baseCore
	name   string
	Colour math.Vec4
}

func NewPostEffectOutlineCore(name string, colour math.Vec4) *PostEffectOutlineCore {
	if name == "" {
		name = DefaultOutlineEffectName
	}
	return &PostEffectOutlineCore{baseCore: newBaseCore(), name: name, Colour: colour}
}

func (c *PostEffectOutlineCore) EffectName() string {
	return c.name
}

func (c *PostEffectOutlineCore) Attach(_ renderer.Device, technique *effects.Technique) error {
	c.bind(technique)
	return nil
}

func (c *PostEffectOutlineCore) Detach() {
	c.unbind()
}

// Render is a no-op; the work happens in RenderPostEffect once the targets are known.
func (c *PostEffectOutlineCore) Render(*renderer.RenderContext, renderer.DeviceContext) error {
	return nil
}

func (c *PostEffectOutlineCore) RenderPostEffect(rc *renderer.RenderContext, dc renderer.DeviceContext, targets []PostEffectTarget) error {
	if !c.CanRender() {
		return nil
	}
	pass, ok := c.technique.Pass("")
	if !ok {
		return fmt.Errorf("outline core: technique %q has no passes", c.technique.Name)
	}
	for _, t := range targets {
		if !t.HasPostEffect(c.name) {
			continue
		}
		if err := t.RenderWithPass(rc, dc, pass, c.Colour); err != nil {
			return fmt.Errorf("outline %q: %w", c.name, err)
		}
	}
	return nil
}
