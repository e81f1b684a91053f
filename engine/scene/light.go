package scene

import (
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

// LightNode contributes one light to the frame. Position and direction
// follow the node's world transform.
type LightNode struct {
	NodeBase

	params    renderer.LightParams
	lightCore *cores.LightCore
}

func newLightNode(name string, params renderer.LightParams) *LightNode {
	n := &LightNode{params: params}
	n.InitNode(n, name, metadata.RenderTypeLight)
	return n
}

func NewAmbientLightNode(name string, colour math.Vec4) *LightNode {
	return newLightNode(name, renderer.LightParams{Kind: renderer.LightKindAmbient, Colour: colour})
}

func NewDirectionalLightNode(name string, colour math.Vec4, direction math.Vec3) *LightNode {
	return newLightNode(name, renderer.LightParams{
		Kind:      renderer.LightKindDirectional,
		Colour:    colour,
		Direction: direction.Normalize(),
	})
}

func NewPointLightNode(name string, colour math.Vec4, position math.Vec3, lightRange float32) *LightNode {
	return newLightNode(name, renderer.LightParams{
		Kind:     renderer.LightKindPoint,
		Colour:   colour,
		Position: position,
		Range:    lightRange,
	})
}

func (n *LightNode) OnCreateRenderCore() cores.RenderCore {
	n.lightCore = cores.NewLightCore(n.params)
	return n.lightCore
}

func (n *LightNode) DefaultTechnique() string { return effects.TechniqueLight }

func (n *LightNode) Light() renderer.LightParams { return n.params }

func (n *LightNode) SetColour(colour math.Vec4) {
	n.params.Colour = colour
	if n.lightCore != nil {
		n.lightCore.SetLight(n.params)
	}
	n.invalidate()
}
