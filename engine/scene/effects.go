package scene

import (
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

// PostEffectNode outlines every mesh tagged with its effect name.
type PostEffectNode struct {
	NodeBase

	effectName string
	colour     math.Vec4
}

func NewOutlineEffectNode(name, effectName string, colour math.Vec4) *PostEffectNode {
	if effectName == "" {
		effectName = cores.DefaultOutlineEffectName
	}
	n := &PostEffectNode{effectName: effectName, colour: colour}
	n.InitNode(n, name, metadata.RenderTypePostProc)
	return n
}

func (n *PostEffectNode) OnCreateRenderCore() cores.RenderCore {
	return cores.NewPostEffectOutlineCore(n.effectName, n.colour)
}

func (n *PostEffectNode) DefaultTechnique() string { return effects.TechniqueOutline }

func (n *PostEffectNode) EffectName() string { return n.effectName }

// BackgroundNode paints a vertical gradient behind the scene.
type BackgroundNode struct {
	NodeBase

	top, bottom math.Vec4
}

func NewBackgroundNode(name string, top, bottom math.Vec4) *BackgroundNode {
	n := &BackgroundNode{top: top, bottom: bottom}
	n.InitNode(n, name, metadata.RenderTypePreProc)
	n.IsHitTestVisible = false
	return n
}

func (n *BackgroundNode) OnCreateRenderCore() cores.RenderCore {
	return cores.NewBackgroundCore(n.top, n.bottom)
}

func (n *BackgroundNode) DefaultTechnique() string { return effects.TechniqueBackground }
