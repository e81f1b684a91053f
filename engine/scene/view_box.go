package scene

import (
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

// ViewBoxNode is an orientation gizmo: a cube with its axes drawn in a
// screen corner, turning with the main camera.
type ViewBoxNode struct {
	ScreenSpacedNode

	Box  *MeshNode
	Axes *LineNode
}

func NewViewBoxNode(name string) *ViewBoxNode {
	n := &ViewBoxNode{}
	n.InitNode(n, name, metadata.RenderTypeScreenSpaced)
	n.setup()
	n.relativeX, n.relativeY = 0.8, 0.8

	n.Box = NewBoxNode(name+".box", 8, 8, 8, math.NewVec4(0.75, 0.75, 0.8, 1))
	n.Axes = NewAxisNode(name+".axes", 7)
	// fresh children, neither parented nor attached
	_ = n.AddChild(n.Box)
	_ = n.AddChild(n.Axes)
	return n
}
