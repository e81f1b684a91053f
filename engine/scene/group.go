package scene

import "github.com/spaghettifunk/retina/engine/renderer/metadata"

// GroupNode only carries a transform and children.
type GroupNode struct {
	NodeBase
}

func NewGroupNode(name string) *GroupNode {
	n := &GroupNode{}
	n.InitNode(n, name, metadata.RenderTypeOpaque)
	return n
}
