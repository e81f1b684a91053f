package scene

import (
	"errors"
	"fmt"
	"weak"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

var (
	ErrAlreadyParented = errors.New("node already has a parent")
	ErrCycle           = errors.New("node cannot be its own ancestor")
)

/**
 * @brief The hooks a node type provides. Node types embed NodeBase as
 * their first field and call InitNode with themselves from their constructor.
 */
type Node interface {
	cores.Drawable
	Base() *NodeBase
	// OnCreateRenderCore builds the core on first attach.
	OnCreateRenderCore() cores.RenderCore
	// DefaultTechnique names the technique the core binds to; empty uses the host's.
	DefaultTechnique() string
	OnAttach(host Host) error
	OnDetach()
	OnChildAdded(child Node)
	OnHitTest(rc *renderer.RenderContext, totalModel math.Mat4, ray math.Ray, hits *[]HitTestResult) bool
}

// selfHitTester is implemented by nodes with geometry of their own.
type selfHitTester interface {
	HitTestSelf(rc *renderer.RenderContext, totalModel math.Mat4, ray math.Ray, hits *[]HitTestResult) bool
}

// childBasisProvider overrides the matrix children are placed relative to.
type childBasisProvider interface {
	ChildBasis() math.Mat4
}

/**
 * @brief State shared by every node: identity, transform, render type,
 * children, a weak parent link and the lazily created render core.
 */
type NodeBase struct {
	this Node

	id         core.GUID
	Name       string
	Transform  *math.Transform
	renderType metadata.RenderType
	visible    bool
	// IsHitTestVisible excludes the subtree from hit tests when false.
	IsHitTestVisible bool

	parent   weak.Pointer[NodeBase]
	children []Node

	host     Host
	attached bool
	core     cores.RenderCore

	world       math.Mat4
	bounds      math.BoundingBox
	worldBounds math.BoundingBox
}

// InitNode wires the dispatch target and defaults. this must embed n.
func (n *NodeBase) InitNode(this Node, name string, renderType metadata.RenderType) {
	n.this = this
	n.id = core.NewGUID()
	n.Name = name
	n.Transform = math.TransformCreate()
	n.renderType = renderType
	n.visible = true
	n.IsHitTestVisible = true
	n.world = math.NewMat4Identity()
	n.bounds = math.NewBoundingBoxEmpty()
	n.worldBounds = math.NewBoundingBoxEmpty()
}

func (n *NodeBase) Base() *NodeBase { return n }

func (n *NodeBase) ID() core.GUID { return n.id }

func (n *NodeBase) RenderType() metadata.RenderType { return n.renderType }

// SetRenderType changes the bucket of the node. Switching to ScreenSpaced
// also switches every descendant.
func (n *NodeBase) SetRenderType(rt metadata.RenderType) {
	n.renderType = rt
	if rt == metadata.RenderTypeScreenSpaced {
		for _, c := range n.children {
			c.Base().SetRenderType(rt)
		}
	}
	n.invalidate()
}

func (n *NodeBase) Visible() bool { return n.visible }

func (n *NodeBase) SetVisible(visible bool) {
	n.visible = visible
	if n.core != nil {
		n.core.SetVisible(visible)
	}
	n.invalidate()
}

func (n *NodeBase) Parent() Node {
	p := n.parent.Value()
	if p == nil {
		return nil
	}
	return p.this
}

func (n *NodeBase) Children() []Node {
	return n.children
}

func (n *NodeBase) RenderCore() cores.RenderCore { return n.core }

func (n *NodeBase) Host() Host { return n.host }

func (n *NodeBase) IsAttached() bool { return n.attached }

func (n *NodeBase) World() math.Mat4 { return n.world }

// Bounds is the local bounding box of the node's own geometry.
func (n *NodeBase) Bounds() math.BoundingBox { return n.bounds }

// WorldBounds is the cached world space box, refreshed on attach and by RefreshWorldBounds.
func (n *NodeBase) WorldBounds() math.BoundingBox { return n.worldBounds }

func (n *NodeBase) setBounds(b math.BoundingBox) {
	n.bounds = b
	n.worldBounds = b.Transform(n.world)
}

func (n *NodeBase) invalidate() {
	if n.host != nil {
		n.host.InvalidateRender()
	}
}

func (n *NodeBase) isAncestor(candidate *NodeBase) bool {
	for p := n; p != nil; p = p.parent.Value() {
		if p == candidate {
			return true
		}
	}
	return false
}

/**
 * @brief Appends child. The child inherits the ScreenSpaced render type
 * right away, OnChildAdded runs, and the child is attached when this node
 * is attached.
 */
func (n *NodeBase) AddChild(child Node) error {
	cb := child.Base()
	if cb.parent.Value() != nil {
		return fmt.Errorf("add %q to %q: %w", cb.Name, n.Name, ErrAlreadyParented)
	}
	if n.isAncestor(cb) {
		return fmt.Errorf("add %q to %q: %w", cb.Name, n.Name, ErrCycle)
	}
	cb.parent = weak.Make(n)
	n.children = append(n.children, child)
	if n.renderType == metadata.RenderTypeScreenSpaced {
		cb.SetRenderType(metadata.RenderTypeScreenSpaced)
	}
	n.this.OnChildAdded(child)

	if n.attached {
		if err := cb.Attach(n.host); err != nil {
			n.RemoveChild(child)
			return fmt.Errorf("add %q to %q: %w", cb.Name, n.Name, err)
		}
	}
	n.invalidate()
	return nil
}

// RemoveChild detaches child and drops it. Returns false when it is not a child.
func (n *NodeBase) RemoveChild(child Node) bool {
	for i, c := range n.children {
		if c != child {
			continue
		}
		cb := c.Base()
		cb.Detach()
		cb.parent = weak.Pointer[NodeBase]{}
		n.children = append(n.children[:i:i], n.children[i+1:]...)
		n.invalidate()
		return true
	}
	return false
}

/**
 * @brief Creates the core on first use, binds it to the resolved technique
 * and attaches the children. Attaching to the same host twice is a no-op.
 * On failure nothing below this node stays attached.
 */
func (n *NodeBase) Attach(host Host) error {
	if host == nil {
		return fmt.Errorf("attach %q: %w", n.Name, core.ErrDeviceNotReady)
	}
	if n.attached {
		if n.host == host {
			return nil
		}
		n.Detach()
	}

	if n.core == nil {
		n.core = n.this.OnCreateRenderCore()
	}
	name := n.this.DefaultTechnique()
	if name == "" {
		name = host.RenderTechnique()
	}
	technique, err := host.EffectsManager().Technique(name)
	if err != nil {
		return fmt.Errorf("attach %q: %w", n.Name, err)
	}
	if err := n.core.Attach(host.Device(), technique); err != nil {
		return fmt.Errorf("attach %q: %w", n.Name, err)
	}
	n.core.SetVisible(n.visible)
	n.worldBounds = n.bounds.Transform(n.world)
	n.host = host
	n.attached = true

	if err := n.this.OnAttach(host); err != nil {
		n.rollback(0)
		return fmt.Errorf("attach %q: %w", n.Name, err)
	}
	for i, c := range n.children {
		if err := c.Base().Attach(host); err != nil {
			n.rollback(i)
			return err
		}
	}
	host.InvalidateRender()
	return nil
}

// rollback detaches the first count children and then this node.
func (n *NodeBase) rollback(count int) {
	for _, c := range n.children[:count] {
		c.Base().Detach()
	}
	n.this.OnDetach()
	n.core.Detach()
	n.attached = false
	n.host = nil
}

// Detach releases device resources of the subtree. Safe to call repeatedly.
func (n *NodeBase) Detach() {
	if !n.attached {
		return
	}
	for _, c := range n.children {
		c.Base().Detach()
	}
	host := n.host
	n.this.OnDetach()
	n.core.Detach()
	n.attached = false
	n.host = nil
	host.InvalidateRender()
}

/**
 * @brief Recomputes world matrices of the subtree and pushes them to the
 * cores. Children of a node implementing childBasisProvider are placed
 * relative to its basis instead of its world matrix.
 */
func (n *NodeBase) UpdateWorld(parentWorld math.Mat4) {
	n.world = n.Transform.GetWorld(parentWorld)
	if n.core != nil {
		n.core.SetModelMatrix(n.world)
	}
	basis := n.world
	if p, ok := n.this.(childBasisProvider); ok {
		basis = p.ChildBasis()
	}
	for _, c := range n.children {
		c.Base().UpdateWorld(basis)
	}
}

// RefreshWorldBounds recomputes the cached world bounds of the subtree.
func (n *NodeBase) RefreshWorldBounds() {
	n.worldBounds = n.bounds.Transform(n.world)
	for _, c := range n.children {
		c.Base().RefreshWorldBounds()
	}
}

// Render draws the node's core and then its children, in tree order.
func (n *NodeBase) Render(rc *renderer.RenderContext, dc renderer.DeviceContext) error {
	if !n.visible || !n.attached {
		return nil
	}
	if err := n.core.Render(rc, dc); err != nil {
		return fmt.Errorf("render %q: %w", n.Name, err)
	}
	for _, c := range n.children {
		if err := c.Render(rc, dc); err != nil {
			return err
		}
	}
	return nil
}

// HitTest runs the node's hit test with its world matrix.
func (n *NodeBase) HitTest(rc *renderer.RenderContext, ray math.Ray, hits *[]HitTestResult) bool {
	if !n.visible || !n.IsHitTestVisible {
		return false
	}
	return n.this.OnHitTest(rc, n.world, ray, hits)
}

// Walk visits the subtree depth first. Returning false skips the children of a node.
func (n *NodeBase) Walk(fn func(Node) bool) {
	if !fn(n.this) {
		return
	}
	for _, c := range n.children {
		c.Base().Walk(fn)
	}
}

func (n *NodeBase) OnCreateRenderCore() cores.RenderCore {
	return cores.NewEmptyCore()
}

func (n *NodeBase) DefaultTechnique() string { return "" }

func (n *NodeBase) OnAttach(Host) error { return nil }

func (n *NodeBase) OnDetach() {}

func (n *NodeBase) OnChildAdded(Node) {}

// OnHitTest tests the node's own geometry and then every child.
func (n *NodeBase) OnHitTest(rc *renderer.RenderContext, totalModel math.Mat4, ray math.Ray, hits *[]HitTestResult) bool {
	hit := false
	if s, ok := n.this.(selfHitTester); ok && s.HitTestSelf(rc, totalModel, ray, hits) {
		hit = true
	}
	for _, c := range n.children {
		if c.Base().HitTest(rc, ray, hits) {
			hit = true
		}
	}
	return hit
}
