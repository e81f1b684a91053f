package scene

import (
	"fmt"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/**
 * @brief A node drawing indexed triangles. The render type picks the
 * bucket (opaque, transparent or particle); post effect names route it
 * through the post effect pass as well.
 */
type MeshNode struct {
	NodeBase

	geometry    *metadata.Geometry
	tint        math.Vec4
	passName    string
	postEffects []string
	meshCore    *cores.MeshRenderCore
}

func NewMeshNode(name string, geometry *metadata.Geometry) *MeshNode {
	n := &MeshNode{}
	n.InitNode(n, name, metadata.RenderTypeOpaque)
	n.setup(geometry)
	return n
}

// NewBoxNode is a mesh node holding a box centred on its origin.
func NewBoxNode(name string, width, height, depth float32, colour math.Vec4) *MeshNode {
	vertices, indices := math.GenerateBoxGeometry(width, height, depth, colour)
	return NewMeshNode(name, metadata.NewGeometry(name, vertices, indices, metadata.TopologyTriangleList))
}

func (n *MeshNode) setup(geometry *metadata.Geometry) {
	n.geometry = geometry
	n.tint = math.NewVec4(1, 1, 1, 1)
	if geometry != nil {
		n.setBounds(geometry.Bounds)
	}
}

func (n *MeshNode) OnCreateRenderCore() cores.RenderCore {
	c := cores.NewMeshRenderCore(n.geometry)
	c.Tint = n.tint
	c.PassName = n.passName
	for _, e := range n.postEffects {
		c.AddPostEffect(e)
	}
	n.meshCore = c
	return c
}

func (n *MeshNode) DefaultTechnique() string { return effects.TechniqueMesh }

func (n *MeshNode) Geometry() *metadata.Geometry { return n.geometry }

// SetGeometry replaces the geometry and, when attached, its device buffers.
func (n *MeshNode) SetGeometry(geometry *metadata.Geometry) error {
	if geometry == nil {
		return fmt.Errorf("mesh %q: nil geometry", n.Name)
	}
	if n.meshCore != nil {
		var device renderer.Device
		if n.host != nil {
			device = n.host.Device()
		}
		if err := n.meshCore.SetGeometry(device, geometry); err != nil {
			return fmt.Errorf("mesh %q: %w", n.Name, err)
		}
	}
	n.geometry = geometry
	n.setBounds(geometry.Bounds)
	n.invalidate()
	return nil
}

func (n *MeshNode) Tint() math.Vec4 { return n.tint }

func (n *MeshNode) SetTint(tint math.Vec4) {
	n.tint = tint
	if n.meshCore != nil {
		n.meshCore.Tint = tint
	}
	n.invalidate()
}

// SetPassName selects a pass of the technique; empty means the first one.
func (n *MeshNode) SetPassName(name string) {
	n.passName = name
	if n.meshCore != nil {
		n.meshCore.PassName = name
	}
	n.invalidate()
}

func (n *MeshNode) AddPostEffect(name string) {
	for _, e := range n.postEffects {
		if e == name {
			return
		}
	}
	n.postEffects = append(n.postEffects, name)
	if n.meshCore != nil {
		n.meshCore.AddPostEffect(name)
	}
	n.invalidate()
}

func (n *MeshNode) RemovePostEffect(name string) {
	for i, e := range n.postEffects {
		if e == name {
			n.postEffects = append(n.postEffects[:i:i], n.postEffects[i+1:]...)
			break
		}
	}
	if n.meshCore != nil {
		n.meshCore.RemovePostEffect(name)
	}
	n.invalidate()
}

func (n *MeshNode) PostEffects() []string { return n.postEffects }

// HitTestSelf culls by the local bounds, then picks the nearest triangle.
// Line geometry only has the box test.
func (n *MeshNode) HitTestSelf(_ *renderer.RenderContext, totalModel math.Mat4, ray math.Ray, hits *[]HitTestResult) bool {
	if n.bounds.IsEmpty() {
		return false
	}
	inv, ok := totalModel.Inverse()
	if !ok {
		return false
	}
	local := ray.Transform(inv)
	t, ok := local.IntersectBox(n.bounds)
	if !ok {
		return false
	}
	if g := n.geometry; g != nil && g.Topology == metadata.TopologyTriangleList {
		if t, ok = nearestTriangle(local, g); !ok {
			return false
		}
	}
	point := local.PointAt(t).Transform(totalModel)
	*hits = append(*hits, HitTestResult{
		Node:     n.this,
		Distance: point.Distance(ray.Position),
		PointHit: point,
	})
	return true
}

func nearestTriangle(ray math.Ray, g *metadata.Geometry) (float32, bool) {
	nearest, found := float32(0), false
	position := func(i int) (math.Vec3, bool) {
		if len(g.Indices) == 0 {
			if i >= len(g.Vertices) {
				return math.Vec3{}, false
			}
			return g.Vertices[i].Position, true
		}
		idx := g.Indices[i]
		if int(idx) >= len(g.Vertices) {
			return math.Vec3{}, false
		}
		return g.Vertices[idx].Position, true
	}
	count := len(g.Indices)
	if count == 0 {
		count = len(g.Vertices)
	}
	for i := 0; i+2 < count; i += 3 {
		a, okA := position(i)
		b, okB := position(i + 1)
		c, okC := position(i + 2)
		if !okA || !okB || !okC {
			continue
		}
		if t, ok := ray.IntersectTriangle(a, b, c); ok && (!found || t < nearest) {
			nearest, found = t, true
		}
	}
	return nearest, found
}

// LineNode draws a line list, for gizmos and helpers.
type LineNode struct {
	MeshNode
}

func NewLineNode(name string, vertices []math.Vertex3D, indices []uint32) *LineNode {
	n := &LineNode{}
	n.InitNode(n, name, metadata.RenderTypeOpaque)
	n.setup(metadata.NewGeometry(name, vertices, indices, metadata.TopologyLineList))
	return n
}

// NewAxisNode draws the x, y and z axes in red, green and blue.
func NewAxisNode(name string, length float32) *LineNode {
	vertices, indices := math.GenerateAxisLines(length)
	return NewLineNode(name, vertices, indices)
}

func (n *LineNode) DefaultTechnique() string { return effects.TechniqueLines }
