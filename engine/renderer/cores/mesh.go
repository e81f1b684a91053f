package cores

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/**
 * @brief Draws one geometry with the default (or a named) pass of its
 * technique. Owns a vertex and an index buffer while attached.
 */
type MeshRenderCore struct {
	baseCore

	geometry    *metadata.Geometry
	vertices    renderer.Buffer
	indices     renderer.Buffer
	Tint        math.Vec4
	PassName    string
	postEffects map[string]struct{}
}

func NewMeshRenderCore(geometry *metadata.Geometry) *MeshRenderCore {
	return &MeshRenderCore{
		baseCore:    newBaseCore(),
		geometry:    geometry,
		Tint:        math.NewVec4(1, 1, 1, 1),
		postEffects: make(map[string]struct{}),
	}
}

func (c *MeshRenderCore) Geometry() *metadata.Geometry {
	return c.geometry
}

// SetGeometry swaps the geometry. Attached cores upload the new buffers
// first and keep the old geometry and buffers when that fails.
func (c *MeshRenderCore) SetGeometry(device renderer.Device, geometry *metadata.Geometry) error {
	if !c.attached {
		c.geometry = geometry
		return nil
	}
	if device == nil {
		return errors.New("mesh core: nil device")
	}
	vb, ib, err := uploadGeometry(device, geometry)
	if err != nil {
		return err
	}
	c.releaseBuffers()
	c.geometry = geometry
	c.vertices, c.indices = vb, ib
	return nil
}

func (c *MeshRenderCore) Attach(device renderer.Device, technique *effects.Technique) error {
	if c.attached {
		return nil
	}
	if device == nil {
		return errors.New("mesh core: nil device")
	}
	if err := c.createBuffers(device); err != nil {
		return err
	}
	c.bind(technique)
	return nil
}

func (c *MeshRenderCore) createBuffers(device renderer.Device) error {
	vb, ib, err := uploadGeometry(device, c.geometry)
	if err != nil {
		return err
	}
	c.vertices, c.indices = vb, ib
	return nil
}

func uploadGeometry(device renderer.Device, geometry *metadata.Geometry) (renderer.Buffer, renderer.Buffer, error) {
	if geometry == nil || len(geometry.Vertices) == 0 || len(geometry.Indices) == 0 {
		return nil, nil, fmt.Errorf("mesh core: empty geometry")
	}
	vb, err := device.CreateBuffer(renderer.BufferDesc{
		Name:     geometry.Name,
		Kind:     renderer.BufferKindVertex,
		Vertices: geometry.Vertices,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("mesh core %q: vertex buffer: %w", geometry.Name, err)
	}
	ib, err := device.CreateBuffer(renderer.BufferDesc{
		Name:    geometry.Name,
		Kind:    renderer.BufferKindIndex,
		Indices: geometry.Indices,
	})
	if err != nil {
		_ = vb.Release()
		return nil, nil, fmt.Errorf("mesh core %q: index buffer: %w", geometry.Name, err)
	}
	return vb, ib, nil
}

func (c *MeshRenderCore) releaseBuffers() {
	if c.vertices != nil {
		_ = c.vertices.Release()
		c.vertices = nil
	}
	if c.indices != nil {
		_ = c.indices.Release()
		c.indices = nil
	}
}

func (c *MeshRenderCore) Detach() {
	c.releaseBuffers()
	c.unbind()
}

func (c *MeshRenderCore) AddPostEffect(name string) {
	c.postEffects[name] = struct{}{}
}

func (c *MeshRenderCore) RemovePostEffect(name string) {
	delete(c.postEffects, name)
}

func (c *MeshRenderCore) HasPostEffect(name string) bool {
	_, ok := c.postEffects[name]
	return ok
}

// HasAnyPostEffect reports whether the core belongs in the post effect bucket.
func (c *MeshRenderCore) HasAnyPostEffect() bool {
	return len(c.postEffects) > 0
}

func (c *MeshRenderCore) Render(rc *renderer.RenderContext, dc renderer.DeviceContext) error {
	if !c.CanRender() {
		return nil
	}
	pass, ok := c.technique.Pass(c.PassName)
	if !ok {
		return fmt.Errorf("mesh core: technique %q has no pass %q", c.technique.Name, c.PassName)
	}
	return c.RenderWithPass(rc, dc, pass, c.Tint)
}

func (c *MeshRenderCore) RenderWithPass(rc *renderer.RenderContext, dc renderer.DeviceContext, pass effects.Pass, tint math.Vec4) error {
	if !c.CanRender() {
		return nil
	}
	return dc.DrawIndexed(renderer.DrawCall{
		VertexBuffer: c.vertices,
		IndexBuffer:  c.indices,
		Topology:     c.geometry.Topology,
		World:        c.model,
		View:         rc.View,
		Projection:   rc.Projection,
		Tint:         tint,
		CullMode:     pass.CullMode,
		DepthTest:    pass.DepthTest,
		Lit:          pass.Lit,
		LineWidth:    pass.LineWidth,
		Outline:      pass.Outline,
	})
}
