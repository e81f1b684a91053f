package cores

import (
	"fmt"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

const backgroundBands = 16

/**
 * @brief Fills the viewport with a vertical gradient before any geometry
 * is drawn. Runs in the pre-process bucket.
 */
type BackgroundCore struct {
	baseCore
	Top      math.Vec4
	Bottom   math.Vec4
	vertices renderer.Buffer
	indices  renderer.Buffer
}

func NewBackgroundCore(top, bottom math.Vec4) *BackgroundCore {
	return &BackgroundCore{baseCore: newBaseCore(), Top: top, Bottom: bottom}
}

func (c *BackgroundCore) Attach(device renderer.Device, technique *effects.Technique) error {
	if c.attached {
		return nil
	}
	vertices, indices := c.bands()
	vb, err := device.CreateBuffer(renderer.BufferDesc{Name: "background", Kind: renderer.BufferKindVertex, Vertices: vertices})
	if err != nil {
		return fmt.Errorf("background core: %w", err)
	}
	ib, err := device.CreateBuffer(renderer.BufferDesc{Name: "background", Kind: renderer.BufferKindIndex, Indices: indices})
	if err != nil {
		_ = vb.Release()
		return fmt.Errorf("background core: %w", err)
	}
	c.vertices, c.indices = vb, ib
	c.bind(technique)
	return nil
}

// bands builds horizontal clip space strips stepping from Bottom to Top.
func (c *BackgroundCore) bands() ([]math.Vertex3D, []uint32) {
	vertices := make([]math.Vertex3D, 0, backgroundBands*4)
	indices := make([]uint32, 0, backgroundBands*6)
	for i := 0; i < backgroundBands; i++ {
		t := (float32(i) + 0.5) / backgroundBands
		colour := math.LerpVec4(c.Bottom, c.Top, t)
		colour.W = 1
		y0 := -1 + 2*float32(i)/backgroundBands
		y1 := -1 + 2*float32(i+1)/backgroundBands
		base := uint32(len(vertices))
		vertices = append(vertices,
			math.Vertex3D{Position: math.NewVec3(-1, y0, 0.999), Colour: colour},
			math.Vertex3D{Position: math.NewVec3(1, y0, 0.999), Colour: colour},
			math.Vertex3D{Position: math.NewVec3(1, y1, 0.999), Colour: colour},
			math.Vertex3D{Position: math.NewVec3(-1, y1, 0.999), Colour: colour},
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

func (c *BackgroundCore) Detach() {
	if c.vertices != nil {
		_ = c.vertices.Release()
		c.vertices = nil
	}
	if c.indices != nil {
		_ = c.indices.Release()
		c.indices = nil
	}
	c.unbind()
}

func (c *BackgroundCore) Render(_ *renderer.RenderContext, dc renderer.DeviceContext) error {
	if !c.CanRender() {
		return nil
	}
	return dc.DrawIndexed(renderer.DrawCall{
		VertexBuffer: c.vertices,
		IndexBuffer:  c.indices,
		Topology:     metadata.TopologyTriangleList,
		World:        math.NewMat4Identity(),
		View:         math.NewMat4Identity(),
		Projection:   math.NewMat4Identity(),
		CullMode:     metadata.FaceCullModeNone,
	})
}
