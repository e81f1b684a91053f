package software

import (
	"fmt"
	"sort"

	"github.com/gogpu/gg"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

// Context is the immediate context of a software Device.
type Context struct {
	device   *Device
	rtv      *colourTarget
	dsv      *depthTarget
	viewport renderer.Viewport
	lights   []renderer.LightParams
	counters renderer.Counters
}

func newContext(d *Device) *Context {
	return &Context{device: d}
}

func (c *Context) SetRenderTargets(rtv renderer.RenderTargetView, dsv renderer.DepthStencilView) {
	c.rtv, _ = rtv.(*colourTarget)
	c.dsv, _ = dsv.(*depthTarget)
}

func (c *Context) ClearRenderTargetView(rtv renderer.RenderTargetView, colour math.Vec4) {
	t, ok := rtv.(*colourTarget)
	if !ok || t.canvas == nil {
		return
	}
	t.canvas.ClearWithColor(toRGBA(colour))
	c.counters.ColourClears++
}

func (c *Context) ClearDepthStencilView(dsv renderer.DepthStencilView, depth float32, _ uint8) {
	t, ok := dsv.(*depthTarget)
	if !ok || t.data == nil {
		return
	}
	t.clear(depth)
	c.counters.DepthClears++
}

func (c *Context) SetViewport(vp renderer.Viewport) {
	c.viewport = vp
}

func (c *Context) Viewport() renderer.Viewport {
	return c.viewport
}

func (c *Context) SetLights(lights []renderer.LightParams) {
	c.lights = append(c.lights[:0], lights...)
	c.counters.LightUploads++
}

func (c *Context) Counters() renderer.Counters {
	return c.counters
}

func (c *Context) ResetCounters() {
	c.counters = renderer.Counters{}
}

type screenVertex struct {
	pos   math.Vec3
	valid bool
}

type primitive struct {
	points [3]math.Vec3
	count  int
	depth  float32
	colour math.Vec4
}

/**
 * @brief Transforms, culls, sorts back to front and fills (or strokes)
 * the primitives of the call, clipped to the bound viewport.
 */
func (c *Context) DrawIndexed(call renderer.DrawCall) error {
	if c.rtv == nil || c.rtv.canvas == nil {
		return fmt.Errorf("draw: no render target bound")
	}
	vb, err := c.device.lookup(call.VertexBuffer)
	if err != nil {
		return fmt.Errorf("draw: vertex buffer: %w", err)
	}
	ib, err := c.device.lookup(call.IndexBuffer)
	if err != nil {
		return fmt.Errorf("draw: index buffer: %w", err)
	}

	vp := c.viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}
	mvp := call.World.Mul(call.View).Mul(call.Projection)

	projected := make([]screenVertex, len(vb.vertices))
	for i, v := range vb.vertices {
		clip := v.Position.ToVec4(1).Transform(mvp)
		if clip.W <= math.K_FLOAT_EPSILON {
			continue
		}
		inv := 1 / clip.W
		ndc := math.NewVec3(clip.X*inv, clip.Y*inv, clip.Z*inv)
		projected[i] = screenVertex{
			pos: math.NewVec3(
				vp.X+(ndc.X+1)*0.5*vp.Width,
				vp.Y+(1-ndc.Y)*0.5*vp.Height,
				vp.MinDepth+ndc.Z*(vp.MaxDepth-vp.MinDepth),
			),
			valid: true,
		}
	}

	tint := call.Tint
	if tint == (math.Vec4{}) {
		tint = math.NewVec4(1, 1, 1, 1)
	}

	stride := 3
	if call.Topology == metadata.TopologyLineList {
		stride = 2
	}
	prims := make([]primitive, 0, len(ib.indices)/stride)
	for i := 0; i+stride <= len(ib.indices); i += stride {
		p := primitive{count: stride}
		ok := true
		colour := math.Vec4{}
		for k := 0; k < stride; k++ {
			idx := ib.indices[i+k]
			if int(idx) >= len(projected) || !projected[idx].valid {
				ok = false
				break
			}
			p.points[k] = projected[idx].pos
			p.depth += projected[idx].pos.Z
			col := vb.vertices[idx].Colour
			colour = math.NewVec4(colour.X+col.X, colour.Y+col.Y, colour.Z+col.Z, colour.W+col.W)
		}
		if !ok {
			continue
		}
		n := float32(stride)
		p.depth /= n
		p.colour = math.NewVec4(colour.X/n*tint.X, colour.Y/n*tint.Y, colour.Z/n*tint.Z, colour.W/n*tint.W)
		if call.Outline {
			p.colour = tint
		}

		if stride == 3 {
			if culled(p.points, call.CullMode) {
				continue
			}
			if call.Lit && !call.Outline {
				normal := call.World.TransformNormal(vb.vertices[ib.indices[i]].Normal).Normalize()
				p.colour = c.shade(p.colour, normal)
			}
		}
		prims = append(prims, p)
	}

	sort.SliceStable(prims, func(a, b int) bool { return prims[a].depth > prims[b].depth })

	canvas := c.rtv.canvas
	canvas.ClipRect(float64(vp.X), float64(vp.Y), float64(vp.Width), float64(vp.Height))
	defer canvas.ResetClip()

	lineWidth := call.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	canvas.SetLineWidth(float64(lineWidth))

	for _, p := range prims {
		if call.DepthTest && c.dsv != nil {
			cx, cy := centroid(p)
			if !c.dsv.testAndSet(int(cx), int(cy), p.depth) {
				continue
			}
		}
		canvas.SetRGBA(float64(p.colour.X), float64(p.colour.Y), float64(p.colour.Z), float64(p.colour.W))
		canvas.MoveTo(float64(p.points[0].X), float64(p.points[0].Y))
		for k := 1; k < p.count; k++ {
			canvas.LineTo(float64(p.points[k].X), float64(p.points[k].Y))
		}
		if p.count == 3 {
			canvas.ClosePath()
		}
		if p.count == 2 || call.Outline {
			if err := canvas.Stroke(); err != nil {
				return fmt.Errorf("draw: stroke: %w", err)
			}
			c.counters.Lines++
			continue
		}
		if err := canvas.Fill(); err != nil {
			return fmt.Errorf("draw: fill: %w", err)
		}
		c.counters.Triangles++
	}
	c.counters.DrawCalls++
	return nil
}

// shade applies the uploaded lights to a flat colour.
func (c *Context) shade(colour math.Vec4, normal math.Vec3) math.Vec4 {
	if len(c.lights) == 0 {
		return colour
	}
	r, g, b := float32(0), float32(0), float32(0)
	for _, l := range c.lights {
		intensity := float32(1)
		switch l.Kind {
		case renderer.LightKindDirectional:
			intensity = max(0, normal.Dot(l.Direction.Normalize().Negate()))
		case renderer.LightKindPoint:
			intensity = 0.5
		}
		r += l.Colour.X * intensity
		g += l.Colour.Y * intensity
		b += l.Colour.Z * intensity
	}
	return math.NewVec4(
		colour.X*math.Clamp(r, 0, 1),
		colour.Y*math.Clamp(g, 0, 1),
		colour.Z*math.Clamp(b, 0, 1),
		colour.W,
	)
}

// culled reports whether a pixel space triangle faces away under mode.
// Counter clockwise triangles in view space come out clockwise in pixels.
func culled(points [3]math.Vec3, mode metadata.FaceCullMode) bool {
	area := (points[1].X-points[0].X)*(points[2].Y-points[0].Y) - (points[2].X-points[0].X)*(points[1].Y-points[0].Y)
	front := area < 0
	switch mode {
	case metadata.FaceCullModeBack:
		return !front
	case metadata.FaceCullModeFront:
		return front
	case metadata.FaceCullModeFrontAndBack:
		return true
	}
	return false
}

func centroid(p primitive) (float32, float32) {
	var x, y float32
	for k := 0; k < p.count; k++ {
		x += p.points[k].X
		y += p.points[k].Y
	}
	return x / float32(p.count), y / float32(p.count)
}

func toRGBA(c math.Vec4) gg.RGBA {
	return gg.RGBA{R: float64(c.X), G: float64(c.Y), B: float64(c.Z), A: float64(c.W)}
}
