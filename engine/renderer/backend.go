package renderer

import (
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/** @brief What a device buffer holds. */
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
	BufferKindConstant
)

/**
 * @brief Creation parameters of a device buffer. Exactly one of Vertices
 * or Indices is used depending on Kind.
 */
type BufferDesc struct {
	Name     string
	Kind     BufferKind
	Vertices []math.Vertex3D
	Indices  []uint32
	// Constant buffers only record their size.
	ByteSize int
}

// Buffer is a device allocation owned by the render core that created it.
type Buffer interface {
	ID() core.GUID
	Kind() BufferKind
	Len() int
	Release() error
	IsReleased() bool
}

// RenderTargetView is the colour target frames are drawn into.
type RenderTargetView interface {
	ID() core.GUID
	Width() int
	Height() int
}

// DepthStencilView is the depth target paired with a RenderTargetView.
type DepthStencilView interface {
	Width() int
	Height() int
}

/** @brief The screen rectangle draws are mapped to, in pixels. */
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

func NewViewport(width, height float32) Viewport {
	return Viewport{Width: width, Height: height, MaxDepth: 1}
}

/** @brief Kinds of light uploaded in the light pass. */
type LightKind int

const (
	LightKindAmbient LightKind = iota
	LightKindDirectional
	LightKindPoint
)

type LightParams struct {
	Kind      LightKind
	Colour    math.Vec4
	Direction math.Vec3
	Position  math.Vec3
	Range     float32
}

/**
 * @brief Everything needed to issue one indexed draw.
 */
type DrawCall struct {
	VertexBuffer Buffer
	IndexBuffer  Buffer
	Topology     metadata.PrimitiveTopology
	World        math.Mat4
	View         math.Mat4
	Projection   math.Mat4
	// Tint multiplies the vertex colours.
	Tint      math.Vec4
	CullMode  metadata.FaceCullMode
	DepthTest bool
	// Lit draws are shaded with the uploaded lights.
	Lit bool
	// LineWidth applies to line lists and outlines.
	LineWidth float32
	// Outline strokes triangle edges instead of filling them.
	Outline bool
}

/** @brief Work counters kept by a device context, reset by the host every frame. */
type Counters struct {
	DrawCalls    int
	Triangles    int
	Lines        int
	ColourClears int
	DepthClears  int
	LightUploads int
	Presents     int
}

// DeviceContext issues commands against the bound targets.
type DeviceContext interface {
	SetRenderTargets(rtv RenderTargetView, dsv DepthStencilView)
	ClearRenderTargetView(rtv RenderTargetView, colour math.Vec4)
	ClearDepthStencilView(dsv DepthStencilView, depth float32, stencil uint8)
	SetViewport(vp Viewport)
	Viewport() Viewport
	SetLights(lights []LightParams)
	DrawIndexed(call DrawCall) error
	Counters() Counters
	ResetCounters()
}

// Device owns GPU allocations and the immediate context.
type Device interface {
	CreateBuffer(desc BufferDesc) (Buffer, error)
	CreateRenderTargets(width, height int, msaa metadata.MSAALevel) (RenderTargetView, DepthStencilView, error)
	ReleaseRenderTargets(rtv RenderTargetView, dsv DepthStencilView)
	ImmediateContext() DeviceContext
	Present(rtv RenderTargetView) error
	// LiveResources counts buffers that have not been released yet.
	LiveResources() int
	Release() error
}

// DeviceFactory creates the device a host renders with.
type DeviceFactory func(logger core.LogSink) (Device, error)
