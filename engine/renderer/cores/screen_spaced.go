package cores

import (
	"fmt"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
)

/** @brief How a screen spaced overlay is anchored on screen. */
type ScreenSpacedMode int

const (
	/** @brief Placed at a relative screen location in [-1, 1] on both axes. */
	ScreenSpacedModeRelative ScreenSpacedMode = iota
	/** @brief Anchored to a point in the 3D world. */
	ScreenSpacedModeAbsolutePosition3D
)

func (m ScreenSpacedMode) String() string {
	if m == ScreenSpacedModeAbsolutePosition3D {
		return "absolute3d"
	}
	return "relative"
}

const (
	DefaultScreenSpacedSize           float32 = 100
	DefaultScreenSpacedCameraDistance float32 = 20
	DefaultScreenSpacedFieldOfView    float32 = 45
	// ScreenSpacedNearPlane is the near plane of the overlay camera and of rays re-derived in it.
	ScreenSpacedNearPlane float32 = 0.01
	ScreenSpacedFarPlane  float32 = 1000
)

// ScreenSpaceConfigurable is the typed handle a screen spaced node keeps on its core.
type ScreenSpaceConfigurable interface {
	RenderCore
	SetRelativeScreenLocation(x, y float32)
	RelativeScreenLocation() (float32, float32)
	SetSize(size float32)
	Size() float32
	SetSizeScale(scale float32)
	SizeScale() float32
	SetMode(mode ScreenSpacedMode)
	Mode() ScreenSpacedMode
	SetAbsolutePosition3D(p math.Vec3)
	AbsolutePosition3D() math.Vec3
	SetIsPerspective(perspective bool)
	IsPerspective() bool
	SetCameraDistance(distance float32)
	CameraDistance() float32
	SetFieldOfView(degrees float32)
	SetNeedClearDepthBuffer(clear bool)
	NeedClearDepthBuffer() bool
	OnCoordinateSystemChanged(fn func(state renderer.CameraState))
	// Camera derives the overlay camera from the main camera in rc.
	Camera(rc *renderer.RenderContext) renderer.CameraState
	// UpdateCamera is Camera plus the coordinate system change notification.
	UpdateCamera(rc *renderer.RenderContext) renderer.CameraState
	// Viewport returns the pixel rectangle the overlay draws into.
	Viewport(rc *renderer.RenderContext) renderer.Viewport
	RenderSubtree(rc *renderer.RenderContext, dc renderer.DeviceContext, children []Drawable) error
}

/**
 * @brief Renders a subtree with a private camera that always looks at the
 * origin along the main camera's look direction, inside a square viewport.
 */
type ScreenSpacedMeshRenderCore struct {
	baseCore

	relativeX, relativeY float32
	size                 float32
	sizeScale            float32
	mode                 ScreenSpacedMode
	absolutePosition     math.Vec3
	isPerspective        bool
	cameraDistance       float32
	fieldOfView          float32
	clearDepth           bool

	camera        renderer.CameraState
	hasCamera     bool
	onCoordChange func(state renderer.CameraState)
}

func NewScreenSpacedMeshRenderCore() *ScreenSpacedMeshRenderCore {
	return &ScreenSpacedMeshRenderCore{
		baseCore:       newBaseCore(),
		size:           DefaultScreenSpacedSize,
		sizeScale:      1,
		isPerspective:  true,
		cameraDistance: DefaultScreenSpacedCameraDistance,
		fieldOfView:    math.DegToRad(DefaultScreenSpacedFieldOfView),
		clearDepth:     true,
	}
}

func (c *ScreenSpacedMeshRenderCore) Attach(_ renderer.Device, technique *effects.Technique) error {
	c.bind(technique)
	return nil
}

func (c *ScreenSpacedMeshRenderCore) Detach() {
	c.unbind()
	c.hasCamera = false
}

func (c *ScreenSpacedMeshRenderCore) SetRelativeScreenLocation(x, y float32) {
	c.relativeX = math.Clamp(x, -1, 1)
	c.relativeY = math.Clamp(y, -1, 1)
}

func (c *ScreenSpacedMeshRenderCore) RelativeScreenLocation() (float32, float32) {
	return c.relativeX, c.relativeY
}

func (c *ScreenSpacedMeshRenderCore) SetSize(size float32) {
	if size > 0 {
		c.size = size
	}
}

func (c *ScreenSpacedMeshRenderCore) Size() float32 { return c.size }

func (c *ScreenSpacedMeshRenderCore) SetSizeScale(scale float32) {
	if scale > 0 {
		c.sizeScale = scale
	}
}

func (c *ScreenSpacedMeshRenderCore) SizeScale() float32 { return c.sizeScale }

func (c *ScreenSpacedMeshRenderCore) SetMode(mode ScreenSpacedMode) { c.mode = mode }

func (c *ScreenSpacedMeshRenderCore) Mode() ScreenSpacedMode { return c.mode }

func (c *ScreenSpacedMeshRenderCore) SetAbsolutePosition3D(p math.Vec3) { c.absolutePosition = p }

func (c *ScreenSpacedMeshRenderCore) AbsolutePosition3D() math.Vec3 { return c.absolutePosition }

func (c *ScreenSpacedMeshRenderCore) SetIsPerspective(perspective bool) { c.isPerspective = perspective }

func (c *ScreenSpacedMeshRenderCore) IsPerspective() bool { return c.isPerspective }

func (c *ScreenSpacedMeshRenderCore) SetCameraDistance(distance float32) {
	if distance > 0 {
		c.cameraDistance = distance
	}
}

func (c *ScreenSpacedMeshRenderCore) CameraDistance() float32 { return c.cameraDistance }

func (c *ScreenSpacedMeshRenderCore) SetFieldOfView(degrees float32) {
	if degrees > 0 && degrees < 180 {
		c.fieldOfView = math.DegToRad(degrees)
	}
}

func (c *ScreenSpacedMeshRenderCore) SetNeedClearDepthBuffer(clear bool) { c.clearDepth = clear }

func (c *ScreenSpacedMeshRenderCore) NeedClearDepthBuffer() bool { return c.clearDepth }

func (c *ScreenSpacedMeshRenderCore) OnCoordinateSystemChanged(fn func(state renderer.CameraState)) {
	c.onCoordChange = fn
}

// viewportSize is the overlay edge length in pixels.
func (c *ScreenSpacedMeshRenderCore) viewportSize() float32 {
	return c.size * c.sizeScale
}

func (c *ScreenSpacedMeshRenderCore) usesMainCamera(rc *renderer.RenderContext) bool {
	return c.mode == ScreenSpacedModeAbsolutePosition3D && rc.IsPerspective
}

func (c *ScreenSpacedMeshRenderCore) Camera(rc *renderer.RenderContext) renderer.CameraState {
	var state renderer.CameraState
	if c.usesMainCamera(rc) {
		state = rc.CameraState
		state.View = math.NewMat4Translation(c.absolutePosition).Mul(rc.View)
	} else {
		look := rc.LookDirection.Normalize()
		eye := look.MulScalar(-c.cameraDistance)
		state = renderer.CameraState{
			View:          math.NewMat4LookAtRH(eye, math.NewVec3Zero(), rc.UpDirection),
			IsPerspective: c.isPerspective,
			Position:      eye,
			LookDirection: look,
			UpDirection:   rc.UpDirection,
		}
		if c.isPerspective {
			state.Projection = math.NewMat4PerspectiveFovRH(c.fieldOfView, 1, ScreenSpacedNearPlane, ScreenSpacedFarPlane)
			state.Frustum = math.NewVec4(c.fieldOfView, 1, ScreenSpacedNearPlane, ScreenSpacedFarPlane)
		} else {
			width := c.orthographicWidth()
			state.Projection = math.NewMat4OrthoRH(width, width, ScreenSpacedNearPlane, ScreenSpacedFarPlane)
			state.Frustum = math.NewVec4(width, 1, ScreenSpacedNearPlane, ScreenSpacedFarPlane)
		}
	}
	return state
}

func (c *ScreenSpacedMeshRenderCore) UpdateCamera(rc *renderer.RenderContext) renderer.CameraState {
	state := c.Camera(rc)
	changed := !c.hasCamera || !state.View.Compare(c.camera.View, math.K_FLOAT_EPSILON) || state.IsPerspective != c.camera.IsPerspective
	c.camera = state
	c.hasCamera = true
	if changed && c.onCoordChange != nil {
		c.onCoordChange(state)
	}
	return state
}

// orthographicWidth frames the origin like the perspective camera at the same distance.
func (c *ScreenSpacedMeshRenderCore) orthographicWidth() float32 {
	return 2 * c.cameraDistance * math.Tan(c.fieldOfView*0.5)
}

/**
 * @brief The overlay rectangle in pixels of the host target. Relative
 * placement is clamped to stay on screen; absolute placement follows the
 * projected anchor, or covers the whole target with a perspective main camera.
 */
func (c *ScreenSpacedMeshRenderCore) Viewport(rc *renderer.RenderContext) renderer.Viewport {
	if c.usesMainCamera(rc) {
		return renderer.NewViewport(rc.ActualWidth, rc.ActualHeight)
	}
	x, y := c.ViewportOffset(rc)
	vs := c.viewportSize()
	return renderer.Viewport{X: x, Y: y, Width: vs, Height: vs, MaxDepth: 1}
}

// ViewportOffset returns the top left corner of the overlay viewport.
func (c *ScreenSpacedMeshRenderCore) ViewportOffset(rc *renderer.RenderContext) (float32, float32) {
	vs := c.viewportSize()
	if c.mode == ScreenSpacedModeAbsolutePosition3D {
		abs := rc.ScreenViewProjection.TransformCoordinate(c.absolutePosition)
		return abs.X - vs/2, abs.Y - vs/2
	}
	return RelativeViewportOffset(c.relativeX, c.relativeY, vs, rc.ActualWidth, rc.ActualHeight)
}

// RelativeViewportOffset places a viewportSize square at a relative screen
// location and clamps it inside a width x height container.
func RelativeViewportOffset(relX, relY, viewportSize, width, height float32) (float32, float32) {
	offX := width/2*(1+relX) - viewportSize/2
	offY := height/2*(1-relY) - viewportSize/2
	offX = math.Clamp(offX, 0, float32(int(max(0, width-viewportSize))))
	offY = math.Clamp(offY, 0, float32(int(max(0, height-viewportSize))))
	return offX, offY
}

// Render is a no-op; the owning node drives RenderSubtree with its children.
func (c *ScreenSpacedMeshRenderCore) Render(*renderer.RenderContext, renderer.DeviceContext) error {
	return nil
}

/**
 * @brief Binds the overlay viewport and camera, optionally clears depth,
 * draws the children and restores the previous viewport and camera even
 * when a child fails.
 */
func (c *ScreenSpacedMeshRenderCore) RenderSubtree(rc *renderer.RenderContext, dc renderer.DeviceContext, children []Drawable) (err error) {
	if !c.CanRender() {
		return nil
	}
	savedViewport := dc.Viewport()
	savedCamera := rc.SaveCamera()
	defer func() {
		dc.SetViewport(savedViewport)
		rc.RestoreCamera(savedCamera)
	}()

	state := c.UpdateCamera(rc)
	dc.SetViewport(c.Viewport(rc))
	rc.SetCamera(state)

	if c.clearDepth && rc.DepthStencil != nil {
		dc.ClearDepthStencilView(rc.DepthStencil, 1, 0)
	}
	for i, child := range children {
		if rerr := child.Render(rc, dc); rerr != nil {
			return fmt.Errorf("screen spaced child %d: %w", i, rerr)
		}
	}
	return nil
}
