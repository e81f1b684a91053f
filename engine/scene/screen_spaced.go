package scene

import (
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/**
 * @brief Root of an overlay drawn with its own camera in a square viewport,
 * such as a view cube or a coordinate gizmo. Every descendant is in the
 * ScreenSpaced bucket and placed relative to the overlay origin.
 */
type ScreenSpacedNode struct {
	NodeBase

	relativeX, relativeY float32
	size                 float32
	sizeScale            float32
	mode                 cores.ScreenSpacedMode
	absolutePosition     math.Vec3
	isPerspective        bool
	cameraDistance       float32
	fieldOfView          float32
	clearDepth           bool

	ssCore cores.ScreenSpaceConfigurable
	// CoordinateSystemChanged is called with the new overlay camera whenever it changes.
	CoordinateSystemChanged func(state renderer.CameraState)
}

func NewScreenSpacedNode(name string) *ScreenSpacedNode {
	n := &ScreenSpacedNode{}
	n.InitNode(n, name, metadata.RenderTypeScreenSpaced)
	n.setup()
	return n
}

func (n *ScreenSpacedNode) setup() {
	n.size = cores.DefaultScreenSpacedSize
	n.sizeScale = 1
	n.isPerspective = true
	n.cameraDistance = cores.DefaultScreenSpacedCameraDistance
	n.fieldOfView = cores.DefaultScreenSpacedFieldOfView
	n.clearDepth = true
}

func (n *ScreenSpacedNode) OnCreateRenderCore() cores.RenderCore {
	c := cores.NewScreenSpacedMeshRenderCore()
	n.ssCore = c
	return c
}

func (n *ScreenSpacedNode) DefaultTechnique() string { return effects.TechniqueScreenSpaced }

func (n *ScreenSpacedNode) OnAttach(host Host) error {
	n.apply()
	n.ssCore.OnCoordinateSystemChanged(func(state renderer.CameraState) {
		if n.CoordinateSystemChanged != nil {
			n.CoordinateSystemChanged(state)
		}
		ctx := core.EventContext{Payload: state}
		if state.IsPerspective {
			ctx.Data.U32[0] = 1
		}
		ctx.Data.F32[0], ctx.Data.F32[1], ctx.Data.F32[2] = state.Position.X, state.Position.Y, state.Position.Z
		host.Events().Fire(core.EVENT_CODE_COORDINATE_SYSTEM_CHANGED, n, ctx)
	})
	for _, c := range n.children {
		c.Base().SetRenderType(metadata.RenderTypeScreenSpaced)
	}
	return nil
}

func (n *ScreenSpacedNode) OnDetach() {
	n.ssCore.OnCoordinateSystemChanged(nil)
}

// apply copies the node settings onto the core.
func (n *ScreenSpacedNode) apply() {
	if n.ssCore == nil {
		return
	}
	n.ssCore.SetRelativeScreenLocation(n.relativeX, n.relativeY)
	n.ssCore.SetSize(n.size)
	n.ssCore.SetSizeScale(n.sizeScale)
	n.ssCore.SetMode(n.mode)
	n.ssCore.SetAbsolutePosition3D(n.absolutePosition)
	n.ssCore.SetIsPerspective(n.isPerspective)
	n.ssCore.SetCameraDistance(n.cameraDistance)
	n.ssCore.SetFieldOfView(n.fieldOfView)
	n.ssCore.SetNeedClearDepthBuffer(n.clearDepth)
}

func (n *ScreenSpacedNode) changed() {
	n.apply()
	n.invalidate()
}

// SetRelativeScreenLocation places the overlay; both axes are clamped to [-1, 1].
func (n *ScreenSpacedNode) SetRelativeScreenLocation(x, y float32) {
	n.relativeX = math.Clamp(x, -1, 1)
	n.relativeY = math.Clamp(y, -1, 1)
	n.changed()
}

func (n *ScreenSpacedNode) RelativeScreenLocation() (float32, float32) {
	return n.relativeX, n.relativeY
}

func (n *ScreenSpacedNode) SetSize(size float32) {
	if size > 0 {
		n.size = size
		n.changed()
	}
}

func (n *ScreenSpacedNode) Size() float32 { return n.size }

func (n *ScreenSpacedNode) SetSizeScale(scale float32) {
	if scale > 0 {
		n.sizeScale = scale
		n.changed()
	}
}

func (n *ScreenSpacedNode) SizeScale() float32 { return n.sizeScale }

func (n *ScreenSpacedNode) SetMode(mode cores.ScreenSpacedMode) {
	n.mode = mode
	n.changed()
}

func (n *ScreenSpacedNode) Mode() cores.ScreenSpacedMode { return n.mode }

func (n *ScreenSpacedNode) SetAbsolutePosition3D(p math.Vec3) {
	n.absolutePosition = p
	n.changed()
}

func (n *ScreenSpacedNode) AbsolutePosition3D() math.Vec3 { return n.absolutePosition }

func (n *ScreenSpacedNode) SetIsPerspective(perspective bool) {
	n.isPerspective = perspective
	n.changed()
}

func (n *ScreenSpacedNode) IsPerspective() bool { return n.isPerspective }

func (n *ScreenSpacedNode) SetCameraDistance(distance float32) {
	if distance > 0 {
		n.cameraDistance = distance
		n.changed()
	}
}

func (n *ScreenSpacedNode) CameraDistance() float32 { return n.cameraDistance }

// SetFieldOfView sets the overlay field of view in degrees.
func (n *ScreenSpacedNode) SetFieldOfView(degrees float32) {
	if degrees > 0 && degrees < 180 {
		n.fieldOfView = degrees
		n.changed()
	}
}

func (n *ScreenSpacedNode) FieldOfView() float32 { return n.fieldOfView }

func (n *ScreenSpacedNode) SetNeedClearDepthBuffer(clear bool) {
	n.clearDepth = clear
	n.changed()
}

func (n *ScreenSpacedNode) NeedClearDepthBuffer() bool { return n.clearDepth }

// ScreenSpaceCore is the typed core handle, nil before the first attach.
func (n *ScreenSpacedNode) ScreenSpaceCore() cores.ScreenSpaceConfigurable { return n.ssCore }

// ChildBasis places the children in overlay space, independent of the host scene.
func (n *ScreenSpacedNode) ChildBasis() math.Mat4 {
	return math.NewMat4Identity()
}

// Render draws the subtree through the overlay viewport and camera.
func (n *ScreenSpacedNode) Render(rc *renderer.RenderContext, dc renderer.DeviceContext) error {
	if !n.visible || !n.attached {
		return nil
	}
	children := make([]cores.Drawable, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c)
	}
	return n.ssCore.RenderSubtree(rc, dc, children)
}

/**
 * @brief Moves the pick ray into overlay space and tests the children with
 * it. On a hit the caller's hits are replaced by the overlay hits; on a miss
 * they are left untouched.
 */
func (n *ScreenSpacedNode) OnHitTest(rc *renderer.RenderContext, _ math.Mat4, ray math.Ray, hits *[]HitTestResult) bool {
	if n.ssCore == nil || !n.attached {
		return false
	}
	overlayRay, ok := ReprojectRay(rc, n.ssCore, ray)
	if !ok {
		return false
	}
	local := make([]HitTestResult, 0)
	if !n.NodeBase.OnHitTest(rc, math.NewMat4Identity(), overlayRay, &local) {
		return false
	}
	SortHits(local)
	*hits = append((*hits)[:0], local...)
	return true
}

/**
 * @brief Converts a main camera pick ray into a ray in overlay space.
 *
 * The ray origin is projected to host pixels with the screen view
 * projection. In relative mode, and in absolute mode under an orthographic
 * main camera, the pixel must fall inside the overlay square and is
 * unprojected through the overlay camera over that square. In absolute mode
 * under a perspective main camera the overlay shares the full viewport, so
 * the pixel is unprojected over the whole host.
 *
 * @return The overlay ray and false when the pixel misses the overlay.
 */
func ReprojectRay(rc *renderer.RenderContext, ss cores.ScreenSpaceConfigurable, ray math.Ray) (math.Ray, bool) {
	camera := ss.Camera(rc)
	p := rc.ScreenViewProjection.TransformCoordinate(ray.Position)
	vs := ss.Size() * ss.SizeScale()

	switch {
	case ss.Mode() == cores.ScreenSpacedModeRelative:
		relX, relY := ss.RelativeScreenLocation()
		offX, offY := cores.RelativeViewportOffset(relX, relY, vs, rc.ActualWidth, rc.ActualHeight)
		return unprojectInOverlay(p, offX, offY, vs, camera)
	case rc.IsPerspective:
		return math.UnProject(math.NewVec2(p.X, p.Y), camera.View, camera.Projection, camera.Frustum.Z, rc.ActualWidth, rc.ActualHeight, camera.IsPerspective)
	default:
		anchor := rc.ScreenViewProjection.TransformCoordinate(ss.AbsolutePosition3D())
		return unprojectInOverlay(p, anchor.X-vs/2, anchor.Y-vs/2, vs, camera)
	}
}

func unprojectInOverlay(p math.Vec3, offX, offY, vs float32, camera renderer.CameraState) (math.Ray, bool) {
	px, py := p.X-offX, p.Y-offY
	if px < 0 || py < 0 || px > vs || py > vs {
		return math.Ray{}, false
	}
	return math.UnProject(math.NewVec2(px, py), camera.View, camera.Projection, cores.ScreenSpacedNearPlane, vs, vs, camera.IsPerspective)
}
