package renderer

import (
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer/components"
)

/**
 * @brief The camera basis a pass draws with. Screen spaced passes swap it
 * out and restore it afterwards.
 */
type CameraState struct {
	View          math.Mat4
	Projection    math.Mat4
	IsPerspective bool
	Position      math.Vec3
	LookDirection math.Vec3
	UpDirection   math.Vec3
	// Frustum holds (field of view or width, aspect, near, far).
	Frustum math.Vec4
}

/**
 * @brief Per-frame state shared by every node while a frame is drawn and
 * while hit tests run.
 */
type RenderContext struct {
	ActualWidth  float32
	ActualHeight float32

	CameraState
	ViewProjection       math.Mat4
	// ScreenViewProjection maps world points to pixels of the host target.
	ScreenViewProjection math.Mat4

	// RenderTarget and DepthStencil are the targets bound by the host.
	RenderTarget RenderTargetView
	DepthStencil DepthStencilView

	Lights      []LightParams
	FrameNumber uint64

	// EnableRenderFrustum culls general content outside the main camera.
	EnableRenderFrustum bool
}

func NewRenderContext() *RenderContext {
	rc := &RenderContext{}
	rc.Update(components.NewCamera(), 1, 1)
	return rc
}

// Update derives the camera matrices for a target of width x height pixels.
func (rc *RenderContext) Update(camera *components.Camera, width, height float32) {
	rc.ActualWidth = width
	rc.ActualHeight = height

	aspect := float32(1)
	if height > 0 {
		aspect = width / height
	}
	frustumX := camera.FieldOfView
	if !camera.IsPerspective() {
		frustumX = camera.Width
	}
	rc.SetCamera(CameraState{
		View:          camera.GetView(),
		Projection:    camera.GetProjection(aspect),
		IsPerspective: camera.IsPerspective(),
		Position:      camera.Position,
		LookDirection: camera.LookDirection,
		UpDirection:   camera.UpDirection,
		Frustum:       math.NewVec4(frustumX, aspect, camera.NearPlane, camera.FarPlane),
	})
}

// SetCamera replaces the camera basis and recomputes the derived matrices.
func (rc *RenderContext) SetCamera(state CameraState) {
	rc.CameraState = state
	rc.ViewProjection = state.View.Mul(state.Projection)
	rc.ScreenViewProjection = rc.ViewProjection.Mul(math.NewMat4Viewport(rc.ActualWidth, rc.ActualHeight))
}

func (rc *RenderContext) SaveCamera() CameraState {
	return rc.CameraState
}

func (rc *RenderContext) RestoreCamera(state CameraState) {
	rc.SetCamera(state)
}

// IsBoxVisible reports whether a world space box intersects the clip volume.
func (rc *RenderContext) IsBoxVisible(box math.BoundingBox) bool {
	if box.IsEmpty() {
		return true
	}
	outside := [6]int{}
	for _, c := range box.Corners() {
		p := c.ToVec4(1).Transform(rc.ViewProjection)
		if p.X < -p.W {
			outside[0]++
		}
		if p.X > p.W {
			outside[1]++
		}
		if p.Y < -p.W {
			outside[2]++
		}
		if p.Y > p.W {
			outside[3]++
		}
		if p.Z < 0 {
			outside[4]++
		}
		if p.Z > p.W {
			outside[5]++
		}
	}
	for _, n := range outside {
		if n == 8 {
			return false
		}
	}
	return true
}
