package components

import (
	"github.com/spaghettifunk/retina/engine/math"
)

/** @brief How the camera projects the scene. */
type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

/**
 * @brief The main camera of a render host. The view matrix is derived from
 * the position, look direction and up vector and rebuilt lazily.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief Direction the camera looks at. Its length is irrelevant. */
	LookDirection math.Vec3
	/** @brief The up vector. */
	UpDirection math.Vec3
	/** @brief Perspective or orthographic. */
	Kind ProjectionKind
	/** @brief Vertical field of view in radians, perspective only. */
	FieldOfView float32
	/** @brief Width of the view volume, orthographic only. */
	Width float32
	NearPlane float32
	FarPlane  float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	ViewMatrix math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func NewOrthographicCamera(width float32) *Camera {
	camera := NewCamera()
	camera.Kind = ProjectionOrthographic
	camera.Width = width
	camera.NearPlane = 0.01
	return camera
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3(0, 0, 10)
	c.LookDirection = math.NewVec3(0, 0, -10)
	c.UpDirection = math.NewVec3Up()
	c.Kind = ProjectionPerspective
	c.FieldOfView = math.DegToRad(45)
	c.Width = 10
	c.NearPlane = 0.1
	c.FarPlane = 1000
	c.IsDirty = true
	c.ViewMatrix = math.NewMat4Identity()
}

func (c *Camera) IsPerspective() bool {
	return c.Kind == ProjectionPerspective
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetLookDirection(direction math.Vec3) {
	c.LookDirection = direction
	c.IsDirty = true
}

func (c *Camera) SetUpDirection(up math.Vec3) {
	c.UpDirection = up
	c.IsDirty = true
}

// LookAt points the camera at target from its current position.
func (c *Camera) LookAt(target math.Vec3) {
	c.LookDirection = target.Sub(c.Position)
	c.IsDirty = true
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAtRH(c.Position, c.Position.Add(c.LookDirection), c.UpDirection)
		c.IsDirty = false
	}
	return c.ViewMatrix
}

// GetProjection builds the projection for a target with the given aspect ratio.
func (c *Camera) GetProjection(aspect float32) math.Mat4 {
	if c.Kind == ProjectionOrthographic {
		return math.NewMat4OrthoRH(c.Width, c.Width/aspect, c.NearPlane, c.FarPlane)
	}
	return math.NewMat4PerspectiveFovRH(c.FieldOfView, aspect, c.NearPlane, c.FarPlane)
}

func (c *Camera) Forward() math.Vec3 {
	return c.LookDirection.Normalize()
}

func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(c.UpDirection).Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveUp(amount float32) {
	c.Position = c.Position.Add(c.UpDirection.Normalize().MulScalar(amount))
	c.IsDirty = true
}

// Orbit rotates the camera around target by angle radians about the up vector,
// keeping it pointed at target.
func (c *Camera) Orbit(target math.Vec3, angle float32) {
	q := math.NewQuatFromAxisAngle(c.UpDirection, angle)
	offset := c.Position.Sub(target).Transform(q.ToMat4())
	c.Position = target.Add(offset)
	c.LookDirection = target.Sub(c.Position)
	c.IsDirty = true
}
