package math

/**
 * @brief Right-handed perspective projection with a [0,1] depth range.
 *
 * @param fovY The vertical field of view in radians.
 * @param aspect Width divided by height.
 * @param zn The near clipping plane distance.
 * @param zf The far clipping plane distance.
 */
func NewMat4PerspectiveFovRH(fovY, aspect, zn, zf float32) Mat4 {
	yScale := 1.0 / ktan(fovY*0.5)
	xScale := yScale / aspect

	out := Mat4{}
	out.Data[0] = xScale
	out.Data[5] = yScale
	out.Data[10] = zf / (zn - zf)
	out.Data[11] = -1.0
	out.Data[14] = zn * zf / (zn - zf)
	return out
}

/**
 * @brief Right-handed orthographic projection of a view volume centred on
 * the view axis, with a [0,1] depth range.
 */
func NewMat4OrthoRH(width, height, zn, zf float32) Mat4 {
	out := Mat4{}
	out.Data[0] = 2.0 / width
	out.Data[5] = 2.0 / height
	out.Data[10] = 1.0 / (zn - zf)
	out.Data[14] = zn / (zn - zf)
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Creates a right-handed view matrix looking at target from eye.
 */
func NewMat4LookAtRH(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	out := Mat4{}
	out.Data[0] = xAxis.X
	out.Data[1] = yAxis.X
	out.Data[2] = zAxis.X
	out.Data[4] = xAxis.Y
	out.Data[5] = yAxis.Y
	out.Data[6] = zAxis.Y
	out.Data[8] = xAxis.Z
	out.Data[9] = yAxis.Z
	out.Data[10] = zAxis.Z
	out.Data[12] = -xAxis.Dot(eye)
	out.Data[13] = -yAxis.Dot(eye)
	out.Data[14] = -zAxis.Dot(eye)
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Maps normalized device coordinates to pixels of a width x height
 * target with the origin in the top left corner.
 */
func NewMat4Viewport(width, height float32) Mat4 {
	out := Mat4{}
	out.Data[0] = width * 0.5
	out.Data[5] = -height * 0.5
	out.Data[10] = 1.0
	out.Data[12] = width * 0.5
	out.Data[13] = height * 0.5
	out.Data[15] = 1.0
	return out
}

// IsPerspective reports whether a projection matrix was built as a perspective one.
func (mt Mat4) IsPerspective() bool {
	return mt.Data[11] != 0 && mt.Data[15] == 0
}

// Project maps a world point to pixel coordinates through view, projection and viewport size.
func Project(point Vec3, view, proj Mat4, width, height float32) Vec3 {
	svp := view.Mul(proj).Mul(NewMat4Viewport(width, height))
	return svp.TransformCoordinate(point)
}

/**
 * @brief Builds a world space picking ray through pixel (x, y) of a
 * width x height viewport.
 *
 * @param point The pixel coordinate, origin top left.
 * @param view The camera view matrix.
 * @param proj The camera projection matrix.
 * @param nearPlane The distance from the eye at which the ray starts.
 * @param width The viewport width.
 * @param height The viewport height.
 * @param isPerspective Whether proj is a perspective projection.
 * @return The ray and false when the view matrix cannot be inverted.
 */
func UnProject(point Vec2, view, proj Mat4, nearPlane, width, height float32, isPerspective bool) (Ray, bool) {
	invView, ok := view.Inverse()
	if !ok || width <= 0 || height <= 0 || proj.Data[0] == 0 || proj.Data[5] == 0 {
		return Ray{}, false
	}
	ndcX := 2.0*point.X/width - 1.0
	ndcY := 1.0 - 2.0*point.Y/height

	if isPerspective {
		dirView := Vec3{ndcX / proj.Data[0], ndcY / proj.Data[5], -1.0}
		dir := invView.TransformNormal(dirView).Normalize()
		eye := invView.Translation()
		return Ray{
			Position:  eye.Add(dir.MulScalar(nearPlane)),
			Direction: dir,
		}, true
	}

	local := Vec3{ndcX / proj.Data[0], ndcY / proj.Data[5], -nearPlane}
	return Ray{
		Position:  local.Transform(invView),
		Direction: invView.TransformNormal(NewVec3Forward()).Normalize(),
	}, true
}
