package math

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Creates a quaternion from the given axis and angle (radians).
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	half := 0.5 * angle
	s := ksin(half)
	a := axis.Normalize()
	return Quaternion{s * a.X, s * a.Y, s * a.Z, kcos(half)}
}

func (q Quaternion) Normal() float32 {
	return ksqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) Normalize() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

/**
 * @brief Multiplies the provided quaternions (Hamilton product).
 */
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X,
		Y: -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y,
		Z: q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z,
		W: -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W,
	}
}

/**
 * @brief Creates a rotation matrix from the quaternion, laid out for row
 * vectors.
 */
func (q Quaternion) ToMat4() Mat4 {
	n := q.Normalize()
	xx, yy, zz := n.X*n.X, n.Y*n.Y, n.Z*n.Z
	xy, xz, yz := n.X*n.Y, n.X*n.Z, n.Y*n.Z
	wx, wy, wz := n.W*n.X, n.W*n.Y, n.W*n.Z

	out := NewMat4Identity()
	out.Data[0] = 1.0 - 2.0*(yy+zz)
	out.Data[1] = 2.0 * (xy + wz)
	out.Data[2] = 2.0 * (xz - wy)

	out.Data[4] = 2.0 * (xy - wz)
	out.Data[5] = 1.0 - 2.0*(xx+zz)
	out.Data[6] = 2.0 * (yz + wx)

	out.Data[8] = 2.0 * (xz + wy)
	out.Data[9] = 2.0 * (yz - wx)
	out.Data[10] = 1.0 - 2.0*(xx+yy)
	return out
}
