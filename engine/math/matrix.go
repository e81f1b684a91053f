package math

/**
 * @brief Creates and returns an identity matrix.
 */
func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Returns mt * other. With row vectors the result applies mt first
 * and other second.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums)
 */
func (mt Mat4) Transposed() Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out.Data[col*4+row] = mt.Data[row*4+col]
		}
	}
	return out
}

/**
 * @brief Returns the inverse of the matrix. The boolean is false when the
 * matrix is singular, in which case the identity is returned.
 */
func (mt Mat4) Inverse() (Mat4, bool) {
	a := mt.Data

	b00 := a[0]*a[5] - a[1]*a[4]
	b01 := a[0]*a[6] - a[2]*a[4]
	b02 := a[0]*a[7] - a[3]*a[4]
	b03 := a[1]*a[6] - a[2]*a[5]
	b04 := a[1]*a[7] - a[3]*a[5]
	b05 := a[2]*a[7] - a[3]*a[6]
	b06 := a[8]*a[13] - a[9]*a[12]
	b07 := a[8]*a[14] - a[10]*a[12]
	b08 := a[8]*a[15] - a[11]*a[12]
	b09 := a[9]*a[14] - a[10]*a[13]
	b10 := a[9]*a[15] - a[11]*a[13]
	b11 := a[10]*a[15] - a[11]*a[14]

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if kabs(det) < K_FLOAT_EPSILON*K_FLOAT_EPSILON {
		return NewMat4Identity(), false
	}
	d := 1.0 / det

	out := Mat4{}
	o := &out.Data
	o[0] = (a[5]*b11 - a[6]*b10 + a[7]*b09) * d
	o[1] = (a[2]*b10 - a[1]*b11 - a[3]*b09) * d
	o[2] = (a[13]*b05 - a[14]*b04 + a[15]*b03) * d
	o[3] = (a[10]*b04 - a[9]*b05 - a[11]*b03) * d
	o[4] = (a[6]*b08 - a[4]*b11 - a[7]*b07) * d
	o[5] = (a[0]*b11 - a[2]*b08 + a[3]*b07) * d
	o[6] = (a[14]*b02 - a[12]*b05 - a[15]*b01) * d
	o[7] = (a[8]*b05 - a[10]*b02 + a[11]*b01) * d
	o[8] = (a[4]*b10 - a[5]*b08 + a[7]*b06) * d
	o[9] = (a[1]*b08 - a[0]*b10 - a[3]*b06) * d
	o[10] = (a[12]*b04 - a[13]*b02 + a[15]*b00) * d
	o[11] = (a[9]*b02 - a[8]*b04 - a[11]*b00) * d
	o[12] = (a[5]*b07 - a[4]*b09 - a[6]*b06) * d
	o[13] = (a[0]*b09 - a[1]*b07 + a[2]*b06) * d
	o[14] = (a[13]*b01 - a[12]*b03 - a[14]*b00) * d
	o[15] = (a[8]*b03 - a[9]*b01 + a[10]*b00) * d
	return out, true
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

// Translation returns the translation row of the matrix.
func (mt Mat4) Translation() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

// TransformNormal transforms a direction, ignoring translation.
func (mt Mat4) TransformNormal(v Vec3) Vec3 {
	return Vec3{
		v.X*mt.Data[0] + v.Y*mt.Data[4] + v.Z*mt.Data[8],
		v.X*mt.Data[1] + v.Y*mt.Data[5] + v.Z*mt.Data[9],
		v.X*mt.Data[2] + v.Y*mt.Data[6] + v.Z*mt.Data[10],
	}
}

// TransformCoordinate transforms a point and divides by the resulting w.
func (mt Mat4) TransformCoordinate(v Vec3) Vec3 {
	r := v.ToVec4(1).Transform(mt)
	if r.W == 0 {
		return r.ToVec3()
	}
	inv := 1.0 / r.W
	return Vec3{r.X * inv, r.Y * inv, r.Z * inv}
}

func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
