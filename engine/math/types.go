package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief a 4x4 row-major matrix used with row vectors (v * M).
 * Translation lives in Data[12], Data[13] and Data[14].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief An axis aligned box described by its minimum and maximum corners.
 */
type BoundingBox struct {
	Min Vec3
	Max Vec3
}

/** @brief A ray with an origin and a (normalized) direction. */
type Ray struct {
	Position  Vec3
	Direction Vec3
}

/**
 * @brief Represents a single vertex in 3D space.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The colour of the vertex. */
	Colour Vec4
}

/**
 * @brief Represents the local transform of a scene node. The
 * properties should be changed through the setters so that the
 * cached matrix is regenerated.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	Position Vec3
	/** @brief The rotation relative to the parent. */
	Rotation Quaternion
	/** @brief The scale relative to the parent. */
	Scale Vec3
	// IsDirty is set when the local matrix needs to be recalculated.
	IsDirty bool
	// Local is the cached scale * rotation * translation matrix.
	Local Mat4
}
