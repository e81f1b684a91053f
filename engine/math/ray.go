package math

import "github.com/chewxy/math32"

// NewBoundingBoxEmpty returns a box that any ExpandByPoint call will replace.
func NewBoundingBoxEmpty() BoundingBox {
	return BoundingBox{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

func (b BoundingBox) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

func (b BoundingBox) ExpandByPoint(p Vec3) BoundingBox {
	return BoundingBox{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return BoundingBox{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

func (b BoundingBox) Center() Vec3 {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

func (b BoundingBox) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Transform returns the axis aligned box enclosing the transformed corners.
func (b BoundingBox) Transform(m Mat4) BoundingBox {
	if b.IsEmpty() {
		return b
	}
	out := NewBoundingBoxEmpty()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(c.Transform(m))
	}
	return out
}

// BoundingBoxFromVertices returns the box enclosing every vertex position.
func BoundingBoxFromVertices(vertices []Vertex3D) BoundingBox {
	out := NewBoundingBoxEmpty()
	for i := range vertices {
		out = out.ExpandByPoint(vertices[i].Position)
	}
	return out
}

// PointAt returns the point at distance t along the ray.
func (r Ray) PointAt(t float32) Vec3 {
	return r.Position.Add(r.Direction.MulScalar(t))
}

// Transform moves the ray into the space described by m.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{
		Position:  r.Position.Transform(m),
		Direction: m.TransformNormal(r.Direction).Normalize(),
	}
}

/**
 * @brief Slab test between a ray and a box.
 *
 * @return The distance along the ray to the nearest intersection, and
 * whether there is one in front of the ray origin.
 */
func (r Ray) IntersectBox(b BoundingBox) (float32, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin := -math32.Inf(1)
	tmax := math32.Inf(1)

	origin := [3]float32{r.Position.X, r.Position.Y, r.Position.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	bmin := [3]float32{b.Min.X, b.Min.Y, b.Min.Z}
	bmax := [3]float32{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if kabs(dir[i]) < K_FLOAT_EPSILON {
			if origin[i] < bmin[i] || origin[i] > bmax[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t1 := (bmin[i] - origin[i]) * inv
		t2 := (bmax[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance along the ray to triangle abc. Both windings hit.
func (r Ray) IntersectTriangle(a, b, c Vec3) (float32, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if kabs(det) < K_FLOAT_EPSILON {
		return 0, false
	}
	inv := 1.0 / det
	s := r.Position.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := edge2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
