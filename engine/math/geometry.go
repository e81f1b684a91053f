package math

// GeometryGenerateNormals assigns a face normal to every vertex of each triangle.
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalize()
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

/**
 * @brief Generates a box centred on the origin. Each face has its own four
 * vertices so that flat normals survive.
 *
 * @param width The extent along x.
 * @param height The extent along y.
 * @param depth The extent along z.
 * @param colour The colour of every vertex.
 */
func GenerateBoxGeometry(width, height, depth float32, colour Vec4) ([]Vertex3D, []uint32) {
	hw, hh, hd := width*0.5, height*0.5, depth*0.5

	faces := [6][4]Vec3{
		// front (+z)
		{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}},
		// back (-z)
		{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}},
		// left (-x)
		{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}},
		// right (+x)
		{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}},
		// top (+y)
		{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}},
		// bottom (-y)
		{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}},
	}

	vertices := make([]Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for f, face := range faces {
		base := uint32(f * 4)
		for _, p := range face {
			vertices = append(vertices, Vertex3D{Position: p, Colour: colour})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	GeometryGenerateNormals(vertices, indices)
	return vertices, indices
}

// GenerateAxisLines returns a line list for the x (red), y (green) and z (blue) axes.
func GenerateAxisLines(length float32) ([]Vertex3D, []uint32) {
	red := Vec4{1, 0, 0, 1}
	green := Vec4{0, 1, 0, 1}
	blue := Vec4{0, 0, 1, 1}
	vertices := []Vertex3D{
		{Position: Vec3{}, Colour: red}, {Position: Vec3{length, 0, 0}, Colour: red},
		{Position: Vec3{}, Colour: green}, {Position: Vec3{0, length, 0}, Colour: green},
		{Position: Vec3{}, Colour: blue}, {Position: Vec3{0, 0, length}, Colour: blue},
	}
	return vertices, []uint32{0, 1, 2, 3, 4, 5}
}
