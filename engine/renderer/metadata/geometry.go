package metadata

import (
	"github.com/spaghettifunk/retina/engine/math"
)

/** @brief How indices are assembled into primitives. */
type PrimitiveTopology int

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyLineList
)

/**
 * @brief Vertex and index data for a drawable.
 */
type Geometry struct {
	/** @brief The geometry name. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices. */
	Indices []uint32
	/** @brief How Indices are assembled. */
	Topology PrimitiveTopology
	/** @brief The extents of the geometry in local coordinates. */
	Bounds math.BoundingBox
}

// NewGeometry wraps vertices and indices and computes the local bounds.
func NewGeometry(name string, vertices []math.Vertex3D, indices []uint32, topology PrimitiveTopology) *Geometry {
	return &Geometry{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Topology: topology,
		Bounds:   math.BoundingBoxFromVertices(vertices),
	}
}

func (g *Geometry) PrimitiveCount() int {
	if g.Topology == TopologyLineList {
		return len(g.Indices) / 2
	}
	return len(g.Indices) / 3
}
