package scene

import (
	"sort"

	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
)

// HitTestResult is one intersection of a pick ray with a node.
type HitTestResult struct {
	Node     Node
	Distance float32
	PointHit math.Vec3
}

// SortHits orders hits nearest first.
func SortHits(hits []HitTestResult) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
}

// HitTest collects every hit below root, nearest first.
func HitTest(rc *renderer.RenderContext, root Node, ray math.Ray) []HitTestResult {
	hits := make([]HitTestResult, 0)
	if !root.Base().HitTest(rc, ray, &hits) {
		return nil
	}
	SortHits(hits)
	return hits
}

/**
 * @brief Builds the pick ray for a pixel of the main camera in rc and hit
 * tests the tree under root.
 */
func HitTestScreenPoint(rc *renderer.RenderContext, root Node, x, y float32) []HitTestResult {
	ray, ok := math.UnProject(math.NewVec2(x, y), rc.View, rc.Projection, rc.Frustum.Z, rc.ActualWidth, rc.ActualHeight, rc.IsPerspective)
	if !ok {
		return nil
	}
	return HitTest(rc, root, ray)
}
