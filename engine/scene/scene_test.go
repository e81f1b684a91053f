package scene

import (
	"testing"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/components"
	"github.com/spaghettifunk/retina/engine/renderer/cores"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
	"github.com/spaghettifunk/retina/engine/renderer/software"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHost struct {
	id            core.GUID
	device        *software.Device
	effects       *effects.Manager
	events        *core.EventBus
	invalidations int
}

func newTestHost() *testHost {
	return &testHost{
		id:      core.NewGUID(),
		device:  software.New(nil),
		effects: effects.NewDefaultManager(),
		events:  core.NewEventBus(),
	}
}

func (h *testHost) ID() core.GUID                    { return h.id }
func (h *testHost) Device() renderer.Device          { return h.device }
func (h *testHost) EffectsManager() *effects.Manager { return h.effects }
func (h *testHost) RenderTechnique() string          { return effects.TechniqueMesh }
func (h *testHost) Logger() core.LogSink             { return core.NopSink{} }
func (h *testHost) Events() *core.EventBus           { return h.events }
func (h *testHost) InvalidateRender()                { h.invalidations++ }

func renderContext(camera *components.Camera, width, height float32) *renderer.RenderContext {
	rc := renderer.NewRenderContext()
	rc.Update(camera, width, height)
	return rc
}

// cornerGizmo builds a 64 pixel overlay in the top right corner holding a 16 unit box.
func cornerGizmo(t *testing.T, host Host) (*GroupNode, *ScreenSpacedNode, *MeshNode) {
	t.Helper()
	root := NewGroupNode("root")
	overlay := NewScreenSpacedNode("gizmo")
	overlay.SetRelativeScreenLocation(1, 1)
	overlay.SetSize(64)
	box := NewBoxNode("gizmo.box", 16, 16, 16, math.NewVec4(1, 0, 0, 1))
	require.NoError(t, overlay.AddChild(box))
	require.NoError(t, root.AddChild(NewBoxNode("scene.box", 2, 2, 2, math.NewVec4(0, 1, 0, 1))))
	require.NoError(t, root.AddChild(overlay))
	require.NoError(t, root.Attach(host))
	root.UpdateWorld(math.NewMat4Identity())
	return root, overlay, box
}

func TestRelativeOverlayHitTest(t *testing.T) {
	host := newTestHost()
	rc := renderContext(components.NewCamera(), 800, 600)
	root, _, box := cornerGizmo(t, host)

	hits := HitTestScreenPoint(rc, root, 750, 10)
	require.Len(t, hits, 1)
	assert.Same(t, box, hits[0].Node)
	assert.Greater(t, hits[0].Distance, float32(0))
	assert.InDelta(t, 8, hits[0].PointHit.Z, 1e-3)

	assert.Empty(t, HitTestScreenPoint(rc, root, 10, 10))
}

func TestOverlayHitsReplaceOrKeepCallerHits(t *testing.T) {
	host := newTestHost()
	rc := renderContext(components.NewCamera(), 800, 600)
	_, overlay, box := cornerGizmo(t, host)
	sentinel := HitTestResult{Node: overlay, Distance: 1}

	miss, ok := math.UnProject(math.NewVec2(10, 10), rc.View, rc.Projection, rc.Frustum.Z, 800, 600, true)
	require.True(t, ok)
	hits := []HitTestResult{sentinel}
	assert.False(t, overlay.HitTest(rc, miss, &hits))
	assert.Equal(t, []HitTestResult{sentinel}, hits)

	hit, ok := math.UnProject(math.NewVec2(750, 10), rc.View, rc.Projection, rc.Frustum.Z, 800, 600, true)
	require.True(t, ok)
	assert.True(t, overlay.HitTest(rc, hit, &hits))
	require.Len(t, hits, 1)
	assert.Same(t, box, hits[0].Node)
}

func TestReprojectAbsoluteUnderOrthographicCamera(t *testing.T) {
	host := newTestHost()
	rc := renderContext(components.NewOrthographicCamera(20), 800, 600)
	overlay := NewScreenSpacedNode("anchor")
	overlay.SetMode(cores.ScreenSpacedModeAbsolutePosition3D)
	require.NoError(t, overlay.Attach(host))

	centre, ok := math.UnProject(math.NewVec2(400, 300), rc.View, rc.Projection, rc.Frustum.Z, 800, 600, false)
	require.True(t, ok)
	ray, ok := ReprojectRay(rc, overlay.ScreenSpaceCore(), centre)
	require.True(t, ok)
	// eye at the camera distance, origin pushed by the overlay near plane
	assert.True(t, ray.Position.Compare(math.NewVec3(0, 0, 20-cores.ScreenSpacedNearPlane), 1e-3), ray.Position)
	assert.True(t, ray.Direction.Compare(math.NewVec3(0, 0, -1), 1e-3), ray.Direction)

	corner, ok := math.UnProject(math.NewVec2(10, 10), rc.View, rc.Projection, rc.Frustum.Z, 800, 600, false)
	require.True(t, ok)
	_, ok = ReprojectRay(rc, overlay.ScreenSpaceCore(), corner)
	assert.False(t, ok)
}

func TestReprojectAbsoluteUnderPerspectiveCamera(t *testing.T) {
	host := newTestHost()
	rc := renderContext(components.NewCamera(), 800, 600)
	overlay := NewScreenSpacedNode("anchor")
	overlay.SetMode(cores.ScreenSpacedModeAbsolutePosition3D)
	require.NoError(t, overlay.Attach(host))

	in, ok := math.UnProject(math.NewVec2(123, 456), rc.View, rc.Projection, rc.Frustum.Z, 800, 600, true)
	require.True(t, ok)
	out, ok := ReprojectRay(rc, overlay.ScreenSpaceCore(), in)
	require.True(t, ok)
	assert.True(t, out.Position.Compare(in.Position, 1e-3))
	assert.True(t, out.Direction.Compare(in.Direction, 1e-3))
}

func TestScreenSpacedTypePropagates(t *testing.T) {
	host := newTestHost()
	overlay := NewScreenSpacedNode("overlay")
	group := NewGroupNode("group")
	require.NoError(t, overlay.AddChild(group))
	mesh := NewBoxNode("mesh", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, group.AddChild(mesh))

	assert.Equal(t, metadata.RenderTypeScreenSpaced, group.RenderType())
	assert.Equal(t, metadata.RenderTypeScreenSpaced, mesh.RenderType())

	require.NoError(t, overlay.Attach(host))
	overlay.Detach()
	require.NoError(t, overlay.Attach(host))
	assert.Equal(t, metadata.RenderTypeScreenSpaced, mesh.RenderType())

	// existing subtrees switch too
	plain := NewGroupNode("plain")
	leaf := NewBoxNode("leaf", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, plain.AddChild(leaf))
	plain.SetRenderType(metadata.RenderTypeScreenSpaced)
	assert.Equal(t, metadata.RenderTypeScreenSpaced, leaf.RenderType())
}

func TestAttachIsIdempotentAndDetachReleases(t *testing.T) {
	host := newTestHost()
	mesh := NewBoxNode("mesh", 1, 1, 1, math.NewVec4(1, 1, 1, 1))

	require.NoError(t, mesh.Attach(host))
	first := mesh.RenderCore()
	require.NoError(t, mesh.Attach(host))
	assert.Equal(t, 2, host.device.LiveResources())
	assert.True(t, mesh.IsAttached())

	mesh.Detach()
	mesh.Detach()
	assert.Equal(t, 0, host.device.LiveResources())
	assert.False(t, mesh.RenderCore().IsAttached())

	require.NoError(t, mesh.Attach(host))
	assert.Same(t, first, mesh.RenderCore())
	assert.Equal(t, 2, host.device.LiveResources())
}

func TestAttachRollsBackOnMissingTechnique(t *testing.T) {
	host := newTestHost()
	host.effects = effects.NewManager()
	require.NoError(t, host.effects.Register(&effects.Technique{Name: effects.TechniqueMesh, Passes: []effects.Pass{{Name: "default"}}}))

	root := NewGroupNode("root")
	mesh := NewBoxNode("mesh", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	axes := NewAxisNode("axes", 1)
	require.NoError(t, root.AddChild(mesh))
	require.NoError(t, root.AddChild(axes))

	err := root.Attach(host)
	assert.ErrorIs(t, err, core.ErrTechniqueNotFound)
	assert.False(t, root.IsAttached())
	assert.False(t, mesh.IsAttached())
	assert.False(t, axes.IsAttached())
	assert.Equal(t, 0, host.device.LiveResources())
}

func TestAddChildRules(t *testing.T) {
	host := newTestHost()
	root := NewGroupNode("root")
	require.NoError(t, root.Attach(host))

	child := NewBoxNode("child", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	require.NoError(t, root.AddChild(child))
	assert.True(t, child.IsAttached())
	assert.Same(t, root, child.Parent())

	other := NewGroupNode("other")
	assert.ErrorIs(t, other.AddChild(child), ErrAlreadyParented)
	assert.ErrorIs(t, child.AddChild(root), ErrCycle)

	assert.True(t, root.RemoveChild(child))
	assert.False(t, child.IsAttached())
	assert.Nil(t, child.Parent())
	assert.False(t, root.RemoveChild(child))
	assert.Equal(t, 0, host.device.LiveResources())
}

func TestOnChildAddedRunsSynchronously(t *testing.T) {
	parent := &recordingNode{}
	parent.InitNode(parent, "parent", metadata.RenderTypeOpaque)
	child := NewGroupNode("child")
	require.NoError(t, parent.AddChild(child))
	require.Len(t, parent.added, 1)
	assert.Same(t, child, parent.added[0])
}

type recordingNode struct {
	NodeBase
	added []Node
}

func (n *recordingNode) OnChildAdded(child Node) {
	n.added = append(n.added, child)
}

func TestCoordinateSystemChangedIsForwarded(t *testing.T) {
	host := newTestHost()
	fired := 0
	var last core.EventContext
	require.True(t, host.events.Register(core.EVENT_CODE_COORDINATE_SYSTEM_CHANGED, t, func(code core.SystemEventCode, sender, _ interface{}, data core.EventContext) bool {
		fired++
		last = data
		_, ok := data.Payload.(renderer.CameraState)
		assert.True(t, ok)
		return false
	}))

	overlay := NewViewBoxNode("viewbox")
	var seen []renderer.CameraState
	overlay.CoordinateSystemChanged = func(state renderer.CameraState) { seen = append(seen, state) }
	require.NoError(t, overlay.Attach(host))

	camera := components.NewCamera()
	rc := renderContext(camera, 800, 600)
	overlay.ScreenSpaceCore().UpdateCamera(rc)
	overlay.ScreenSpaceCore().UpdateCamera(rc)
	assert.Equal(t, 1, fired)
	require.Len(t, seen, 1)

	camera.SetPosition(math.NewVec3(10, 0, 0))
	camera.LookAt(math.NewVec3Zero())
	rc.Update(camera, 800, 600)
	overlay.ScreenSpaceCore().UpdateCamera(rc)
	assert.Equal(t, 2, fired)
	assert.True(t, seen[1].Position.Compare(math.NewVec3(20, 0, 0), 1e-4))
	assert.Equal(t, uint32(1), last.Data.U32[0])
	assert.InDelta(t, 20, last.Data.F32[0], 1e-4)
	assert.InDelta(t, 0, last.Data.F32[2], 1e-4)

	overlay.SetIsPerspective(false)
	overlay.ScreenSpaceCore().UpdateCamera(rc)
	assert.Equal(t, 3, fired)
	assert.Equal(t, uint32(0), last.Data.U32[0])
}

func TestScreenSpacedRenderUsesOverlayViewport(t *testing.T) {
	host := newTestHost()
	rtv, dsv, err := host.device.CreateRenderTargets(800, 600, metadata.MSAADisable)
	require.NoError(t, err)
	rc := renderContext(components.NewCamera(), 800, 600)
	rc.RenderTarget, rc.DepthStencil = rtv, dsv
	dc := host.device.ImmediateContext()
	dc.SetRenderTargets(rtv, dsv)
	full := renderer.NewViewport(800, 600)
	dc.SetViewport(full)

	viewBox := NewViewBoxNode("viewbox")
	require.NoError(t, viewBox.Attach(host))
	viewBox.UpdateWorld(math.NewMat4Identity())

	require.NoError(t, viewBox.Render(rc, dc))
	assert.Equal(t, 2, dc.Counters().DrawCalls)
	assert.Equal(t, 1, dc.Counters().DepthClears)
	assert.Equal(t, full, dc.Viewport())

	viewBox.SetVisible(false)
	dc.ResetCounters()
	require.NoError(t, viewBox.Render(rc, dc))
	assert.Equal(t, 0, dc.Counters().DrawCalls)
}

func TestChildrenOfOverlayIgnoreParentWorld(t *testing.T) {
	root := NewGroupNode("root")
	root.Transform.SetPosition(math.NewVec3(5, 0, 0))
	overlay := NewScreenSpacedNode("overlay")
	box := NewBoxNode("box", 1, 1, 1, math.NewVec4(1, 1, 1, 1))
	box.Transform.SetPosition(math.NewVec3(0, 1, 0))
	require.NoError(t, overlay.AddChild(box))
	require.NoError(t, root.AddChild(overlay))

	root.UpdateWorld(math.NewMat4Identity())
	assert.True(t, box.World().Translation().Compare(math.NewVec3(0, 1, 0), 1e-6))
	assert.True(t, overlay.World().Translation().Compare(math.NewVec3(5, 0, 0), 1e-6))
}

func TestMeshHitTestMissesOutsideTriangles(t *testing.T) {
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(2, 0, 0)},
		{Position: math.NewVec3(0, 2, 0)},
	}
	wedge := NewMeshNode("wedge", metadata.NewGeometry("wedge", vertices, []uint32{0, 1, 2}, metadata.TopologyTriangleList))
	down := math.NewVec3(0, 0, -1)

	// inside the bounds, past the hypotenuse
	var hits []HitTestResult
	assert.False(t, wedge.HitTestSelf(nil, math.NewMat4Identity(), math.Ray{Position: math.NewVec3(1.8, 1.8, 5), Direction: down}, &hits))
	assert.Empty(t, hits)

	assert.True(t, wedge.HitTestSelf(nil, math.NewMat4Identity(), math.Ray{Position: math.NewVec3(0.5, 0.5, 5), Direction: down}, &hits))
	require.Len(t, hits, 1)
	assert.InDelta(t, 5, hits[0].Distance, 1e-4)
	assert.True(t, hits[0].PointHit.Compare(math.NewVec3(0.5, 0.5, 0), 1e-4))

	// the same miss once the wedge is moved
	model := math.NewMat4Translation(math.NewVec3(10, 0, 0))
	hits = nil
	assert.False(t, wedge.HitTestSelf(nil, model, math.Ray{Position: math.NewVec3(11.8, 1.8, 5), Direction: down}, &hits))
	assert.True(t, wedge.HitTestSelf(nil, model, math.Ray{Position: math.NewVec3(10.5, 0.5, 5), Direction: down}, &hits))
	require.Len(t, hits, 1)
	assert.True(t, hits[0].PointHit.Compare(math.NewVec3(10.5, 0.5, 0), 1e-4))
}

func TestMeshHitTestPicksNearestTriangle(t *testing.T) {
	box := NewBoxNode("box", 2, 2, 2, math.NewVec4(1, 1, 1, 1))
	var hits []HitTestResult
	require.True(t, box.HitTestSelf(nil, math.NewMat4Identity(), math.Ray{Position: math.NewVec3(0.3, 0.2, 10), Direction: math.NewVec3(0, 0, -1)}, &hits))
	require.Len(t, hits, 1)
	assert.InDelta(t, 9, hits[0].Distance, 1e-4)
}

func TestLineHitTestKeepsBoxTest(t *testing.T) {
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(2, 2, 0)},
	}
	line := NewLineNode("diagonal", vertices, []uint32{0, 1})
	var hits []HitTestResult
	assert.True(t, line.HitTestSelf(nil, math.NewMat4Identity(), math.Ray{Position: math.NewVec3(1.8, 0.2, 5), Direction: math.NewVec3(0, 0, -1)}, &hits))
}
