package testbed

import (
	"github.com/spaghettifunk/retina/engine"
	"github.com/spaghettifunk/retina/engine/config"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/host"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	host    *host.RenderHost
	logger  core.LogSink
	spinner *scene.MeshNode
	moon    *scene.MeshNode
	viewBox *scene.ViewBoxNode

	width  uint32
	height uint32
	// frames since the last hit test
	sinceHitTest int
}

// how often Update hit tests the corners of the target
const hitTestEvery = 30

func NewTestGame(app *engine.ApplicationConfig, logger core.LogSink) *TestGame {
	if app.Host == nil {
		app.Host = config.Default()
	}
	if logger == nil {
		logger = core.DefaultLogger()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State:             &gameState{logger: logger},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize(h *host.RenderHost) error {
	state := g.State.(*gameState)
	state.host = h
	state.logger.Debug("building testbed scene")

	camera := h.Camera()
	camera.SetPosition(math.NewVec3(10.5, 5.0, 9.5))
	camera.LookAt(math.NewVec3Zero())

	background := scene.NewBackgroundNode("sky", math.NewVec4(0.25, 0.35, 0.55, 1), math.NewVec4(0.05, 0.05, 0.08, 1))

	sun := scene.NewDirectionalLightNode("sun", math.NewVec4(0.9, 0.9, 0.85, 1), math.NewVec3(-1, -2, -1))
	ambient := scene.NewAmbientLightNode("ambient", math.NewVec4(0.2, 0.2, 0.25, 1))

	state.spinner = scene.NewBoxNode("spinner", 4, 4, 4, math.NewVec4(0.8, 0.3, 0.2, 1))
	state.spinner.AddPostEffect("highlight")

	// parented so it orbits with the spinner
	state.moon = scene.NewBoxNode("moon", 1, 1, 1, math.NewVec4(0.7, 0.7, 0.75, 1))
	state.moon.Transform = math.TransformFromPosition(math.NewVec3(5, 0, 0))
	if err := state.spinner.AddChild(state.moon); err != nil {
		return err
	}

	floor := scene.NewBoxNode("floor", 20, 0.2, 20, math.NewVec4(0.3, 0.5, 0.3, 1))
	floor.Transform = math.TransformFromPosition(math.NewVec3(0, -3, 0))

	outline := scene.NewOutlineEffectNode("outline", "highlight", math.NewVec4(1, 0.85, 0.1, 1))

	state.viewBox = scene.NewViewBoxNode("viewbox")
	state.viewBox.CoordinateSystemChanged = func(cam renderer.CameraState) {
		state.logger.Debug("view box camera moved", "position", cam.Position)
	}

	for _, n := range []scene.Node{background, ambient, sun, floor, state.spinner, outline, state.viewBox} {
		if err := h.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	rotation := math.NewQuatFromAxisAngle(math.NewVec3Up(), float32(0.5*deltaTime))
	state.spinner.Transform.Rotate(rotation)
	state.host.InvalidateRender()

	state.sinceHitTest++
	if state.sinceHitTest < hitTestEvery {
		return nil
	}
	state.sinceHitTest = 0

	// centre of the target, then the corner the view box sits in
	points := [][2]float32{
		{float32(state.width) / 2, float32(state.height) / 2},
		{float32(state.width) * 0.9, float32(state.height) * 0.1},
	}
	for _, p := range points {
		hits := state.host.HitTest(p[0], p[1])
		if len(hits) == 0 {
			state.logger.Debug("hit test", "x", p[0], "y", p[1], "hit", "none")
			continue
		}
		nearest := hits[0]
		state.logger.Info("hit test",
			"x", p[0], "y", p[1],
			"node", nearest.Node.Base().Name,
			"distance", nearest.Distance)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	state.logger.Debug("testbed shutdown", "spinner", state.spinner.IsAttached())
	return nil
}
