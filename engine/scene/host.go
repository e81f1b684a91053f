package scene

import (
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/effects"
)

// Host is what nodes need from the render host they attach to.
type Host interface {
	ID() core.GUID
	Device() renderer.Device
	EffectsManager() *effects.Manager
	// RenderTechnique is the technique used by nodes without a default of their own.
	RenderTechnique() string
	Logger() core.LogSink
	Events() *core.EventBus
	InvalidateRender()
}
