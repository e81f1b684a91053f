package engine

import (
	"github.com/spaghettifunk/retina/engine/host"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize builds the scene. The host is started and its root is attached.
type Initialize func(h *host.RenderHost) error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
