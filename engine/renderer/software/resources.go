package software

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/math"
	"github.com/spaghettifunk/retina/engine/renderer"
)

type buffer struct {
	id       core.GUID
	kind     renderer.BufferKind
	name     string
	vertices []math.Vertex3D
	indices  []uint32
	size     int
	released atomic.Bool
	device   *Device
}

func (b *buffer) ID() core.GUID { return b.id }
func (b *buffer) Kind() renderer.BufferKind { return b.kind }
func (b *buffer) IsReleased() bool { return b.released.Load() }
func (b *buffer) Len() int { return b.size }

func (b *buffer) Release() error {
	if !b.released.CompareAndSwap(false, true) {
		return core.ErrResourceReleased
	}
	b.device.forget(b.id)
	b.vertices = nil
	b.indices = nil
	return nil
}

// colourTarget is a gg canvas the rasteriser fills.
type colourTarget struct {
	id     core.GUID
	canvas *gg.Context
	width  int
	height int
	msaa   int
}

func (t *colourTarget) ID() core.GUID { return t.id }
func (t *colourTarget) Width() int { return t.width }
func (t *colourTarget) Height() int { return t.height }

// Canvas exposes the 2D surface for overlay drawing.
func (t *colourTarget) Canvas() *gg.Context { return t.canvas }

// Image returns a copy of the current pixels.
func (t *colourTarget) Image() image.Image { return t.canvas.Image() }

type depthTarget struct {
	data   []float32
	width  int
	height int
}

func (t *depthTarget) Width() int { return t.width }
func (t *depthTarget) Height() int { return t.height }

func (t *depthTarget) clear(depth float32) {
	for i := range t.data {
		t.data[i] = depth
	}
}

// testAndSet writes depth at (x, y) when it is nearer than the stored value.
func (t *depthTarget) testAndSet(x, y int, depth float32) bool {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return true
	}
	i := y*t.width + x
	if depth > t.data[i] {
		return false
	}
	t.data[i] = depth
	return true
}
