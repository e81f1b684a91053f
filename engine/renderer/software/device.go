package software

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/renderer"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

/**
 * @brief A CPU implementation of the device boundary. Colour targets are
 * gg canvases, depth targets are float slices.
 */
type Device struct {
	logger core.LogSink

	mu       sync.Mutex
	buffers  map[core.GUID]*buffer
	targets  int
	released bool

	context *Context

	lastFrame image.Image
	presents  int
}

// NewDevice matches renderer.DeviceFactory.
func NewDevice(logger core.LogSink) (renderer.Device, error) {
	return New(logger), nil
}

func New(logger core.LogSink) *Device {
	if logger == nil {
		logger = core.NopSink{}
	}
	d := &Device{
		logger:  logger,
		buffers: make(map[core.GUID]*buffer),
	}
	d.context = newContext(d)
	return d
}

func (d *Device) CreateBuffer(desc renderer.BufferDesc) (renderer.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, core.ErrDeviceNotReady
	}

	b := &buffer{
		id:     core.NewGUID(),
		kind:   desc.Kind,
		name:   desc.Name,
		device: d,
	}
	switch desc.Kind {
	case renderer.BufferKindVertex:
		if len(desc.Vertices) == 0 {
			return nil, fmt.Errorf("vertex buffer %q: no vertices", desc.Name)
		}
		b.vertices = append(b.vertices, desc.Vertices...)
		b.size = len(desc.Vertices)
	case renderer.BufferKindIndex:
		if len(desc.Indices) == 0 {
			return nil, fmt.Errorf("index buffer %q: no indices", desc.Name)
		}
		b.indices = append(b.indices, desc.Indices...)
		b.size = len(desc.Indices)
	case renderer.BufferKindConstant:
		b.size = desc.ByteSize
	default:
		return nil, fmt.Errorf("buffer %q: unknown kind %d", desc.Name, desc.Kind)
	}
	d.buffers[b.id] = b
	return b, nil
}

func (d *Device) forget(id core.GUID) {
	d.mu.Lock()
	delete(d.buffers, id)
	d.mu.Unlock()
}

func (d *Device) CreateRenderTargets(width, height int, msaa metadata.MSAALevel) (renderer.RenderTargetView, renderer.DepthStencilView, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("%dx%d: %w", width, height, core.ErrInvalidSize)
	}
	if !msaa.IsValid() {
		return nil, nil, fmt.Errorf("msaa level %d: %w", msaa, core.ErrInvalidConfig)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, nil, core.ErrDeviceNotReady
	}

	rtv := &colourTarget{
		id:     core.NewGUID(),
		canvas: gg.NewContext(width, height),
		width:  width,
		height: height,
		msaa:   int(msaa),
	}
	dsv := &depthTarget{
		data:   make([]float32, width*height),
		width:  width,
		height: height,
	}
	dsv.clear(1)
	d.targets++
	d.logger.Debug("render targets created", "id", core.ShortID(rtv.id), "width", width, "height", height, "msaa", int(msaa))
	return rtv, dsv, nil
}

func (d *Device) ReleaseRenderTargets(rtv renderer.RenderTargetView, dsv renderer.DepthStencilView) {
	if t, ok := rtv.(*colourTarget); ok && t.canvas != nil {
		_ = t.canvas.Close()
		t.canvas = nil
		d.mu.Lock()
		d.targets--
		d.mu.Unlock()
	}
	if t, ok := dsv.(*depthTarget); ok {
		t.data = nil
	}
}

func (d *Device) ImmediateContext() renderer.DeviceContext {
	return d.context
}

// Present copies the target into the front image.
func (d *Device) Present(rtv renderer.RenderTargetView) error {
	t, ok := rtv.(*colourTarget)
	if !ok || t.canvas == nil {
		return core.ErrDeviceNotReady
	}
	img := t.canvas.Image()
	d.mu.Lock()
	d.lastFrame = img
	d.presents++
	d.mu.Unlock()
	d.context.counters.Presents++
	return nil
}

// Snapshot returns the last presented frame, nil before the first Present.
func (d *Device) Snapshot() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastFrame
}

func (d *Device) LiveResources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

func (d *Device) LiveTargets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targets
}

func (d *Device) Release() error {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return core.ErrResourceReleased
	}
	d.released = true
	leaked := make([]*buffer, 0, len(d.buffers))
	for _, b := range d.buffers {
		leaked = append(leaked, b)
	}
	d.mu.Unlock()

	if len(leaked) > 0 {
		d.logger.Warn("releasing device with live buffers", "count", len(leaked))
	}
	for _, b := range leaked {
		_ = b.Release()
	}
	return nil
}

func (d *Device) lookup(b renderer.Buffer) (*buffer, error) {
	sb, ok := b.(*buffer)
	if !ok || sb == nil {
		return nil, fmt.Errorf("foreign buffer: %w", core.ErrDeviceNotReady)
	}
	if sb.IsReleased() {
		return nil, fmt.Errorf("buffer %q: %w", sb.name, core.ErrResourceReleased)
	}
	return sb, nil
}
