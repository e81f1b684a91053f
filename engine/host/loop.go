package host

import (
	"context"
	"time"

	"github.com/spaghettifunk/retina/engine/core"
)

// Tick draws a frame when one was requested since the last Tick.
func (h *RenderHost) Tick() bool {
	if !h.invalidated.Swap(false) {
		return false
	}
	return h.UpdateAndRender()
}

/**
 * @brief Ticks the host every interval until ctx is done. Start and stop
 * of the loop are published on the event bus.
 */
func (h *RenderHost) Run(ctx context.Context, interval time.Duration) error {
	if !h.started {
		return core.ErrDeviceNotReady
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.events.Fire(core.EVENT_CODE_START_RENDER_LOOP, h, core.EventContext{})
	h.logger.Debug("render loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			stopped := core.EventContext{}
			stopped.Data.U32[0] = uint32(h.frameNumber)
			h.events.Fire(core.EVENT_CODE_STOP_RENDER_LOOP, h, stopped)
			h.logger.Debug("render loop stopped", "frames", h.frameNumber)
			return nil
		case <-ticker.C:
			h.Tick()
		}
	}
}
