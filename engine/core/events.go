package core

import "sync"

type EventContext struct {
	Data struct {
		I64 [2]int64
		U32 [4]uint32
		F32 [4]float32
		C   [4]string
	}
	// Err carries the failure for EVENT_CODE_EXCEPTION_OCCURRED.
	Err error
	// Payload carries a value that does not fit the fixed slots, such as a render target.
	Payload interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// A frame failed and was abandoned.
	/* Context usage:
	 * err := data.Err
	 * u32 frame = data.Data.U32[0];
	 */
	EVENT_CODE_EXCEPTION_OCCURRED SystemEventCode = 0x01

	// The host created new render targets.
	/* Context usage:
	 * u32 width = data.Data.U32[0];
	 * u32 height = data.Data.U32[1];
	 * target = data.Payload
	 */
	EVENT_CODE_NEW_RENDER_TARGET SystemEventCode = 0x02

	// The render loop started.
	EVENT_CODE_START_RENDER_LOOP SystemEventCode = 0x03

	// The render loop stopped.
	/* Context usage:
	 * u32 frames = data.Data.U32[0];
	 */
	EVENT_CODE_STOP_RENDER_LOOP SystemEventCode = 0x04

	// A screen spaced overlay camera was recomputed.
	/* Context usage:
	 * u32 perspective = data.Data.U32[0];
	 * f32 x, y, z = data.Data.F32[0..2]; camera position
	 * state = data.Payload.(renderer.CameraState)
	 */
	EVENT_CODE_COORDINATE_SYSTEM_CHANGED SystemEventCode = 0x05

	// The host was resized.
	/* Context usage:
	 * u32 width = data.Data.U32[0];
	 * u32 height = data.Data.U32[1];
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x06

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches notifications by code. Each render host owns one.
type EventBus struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[SystemEventCode][]registeredEvent)}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil, but only one nil listener per code.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (b *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil || code < 0 || code >= MAX_MESSAGE_CODES {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.registered[code] {
		if e.listener == listener {
			return false
		}
	}
	b.registered[code] = append(b.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

/**
 * Unregister the listener from the provided code.
 * @returns true if a registration was found and removed; otherwise false.
 */
func (b *EventBus) Unregister(code SystemEventCode, listener interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (b *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	b.mu.RLock()
	events := append([]registeredEvent(nil), b.registered[code]...)
	b.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (b *EventBus) Shutdown() {
	b.mu.Lock()
	b.registered = make(map[SystemEventCode][]registeredEvent)
	b.mu.Unlock()
}
