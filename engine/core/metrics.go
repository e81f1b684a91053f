package core

import "github.com/spaghettifunk/retina/engine/containers"

const AVG_COUNT = 30

// FrameMetrics keeps a rolling average of frame times and a frames-per-second counter.
type FrameMetrics struct {
	history            *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	TotalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{history: containers.NewRingQueue[float64](AVG_COUNT)}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if m.history.IsFull() {
		_, _ = m.history.Dequeue()
	}
	_ = m.history.Enqueue(frameMS)

	sum := 0.0
	m.history.Each(func(v float64) { sum += v })
	m.MSavg = sum / float64(m.history.Len())

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	m.Frames++
	m.TotalFrames++
}

func (m *FrameMetrics) FPSValue() float64 {
	return m.FPS
}

func (m *FrameMetrics) FrameTime() float64 {
	return m.MSavg
}

func (m *FrameMetrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
