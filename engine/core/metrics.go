package core

import "github.com/spaghettifunk/lumen/engine/containers"

const AVG_COUNT int = 30

// Metrics keeps a rolling frame-time average and a frames-per-second counter.
type Metrics struct {
	msTimes            *containers.RingQueue[float64]
	msSum              float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		msTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsedTime seconds. It reports true
// whenever a new FPS sample was produced. The average covers the last AVG_COUNT
// frames and stays zero until that many were recorded.
func (m *Metrics) Update(frameElapsedTime float64) bool {
	frameMS := frameElapsedTime * 1000.0
	if dropped, full := m.msTimes.Push(frameMS); full {
		m.msSum -= dropped
	}
	m.msSum += frameMS
	if m.msTimes.IsFull() {
		m.msAvg = m.msSum / float64(AVG_COUNT)
	}

	// Count all frames.
	m.frames++

	sampled := false
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
		sampled = true
	}
	return sampled
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	return m.msAvg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.fps, m.msAvg
}
