package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type fakeWindow struct {
	// extents is consumed one value per GetExtent call. The last value sticks.
	extents  []Extent
	resized  bool
	closing  bool
	waits    int
	resets   int
	onWaitFn func(w *fakeWindow)
}

func newFakeWindow(extents ...Extent) *fakeWindow {
	return &fakeWindow{extents: extents}
}

func (w *fakeWindow) GetExtent() Extent {
	extent := w.extents[0]
	if len(w.extents) > 1 {
		w.extents = w.extents[1:]
	}
	return extent
}

func (w *fakeWindow) ShouldClose() bool { return w.closing }
func (w *fakeWindow) WasResized() bool  { return w.resized }

func (w *fakeWindow) ResetResizedFlag() {
	w.resized = false
	w.resets++
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if w.onWaitFn != nil {
		w.onWaitFn(w)
	}
}

type fakeCommandBuffer struct {
	slot      int
	recording bool
	begins    int
	ends      int
	viewport  [6]float32
	scissor   [4]int64
	beginErr  error
}

func (cb *fakeCommandBuffer) Begin() error {
	if cb.beginErr != nil {
		return cb.beginErr
	}
	if cb.recording {
		return errors.New("command buffer already recording")
	}
	cb.recording = true
	cb.begins++
	return nil
}

func (cb *fakeCommandBuffer) End() error {
	if !cb.recording {
		return errors.New("command buffer not recording")
	}
	cb.recording = false
	cb.ends++
	return nil
}

func (cb *fakeCommandBuffer) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	cb.viewport = [6]float32{x, y, width, height, minDepth, maxDepth}
}

func (cb *fakeCommandBuffer) SetScissor(x, y int32, width, height uint32) {
	cb.scissor = [4]int64{int64(x), int64(y), int64(width), int64(height)}
}

// fakeDevice hands out fakeSwapchains and scripts acquire/submit outcomes by
// global call number, starting at 1.
type fakeDevice struct {
	imageCount  uint32
	colorFormat int
	depthFormat int

	acquireStatus func(call int) PresentStatus
	submitStatus  func(call int) PresentStatus
	submitErr     func(call int) error

	acquires int
	submits  int

	swapchains []*fakeSwapchain
	waitIdles  int
	allocated  []CommandBuffer
	freed      int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{imageCount: 3, colorFormat: 50, depthFormat: 126}
}

func (d *fakeDevice) CreateSwapchain(extent Extent, previous Swapchain) (Swapchain, error) {
	sc := &fakeSwapchain{
		device:      d,
		id:          uuid.New(),
		extent:      extent,
		imageCount:  d.imageCount,
		colorFormat: d.colorFormat,
		depthFormat: d.depthFormat,
		previous:    previous,
	}
	d.swapchains = append(d.swapchains, sc)
	return sc, nil
}

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	buffers := make([]CommandBuffer, count)
	for i := range buffers {
		buffers[i] = &fakeCommandBuffer{slot: i}
	}
	d.allocated = buffers
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers []CommandBuffer) {
	d.freed += len(buffers)
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdles++
	return nil
}

func (d *fakeDevice) latest() *fakeSwapchain {
	return d.swapchains[len(d.swapchains)-1]
}

type presentRecord struct {
	frameIndex int
	imageIndex uint32
}

type fakeSwapchain struct {
	device      *fakeDevice
	id          uuid.UUID
	extent      Extent
	imageCount  uint32
	colorFormat int
	depthFormat int
	previous    Swapchain

	nextImage  uint32
	presented  []presentRecord
	passBegins int
	passEnds   int
	lastClear  ClearValues
	destroyed  int
}

func (s *fakeSwapchain) ID() uuid.UUID      { return s.id }
func (s *fakeSwapchain) Extent() Extent     { return s.extent }
func (s *fakeSwapchain) ImageCount() uint32 { return s.imageCount }

func (s *fakeSwapchain) AcquireNextImage(frameIndex int) (uint32, PresentStatus, error) {
	s.device.acquires++
	if s.device.acquireStatus != nil {
		if status := s.device.acquireStatus(s.device.acquires); status == PresentOutOfDate {
			return 0, status, nil
		}
	}
	idx := s.nextImage
	s.nextImage = (s.nextImage + 1) % s.imageCount
	return idx, PresentSuccess, nil
}

func (s *fakeSwapchain) Submit(cb CommandBuffer, frameIndex int, imageIndex uint32) (PresentStatus, error) {
	s.device.submits++
	if s.device.submitErr != nil {
		if err := s.device.submitErr(s.device.submits); err != nil {
			return PresentSuccess, err
		}
	}
	status := PresentSuccess
	if s.device.submitStatus != nil {
		status = s.device.submitStatus(s.device.submits)
	}
	if status != PresentOutOfDate {
		s.presented = append(s.presented, presentRecord{frameIndex: frameIndex, imageIndex: imageIndex})
	}
	return status, nil
}

func (s *fakeSwapchain) BeginRenderPass(cb CommandBuffer, imageIndex uint32, clear ClearValues) {
	s.passBegins++
	s.lastClear = clear
}

func (s *fakeSwapchain) EndRenderPass(cb CommandBuffer) {
	s.passEnds++
}

func (s *fakeSwapchain) CompareFormats(other Swapchain) bool {
	o, ok := other.(*fakeSwapchain)
	if !ok {
		return false
	}
	return s.colorFormat == o.colorFormat && s.depthFormat == o.depthFormat
}

func (s *fakeSwapchain) Destroy() {
	s.destroyed++
}
