package renderer

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/lumen/engine/core"
)

// Low intensity background the swapchain pass clears to.
var DefaultClearColor = [4]float32{0.01, 0.01, 0.01, 1.0}

// Renderer sequences the frame lifecycle on top of a Device and the current
// Swapchain. It owns one command buffer per frame slot and replaces the
// swapchain whenever the surface goes stale.
type Renderer struct {
	window    Window
	device    Device
	swapchain Swapchain
	clear     ClearValues

	commandBuffers []CommandBuffer

	currentImageIndex uint32
	currentFrameIndex int
	isFrameStarted    bool
	isPassStarted     bool

	rebuilds int
}

type Option func(*Renderer)

// WithClearColor overrides the color the swapchain pass clears to.
func WithClearColor(color [4]float32) Option {
	return func(r *Renderer) {
		r.clear.Color = color
	}
}

func New(window Window, device Device, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		window: window,
		device: device,
		clear: ClearValues{
			Color:   DefaultClearColor,
			Depth:   1.0,
			Stencil: 0,
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.recreateSwapchain(); err != nil {
		return nil, err
	}
	if r.swapchain == nil {
		return nil, errors.New("window closed before the first swapchain could be created")
	}
	if err := r.createCommandBuffers(); err != nil {
		r.swapchain.Destroy()
		return nil, err
	}
	return r, nil
}

// Shutdown releases the command buffer ring and the current swapchain.
func (r *Renderer) Shutdown() {
	r.freeCommandBuffers()
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
}

func (r *Renderer) Swapchain() Swapchain {
	return r.swapchain
}

func (r *Renderer) AspectRatio() float32 {
	extent := r.swapchain.Extent()
	return float32(extent.Width) / float32(extent.Height)
}

func (r *Renderer) IsFrameInProgress() bool {
	return r.isFrameStarted
}

// Rebuilds is the number of times the swapchain was replaced after startup.
func (r *Renderer) Rebuilds() int {
	return r.rebuilds
}

func (r *Renderer) CurrentCommandBuffer() CommandBuffer {
	core.Assert(r.isFrameStarted, "cannot get command buffer when frame not in progress")
	return r.commandBuffers[r.currentFrameIndex]
}

func (r *Renderer) FrameIndex() int {
	core.Assert(r.isFrameStarted, "cannot get frame index when frame not in progress")
	return r.currentFrameIndex
}

// BeginFrame acquires the next swapchain image and starts recording into the
// current slot's command buffer. A nil command buffer with a nil error means
// the swapchain was rebuilt and the caller must skip this frame.
func (r *Renderer) BeginFrame() (CommandBuffer, error) {
	core.Assert(!r.isFrameStarted, "can't call BeginFrame while already in progress")

	imageIndex, status, err := r.swapchain.AcquireNextImage(r.currentFrameIndex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire next swapchain image")
	}
	if status == PresentOutOfDate {
		core.LogDebug("swapchain %s out of date on acquire, rebuilding", r.swapchain.ID())
		return nil, r.recreateSwapchain()
	}

	r.currentImageIndex = imageIndex

	commandBuffer := r.commandBuffers[r.currentFrameIndex]
	if err := commandBuffer.Begin(); err != nil {
		return nil, errors.Wrap(err, "failed to begin recording command buffer")
	}
	r.isFrameStarted = true
	return commandBuffer, nil
}

// EndFrame closes the command buffer, submits it and presents. Stale or
// suboptimal surfaces and pending window resizes rebuild the swapchain.
func (r *Renderer) EndFrame() error {
	core.Assert(r.isFrameStarted, "can't call EndFrame while frame is not in progress")
	core.Assert(!r.isPassStarted, "can't call EndFrame while the swapchain render pass is open")

	defer func() {
		r.isFrameStarted = false
		r.currentFrameIndex = (r.currentFrameIndex + 1) % MaxFramesInFlight
	}()

	commandBuffer := r.CurrentCommandBuffer()
	if err := commandBuffer.End(); err != nil {
		return errors.Wrap(err, "failed to record command buffer")
	}

	status, err := r.swapchain.Submit(commandBuffer, r.currentFrameIndex, r.currentImageIndex)
	if err != nil {
		return errors.Wrap(err, "failed to present swapchain image")
	}

	if status == PresentOutOfDate || status == PresentSuboptimal || r.window.WasResized() {
		core.LogDebug("swapchain %s %s after present (window resized: %t), rebuilding",
			r.swapchain.ID(), status, r.window.WasResized())
		r.window.ResetResizedFlag()
		return r.recreateSwapchain()
	}
	return nil
}

func (r *Renderer) BeginSwapchainRenderPass(commandBuffer CommandBuffer) {
	core.Assert(r.isFrameStarted, "can't call BeginSwapchainRenderPass if frame is not in progress")
	core.Assert(!r.isPassStarted, "can't call BeginSwapchainRenderPass while the render pass is already open")
	core.Assert(commandBuffer == r.CurrentCommandBuffer(), "can't begin render pass on command buffer from a different frame")

	extent := r.swapchain.Extent()
	r.swapchain.BeginRenderPass(commandBuffer, r.currentImageIndex, r.clear)

	// Pipelines use dynamic viewport and scissor state.
	commandBuffer.SetViewport(0, 0, float32(extent.Width), float32(extent.Height), 0, 1)
	commandBuffer.SetScissor(0, 0, extent.Width, extent.Height)

	r.isPassStarted = true
}

func (r *Renderer) EndSwapchainRenderPass(commandBuffer CommandBuffer) {
	core.Assert(r.isFrameStarted, "can't call EndSwapchainRenderPass if frame is not in progress")
	core.Assert(r.isPassStarted, "can't call EndSwapchainRenderPass without an open render pass")
	core.Assert(commandBuffer == r.CurrentCommandBuffer(), "can't end render pass on command buffer from a different frame")

	r.swapchain.EndRenderPass(commandBuffer)
	r.isPassStarted = false
}

// recreateSwapchain blocks while the window has no drawable area, then builds a
// new swapchain from the current one and retires the old instance.
func (r *Renderer) recreateSwapchain() error {
	extent := r.window.GetExtent()
	for extent.IsZero() {
		if r.window.ShouldClose() {
			core.LogDebug("window closing while minimized, skipping swapchain rebuild")
			return nil
		}
		r.window.WaitEvents()
		extent = r.window.GetExtent()
	}

	if err := r.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "failed to wait for device idle before swapchain rebuild")
	}

	if r.swapchain == nil {
		swapchain, err := r.device.CreateSwapchain(extent, nil)
		if err != nil {
			return errors.Wrap(err, "failed to create swapchain")
		}
		r.swapchain = swapchain
		core.LogInfo("swapchain %s created: %dx%d, %d images", swapchain.ID(), extent.Width, extent.Height, swapchain.ImageCount())
		return nil
	}

	oldSwapchain := r.swapchain
	swapchain, err := r.device.CreateSwapchain(extent, oldSwapchain)
	if err != nil {
		return errors.Wrap(err, "failed to recreate swapchain")
	}
	r.swapchain = swapchain
	r.rebuilds++
	defer oldSwapchain.Destroy()

	if !oldSwapchain.CompareFormats(swapchain) {
		return errors.Wrapf(core.ErrSwapchainFormatChanged, "swapchain %s replaced %s", swapchain.ID(), oldSwapchain.ID())
	}

	core.LogInfo("swapchain %s replaced %s: %dx%d, %d images", swapchain.ID(), oldSwapchain.ID(), extent.Width, extent.Height, swapchain.ImageCount())
	return nil
}

func (r *Renderer) createCommandBuffers() error {
	buffers, err := r.device.AllocateCommandBuffers(MaxFramesInFlight)
	if err != nil {
		return errors.Wrap(err, "failed to allocate command buffers")
	}
	if len(buffers) != MaxFramesInFlight {
		return errors.Newf("allocated %d command buffers, want %d", len(buffers), MaxFramesInFlight)
	}
	r.commandBuffers = buffers
	return nil
}

func (r *Renderer) freeCommandBuffers() {
	if len(r.commandBuffers) == 0 {
		return
	}
	r.device.FreeCommandBuffers(r.commandBuffers)
	r.commandBuffers = nil
}
