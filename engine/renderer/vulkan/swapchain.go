package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

/**
 * @brief One immutable swapchain instance together with everything sized after it:
 * image views, the depth attachment, the render pass and one framebuffer per image.
 * It also owns the per-frame-slot synchronization objects. A resize replaces the
 * whole instance.
 */
type VulkanSwapchain struct {
	context *VulkanContext
	id      uuid.UUID

	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	DepthFormat vk.Format
	PresentMode vk.PresentMode
	ImageExtent vk.Extent2D
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *VulkanImage
	Renderpass      *VulkanRenderpass

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer

	// Indexed by frame slot.
	imageAvailableSemaphores []vk.Semaphore
	renderFinishedSemaphores []vk.Semaphore
	inFlightFences           []*VulkanFence

	// Indexed by image. Holds pointers to fences owned by inFlightFences.
	imagesInFlight []*VulkanFence

	destroyed bool
}

var _ renderer.Swapchain = (*VulkanSwapchain)(nil)

// SwapchainCreate builds a swapchain for extent. When previous is set its handle
// is handed to the driver as the old swapchain. previous stays alive and is
// still owned by the caller.
func SwapchainCreate(context *VulkanContext, extent renderer.Extent, previous *VulkanSwapchain) (*VulkanSwapchain, error) {
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return nil, errors.New("surface reports no formats or present modes")
	}

	swapchain := &VulkanSwapchain{
		context:     context,
		id:          uuid.New(),
		ImageFormat: chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes, context.PreferredPresentMode),
		ImageExtent: chooseExtent(support.Capabilities, extent),
		DepthFormat: context.Device.DepthFormat,
	}
	imageCount := chooseImageCount(support.Capabilities)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.ImageExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if previous != nil {
		createInfo.OldSwapchain = previous.Handle
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError(res, "failed to create swapchain")
	}
	swapchain.Handle = handle

	if err := swapchain.build(); err != nil {
		swapchain.Destroy()
		return nil, err
	}

	core.LogInfo("Swapchain %s created: %dx%d, %d images, present mode %d",
		swapchain.id, swapchain.ImageExtent.Width, swapchain.ImageExtent.Height, len(swapchain.Images), swapchain.PresentMode)
	return swapchain, nil
}

// build creates everything that hangs off the swapchain handle.
func (vs *VulkanSwapchain) build() error {
	context := vs.context

	// Images
	var imageCount uint32
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &imageCount, nil); res != vk.Success {
		return resultError(res, "failed to get swapchain image count")
	}
	vs.Images = make([]vk.Image, imageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &imageCount, vs.Images); res != vk.Success {
		return resultError(res, "failed to get swapchain images")
	}

	// Views
	vs.Views = make([]vk.ImageView, 0, imageCount)
	for _, image := range vs.Images {
		view, err := ImageViewCreate(context, vs.ImageFormat.Format, image, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		vs.Views = append(vs.Views, view)
	}

	// Create depth image and its view.
	depth, err := ImageCreate(
		context,
		vs.ImageExtent.Width,
		vs.ImageExtent.Height,
		vs.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create depth attachment")
	}
	vs.DepthAttachment = depth

	renderpass, err := RenderpassCreate(context, vs.ImageFormat.Format, vs.DepthFormat)
	if err != nil {
		return err
	}
	vs.Renderpass = renderpass

	vs.Framebuffers = make([]*VulkanFramebuffer, 0, imageCount)
	for _, view := range vs.Views {
		framebuffer, err := FramebufferCreate(context, renderpass, vs.ImageExtent.Width, vs.ImageExtent.Height, []vk.ImageView{view, depth.View})
		if err != nil {
			return err
		}
		vs.Framebuffers = append(vs.Framebuffers, framebuffer)
	}

	return vs.createSyncObjects()
}

func (vs *VulkanSwapchain) createSyncObjects() error {
	context := vs.context
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	for i := 0; i < renderer.MaxFramesInFlight; i++ {
		var imageAvailable, renderFinished vk.Semaphore
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &imageAvailable); res != vk.Success {
			return resultError(res, "failed to create image available semaphore")
		}
		vs.imageAvailableSemaphores = append(vs.imageAvailableSemaphores, imageAvailable)

		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &renderFinished); res != vk.Success {
			return resultError(res, "failed to create render finished semaphore")
		}
		vs.renderFinishedSemaphores = append(vs.renderFinishedSemaphores, renderFinished)

		// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
		// This will prevent the application from waiting indefinitely for the first frame to render since it
		// cannot be rendered until a frame is "rendered" before it.
		fence, err := NewFence(context, true)
		if err != nil {
			return err
		}
		vs.inFlightFences = append(vs.inFlightFences, fence)
	}

	// In flight fences should not yet exist at this point, so clear the list.
	vs.imagesInFlight = make([]*VulkanFence, len(vs.Images))
	return nil
}

func (vs *VulkanSwapchain) ID() uuid.UUID {
	return vs.id
}

func (vs *VulkanSwapchain) Extent() renderer.Extent {
	return renderer.Extent{Width: vs.ImageExtent.Width, Height: vs.ImageExtent.Height}
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(vs.Images))
}

func (vs *VulkanSwapchain) AcquireNextImage(frameIndex int) (uint32, renderer.PresentStatus, error) {
	device := vs.context.Device.LogicalDevice

	if err := vs.inFlightFences[frameIndex].Wait(vs.context, math.MaxUint64); err != nil {
		return 0, renderer.PresentSuccess, errors.Wrapf(err, "in-flight fence wait failed for frame %d", frameIndex)
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(device, vs.Handle, math.MaxUint64, vs.imageAvailableSemaphores[frameIndex], vk.NullFence, &imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
		return imageIndex, renderer.PresentSuccess, nil
	case vk.ErrorOutOfDate:
		return 0, renderer.PresentOutOfDate, nil
	default:
		return 0, renderer.PresentSuccess, resultError(result, "failed to acquire swapchain image")
	}
}

func (vs *VulkanSwapchain) Submit(cb renderer.CommandBuffer, frameIndex int, imageIndex uint32) (renderer.PresentStatus, error) {
	commandBuffer := commandBufferHandle(cb)
	device := vs.context.Device

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if fence := vs.imagesInFlight[imageIndex]; fence != nil {
		if err := fence.Wait(vs.context, math.MaxUint64); err != nil {
			return renderer.PresentSuccess, errors.Wrapf(err, "wait for image %d failed", imageIndex)
		}
	}

	// Mark the image fence as in-use by this frame.
	inFlight := vs.inFlightFences[frameIndex]
	vs.imagesInFlight[imageIndex] = inFlight

	// Reset the fence for use on the next frame
	if err := inFlight.Reset(vs.context); err != nil {
		return renderer.PresentSuccess, err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vs.imageAvailableSemaphores[frameIndex]},
		// Each semaphore waits on the corresponding pipeline stage to complete. 1:1 ratio.
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vs.renderFinishedSemaphores[frameIndex]},
	}
	if res := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, inFlight.Handle); res != vk.Success {
		return renderer.PresentSuccess, resultError(res, "failed to submit draw command buffer")
	}
	commandBuffer.UpdateSubmitted()

	// Return the image to the swapchain for presentation.
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vs.renderFinishedSemaphores[frameIndex]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}

	result := vk.QueuePresent(device.PresentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return renderer.PresentSuccess, nil
	case vk.Suboptimal:
		return renderer.PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return renderer.PresentOutOfDate, nil
	default:
		return renderer.PresentSuccess, resultError(result, "failed to present swapchain image")
	}
}

func (vs *VulkanSwapchain) BeginRenderPass(cb renderer.CommandBuffer, imageIndex uint32, clear renderer.ClearValues) {
	core.Assert(int(imageIndex) < len(vs.Framebuffers), "image index %d out of range (%d framebuffers)", imageIndex, len(vs.Framebuffers))
	vs.Renderpass.Begin(commandBufferHandle(cb), vs.Framebuffers[imageIndex], vs.ImageExtent, clear)
}

func (vs *VulkanSwapchain) EndRenderPass(cb renderer.CommandBuffer) {
	vs.Renderpass.End(commandBufferHandle(cb))
}

func (vs *VulkanSwapchain) CompareFormats(other renderer.Swapchain) bool {
	o, ok := other.(*VulkanSwapchain)
	if !ok || o == nil {
		return false
	}
	return vs.ImageFormat.Format == o.ImageFormat.Format && vs.DepthFormat == o.DepthFormat
}

// Destroy releases every object owned by the instance. Later calls are no-ops.
func (vs *VulkanSwapchain) Destroy() {
	if vs.destroyed {
		return
	}
	vs.destroyed = true

	context := vs.context
	device := context.Device.LogicalDevice

	for _, fence := range vs.inFlightFences {
		fence.Destroy(context)
	}
	vs.inFlightFences = nil
	vs.imagesInFlight = nil
	for _, semaphore := range vs.imageAvailableSemaphores {
		vk.DestroySemaphore(device, semaphore, context.Allocator)
	}
	vs.imageAvailableSemaphores = nil
	for _, semaphore := range vs.renderFinishedSemaphores {
		vk.DestroySemaphore(device, semaphore, context.Allocator)
	}
	vs.renderFinishedSemaphores = nil

	for _, framebuffer := range vs.Framebuffers {
		framebuffer.Destroy(context)
	}
	vs.Framebuffers = nil

	if vs.Renderpass != nil {
		vs.Renderpass.Destroy(context)
		vs.Renderpass = nil
	}

	if vs.DepthAttachment != nil {
		vs.DepthAttachment.Destroy(context)
		vs.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for _, view := range vs.Views {
		vk.DestroyImageView(device, view, context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
	core.LogDebug("Swapchain %s destroyed", vs.id)
}

// SwapchainRenderpass returns the render pass pipelines must be compatible with.
func SwapchainRenderpass(sc renderer.Swapchain) *VulkanRenderpass {
	vs, ok := sc.(*VulkanSwapchain)
	core.Assert(ok, "swapchain %T was not created by the Vulkan backend", sc)
	return vs.Renderpass
}

// chooseSurfaceFormat prefers 8-bit BGRA sRGB and otherwise takes whatever the surface lists first.
func chooseSurfaceFormat(available []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range available {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return available[0]
}

// choosePresentMode honors preferred when supported, then mailbox. FIFO is always available.
func choosePresentMode(available []vk.PresentMode, preferred vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == preferred {
			return mode
		}
	}
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

func chooseExtent(capabilities vk.SurfaceCapabilities, window renderer.Extent) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  lmath.Clamp(window.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: lmath.Clamp(window.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image above the minimum. A maximum of zero means unbounded.
func chooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
