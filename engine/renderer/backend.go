package renderer

import "github.com/google/uuid"

// Maximum number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports a drawable area of zero, as happens while the window is minimized.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// PresentStatus classifies the non-fatal outcomes of acquiring or presenting an image.
type PresentStatus int

const (
	PresentSuccess PresentStatus = iota
	// The swapchain still works but no longer matches the surface exactly.
	PresentSuboptimal
	// The swapchain can no longer present to the surface and must be rebuilt.
	PresentOutOfDate
)

func (s PresentStatus) String() string {
	switch s {
	case PresentSuccess:
		return "success"
	case PresentSuboptimal:
		return "suboptimal"
	case PresentOutOfDate:
		return "out-of-date"
	default:
		return "unknown"
	}
}

type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// Window is the surface provider the renderer polls for size and resize events.
type Window interface {
	GetExtent() Extent
	ShouldClose() bool
	WasResized() bool
	ResetResizedFlag()
	// WaitEvents blocks until at least one window event arrives.
	WaitEvents()
}

// CommandBuffer is a recording handle owned by one frame slot.
type CommandBuffer interface {
	Begin() error
	End() error
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissor(x, y int32, width, height uint32)
}

// Swapchain is one immutable swapchain instance. A rebuild replaces it.
type Swapchain interface {
	ID() uuid.UUID
	Extent() Extent
	ImageCount() uint32
	// AcquireNextImage waits on the slot fence and acquires the next presentable image.
	AcquireNextImage(frameIndex int) (uint32, PresentStatus, error)
	// Submit queues the recorded commands for the slot and presents the image.
	Submit(cb CommandBuffer, frameIndex int, imageIndex uint32) (PresentStatus, error)
	BeginRenderPass(cb CommandBuffer, imageIndex uint32, clear ClearValues)
	EndRenderPass(cb CommandBuffer)
	// CompareFormats is true when both instances share color and depth formats.
	CompareFormats(other Swapchain) bool
	Destroy()
}

// Device creates swapchains and command buffers and can drain the GPU.
type Device interface {
	// CreateSwapchain builds a new instance. A non-nil previous is handed to the
	// driver as the old swapchain but stays owned by the caller.
	CreateSwapchain(extent Extent, previous Swapchain) (Swapchain, error)
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(buffers []CommandBuffer)
	WaitIdle() error
}
