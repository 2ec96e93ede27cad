package platform

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

/**
 * @brief The OS window and the source of the Vulkan surface.
 * Key events are routed into the engine input state and a framebuffer
 * resize raises a flag the renderer consumes.
 */
type Platform struct {
	Window *glfw.Window

	input   *core.Input
	resized atomic.Bool
	// Set by RequestClose, which may run on any goroutine.
	closeRequested atomic.Bool
	running        atomic.Bool
	initialized    bool
}

var _ renderer.Window = (*Platform)(nil)

func New(input *core.Input) (*Platform, error) {
	return &Platform{
		Window: nil,
		input:  input,
	}, nil
}

func (p *Platform) Startup(applicationName string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	p.initialized = true
	if !glfw.VulkanSupported() {
		p.terminate()
		return errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		p.terminate()
		return errors.Wrap(err, "failed to create window")
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()
	p.running.Store(true)

	core.LogInfo("window %q created: %dx%d", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() {
	p.running.Store(false)
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	p.terminate()
}

func (p *Platform) terminate() {
	if p.initialized {
		glfw.Terminate()
		p.initialized = false
	}
}

// PollEvents processes pending window events without blocking.
func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

func (p *Platform) WaitEvents() {
	glfw.WaitEvents()
}

// RequestClose marks the window as closing and wakes a blocked event wait.
// It is safe to call from any goroutine that finishes before Shutdown.
func (p *Platform) RequestClose() {
	p.closeRequested.Store(true)
	if p.running.Load() {
		glfw.PostEmptyEvent()
	}
}

func (p *Platform) GetExtent() renderer.Extent {
	width, height := p.Window.GetFramebufferSize()
	return renderer.Extent{Width: uint32(width), Height: uint32(height)}
}

func (p *Platform) ShouldClose() bool {
	if p.closeRequested.Load() {
		return true
	}
	return p.Window != nil && p.Window.ShouldClose()
}

func (p *Platform) WasResized() bool {
	return p.resized.Load()
}

func (p *Platform) ResetResizedFlag() {
	p.resized.Store(false)
}

func (p *Platform) GetInstanceProcAddress() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) GetRequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) CreateWindowSurface(instance interface{}) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		return
	}
	code := translateKey(key)
	if code == core.KEY_UNKNOWN {
		return
	}
	switch action {
	case glfw.Press, glfw.Repeat:
		p.input.ProcessKey(code, true)
	case glfw.Release:
		p.input.ProcessKey(code, false)
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.resized.Store(true)
	core.LogDebug("framebuffer resized to %dx%d", width, height)
}

var keyTable = map[glfw.Key]core.KeyCode{
	glfw.KeyEscape: core.KEY_ESCAPE,
	glfw.KeyEnter:  core.KEY_ENTER,
	glfw.KeySpace:  core.KEY_SPACE,
	glfw.KeyLeft:   core.KEY_LEFT,
	glfw.KeyUp:     core.KEY_UP,
	glfw.KeyRight:  core.KEY_RIGHT,
	glfw.KeyDown:   core.KEY_DOWN,
	glfw.KeyA:      core.KEY_A,
	glfw.KeyD:      core.KEY_D,
	glfw.KeyE:      core.KEY_E,
	glfw.KeyQ:      core.KEY_Q,
	glfw.KeyS:      core.KEY_S,
	glfw.KeyW:      core.KEY_W,
}

func translateKey(key glfw.Key) core.KeyCode {
	if code, ok := keyTable[key]; ok {
		return code
	}
	return core.KEY_UNKNOWN
}
