package vulkan

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// SurfaceProvider is the part of the platform window the backend needs to talk to Vulkan.
type SurfaceProvider interface {
	GetInstanceProcAddress() unsafe.Pointer
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}) (uintptr, error)
}

type VulkanBackendConfig struct {
	ApplicationName string
	// Enables the Khronos validation layer and the debug report callback.
	Validation  bool
	PresentMode vk.PresentMode
}

/**
 * @brief The Vulkan implementation of renderer.Device. It owns the instance,
 * the surface and the logical device every swapchain is created against.
 */
type VulkanBackend struct {
	surfaceProvider SurfaceProvider
	config          VulkanBackendConfig
	context         *VulkanContext
}

var _ renderer.Device = (*VulkanBackend)(nil)

func New(surfaceProvider SurfaceProvider, config VulkanBackendConfig) *VulkanBackend {
	return &VulkanBackend{
		surfaceProvider: surfaceProvider,
		config:          config,
		context: &VulkanContext{
			Allocator:            nil,
			PreferredPresentMode: config.PresentMode,
		},
	}
}

func (vb *VulkanBackend) Context() *VulkanContext {
	return vb.context
}

// Initialize creates the instance, the optional debug callback, the surface and the device.
func (vb *VulkanBackend) Initialize() error {
	procAddr := vb.surfaceProvider.GetInstanceProcAddress()
	if procAddr == nil {
		return errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vk")
	}

	if err := vb.createInstance(); err != nil {
		return err
	}

	if vb.config.Validation {
		if err := vb.createDebugCallback(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vb.surfaceProvider.CreateWindowSurface(vb.context.Instance)
	if err != nil {
		return errors.Wrap(err, "vulkan surface creation failed")
	}
	vb.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vb.context); err != nil {
		return errors.Wrap(err, "failed to create device")
	}

	core.LogInfo("Vulkan backend initialized successfully.")
	return nil
}

func (vb *VulkanBackend) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vb.config.ApplicationName),
		PEngineName:        VulkanSafeString("Lumen Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := instanceExtensions(vb.surfaceProvider.GetRequiredInstanceExtensions(), runtime.GOOS, vb.config.Validation)
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	core.LogDebug("Required extensions: %s", strings.Join(requiredExtensions, ", "))

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var layers []string
	if vb.config.Validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := instanceLayers()
		if err != nil {
			return err
		}
		if _, ok := available[validationLayerName]; !ok {
			return errors.Newf("required validation layer is missing: %s", validationLayerName)
		}
		layers = append(layers, validationLayerName)
		core.LogInfo("All required validation layers are present.")
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vb.context.Allocator, &instance); res != vk.Success {
		return resultError(res, "failed in creating the Vulkan Instance")
	}
	vb.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return errors.Wrap(err, "failed to load instance functions")
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

// instanceExtensions adds the platform and debug extensions to the ones the window system requires.
func instanceExtensions(windowExtensions []string, goos string, validation bool) []string {
	seen := make(map[string]struct{})
	var extensions []string
	add := func(names ...string) {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			extensions = append(extensions, name)
		}
	}

	add("VK_KHR_surface")
	add(windowExtensions...)
	if goos == "darwin" {
		add("VK_KHR_portability_enumeration", "VK_KHR_get_physical_device_properties2")
	}
	if validation {
		add("VK_EXT_debug_report")
	}
	return extensions
}

func instanceLayers() (map[string]struct{}, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, resultError(res, "failed to count instance layers")
	}
	properties := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, properties); res != vk.Success {
		return nil, resultError(res, "failed to enumerate instance layers")
	}

	layers := make(map[string]struct{}, count)
	for _, p := range properties {
		p.Deref()
		layers[vk.ToString(p.LayerName[:])] = struct{}{}
	}
	return layers, nil
}

func (vb *VulkanBackend) createDebugCallback() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vb.context.Instance, &debugCreateInfo, vb.context.Allocator, &dbg); res != vk.Success {
		return resultError(res, "vk.CreateDebugReportCallback failed")
	}
	vb.context.debugCallback = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vb *VulkanBackend) CreateSwapchain(extent renderer.Extent, previous renderer.Swapchain) (renderer.Swapchain, error) {
	var old *VulkanSwapchain
	if previous != nil {
		vs, ok := previous.(*VulkanSwapchain)
		if !ok {
			return nil, errors.AssertionFailedf("previous swapchain is a %T", previous)
		}
		old = vs
	}
	sc, err := SwapchainCreate(vb.context, extent, old)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (vb *VulkanBackend) AllocateCommandBuffers(count int) ([]renderer.CommandBuffer, error) {
	buffers, err := NewVulkanCommandBuffers(vb.context, vb.context.Device.GraphicsCommandPool, true, count)
	if err != nil {
		return nil, err
	}
	out := make([]renderer.CommandBuffer, len(buffers))
	for i, cb := range buffers {
		out[i] = cb
	}
	return out, nil
}

func (vb *VulkanBackend) FreeCommandBuffers(buffers []renderer.CommandBuffer) {
	vkBuffers := make([]*VulkanCommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		vkBuffers = append(vkBuffers, commandBufferHandle(cb))
	}
	FreeVulkanCommandBuffers(vb.context, vb.context.Device.GraphicsCommandPool, vkBuffers)
}

func (vb *VulkanBackend) WaitIdle() error {
	if res := vk.DeviceWaitIdle(vb.context.Device.LogicalDevice); res != vk.Success {
		return resultError(res, "vkDeviceWaitIdle failed")
	}
	return nil
}

// Shutdown destroys the device, the surface, the debugger and the instance in that order.
// Every swapchain and GPU resource must be released before.
func (vb *VulkanBackend) Shutdown() {
	if vb.context.Device != nil {
		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(vb.context)
	}

	if vb.context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(vb.context.Instance, vb.context.Surface, vb.context.Allocator)
		vb.context.Surface = vk.NullSurface
	}

	if vb.context.debugCallback != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vb.context.Instance, vb.context.debugCallback, vb.context.Allocator)
		vb.context.debugCallback = vk.NullDebugReportCallback
	}

	if vb.context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(vb.context.Instance, vb.context.Allocator)
		vb.context.Instance = nil
	}
}

// ParsePresentMode maps the configuration names to Vulkan present modes.
func ParsePresentMode(name string) (vk.PresentMode, error) {
	switch strings.ToLower(name) {
	case "fifo", "":
		return vk.PresentModeFifo, nil
	case "mailbox":
		return vk.PresentModeMailbox, nil
	case "immediate":
		return vk.PresentModeImmediate, nil
	case "fifo_relaxed":
		return vk.PresentModeFifoRelaxed, nil
	default:
		return vk.PresentModeFifo, errors.Newf("unknown present mode %q", name)
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
