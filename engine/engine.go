package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Every resource was released
	EngineStageShutdown
)

/**
 * @brief Owns the window, the Vulkan backend, the frame orchestrator and the
 * scene, and drives the main loop. Everything runs on the main goroutine.
 */
type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig

	input         *core.Input
	clock         *core.Clock
	metrics       *core.Metrics
	platform      *platform.Platform
	backend       *vulkan.VulkanBackend
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager

	globalSetLayout      *vulkan.VulkanDescriptorSetLayout
	globalPool           *vulkan.VulkanDescriptorPool
	uboBuffers           []*vulkan.VulkanBuffer
	globalDescriptorSets []vk.DescriptorSet

	ids         *core.IDGenerator
	camera      *components.Camera
	viewer      *scene.GameObject
	gameObjects scene.Map
	meshes      *scene.Arena[*vulkan.VulkanModel]
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, errors.New("game has no application config")
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}

	input := core.NewInput()
	p, err := platform.New(input)
	if err != nil {
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		input:        input,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		platform:     p,
		ids:          core.NewIDGenerator(),
		camera:       components.NewCamera(),
		gameObjects:  make(scene.Map),
		meshes:       scene.NewArena[*vulkan.VulkanModel](),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.config

	if err := core.SetLogLevel(config.Log.Level); err != nil {
		return err
	}

	if err := e.platform.Startup(config.Window.Name,
		config.Window.StartPosX,
		config.Window.StartPosY,
		config.Window.StartWidth,
		config.Window.StartHeight); err != nil {
		return err
	}

	presentMode, err := vulkan.ParsePresentMode(config.Renderer.PresentMode)
	if err != nil {
		return err
	}
	e.backend = vulkan.New(e.platform, vulkan.VulkanBackendConfig{
		ApplicationName: config.Window.Name,
		Validation:      config.Renderer.Validation,
		PresentMode:     presentMode,
	})
	if err := e.backend.Initialize(); err != nil {
		return err
	}

	r, err := renderer.New(e.platform, e.backend, renderer.WithClearColor(config.Renderer.ClearColor))
	if err != nil {
		return err
	}
	e.renderer = r

	am, err := assets.NewAssetManager(config.Assets.Dir)
	if err != nil {
		return err
	}
	e.assetManager = am
	if config.Assets.Watch {
		if err := am.Watch(); err != nil {
			// Hot reload is a convenience, the viewer runs without it.
			core.LogWarn("shader hot reload disabled: %s", err)
		}
	}

	if err := e.createGlobalResources(); err != nil {
		return err
	}

	sm, err := systems.NewSystemManager(
		systems.SystemManagerConfig{
			Shaders: systems.ShaderSystemConfig{
				VertexShader:   config.Renderer.VertexShader,
				FragmentShader: config.Renderer.FragmentShader,
			},
			MoveSpeed: config.Camera.MoveSpeed,
			LookSpeed: config.Camera.LookSpeed,
		},
		e.backend.Context(),
		vulkan.SwapchainRenderpass(e.renderer.Swapchain()),
		e.globalSetLayout.Handle,
		am.LoadAsset,
		e.loadMeshData,
	)
	if err != nil {
		return err
	}
	e.systemManager = sm

	e.placeViewer()

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return errors.Wrap(err, "game initialization failed")
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized")
	return nil
}

// createGlobalResources allocates one mapped uniform buffer and one descriptor set per frame slot.
func (e *Engine) createGlobalResources() error {
	context := e.backend.Context()

	pool, err := vulkan.NewDescriptorPoolBuilder(context).
		SetMaxSets(renderer.MaxFramesInFlight).
		AddPoolSize(vk.DescriptorTypeUniformBuffer, renderer.MaxFramesInFlight).
		Build()
	if err != nil {
		return err
	}
	e.globalPool = pool

	layout, err := vulkan.NewDescriptorSetLayoutBuilder(context).
		AddBinding(0, vk.DescriptorTypeUniformBuffer, vk.ShaderStageFlags(vk.ShaderStageAllGraphics), 1).
		Build()
	if err != nil {
		return err
	}
	e.globalSetLayout = layout

	alignment := context.Device.MinUniformBufferOffsetAlignment()
	for i := 0; i < renderer.MaxFramesInFlight; i++ {
		buffer, err := vulkan.NewBuffer(
			context,
			metadata.GlobalUboSize,
			1,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit),
			alignment,
		)
		if err != nil {
			return err
		}
		e.uboBuffers = append(e.uboBuffers, buffer)
		if err := buffer.Map(); err != nil {
			return err
		}

		set, err := vulkan.NewDescriptorWriter(layout, pool).
			WriteBuffer(0, buffer.DescriptorInfo()).
			Build()
		if err != nil {
			return err
		}
		e.globalDescriptorSets = append(e.globalDescriptorSets, set)
	}
	return nil
}

// placeViewer puts the viewer behind the origin and points the camera at the scene.
func (e *Engine) placeViewer() {
	e.viewer = scene.NewGameObject(e.ids)
	e.viewer.Transform.Translation = mgl32.Vec3{0, 0, -2.5}
	e.camera.SetViewTarget(mgl32.Vec3{-1, -2, 2}, mgl32.Vec3{0, 0, 2.5}, components.DefaultUp)
}

func (e *Engine) loadMeshData(name string) (*metadata.MeshData, error) {
	res, err := e.assetManager.LoadAsset(name)
	if err != nil {
		return nil, err
	}
	mesh, ok := res.Data.(*metadata.MeshData)
	if !ok {
		return nil, errors.Newf("%s is a %s resource, not a mesh", name, res.Type)
	}
	return mesh, nil
}

func (e *Engine) Run() error {
	core.Assert(e.currentStage == EngineStageInitialized, "Run called before Initialize")
	e.currentStage = EngineStageRunning

	e.clock.Start()
	for !e.platform.ShouldClose() {
		e.platform.PollEvents()

		frameTime := float32(e.clock.Tick())
		if limit := e.config.Frame.MaxFrameTime; limit > 0 && frameTime > limit {
			frameTime = limit
		}
		if e.metrics.Update(float64(frameTime)) {
			fps, ms := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.3f ms per frame", fps, ms)
		}

		if err := e.reloadChangedShaders(); err != nil {
			return err
		}

		if err := e.update(frameTime); err != nil {
			return err
		}
		if err := e.drawFrame(frameTime); err != nil {
			return err
		}

		// Input is the last thing to be updated before this frame ends.
		e.input.Update()
	}
	e.clock.Stop()

	return e.backend.WaitIdle()
}

func (e *Engine) update(frameTime float32) error {
	e.systemManager.MovementController.MoveInPlaneXZ(e.input, frameTime, e.viewer)
	e.camera.SetViewYXZ(e.viewer.Transform.Translation, e.viewer.Transform.Rotation)

	aspect := e.renderer.AspectRatio()
	e.camera.SetPerspectiveProjection(mgl32.DegToRad(e.config.Camera.FOV), aspect, e.config.Camera.Near, e.config.Camera.Far)

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(e, frameTime); err != nil {
			return errors.Wrap(err, "game update failed")
		}
	}
	return nil
}

func (e *Engine) drawFrame(frameTime float32) error {
	commandBuffer, err := e.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if commandBuffer == nil {
		// The swapchain was rebuilt, nothing to draw this time.
		return nil
	}
	frameIndex := e.renderer.FrameIndex()

	frameInfo := &systems.FrameInfo{
		FrameIndex:          frameIndex,
		FrameTime:           frameTime,
		CommandBuffer:       commandBuffer,
		Camera:              e.camera,
		GlobalDescriptorSet: e.globalDescriptorSets[frameIndex],
		GameObjects:         e.gameObjects,
		Meshes:              e.meshes,
	}

	// update
	ubo := metadata.NewGlobalUbo()
	ubo.Projection = e.camera.GetProjection()
	ubo.View = e.camera.GetView()
	e.uboBuffers[frameIndex].WriteToBuffer(ubo.Bytes(), 0)
	if err := e.uboBuffers[frameIndex].Flush(); err != nil {
		return err
	}

	// render
	e.renderer.BeginSwapchainRenderPass(commandBuffer)
	e.systemManager.SimpleRenderSystem.RenderGameObjects(frameInfo)
	e.renderer.EndSwapchainRenderPass(commandBuffer)
	return e.renderer.EndFrame()
}

// reloadChangedShaders rebuilds the pipeline when one of its shaders was rewritten.
// A shader that fails to build keeps the previous pipeline in place.
func (e *Engine) reloadChangedShaders() error {
	if e.assetManager == nil {
		return nil
	}

	changed := false
drain:
	for {
		select {
		case name := <-e.assetManager.Changes():
			if e.systemManager.ShaderSystem.Uses(name) {
				core.LogInfo("shader %s changed", name)
				changed = true
			}
		default:
			break drain
		}
	}
	if !changed {
		return nil
	}

	if err := e.backend.WaitIdle(); err != nil {
		return err
	}
	renderpass := vulkan.SwapchainRenderpass(e.renderer.Swapchain())
	if err := e.systemManager.SimpleRenderSystem.Reload(renderpass); err != nil {
		core.LogWarn("shader reload failed, keeping the previous pipeline: %+v", err)
	}
	return nil
}

// RequestClose asks the main loop to stop. Safe to call from any goroutine.
func (e *Engine) RequestClose() {
	e.platform.RequestClose()
}

// Shutdown releases everything Initialize created, in reverse order. It
// tolerates a partially initialized engine.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var err error
	if e.backend != nil && e.backend.Context().Device != nil {
		err = e.backend.WaitIdle()
	}

	if e.gameInstance.FnShutdown != nil && e.systemManager != nil {
		err = errors.CombineErrors(err, e.gameInstance.FnShutdown(e))
	}

	if e.systemManager != nil {
		e.systemManager.MeshLoaderSystem.Unload(e.meshes)
		e.systemManager.Shutdown()
	}
	for _, buffer := range e.uboBuffers {
		buffer.Destroy()
	}
	e.uboBuffers = nil
	if e.globalPool != nil {
		e.globalPool.Destroy()
	}
	if e.globalSetLayout != nil {
		e.globalSetLayout.Destroy()
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
	}
	if e.assetManager != nil {
		e.assetManager.Shutdown()
	}
	if e.backend != nil {
		e.backend.Shutdown()
	}
	e.platform.Shutdown()

	e.currentStage = EngineStageShutdown
	core.LogInfo("engine shut down")
	return err
}

// LoadMeshes decodes and uploads meshes, returning their arena indices in order.
func (e *Engine) LoadMeshes(names ...string) ([]int, error) {
	return e.systemManager.MeshLoaderSystem.Load(e.backend.Context(), e.meshes, names)
}

// SpawnGameObject creates a scene object and adds it to the scene.
func (e *Engine) SpawnGameObject() *scene.GameObject {
	g := scene.NewGameObject(e.ids)
	e.gameObjects.Add(g)
	return g
}

func (e *Engine) GameObjects() scene.Map {
	return e.gameObjects
}

func (e *Engine) Viewer() *scene.GameObject {
	return e.viewer
}

func (e *Engine) Camera() *components.Camera {
	return e.camera
}

func (e *Engine) Input() *core.Input {
	return e.input
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}
