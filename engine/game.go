package engine

// Game plugs the application into the engine lifecycle.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnShutdown        Shutdown
}

// Initialize runs once every engine system is ready, before the first frame.
type Initialize func(e *Engine) error

// Update runs once per frame before recording, deltaTime is in seconds.
type Update func(e *Engine, deltaTime float32) error

// Shutdown runs after the device went idle, before GPU resources are released.
type Shutdown func(e *Engine) error
