package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
)

// Models loaded at startup, relative to the asset directory.
var sceneModels = []string{
	"models/flat_vase.obj",
	"models/smooth_vase.obj",
	"models/quad.obj",
}

type TestGame struct {
	*engine.Game
}

type gameState struct {
	// Arena indices of sceneModels, in the same order.
	meshes []int
	// Seconds since the scene was built.
	elapsed float32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

/**
 * @brief Loads the models and places them in the scene: two vases side by
 * side standing on a floor quad.
 */
func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogInfo("building testbed scene...")
	state := g.State.(*gameState)

	meshes, err := e.LoadMeshes(sceneModels...)
	if err != nil {
		return err
	}
	state.meshes = meshes

	for _, obj := range sceneObjects(meshes) {
		o := e.SpawnGameObject()
		o.MeshID = obj.mesh
		o.Transform.Translation = obj.translation
		o.Transform.Scale = obj.scale
	}

	core.LogInfo("testbed scene ready with %d objects", len(e.GameObjects()))
	return nil
}

func (g *TestGame) Update(e *engine.Engine, deltaTime float32) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	return nil
}

func (g *TestGame) Shutdown(e *engine.Engine) error {
	state := g.State.(*gameState)
	core.LogInfo("testbed ran for %.1fs", state.elapsed)
	return nil
}

type placement struct {
	mesh        int
	translation mgl32.Vec3
	scale       mgl32.Vec3
}

func sceneObjects(meshes []int) []placement {
	return []placement{
		{mesh: meshes[0], translation: mgl32.Vec3{-.5, .5, 0}, scale: mgl32.Vec3{3, 1.5, 3}},
		{mesh: meshes[1], translation: mgl32.Vec3{.5, .5, 0}, scale: mgl32.Vec3{3, 1.5, 3}},
		{mesh: meshes[2], translation: mgl32.Vec3{0, .5, 0}, scale: mgl32.Vec3{3, 1, 3}},
	}
}
