package systems

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// MeshSource parses the named mesh into CPU side geometry.
type MeshSource func(name string) (*metadata.MeshData, error)

/**
 * @brief Loads meshes into the application mesh arena. Files are decoded in
 * parallel on the job system, uploads happen on the calling goroutine.
 */
type MeshLoaderSystem struct {
	jobs   *JobSystem
	source MeshSource
}

func NewMeshLoaderSystem(jobs *JobSystem, source MeshSource) *MeshLoaderSystem {
	return &MeshLoaderSystem{
		jobs:   jobs,
		source: source,
	}
}

// Decode parses every named mesh and returns them in the order of names.
func (ms *MeshLoaderSystem) Decode(names []string) ([]*metadata.MeshData, error) {
	meshes := make([]*metadata.MeshData, len(names))
	failures := make([]error, len(names))

	var mu sync.Mutex
	for i, name := range names {
		ms.jobs.Submit(JobTask{
			Name: "decode " + name,
			OnStart: func() (interface{}, error) {
				return ms.source(name)
			},
			OnComplete: func(result interface{}) {
				mu.Lock()
				meshes[i] = result.(*metadata.MeshData)
				mu.Unlock()
			},
			OnFailure: func(err error) {
				mu.Lock()
				failures[i] = errors.Wrapf(err, "failed to load mesh %s", name)
				mu.Unlock()
			},
		})
	}
	ms.jobs.Wait()

	var err error
	for _, failure := range failures {
		err = errors.CombineErrors(err, failure)
	}
	if err != nil {
		return nil, err
	}
	return meshes, nil
}

// Load decodes and uploads every named mesh. The returned indices follow the order of names.
func (ms *MeshLoaderSystem) Load(context *vulkan.VulkanContext, arena *scene.Arena[*vulkan.VulkanModel], names []string) ([]int, error) {
	meshes, err := ms.Decode(names)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(meshes))
	for i, mesh := range meshes {
		model, err := vulkan.NewVulkanModel(context, mesh)
		if err != nil {
			return nil, err
		}
		ids[i] = arena.Add(model)
	}
	core.LogInfo("loaded %d meshes", len(ids))
	return ids, nil
}

// Unload destroys every model in the arena and empties it.
func (ms *MeshLoaderSystem) Unload(arena *scene.Arena[*vulkan.VulkanModel]) {
	arena.Each(func(_ int, model *vulkan.VulkanModel) {
		model.Destroy()
	})
	arena.Clear()
}
