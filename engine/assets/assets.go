package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Notifications beyond this many pending are dropped.
const changesBuffer = 16

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the files of the asset directory and loads them through the
 * loader registered for their type. When watching, rewritten shaders are
 * reported on the Changes channel.
 */
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan string
}

func NewAssetManager(baseDir string) (*AssetManager, error) {
	baseDir = filepath.Clean(baseDir)
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "asset directory %s", baseDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("asset path %s is not a directory", baseDir)
	}

	am := &AssetManager{
		baseDir: baseDir,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		done:    make(chan struct{}),
		changes: make(chan string, changesBuffer),
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.ModelLoader{})

	if err := am.walk(baseDir, func(path string) error {
		am.handleFileEvent(path)
		return nil
	}); err != nil {
		return nil, err
	}
	core.LogInfo("asset manager indexed %d files under %s", len(am.assets), baseDir)
	return am, nil
}

// Watch starts reporting rewritten shader files on Changes.
func (am *AssetManager) Watch() error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if am.fsnotify != nil {
		return nil
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create the file watcher")
	}
	am.fsnotify = fsWatch

	if err := am.addRecursive(am.baseDir); err != nil {
		fsWatch.Close()
		am.fsnotify = nil
		return err
	}

	am.wg.Add(1)
	go am.start()
	core.LogInfo("watching %s for shader changes", am.baseDir)
	return nil
}

// Changes delivers the paths, relative to the asset directory, of shaders that were rewritten.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

func (am *AssetManager) Shutdown() {
	if am.isClosed {
		return
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	if am.fsnotify != nil {
		am.fsnotify.Close()
	}
}

// Path returns the absolute location of an asset given relative to the asset directory.
func (am *AssetManager) Path(name string) string {
	return filepath.Join(am.baseDir, filepath.FromSlash(name))
}

// LoadAsset loads an asset, given relative to the asset directory, with the loader of its type.
func (am *AssetManager) LoadAsset(name string) (*metadata.Resource, error) {
	path := am.Path(name)

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, errors.Newf("asset not found: %s", name)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, errors.Newf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	return filepath.Walk(name, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return errors.Wrapf(am.fsnotify.Add(walkPath), "failed to watch %s", walkPath)
		}
		return nil
	})
}

func (am *AssetManager) walk(root string, fn func(path string) error) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		return fn(walkPath)
	})
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Remove != 0 {
		am.removeAsset(e.Name)
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.addRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: %s", err)
			}
		}
		return
	}

	if am.handleFileEvent(e.Name) != metadata.ResourceTypeShader {
		return
	}
	rel, err := filepath.Rel(am.baseDir, e.Name)
	if err != nil {
		return
	}
	select {
	case am.changes <- filepath.ToSlash(rel):
	default:
		core.LogWarn("shader change for %s dropped, too many pending", rel)
	}
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeUnknown {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".obj":
		return metadata.ResourceTypeMesh
	case ".bin", ".toml":
		return metadata.ResourceTypeBinary
	default:
		return metadata.ResourceTypeUnknown
	}
}
