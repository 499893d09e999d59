package assets

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets/loaders"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/containers"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

const changeQueueSize = 64

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  *containers.RingQueue[string]
}

func NewAssetManager() (*AssetManager, error) {
	return &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		changes: containers.NewRingQueue[string](changeQueueSize),
	}, nil
}

// Initialize indexes every asset under root and, if watch is set, starts following changes on disk.
func (am *AssetManager) Initialize(root string, watch bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	am.root = abs

	// Register loaders
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})

	if _, err := os.Stat(abs); err != nil {
		core.LogWarn("assets directory `%s` not available: %s", abs, err)
		return nil
	}

	if !watch {
		return am.index(abs)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.done = make(chan struct{})
	am.stopped = make(chan struct{})
	if err := am.addRecursive(abs); err != nil {
		fsWatch.Close()
		am.fsnotify = nil
		return err
	}
	go am.start()
	core.LogInfo("watching assets under `%s`", abs)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed || am.fsnotify == nil {
		am.isClosed = true
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Resolve turns an asset name relative to the root into a path. Absolute paths pass through.
func (am *AssetManager) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(am.root, filepath.FromSlash(name))
}

// Assets returns the indexed asset paths, sorted.
func (am *AssetManager) Assets() []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return slices.Sorted(maps.Keys(am.assets))
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset resolves name and loads it with the loader registered for its extension.
func (am *AssetManager) LoadAsset(name string) (*metadata.Resource, error) {
	path := am.Resolve(name)
	assetType := determineAssetType(path)

	loader, loaderExists := am.loaders[assetType]
	if !loaderExists {
		err := fmt.Errorf("%w: no loader registered for `%s` (%s)", core.ErrResourceLoad, name, assetType)
		core.LogError(err.Error())
		return nil, err
	}

	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

// PollChanges drains the asset paths that changed on disk since the last call.
// Meant for the engine loop thread; the watcher goroutine only enqueues.
func (am *AssetManager) PollChanges() []string {
	var out []string
	for {
		p, err := am.changes.Dequeue()
		if err != nil {
			return out
		}
		out = append(out, p)
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("unable to watch `%s`: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) {
					am.notifyChanged(e.Name)
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) notifyChanged(path string) {
	// collapse bursts of writes to the same file
	if last, err := am.changes.Peek(); err == nil && last == path && am.changes.Len() == 1 {
		return
	}
	if err := am.changes.Enqueue(path); err != nil {
		core.LogWarn("dropping change notification for `%s`: %s", path, err)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found along the way.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if strings.HasPrefix(fi.Name(), ".") && walkPath != path {
				return filepath.SkipDir
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// index walks path without watching it.
func (am *AssetManager) index(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			am.handleFileEvent(walkPath)
		}
		return nil
	})
}

// Handle the creation or modification of a file. Returns false for files that are not assets.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeBinary
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".obj":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}
