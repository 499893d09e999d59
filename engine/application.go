package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis.
	X uint32 `toml:"x"`
	// Window starting position y axis.
	Y uint32 `toml:"y"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RendererConfig struct {
	// "vulkan" or "headless".
	Backend       string `toml:"backend"`
	Validation    bool   `toml:"validation"`
	PreferMailbox bool   `toml:"prefer_mailbox"`
	// A time.ParseDuration string, e.g. "5s".
	FenceTimeout              string     `toml:"fence_timeout"`
	ShaderDir                 string     `toml:"shader_dir"`
	TextureDescriptorPoolSize uint32     `toml:"texture_descriptor_pool_size"`
	ClearColor                [4]float32 `toml:"clear_color"`
}

type AssetsConfig struct {
	Root  string `toml:"root"`
	Watch bool   `toml:"watch"`
}

// ApplicationConfig is the content of engine.toml.
type ApplicationConfig struct {
	Window   WindowConfig   `toml:"window"`
	Log      LogConfig      `toml:"log"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	backend := metadata.DefaultRendererBackendConfig()
	return &ApplicationConfig{
		Window: WindowConfig{
			Name:   backend.ApplicationName,
			X:      100,
			Y:      100,
			Width:  1024,
			Height: 768,
		},
		Log: LogConfig{Level: "info"},
		Renderer: RendererConfig{
			Backend:                   renderer.Vulkan.String(),
			Validation:                backend.Validation,
			PreferMailbox:             backend.PreferMailbox,
			FenceTimeout:              backend.FenceTimeout.String(),
			ShaderDir:                 backend.ShaderDir,
			TextureDescriptorPoolSize: backend.TextureDescriptorPoolSize,
			ClearColor:                backend.ClearColor,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
	}
}

// LoadApplicationConfig reads path over the defaults. A missing file yields the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file `%s` not found, using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing `%s`: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config `%s`: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must not be zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.RendererType(); err != nil {
		return err
	}
	_, err := c.BackendConfig()
	return err
}

func (c *ApplicationConfig) LogLevel() (core.LogLevel, error) {
	return core.ParseLogLevel(c.Log.Level)
}

func (c *ApplicationConfig) RendererType() (renderer.RendererType, error) {
	return renderer.ParseRendererType(c.Renderer.Backend)
}

// BackendConfig converts the [renderer] table for the graphics backend.
func (c *ApplicationConfig) BackendConfig() (metadata.RendererBackendConfig, error) {
	timeout, err := time.ParseDuration(c.Renderer.FenceTimeout)
	if err != nil {
		return metadata.RendererBackendConfig{}, fmt.Errorf("fence_timeout: %w", err)
	}
	if timeout <= 0 {
		return metadata.RendererBackendConfig{}, fmt.Errorf("fence_timeout must be positive, got %s", timeout)
	}
	return metadata.RendererBackendConfig{
		ApplicationName:           c.Window.Name,
		Validation:                c.Renderer.Validation,
		PreferMailbox:             c.Renderer.PreferMailbox,
		FenceTimeout:              timeout,
		ShaderDir:                 c.Renderer.ShaderDir,
		TextureDescriptorPoolSize: c.Renderer.TextureDescriptorPoolSize,
		ClearColor:                c.Renderer.ClearColor,
	}, nil
}
