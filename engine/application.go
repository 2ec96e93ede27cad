package engine

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"height"`
}

type RendererConfig struct {
	Validation bool `toml:"validation"`
	// One of fifo, mailbox, immediate or fifo_relaxed.
	PresentMode    string     `toml:"present_mode"`
	ClearColor     [4]float32 `toml:"clear_color"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
}

type CameraConfig struct {
	// Vertical field of view in degrees.
	FOV       float32 `toml:"fov"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	MoveSpeed float32 `toml:"move_speed"`
	LookSpeed float32 `toml:"look_speed"`
}

type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type FrameConfig struct {
	// Upper bound in seconds for the frame time handed to the game, 0 disables it.
	MaxFrameTime float32 `toml:"max_frame_time"`
}

/**
 * @brief The application configuration. Values from the TOML file override
 * the defaults field by field.
 */
type ApplicationConfig struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
	Frame    FrameConfig    `toml:"frame"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Window: WindowConfig{
			Name:        "Lumen Vulkan Viewer",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  800,
			StartHeight: 600,
		},
		Renderer: RendererConfig{
			Validation:     false,
			PresentMode:    "mailbox",
			ClearColor:     [4]float32{0.01, 0.01, 0.01, 1.0},
			VertexShader:   "shaders/simple_shader.vert.spv",
			FragmentShader: "shaders/simple_shader.frag.spv",
		},
		Camera: CameraConfig{
			FOV:       50,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 3,
			LookSpeed: 1.5,
		},
		Assets: AssetsConfig{
			Dir:   "assets",
			Watch: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if path == "" {
		return config, config.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(config); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	switch {
	case c.Window.StartWidth == 0 || c.Window.StartHeight == 0:
		return errors.Newf("window size %dx%d must not be zero", c.Window.StartWidth, c.Window.StartHeight)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return errors.Newf("camera fov %v must be within (0, 180) degrees", c.Camera.FOV)
	case c.Camera.Near <= 0:
		return errors.Newf("camera near plane %v must be positive", c.Camera.Near)
	case c.Camera.Far <= c.Camera.Near:
		return errors.Newf("camera far plane %v must be beyond the near plane %v", c.Camera.Far, c.Camera.Near)
	case c.Frame.MaxFrameTime < 0:
		return errors.Newf("max frame time %v must not be negative", c.Frame.MaxFrameTime)
	case c.Assets.Dir == "":
		return errors.New("assets directory is required")
	case c.Renderer.VertexShader == "" || c.Renderer.FragmentShader == "":
		return errors.New("both renderer shaders are required")
	}

	switch c.Renderer.PresentMode {
	case "fifo", "mailbox", "immediate", "fifo_relaxed":
	default:
		return errors.Newf("unknown present mode %q", c.Renderer.PresentMode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return errors.Newf("unknown log level %q", c.Log.Level)
	}
	return nil
}
