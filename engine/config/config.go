package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// ErrUnsupportedFormat is returned by Load for a file extension it cannot decode.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type Config struct {
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type EngineConfig struct {
	TickRate        float64       `toml:"tick_rate" yaml:"tick_rate"`     // fixed updates per second
	FrameLimit      float64       `toml:"frame_limit" yaml:"frame_limit"` // 0 = uncapped
	Profiling       bool          `toml:"profiling" yaml:"profiling"`
	ProfileInterval time.Duration `toml:"profile_interval" yaml:"profile_interval"`
}

type RenderConfig struct {
	PresentMode string     `toml:"present_mode" yaml:"present_mode"` // "vsync" or "uncapped"
	MSAA        uint32     `toml:"msaa" yaml:"msaa"`                 // 1 or 4
	Software    bool       `toml:"software" yaml:"software"`
	Wireframe   bool       `toml:"wireframe" yaml:"wireframe"`
	Background  [4]float32 `toml:"background" yaml:"background"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads path on top of Default. The format is chosen by extension:
// .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fill()
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
		},
		Engine: EngineConfig{
			TickRate:        60,
			ProfileInterval: time.Second,
		},
		Render: RenderConfig{
			PresentMode: "vsync",
			MSAA:        uint32(renderer.MSAA4x),
			Background:  [4]float32{0.1, 0.1, 0.12, 1},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// fill restores defaults for string and rate fields a file explicitly blanked.
func (c *Config) fill() {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Render.PresentMode = common.Coalesce(c.Render.PresentMode, d.Render.PresentMode)
	c.Logging.Level = common.Coalesce(c.Logging.Level, d.Logging.Level)
	c.Logging.Format = common.Coalesce(c.Logging.Format, d.Logging.Format)
	c.Engine.ProfileInterval = common.Coalesce(c.Engine.ProfileInterval, d.Engine.ProfileInterval)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Engine.TickRate <= 0 {
		bad("engine.tick_rate %v", c.Engine.TickRate)
	}
	if c.Engine.FrameLimit < 0 {
		bad("engine.frame_limit %v", c.Engine.FrameLimit)
	}
	switch c.Render.PresentMode {
	case "vsync", "uncapped":
	default:
		bad("render.present_mode %q", c.Render.PresentMode)
	}
	switch renderer.MSAASampleCount(c.Render.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x:
	default:
		bad("render.msaa %d", c.Render.MSAA)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		bad("logging.format %q", c.Logging.Format)
	}
	return errors.Join(errs...)
}

// RendererOptions translates the render section into renderer builder options.
func (c *Config) RendererOptions(logger *zap.Logger) []renderer.RendererBuilderOption {
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(renderer.ParsePresentMode(c.Render.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(c.Render.MSAA)),
		renderer.WithForceSoftwareRenderer(c.Render.Software),
		renderer.WithLogger(logger),
	}
}

// NewLogger builds a zap logger: production json, or a compact coloured console
// encoder for development. Unknown levels fall back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
