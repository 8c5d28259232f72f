// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// EnvPrefix is prepended to every environment override, e.g.
// CAPSULE_VIEWPORT_WIDTH.
const EnvPrefix = "CAPSULE"

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Script   ScriptConfig   `mapstructure:"script" yaml:"script"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
	Tick     TickConfig     `mapstructure:"tick" yaml:"tick"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig is the size the root view is laid out into, and the window
// or image size.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ScriptConfig bounds script execution. Zero disables the watchdog.
type ScriptConfig struct {
	CallbackTimeout time.Duration `mapstructure:"callback_timeout" yaml:"callback_timeout"`
	LoadTimeout     time.Duration `mapstructure:"load_timeout" yaml:"load_timeout"`
}

type RenderConfig struct {
	FontPath         string `mapstructure:"font_path" yaml:"font_path"`
	ClearColor       string `mapstructure:"clear_color" yaml:"clear_color"`
	DefaultTextColor string `mapstructure:"default_text_color" yaml:"default_text_color"`
}

// ClearRGBA parses ClearColor. Validate guarantees it succeeds on a loaded
// config.
func (r RenderConfig) ClearRGBA() style.Color {
	c, _ := style.ParseColor(r.ClearColor)
	return c
}

// TextRGBA parses DefaultTextColor.
func (r RenderConfig) TextRGBA() style.Color {
	c, _ := style.ParseColor(r.DefaultTextColor)
	return c
}

type TickConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// WatchConfig controls reloading a document when its file changes.
type WatchConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "capsule")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Viewport --
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	// -- Script --
	v.SetDefault("script.callback_timeout", "0s")
	v.SetDefault("script.load_timeout", "0s")

	// -- Render --
	v.SetDefault("render.font_path", "")
	v.SetDefault("render.clear_color", "#000000")
	v.SetDefault("render.default_text_color", "white")

	// -- Tick --
	v.SetDefault("tick.interval", "16ms")

	// -- Watch --
	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.min_interval", "250ms")
}

// BindEnv makes every key overridable through CAPSULE_-prefixed variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for _, p := range []*string{&cfg.Logger.LogFile, &cfg.Render.FontPath} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive integers")
	}
	if c.Script.CallbackTimeout < 0 {
		return fmt.Errorf("script.callback_timeout must not be negative")
	}
	if c.Script.LoadTimeout < 0 {
		return fmt.Errorf("script.load_timeout must not be negative")
	}
	if c.Tick.Interval <= 0 {
		return fmt.Errorf("tick.interval must be a positive duration")
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render configuration invalid: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the render colors parse.
func (r *RenderConfig) Validate() error {
	if _, ok := style.ParseColor(r.ClearColor); !ok {
		return fmt.Errorf("clear_color %q is not a color", r.ClearColor)
	}
	if _, ok := style.ParseColor(r.DefaultTextColor); !ok {
		return fmt.Errorf("default_text_color %q is not a color", r.DefaultTextColor)
	}
	return nil
}

// Validate checks the WatchConfig settings.
func (w *WatchConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.MinInterval <= 0 {
		return fmt.Errorf("min_interval must be a positive duration")
	}
	return nil
}
