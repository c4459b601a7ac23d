// Package config loads and saves viewer settings as YAML or TOML and watches them for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config paths whose extension is not .yaml, .yml or .toml.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config is the full viewer configuration.
type Config struct {
	Server    ServerConfig `yaml:"server" toml:"server"`
	Window    WindowConfig `yaml:"window" toml:"window"`
	Render    RenderConfig `yaml:"render" toml:"render"`
	Profiling bool         `yaml:"profiling" toml:"profiling"`
	LogLevel  string       `yaml:"log_level" toml:"log_level"`
}

// ServerConfig configures the remote call server.
type ServerConfig struct {
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port"`
	Workers int    `yaml:"workers" toml:"workers"`
}

// WindowConfig configures the viewer window.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// RenderConfig configures the renderer. FrameLimit, ClearColor and Profiling are applied live
// by Watch; the rest take effect on restart.
type RenderConfig struct {
	FrameLimit float64 `yaml:"frame_limit" toml:"frame_limit"`
	VSync      bool    `yaml:"vsync" toml:"vsync"`
	MSAA       int     `yaml:"msaa" toml:"msaa"`
	// ClearColor is a palette name such as "white" or a hex colour such as "#1e1e2e".
	ClearColor string `yaml:"clear_color" toml:"clear_color"`

	// SoftwareFallback requests the CPU fallback adapter when no GPU is usable.
	SoftwareFallback bool `yaml:"software_fallback" toml:"software_fallback"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    50051,
			Workers: 8,
		},
		Window: WindowConfig{
			Title:  "oxy-viewer",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			FrameLimit: 120,
			VSync:      true,
			MSAA:       4,
			ClearColor: "white",
		},
		LogLevel: "info",
	}
}

// Load reads a configuration file. Fields missing from the file keep their Default values.
// A leading ~ in path is expanded to the home directory.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	cfg := Default()
	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("config: expand %q: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	switch format(path) {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
			err = nil
		}
	case "toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg)
	default:
		return Default(), fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Default(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path in the format chosen by its extension, creating parent directories.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//   - cfg: the configuration to write
//
// Returns:
//   - error: an error if the format is unknown or the file cannot be written
func Save(path string, cfg Config) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config: expand %q: %w", path, err)
	}

	var data []byte
	switch format(path) {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		data, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

// Validate checks value ranges and that the colour and log level parse.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server.workers must be at least 1, got %d", c.Server.Workers)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.MSAA != 1 && c.Render.MSAA != 4 {
		return fmt.Errorf("render.msaa must be 1 or 4, got %d", c.Render.MSAA)
	}
	if c.Render.FrameLimit < 0 {
		return fmt.Errorf("render.frame_limit must not be negative")
	}
	if _, err := ParseColor(c.Render.ClearColor); err != nil {
		return fmt.Errorf("render.clear_color: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Address returns the server's host:port listen address.
func (c Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Level parses LogLevel ("debug", "info", "warn", "error", optionally with an offset like "info+2").
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// ClearColor returns the parsed render clear colour, or white if it does not parse.
func (c Config) ClearColor() common.Color {
	col, err := ParseColor(c.Render.ClearColor)
	if err != nil {
		return common.White
	}
	return col
}

// ParseColor accepts a palette name (see common.ColorByName) or a "#rrggbb" hex colour.
//
// Parameters:
//   - s: the colour string
//
// Returns:
//   - common.Color: the colour with components in [0, 1]
//   - error: an error if s is neither form
func ParseColor(s string) (common.Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := common.ColorByName(strings.ToLower(s)); ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return common.Color{}, fmt.Errorf("unknown colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return common.Color{}, fmt.Errorf("unknown colour %q", s)
	}
	return common.RGB(
		float32(v>>16&0xff)/255,
		float32(v>>8&0xff)/255,
		float32(v&0xff)/255,
	), nil
}
