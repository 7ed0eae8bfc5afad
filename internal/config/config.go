// Package config holds the client configuration: a YAML file overlaid on
// built-in defaults, then overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Session modes.
const (
	ModePlay    = "play"
	ModeObserve = "observe"
	ModeReplay  = "replay"
	// ModeServe streams a replay file to websocket clients as if it were
	// a live game.
	ModeServe = "serve"
)

// MaxSpeedExponent bounds the replay speed multiplier to 2^±8.
const MaxSpeedExponent = 8

var (
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidTick     = errors.New("tick interval must be positive")
	ErrInvalidGamepad  = errors.New("gamepad mode must be 0, 1 or 2")
	ErrInvalidSpeed    = errors.New("replay speed exponent out of range")
	ErrMissingReplay   = errors.New("replay and serve modes need a replay file")
	ErrInvalidViewport = errors.New("display size must be positive")
)

type Config struct {
	Mode      string          `yaml:"mode"`
	Server    ServerConfig    `yaml:"server"`
	Player    PlayerConfig    `yaml:"player"`
	Display   DisplayConfig   `yaml:"display"`
	Resources ResourcesConfig `yaml:"resources"`
	Replay    ReplayConfig    `yaml:"replay"`
	Bindings  BindingsConfig  `yaml:"bindings"`
	Log       LogConfig       `yaml:"log"`
	Tick      TickConfig      `yaml:"tick"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Path          string        `yaml:"path"`
	SocketTimeout time.Duration `yaml:"socket_timeout"`
}

type PlayerConfig struct {
	// Name is sent to the server after the handshake; empty means observer.
	Name string `yaml:"name"`
}

type DisplayConfig struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	ShowHP           bool    `yaml:"show_hp"`
	ShowVisionCircle bool    `yaml:"show_vision_circle"`
	ShowDebugString  bool    `yaml:"show_debug_string"`
}

type ResourcesConfig struct {
	ElementData string `yaml:"element_data"`
	Textures    string `yaml:"textures"`
}

type ReplayConfig struct {
	File string `yaml:"file"`

	// SpeedExponent selects a playback multiplier of 2^SpeedExponent.
	SpeedExponent int  `yaml:"speed_exponent"`
	StartPaused   bool `yaml:"start_paused"`
}

type BindingsConfig struct {
	Keyboard    bool `yaml:"keyboard"`
	GamepadMode int  `yaml:"gamepad_mode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TickConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// Default returns a configuration usable without a file.
func Default() Config {
	return Config{
		Mode: ModePlay,
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8080,
			SocketTimeout: 10 * time.Second,
		},
		Display: DisplayConfig{
			Width:  1280,
			Height: 720,
			ShowHP: true,
		},
		Resources: ResourcesConfig{
			ElementData: "resource/element-data.json",
			Textures:    "resource/textures.json",
		},
		Bindings: BindingsConfig{
			Keyboard:    true,
			GamepadMode: 1,
		},
		Log:     LogConfig{Level: "info"},
		Tick:    TickConfig{Interval: time.Second / 60},
		Metrics: MetricsConfig{Namespace: "tankclient"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no session can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModePlay, ModeObserve:
	case ModeReplay, ModeServe:
		if c.Replay.File == "" {
			errs = append(errs, ErrMissingReplay)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode))
	}
	if c.Tick.Interval <= 0 {
		errs = append(errs, ErrInvalidTick)
	}
	if c.Bindings.GamepadMode < 0 || c.Bindings.GamepadMode > 2 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidGamepad, c.Bindings.GamepadMode))
	}
	if c.Replay.SpeedExponent < -MaxSpeedExponent || c.Replay.SpeedExponent > MaxSpeedExponent {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidSpeed, c.Replay.SpeedExponent))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, ErrInvalidViewport)
	}
	return errors.Join(errs...)
}

// URL is the websocket endpoint of the game server.
func (s ServerConfig) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:   s.Path,
	}
	return u.String()
}
