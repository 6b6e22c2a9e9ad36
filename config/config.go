// Package config loads runtime settings from TOML files and SCRATCHRUN_ environment variables
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/lixenwraith/scratchrun/engine"
)

// EnvPrefix prefixes every environment override; engine.tick_rate becomes SCRATCHRUN_ENGINE_TICK_RATE
const EnvPrefix = "SCRATCHRUN"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the effective configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Stage   StageConfig   `mapstructure:"stage"`
	Display DisplayConfig `mapstructure:"display"`
	Log     LogConfig     `mapstructure:"log"`
}

// EngineConfig tunes dispatch and scheduling
type EngineConfig struct {
	TickRate      float64       `mapstructure:"tick_rate"`
	Burst         int           `mapstructure:"burst"`
	GlideSteps    int           `mapstructure:"glide_steps"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
	MaxClones     int           `mapstructure:"max_clones"`
	LookupPolicy  string        `mapstructure:"lookup_policy"`
	Username      string        `mapstructure:"username"`
}

// StageConfig is the output canvas size
type StageConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// DisplayConfig tunes the terminal host
type DisplayConfig struct {
	FPS     int           `mapstructure:"fps"`
	KeyHold time.Duration `mapstructure:"key_hold"`
}

// LogConfig selects where logs go
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Dir   string `mapstructure:"dir"`
}

// Default returns the built-in configuration
func Default() Config {
	d := engine.DefaultConfig()
	return Config{
		Engine: EngineConfig{
			TickRate:      d.TickRate,
			Burst:         d.Burst,
			GlideSteps:    d.GlideSteps,
			ShutdownGrace: d.ShutdownGrace,
			MaxClones:     d.MaxClones,
			LookupPolicy:  string(d.LookupPolicy),
		},
		Stage:   StageConfig{Width: d.StageWidth, Height: d.StageHeight},
		Display: DisplayConfig{FPS: 30, KeyHold: 150 * time.Millisecond},
		Log:     LogConfig{Dir: "logs"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("engine.tick_rate", d.Engine.TickRate)
	v.SetDefault("engine.burst", d.Engine.Burst)
	v.SetDefault("engine.glide_steps", d.Engine.GlideSteps)
	v.SetDefault("engine.shutdown_grace", d.Engine.ShutdownGrace)
	v.SetDefault("engine.max_clones", d.Engine.MaxClones)
	v.SetDefault("engine.lookup_policy", d.Engine.LookupPolicy)
	v.SetDefault("engine.username", d.Engine.Username)
	v.SetDefault("stage.width", d.Stage.Width)
	v.SetDefault("stage.height", d.Stage.Height)
	v.SetDefault("display.fps", d.Display.FPS)
	v.SetDefault("display.key_hold", d.Display.KeyHold)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.dir", d.Log.Dir)
}

// Load reads configuration from path, or from SCRATCHRUN_CONFIG, or from scratchrun.toml in the
// working directory or ~/.config/scratchrun; a missing default file is not an error
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scratchrun")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "scratchrun"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the engine cannot run with
func (c Config) Validate() error {
	switch {
	case c.Engine.TickRate < 0:
		return fmt.Errorf("%w: engine.tick_rate %v is negative", ErrInvalid, c.Engine.TickRate)
	case c.Engine.Burst < 1:
		return fmt.Errorf("%w: engine.burst must be at least 1", ErrInvalid)
	case c.Engine.GlideSteps < 1:
		return fmt.Errorf("%w: engine.glide_steps must be at least 1", ErrInvalid)
	case c.Engine.MaxClones < 1:
		return fmt.Errorf("%w: engine.max_clones must be at least 1", ErrInvalid)
	case c.Engine.ShutdownGrace <= 0:
		return fmt.Errorf("%w: engine.shutdown_grace must be positive", ErrInvalid)
	case c.Stage.Width < 1 || c.Stage.Height < 1:
		return fmt.Errorf("%w: stage size %dx%d", ErrInvalid, c.Stage.Width, c.Stage.Height)
	case c.Display.FPS < 1:
		return fmt.Errorf("%w: display.fps must be at least 1", ErrInvalid)
	}
	switch engine.LookupPolicy(c.Engine.LookupPolicy) {
	case engine.StageFirst, engine.ActorFirst:
	default:
		return fmt.Errorf("%w: engine.lookup_policy %q (want %s or %s)",
			ErrInvalid, c.Engine.LookupPolicy, engine.StageFirst, engine.ActorFirst)
	}
	return nil
}

// EngineConfig converts the settings consumed by engine.NewWorld
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		TickRate:      c.Engine.TickRate,
		Burst:         c.Engine.Burst,
		GlideSteps:    c.Engine.GlideSteps,
		ShutdownGrace: c.Engine.ShutdownGrace,
		MaxClones:     c.Engine.MaxClones,
		LookupPolicy:  engine.LookupPolicy(c.Engine.LookupPolicy),
		StageWidth:    c.Stage.Width,
		StageHeight:   c.Stage.Height,
		Username:      c.Engine.Username,
	}
}

// FrameInterval is the host redraw period
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Display.FPS)
}

// ===== Encoding =====

// file mirrors Config in its TOML form; durations are written as strings
type file struct {
	Engine struct {
		TickRate      float64 `toml:"tick_rate"`
		Burst         int     `toml:"burst"`
		GlideSteps    int     `toml:"glide_steps"`
		ShutdownGrace string  `toml:"shutdown_grace"`
		MaxClones     int     `toml:"max_clones"`
		LookupPolicy  string  `toml:"lookup_policy"`
		Username      string  `toml:"username"`
	} `toml:"engine"`
	Stage struct {
		Width  int `toml:"width"`
		Height int `toml:"height"`
	} `toml:"stage"`
	Display struct {
		FPS     int    `toml:"fps"`
		KeyHold string `toml:"key_hold"`
	} `toml:"display"`
	Log struct {
		Debug bool   `toml:"debug"`
		Dir   string `toml:"dir"`
	} `toml:"log"`
}

// Encode writes c as a TOML document that Load accepts
func (c Config) Encode(w io.Writer) error {
	var f file
	f.Engine.TickRate = c.Engine.TickRate
	f.Engine.Burst = c.Engine.Burst
	f.Engine.GlideSteps = c.Engine.GlideSteps
	f.Engine.ShutdownGrace = c.Engine.ShutdownGrace.String()
	f.Engine.MaxClones = c.Engine.MaxClones
	f.Engine.LookupPolicy = c.Engine.LookupPolicy
	f.Engine.Username = c.Engine.Username
	f.Stage.Width = c.Stage.Width
	f.Stage.Height = c.Stage.Height
	f.Display.FPS = c.Display.FPS
	f.Display.KeyHold = c.Display.KeyHold.String()
	f.Log.Debug = c.Log.Debug
	f.Log.Dir = c.Log.Dir

	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
