// Package config loads runtime settings: defaults, then an optional TOML file,
// then PROCBALLS_* environment variables. Command-line flags are applied last by
// the binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/procballs/constants"
	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/process"
)

// Duration decodes from strings such as "33ms" in both TOML and env
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Profile is one switchable identity: whose processes to show and how to color them
type Profile struct {
	User    string `toml:"user" env:"USER"`
	Palette string `toml:"palette" env:"PALETTE"`
}

// Mode returns the parsed palette mode
func (p Profile) Mode() core.PaletteMode {
	m, _ := core.ParsePaletteMode(p.Palette)
	return m
}

// Config holds every runtime setting
type Config struct {
	Source            string   `toml:"source" env:"PROCBALLS_SOURCE"`
	ReconcileInterval Duration `toml:"reconcile_interval" env:"PROCBALLS_RECONCILE_INTERVAL"`
	MotionInterval    Duration `toml:"motion_interval" env:"PROCBALLS_MOTION_INTERVAL"`
	SnapshotTimeout   Duration `toml:"snapshot_timeout" env:"PROCBALLS_SNAPSHOT_TIMEOUT"`

	Primary   Profile `toml:"primary" envPrefix:"PROCBALLS_PRIMARY_"`
	Secondary Profile `toml:"secondary" envPrefix:"PROCBALLS_SECONDARY_"`

	// Canvas size in pixels; zero fits the terminal
	Width  int `toml:"width" env:"PROCBALLS_WIDTH"`
	Height int `toml:"height" env:"PROCBALLS_HEIGHT"`
	// AutoStart skips the size prompt and starts immediately
	AutoStart bool `toml:"auto_start" env:"PROCBALLS_AUTO_START"`

	ColorMode string  `toml:"color" env:"PROCBALLS_COLOR"`
	Sound     bool    `toml:"sound" env:"PROCBALLS_SOUND"`
	Volume    float64 `toml:"volume" env:"PROCBALLS_VOLUME"`
	Debug     bool    `toml:"debug" env:"PROCBALLS_DEBUG"`
	TraceFile string  `toml:"trace_file" env:"PROCBALLS_TRACE_FILE"`
	Seed      int64   `toml:"seed" env:"PROCBALLS_SEED"`
}

// Default returns the built-in configuration
// The primary profile is the invoking user with palette A, the secondary is root with palette B
func Default() Config {
	return Config{
		Source:            process.KindPS,
		ReconcileInterval: Duration{constants.ReconcileInterval},
		MotionInterval:    Duration{constants.MotionInterval},
		SnapshotTimeout:   Duration{constants.SnapshotTimeout},
		Primary:           Profile{User: currentUser(), Palette: core.PaletteA.String()},
		Secondary:         Profile{User: constants.DefaultSecondaryUser, Palette: core.PaletteB.String()},
		ColorMode:         "auto",
		Volume:            0.5,
	}
}

// Load builds the configuration from defaults, the TOML file at path (if non-empty) and the environment
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error

	if c.ReconcileInterval.Duration <= 0 {
		errs = append(errs, errors.New("reconcile_interval must be positive"))
	}
	if c.MotionInterval.Duration <= 0 {
		errs = append(errs, errors.New("motion_interval must be positive"))
	}
	if c.SnapshotTimeout.Duration < 0 {
		errs = append(errs, errors.New("snapshot_timeout must not be negative"))
	}
	switch c.Source {
	case process.KindPS, process.KindNative:
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	for i, p := range c.Profiles() {
		name := profileNames[i]
		if p.User == "" {
			errs = append(errs, fmt.Errorf("%s.user must be set", name))
		}
		if _, ok := core.ParsePaletteMode(p.Palette); !ok {
			errs = append(errs, fmt.Errorf("%s.palette must be a or b, got %q", name, p.Palette))
		}
	}
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, errors.New("width and height must not be negative"))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, errors.New("volume must be within [0, 1]"))
	}

	return errors.Join(errs...)
}

var profileNames = [2]string{"primary", "secondary"}

// Profiles returns the two switchable profiles in toggle order
func (c Config) Profiles() [2]Profile {
	return [2]Profile{c.Primary, c.Secondary}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "root"
}
