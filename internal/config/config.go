// Package config provides configuration loading and management for the scene server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/telemetry"
)

// EnvPrefix is the prefix of environment variables read by the server
const EnvPrefix = "THV_SCENE"

const (
	// LoaderTypeStatic serves scene objects listed in the configuration
	LoaderTypeStatic = "static"

	// LoaderTypeManifest reads scene objects from JSON manifest files
	LoaderTypeManifest = "manifest"
)

const (
	// DefaultTickInterval is the simulation tick interval when none is configured
	DefaultTickInterval = 16 * time.Millisecond

	// DefaultAddress is the HTTP listen address when none is configured
	DefaultAddress = ":8080"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Address is the HTTP listen address. Defaults to ":8080".
	Address string `yaml:"address,omitempty"`

	// TickInterval is the simulation tick interval (e.g. "16ms").
	TickInterval string `yaml:"tickInterval,omitempty"`

	Loader    LoaderConfig      `yaml:"loader"`
	Peers     []PeerConfig      `yaml:"peers"`
	Scenes    []SceneConfig     `yaml:"scenes"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// LoaderConfig selects and tunes the content-loading back end
type LoaderConfig struct {
	// Type is either "static" or "manifest"
	Type string `yaml:"type"`

	// UnloadFrames is the number of ticks spent unloading the previous scene
	UnloadFrames int `yaml:"unloadFrames,omitempty"`

	// LoadFrames is the number of ticks spent loading (static loader only)
	LoadFrames int `yaml:"loadFrames,omitempty"`

	// FormatConstraint is the semver range of accepted manifest formatVersions
	FormatConstraint string `yaml:"formatConstraint,omitempty"`

	// ReadAttempts is how often a failing manifest read is attempted
	ReadAttempts uint `yaml:"readAttempts,omitempty"`

	// LockManifests takes a shared lock on "<manifest>.lock" while reading
	LockManifests bool `yaml:"lockManifests,omitempty"`
}

// PeerConfig defines one simulation peer with its scene manager
type PeerConfig struct {
	// Name is the identifier for this peer
	Name string `yaml:"name"`

	// InitialScene is the scene index considered loaded when the manager
	// attaches. Unset means no scene is loaded.
	InitialScene *int `yaml:"initialScene,omitempty"`

	// StartScene is the desired scene index at startup. Unset means the
	// initial scene.
	StartScene *int `yaml:"startScene,omitempty"`
}

// SceneConfig defines one loadable scene
type SceneConfig struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name,omitempty"`

	// Manifest is the manifest path for the manifest loader
	Manifest string `yaml:"manifest,omitempty"`

	// Objects are the scene-bound objects for the static loader
	Objects []ObjectConfig `yaml:"objects,omitempty"`

	// Fail makes the static loader fail loading this scene with the given message
	Fail string `yaml:"fail,omitempty"`
}

// ObjectConfig defines a scene-bound object for the static loader
type ObjectConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Manifest paths are relative to the configuration file
	baseDir := filepath.Dir(loaderCfg.path)
	for i := range config.Scenes {
		if m := config.Scenes[i].Manifest; m != "" && !filepath.IsAbs(m) {
			config.Scenes[i].Manifest = filepath.Join(baseDir, m)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetAddress returns the listen address, using ":8080" if not specified
func (c *Config) GetAddress() string {
	if c.Address == "" {
		return DefaultAddress
	}
	return c.Address
}

// GetTickInterval returns the parsed tick interval, using 16ms if not specified
func (c *Config) GetTickInterval() time.Duration {
	if c.TickInterval == "" {
		return DefaultTickInterval
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval
	}
	return d
}

// GetLoaderType returns the loader type, using "static" if not specified
func (c *Config) GetLoaderType() string {
	if c.Loader.Type == "" {
		return LoaderTypeStatic
	}
	return c.Loader.Type
}

// Validate performs validation on the configuration. All problems are
// reported at once.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			errs = append(errs, fmt.Errorf("tickInterval must be a valid duration (e.g., '16ms'): %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("tickInterval must be positive"))
		}
	}

	loaderType := c.GetLoaderType()
	if loaderType != LoaderTypeStatic && loaderType != LoaderTypeManifest {
		errs = append(errs, fmt.Errorf("loader.type must be %q or %q, got %q",
			LoaderTypeStatic, LoaderTypeManifest, loaderType))
	}
	if c.Loader.UnloadFrames < 0 || c.Loader.LoadFrames < 0 {
		errs = append(errs, fmt.Errorf("loader frame counts must not be negative"))
	}

	indices := make(map[int]bool)
	for i, s := range c.Scenes {
		errs = append(errs, validateScene(&s, i, loaderType, indices)...)
	}

	if len(c.Peers) == 0 {
		errs = append(errs, fmt.Errorf("at least one peer must be configured"))
	}
	peerNames := make(map[string]bool)
	for i, p := range c.Peers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("peer[%d]: name is required", i))
		} else if peerNames[p.Name] {
			errs = append(errs, fmt.Errorf("peer[%d]: duplicate peer name '%s'", i, p.Name))
		}
		peerNames[p.Name] = true

		if p.InitialScene != nil && !indices[*p.InitialScene] {
			errs = append(errs, fmt.Errorf("peer[%d] (%s): initialScene %d is not a configured scene",
				i, p.Name, *p.InitialScene))
		}
		if p.StartScene != nil && !indices[*p.StartScene] {
			errs = append(errs, fmt.Errorf("peer[%d] (%s): startScene %d is not a configured scene",
				i, p.Name, *p.StartScene))
		}
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func validateScene(s *SceneConfig, index int, loaderType string, seen map[int]bool) []error {
	var errs []error
	prefix := fmt.Sprintf("scene[%d]", index)

	if s.Index < 0 {
		errs = append(errs, fmt.Errorf("%s: index must not be negative", prefix))
	} else if seen[s.Index] {
		errs = append(errs, fmt.Errorf("%s: duplicate scene index %d", prefix, s.Index))
	}
	seen[s.Index] = true

	if loaderType == LoaderTypeManifest && s.Manifest == "" {
		errs = append(errs, fmt.Errorf("%s: manifest is required for the manifest loader", prefix))
	}

	ids := make(map[uuid.UUID]bool)
	for j, obj := range s.Objects {
		id, err := uuid.Parse(obj.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: object[%d]: invalid id %q: %w", prefix, j, obj.ID, err))
			continue
		}
		if ids[id] {
			errs = append(errs, fmt.Errorf("%s: object[%d]: duplicate id %s", prefix, j, id))
		}
		ids[id] = true
	}

	return errs
}

// Ref returns the scene reference of the configured scene
func (s *SceneConfig) Ref() scene.Ref {
	return scene.FromIndex(s.Index)
}

// SceneRef converts an optional scene index to a reference
func SceneRef(index *int) scene.Ref {
	if index == nil {
		return scene.None
	}
	return scene.FromIndex(*index)
}
