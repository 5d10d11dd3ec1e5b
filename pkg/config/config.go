// Package config loads csgtool settings from a TOML file.
//
// Every key is optional; a missing key keeps its default. A minimal file:
//
//	kernel = "bsp" # or "sdfx", "manifold"
//	log_level = "info"
//	eval_timeout = "5s"
//
//	[sphere]
//	slices = 32
//	stacks = 16
//
//	[cylinder]
//	slices = 16
//
//	[sdfx]
//	mesh_cells = 200
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/chazu/bspcsg/pkg/graph"
	"github.com/sirupsen/logrus"
)

// Kernel names accepted by the kernel key.
const (
	KernelBSP      = "bsp"
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold" // needs a binary built with -tags=manifold
)

// Config holds all csgtool settings.
type Config struct {
	Kernel      string `toml:"kernel"`
	LogLevel    string `toml:"log_level"`
	EvalTimeout string `toml:"eval_timeout"` // Go duration, e.g. "5s"

	Sphere   SphereConfig   `toml:"sphere"`
	Cylinder CylinderConfig `toml:"cylinder"`
	Sdfx     SdfxConfig     `toml:"sdfx"`
}

// SphereConfig sets the tessellation of spheres that do not set their own.
type SphereConfig struct {
	Slices int `toml:"slices"`
	Stacks int `toml:"stacks"`
}

// CylinderConfig sets the tessellation of cylinders that do not set their own.
type CylinderConfig struct {
	Slices int `toml:"slices"`
}

// SdfxConfig tunes the distance field kernel.
type SdfxConfig struct {
	MeshCells int `toml:"mesh_cells"` // marching cubes cells along the longest axis
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Kernel:      KernelBSP,
		LogLevel:    "info",
		EvalTimeout: "5s",
		Sphere: SphereConfig{
			Slices: graph.DefaultSphereSlices,
			Stacks: graph.DefaultSphereStacks,
		},
		Cylinder: CylinderConfig{Slices: graph.DefaultCylinderSlices},
		Sdfx:     SdfxConfig{MeshCells: 200},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are an error so that typos do not go unnoticed.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.Kernel {
	case KernelBSP, KernelSdfx, KernelManifold:
	default:
		return fmt.Errorf("kernel %q: want %q, %q or %q", c.Kernel, KernelBSP, KernelSdfx, KernelManifold)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil {
		return fmt.Errorf("eval_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("eval_timeout %s must be positive", d)
	}
	if c.Sphere.Slices < 3 || c.Sphere.Stacks < 2 {
		return fmt.Errorf("sphere %dx%d: want at least 3 slices and 2 stacks", c.Sphere.Slices, c.Sphere.Stacks)
	}
	if c.Cylinder.Slices < 3 {
		return fmt.Errorf("cylinder slices %d: want at least 3", c.Cylinder.Slices)
	}
	if c.Sdfx.MeshCells < 8 {
		return fmt.Errorf("sdfx mesh_cells %d: want at least 8", c.Sdfx.MeshCells)
	}
	return nil
}

// Timeout returns the evaluation time limit. It falls back to five seconds
// when EvalTimeout does not parse; Validate reports that case.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Level returns the logrus level, defaulting to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Defaults returns the graph-wide tessellation defaults.
func (c *Config) Defaults() graph.GlobalDefaults {
	return graph.GlobalDefaults{
		SphereSlices:   c.Sphere.Slices,
		SphereStacks:   c.Sphere.Stacks,
		CylinderSlices: c.Cylinder.Slices,
		Units:          "mm",
	}
}
