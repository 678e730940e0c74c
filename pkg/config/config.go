// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/chazu/orbis/pkg/kernel/sdfx"
	"github.com/chazu/orbis/pkg/solid"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Sphere  solid.Params  `yaml:"sphere"`
	Render  RenderConfig  `yaml:"render"`
	Lessons LessonConfig  `yaml:"lessons"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Solid kernels selectable with render.kernel.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold" // needs a build with -tags=manifold
)

// RenderConfig holds tessellation settings.
type RenderConfig struct {
	Segments    int    `yaml:"segments"`     // analytic tessellation density per piece
	Kernel      string `yaml:"kernel"`       // solid kernel for sliced solids
	KernelCells int    `yaml:"kernel_cells"` // marching cubes resolution, sdfx only
}

// LessonConfig holds lesson script settings.
type LessonConfig struct {
	Dir string `yaml:"dir"` // directory scanned for *.lesson files
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Orbis",
			Width:  1280,
			Height: 800,
		},
		Sphere: solid.DefaultParams(),
		Render: RenderConfig{
			Segments:    solid.DefaultSegments,
			Kernel:      KernelSdfx,
			KernelCells: sdfx.DefaultMeshCells,
		},
		Lessons: LessonConfig{
			Dir: "examples",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the viewer cannot start with.
func (c *Config) Validate() error {
	if err := c.Sphere.Validate(); err != nil {
		return fmt.Errorf("config: sphere: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.Segments < 3 {
		return fmt.Errorf("config: render.segments must be at least 3, got %d", c.Render.Segments)
	}
	switch c.Render.Kernel {
	case KernelSdfx, KernelManifold:
	default:
		return fmt.Errorf("config: unknown render.kernel %q", c.Render.Kernel)
	}
	if c.Render.KernelCells < 8 {
		return fmt.Errorf("config: render.kernel_cells must be at least 8, got %d", c.Render.KernelCells)
	}
	return nil
}
