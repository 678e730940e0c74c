package config

import "flag"

// Flags holds the command-line overrides. Zero values leave the file or
// default setting alone.
type Flags struct {
	Config      string
	WriteConfig string
	Debug       bool
	Radius      float64
	Segments    int
	Kernel      string
	KernelCells int
	Width       int
	Height      int
	LogFile     string
}

// ParseFlags parses command-line arguments, without the program name.
func ParseFlags(args []string) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("orbis", flag.ContinueOnError)
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.WriteConfig, "write-config", "", "Write the effective config to this path and exit")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.Radius, "radius", 0, "Default sphere radius")
	fs.IntVar(&f.Segments, "segments", 0, "Tessellation segments per piece")
	fs.StringVar(&f.Kernel, "kernel", "", "Solid kernel: sdfx or manifold")
	fs.IntVar(&f.KernelCells, "kernel-cells", 0, "Marching cubes cells for sliced solids")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.LogFile, "log-file", "", "Rotating log file path")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// apply applies CLI flag overrides to the config.
func (f Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Radius > 0 {
		cfg.Sphere.Radius = f.Radius
	}
	if f.Segments > 0 {
		cfg.Render.Segments = f.Segments
	}
	if f.Kernel != "" {
		cfg.Render.Kernel = f.Kernel
	}
	if f.KernelCells > 0 {
		cfg.Render.KernelCells = f.KernelCells
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
