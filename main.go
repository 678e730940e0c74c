package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"github.com/chazu/orbis/pkg/config"
	"github.com/chazu/orbis/pkg/logger"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := config.ParseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orbis: %v\n", err)
		return 1
	}
	if flags.WriteConfig != "" {
		if err := cfg.SaveTo(flags.WriteConfig); err != nil {
			fmt.Fprintf(os.Stderr, "orbis: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", flags.WriteConfig)
		return 0
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "orbis: logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.String("kernel", cfg.Render.Kernel),
		zap.String("lessons", cfg.Lessons.Dir))
	logger.Debug("window",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("segments", cfg.Render.Segments))
	if _, err := os.Stat(cfg.Lessons.Dir); err != nil {
		logger.Warn("no lessons to list", zap.String("dir", cfg.Lessons.Dir), zap.Error(err))
	}

	app, err := NewAppWithConfig(cfg)
	if err != nil {
		logger.Error("create app", zap.Error(err))
		return 1
	}

	err = wails.Run(&options.App{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 17, G: 17, B: 17, A: 255},
		OnStartup:        app.startup,
		Logger:           logger.WailsLogger{L: logger.Named("wails")},
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("wails run", zap.Error(err))
		return 1
	}
	return 0
}
