package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/scenecore/app"
	"github.com/milk9111/scenecore/config"
	"github.com/milk9111/scenecore/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the engine config")
	sceneName := flag.String("scene", "", "scene file in prefabs/ (overrides the config)")
	debug := flag.Bool("debug", false, "draw collider outlines")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *sceneName != "" {
		cfg.Scene = *sceneName
	}
	if *debug {
		cfg.DebugDraw = true
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()
	if err := a.LoadScene(cfg.Scene); err != nil {
		logger.Fatal("scene failed to load", zap.String("scene", cfg.Scene), zap.Error(err))
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.TPS)

	if err := ebiten.RunGame(NewGame(a)); err != nil {
		logger.Error("game exited", zap.Error(err))
	}
}
