//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"farmgrid/internal/app"
	"farmgrid/internal/assets"
	"farmgrid/internal/config"
	"farmgrid/internal/engine"
	"farmgrid/internal/logging"
	"farmgrid/internal/scene"
)

func main() {
	cfgPath := flag.String("config", "", "TOML configuration file")
	assetPath := flag.String("asset", "", "asset record (JSON)")
	dbPath := flag.String("db", "", "SQLite asset store")
	assetID := flag.String("id", "", "asset id to load from the store")

	// Flags override the file, so the file is read before parsing.
	cfg, err := config.Load(configPath(*cfgPath))
	if err != nil {
		logging.L.Fatal(err)
	}
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if err := logging.Configure(cfg.View.LogLevel, cfg.View.LogFormat); err != nil {
		logging.L.Fatal(err)
	}
	log := logging.For("farmgrid")

	forecaster, predictor := engine.Services(cfg, nil)
	graph := scene.NewMemory()
	eng, err := engine.New(engine.Options{
		Config: cfg, Forecaster: forecaster, Predictor: predictor, Graph: graph,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build engine")
	}
	defer eng.Close()

	if *assetPath != "" || *dbPath != "" {
		a, err := assets.Resolve(context.Background(), *assetPath, *dbPath, *assetID)
		if err != nil {
			log.WithError(err).Fatal("failed to load asset")
		}
		if err := eng.Load(a); err != nil {
			log.WithError(err).Fatal("failed to load asset")
		}
	}

	ebiten.SetWindowTitle("farmgrid")
	ebiten.SetTPS(cfg.View.TPS)
	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)

	if err := ebiten.RunGame(app.New(eng, graph)); err != nil && !errors.Is(err, ebiten.Termination) {
		log.WithError(err).Fatal("viewer stopped")
	}
}
