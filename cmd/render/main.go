// Package main renders a design scene headlessly: it composes the
// garment texture, captures front and back snapshots and writes the
// design record.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/config"
	"github.com/Faultbox/garment-designer/internal/designer"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/internal/scene"
	"github.com/Faultbox/garment-designer/internal/viewport"
)

var (
	flagScene = flag.String("scene", "", "YAML scene to render (required)")
	flagOut   = flag.String("out", "out", "Output directory")
)

func main() {
	config.ParseFlags()
	if *flagScene == "" {
		fmt.Fprintln(os.Stderr, "usage: render -scene design.yaml [-out dir]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, *flagScene, *flagOut); err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, scenePath, out string) error {
	sc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}
	cfg.Handoff.Dir = out

	s, err := designer.FromConfig(cfg, viewport.NewSoftwareRenderer(cfg.Snapshot.Supersample))
	if err != nil {
		return err
	}

	model := cfg.Model.Path
	if sc.Model != "" {
		model = sc.Model
	}
	s.LoadModel(model)
	s.Settle()
	if err := s.Host().LoadErr(); err != nil {
		return err
	}

	if err := sc.Apply(s); err != nil {
		return err
	}
	s.Settle()
	s.ComposeNow()

	rec, err := s.Submit(ctx)
	if err != nil {
		return err
	}

	outputs := map[string]string{
		"front.png": rec.FrontImage,
		"back.png":  rec.BackImage,
	}
	for name, url := range outputs {
		img, err := texture.ParseDataURL(url)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := writeImage(filepath.Join(out, name), img); err != nil {
			return err
		}
	}
	s.ComposeNow()
	if err := writeImage(filepath.Join(out, "composite.png"), s.Composite()); err != nil {
		return err
	}

	logger.Info("scene rendered",
		zap.String("scene", scenePath),
		zap.String("out", out),
		zap.Int("images", len(rec.ImageElements)),
		zap.Int("texts", len(rec.TextElements)))
	return nil
}
