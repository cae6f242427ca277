package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/koteyur/shapefall/config"
	"github.com/koteyur/shapefall/extract"
	"github.com/koteyur/shapefall/render"
	"github.com/koteyur/shapefall/scene"
	"github.com/koteyur/shapefall/watch"
)

func main() {
	configPath := flag.String("config", "shapefall.yaml", "YAML config file (defaults apply when missing)")
	input := flag.String("input", "", "source image with dark shapes on a light background")
	out := flag.String("out", "", "directory for rendered frames")
	steps := flag.Int("steps", 0, "number of simulation steps")
	view := flag.Bool("view", false, "open a live window instead of writing frames")
	watchFiles := flag.Bool("watch", false, "re-run whenever the input or config changes")
	flag.Parse()

	cfg, err := loadConfig(*configPath, config.Config{Input: *input, OutputDir: *out, Steps: *steps})
	if err != nil {
		log.Fatal(err)
	}

	if *view {
		s, err := buildScene(cfg)
		if err != nil {
			log.Fatal(err)
		}
		ebiten.SetWindowSize(int(s.Width), int(s.Height))
		ebiten.SetWindowTitle("shapefall")
		if err := ebiten.RunGame(newViewer(s, cfg, func() (*scene.Scene, error) { return buildScene(cfg) })); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !*watchFiles {
		if err := run(ctx, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := watchLoop(ctx, *configPath, cfg, config.Config{Input: *input, OutputDir: *out, Steps: *steps}); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string, overrides config.Config) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Merge(overrides); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// buildScene loads the input image and turns its shapes into a world. Bad
// shapes are logged and skipped unless cfg.Strict is set.
func buildScene(cfg config.Config) (*scene.Scene, error) {
	mask, err := extract.Load(cfg.Input, cfg.Threshold, cfg.Invert)
	if err != nil {
		return nil, err
	}
	shapes, err := extract.Extract(extract.Label(mask))
	if err != nil {
		if cfg.Strict {
			return nil, err
		}
		log.Printf("skipping shapes: %v", err)
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("no shapes found in %s", cfg.Input)
	}

	b := mask.Bounds()
	s, err := scene.Build(shapes, b.Dx(), b.Dy(), cfg, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: %d shapes in %dx%d", cfg.Input, len(s.Bodies), b.Dx(), b.Dy())
	return s, nil
}

// run simulates cfg.Steps steps and writes one PNG per step.
func run(ctx context.Context, cfg config.Config) error {
	s, err := buildScene(cfg)
	if err != nil {
		return err
	}
	png, err := render.NewPNG(cfg.OutputDir, int(s.Width), int(s.Height))
	if err != nil {
		return err
	}
	n, err := scene.Run(ctx, scene.NewSimulation(s, cfg.TimeStep, cfg.Steps).Frames(), png)
	log.Printf("wrote %d frames to %s", n, cfg.OutputDir)
	return err
}

// watchLoop runs once, then again after every change to the input image or
// the config file, until ctx is done. Failed runs are logged, not fatal.
func watchLoop(ctx context.Context, configPath string, cfg config.Config, overrides config.Config) error {
	w, err := watch.New(cfg.Input, configPath)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := run(ctx, cfg); err != nil {
		log.Printf("run failed: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			log.Printf("watch: %v", err)
		case name := <-w.Events:
			log.Printf("%s changed", name)
			next, err := loadConfig(configPath, overrides)
			if err != nil {
				log.Printf("keeping previous config: %v", err)
			} else {
				cfg = next
			}
			if err := run(ctx, cfg); err != nil {
				log.Printf("run failed: %v", err)
			}
		}
	}
}
