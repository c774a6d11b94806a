// diorama - Terminal Ray Tracer
// Renders a small scene of cubes and spheres with recursive reflection,
// refraction and hard shadows, live in your terminal.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Move left/right
//	Arrows      - Orbit around the view center
//	X           - Toggle culling bounds overlay
//	P           - Save a PNG snapshot
//	?           - Toggle HUD overlay (FPS, scene, object count, rays)
//	Esc/Q       - Quit
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/diorama/internal/logger"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/tracer"
)

var (
	configPath   = flag.String("config", "", "Path to config file (YAML)")
	scenePath    = flag.String("scene", "", "Scene file (.yaml, .gltf, .glb); overrides the config")
	snapshotPath = flag.String("snapshot", "", "Render without a terminal and write the last frame to this PNG")
	snapWidth    = flag.Int("width", 320, "Snapshot width in pixels")
	snapHeight   = flag.Int("height", 180, "Snapshot height in pixels")
	snapFrames   = flag.Int("frames", 1, "Frames to render in snapshot mode, animation advances 1/fps per frame")
	targetFPS    = flag.Int("fps", 0, "Target FPS (0 uses the config)")
	writeConfig  = flag.String("write-config", "", "Write the effective config to this path and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "diorama - Terminal Ray Tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: diorama [options] [scene.yaml|scene.gltf|scene.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move the camera\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Orbit\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle culling bounds\n")
		fmt.Fprintf(os.Stderr, "  P           - Save snapshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	if *scenePath != "" {
		cfg.Scene = *scenePath
	}
	if flag.NArg() > 0 {
		cfg.Scene = flag.Arg(0)
	}
	if *targetFPS > 0 {
		cfg.Display.FPS = *targetFPS
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if *writeConfig != "" {
		return config.SaveConfig(cfg, *writeConfig)
	}

	// The terminal belongs to the renderer in interactive mode.
	var log *logger.Logger
	if *snapshotPath != "" {
		log = logger.New(cfg.LogLevel, os.Stderr)
	} else {
		var err error
		if log, err = logger.NewFileLogger(cfg.LogLevel, cfg.LogFile); err != nil {
			return err
		}
	}
	defer log.Close()

	store := render.NewTextureStore()
	sc, err := loadScene(cfg.Scene, store, log)
	if err != nil {
		return err
	}
	log.Infof("scene %q: %d primitives, %d materials, %d textures",
		sc.Name, sc.Len(), len(sc.Materials), store.Len())

	sky, err := cfg.Tracer.SkyColor()
	if err != nil {
		return fmt.Errorf("sky color: %w", err)
	}
	tr := tracer.New(tracer.Options{
		MaxDepth: cfg.Tracer.MaxDepth,
		Bias:     cfg.Tracer.Bias,
		Sky:      sky,
	})
	renderer := tracer.NewRenderer(tr, cfg.Tracer.Workers)

	if *snapshotPath != "" {
		return snapshot(sc, renderer, cfg, log)
	}
	return interactive(sc, renderer, cfg, log)
}

// loadScene picks the loader by extension; an empty path is the built-in diorama.
func loadScene(path string, store *render.TextureStore, log *logger.Logger) (*scene.Scene, error) {
	if path == "" {
		return scene.Default(store, log)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return scene.LoadFile(path, store, log)
	case ".gltf", ".glb":
		sc, err := scene.ImportGLTF(path, log)
		if err != nil {
			return nil, fmt.Errorf("load scene: %w", err)
		}
		return sc, nil
	default:
		return nil, fmt.Errorf("unsupported scene format: %s (use .yaml, .gltf or .glb)", ext)
	}
}
