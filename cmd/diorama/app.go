package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/internal/logger"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/tracer"
)

var boundsColor = render.RGB(255, 220, 0)

// frame renders one frame of sc from cam into fb: cull, trace, and
// optionally draw the culling bounds on top.
func frame(ctx context.Context, fb *render.Framebuffer, sc *scene.Scene, cam *render.Camera, r *tracer.Renderer, showBounds bool) (tracer.Stats, error) {
	cam.SetAspectRatio(float32(fb.Width) / float32(fb.Height))

	visible, st := tracer.Cull(cam.Frustum(), sc.Objects())
	rs, err := r.Render(ctx, fb, visible, *cam, sc.Light)
	st.Rays = rs.Rays
	if err != nil {
		return st, err
	}

	if showBounds {
		ov := render.NewOverlay(cam, fb)
		for _, p := range visible {
			rad := p.BoundingRadius()
			half := math3d.V3(rad, rad, rad)
			ov.DrawBox(p.Position().Sub(half), p.Position().Add(half), boundsColor)
		}
		ov.DrawPoint(sc.Light.Position, 2, render.ColorWhite)
		ov.DrawAxes(1)
	}
	return st, nil
}

// snapshot renders headless frames and writes the last one as a PNG.
func snapshot(sc *scene.Scene, r *tracer.Renderer, cfg *config.Config, log *logger.Logger) error {
	if *snapWidth <= 0 || *snapHeight <= 0 || *snapFrames <= 0 {
		return fmt.Errorf("snapshot size %dx%d and frames %d must be positive", *snapWidth, *snapHeight, *snapFrames)
	}

	fb := render.NewFramebuffer(*snapWidth, *snapHeight)
	cam := sc.Camera
	dt := 1 / float32(cfg.Display.FPS)

	var st tracer.Stats
	start := time.Now()
	for i := range *snapFrames {
		sc.Advance(float32(i) * dt)
		var err error
		if st, err = frame(context.Background(), fb, sc, &cam, r, false); err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
	}

	sink := render.PNGSink{Path: *snapshotPath}
	if err := sink.Present(fb); err != nil {
		return err
	}
	log.Infof("wrote %s: %dx%d, %d frames in %v, last frame %d/%d objects, %d rays",
		*snapshotPath, fb.Width, fb.Height, *snapFrames, time.Since(start).Round(time.Millisecond),
		st.Drawn, st.Tested, st.Rays)
	return nil
}

// interactive runs the terminal frame loop until quit or a signal.
func interactive(sc *scene.Scene, r *tracer.Renderer, cfg *config.Config, log *logger.Logger) error {
	kb, err := input.NewKeyboard(cfg.Input.Bindings, cfg.Input.Hold())
	if err != nil {
		return fmt.Errorf("key bindings: %w", err)
	}
	rig := input.NewRig(cfg.Camera.MoveSpeed, cfg.Camera.OrbitSpeed)
	if cfg.Camera.Smoothing {
		rig.EnableSmoothing(cfg.Display.FPS, cfg.Camera.SpringFrequency, cfg.Camera.SpringDamping)
	}
	scaler := tracer.ResolutionScaler{
		Threshold: cfg.Display.FPSThreshold,
		Low:       cfg.Display.LowResScale,
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	sink := render.NewTerminalSink(term)
	fb := render.NewFramebuffer(sink.FramebufferSize())
	hud := NewHUD(os.Stdout, sc.Name, cfg.Display.ShowHUD)
	cam := sc.Camera
	showBounds := false

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The event goroutine only touches the keyboard and the resize channel.
	resized := make(chan uv.WindowSizeEvent, 1)
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-resized:
				default:
				}
				resized <- ev
			default:
				kb.HandleEvent(ev)
			}
		}
	}()

	targetDuration := time.Second / time.Duration(cfg.Display.FPS)
	startTime := time.Now()
	log.Infof("interactive: %dx%d cells, target %d fps", width, height, cfg.Display.FPS)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-resized:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			log.Debugf("resized to %dx%d", width, height)
		default:
		}

		now := time.Now()

		if kb.Pressed(input.Quit) {
			return nil
		}
		if kb.Pressed(input.ToggleHUD) {
			hud.Toggle()
		}
		if kb.Pressed(input.ToggleBounds) {
			showBounds = !showBounds
		}
		takeSnapshot := kb.Pressed(input.Snapshot)

		rig.Update(&cam, kb, now)
		sc.Advance(float32(now.Sub(startTime).Seconds()))

		fullW, fullH := sink.FramebufferSize()
		scale := scaler.Scale(hud.FPS())
		fb.Resize(scaler.Size(fullW, fullH, hud.FPS()))

		st, err := frame(ctx, fb, sc, &cam, r, showBounds)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}

		if err := sink.Present(fb); err != nil {
			return err
		}

		if takeSnapshot {
			path := fmt.Sprintf("diorama-%s.png", now.Format("20060102-150405"))
			if err := (render.PNGSink{Path: path}).Present(fb); err != nil {
				log.Errorf("snapshot: %v", err)
			} else {
				log.Infof("snapshot saved to %s", path)
			}
		}

		hud.UpdateFPS(time.Now())
		hud.SetFrame(st, scale, rig.Smoothing(), showBounds)
		hud.Render(width, height)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
