package main

import (
	"fmt"
	"io"
	"time"

	"github.com/taigrr/diorama/pkg/tracer"
)

// HUD draws the status rows over the rendered frame.
type HUD struct {
	out       io.Writer
	sceneName string
	show      bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time

	stats     tracer.Stats
	scale     float32
	smoothing bool
	bounds    bool
}

// NewHUD creates a HUD writing escape sequences to out.
func NewHUD(out io.Writer, sceneName string, show bool) *HUD {
	return &HUD{
		out:       out,
		sceneName: sceneName,
		show:      show,
		fpsTime:   time.Now(),
		scale:     1,
	}
}

// UpdateFPS counts a frame and refreshes the rate once per second.
func (h *HUD) UpdateFPS(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the last measured frame rate, 0 before the first second.
func (h *HUD) FPS() float32 {
	return float32(h.fps)
}

// SetFrame records what the last frame did.
func (h *HUD) SetFrame(st tracer.Stats, scale float32, smoothing, bounds bool) {
	h.stats = st
	h.scale = scale
	h.smoothing = smoothing
	h.bounds = bounds
}

// Toggle shows or hides the HUD.
func (h *HUD) Toggle() {
	h.show = !h.show
}

// Render writes the top and bottom rows of a width x height terminal.
func (h *HUD) Render(width, height int) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Fprint(h.out, moveTo(1, 1)+clearLine)
	fmt.Fprint(h.out, moveTo(height, 1)+clearLine)

	if !h.show {
		return
	}

	fmt.Fprintf(h.out, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.sceneName)-2)/2, 1)
	fmt.Fprintf(h.out, "%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.sceneName, reset)

	objs := fmt.Sprintf("%d/%d objects", h.stats.Drawn, h.stats.Tested)
	fmt.Fprintf(h.out, "%s%s%s%s %s %s", moveTo(1, max(width-len(objs)-1, 1)), bgBlack, fgCyan, bold, objs, reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	res := "full res"
	if h.scale < 1 {
		res = fmt.Sprintf("%.0f%% res", h.scale*100)
	}
	mode := fmt.Sprintf("%s%s %s Smooth  %s Bounds  %s  %dk rays %s",
		bgBlack, fgWhite, check(h.smoothing), check(h.bounds), res, h.stats.Rays/1000, reset)
	fmt.Fprint(h.out, moveTo(height, 1)+mode)

	hint := "WASD move  arrows orbit  p snap"
	fmt.Fprintf(h.out, "%s%s%s%s %s %s", moveTo(height, max(width-len(hint)-1, 1)), bgBlack, dim, fgYellow, hint, reset)
}
