package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/diorama/pkg/tracer"
)

func TestHUDHiddenOnlyClears(t *testing.T) {
	var buf bytes.Buffer
	h := NewHUD(&buf, "diorama", false)
	h.Render(80, 24)

	out := buf.String()
	if strings.Contains(out, "FPS") || strings.Contains(out, "diorama") {
		t.Errorf("hidden HUD drew content: %q", out)
	}
	if !strings.Contains(out, "\x1b[2K") {
		t.Error("hidden HUD should still clear its rows")
	}
}

func TestHUDRender(t *testing.T) {
	var buf bytes.Buffer
	h := NewHUD(&buf, "pond", true)
	h.SetFrame(tracer.Stats{Tested: 19, Culled: 4, Drawn: 15, Rays: 52000}, 0.5, true, false)
	h.Render(100, 30)

	out := buf.String()
	for _, want := range []string{"FPS", "pond", "15/19 objects", "[✓] Smooth", "[ ] Bounds", "50% res", "52k rays"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD output missing %q", want)
		}
	}

	buf.Reset()
	h.Toggle()
	h.Render(100, 30)
	if strings.Contains(buf.String(), "pond") {
		t.Error("HUD still drawn after Toggle")
	}
}

func TestHUDUpdateFPS(t *testing.T) {
	h := NewHUD(&bytes.Buffer{}, "", true)
	start := h.fpsTime

	for i := 1; i <= 30; i++ {
		h.UpdateFPS(start.Add(time.Duration(i) * time.Second / 30))
	}
	if got := h.FPS(); got < 29 || got > 31 {
		t.Errorf("FPS() = %v, want about 30", got)
	}
}
