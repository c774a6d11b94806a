package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/pkg/math3d"
)

func TestFramebufferSetAt(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.Set(1, 2, ColorSky)

	if got := fb.At(1, 2); got != ColorSky {
		t.Errorf("At(1, 2) = %v, want %v", got, ColorSky)
	}
	if got := fb.Pixels[2*4+1]; got != ColorSky {
		t.Errorf("row-major index holds %v, want %v", got, ColorSky)
	}

	// Out of bounds is ignored.
	fb.Set(-1, 0, ColorWhite)
	fb.Set(4, 0, ColorWhite)
	if got := fb.At(10, 10); got != ColorBlack {
		t.Errorf("out of bounds At = %v, want black", got)
	}
}

func TestFramebufferResizeAndClear(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Resize(2, 3)
	if fb.Width != 2 || fb.Height != 3 || len(fb.Pixels) != 6 {
		t.Fatalf("Resize -> %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}

	fb.Clear(ColorGreen)
	for i, p := range fb.Pixels {
		if p != ColorGreen {
			t.Fatalf("pixel %d = %v after Clear", i, p)
		}
	}

	fb.Resize(16, 16)
	if len(fb.Pixels) != 256 {
		t.Errorf("grown buffer has %d pixels, want 256", len(fb.Pixels))
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	fb.DrawLine(0, 0, 4, 4, ColorWhite)

	for i := range 5 {
		if fb.At(i, i) != ColorWhite {
			t.Errorf("diagonal pixel (%d, %d) not set", i, i)
		}
	}
	if fb.At(4, 0) != ColorBlack {
		t.Error("off-diagonal pixel should be untouched")
	}
}

func TestFramebufferSavePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Set(2, 1, ColorSky)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := (PNGSink{Path: path}).Present(fb); err != nil {
		t.Fatalf("Present: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("image size = %v, want 3x2", b)
	}
	r, g, b, _ := img.At(2, 1).RGBA()
	if uint8(r>>8) != 135 || uint8(g>>8) != 206 || uint8(b>>8) != 235 {
		t.Errorf("pixel = (%d, %d, %d), want sky", r>>8, g>>8, b>>8)
	}
}

type fakeDisplay struct {
	uv.ScreenBuffer
	displayed int
}

func (d *fakeDisplay) Display() error {
	d.displayed++
	return nil
}

func TestTerminalSinkHalfBlocks(t *testing.T) {
	scr := &fakeDisplay{ScreenBuffer: uv.NewScreenBuffer(2, 1)}
	sink := NewTerminalSink(scr)

	w, h := sink.FramebufferSize()
	if w != 2 || h != 2 {
		t.Fatalf("FramebufferSize = %dx%d, want 2x2", w, h)
	}

	fb := NewFramebuffer(w, h)
	fb.Set(0, 0, ColorWhite) // top of first cell
	fb.Set(0, 1, ColorSky)   // bottom of first cell

	if err := sink.Present(fb); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if scr.displayed != 1 {
		t.Errorf("Display called %d times, want 1", scr.displayed)
	}

	cell := scr.CellAt(0, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell = %+v, want half block", cell)
	}
	if cell.Style.Fg != ColorWhite.RGBA() || cell.Style.Bg != ColorSky.RGBA() {
		t.Errorf("cell colors = %v / %v, want white over sky", cell.Style.Fg, cell.Style.Bg)
	}
}

func TestDrawUpscalesLowResolution(t *testing.T) {
	scr := uv.NewScreenBuffer(4, 2)
	fb := NewFramebuffer(2, 2)
	fb.Set(1, 1, ColorSky)

	fb.Draw(scr, scr.Bounds())

	// fb pixel (1, 1) covers the right half of the bottom pixel rows.
	for _, pos := range [][2]int{{2, 1}, {3, 1}} {
		cell := scr.CellAt(pos[0], pos[1])
		if cell.Style.Bg != ColorSky.RGBA() {
			t.Errorf("cell %v background = %v, want sky", pos, cell.Style.Bg)
		}
	}
	if cell := scr.CellAt(0, 1); cell.Style.Bg != ColorBlack.RGBA() {
		t.Errorf("cell (0, 1) background = %v, want black", cell.Style.Bg)
	}
}

func TestOverlayDrawBox(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 0, 5), math3d.Zero3())
	fb := NewFramebuffer(40, 40)
	overlay := NewOverlay(cam, fb)

	overlay.DrawBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1), ColorGreen)

	lit := 0
	for _, p := range fb.Pixels {
		if p == ColorGreen {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("box outline drew no pixels")
	}
	// The box center is empty: only edges are drawn.
	if fb.At(20, 20) == ColorGreen {
		t.Error("center pixel should not be part of the outline")
	}
}
