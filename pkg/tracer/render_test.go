package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

func defaultScene(tb testing.TB) *scene.Scene {
	tb.Helper()
	sc, err := scene.Default(render.NewTextureStore(), nil)
	if err != nil {
		tb.Fatal(err)
	}
	return sc
}

func TestRenderParallelMatchesSerial(t *testing.T) {
	sc := defaultScene(t)
	sc.Advance(0.5)
	objs := sc.Objects()

	serial := render.NewFramebuffer(48, 24)
	parallel := render.NewFramebuffer(48, 24)

	st1, err := NewRenderer(nil, 1).Render(context.Background(), serial, objs, sc.Camera, sc.Light)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	st8, err := NewRenderer(nil, 8).Render(context.Background(), parallel, objs, sc.Camera, sc.Light)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for i := range serial.Pixels {
		if serial.Pixels[i] != parallel.Pixels[i] {
			t.Fatalf("pixel %d: serial %v, parallel %v", i, serial.Pixels[i], parallel.Pixels[i])
		}
	}
	if st1.Rays != st8.Rays {
		t.Errorf("ray counts differ: %d vs %d", st1.Rays, st8.Rays)
	}
	if st1.Rays < 48*24 {
		t.Errorf("Rays = %d, want at least one per pixel", st1.Rays)
	}
}

func TestRenderEmptySceneIsSky(t *testing.T) {
	fb := render.NewFramebuffer(8, 4)
	cam := *render.NewCamera(math3d.V3(0, 0, 5), math3d.Zero3())

	if _, err := NewRenderer(nil, 2).Render(context.Background(), fb, nil, cam, whiteLight(math3d.V3(0, 10, 0))); err != nil {
		t.Fatal(err)
	}
	for i, c := range fb.Pixels {
		if c != render.ColorSky {
			t.Fatalf("pixel %d = %v, want sky", i, c)
		}
	}
}

func TestRenderCenterPixelHitsTarget(t *testing.T) {
	red, _ := scene.NewMaterial("red", render.RGB(255, 0, 0), 1, [4]float32{1, 0, 0, 0}, 1)
	objs := []scene.Primitive{scene.NewSphere(math3d.Zero3(), 1, red)}
	cam := *render.NewCamera(math3d.V3(0, 0, 5), math3d.Zero3())

	fb := render.NewFramebuffer(9, 9)
	if _, err := NewRenderer(nil, 0).Render(context.Background(), fb, objs, cam, whiteLight(math3d.V3(0, 0, 10))); err != nil {
		t.Fatal(err)
	}
	// Pixel 4 is slightly off center; the sphere still covers it.
	if c := fb.At(4, 4); c.R == 0 || c.B != 0 {
		t.Errorf("center pixel = %v, want red", c)
	}
	if c := fb.At(0, 0); c != render.ColorSky {
		t.Errorf("corner pixel = %v, want sky", c)
	}
}

func TestRenderCancelled(t *testing.T) {
	sc := defaultScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := render.NewFramebuffer(16, 16)
	_, err := NewRenderer(nil, 4).Render(ctx, fb, sc.Objects(), sc.Camera, sc.Light)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCull(t *testing.T) {
	cam := render.NewCamera(math3d.V3(0, 0, 5), math3d.Zero3())
	target := scene.NewSphere(math3d.Zero3(), 1, nil)
	behind := scene.NewCube(math3d.V3(0, 0, 1005), 1, nil)
	edge := scene.NewCube(math3d.V3(6.5, 0, 0), 2, nil)

	visible, st := Cull(cam.Frustum(), []scene.Primitive{target, behind, edge})

	if st.Tested != 3 || st.Culled != 1 || st.Drawn != 2 {
		t.Errorf("stats = %+v, want tested 3, culled 1, drawn 2", st)
	}
	if len(visible) != 2 || visible[0] != target || visible[1] != edge {
		t.Errorf("visible = %v", visible)
	}
}

func TestStatsAdd(t *testing.T) {
	a := Stats{Tested: 3, Culled: 1, Drawn: 2}
	b := Stats{Drawn: 2, Rays: 100}
	if got := a.Add(b); got != (Stats{Tested: 3, Culled: 1, Drawn: 4, Rays: 100}) {
		t.Errorf("Add = %+v", got)
	}
}

func TestResolutionScaler(t *testing.T) {
	s := ResolutionScaler{Threshold: 15, Low: 0.5}

	tests := []struct {
		name  string
		fps   float32
		scale float32
		w, h  int
	}{
		{"unknown rate", 0, 1, 100, 50},
		{"fast", 30, 1, 100, 50},
		{"at threshold", 15, 1, 100, 50},
		{"slow", 10, 0.5, 50, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Scale(tt.fps); got != tt.scale {
				t.Errorf("Scale(%v) = %v, want %v", tt.fps, got, tt.scale)
			}
			w, h := s.Size(100, 50, tt.fps)
			if w != tt.w || h != tt.h {
				t.Errorf("Size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}

	if w, h := s.Size(1, 1, 1); w != 1 || h != 1 {
		t.Errorf("Size never goes below 1x1, got %dx%d", w, h)
	}
	if got := (ResolutionScaler{Threshold: 15, Low: 2}).Scale(5); got != 1 {
		t.Errorf("invalid Low should disable scaling, got %v", got)
	}
}

func BenchmarkRender(b *testing.B) {
	sc := defaultScene(b)
	objs := sc.Objects()
	fb := render.NewFramebuffer(80, 48)
	r := NewRenderer(nil, 0)
	ctx := context.Background()

	for b.Loop() {
		if _, err := r.Render(ctx, fb, objs, sc.Camera, sc.Light); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderSerial(b *testing.B) {
	sc := defaultScene(b)
	objs := sc.Objects()
	fb := render.NewFramebuffer(80, 48)
	r := NewRenderer(nil, 1)
	ctx := context.Background()

	for b.Loop() {
		if _, err := r.Render(ctx, fb, objs, sc.Camera, sc.Light); err != nil {
			b.Fatal(err)
		}
	}
}
