package tracer

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// Stats tracks per-frame counters.
type Stats struct {
	Tested int // primitives tested against the frustum
	Culled int // primitives rejected
	Drawn  int // primitives handed to the tracer
	Rays   int // rays traced, shadow rays included
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Tested: s.Tested + o.Tested,
		Culled: s.Culled + o.Culled,
		Drawn:  s.Drawn + o.Drawn,
		Rays:   s.Rays + o.Rays,
	}
}

// Cull returns the primitives whose bounding sphere touches the frustum.
func Cull(f render.Frustum, objects []scene.Primitive) ([]scene.Primitive, Stats) {
	visible := make([]scene.Primitive, 0, len(objects))
	for _, o := range objects {
		if f.IntersectsSphere(o.Position(), o.BoundingRadius()) {
			visible = append(visible, o)
		}
	}
	return visible, Stats{
		Tested: len(objects),
		Culled: len(objects) - len(visible),
		Drawn:  len(visible),
	}
}

// Renderer fills a framebuffer by casting one primary ray per pixel.
type Renderer struct {
	Tracer  *Tracer
	Workers int // rows rendered concurrently; 0 means GOMAXPROCS
}

// NewRenderer creates a renderer.
func NewRenderer(t *Tracer, workers int) *Renderer {
	if t == nil {
		t = defaultTracer
	}
	return &Renderer{Tracer: t, Workers: workers}
}

func (r *Renderer) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Render traces every pixel of fb from cam.Eye. Rows are spread over the
// worker pool; each pixel is written by exactly one goroutine. The camera
// aspect ratio is taken from the framebuffer. Cancellation is checked
// between rows.
func (r *Renderer) Render(ctx context.Context, fb *render.Framebuffer, objects []scene.Primitive, cam render.Camera, light scene.Light) (Stats, error) {
	st := Stats{Drawn: len(objects)}
	if fb.Width == 0 || fb.Height == 0 {
		return st, nil
	}
	cam.SetAspectRatio(float32(fb.Width) / float32(fb.Height))

	var rays atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for y := range fb.Height {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n := 0
			for x := range fb.Width {
				dir := cam.PrimaryRay(x, y, fb.Width, fb.Height)
				fb.Set(x, y, r.Tracer.cast(cam.Eye, dir, objects, light, 0, &n))
			}
			rays.Add(int64(n))
			return nil
		})
	}

	err := g.Wait()
	st.Rays = int(rays.Load())
	if err != nil {
		return st, err
	}
	return st, ctx.Err()
}

// ResolutionScaler drops the render resolution while the frame rate is
// below Threshold.
type ResolutionScaler struct {
	Threshold float32 // frames per second
	Low       float32 // scale factor in (0, 1]
}

// Scale returns the resolution factor for the measured frame rate. An
// unknown (zero) rate renders at full resolution.
func (s ResolutionScaler) Scale(fps float32) float32 {
	if fps > 0 && fps < s.Threshold && s.Low > 0 && s.Low < 1 {
		return s.Low
	}
	return 1
}

// Size scales a w x h framebuffer for the measured frame rate, never below 1x1.
func (s ResolutionScaler) Size(w, h int, fps float32) (int, int) {
	k := s.Scale(fps)
	return max(1, int(float32(w)*k)), max(1, int(float32(h)*k))
}
