package renderer

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"glbench/internal/gpu"
	"glbench/internal/gpu/gputest"
	"glbench/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

func setUp(t *testing.T, workload int) (*Renderer, *gputest.Surface) {
	t.Helper()
	s := gputest.NewSurface(64, 32)
	r := New(s, workload)
	if err := r.SetUp(); err != nil {
		t.Fatalf("SetUp: %v", err)
	}
	return r, s
}

func TestDrawCallCountPerWorkload(t *testing.T) {
	for _, tt := range []struct{ workload, want int }{
		{1, 1},
		{2, 4},
		{3, 16},
		{4, 64},
	} {
		r, s := setUp(t, tt.workload)
		if err := r.Draw(true); err != nil {
			t.Fatalf("w=%d: Draw: %v", tt.workload, err)
		}
		if got := len(s.Dev.Draws); got != tt.want {
			t.Errorf("w=%d: %d draw calls, want %d", tt.workload, got, tt.want)
		}
		if got := r.Stats().DrawCalls; got != tt.want {
			t.Errorf("w=%d: Stats().DrawCalls = %d", tt.workload, got)
		}
		if DrawCalls(tt.workload) != tt.want {
			t.Errorf("DrawCalls(%d) = %d", tt.workload, DrawCalls(tt.workload))
		}
		r.TearDown()
	}
}

func TestDrawBeforeSetUp(t *testing.T) {
	s := gputest.NewSurface(64, 32)
	r := New(s, 2)
	if err := r.Draw(true); !errors.Is(err, ErrNotSetUp) {
		t.Fatalf("Draw before SetUp = %v, want ErrNotSetUp", err)
	}
	if err := r.Draw(false); !errors.Is(err, ErrNotSetUp) {
		t.Fatalf("onscreen Draw before SetUp = %v, want ErrNotSetUp", err)
	}
	if s.SetUps != 0 || len(s.Dev.Ops) != 0 {
		t.Fatal("Draw touched the surface before SetUp")
	}
}

func TestOffscreenDraw(t *testing.T) {
	r, s := setUp(t, 2)
	if err := r.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if s.Dev.Finishes != 1 {
		t.Errorf("Finish called %d times, want 1", s.Dev.Finishes)
	}
	if s.Swaps != 0 {
		t.Errorf("offscreen frame swapped %d times", s.Swaps)
	}
	if s.Dev.Framebuffer != s.FBO {
		t.Errorf("bound framebuffer %d, want %d", s.Dev.Framebuffer, s.FBO)
	}
}

func TestOnscreenDrawReturnsSwapResult(t *testing.T) {
	r, s := setUp(t, 1)
	if err := r.Draw(false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if s.Swaps != 1 || s.Dev.Finishes != 0 || s.Dev.Framebuffer != 0 {
		t.Fatalf("swaps=%d finishes=%d fbo=%d", s.Swaps, s.Dev.Finishes, s.Dev.Framebuffer)
	}

	swapErr := errors.New("surface lost")
	s.SwapErr = swapErr
	err := r.Draw(false)
	if !errors.Is(err, ErrPresentation) || !errors.Is(err, swapErr) {
		t.Fatalf("Draw = %v, want presentation failure wrapping %v", err, swapErr)
	}
	if r.Stats().Frames != 1 {
		t.Errorf("failed frame counted: %d", r.Stats().Frames)
	}
}

func TestGraphicsErrorKeepsRendererUsable(t *testing.T) {
	r, s := setUp(t, 2)
	s.Dev.PendingError = 0x505

	err := r.Draw(true)
	if !errors.Is(err, ErrGraphics) {
		t.Fatalf("Draw = %v, want ErrGraphics", err)
	}
	var glErr *gpu.Error
	if !errors.As(err, &glErr) || glErr.Code != 0x505 {
		t.Fatalf("error does not carry code: %v", err)
	}
	if s.Dev.Finishes != 0 {
		t.Error("Finish called after a graphics error")
	}

	if err := r.Draw(true); err != nil {
		t.Fatalf("retry Draw: %v", err)
	}
	if err := r.TearDown(); err != nil {
		t.Fatalf("TearDown: %v", err)
	}
}

func TestDrawOrderIsStable(t *testing.T) {
	r, s := setUp(t, 3)
	if err := r.Draw(true); err != nil {
		t.Fatal(err)
	}
	first := s.Dev.Draws
	s.Dev.ResetFrame()
	if err := r.Draw(true); err != nil {
		t.Fatal(err)
	}
	if len(first) != len(s.Dev.Draws) {
		t.Fatalf("frame sizes differ: %d vs %d", len(first), len(s.Dev.Draws))
	}
	for i := range first {
		if first[i].Matrices[scene.UniformMVP] != s.Dev.Draws[i].Matrices[scene.UniformMVP] {
			t.Fatalf("draw %d differs between frames", i)
		}
	}
}

func TestDrawUploadsFixedCamera(t *testing.T) {
	r, s := setUp(t, 1)
	if err := r.Draw(true); err != nil {
		t.Fatal(err)
	}
	d := s.Dev.Draws[0]

	view := mgl32.LookAtV(eye, center, up)
	model := CellTransform(1, 0, 0).Mat4()
	if !d.Matrices[scene.UniformMV].ApproxEqual(view.Mul4(model)) {
		t.Errorf("MV = %v", d.Matrices[scene.UniformMV])
	}
	proj := mgl32.Frustum(-2, 2, -1, 1, 1, 3) // 64x32 surface
	if !d.Matrices[scene.UniformMVP].ApproxEqual(proj.Mul4(view).Mul4(model)) {
		t.Errorf("MVP = %v", d.Matrices[scene.UniformMVP])
	}
	if d.Vectors[scene.UniformLight] != lightPos {
		t.Errorf("light = %v", d.Vectors[scene.UniformLight])
	}
	if d.Count != quadVertices {
		t.Errorf("count = %d", d.Count)
	}
}

func TestTearDownTwice(t *testing.T) {
	r, s := setUp(t, 2)
	if err := r.Draw(true); err != nil {
		t.Fatal(err)
	}
	if err := r.TearDown(); err != nil {
		t.Fatalf("TearDown: %v", err)
	}
	ops := len(s.Dev.Ops)
	if err := r.TearDown(); err != nil {
		t.Fatalf("second TearDown: %v", err)
	}
	if len(s.Dev.Ops) != ops {
		t.Errorf("second TearDown issued %d calls", len(s.Dev.Ops)-ops)
	}
	if s.Dev.Live() != 0 || s.Dev.DoubleDeletes != 0 {
		t.Errorf("live=%d doubleDeletes=%d", s.Dev.Live(), s.Dev.DoubleDeletes)
	}
	if s.TearDowns != 1 || s.Up() {
		t.Errorf("surface teardowns=%d up=%v", s.TearDowns, s.Up())
	}
	if err := r.Draw(true); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("Draw after TearDown = %v", err)
	}
}

func TestTearDownOrder(t *testing.T) {
	r, s := setUp(t, 1)
	s.Dev.ResetFrame()
	if err := r.TearDown(); err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, op := range s.Dev.Ops {
		kinds = append(kinds, strings.Fields(op)[0])
	}
	want := []string{"DeleteTexture", "DeleteBuffer", "DeleteBuffer", "DeleteBuffer", "DeleteProgram", "SurfaceTearDown"}
	if !slices.Equal(kinds, want) {
		t.Fatalf("release order = %v, want %v", kinds, want)
	}
	if s.Dev.Live() != 0 || s.Up() {
		t.Errorf("live objects %d, surface up %v", s.Dev.Live(), s.Up())
	}
}

func TestSetUpFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		inject func(*gputest.Surface)
		want   error
	}{
		{"surface", func(s *gputest.Surface) { s.SetUpErr = boom }, boom},
		{"compile", func(s *gputest.Surface) { s.Dev.CompileErr = boom }, ErrCompileLink},
		{"texture", func(s *gputest.Surface) { s.Dev.TextureErr = boom }, ErrResourceAllocation},
		{"mesh", func(s *gputest.Surface) { s.Dev.BufferErr = boom }, ErrResourceAllocation},
		{"size", func(s *gputest.Surface) { s.Height = 0 }, ErrResourceAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := gputest.NewSurface(16, 16)
			tt.inject(s)
			r := New(s, 2)

			err := r.SetUp()
			if !errors.Is(err, tt.want) {
				t.Fatalf("SetUp = %v, want %v", err, tt.want)
			}
			if s.Dev.Live() != 0 {
				t.Errorf("leaked %d objects", s.Dev.Live())
			}
			if s.Up() {
				t.Error("surface still held")
			}
			if err := r.Draw(true); !errors.Is(err, ErrNotSetUp) {
				t.Errorf("Draw after failed SetUp = %v", err)
			}
			if err := r.TearDown(); err != nil {
				t.Errorf("TearDown after failed SetUp = %v", err)
			}
			if s.Dev.DoubleDeletes != 0 {
				t.Errorf("double deletes: %d", s.Dev.DoubleDeletes)
			}
		})
	}
}

func TestSetUpTwiceAndCycle(t *testing.T) {
	r, s := setUp(t, 1)
	if err := r.SetUp(); !errors.Is(err, ErrAlreadySetUp) {
		t.Fatalf("second SetUp = %v", err)
	}
	if err := r.TearDown(); err != nil {
		t.Fatal(err)
	}
	if err := r.SetUp(); err != nil {
		t.Fatalf("SetUp after TearDown: %v", err)
	}
	if err := r.Draw(true); err != nil {
		t.Fatal(err)
	}
	r.TearDown()
	if s.SetUps != 2 || s.Dev.Live() != 0 {
		t.Fatalf("setups=%d live=%d", s.SetUps, s.Dev.Live())
	}
}

func TestInvalidWorkload(t *testing.T) {
	for _, w := range []int{0, -1, MaxWorkload + 1} {
		s := gputest.NewSurface(8, 8)
		if err := New(s, w).SetUp(); !errors.Is(err, ErrInvalidWorkload) {
			t.Errorf("w=%d: SetUp = %v", w, err)
		}
		if s.SetUps != 0 {
			t.Errorf("w=%d: surface acquired for invalid workload", w)
		}
	}
}

func TestSurfaceTearDownErrorIsReturned(t *testing.T) {
	r, s := setUp(t, 1)
	s.TearDownErr = errors.New("display gone")
	if err := r.TearDown(); err == nil {
		t.Fatal("expected surface error")
	}
	if err := r.TearDown(); err != nil {
		t.Fatalf("second TearDown = %v", err)
	}
}

func TestCapture(t *testing.T) {
	s := gputest.NewSurface(4, 2)
	r := New(s, 1)
	if _, err := r.Capture(); !errors.Is(err, ErrNotSetUp) {
		t.Fatalf("Capture before SetUp = %v", err)
	}
	if err := r.SetUp(); err != nil {
		t.Fatal(err)
	}
	defer r.TearDown()
	img, err := r.Capture()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("captured %v", b)
	}
}
