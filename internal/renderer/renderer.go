// Package renderer implements the full-pipeline benchmark renderer: a grid
// of textured, lit quads whose draw-call count grows as 4^(workload-1).
//
// A Renderer moves through Created -> SetUp -> Drawing -> TornDown. All
// methods must run on the thread that owns the surface's GL context.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"glbench/internal/gpu"
	"glbench/internal/matrix"
	"glbench/internal/profiling"
	"glbench/internal/scene"
	"glbench/internal/snapshot"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNotSetUp           = errors.New("renderer not set up")
	ErrAlreadySetUp       = errors.New("renderer already set up")
	ErrCompileLink        = errors.New("shader program build failed")
	ErrResourceAllocation = errors.New("gpu resource allocation failed")
	ErrGraphics           = errors.New("graphics error")
	ErrPresentation       = errors.New("frame presentation failed")
	ErrInvalidWorkload    = errors.New("invalid workload")
)

// Surface is the rendering surface collaborator: it owns the display,
// context, window surface and offscreen framebuffer.
type Surface interface {
	SetUp() error
	TearDown() error
	Size() (width, height int)
	// Framebuffer returns the offscreen target.
	Framebuffer() uint32
	SwapBuffers() error
	// Device returns the context's device; valid between SetUp and TearDown.
	Device() gpu.Device
}

// Fixed camera and light.
var (
	eye      = mgl32.Vec3{0, 0, 2}
	center   = mgl32.Vec3{0, 0, 0}
	up       = mgl32.Vec3{0, 1, 0}
	lightPos = mgl32.Vec3{0, 0, 1}
)

const (
	nearPlane = 1.0
	farPlane  = 3.0
)

type state int

const (
	stateCreated state = iota
	stateReady
	stateTornDown
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateReady:
		return "ready"
	case stateTornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// release undoes one acquisition.
type release struct {
	name string
	fn   func() error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger routes renderer diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTextureSeed fixes the noise texture contents.
func WithTextureSeed(seed uint64) Option {
	return func(r *Renderer) { r.seed = seed }
}

// Stats describes the scene and how many frames have been drawn.
type Stats struct {
	Workload  int
	Grid      int
	DrawCalls int
	Frames    int
}

// Renderer draws the full-pipeline benchmark scene.
type Renderer struct {
	surface  Surface
	workload int
	log      *slog.Logger
	seed     uint64

	state    state
	releases []release

	dev        gpu.Device
	program    *scene.Program
	model      *matrix.Matrix
	view       *matrix.Matrix
	projection *matrix.Matrix
	texture    uint32
	arena      *scene.Arena
	root       *scene.Node
	pass       *scene.Pass

	frames    int
	lastCalls int
}

// New records the surface and workload. Nothing is allocated until SetUp.
func New(surface Surface, workload int, opts ...Option) *Renderer {
	r := &Renderer{
		surface:  surface,
		workload: workload,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed:     1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) acquired(name string, fn func() error) {
	r.releases = append(r.releases, release{name: name, fn: fn})
}

// unwind runs the pending releases in reverse acquisition order.
func (r *Renderer) unwind() error {
	var errs []error
	for i := len(r.releases) - 1; i >= 0; i-- {
		rel := r.releases[i]
		if err := rel.fn(); err != nil {
			r.log.Warn("release failed", "resource", rel.name, "err", err)
			errs = append(errs, fmt.Errorf("release %s: %w", rel.name, err))
		}
	}
	r.releases = nil
	return errors.Join(errs...)
}

// SetUp acquires the surface, builds the program, matrices, texture, mesh
// and scene graph. On failure everything acquired so far is released and
// the renderer can be set up again.
func (r *Renderer) SetUp() error {
	if r.state == stateReady {
		return ErrAlreadySetUp
	}
	if r.workload < 1 || r.workload > MaxWorkload {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWorkload, r.workload, MaxWorkload)
	}
	defer profiling.Track("renderer.SetUp")()

	if err := r.setUp(); err != nil {
		if uerr := r.unwind(); uerr != nil {
			err = errors.Join(err, uerr)
		}
		r.clear()
		r.log.Error("set up failed", "workload", r.workload, "err", err)
		return err
	}
	r.state = stateReady
	r.frames = 0
	r.log.Info("renderer set up",
		"workload", r.workload,
		"grid", GridSize(r.workload),
		"draw_calls", DrawCalls(r.workload))
	return nil
}

func (r *Renderer) setUp() error {
	if err := r.surface.SetUp(); err != nil {
		return fmt.Errorf("surface set up: %w", err)
	}
	r.acquired("surface", r.surface.TearDown)
	r.dev = r.surface.Device()

	id, err := r.dev.CreateProgram(vertexShader, fragmentShader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompileLink, err)
	}
	r.acquired("program", func() error {
		r.dev.DeleteProgram(id)
		return nil
	})
	r.program = scene.NewProgram(r.dev, id)

	width, height := r.surface.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", ErrResourceAllocation, width, height)
	}
	ratio := float32(width) / float32(height)
	r.model = matrix.New()
	r.view = matrix.NewLookAt(eye, center, up)
	r.projection = matrix.NewFrustum(-ratio, ratio, -1, 1, nearPlane, farPlane)

	tex, err := r.dev.CreateTexture(width, height, RandomTexture(width, height, r.seed))
	if err != nil {
		return fmt.Errorf("%w: texture: %w", ErrResourceAllocation, err)
	}
	r.texture = tex
	r.acquired("texture", func() error {
		r.releaseTexture()
		return nil
	})

	mesh, err := scene.NewMesh(r.dev, quadPositions, quadNormals, quadTexCoords, r.texture)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResourceAllocation, err)
	}
	r.arena = &scene.Arena{}
	meshID := r.arena.Add(mesh)
	arena := r.arena
	r.acquired("meshes", func() error {
		arena.Release(r.dev)
		return nil
	})

	r.root, err = BuildScene(r.workload, meshID)
	if err != nil {
		return err
	}
	r.pass = &scene.Pass{
		Device:     r.dev,
		Arena:      r.arena,
		Program:    r.program,
		View:       r.view,
		Projection: r.projection,
		LightPos:   lightPos,
	}
	return nil
}

func (r *Renderer) releaseTexture() {
	if r.texture != 0 {
		r.dev.DeleteTexture(r.texture)
		r.texture = 0
	}
}

// clear drops every owned reference.
func (r *Renderer) clear() {
	r.pass = nil
	r.root = nil
	r.arena = nil
	r.program = nil
	r.model = nil
	r.view = nil
	r.projection = nil
	r.dev = nil
}

// Draw renders one frame. Offscreen frames go to the surface framebuffer
// and block until the GPU has finished; onscreen frames are presented and
// the presentation result is returned. Failures are logged and returned;
// the renderer stays usable for another frame or TearDown.
func (r *Renderer) Draw(offscreen bool) error {
	if r.state != stateReady {
		return fmt.Errorf("%w (state %s)", ErrNotSetUp, r.state)
	}
	defer profiling.Track("renderer.Draw")()

	var fbo uint32
	if offscreen {
		fbo = r.surface.Framebuffer()
	}
	r.dev.BindFramebuffer(fbo)
	r.dev.Clear(0, 0, 0, 0)
	r.dev.EnableCullFace()
	r.dev.EnableDepthTest()

	r.model.Identity()
	r.lastCalls = r.pass.Draw(r.root, r.model)

	if code := r.dev.Error(); code != 0 {
		err := fmt.Errorf("%w: %w", ErrGraphics, &gpu.Error{Code: code})
		r.log.Error("draw failed", "offscreen", offscreen, "err", err)
		return err
	}

	if offscreen {
		func() {
			defer profiling.Track("renderer.Finish")()
			r.dev.Finish()
		}()
		r.frames++
		return nil
	}

	if err := r.surface.SwapBuffers(); err != nil {
		err = fmt.Errorf("%w: %w", ErrPresentation, err)
		r.log.Error("swap failed", "err", err)
		return err
	}
	r.frames++
	return nil
}

// Capture reads back the offscreen framebuffer as an image.
func (r *Renderer) Capture() (*image.RGBA, error) {
	if r.state != stateReady {
		return nil, ErrNotSetUp
	}
	r.dev.BindFramebuffer(r.surface.Framebuffer())
	width, height := r.surface.Size()
	return snapshot.Capture(r.dev, width, height), nil
}

// TearDown releases the texture first, then the rest in reverse
// acquisition order: mesh buffers, program, and last the surface, since GL
// objects cannot be deleted once the context is gone. Matrices and the
// scene graph are dropped afterwards. It is a no-op when nothing is held,
// so it is safe to call twice or after a failed SetUp.
func (r *Renderer) TearDown() error {
	if r.state != stateReady && len(r.releases) == 0 {
		return nil
	}
	defer profiling.Track("renderer.TearDown")()

	r.releaseTexture()
	err := r.unwind()
	r.clear()
	r.state = stateTornDown
	r.log.Info("renderer torn down", "frames", r.frames)
	return err
}

// Workload returns the workload the renderer was created with.
func (r *Renderer) Workload() int {
	return r.workload
}

// Stats reports the scene dimensions and frame count.
func (r *Renderer) Stats() Stats {
	return Stats{
		Workload:  r.workload,
		Grid:      GridSize(r.workload),
		DrawCalls: r.lastCalls,
		Frames:    r.frames,
	}
}
