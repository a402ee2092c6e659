// Package surface provides the window, GL context and offscreen
// framebuffer the renderer draws into.
package surface

import (
	"errors"
	"fmt"
	"log/slog"

	"glbench/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrClosed is returned by SwapBuffers once the user has closed the window.
var ErrClosed = errors.New("window closed")

// Options configures the window.
type Options struct {
	Width  int
	Height int
	Title  string
	// VSync ties onscreen frames to the display refresh.
	VSync bool
	// Visible shows the window; offscreen runs can keep it hidden.
	Visible bool
	Logger  *slog.Logger
}

// Window is a glfw window with an OpenGL 4.1 core context and an offscreen
// framebuffer of the same size.
type Window struct {
	opts Options

	win    *glfw.Window
	dev    *gpu.GL
	width  int
	height int

	fbo     uint32
	colorRB uint32
	depthRB uint32
}

// New records the options. Nothing is created until SetUp.
func New(opts Options) *Window {
	if opts.Title == "" {
		opts.Title = "glbench"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Window{opts: opts}
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// SetUp creates the window, makes its context current on the calling
// thread and allocates the offscreen framebuffer.
func (w *Window) SetUp() error {
	if w.win != nil {
		return nil
	}
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, boolHint(w.opts.Visible))

	win, err := glfw.CreateWindow(w.opts.Width, w.opts.Height, w.opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return fmt.Errorf("gl init: %w", err)
	}

	if w.opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w.win = win
	w.width, w.height = win.GetFramebufferSize()
	w.dev = gpu.NewGL()

	if err := w.createFramebuffer(); err != nil {
		w.TearDown()
		return err
	}

	w.opts.Logger.Info("surface ready",
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"width", w.width,
		"height", w.height)
	return nil
}

func (w *Window) createFramebuffer() error {
	gl.GenFramebuffers(1, &w.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, w.fbo)

	gl.GenRenderbuffers(1, &w.colorRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, w.colorRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, int32(w.width), int32(w.height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, w.colorRB)

	gl.GenRenderbuffers(1, &w.depthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, w.depthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(w.width), int32(w.height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, w.depthRB)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("offscreen framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// TearDown releases the framebuffer, the context and the window.
func (w *Window) TearDown() error {
	if w.win == nil {
		return nil
	}
	if w.fbo != 0 {
		gl.DeleteFramebuffers(1, &w.fbo)
		w.fbo = 0
	}
	if w.colorRB != 0 {
		gl.DeleteRenderbuffers(1, &w.colorRB)
		w.colorRB = 0
	}
	if w.depthRB != 0 {
		gl.DeleteRenderbuffers(1, &w.depthRB)
		w.depthRB = 0
	}
	if w.dev != nil {
		w.dev.Close()
		w.dev = nil
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
	return nil
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Framebuffer returns the offscreen framebuffer object.
func (w *Window) Framebuffer() uint32 {
	return w.fbo
}

// SwapBuffers presents the back buffer and pumps window events.
func (w *Window) SwapBuffers() error {
	if w.win == nil {
		return errors.New("surface not set up")
	}
	w.win.SwapBuffers()
	glfw.PollEvents()
	if w.win.ShouldClose() {
		return ErrClosed
	}
	return nil
}

// Device returns the GL device for the window's context.
func (w *Window) Device() gpu.Device {
	if w.dev == nil {
		return nil
	}
	return w.dev
}
