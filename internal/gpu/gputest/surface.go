package gputest

import "glbench/internal/gpu"

// Surface is a fake rendering surface.
type Surface struct {
	Dev           *Device
	Width, Height int
	FBO           uint32

	SetUpErr    error
	TearDownErr error
	SwapErr     error

	SetUps    int
	TearDowns int
	Swaps     int

	up bool
}

// NewSurface returns a surface of the given size with offscreen FBO 7 and
// a fresh recording device.
func NewSurface(width, height int) *Surface {
	return &Surface{Dev: NewDevice(), Width: width, Height: height, FBO: 7}
}

func (s *Surface) SetUp() error {
	s.SetUps++
	if s.SetUpErr != nil {
		return s.SetUpErr
	}
	s.up = true
	return nil
}

func (s *Surface) TearDown() error {
	if !s.up {
		return nil
	}
	s.TearDowns++
	s.up = false
	s.Dev.op("SurfaceTearDown")
	return s.TearDownErr
}

func (s *Surface) Size() (int, int) {
	return s.Width, s.Height
}

func (s *Surface) Framebuffer() uint32 {
	return s.FBO
}

func (s *Surface) SwapBuffers() error {
	s.Swaps++
	return s.SwapErr
}

// Up reports whether the surface is currently acquired.
func (s *Surface) Up() bool {
	return s.up
}

func (s *Surface) Device() gpu.Device {
	return s.Dev
}
