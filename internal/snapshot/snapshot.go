// Package snapshot reads back a rendered frame and writes it as a BMP.
package snapshot

import (
	"fmt"
	"image"
	"io"
	"os"

	"glbench/internal/gpu"

	"golang.org/x/image/bmp"
)

// Capture reads width x height pixels from the bound framebuffer. GL rows
// start at the bottom, so they are flipped into image order.
func Capture(dev gpu.Device, width, height int) *image.RGBA {
	pix := dev.ReadPixels(0, 0, width, height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	for y := 0; y < height; y++ {
		src := pix[(height-1-y)*stride : (height-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img
}

// Encode writes img as BMP.
func Encode(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// Save writes img to path as BMP.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return f.Close()
}
