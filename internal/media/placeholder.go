package media

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
)

// WritePlaceholder writes a flat gray PNG used as the only video frame.
func WritePlaceholder(path string, width, height int, gray uint8) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("placeholder size must be positive, got %dx%d", width, height)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create placeholder directory: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: gray, G: gray, B: gray, A: 0xff}}, image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create placeholder: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode placeholder: %w", err)
	}
	return f.Close()
}
