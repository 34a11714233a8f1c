package capture

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// SyntheticFrames builds n solid-colour frames labelled with their index,
// used by MockCamera when no webcam is present. The caller owns the Mats.
func SyntheticFrames(width, height, n int) []*gocv.Mat {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		shade := float64(40 + (i*20)%160)
		mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(shade, shade/2, 60, 0), height, width, gocv.MatTypeCV8UC3)
		gocv.PutText(&mat, fmt.Sprintf("mock camera %d", i), image.Pt(20, 40),
			gocv.FontHersheySimplex, 1.0, color.RGBA{R: 255, G: 255, B: 255, A: 0}, 2)
		frames = append(frames, &mat)
	}
	return frames
}
