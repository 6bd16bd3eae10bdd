package imaging

import (
	"image"
	"math"
)

// Rotate rotates the image about its center by angleDeg degrees
// (counterclockwise on screen), sampling with bicubic interpolation.
// Destination pixels that map outside the source replicate the nearest
// border pixel, so no black wedges appear on deskewed scans.
func Rotate(src *image.Gray, angleDeg float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w-1)/2, float64(h-1)/2

	for y := 0; y < h; y++ {
		fy := float64(y) - cy
		for x := 0; x < w; x++ {
			fx := float64(x) - cx
			// Inverse of the forward map [[cos, sin], [-sin, cos]].
			sx := cos*fx - sin*fy + cx
			sy := sin*fx + cos*fy + cy
			dst.Pix[y*dst.Stride+x] = sampleBicubic(src, sx, sy)
		}
	}
	return dst
}

// sampleBicubic evaluates the source at a fractional position using a
// Catmull-Rom kernel over a 4x4 neighborhood with replicated borders.
func sampleBicubic(src *image.Gray, fx, fy float64) uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	var wx, wy [4]float64
	for i := 0; i < 4; i++ {
		wx[i] = cubicWeight(float64(i-1) - tx)
		wy[i] = cubicWeight(float64(i-1) - ty)
	}

	var sum float64
	for j := 0; j < 4; j++ {
		sy := clamp(y0+j-1, h-1)
		row := src.Pix[sy*src.Stride:]
		var line float64
		for i := 0; i < 4; i++ {
			sx := clamp(x0+i-1, w-1)
			line += wx[i] * float64(row[sx])
		}
		sum += wy[j] * line
	}
	if sum < 0 {
		return 0
	}
	if sum > 255 {
		return 255
	}
	return uint8(sum + 0.5)
}

// cubicWeight is the Catmull-Rom kernel (a = -0.5).
func cubicWeight(t float64) float64 {
	const a = -0.5
	t = math.Abs(t)
	switch {
	case t <= 1:
		return (a+2)*t*t*t - (a+3)*t*t + 1
	case t < 2:
		return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
	}
	return 0
}
