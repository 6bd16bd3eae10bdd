// Package imaging implements the pixel-level primitives consumed by the
// preprocessing pipeline: grayscale conversion, edge-preserving smoothing,
// local contrast equalization, edge and line detection, affine rotation,
// adaptive thresholding and morphological filtering. Every function is pure:
// image in, new image out.
package imaging

import (
	"image"
	"image/color"
)

// Grayscale converts any image to 8-bit grayscale using the standard
// luminance weights. Inputs that are already *image.Gray are copied.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if g, ok := src.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()],
				g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+(b.Min.X-g.Rect.Min.X):])
		}
		return dst
	}

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			si := rgba.PixOffset(b.Min.X, b.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < b.Dx(); x++ {
				r := uint32(rgba.Pix[si])
				g := uint32(rgba.Pix[si+1])
				bl := uint32(rgba.Pix[si+2])
				// 0.299 R + 0.587 G + 0.114 B in fixed point.
				dst.Pix[di] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 16)
				si += 4
				di++
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			dst.SetGray(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}

// clamp limits v to [0, max].
func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
