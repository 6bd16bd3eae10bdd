package imaging

import (
	"image"
	"math"
)

// AdaptiveThresholdGaussian binarizes with a per-pixel threshold: the
// Gaussian-weighted mean of the blockSize neighborhood minus c. Pixels above
// the local threshold become 255, the rest 0. A local rather than global
// cutoff keeps text legible under non-uniform scan illumination.
func AdaptiveThresholdGaussian(src *image.Gray, blockSize int, c float64) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	mean := gaussianBlur(src, blockSize)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x
			if float64(src.Pix[i]) > float64(mean[y*w+x])-c {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// gaussianBlur computes a separable Gaussian-weighted local mean. Sigma is
// derived from the kernel size the way adaptive thresholding conventionally
// does it.
func gaussianBlur(src *image.Gray, size int) []float64 {
	radius := size / 2
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8

	kernel := make([]float64, size)
	var ksum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		ksum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= ksum
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	tmp := make([]float64, w*h)
	out := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for k := -radius; k <= radius; k++ {
				s += kernel[k+radius] * float64(src.Pix[y*src.Stride+clamp(x+k, w-1)])
			}
			tmp[y*w+x] = s
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for k := -radius; k <= radius; k++ {
				s += kernel[k+radius] * tmp[clamp(y+k, h-1)*w+x]
			}
			out[y*w+x] = s
		}
	}
	return out
}
