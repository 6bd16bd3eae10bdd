package imaging

import (
	"image"
	"math"
)

// BilateralFilter smooths scan speckle while preserving stroke edges.
// diameter is the pixel neighborhood width, sigmaColor controls how far
// apart intensities may be and still mix, sigmaSpace weights neighbors by
// distance. Borders are replicated.
func BilateralFilter(src *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	if diameter < 1 {
		diameter = 1
	}
	if diameter%2 == 0 {
		diameter++
	}
	radius := diameter / 2
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// Spatial weights depend only on the offset; range weights only on the
	// intensity difference. Both are precomputed.
	spatial := make([]float64, diameter*diameter)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*diameter+(dx+radius)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	var rangeW [256]float64
	for d := 0; d < 256; d++ {
		rangeW[d] = math.Exp(-float64(d*d) / (2 * sigmaColor * sigmaColor))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := src.Pix[y*src.Stride+x]
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				sy := clamp(y+dy, h-1)
				for dx := -radius; dx <= radius; dx++ {
					sx := clamp(x+dx, w-1)
					v := src.Pix[sy*src.Stride+sx]
					diff := int(v) - int(center)
					if diff < 0 {
						diff = -diff
					}
					wgt := spatial[(dy+radius)*diameter+(dx+radius)] * rangeW[diff]
					sum += wgt * float64(v)
					norm += wgt
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum/norm + 0.5)
		}
	}
	return dst
}
