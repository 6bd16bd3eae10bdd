package imaging

import "image"

// Dilate replaces each pixel with the maximum over a size x size
// rectangular structuring element (borders replicated).
func Dilate(src *image.Gray, size int) *image.Gray {
	return morph(src, size, true)
}

// Erode replaces each pixel with the minimum over a size x size
// rectangular structuring element (borders replicated).
func Erode(src *image.Gray, size int) *image.Gray {
	return morph(src, size, false)
}

// MorphClose dilates then erodes: fills pinholes inside strokes.
func MorphClose(src *image.Gray, size int) *image.Gray {
	return Erode(Dilate(src, size), size)
}

// MorphOpen erodes then dilates: removes isolated speckle.
func MorphOpen(src *image.Gray, size int) *image.Gray {
	return Dilate(Erode(src, size), size)
}

func morph(src *image.Gray, size int, max bool) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if size <= 1 {
		// A 1x1 element is the identity.
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return dst
	}
	radius := size / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := src.Pix[clamp(y-radius, h-1)*src.Stride+clamp(x-radius, w-1)]
			for dy := -radius; dy <= radius; dy++ {
				sy := clamp(y+dy, h-1)
				for dx := -radius; dx <= radius; dx++ {
					v := src.Pix[sy*src.Stride+clamp(x+dx, w-1)]
					if max && v > best || !max && v < best {
						best = v
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = best
		}
	}
	return dst
}
