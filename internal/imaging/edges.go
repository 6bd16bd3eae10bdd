package imaging

import (
	"image"
	"math"
)

// EdgeMap detects edges with Sobel gradients, thins them with non-maximum
// suppression and links them by hysteresis between the low and high
// thresholds. Output pixels are 255 on edges, 0 elsewhere.
func EdgeMap(src *image.Gray, low, high float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return dst
	}
	if low > high {
		low, high = high, low
	}

	mag := make([]float64, w*h)
	dir := make([]uint8, w*h) // gradient direction quantized to 4 sectors

	px := func(x, y int) int {
		return int(src.Pix[clamp(y, h-1)*src.Stride+clamp(x, w-1)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1) +
				px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			i := y*w + x
			mag[i] = math.Hypot(float64(gx), float64(gy))
			ang := math.Atan2(float64(gy), float64(gx)) // -pi..pi
			deg := ang * 180 / math.Pi
			if deg < 0 {
				deg += 180
			}
			switch {
			case deg < 22.5 || deg >= 157.5:
				dir[i] = 0 // horizontal gradient
			case deg < 67.5:
				dir[i] = 1 // diagonal /
			case deg < 112.5:
				dir[i] = 2 // vertical gradient
			default:
				dir[i] = 3 // diagonal \
			}
		}
	}

	// Non-maximum suppression along the gradient direction.
	const strong, weak = 255, 128
	marks := make([]uint8, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m < low {
				continue
			}
			var a, b float64
			switch dir[i] {
			case 0:
				a, b = mag[i-1], mag[i+1]
			case 1:
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2:
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if m < a || m < b {
				continue
			}
			if m >= high {
				marks[i] = strong
			} else {
				marks[i] = weak
			}
		}
	}

	// Hysteresis: weak pixels survive only when connected to a strong one.
	stack := make([]int, 0, w)
	for i, m := range marks {
		if m == strong {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		dst.Pix[y*dst.Stride+x] = 255
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if marks[ni] == weak {
					marks[ni] = strong
					stack = append(stack, ni)
				}
			}
		}
	}
	return dst
}
