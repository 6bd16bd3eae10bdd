package imaging

import (
	"image"
	"math"
	"sort"
)

// PolarLine is a line in normal form: rho = x*cos(theta) + y*sin(theta),
// with theta in [0, pi) radians. Votes is the accumulator count.
type PolarLine struct {
	Rho   float64
	Theta float64
	Votes int
}

// HoughLines runs the standard Hough transform over a binary edge map and
// returns every line whose accumulator cell reached threshold, strongest
// first. rhoRes is in pixels, thetaRes in radians.
func HoughLines(edges *image.Gray, rhoRes, thetaRes float64, threshold int) []PolarLine {
	w, h := edges.Rect.Dx(), edges.Rect.Dy()
	if w == 0 || h == 0 || rhoRes <= 0 || thetaRes <= 0 || threshold < 1 {
		return nil
	}

	numTheta := int(math.Pi/thetaRes + 0.5)
	if numTheta < 1 {
		numTheta = 1
	}
	maxRho := math.Hypot(float64(w), float64(h))
	numRho := 2*int(maxRho/rhoRes+0.5) + 1
	rhoOff := numRho / 2

	sins := make([]float64, numTheta)
	coss := make([]float64, numTheta)
	for t := 0; t < numTheta; t++ {
		theta := float64(t) * thetaRes
		sins[t] = math.Sin(theta)
		coss[t] = math.Cos(theta)
	}

	acc := make([]int32, numTheta*numRho)
	for y := 0; y < h; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			for t := 0; t < numTheta; t++ {
				rho := float64(x)*coss[t] + float64(y)*sins[t]
				r := int(rho/rhoRes+0.5) + rhoOff
				if r >= 0 && r < numRho {
					acc[t*numRho+r]++
				}
			}
		}
	}

	var lines []PolarLine
	for t := 0; t < numTheta; t++ {
		for r := 0; r < numRho; r++ {
			votes := int(acc[t*numRho+r])
			if votes >= threshold {
				lines = append(lines, PolarLine{
					Rho:   float64(r-rhoOff) * rhoRes,
					Theta: float64(t) * thetaRes,
					Votes: votes,
				})
			}
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Votes > lines[j].Votes })
	return lines
}
