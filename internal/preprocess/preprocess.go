// Package preprocess conditions scanned page images before recognition.
// The stage order is fixed regardless of which corrections are enabled,
// because later stages assume earlier ones already ran.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/quillscan/quillscan/internal/imaging"
)

// Tuning constants for the corrective transforms.
const (
	denoiseDiameter   = 9
	denoiseSigmaColor = 75
	denoiseSigmaSpace = 75

	claheClipLimit = 2.0
	claheTiles     = 8

	edgeLowThreshold  = 50
	edgeHighThreshold = 150

	houghRhoRes    = 1
	houghVotes     = 100
	maxSkewLines   = 10
	maxSkewAngle   = 45.0 // degrees; steeper detections are not page skew
	minRotation    = 0.5  // degrees; below this the page counts as aligned
	binarizeBlock  = 11
	binarizeOffset = 2
	morphElement   = 1
)

// Options selects which corrective transforms run.
type Options struct {
	Deskew          bool
	Denoise         bool
	EnhanceContrast bool
}

// Pipeline applies the configured transforms to page images. It is safe for
// concurrent use; all state is read-only after construction.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New builds a pipeline. A nil logger falls back to slog.Default.
func New(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Apply runs the full stage sequence and returns a binarized image ready
// for recognition. It never fails: skew estimation errors degrade to "no
// rotation applied".
func (p *Pipeline) Apply(src image.Image) *image.Gray {
	gray := imaging.Grayscale(src)

	if p.opts.Denoise {
		gray = imaging.BilateralFilter(gray, denoiseDiameter, denoiseSigmaColor, denoiseSigmaSpace)
	}
	if p.opts.EnhanceContrast {
		gray = imaging.CLAHE(gray, claheClipLimit, claheTiles, claheTiles)
	}
	if p.opts.Deskew {
		gray = p.deskew(gray)
	}

	bin := imaging.AdaptiveThresholdGaussian(gray, binarizeBlock, binarizeOffset)
	bin = imaging.MorphClose(bin, morphElement)
	bin = imaging.MorphOpen(bin, morphElement)
	return bin
}

// deskew straightens the page when a significant skew is detected. Any
// failure inside estimation is recoverable: the page passes through
// unrotated.
func (p *Pipeline) deskew(gray *image.Gray) *image.Gray {
	angle, ok, err := p.estimateSkew(gray)
	if err != nil {
		p.logger.Debug("skew estimation failed, leaving page unrotated", "error", err)
		return gray
	}
	if !ok {
		return gray
	}
	p.logger.Debug("correcting page skew", "degrees", angle)
	return imaging.Rotate(gray, angle)
}

// estimateSkew detects straight lines and derives the page skew as the
// median of their deviations from horizontal. ok is false when no rotation
// is warranted: no usable lines, or a skew too small to matter.
func (p *Pipeline) estimateSkew(gray *image.Gray) (angle float64, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			angle, ok = 0, false
			err = fmt.Errorf("skew estimation panic: %v", r)
		}
	}()

	edges := imaging.EdgeMap(gray, edgeLowThreshold, edgeHighThreshold)
	lines := imaging.HoughLines(edges, houghRhoRes, math.Pi/180, houghVotes)
	if len(lines) == 0 {
		return 0, false, nil
	}
	if len(lines) > maxSkewLines {
		lines = lines[:maxSkewLines]
	}

	angles := make([]float64, 0, len(lines))
	for _, ln := range lines {
		// Theta is the line normal's angle; the line itself deviates from
		// horizontal by theta - 90 degrees.
		dev := ln.Theta*180/math.Pi - 90
		if math.Abs(dev) < maxSkewAngle {
			angles = append(angles, dev)
		}
	}
	if len(angles) == 0 {
		return 0, false, nil
	}

	// Median rather than mean: one spurious diagonal must not tilt the page.
	sort.Float64s(angles)
	mid := len(angles) / 2
	skew := angles[mid]
	if len(angles)%2 == 0 {
		skew = (angles[mid-1] + angles[mid]) / 2
	}

	if math.Abs(skew) <= minRotation {
		return 0, false, nil
	}
	return skew, true, nil
}
