package sequencer

import (
	"math"

	"gonum.org/v1/gonum/stat"

	pimage "stria/internal/image"
)

// Thread weight calibration constants.
const (
	// MeaningfulThreshold excludes background pixels from the intensity average.
	MeaningfulThreshold = 10
	// FallbackIntensity is used when no pixel exceeds MeaningfulThreshold.
	FallbackIntensity = 128
	// ReferenceLines is the line budget at which the base weight is used unscaled.
	ReferenceLines = 3000

	baseWeightFactor = 0.2
	MinThreadWeight  = 3
	MaxThreadWeight  = 40
)

// ThreadWeight derives the darkness one line subtracts per pixel from the
// target's average meaningful intensity and the line budget. Darker targets
// and smaller budgets yield heavier lines.
func ThreadWeight(target *pimage.DarknessMap, maxLines int) float64 {
	meaningful := make([]float64, 0, len(target.Pix))
	for _, v := range target.Pix {
		if v > MeaningfulThreshold {
			meaningful = append(meaningful, v)
		}
	}

	avg := float64(FallbackIntensity)
	if len(meaningful) > 0 {
		avg = stat.Mean(meaningful, nil)
	}
	return WeightFor(avg, maxLines)
}

// WeightFor applies the calibration formula to a known average intensity.
func WeightFor(avgIntensity float64, maxLines int) float64 {
	base := avgIntensity * baseWeightFactor
	lineFactor := math.Sqrt(float64(ReferenceLines) / float64(max(maxLines, 1)))
	return math.Min(math.Max(base*lineFactor, MinThreadWeight), MaxThreadWeight)
}
