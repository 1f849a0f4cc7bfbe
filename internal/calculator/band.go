package calculator

import (
	"math"

	"BollScan/internal/model"
)

// BandMultiplier is the envelope width in standard deviations.
const BandMultiplier = 2.0

// ComputeBands derives the Bollinger envelope over the closing prices
// of a period series. MA is the trailing mean of `window` closes and
// Std the sample standard deviation (n-1 denominator); both are
// undefined for the first window-1 periods, flagged via HasBand. A
// series shorter than the window simply never gets a band.
func ComputeBands(periods []model.PeriodBar, window int) []model.BandFrame {
	frames := make([]model.BandFrame, len(periods))
	for i, p := range periods {
		frames[i].PeriodBar = p
	}
	// Sample std needs at least two observations.
	if window < 2 {
		return frames
	}

	for i := window - 1; i < len(periods); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += periods[j].Close
		}
		ma := sum / float64(window)

		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := periods[j].Close - ma
			ss += d * d
		}
		std := math.Sqrt(ss / float64(window-1))

		frames[i].MA = ma
		frames[i].Std = std
		frames[i].Upper = ma + BandMultiplier*std
		frames[i].Lower = ma - BandMultiplier*std
		frames[i].HasBand = true
	}
	return frames
}
