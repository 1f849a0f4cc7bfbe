package calculator

import "BollScan/internal/model"

// MarkBreaks flags, in place, every frame whose high reached the upper
// band or whose low reached the lower band. Frames without a band never
// break in either direction — the comparison against an undefined band
// is false, not an error.
func MarkBreaks(frames []model.BandFrame) {
	for i := range frames {
		f := &frames[i]
		if !f.HasBand {
			f.BreakUpper = false
			f.BreakLower = false
			continue
		}
		f.BreakUpper = f.High >= f.Upper
		f.BreakLower = f.Low <= f.Lower
	}
}

// Frames is the one-call path from raw daily bars to break-flagged band
// frames, the input every strategy operation starts from.
func Frames(bars []model.DailyBar, mode model.BucketMode, window int) []model.BandFrame {
	frames := ComputeBands(Aggregate(bars, mode), window)
	MarkBreaks(frames)
	return frames
}
