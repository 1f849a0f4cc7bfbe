package strategy

import (
	"BollScan/internal/calculator"
	"BollScan/internal/model"
)

// Scan is the forward-looking variant of Simulate: it reports whether
// the symbol is currently positioned for a prospective entry, without
// requiring a completed exit. It returns nil when the symbol does not
// qualify, which is the common case.
//
// A symbol qualifies when its live price sits at or through the
// current lower band. The breakout-required policy additionally
// demands an upper-band breakout in the history with a reversion
// still in progress: since the last breakout, either no breakdown
// happened yet, or the latest breakdown has not been followed by a
// close back above the mid-band. Under first-breakdown the price
// condition alone is sufficient.
func Scan(req Request) (*model.SignalRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.passesConstraint() {
		return nil, nil
	}

	// The forward scan always looks at the whole series.
	frames := calculator.Frames(req.Bars, req.Mode, req.Window)
	if len(frames) == 0 {
		return nil, nil
	}

	last := frames[len(frames)-1]
	if !last.HasBand {
		return nil, nil
	}
	if req.Ref.Price > last.Lower {
		return nil, nil
	}

	if req.Policy == model.EntryBreakoutRequired {
		lastUpper := -1
		for i, f := range frames {
			if f.BreakUpper {
				lastUpper = i
			}
		}
		if lastUpper < 0 {
			return nil, nil // no qualifying history
		}
		if !reversalInProgress(frames, lastUpper) {
			return nil, nil
		}
	}

	return &model.SignalRow{
		Symbol:       req.Symbol,
		Name:         req.Name,
		MarketCap:    NormalizeCap(req.Ref.MarketCap),
		PERatio:      req.Ref.PERatio,
		AsOfDate:     last.Date,
		TriggerPrice: model.Round2(last.Lower),
	}, nil
}

// reversalInProgress checks the frames after the last breakout: with no
// breakdown yet the setup is still forming, and with one the trade is
// still open as long as no later close got back above the mid-band.
func reversalInProgress(frames []model.BandFrame, lastUpper int) bool {
	lastLower := -1
	for i := lastUpper + 1; i < len(frames); i++ {
		if frames[i].BreakLower {
			lastLower = i
		}
	}
	if lastLower < 0 {
		return true
	}
	for i := lastLower + 1; i < len(frames); i++ {
		f := frames[i]
		if f.HasBand && f.Close > f.MA {
			return false // reversion already closed out
		}
	}
	return true
}
