package strategy

import (
	"fmt"
	"time"

	"BollScan/internal/calculator"
	"BollScan/internal/model"
)

// Gate admits trade dates against the benchmark index series.
type Gate interface {
	Admit(date time.Time, min, max float64) bool
	Value(date time.Time) (float64, bool)
}

// Stop-loss exit used only under the first-breakdown entry policy:
// after the grace period a close-enough drop below the buy price exits
// the position even without a band-level sell signal.
const (
	stopLossGraceDays = 80
	stopLossRatio     = 0.90
)

// Request carries everything one symbol's simulation or scan needs.
// Bars must be the full sorted daily series; PeriodStart/PeriodEnd
// bound the backtest window on period dates (zero means unbounded).
type Request struct {
	Symbol      string
	Name        string
	Bars        []model.DailyBar
	Mode        model.BucketMode
	SellRef     model.SellReference
	Policy      model.EntryPolicy
	Window      int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Constraint  model.Constraint
	Ref         model.RefRow
	HasRef      bool
}

// Validate rejects malformed requests. This is the only error category
// the engine surfaces; thin data, missing reference rows and gate
// misses all express themselves as empty results.
func (req *Request) Validate() error {
	if req.Window <= 0 {
		return fmt.Errorf("period window must be positive, got %d", req.Window)
	}
	if !req.PeriodStart.IsZero() && !req.PeriodEnd.IsZero() && req.PeriodStart.After(req.PeriodEnd) {
		return fmt.Errorf("period range inverted: %s > %s",
			req.PeriodStart.Format("2006-01-02"), req.PeriodEnd.Format("2006-01-02"))
	}
	if err := req.Constraint.Validate(); err != nil {
		return fmt.Errorf("constraint: %w", err)
	}
	return nil
}

// Simulate runs the full backtest for one symbol and returns its
// completed round trips. An empty result is the normal outcome for a
// symbol whose price action never produced the pattern.
func Simulate(req Request, gate Gate) ([]model.TradeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.passesConstraint() {
		return nil, nil
	}

	frames := calculator.Frames(req.Bars, req.Mode, req.Window)
	sub := filterByDate(frames, req.PeriodStart, req.PeriodEnd)
	if len(sub) == 0 {
		return nil, nil
	}

	if req.Policy == model.EntryFirstBreakdown {
		return simulateFirstBreakdown(req, sub, gate), nil
	}

	var records []model.TradeRecord
	for _, pair := range MatchBreakoutReversal(sub) {
		rec, reason := evaluatePair(req, sub, pair, gate)
		if reason != RejectNone {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// evaluatePair tries to turn one breakout/breakdown pair into a trade.
func evaluatePair(req Request, sub []model.BandFrame, pair Pair, gate Gate) (model.TradeRecord, RejectReason) {
	buyTarget := pair.Breakdown.Lower
	buyBar, ok := ResolveBuy(req.Bars, model.Day(pair.Breakout.Date), model.Day(pair.Breakdown.Date), buyTarget)
	if !ok {
		return model.TradeRecord{}, RejectBuyNotPrinted
	}
	if !gate.Admit(buyBar.Date, req.Constraint.BenchmarkMin, req.Constraint.BenchmarkMax) {
		return model.TradeRecord{}, RejectBenchmarkBuy
	}

	exit, ok := findExitFrame(sub, pair.Breakdown.Date, req.SellRef)
	if !ok {
		return model.TradeRecord{}, RejectNoExitSignal
	}
	sellTarget := sellReferencePrice(exit, req.SellRef)
	sellBar, ok := ResolveSell(req.Bars, model.Day(buyBar.Date), model.Day(exit.Date), req.Mode.SpanDays(), sellTarget)
	if !ok {
		return model.TradeRecord{}, RejectSellNotPrinted
	}
	if !gate.Admit(sellBar.Date, req.Constraint.BenchmarkMin, req.Constraint.BenchmarkMax) {
		return model.TradeRecord{}, RejectBenchmarkSell
	}

	return assembleRecord(req, gate, buyTarget, sellTarget, buyBar.Date, sellBar.Date), RejectNone
}

// simulateFirstBreakdown opens against the first breakdown whose buy
// resolves and passes the gate, then never looks at later breakdowns:
// this policy trades a symbol at most once. Its exit may additionally
// fall back to the stop-loss rule.
func simulateFirstBreakdown(req Request, sub []model.BandFrame, gate Gate) []model.TradeRecord {
	for _, f := range sub {
		if !f.BreakLower {
			continue
		}
		buyTarget := f.Lower
		buyBar, ok := ResolveBuy(req.Bars, time.Time{}, model.Day(f.Date), buyTarget)
		if !ok {
			continue
		}
		if !gate.Admit(buyBar.Date, req.Constraint.BenchmarkMin, req.Constraint.BenchmarkMax) {
			continue
		}

		// Position opened; succeed or not, the scan stops here.
		if exit, ok := findExitFrame(sub, f.Date, req.SellRef); ok {
			sellTarget := sellReferencePrice(exit, req.SellRef)
			sellBar, ok := ResolveSell(req.Bars, model.Day(buyBar.Date), model.Day(exit.Date), req.Mode.SpanDays(), sellTarget)
			if ok && gate.Admit(sellBar.Date, req.Constraint.BenchmarkMin, req.Constraint.BenchmarkMax) {
				return []model.TradeRecord{assembleRecord(req, gate, buyTarget, sellTarget, buyBar.Date, sellBar.Date)}
			}
			return nil
		}

		if sellBar, ok := resolveStopLoss(req.Bars, model.Day(buyBar.Date), buyTarget); ok {
			if gate.Admit(sellBar.Date, req.Constraint.BenchmarkMin, req.Constraint.BenchmarkMax) {
				return []model.TradeRecord{assembleRecord(req, gate, buyTarget, buyTarget*stopLossRatio, buyBar.Date, sellBar.Date)}
			}
		}
		return nil
	}
	return nil
}

// resolveStopLoss finds the first daily bar more than the grace period
// after the buy whose low dropped through 90% of the buy price.
func resolveStopLoss(bars []model.DailyBar, buyDate time.Time, buyPrice float64) (model.DailyBar, bool) {
	level := buyPrice * stopLossRatio
	deadline := buyDate.AddDate(0, 0, stopLossGraceDays)
	for _, b := range bars {
		d := model.Day(b.Date)
		if !d.After(deadline) {
			continue
		}
		if b.Low <= level {
			return b, true
		}
	}
	return model.DailyBar{}, false
}

// findExitFrame returns the first period strictly after the breakdown
// whose high reached its own sell reference level. Frames without a
// band cannot signal an exit.
func findExitFrame(sub []model.BandFrame, after time.Time, ref model.SellReference) (model.BandFrame, bool) {
	for _, f := range sub {
		if !f.Date.After(after) || !f.HasBand {
			continue
		}
		if f.High >= sellReferencePrice(f, ref) {
			return f, true
		}
	}
	return model.BandFrame{}, false
}

func sellReferencePrice(f model.BandFrame, ref model.SellReference) float64 {
	if ref == model.SellUpperBand {
		return f.Upper
	}
	return f.MA
}

// assembleRecord builds the final, fully-resolved trade row. Prices are
// rounded to 2 decimals here and nowhere earlier.
func assembleRecord(req Request, gate Gate, buyPrice, sellPrice float64, buyDate, sellDate time.Time) model.TradeRecord {
	buy := model.Round2(buyPrice)
	sell := model.Round2(sellPrice)
	benchVal, _ := gate.Value(buyDate)
	return model.TradeRecord{
		Symbol:      req.Symbol,
		Name:        req.Name,
		BuyPrice:    buy,
		SellPrice:   sell,
		BuyDate:     model.Day(buyDate),
		SellDate:    model.Day(sellDate),
		Return:      (sell - buy) / buy,
		HoldingDays: int(model.Day(sellDate).Sub(model.Day(buyDate)).Hours() / 24),
		Benchmark:   benchVal,
		MarketCap:   NormalizeCap(req.Ref.MarketCap),
		PERatio:     req.Ref.PERatio,
	}
}

// filterByDate restricts frames to the configured period window. Zero
// bounds leave that side open.
func filterByDate(frames []model.BandFrame, start, end time.Time) []model.BandFrame {
	var sub []model.BandFrame
	for _, f := range frames {
		if !start.IsZero() && f.Date.Before(start) {
			continue
		}
		if !end.IsZero() && f.Date.After(end) {
			continue
		}
		sub = append(sub, f)
	}
	return sub
}
