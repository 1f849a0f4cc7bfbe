package strategy

import (
	"math"
	"testing"
	"time"

	"BollScan/internal/calculator"
	"BollScan/internal/model"
)

// fakeGate admits any date when series is nil, otherwise only dates
// present in the series; deny short-circuits everything.
type fakeGate struct {
	series map[time.Time]float64
	deny   bool
}

func (g *fakeGate) Value(date time.Time) (float64, bool) {
	if g.series == nil {
		return 3300, true
	}
	v, ok := g.series[model.Day(date)]
	return v, ok
}

func (g *fakeGate) Admit(date time.Time, min, max float64) bool {
	if g.deny {
		return false
	}
	v, ok := g.Value(date)
	return ok && min <= v && v <= max
}

// weekBar places one trading day per ISO week, so every weekly period
// collapses to a single controllable bar.
type weekBar struct {
	c, h, l float64
}

func weeklySeries(start time.Time, specs []weekBar) []model.DailyBar {
	bars := make([]model.DailyBar, len(specs))
	for i, s := range specs {
		h, l := s.h, s.l
		if h == 0 {
			h = s.c
		}
		if l == 0 {
			l = s.c
		}
		bars[i] = model.DailyBar{Date: start.AddDate(0, 0, 7*i), Open: s.c, High: h, Low: l, Close: s.c}
	}
	return bars
}

func openConstraint() model.Constraint {
	return model.Constraint{
		MarketCapMin: 0, MarketCapMax: 1e9,
		PEMin: 0, PEMax: 1e9,
		BenchmarkMin: 3180, BenchmarkMax: 3600,
	}
}

func baseRequest(bars []model.DailyBar, policy model.EntryPolicy) Request {
	return Request{
		Symbol:     "600001",
		Name:       "测试股份",
		Bars:       bars,
		Mode:       model.BucketWeek,
		SellRef:    model.SellMidBand,
		Policy:     policy,
		Window:     2,
		Constraint: openConstraint(),
		Ref:        model.RefRow{Symbol: "600001", Name: "测试股份", Price: 10, MarketCap: 60e8, PERatio: 30},
		HasRef:     true,
	}
}

// Five weekly periods: quiet, quiet, breakout (high 14), breakdown
// (low 9), recovery (high 11 over its mid-band 10.75). Window 2 keeps
// the band math small enough to verify by hand.
func reversalSeries() []model.DailyBar {
	return weeklySeries(day(2024, 1, 1), []weekBar{
		{c: 10.2},
		{c: 11},
		{c: 12, h: 14},
		{c: 11, l: 9},
		{c: 10.5, h: 11},
	})
}

func TestSimulate_RoundTrip(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	records, err := Simulate(req, &fakeGate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one trade, got %d", len(records))
	}

	rec := records[0]
	// Buy at the breakdown period's lower band: 11.5 - 2*sqrt(0.5).
	wantBuy := model.Round2(11.5 - 2*math.Sqrt(0.5))
	if rec.BuyPrice != wantBuy {
		t.Errorf("buy price: expected %.2f, got %.2f", wantBuy, rec.BuyPrice)
	}
	if rec.SellPrice != 10.75 {
		t.Errorf("sell price: expected mid-band 10.75, got %.2f", rec.SellPrice)
	}
	if !rec.BuyDate.Equal(day(2024, 1, 22)) {
		t.Errorf("buy date: got %s", rec.BuyDate.Format("2006-01-02"))
	}
	if !rec.SellDate.Equal(day(2024, 1, 29)) {
		t.Errorf("sell date: got %s", rec.SellDate.Format("2006-01-02"))
	}
	if rec.HoldingDays != 7 {
		t.Errorf("holding days: expected 7, got %d", rec.HoldingDays)
	}
	wantRet := (rec.SellPrice - rec.BuyPrice) / rec.BuyPrice
	if math.Abs(rec.Return-wantRet) > 1e-12 {
		t.Errorf("return mismatch: %v vs %v", rec.Return, wantRet)
	}
	if rec.Benchmark != 3300 {
		t.Errorf("benchmark at buy: expected 3300, got %.2f", rec.Benchmark)
	}
	if rec.MarketCap != 60 {
		t.Errorf("normalized market cap: expected 60, got %.2f", rec.MarketCap)
	}
}

func TestSimulate_BenchmarkGateRejects(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	records, err := Simulate(req, &fakeGate{deny: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("gate rejection must discard the trade, got %d records", len(records))
	}
}

func TestSimulate_FlatHistoryYieldsNothing(t *testing.T) {
	// 19 flat periods with window 20: the band never forms, which is a
	// normal empty outcome, not an error.
	specs := make([]weekBar, 19)
	for i := range specs {
		specs[i] = weekBar{c: 10}
	}
	req := baseRequest(weeklySeries(day(2024, 1, 1), specs), model.EntryBreakoutRequired)
	req.Window = 20

	records, err := Simulate(req, &fakeGate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no trades, got %d", len(records))
	}

	row, err := Scan(req)
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	if row != nil {
		t.Fatal("expected no signal for an undefined band")
	}
}

func TestSimulate_EmptyInput(t *testing.T) {
	req := baseRequest(nil, model.EntryBreakoutRequired)
	records, err := Simulate(req, &fakeGate{})
	if err != nil || len(records) != 0 {
		t.Fatalf("empty input must yield an empty result, got %d records, err %v", len(records), err)
	}
}

func TestSimulate_InvalidWindow(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	req.Window = 0
	if _, err := Simulate(req, &fakeGate{}); err == nil {
		t.Fatal("a non-positive window is a caller error and must fail fast")
	}
}

func TestSimulate_InvertedPeriodRange(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	req.PeriodStart = day(2024, 6, 1)
	req.PeriodEnd = day(2024, 1, 1)
	if _, err := Simulate(req, &fakeGate{}); err == nil {
		t.Fatal("an inverted period range must fail fast")
	}
}

func TestSimulate_ConstraintEarlyExit(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	req.Ref.PERatio = 500
	req.Constraint.PEMax = 45
	records, err := Simulate(req, &fakeGate{})
	if err != nil || len(records) != 0 {
		t.Fatalf("constraint failure must exclude the symbol, got %d records, err %v", len(records), err)
	}

	req = baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	req.HasRef = false
	records, err = Simulate(req, &fakeGate{})
	if err != nil || len(records) != 0 {
		t.Fatalf("missing reference row must exclude the symbol, got %d records, err %v", len(records), err)
	}
}

func TestSimulate_FirstBreakdownSingleTrade(t *testing.T) {
	req := baseRequest(reversalSeries(), model.EntryFirstBreakdown)
	records, err := Simulate(req, &fakeGate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one trade, got %d", len(records))
	}
	if !records[0].BuyDate.Equal(day(2024, 1, 22)) {
		t.Errorf("buy date: got %s", records[0].BuyDate.Format("2006-01-02"))
	}
}

func TestSimulate_StopLossAfterGracePeriod(t *testing.T) {
	// Breakdown at week 3, then a slow decline that never recovers to
	// the mid-band. The stop-loss exit may only fire more than 80
	// calendar days after the buy, even though the level is breached
	// earlier.
	specs := []weekBar{
		{c: 10.2},
		{c: 11},
		{c: 12, h: 14},
		{c: 11, l: 9}, // buy here, 2024-01-22
	}
	for i := 0; i < 12; i++ {
		specs = append(specs, weekBar{c: 10.8 - 0.2*float64(i)})
	}
	req := baseRequest(weeklySeries(day(2024, 1, 1), specs), model.EntryFirstBreakdown)

	records, err := Simulate(req, &fakeGate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one stop-loss trade, got %d", len(records))
	}
	rec := records[0]
	buyTarget := 11.5 - 2*math.Sqrt(0.5)
	wantSell := model.Round2(buyTarget * 0.9)
	if rec.SellPrice != wantSell {
		t.Errorf("stop-loss sell price: expected %.2f, got %.2f", wantSell, rec.SellPrice)
	}
	if !rec.SellDate.Equal(day(2024, 4, 15)) {
		t.Errorf("stop-loss must wait out the grace period, sold %s", rec.SellDate.Format("2006-01-02"))
	}
	if rec.Return >= 0 {
		t.Errorf("stop-loss trade should be a loss, got %.4f", rec.Return)
	}
}

func TestEvaluatePair_RejectReasons(t *testing.T) {
	// Gate denial at the buy date.
	req := baseRequest(reversalSeries(), model.EntryBreakoutRequired)
	sub := calculator.Frames(req.Bars, req.Mode, req.Window)
	pairs := MatchBreakoutReversal(sub)
	if len(pairs) != 1 {
		t.Fatalf("expected one candidate pair, got %d", len(pairs))
	}
	if _, reason := evaluatePair(req, sub, pairs[0], &fakeGate{deny: true}); reason != RejectBenchmarkBuy {
		t.Errorf("denied gate: expected %v, got %v", RejectBenchmarkBuy, reason)
	}

	// Declining tail, no period ever reaches its mid-band again.
	specs := []weekBar{
		{c: 10.2},
		{c: 11},
		{c: 12, h: 14},
		{c: 11, l: 9},
		{c: 10.5, h: 10.5},
	}
	req = baseRequest(weeklySeries(day(2024, 1, 1), specs), model.EntryBreakoutRequired)
	sub = calculator.Frames(req.Bars, req.Mode, req.Window)
	pairs = MatchBreakoutReversal(sub)
	if len(pairs) != 1 {
		t.Fatalf("expected one candidate pair, got %d", len(pairs))
	}
	if _, reason := evaluatePair(req, sub, pairs[0], &fakeGate{}); reason != RejectNoExitSignal {
		t.Errorf("no exit: expected %v, got %v", RejectNoExitSignal, reason)
	}

	for _, reason := range []RejectReason{RejectNone, RejectBuyNotPrinted, RejectSellNotPrinted, RejectBenchmarkSell} {
		if reason.String() == "unknown" {
			t.Errorf("reason %d has no description", int(reason))
		}
	}
}

func TestSimulate_StopLossOnlyForFirstBreakdown(t *testing.T) {
	specs := []weekBar{
		{c: 10.2},
		{c: 11},
		{c: 12, h: 14},
		{c: 11, l: 9},
	}
	for i := 0; i < 12; i++ {
		specs = append(specs, weekBar{c: 10.8 - 0.2*float64(i)})
	}
	req := baseRequest(weeklySeries(day(2024, 1, 1), specs), model.EntryBreakoutRequired)

	records, err := Simulate(req, &fakeGate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("breakout-required policy has no stop-loss fallback, got %d records", len(records))
	}
}
