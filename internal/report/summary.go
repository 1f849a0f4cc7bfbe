package report

import "BollScan/internal/model"

// Summary aggregates a whole backtest run.
type Summary struct {
	Trades         int
	AvgReturnPct   float64 // mean return, percent, 2 decimals
	AvgHoldingDays float64 // mean holding period, 2 decimals
	DailyReturnPct float64 // mean return per holding day, percent, 3 decimals
}

// Summarize computes the run statistics. ok is false when there were
// no trades at all (nothing meaningful to average).
func Summarize(records []model.TradeRecord) (Summary, bool) {
	if len(records) == 0 {
		return Summary{}, false
	}

	var retSum, daySum float64
	for _, r := range records {
		retSum += r.Return
		daySum += float64(r.HoldingDays)
	}
	n := float64(len(records))
	avgRet := retSum / n
	avgDays := daySum / n

	s := Summary{
		Trades:         len(records),
		AvgReturnPct:   model.Round2(avgRet * 100),
		AvgHoldingDays: model.Round2(avgDays),
	}
	if avgDays > 0 {
		s.DailyReturnPct = model.Round3(avgRet * 100 / avgDays)
	}
	return s, true
}
