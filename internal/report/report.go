package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"BollScan/internal/model"
)

// FormatTrades renders completed round trips as the backtest table.
func FormatTrades(records []model.TradeRecord) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "代码\t名称\t买入价\t卖出价\t买入日期\t卖出日期\t收益率\t持有天数\t上证指数")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%s\t%s\t%.2f%%\t%d\t%.2f\n",
			r.Symbol, r.Name, r.BuyPrice, r.SellPrice,
			r.BuyDate.Format("2006-01-02"), r.SellDate.Format("2006-01-02"),
			r.Return*100, r.HoldingDays, r.Benchmark)
	}
	w.Flush()
	return b.String()
}

// FormatSignals renders forward-scan candidates.
func FormatSignals(rows []model.SignalRow) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "代码\t名称\t市值(亿)\t市盈率\t日期\t触发价")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%s\t%.2f\n",
			r.Symbol, r.Name, r.MarketCap, r.PERatio,
			r.AsOfDate.Format("2006-01-02"), r.TriggerPrice)
	}
	w.Flush()
	return b.String()
}

// FormatSummary renders the aggregate backtest statistics.
func FormatSummary(s Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("交易笔数: %d\n", s.Trades))
	b.WriteString(fmt.Sprintf("平均收益率: %.2f%%\n", s.AvgReturnPct))
	b.WriteString(fmt.Sprintf("平均持有天数: %.2f\n", s.AvgHoldingDays))
	b.WriteString(fmt.Sprintf("日均收益率: %.3f%%\n", s.DailyReturnPct))
	return b.String()
}
