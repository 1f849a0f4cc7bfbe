package strategy

// RejectReason explains why a resolved candidate pair did not become a
// trade. Rejections are a normal outcome of scanning market data, not
// faults; pairs the matcher drops outright never reach this stage.
type RejectReason int

const (
	RejectNone           RejectReason = iota
	RejectBuyNotPrinted               // no daily bar ever touched the buy target
	RejectBenchmarkBuy                // benchmark out of range on the buy date
	RejectNoExitSignal                // no period reached the sell reference
	RejectSellNotPrinted              // no daily bar touched the sell target in the lookback
	RejectBenchmarkSell               // benchmark out of range on the sell date
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "accepted"
	case RejectBuyNotPrinted:
		return "buy target never printed"
	case RejectBenchmarkBuy:
		return "benchmark out of range at buy"
	case RejectNoExitSignal:
		return "no exit signal"
	case RejectSellNotPrinted:
		return "sell target never printed"
	case RejectBenchmarkSell:
		return "benchmark out of range at sell"
	}
	return "unknown"
}
