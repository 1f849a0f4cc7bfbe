package strategy

// capUnit converts a raw market cap in currency units into the
// hundred-million units all cap ranges are expressed in.
const capUnit = 1e8

// NormalizeCap converts a raw market cap into hundred-million units.
func NormalizeCap(raw float64) float64 {
	return raw / capUnit
}

// passesConstraint applies the market-cap and PE admission ranges to a
// reference row. It runs once per symbol before any time-series work;
// a failing symbol produces no trades or signals regardless of price
// action. A symbol missing from the snapshot is handled by the caller
// as the same silent exclusion.
func (req *Request) passesConstraint() bool {
	if !req.HasRef {
		return false
	}
	c := req.Constraint
	cap := NormalizeCap(req.Ref.MarketCap)
	if cap < c.MarketCapMin || cap > c.MarketCapMax {
		return false
	}
	pe := req.Ref.PERatio
	if pe < c.PEMin || pe > c.PEMax {
		return false
	}
	return true
}
