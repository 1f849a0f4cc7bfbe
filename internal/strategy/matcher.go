package strategy

import "BollScan/internal/model"

// Pair anchors one candidate trade: the period that broke the upper
// band and the first lower-band breakdown after it.
type Pair struct {
	Breakout  model.BandFrame
	Breakdown model.BandFrame
}

// MatchBreakoutReversal extracts every clean breakout→breakdown pair
// from a break-flagged frame sequence. Breakouts are processed most
// recent first; each one is paired with the earliest breakdown strictly
// after it, and the pair is dropped if any period strictly between the
// two breaks either band. Pairs come back in the scan order (newest
// breakout first).
func MatchBreakoutReversal(frames []model.BandFrame) []Pair {
	var uppers, lowers []int
	for i, f := range frames {
		if f.BreakUpper {
			uppers = append(uppers, i)
		}
		if f.BreakLower {
			lowers = append(lowers, i)
		}
	}

	var pairs []Pair
	for i := len(uppers) - 1; i >= 0; i-- {
		u := uppers[i]

		l := -1
		for _, j := range lowers {
			if j > u {
				l = j
				break
			}
		}
		if l < 0 {
			continue
		}

		if !intervalClean(frames, u, l) {
			continue
		}
		pairs = append(pairs, Pair{Breakout: frames[u], Breakdown: frames[l]})
	}
	return pairs
}

// intervalClean reports whether no period strictly between u and l
// breaks either band. The endpoints themselves are the pair's own
// breakout and breakdown and are not re-checked.
func intervalClean(frames []model.BandFrame, u, l int) bool {
	for k := u + 1; k < l; k++ {
		if frames[k].BreakUpper || frames[k].BreakLower {
			return false
		}
	}
	return true
}
