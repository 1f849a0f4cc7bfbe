package refdata

import (
	"regexp"
	"sort"
	"strings"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Well-known index codes that show up in spot snapshots but are not
// tradable equities.
var indexCodes = map[string]bool{
	"000001": true, "000300": true, "000905": true, "399001": true,
	"399006": true, "399101": true, "399102": true, "399106": true,
	"399300": true, "399905": true,
}

// Board prefixes excluded from the scan universe (startup/selective
// boards and B shares).
var excludedPrefixes = []string{"30", "83", "87", "43", "688", "689", "9"}

// IsTradable reports whether a snapshot row belongs in the scan
// universe: a 6-digit equity code that is not an index, not on an
// excluded board, and not an ST or index-named listing.
func IsTradable(symbol, name string) bool {
	if !codePattern.MatchString(symbol) {
		return false
	}
	if indexCodes[symbol] {
		return false
	}
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(symbol, p) {
			return false
		}
	}
	if strings.Contains(name, "ST") || strings.Contains(name, "指数") {
		return false
	}
	return true
}

// Universe returns the sorted tradable symbols in the snapshot.
func (t *Table) Universe() []string {
	t.mu.RLock()
	loaded := t.loaded
	t.mu.RUnlock()
	if !loaded {
		if err := t.Warm(); err != nil {
			return nil
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	symbols := make([]string, 0, len(t.rows))
	for code, row := range t.rows {
		if IsTradable(code, row.Name) {
			symbols = append(symbols, code)
		}
	}
	sort.Strings(symbols)
	return symbols
}
