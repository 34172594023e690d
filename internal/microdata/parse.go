package microdata

import (
	"math"
	"strconv"
	"strings"
)

// ParseIntOr parses an integer cell, accepting a trailing ".0" as written by
// spreadsheet exports. Returns def when the cell is empty or malformed.
func ParseIntOr(s string, def int) int {
	v, ok := parseWhole(s)
	if !ok {
		return def
	}
	return int(v)
}

// ParseInt64Or parses a count cell, returning def when parsing fails.
func ParseInt64Or(s string, def int64) int64 {
	v, ok := parseWhole(s)
	if !ok {
		return def
	}
	return v
}

// ParseCode normalizes a numeric identifier ("2304400", "2304400.0") to its
// integer string form. Returns "" for empty or malformed cells.
func ParseCode(s string) string {
	v, ok := parseWhole(s)
	if !ok {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// StatePrefix returns the two-digit state code that prefixes an IBGE
// municipality code.
func StatePrefix(municipalityCode string) (int, bool) {
	v, ok := parseWhole(municipalityCode)
	if !ok || v < 0 {
		return 0, false
	}
	digits := strconv.FormatInt(v, 10)
	if len(digits) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(digits[:2])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseWhole(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}
