package aggregate

import (
	"sort"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// ForYear returns the rows of one year, in input order.
func ForYear(rows []model.AggregateRow, year int) []model.AggregateRow {
	var out []model.AggregateRow
	for _, r := range rows {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// ForType returns the rows of one institution type, in input order.
func ForType(rows []model.AggregateRow, typ model.InstitutionType) []model.AggregateRow {
	var out []model.AggregateRow
	for _, r := range rows {
		if r.InstitutionType == typ {
			out = append(out, r)
		}
	}
	return out
}

// SplitByYear partitions rows by year.
func SplitByYear(rows []model.AggregateRow) map[int][]model.AggregateRow {
	out := make(map[int][]model.AggregateRow)
	for _, r := range rows {
		out[r.Year] = append(out[r.Year], r)
	}
	return out
}

// Years returns the distinct years of rows in ascending order.
func Years(rows []model.AggregateRow) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range rows {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}

// LatestYear returns the most recent year in rows.
func LatestYear(rows []model.AggregateRow) (int, bool) {
	years := Years(rows)
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// RegionNames returns the distinct regions of rows in ascending order.
func RegionNames(rows []model.AggregateRow) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range rows {
		if _, ok := seen[r.Key.Region]; ok || r.Key.Region == "" {
			continue
		}
		seen[r.Key.Region] = struct{}{}
		names = append(names, r.Key.Region)
	}
	sort.Strings(names)
	return names
}
