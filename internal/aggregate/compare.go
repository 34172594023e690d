package aggregate

import (
	"sort"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// CompareLevels returns, per region, the mean female share of municipality
// rows next to that of micro-region rows. Undefined shares are skipped. Year 0
// compares every year together.
func CompareLevels(municipal, micro []model.AggregateRow, year int) []model.LevelComparison {
	if year != 0 {
		municipal = ForYear(municipal, year)
		micro = ForYear(micro, year)
	}
	mun := sharesByRegion(municipal)
	mic := sharesByRegion(micro)

	regions := RegionNames(append(append([]model.AggregateRow(nil), municipal...), micro...))
	out := make([]model.LevelComparison, 0, len(regions))
	for _, region := range regions {
		out = append(out, model.LevelComparison{
			Year:         year,
			Region:       region,
			Municipality: model.Mean(mun[region]),
			MicroRegion:  model.Mean(mic[region]),
		})
	}
	return out
}

func sharesByRegion(rows []model.AggregateRow) map[string][]model.NullFloat {
	out := make(map[string][]model.NullFloat)
	for _, r := range rows {
		out[r.Key.Region] = append(out[r.Key.Region], r.FemaleShare)
	}
	return out
}

// RankByName ranks the units of one region by mean female share, grouping
// rows that share a display name. Highest share first, undefined last, ties
// by name; at most n entries (n <= 0: all).
//
// Grouping by name mirrors how the published rankings were produced; units
// with equal names in different states are merged.
func RankByName(rows []model.AggregateRow, region string, n int) []model.RankedUnit {
	type bucket struct {
		first  model.AggregateRow
		shares []model.NullFloat
	}
	buckets := make(map[string]*bucket)
	var names []string
	for _, r := range rows {
		if r.Key.Region != region || r.Key.Name == "" {
			continue
		}
		b, ok := buckets[r.Key.Name]
		if !ok {
			b = &bucket{first: r}
			buckets[r.Key.Name] = b
			names = append(names, r.Key.Name)
		}
		b.shares = append(b.shares, r.FemaleShare)
	}

	units := make([]model.RankedUnit, 0, len(names))
	for _, name := range names {
		b := buckets[name]
		units = append(units, model.RankedUnit{
			Year:            b.first.Year,
			Region:          region,
			InstitutionType: b.first.InstitutionType,
			Name:            name,
			FemaleShare:     model.Mean(b.shares),
		})
	}
	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i].FemaleShare, units[j].FemaleShare
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.Value != b.Value {
			return a.Value > b.Value
		}
		return units[i].Name < units[j].Name
	})

	if n > 0 && len(units) > n {
		units = units[:n]
	}
	for i := range units {
		units[i].Rank = i + 1
	}
	return units
}
