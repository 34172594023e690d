// Package aggregate rolls classified STEM course records up to municipality,
// micro-region, region and scope level and derives the gender-parity ratios.
//
// Every function is pure: rows are recomputed from the records on each call
// and returned in a deterministic order (year, key, institution type).
package aggregate

import (
	"sort"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// keyFunc returns the group key of a record at one level. ok is false when a
// key component is missing; such records are left out of that level.
type keyFunc func(r model.CourseRecord) (model.GeoKey, bool)

func municipalityKey(r model.CourseRecord) (model.GeoKey, bool) {
	k := r.MunicipalityKey()
	return k, k.Region != "" && k.State != "" && k.Name != "" && k.Code != ""
}

func microRegionKey(r model.CourseRecord) (model.GeoKey, bool) {
	k := r.MicroRegionKey()
	return k, k.Region != "" && k.State != "" && k.Name != "" && k.Code != ""
}

func regionKey(r model.CourseRecord) (model.GeoKey, bool) {
	return model.GeoKey{Region: r.Region}, r.Region != ""
}

func scopeKey(model.CourseRecord) (model.GeoKey, bool) {
	return model.GeoKey{}, true
}

func keyFor(level model.GeoLevel) keyFunc {
	switch level {
	case model.LevelMunicipality:
		return municipalityKey
	case model.LevelMicroRegion:
		return microRegionKey
	case model.LevelRegion:
		return regionKey
	default:
		return scopeKey
	}
}

// Indicators returns one row per (year, unit) at the given level, with public
// and private subtotals and every derived ratio.
func Indicators(records []model.CourseRecord, level model.GeoLevel) []model.AggregateRow {
	return group(records, level, false)
}

// ByType returns one row per (year, unit, institution type) at the given level.
func ByType(records []model.CourseRecord, level model.GeoLevel) []model.AggregateRow {
	return group(records, level, true)
}

// Regions returns the yearly series of every region.
func Regions(records []model.CourseRecord) []model.AggregateRow {
	return group(records, model.LevelRegion, false)
}

// RegionsByType returns the yearly region series split by institution type.
func RegionsByType(records []model.CourseRecord) []model.AggregateRow {
	return group(records, model.LevelRegion, true)
}

// Scope returns the yearly totals over every region present in records, so the
// female share is weighted by enrollment.
func Scope(records []model.CourseRecord) []model.AggregateRow {
	return group(records, model.LevelScope, false)
}

type groupID struct {
	year int
	key  model.GeoKey
	typ  model.InstitutionType
}

func group(records []model.CourseRecord, level model.GeoLevel, byType bool) []model.AggregateRow {
	key := keyFor(level)
	acc := make(map[groupID]*model.AggregateRow)

	for _, r := range records {
		if !r.STEM {
			continue
		}
		k, ok := key(r)
		if !ok {
			continue
		}
		id := groupID{year: r.Year, key: k}
		if byType {
			id.typ = r.InstitutionType
		}

		row, ok := acc[id]
		if !ok {
			row = &model.AggregateRow{Year: r.Year, Level: level, Key: k, InstitutionType: id.typ}
			acc[id] = row
		}
		add(row, r)
	}

	rows := make([]model.AggregateRow, 0, len(acc))
	for _, row := range acc {
		row.Derive()
		rows = append(rows, *row)
	}
	Sort(rows)
	return rows
}

func add(row *model.AggregateRow, r model.CourseRecord) {
	row.Enrolled += r.Enrolled
	row.EnrolledFemale += r.EnrolledFemale
	switch r.InstitutionType {
	case model.Public:
		row.EnrolledPublic += r.Enrolled
	case model.Private:
		row.EnrolledPrivate += r.Enrolled
	}
	if r.HasFlow {
		row.HasFlow = true
		row.Intake += r.Intake
		row.Completed += r.Completed
	}
}

// Sort orders rows by year, key, then institution type.
func Sort(rows []model.AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Key != b.Key {
			return a.Key.Less(b.Key)
		}
		return a.InstitutionType < b.InstitutionType
	})
}
