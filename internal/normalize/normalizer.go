// Package normalize turns one year of raw course microdata into canonical
// course records restricted to the analysis scope.
package normalize

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/geo"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// Status describes the outcome of normalizing one year.
type Status string

const (
	StatusLoaded      Status = "loaded"
	StatusEmpty       Status = "empty"       // readable, but no in-scope records
	StatusUnavailable Status = "unavailable" // see YearResult.Err
)

// YearResult is the typed outcome of one year. Records is empty unless Status
// is StatusLoaded.
type YearResult struct {
	Year    int
	Records []model.CourseRecord
	Status  Status
	Err     error
}

// DefaultScope is the set of regions kept by default.
var DefaultScope = []string{taxonomy.RegionNortheast, taxonomy.RegionSoutheast}

// requiredColumns must exist after geography resolution; the area name is
// checked separately because it has two alternative columns.
var requiredColumns = []string{
	microdata.ColRegion,
	microdata.ColAdminCategory,
	microdata.ColEnrolled,
	microdata.ColEnrolledFem,
	microdata.ColInstitution,
}

// Joiner supplies institution geography for a year.
type Joiner interface {
	Load(ctx context.Context, year int) (geo.InstitutionTable, []error)
}

// Normalizer loads and normalizes course files year by year.
type Normalizer struct {
	src      microdata.Source
	resolver *geo.Resolver
	joiner   Joiner
	scope    map[string]bool
}

// New creates a Normalizer. A nil joiner disables institution backfill; an
// empty scope falls back to DefaultScope.
func New(src microdata.Source, resolver *geo.Resolver, joiner Joiner, scope []string) *Normalizer {
	if len(scope) == 0 {
		scope = DefaultScope
	}
	set := make(map[string]bool, len(scope))
	for _, r := range scope {
		set[r] = true
	}
	return &Normalizer{src: src, resolver: resolver, joiner: joiner, scope: set}
}

// Normalize processes one year. It never returns an error: failures are
// reported through the Status and Err fields so other years can proceed.
func (n *Normalizer) Normalize(ctx context.Context, year int) YearResult {
	log := zap.L().With(zap.String("component", "normalize"), zap.Int("year", year))

	records, err := n.normalize(ctx, year)
	if err != nil {
		log.Warn("year unavailable", zap.Error(err))
		return YearResult{Year: year, Status: StatusUnavailable, Err: err}
	}
	if len(records) == 0 {
		log.Info("year has no in-scope records")
		return YearResult{Year: year, Status: StatusEmpty}
	}
	log.Info("year normalized", zap.Int("records", len(records)))
	return YearResult{Year: year, Records: records, Status: StatusLoaded}
}

func (n *Normalizer) normalize(ctx context.Context, year int) ([]model.CourseRecord, error) {
	t, err := n.src.Read(ctx, microdata.Courses, year)
	if err != nil {
		return nil, err
	}

	strategy, _ := n.resolver.Resolve(t)
	zap.L().Debug("geography resolved",
		zap.String("component", "normalize"),
		zap.Int("year", year),
		zap.String("strategy", strategy),
	)

	areaCol, ok := t.FirstPresent(microdata.AreaNameColumns...)
	missing := t.Missing(requiredColumns...)
	if !ok {
		missing = append(missing, microdata.AreaNameColumns...)
	}
	if len(missing) > 0 {
		return nil, &microdata.SourceError{
			Kind:    microdata.SchemaMismatch,
			Year:    year,
			Path:    microdata.FileName(microdata.Courses, year),
			Columns: missing,
			Err:     eris.New("normalize: required columns absent"),
		}
	}

	raw := t
	t = raw.Filter(func(i int) bool { return n.scope[raw.Get(i, microdata.ColRegion)] })
	if t.Len() == 0 {
		return nil, nil
	}

	var institutions geo.InstitutionTable
	if n.joiner != nil {
		institutions, _ = n.joiner.Load(ctx, year)
	}

	hasFlow := t.HasAll(microdata.ColIntake, microdata.ColCompleted)
	records := make([]model.CourseRecord, t.Len())
	for i := range records {
		r := model.CourseRecord{
			Year:             year,
			Region:           t.Get(i, microdata.ColRegion),
			State:            t.Get(i, microdata.ColState),
			MunicipalityName: t.Get(i, microdata.ColMunicipality),
			MunicipalityCode: microdata.ParseCode(t.Get(i, microdata.ColMunicipalCode)),
			AdminCategory:    t.Get(i, microdata.ColAdminCategory),
			AreaCode:         t.Get(i, microdata.ColCINEAreaCode),
			AreaName:         t.Get(i, areaCol),
			Enrolled:         microdata.ParseInt64Or(t.Get(i, microdata.ColEnrolled), 0),
			EnrolledFemale:   microdata.ParseInt64Or(t.Get(i, microdata.ColEnrolledFem), 0),
			HasFlow:          hasFlow,
			InstitutionID:    geo.InstitutionID(t.Get(i, microdata.ColInstitution)),
		}
		if hasFlow {
			r.Intake = microdata.ParseInt64Or(t.Get(i, microdata.ColIntake), 0)
			r.Completed = microdata.ParseInt64Or(t.Get(i, microdata.ColCompleted), 0)
		}
		if g, ok := institutions.Lookup(r.InstitutionID); ok {
			backfill(&r, g)
		}
		records[i] = r
	}
	return records, nil
}

// backfill fills missing municipality fields from the institution geography
// and attaches its micro-region. Present values are never overwritten.
func backfill(r *model.CourseRecord, g model.InstitutionGeo) {
	if r.MunicipalityName == "" {
		r.MunicipalityName = g.MunicipalityName
	}
	if r.MunicipalityCode == "" {
		r.MunicipalityCode = g.MunicipalityCode
	}
	if r.MicroRegionName == "" {
		r.MicroRegionName = g.MicroRegionName
	}
	if r.MicroRegionCode == "" {
		r.MicroRegionCode = g.MicroRegionCode
	}
}
