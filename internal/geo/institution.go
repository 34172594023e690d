package geo

import (
	"context"

	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// DefaultInstitutionVariants are the institution files tried, in order.
var DefaultInstitutionVariants = []microdata.FileKind{
	microdata.InstitutionsCadastro,
	microdata.InstitutionsEdSup,
}

// InstitutionTable maps institution ids to their geography.
type InstitutionTable map[string]model.InstitutionGeo

// InstitutionJoiner loads the per-year institution geography used to backfill
// course records.
type InstitutionJoiner struct {
	src      microdata.Source
	resolver *Resolver
	variants []microdata.FileKind
}

// NewInstitutionJoiner creates a joiner reading the default variants.
func NewInstitutionJoiner(src microdata.Source, regions taxonomy.Regions) *InstitutionJoiner {
	return &InstitutionJoiner{
		src:      src,
		resolver: NewResolver(regions, InstitutionColumns),
		variants: DefaultInstitutionVariants,
	}
}

// WithVariants overrides the file variants tried.
func (j *InstitutionJoiner) WithVariants(kinds ...microdata.FileKind) *InstitutionJoiner {
	j.variants = kinds
	return j
}

// Load returns the institution table for year from the first variant that
// loads. When none loads the table is empty and the per-variant errors are
// returned for reporting; the caller is expected to continue without it.
func (j *InstitutionJoiner) Load(ctx context.Context, year int) (InstitutionTable, []error) {
	log := zap.L().With(zap.String("component", "geo.institutions"), zap.Int("year", year))

	var errs []error
	for _, kind := range j.variants {
		t, err := j.src.Read(ctx, kind, year)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !t.Has(microdata.ColInstitution) {
			errs = append(errs, &microdata.SourceError{
				Kind:    microdata.SchemaMismatch,
				Year:    year,
				Path:    microdata.FileName(kind, year),
				Columns: []string{microdata.ColInstitution},
			})
			continue
		}

		strategy, _ := j.resolver.Resolve(t)
		table := project(t)
		log.Debug("institution geography loaded",
			zap.String("variant", string(kind)),
			zap.String("strategy", strategy),
			zap.Int("institutions", len(table)),
		)
		return table, nil
	}

	log.Warn("no institution geography available", zap.Int("variants_tried", len(errs)), zap.Errors("errors", errs))
	return InstitutionTable{}, errs
}

func project(t *microdata.Table) InstitutionTable {
	p := t.Project(microdata.InstitutionGeoColumns...)
	out := make(InstitutionTable, p.Len())
	for i := 0; i < p.Len(); i++ {
		id := InstitutionID(p.Get(i, microdata.ColInstitution))
		if id == "" {
			continue
		}
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = model.InstitutionGeo{
			InstitutionID:    id,
			MicroRegionName:  p.Get(i, microdata.ColMicroRegionIES),
			MicroRegionCode:  microdata.ParseCode(p.Get(i, microdata.ColMicroRegionCodeIES)),
			MunicipalityName: p.Get(i, microdata.ColMunicipalityIES),
			MunicipalityCode: microdata.ParseCode(p.Get(i, microdata.ColMunicipalCodeIES)),
			State:            p.Get(i, microdata.ColStateIES),
			Region:           p.Get(i, microdata.ColRegionIES),
		}
	}
	return out
}

// Lookup returns the geography of an institution.
func (t InstitutionTable) Lookup(id string) (model.InstitutionGeo, bool) {
	g, ok := t[id]
	return g, ok
}

// InstitutionID normalizes a raw CO_IES cell so course and institution files
// join on the same key.
func InstitutionID(raw string) string {
	if id := microdata.ParseCode(raw); id != "" {
		return id
	}
	return raw
}
