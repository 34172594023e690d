// Package geo resolves the region and state of microdata rows from whatever
// geographic columns a yearly file provides, and joins institution geography
// to fill gaps in course records.
package geo

import (
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// Strategy names, in priority order.
const (
	StrategyRegion           = "region"
	StrategyState            = "state"
	StrategyStateCode        = "state_code"
	StrategyMunicipalityCode = "municipality_code"
)

// Columns names the geographic columns of one file family.
type Columns struct {
	Region           string
	State            string
	StateCode        string
	MunicipalityCode string
}

// CourseColumns are the course-file geographic columns.
var CourseColumns = Columns{
	Region:           microdata.ColRegion,
	State:            microdata.ColState,
	StateCode:        microdata.ColStateCode,
	MunicipalityCode: microdata.ColMunicipalCode,
}

// InstitutionColumns are the institution-file geographic columns.
var InstitutionColumns = Columns{
	Region:           microdata.ColRegionIES,
	State:            microdata.ColStateIES,
	StateCode:        microdata.ColStateCodeIES,
	MunicipalityCode: microdata.ColMunicipalCodeIES,
}

// Strategy fills region/state from one source column. Applies reports whether
// the strategy's source column is present; Apply fills empty cells only.
type Strategy interface {
	Name() string
	Applies(t *microdata.Table) bool
	Apply(t *microdata.Table)
}

// Resolver tries its strategies in order; exactly the first applicable one runs.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the four-strategy resolver over the given columns.
func NewResolver(regions taxonomy.Regions, cols Columns) *Resolver {
	return NewResolverWith(
		regionPresent{cols: cols},
		fromState{cols: cols, regions: regions},
		fromStateCode{cols: cols, regions: regions},
		fromMunicipalityCode{cols: cols, regions: regions},
	)
}

// NewResolverWith builds a resolver from an explicit strategy list.
func NewResolverWith(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Strategies returns the strategy names in priority order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve runs the first applicable strategy on t and returns its name. When
// no strategy applies, t is left unchanged and ok is false.
func (r *Resolver) Resolve(t *microdata.Table) (name string, ok bool) {
	for _, s := range r.strategies {
		if s.Applies(t) {
			s.Apply(t)
			return s.Name(), true
		}
	}
	return "", false
}

type regionPresent struct{ cols Columns }

func (regionPresent) Name() string                      { return StrategyRegion }
func (s regionPresent) Applies(t *microdata.Table) bool { return t.Has(s.cols.Region) }
func (regionPresent) Apply(*microdata.Table)            {}

type fromState struct {
	cols    Columns
	regions taxonomy.Regions
}

func (fromState) Name() string                      { return StrategyState }
func (s fromState) Applies(t *microdata.Table) bool { return t.Has(s.cols.State) }

func (s fromState) Apply(t *microdata.Table) {
	t.EnsureColumn(s.cols.Region)
	for i := 0; i < t.Len(); i++ {
		if region, ok := s.regions.RegionOfState(t.Get(i, s.cols.State)); ok {
			t.FillEmpty(i, s.cols.Region, region)
		}
	}
}

type fromStateCode struct {
	cols    Columns
	regions taxonomy.Regions
}

func (fromStateCode) Name() string                      { return StrategyStateCode }
func (s fromStateCode) Applies(t *microdata.Table) bool { return t.Has(s.cols.StateCode) }

func (s fromStateCode) Apply(t *microdata.Table) {
	t.EnsureColumn(s.cols.Region)
	t.EnsureColumn(s.cols.State)
	for i := 0; i < t.Len(); i++ {
		code := microdata.ParseIntOr(t.Get(i, s.cols.StateCode), 0)
		fill(t, i, s.cols, s.regions, code)
	}
}

type fromMunicipalityCode struct {
	cols    Columns
	regions taxonomy.Regions
}

func (fromMunicipalityCode) Name() string { return StrategyMunicipalityCode }

func (s fromMunicipalityCode) Applies(t *microdata.Table) bool {
	return t.Has(s.cols.MunicipalityCode)
}

func (s fromMunicipalityCode) Apply(t *microdata.Table) {
	t.EnsureColumn(s.cols.Region)
	t.EnsureColumn(s.cols.State)
	for i := 0; i < t.Len(); i++ {
		code, ok := microdata.StatePrefix(t.Get(i, s.cols.MunicipalityCode))
		if !ok {
			continue
		}
		fill(t, i, s.cols, s.regions, code)
	}
}

func fill(t *microdata.Table, i int, cols Columns, regions taxonomy.Regions, code int) {
	if region, ok := regions.RegionOfCode(code); ok {
		t.FillEmpty(i, cols.Region, region)
	}
	if abbrev, ok := regions.StateOfCode(code); ok {
		t.FillEmpty(i, cols.State, abbrev)
	}
}
