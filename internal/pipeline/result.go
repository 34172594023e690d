package pipeline

import (
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/normalize"
)

// YearSummary reports how one discovered year loaded.
type YearSummary struct {
	Year    int                 `json:"year"`
	Status  normalize.Status    `json:"status"`
	Records int                 `json:"records"`
	Kind    microdata.ErrorKind `json:"kind,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

func summarize(yr normalize.YearResult) YearSummary {
	s := YearSummary{Year: yr.Year, Status: yr.Status, Records: len(yr.Records)}
	if yr.Err != nil {
		s.Kind = microdata.KindOf(yr.Err)
		s.Reason = yr.Err.Error()
	}
	return s
}

// Summaries converts load results into year summaries.
func Summaries(results []normalize.YearResult) []YearSummary {
	out := make([]YearSummary, len(results))
	for i, yr := range results {
		out[i] = summarize(yr)
	}
	return out
}

// Result holds every table of a run. Rows are ordered by year then key.
type Result struct {
	RunID       string        `json:"run_id"`
	Years       []YearSummary `json:"years"`
	Records     int           `json:"records"`
	STEMRecords int           `json:"stem_records"`

	Municipal         []model.AggregateRow `json:"municipal"`
	MunicipalByType   []model.AggregateRow `json:"municipal_by_type"`
	MicroRegion       []model.AggregateRow `json:"micro_region"`
	MicroRegionByType []model.AggregateRow `json:"micro_region_by_type"`
	Regions           []model.AggregateRow `json:"regions"`
	RegionsByType     []model.AggregateRow `json:"regions_by_type"`
	Scope             []model.AggregateRow `json:"scope"`

	// Comparison holds the all-years rows (Year 0) followed by one block per year.
	Comparison []model.LevelComparison `json:"comparison"`

	Clusters      []cluster.Result `json:"clusters"`
	ReferenceYear int              `json:"reference_year"`
	Reference     *cluster.Result  `json:"-"` // element of Clusters; nil when no year was clustered

	// Reference-year tables.
	Rankings     []model.RankedUnit        `json:"rankings"`
	Lowest       []model.ClusterAssignment `json:"lowest"`
	Distribution []model.LabelCount        `json:"distribution"`
}

// LoadedYears returns the years that produced records.
func (r *Result) LoadedYears() []int {
	var out []int
	for _, y := range r.Years {
		if y.Status == normalize.StatusLoaded {
			out = append(out, y.Year)
		}
	}
	return out
}
