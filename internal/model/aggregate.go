package model

// GeoLevel is the granularity of an aggregate.
type GeoLevel string

const (
	LevelMunicipality GeoLevel = "municipio"
	LevelMicroRegion  GeoLevel = "microrregiao"
	LevelRegion       GeoLevel = "regiao"
	LevelScope        GeoLevel = "total" // every in-scope region together
)

// AggregateRow holds the STEM enrollment totals and derived ratios of one
// (year, level key, optional institution type) group.
type AggregateRow struct {
	Year            int             `json:"year"`
	Level           GeoLevel        `json:"level"`
	Key             GeoKey          `json:"key"`
	InstitutionType InstitutionType `json:"institution_type,omitempty"` // empty: all types

	Enrolled        int64 `json:"enrolled"`
	EnrolledFemale  int64 `json:"enrolled_female"`
	EnrolledPublic  int64 `json:"enrolled_public"`
	EnrolledPrivate int64 `json:"enrolled_private"`
	HasFlow         bool  `json:"has_flow"`
	Intake          int64 `json:"intake"`
	Completed       int64 `json:"completed"`

	FemaleShare  NullFloat `json:"female_share"`
	ParityIndex  NullFloat `json:"parity_index"`
	PublicShare  NullFloat `json:"public_share"`
	PrivateShare NullFloat `json:"private_share"`
	SuccessRate  NullFloat `json:"success_rate"`
}

// Volume is the STEM enrollment volume of the group.
func (r AggregateRow) Volume() int64 { return r.Enrolled }

// EnrolledMale is total minus female; negative when the source reports more
// women than total enrollment.
func (r AggregateRow) EnrolledMale() int64 { return r.Enrolled - r.EnrolledFemale }

// Derive recomputes every ratio from the counts. Zero denominators leave the
// ratio undefined; values outside [0, 1] are not clamped.
func (r *AggregateRow) Derive() {
	total := float64(r.Enrolled)
	r.FemaleShare = Ratio(float64(r.EnrolledFemale), total)
	r.ParityIndex = Ratio(float64(r.EnrolledFemale), float64(r.EnrolledMale()))
	r.PublicShare = Ratio(float64(r.EnrolledPublic), total)
	r.PrivateShare = Ratio(float64(r.EnrolledPrivate), total)
	if r.HasFlow {
		r.SuccessRate = Ratio(float64(r.Completed), float64(r.Intake))
	} else {
		r.SuccessRate = NullFloat{}
	}
}

// LevelComparison is the mean female share of one region measured over two
// geo-levels.
type LevelComparison struct {
	Year         int       `json:"year"` // 0: every year
	Region       string    `json:"region"`
	Municipality NullFloat `json:"municipality"`
	MicroRegion  NullFloat `json:"micro_region"`
}

// RankedUnit is one entry of a ranking by female share.
type RankedUnit struct {
	Year            int             `json:"year"`
	Region          string          `json:"region"`
	InstitutionType InstitutionType `json:"institution_type,omitempty"`
	Rank            int             `json:"rank"`
	Name            string          `json:"name"`
	FemaleShare     NullFloat       `json:"female_share"`
}
