package export

import (
	"strconv"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// Indicators are the count and ratio columns shared by every aggregate table.
// Shares are fractions of one.
type Indicators struct {
	Enrolled        int64           `csv:"QT_MAT"`
	EnrolledFemale  int64           `csv:"QT_MAT_FEM"`
	EnrolledMale    int64           `csv:"QT_MAT_MASC"`
	EnrolledPublic  int64           `csv:"QT_MAT_PUBLICA"`
	EnrolledPrivate int64           `csv:"QT_MAT_PRIVADA"`
	FemaleShare     model.NullFloat `csv:"PCT_FEM_STEM"`
	ParityIndex     model.NullFloat `csv:"IPG"`
	Volume          int64           `csv:"VOLUME_STEM"`
	PublicShare     model.NullFloat `csv:"PCT_PUBLICA"`
	PrivateShare    model.NullFloat `csv:"PCT_PRIVADA"`
	Intake          string          `csv:"QT_ING"`
	Completed       string          `csv:"QT_CONC"`
	SuccessRate     model.NullFloat `csv:"TAXA_SUCESSO"`
}

func indicatorsOf(r model.AggregateRow) Indicators {
	ind := Indicators{
		Enrolled:        r.Enrolled,
		EnrolledFemale:  r.EnrolledFemale,
		EnrolledMale:    r.EnrolledMale(),
		EnrolledPublic:  r.EnrolledPublic,
		EnrolledPrivate: r.EnrolledPrivate,
		FemaleShare:     r.FemaleShare,
		ParityIndex:     r.ParityIndex,
		Volume:          r.Volume(),
		PublicShare:     r.PublicShare,
		PrivateShare:    r.PrivateShare,
		SuccessRate:     r.SuccessRate,
	}
	if r.HasFlow {
		ind.Intake = strconv.FormatInt(r.Intake, 10)
		ind.Completed = strconv.FormatInt(r.Completed, 10)
	}
	return ind
}

// MunicipalRow is one line of the municipality indicator table.
type MunicipalRow struct {
	Year             int    `csv:"ANO"`
	Region           string `csv:"NO_REGIAO"`
	State            string `csv:"SG_UF"`
	MunicipalityName string `csv:"NO_MUNICIPIO"`
	MunicipalityCode string `csv:"CO_MUNICIPIO"`
	Indicators
}

// MicroRegionRow is one line of the micro-region indicator table.
type MicroRegionRow struct {
	Year            int    `csv:"ANO"`
	Region          string `csv:"NO_REGIAO"`
	State           string `csv:"SG_UF"`
	MicroRegionName string `csv:"NO_MICRORREGIAO"`
	MicroRegionCode string `csv:"CO_MICRORREGIAO"`
	Indicators
}

// RegionRow is one line of the region series; InstitutionType is empty in the
// untyped series and in the scope total.
type RegionRow struct {
	Year            int    `csv:"ANO"`
	Region          string `csv:"NO_REGIAO"`
	InstitutionType string `csv:"TP_REDE"`
	Indicators
}

// ClusterRow is one clustered municipality.
type ClusterRow struct {
	Year             int             `csv:"ANO"`
	Region           string          `csv:"NO_REGIAO"`
	State            string          `csv:"SG_UF"`
	MunicipalityName string          `csv:"NO_MUNICIPIO"`
	MunicipalityCode string          `csv:"CO_MUNICIPIO"`
	Cluster          int             `csv:"CLUSTER"`
	Label            string          `csv:"LABEL"`
	FemaleShare      model.NullFloat `csv:"PCT_FEM_STEM"`
	Volume           int64           `csv:"VOLUME_STEM"`
	PublicShare      model.NullFloat `csv:"PCT_PUBLICA"`
	PrivateShare     model.NullFloat `csv:"PCT_PRIVADA"`
}

// ComparisonRow compares the municipality and micro-region means of a region.
type ComparisonRow struct {
	Year         string          `csv:"ANO"`
	Region       string          `csv:"NO_REGIAO"`
	Municipality model.NullFloat `csv:"PCT_FEM_MUNICIPIO"`
	MicroRegion  model.NullFloat `csv:"PCT_FEM_MICRORREGIAO"`
}

// RankingRow is one ranked micro-region.
type RankingRow struct {
	Year            int             `csv:"ANO"`
	Region          string          `csv:"NO_REGIAO"`
	InstitutionType string          `csv:"TP_REDE"`
	Rank            int             `csv:"POSICAO"`
	MicroRegionName string          `csv:"NO_MICRORREGIAO"`
	FemaleShare     model.NullFloat `csv:"PCT_FEM_STEM"`
}

// DistributionRow counts municipalities per region and label.
type DistributionRow struct {
	Year   int    `csv:"ANO"`
	Region string `csv:"NO_REGIAO"`
	Label  string `csv:"LABEL"`
	Count  int    `csv:"QT_MUNICIPIOS"`
}

// ProfileRow describes one cluster of a run.
type ProfileRow struct {
	Year         int             `csv:"ANO"`
	Cluster      int             `csv:"CLUSTER"`
	Label        string          `csv:"LABEL"`
	Size         int             `csv:"QT_MUNICIPIOS"`
	FemaleShare  model.NullFloat `csv:"PCT_FEM_STEM"`
	Volume       float64         `csv:"VOLUME_STEM"`
	PrivateShare model.NullFloat `csv:"PCT_PRIVADA"`
	PublicShare  model.NullFloat `csv:"PCT_PUBLICA"`
	Threshold    float64         `csv:"LIMIAR_VOLUME"`
	Silhouette   model.NullFloat `csv:"SILHUETA"`
}

func municipalRows(rows []model.AggregateRow) []MunicipalRow {
	out := make([]MunicipalRow, len(rows))
	for i, r := range rows {
		out[i] = MunicipalRow{
			Year:             r.Year,
			Region:           r.Key.Region,
			State:            r.Key.State,
			MunicipalityName: r.Key.Name,
			MunicipalityCode: r.Key.Code,
			Indicators:       indicatorsOf(r),
		}
	}
	return out
}

func microRegionRows(rows []model.AggregateRow) []MicroRegionRow {
	out := make([]MicroRegionRow, len(rows))
	for i, r := range rows {
		out[i] = MicroRegionRow{
			Year:            r.Year,
			Region:          r.Key.Region,
			State:           r.Key.State,
			MicroRegionName: r.Key.Name,
			MicroRegionCode: r.Key.Code,
			Indicators:      indicatorsOf(r),
		}
	}
	return out
}

func regionRows(rows []model.AggregateRow) []RegionRow {
	out := make([]RegionRow, len(rows))
	for i, r := range rows {
		out[i] = RegionRow{
			Year:            r.Year,
			Region:          r.Key.Region,
			InstitutionType: string(r.InstitutionType),
			Indicators:      indicatorsOf(r),
		}
	}
	return out
}

func clusterRows(assignments []model.ClusterAssignment) []ClusterRow {
	out := make([]ClusterRow, len(assignments))
	for i, a := range assignments {
		out[i] = ClusterRow{
			Year:             a.Year,
			Region:           a.Key.Region,
			State:            a.Key.State,
			MunicipalityName: a.Key.Name,
			MunicipalityCode: a.Key.Code,
			Cluster:          a.Cluster,
			Label:            string(a.Label),
			FemaleShare:      a.Indicator.FemaleShare,
			Volume:           a.Indicator.Volume(),
			PublicShare:      a.Indicator.PublicShare,
			PrivateShare:     a.Indicator.PrivateShare,
		}
	}
	return out
}

func profileRows(res cluster.Result) []ProfileRow {
	out := make([]ProfileRow, len(res.Profiles))
	for i, p := range res.Profiles {
		out[i] = ProfileRow{
			Year:         res.Year,
			Cluster:      p.Cluster,
			Label:        string(p.Label),
			Size:         p.Size,
			FemaleShare:  p.FemaleShare,
			Volume:       p.Volume,
			PrivateShare: p.PrivateShare,
			PublicShare:  p.PublicShare,
			Threshold:    res.VolumeThreshold,
			Silhouette:   res.Silhouette,
		}
	}
	return out
}

func comparisonRows(rows []model.LevelComparison) []ComparisonRow {
	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		year := "TODOS"
		if r.Year != 0 {
			year = strconv.Itoa(r.Year)
		}
		out[i] = ComparisonRow{
			Year:         year,
			Region:       r.Region,
			Municipality: r.Municipality,
			MicroRegion:  r.MicroRegion,
		}
	}
	return out
}

func rankingRows(rows []model.RankedUnit) []RankingRow {
	out := make([]RankingRow, len(rows))
	for i, r := range rows {
		out[i] = RankingRow{
			Year:            r.Year,
			Region:          r.Region,
			InstitutionType: string(r.InstitutionType),
			Rank:            r.Rank,
			MicroRegionName: r.Name,
			FemaleShare:     r.FemaleShare,
		}
	}
	return out
}

func distributionRows(counts []model.LabelCount) []DistributionRow {
	out := make([]DistributionRow, len(counts))
	for i, c := range counts {
		out[i] = DistributionRow{Year: c.Year, Region: c.Region, Label: string(c.Label), Count: c.Count}
	}
	return out
}
