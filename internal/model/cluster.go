package model

// Label is the semantic label of a municipality cluster.
type Label string

const (
	LabelPriority  Label = "A" // high volume, high private share
	LabelBaseline  Label = "B"
	LabelDisparity Label = "C" // lowest female share
)

// Features are the clustering inputs of one municipality, with undefined
// ratios replaced by zero.
type Features struct {
	FemaleShare float64 `json:"female_share"`
	Volume      float64 `json:"volume"`
	PublicShare float64 `json:"public_share"`
}

// Vector returns the features in clustering order.
func (f Features) Vector() []float64 {
	return []float64{f.FemaleShare, f.Volume, f.PublicShare}
}

// FeaturesOf extracts the clustering features of a municipality row.
func FeaturesOf(r AggregateRow) Features {
	return Features{
		FemaleShare: r.FemaleShare.Or(0),
		Volume:      float64(r.Volume()),
		PublicShare: r.PublicShare.Or(0),
	}
}

// ClusterAssignment places one municipality-year in a cluster.
type ClusterAssignment struct {
	Year      int          `json:"year"`
	Key       GeoKey       `json:"key"`
	Cluster   int          `json:"cluster"`
	Label     Label        `json:"label"`
	Features  Features     `json:"features"`
	Indicator AggregateRow `json:"indicator"`
}

// LabelCount is the number of municipalities of a region carrying a label.
type LabelCount struct {
	Year   int    `json:"year"`
	Region string `json:"region"`
	Label  Label  `json:"label"`
	Count  int    `json:"count"`
}
