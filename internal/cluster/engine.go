// Package cluster partitions the municipalities of one year by their STEM
// enrollment profile and labels the groups with the A/B/C rules.
package cluster

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/aggregate"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// Config controls labeling. K is the number of clusters, VolumeQuantile the
// per-municipality volume quantile gating the priority label.
type Config struct {
	K              int
	VolumeQuantile float64
	Precedence     Precedence
}

// DefaultConfig returns three clusters, the 75th percentile gate and
// disparity precedence.
func DefaultConfig() Config {
	return Config{K: 3, VolumeQuantile: 0.75, Precedence: PrecedenceDisparity}
}

// Result is one clustering run over the municipalities of a year. Skipped is
// set, with no assignments, when the year has fewer municipalities than K.
type Result struct {
	Year            int                       `json:"year"`
	Skipped         bool                      `json:"skipped"`
	Assignments     []model.ClusterAssignment `json:"assignments"`
	Profiles        []Profile                 `json:"profiles"`
	VolumeThreshold float64                   `json:"volume_threshold"`
	Silhouette      model.NullFloat           `json:"silhouette"`
	Inertia         float64                   `json:"inertia"`
}

// Engine runs clustering with a pluggable Partitioner.
type Engine struct {
	cfg         Config
	partitioner Partitioner
}

// NewEngine creates an Engine. A nil partitioner uses DefaultKMeans.
func NewEngine(cfg Config, p Partitioner) *Engine {
	if cfg.K <= 0 {
		cfg.K = 3
	}
	if cfg.VolumeQuantile <= 0 {
		cfg.VolumeQuantile = 0.75
	}
	if cfg.Precedence == "" {
		cfg.Precedence = PrecedenceDisparity
	}
	if p == nil {
		p = DefaultKMeans()
	}
	return &Engine{cfg: cfg, partitioner: p}
}

// Run clusters the municipality rows of year. Rows of other years are ignored.
func (e *Engine) Run(year int, municipal []model.AggregateRow) (Result, error) {
	log := zap.L().With(zap.String("component", "cluster"), zap.Int("year", year))

	rows := aggregate.ForYear(municipal, year)
	res := Result{Year: year}
	if len(rows) < e.cfg.K {
		log.Info("clustering skipped", zap.Int("municipalities", len(rows)), zap.Int("k", e.cfg.K))
		res.Skipped = true
		return res, nil
	}

	features := make([]model.Features, len(rows))
	x := make([][]float64, len(rows))
	volumes := make([]float64, len(rows))
	for i, r := range rows {
		features[i] = model.FeaturesOf(r)
		x[i] = features[i].Vector()
		volumes[i] = features[i].Volume
	}
	z, _ := Standardize(x)

	part, err := e.partitioner.Partition(z, e.cfg.K)
	if err != nil {
		return Result{}, eris.Wrapf(err, "cluster: partition year %d", year)
	}

	res.VolumeThreshold = Quantile(volumes, e.cfg.VolumeQuantile)
	res.Profiles = Profiles(rows, part.Labels, e.cfg.K)
	AssignLabels(res.Profiles, res.VolumeThreshold, e.cfg.Precedence)
	res.Silhouette = Silhouette(z, part.Labels)
	res.Inertia = part.Inertia

	labelOf := make(map[int]model.Label, len(res.Profiles))
	for _, p := range res.Profiles {
		labelOf[p.Cluster] = p.Label
	}
	res.Assignments = make([]model.ClusterAssignment, len(rows))
	for i, r := range rows {
		res.Assignments[i] = model.ClusterAssignment{
			Year:      year,
			Key:       r.Key,
			Cluster:   part.Labels[i],
			Label:     labelOf[part.Labels[i]],
			Features:  features[i],
			Indicator: r,
		}
	}

	log.Info("clustering done",
		zap.Int("municipalities", len(rows)),
		zap.Float64("volume_threshold", res.VolumeThreshold),
		zap.Float64("inertia", part.Inertia),
		zap.Stringer("silhouette", res.Silhouette),
	)
	return res, nil
}

// RunPerYear clusters every year present in municipal independently, in
// ascending year order.
func (e *Engine) RunPerYear(municipal []model.AggregateRow) ([]Result, error) {
	years := aggregate.Years(municipal)
	out := make([]Result, 0, len(years))
	for _, y := range years {
		res, err := e.Run(y, municipal)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// LowestFemaleShare returns the n assignments with the lowest female share,
// undefined shares last (n <= 0: all).
func LowestFemaleShare(res Result, n int) []model.ClusterAssignment {
	out := append([]model.ClusterAssignment(nil), res.Assignments...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Indicator.FemaleShare, out[j].Indicator.FemaleShare
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value < b.Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Distribution counts municipalities per region and label. Every label used
// in the year appears for every region, with zero counts where absent.
func Distribution(res Result) []model.LabelCount {
	counts := make(map[string]map[model.Label]int)
	used := make(map[model.Label]bool)
	for _, a := range res.Assignments {
		if counts[a.Key.Region] == nil {
			counts[a.Key.Region] = make(map[model.Label]int)
		}
		counts[a.Key.Region][a.Label]++
		used[a.Label] = true
	}

	regions := make([]string, 0, len(counts))
	for r := range counts {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	labels := make([]model.Label, 0, len(used))
	for l := range used {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	var out []model.LabelCount
	for _, r := range regions {
		for _, l := range labels {
			out = append(out, model.LabelCount{Year: res.Year, Region: r, Label: l, Count: counts[r][l]})
		}
	}
	return out
}
