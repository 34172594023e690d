package cluster

import (
	"github.com/rotisserie/eris"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
)

// Precedence decides which label a cluster keeps when it wins both the
// disparity rule and the priority rule.
type Precedence string

const (
	// PrecedenceDisparity labels the lowest-female-share cluster C first and
	// searches A among the remaining clusters.
	PrecedenceDisparity Precedence = "disparity"
	// PrecedencePriority labels A first; a cluster winning both rules is A and
	// no cluster is C.
	PrecedencePriority Precedence = "priority"
)

// ParsePrecedence validates a configured precedence; empty means disparity.
func ParsePrecedence(s string) (Precedence, error) {
	switch p := Precedence(s); p {
	case "":
		return PrecedenceDisparity, nil
	case PrecedenceDisparity, PrecedencePriority:
		return p, nil
	default:
		return "", eris.Errorf("cluster: unknown precedence %q", s)
	}
}

// Profile holds the per-cluster means the labeling rules read. Undefined
// ratios are skipped in the means.
type Profile struct {
	Cluster      int             `json:"cluster"`
	Size         int             `json:"size"`
	FemaleShare  model.NullFloat `json:"female_share"`
	Volume       float64         `json:"volume"`
	PrivateShare model.NullFloat `json:"private_share"`
	PublicShare  model.NullFloat `json:"public_share"`
	Label        model.Label     `json:"label"`
}

// Score is the priority score: mean volume times mean private share, with an
// undefined private share counting as zero.
func (p Profile) Score() float64 {
	return p.Volume * p.PrivateShare.Or(0)
}

// Profiles computes one profile per non-empty cluster id, ascending.
func Profiles(rows []model.AggregateRow, labels []int, k int) []Profile {
	type acc struct {
		size                 int
		volume               float64
		female, priv, public []model.NullFloat
	}
	accs := make([]acc, k)
	for i, r := range rows {
		a := &accs[labels[i]]
		a.size++
		a.volume += float64(r.Volume())
		a.female = append(a.female, r.FemaleShare)
		a.priv = append(a.priv, r.PrivateShare)
		a.public = append(a.public, r.PublicShare)
	}

	var out []Profile
	for c, a := range accs {
		if a.size == 0 {
			continue
		}
		out = append(out, Profile{
			Cluster:      c,
			Size:         a.size,
			FemaleShare:  model.Mean(a.female),
			Volume:       a.volume / float64(a.size),
			PrivateShare: model.Mean(a.priv),
			PublicShare:  model.Mean(a.public),
		})
	}
	return out
}

// AssignLabels sets the label of every profile. threshold gates the priority
// rule on mean volume. Ties resolve to the lowest cluster id.
func AssignLabels(profiles []Profile, threshold float64, prec Precedence) {
	c := lowestFemaleShare(profiles)

	var a int
	if prec == PrecedencePriority {
		a = priorityCluster(profiles, threshold, -1)
		if a == c {
			c = -1
		}
	} else {
		a = priorityCluster(profiles, threshold, c)
	}

	for i := range profiles {
		switch profiles[i].Cluster {
		case a:
			profiles[i].Label = model.LabelPriority
		case c:
			profiles[i].Label = model.LabelDisparity
		default:
			profiles[i].Label = model.LabelBaseline
		}
	}
}

// lowestFemaleShare returns the cluster with the lowest defined mean female
// share, or -1.
func lowestFemaleShare(profiles []Profile) int {
	best := -1
	var bestV float64
	for _, p := range profiles {
		if !p.FemaleShare.Valid {
			continue
		}
		if best < 0 || p.FemaleShare.Value < bestV {
			best, bestV = p.Cluster, p.FemaleShare.Value
		}
	}
	return best
}

// priorityCluster maximizes Score among clusters at or above the volume
// threshold, excluding the cluster id exclude. When no cluster reaches the
// threshold the maximum is taken over every cluster except exclude. When the
// only gated cluster is excluded there is no priority cluster (-1).
func priorityCluster(profiles []Profile, threshold float64, exclude int) int {
	gated := false
	for _, p := range profiles {
		if p.Volume >= threshold {
			gated = true
			break
		}
	}

	best := -1
	var bestScore float64
	for _, p := range profiles {
		if p.Cluster == exclude || (gated && p.Volume < threshold) {
			continue
		}
		if s := p.Score(); best < 0 || s > bestScore {
			best, bestScore = p.Cluster, s
		}
	}
	return best
}
