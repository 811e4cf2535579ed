package geo

import (
	"math"
	"sort"

	"github.com/nolanlove/skiapp/pkg/stores"
)

// Priority selects which dimension of the 2D optimization gets the
// dominant weight.
type Priority string

const (
	// PrioritySnow gives snow quality 60% of the combined score.
	PrioritySnow Priority = "snow"

	// PriorityDistance gives drive distance 60% of the combined score.
	PriorityDistance Priority = "distance"
)

// SortBy selects the final ordering of ranked candidates.
type SortBy string

const (
	// SortByCombined orders by the 2D combined score, best first.
	SortByCombined SortBy = "combined"

	// SortByDistance orders by drive distance, nearest first.
	SortByDistance SortBy = "distance"

	// SortByConditions orders by snow quality, best first.
	SortByConditions SortBy = "conditions"
)

// Candidate is a resort paired with its drive distance from the user.
// DriveHours is nil when routing failed and the distance is straight-line.
type Candidate struct {
	Resort     *stores.Resort
	DriveMiles float64
	DriveHours *float64
}

// Ranked is a candidate annotated with normalized and combined scores.
// Scores are in [0, 1]; higher is better on every axis.
type Ranked struct {
	Candidate

	SnowQuality   float64
	QualityScore  float64
	DistanceScore float64
	CombinedScore float64
}

// SnowQualityScore calculates a snow quality score on a roughly 0-100
// scale. Closed resorts score zero. Open resorts accumulate:
//   - base depth, up to 30 points (60"+ is excellent)
//   - fresh 24h snow, up to 35 points (powder days are gold)
//   - trails-open percentage, up to 20 points
//   - lifts-open percentage, up to 15 points
func SnowQualityScore(r *stores.Resort) float64 {
	if !r.IsOpen {
		return 0
	}

	score := 0.0

	if r.BaseDepth != nil && *r.BaseDepth > 0 {
		score += math.Min(float64(*r.BaseDepth)/2, 30)
	}

	if r.NewSnow24h != nil && *r.NewSnow24h > 0 {
		score += math.Min(float64(*r.NewSnow24h)*2.5, 35)
	}

	if r.TrailsTotal != nil && *r.TrailsTotal > 0 && r.TrailsOpen != nil {
		score += float64(*r.TrailsOpen) / float64(*r.TrailsTotal) * 20
	}

	if r.LiftsTotal != nil && *r.LiftsTotal > 0 && r.LiftsOpen != nil {
		score += float64(*r.LiftsOpen) / float64(*r.LiftsTotal) * 15
	}

	return score
}

// CombinedScore combines a distance score and a quality score (both in
// [0, 1]) into one value using a weighted geometric mean. The geometric
// mean ensures a resort must be decent on BOTH dimensions to rank
// highly: terrible snow cannot be compensated for by being close, and
// vice versa. The priority dimension gets weight 0.6, the other 0.4.
func CombinedScore(distanceScore, qualityScore float64, priority Priority) float64 {
	// Small epsilon avoids a hard zero in the geometric mean.
	const eps = 0.01
	d := distanceScore + eps
	q := qualityScore + eps

	qualityWeight, distanceWeight := 0.6, 0.4
	if priority == PriorityDistance {
		qualityWeight, distanceWeight = 0.4, 0.6
	}

	return math.Pow(q, qualityWeight) * math.Pow(d, distanceWeight)
}

// Rank scores and sorts candidates. Distance is normalized so the
// nearest candidate scores ~1 and the farthest 0; snow quality is
// normalized against the best candidate in the set.
func Rank(candidates []Candidate, priority Priority, sortBy SortBy) []Ranked {
	if len(candidates) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, 0, len(candidates))
	maxDist, maxQuality := 0.0, 0.0
	for _, c := range candidates {
		r := Ranked{
			Candidate:   c,
			SnowQuality: SnowQualityScore(c.Resort),
		}
		maxDist = math.Max(maxDist, c.DriveMiles)
		maxQuality = math.Max(maxQuality, r.SnowQuality)
		ranked = append(ranked, r)
	}

	if maxDist == 0 {
		maxDist = 1
	}
	if maxQuality == 0 {
		maxQuality = 1
	}

	for i := range ranked {
		ranked[i].DistanceScore = 1 - ranked[i].DriveMiles/maxDist
		ranked[i].QualityScore = ranked[i].SnowQuality / maxQuality
		ranked[i].CombinedScore = CombinedScore(ranked[i].DistanceScore, ranked[i].QualityScore, priority)
	}

	switch sortBy {
	case SortByDistance:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DriveMiles < ranked[j].DriveMiles
		})
	case SortByConditions:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].SnowQuality > ranked[j].SnowQuality
		})
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CombinedScore > ranked[j].CombinedScore
		})
	}

	return ranked
}

// ParsePriority maps a query-string value to a Priority, defaulting to snow.
func ParsePriority(s string) Priority {
	if s == string(PriorityDistance) {
		return PriorityDistance
	}
	return PrioritySnow
}
