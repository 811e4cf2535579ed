package geo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nolanlove/skiapp/pkg/stores"
)

func intPtr(v int) *int { return &v }

func openResort(name string, base, fresh int) *stores.Resort {
	return &stores.Resort{
		Slug:        name,
		Name:        name,
		BaseDepth:   intPtr(base),
		NewSnow24h:  intPtr(fresh),
		TrailsOpen:  intPtr(100),
		TrailsTotal: intPtr(100),
		LiftsOpen:   intPtr(10),
		LiftsTotal:  intPtr(10),
		IsOpen:      true,
	}
}

func TestSnowQualityScore(t *testing.T) {
	closed := &stores.Resort{Slug: "closed", IsOpen: false, BaseDepth: intPtr(100)}
	if got := SnowQualityScore(closed); got != 0 {
		t.Errorf("closed resort should score 0, got %f", got)
	}

	// Fully open with deep base and a powder day hits the cap on every factor
	best := openResort("best", 80, 20)
	if got := SnowQualityScore(best); got != 100 {
		t.Errorf("expected max score 100, got %f", got)
	}

	// Base depth contribution is depth/2 capped at 30
	shallow := &stores.Resort{Slug: "shallow", IsOpen: true, BaseDepth: intPtr(20)}
	if got := SnowQualityScore(shallow); got != 10 {
		t.Errorf("expected score 10 for 20in base, got %f", got)
	}

	// Fresh snow contribution is 2.5x capped at 35
	powder := &stores.Resort{Slug: "powder", IsOpen: true, NewSnow24h: intPtr(4)}
	if got := SnowQualityScore(powder); got != 10 {
		t.Errorf("expected score 10 for 4in fresh, got %f", got)
	}
}

func TestCombinedScoreWeights(t *testing.T) {
	// With snow priority, better snow beats being closer
	goodSnowFar := CombinedScore(0.2, 0.9, PrioritySnow)
	badSnowNear := CombinedScore(0.9, 0.2, PrioritySnow)
	if goodSnowFar <= badSnowNear {
		t.Errorf("snow priority: expected %f > %f", goodSnowFar, badSnowNear)
	}

	// With distance priority, the ordering flips
	goodSnowFar = CombinedScore(0.2, 0.9, PriorityDistance)
	badSnowNear = CombinedScore(0.9, 0.2, PriorityDistance)
	if goodSnowFar >= badSnowNear {
		t.Errorf("distance priority: expected %f < %f", goodSnowFar, badSnowNear)
	}
}

func TestCombinedScoreRequiresBothDimensions(t *testing.T) {
	// Geometric mean: a zero on one axis cannot be fully compensated
	lopsided := CombinedScore(1.0, 0.0, PrioritySnow)
	balanced := CombinedScore(0.5, 0.5, PrioritySnow)
	if lopsided >= balanced {
		t.Errorf("expected balanced %f to beat lopsided %f", balanced, lopsided)
	}
}

func TestRankEmpty(t *testing.T) {
	got := Rank(nil, PrioritySnow, SortByCombined)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestRankOrderings(t *testing.T) {
	hours := func(h float64) *float64 { return &h }
	candidates := []Candidate{
		{Resort: openResort("near-icy", 10, 0), DriveMiles: 20, DriveHours: hours(0.4)},
		{Resort: openResort("far-powder", 80, 14), DriveMiles: 90, DriveHours: hours(1.8)},
		{Resort: openResort("mid-decent", 40, 4), DriveMiles: 50, DriveHours: hours(1.0)},
	}

	names := func(ranked []Ranked) []string {
		out := make([]string, len(ranked))
		for i, r := range ranked {
			out[i] = r.Resort.Slug
		}
		return out
	}

	byDistance := Rank(candidates, PrioritySnow, SortByDistance)
	if diff := cmp.Diff([]string{"near-icy", "mid-decent", "far-powder"}, names(byDistance)); diff != "" {
		t.Errorf("distance ordering mismatch (-want +got):\n%s", diff)
	}

	byConditions := Rank(candidates, PrioritySnow, SortByConditions)
	if diff := cmp.Diff([]string{"far-powder", "mid-decent", "near-icy"}, names(byConditions)); diff != "" {
		t.Errorf("conditions ordering mismatch (-want +got):\n%s", diff)
	}

	// Combined with snow priority: the mid resort balances both axes,
	// but far-powder's snow advantage dominates under 60% snow weight.
	combined := Rank(candidates, PrioritySnow, SortByCombined)
	if combined[len(combined)-1].Resort.Slug != "near-icy" {
		t.Errorf("expected near-icy last under snow priority, got %v", names(combined))
	}
}

func TestRankNormalization(t *testing.T) {
	candidates := []Candidate{
		{Resort: openResort("a", 60, 10), DriveMiles: 25},
		{Resort: openResort("b", 30, 2), DriveMiles: 100},
	}

	ranked := Rank(candidates, PrioritySnow, SortByCombined)
	for _, r := range ranked {
		if r.DistanceScore < 0 || r.DistanceScore > 1 {
			t.Errorf("%s: distance score out of range: %f", r.Resort.Slug, r.DistanceScore)
		}
		if r.QualityScore < 0 || r.QualityScore > 1 {
			t.Errorf("%s: quality score out of range: %f", r.Resort.Slug, r.QualityScore)
		}
	}

	// The farthest candidate scores 0 on distance; the best snow scores 1 on quality
	for _, r := range ranked {
		if r.Resort.Slug == "b" && r.DistanceScore != 0 {
			t.Errorf("farthest candidate should score 0, got %f", r.DistanceScore)
		}
		if r.Resort.Slug == "a" && math.Abs(r.QualityScore-1) > 1e-9 {
			t.Errorf("best snow should score 1, got %f", r.QualityScore)
		}
	}
}
