package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"

	"cre_catalog/internal/domain"
)

// Consolidator merges the raw fields of a matched listing group into one
// record and flags cross-platform disagreements.
type Consolidator struct {
	varianceThreshold float64
}

// NewConsolidator builds a Consolidator. Non-positive thresholds fall back
// to the 5% default.
func NewConsolidator(varianceThreshold float64) *Consolidator {
	if varianceThreshold <= 0 {
		varianceThreshold = 0.05
	}
	return &Consolidator{varianceThreshold: varianceThreshold}
}

// PickValue selects the value for one raw key across a group: the most
// recently extracted listing that carries the key wins, ties keep group
// order. A key carried with a nil value still counts as carried.
func (c *Consolidator) PickValue(group []domain.RawListing, field string) any {
	cands := make([]domain.RawListing, 0, len(group))
	for _, l := range group {
		if _, ok := l.Fields[field]; ok {
			cands = append(cands, l)
		}
	}
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].ExtractedAt.After(cands[j].ExtractedAt)
	})
	return cands[0].Fields[field]
}

// DetectConflict reports a disagreement on one raw key across a group, or
// nil when the observations agree. Numeric observations conflict when their
// relative spread exceeds the variance threshold; anything else conflicts
// when more than one distinct rendering exists.
func (c *Consolidator) DetectConflict(group []domain.RawListing, field string) *domain.Conflict {
	var obs []domain.Observation
	for _, l := range group {
		if v, ok := l.Fields[field]; ok && v != nil {
			obs = append(obs, domain.Observation{Source: l.SourcePlatform, Value: v})
		}
	}
	if len(obs) <= 1 {
		return nil
	}
	if isNumeric(obs[0].Value) {
		return c.numericConflict(field, obs)
	}
	return stringConflict(field, obs)
}

func (c *Consolidator) numericConflict(field string, obs []domain.Observation) *domain.Conflict {
	var nums []float64
	for _, o := range obs {
		if f, ok := asFloat(o.Value); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) < 2 {
		return nil
	}
	min, max := nums[0], nums[0]
	for _, f := range nums[1:] {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if max <= 0 {
		return nil
	}
	v := (max - min) / max
	if v <= c.varianceThreshold {
		return nil
	}
	pct := v * 100
	return &domain.Conflict{Field: field, Values: obs, VariancePercent: &pct}
}

func stringConflict(field string, obs []domain.Observation) *domain.Conflict {
	distinct := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		distinct[fmt.Sprint(o.Value)] = struct{}{}
	}
	if len(distinct) <= 1 {
		return nil
	}
	return &domain.Conflict{Field: field, Values: obs}
}

// isNumeric routes conflict detection by the declared type of the first
// observation. Numeric strings stay on the string path.
func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	default:
		return false
	}
}
