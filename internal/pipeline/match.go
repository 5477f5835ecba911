package pipeline

import (
	"fmt"
	"math"
	"strings"

	"cre_catalog/internal/address"
)

// SignalWeights distributes scoring weight across the five match signals.
// The weights must sum to 1.
type SignalWeights struct {
	Address  float64
	Location float64
	Type     float64
	Size     float64
	Price    float64
}

// DefaultSignalWeights favors address identity over soft signals.
var DefaultSignalWeights = SignalWeights{
	Address:  0.40,
	Location: 0.20,
	Type:     0.15,
	Size:     0.15,
	Price:    0.10,
}

func (w SignalWeights) sum() float64 {
	return w.Address + w.Location + w.Type + w.Size + w.Price
}

// VarianceTiers are the relative-variance cutoffs for the tiered size and
// price signals. A variance below a cutoff earns that tier's credit.
type VarianceTiers struct {
	SizeFull      float64
	SizeTwoThirds float64
	SizeOneThird  float64
	PriceFull     float64
	PriceHalf     float64
}

var DefaultVarianceTiers = VarianceTiers{
	SizeFull:      0.05,
	SizeTwoThirds: 0.10,
	SizeOneThird:  0.15,
	PriceFull:     0.05,
	PriceHalf:     0.20,
}

// MatchConfig tunes pairwise listing comparison. AutoThreshold marks the
// score above which a match needs no human review; it does not change
// grouping, which uses Threshold alone.
type MatchConfig struct {
	Threshold     float64
	AutoThreshold float64
	Weights       SignalWeights
	Tiers         VarianceTiers
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Threshold:     0.70,
		AutoThreshold: 0.85,
		Weights:       DefaultSignalWeights,
		Tiers:         DefaultVarianceTiers,
	}
}

// Matcher scores pairs of raw listings for likely identity.
type Matcher struct {
	cfg MatchConfig
}

func NewMatcher(cfg MatchConfig) (*Matcher, error) {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("match threshold %v outside (0, 1]", cfg.Threshold)
	}
	if cfg.AutoThreshold <= 0 || cfg.AutoThreshold > 1 {
		return nil, fmt.Errorf("auto match threshold %v outside (0, 1]", cfg.AutoThreshold)
	}
	if s := cfg.Weights.sum(); math.Abs(s-1) > 1e-6 {
		return nil, fmt.Errorf("signal weights sum to %v, want 1", s)
	}
	return &Matcher{cfg: cfg}, nil
}

// IsMatch reports whether two raw field maps clear the match threshold,
// along with the underlying score.
func (m *Matcher) IsMatch(a, b map[string]any) (bool, float64) {
	s := m.Score(a, b)
	return s >= m.cfg.Threshold, s
}

// Score computes the weighted similarity of two raw field maps. Signals
// with missing data on either side contribute nothing. The result is
// clamped to [0, 1].
func (m *Matcher) Score(a, b map[string]any) float64 {
	w, tiers := m.cfg.Weights, m.cfg.Tiers
	score := 0.0

	na := address.Normalize(firstString(a, "address"))
	nb := address.Normalize(firstString(b, "address"))
	if na != "" && nb != "" {
		switch {
		case na == nb:
			score += w.Address
		case strings.Contains(na, nb) || strings.Contains(nb, na):
			score += w.Address * 0.75
		}
	}

	la, lb := locationOf(a), locationOf(b)
	if la.City != "" && strings.EqualFold(la.City, lb.City) {
		score += w.Location * 0.35
	}
	if la.State != "" && strings.EqualFold(la.State, lb.State) {
		score += w.Location * 0.35
	}
	if la.Zip != "" && la.Zip == lb.Zip {
		score += w.Location * 0.30
	}

	ta, tb := firstString(a, "property_type"), firstString(b, "property_type")
	if ta != "" && strings.EqualFold(ta, tb) {
		score += w.Type
	}

	if sa, ok := firstFloat(a, "area"); ok {
		if sb, ok := firstFloat(b, "area"); ok {
			if v, ok := relVariance(sa, sb); ok {
				switch {
				case v < tiers.SizeFull:
					score += w.Size
				case v < tiers.SizeTwoThirds:
					score += w.Size * 2 / 3
				case v < tiers.SizeOneThird:
					score += w.Size / 3
				}
			}
		}
	}

	if pa, ok := firstFloat(a, "price"); ok {
		if pb, ok := firstFloat(b, "price"); ok {
			if v, ok := relVariance(pa, pb); ok {
				switch {
				case v < tiers.PriceFull:
					score += w.Price
				case v < tiers.PriceHalf:
					score += w.Price / 2
				}
			}
		}
	}

	return math.Min(1, math.Max(0, score))
}

type location struct {
	City  string
	State string
	Zip   string
}

// locationOf reads explicit location fields, falling back to components
// parsed from the free-text address when city or state is missing.
func locationOf(m map[string]any) location {
	loc := location{
		City:  firstString(m, "city"),
		State: firstString(m, "state"),
		Zip:   firstString(m, "zip"),
	}
	if loc.City == "" || loc.State == "" {
		c := address.ExtractComponents(firstString(m, "address"))
		if loc.City == "" {
			loc.City = c.City
		}
		if loc.State == "" {
			loc.State = c.State
		}
		if loc.Zip == "" {
			loc.Zip = c.Zip
		}
	}
	return loc
}

// relVariance is |x-y| relative to the larger magnitude. Non-positive
// maxima yield no usable variance.
func relVariance(x, y float64) (float64, bool) {
	max := math.Max(x, y)
	if max <= 0 {
		return 0, false
	}
	return math.Abs(x-y) / max, true
}
