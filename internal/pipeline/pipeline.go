package pipeline

import (
	"fmt"
	"time"

	"cre_catalog/internal/domain"
)

// trackedFields are the raw keys carried into consolidated records, in
// output order. Keys outside this list never reach the catalog.
var trackedFields = []string{
	"address", "address_full", "address_street", "address_city",
	"address_state", "address_zip", "price", "unformattedPrice",
	"beds", "baths", "area", "latitude", "longitude",
	"homeType", "homeStatus", "daysOnZillow",
}

// Config assembles the tunables of the full pipeline.
type Config struct {
	Match            MatchConfig
	ConflictVariance float64
	Mandate          MandatePolicy
}

func DefaultConfig() Config {
	return Config{
		Match:            DefaultMatchConfig(),
		ConflictVariance: 0.05,
		Mandate:          DefaultMandatePolicy(),
	}
}

// Processor runs deduplication, consolidation and classification over a
// batch of raw listings.
type Processor struct {
	matcher    *Matcher
	cons       *Consolidator
	classifier *Classifier
}

func New(cfg Config) (*Processor, error) {
	matcher, err := NewMatcher(cfg.Match)
	if err != nil {
		return nil, err
	}
	return &Processor{
		matcher:    matcher,
		cons:       NewConsolidator(cfg.ConflictVariance),
		classifier: NewClassifier(cfg.Mandate),
	}, nil
}

// Process validates listing identity, groups duplicates, and emits one
// consolidated, classified property per group. Property IDs are positional
// within the batch, so a batch is reprocessed as a unit or not at all.
func (p *Processor) Process(listings []domain.RawListing) ([]domain.Property, error) {
	for i, l := range listings {
		if l.SourcePlatform == "" || l.NativeID == "" {
			return nil, fmt.Errorf("%w: record %d missing source_platform or listing_id_native",
				domain.ErrInvalidListing, i)
		}
	}
	groups := p.group(listings)
	props := make([]domain.Property, 0, len(groups))
	for gi, g := range groups {
		props = append(props, p.consolidate(gi, g))
	}
	return props, nil
}

// group assigns listings by leader scan: the first unassigned listing
// leads a group, and every later unassigned listing joins when it matches
// the leader. Members are never compared to each other, so group identity
// depends on input order.
func (p *Processor) group(listings []domain.RawListing) [][]domain.RawListing {
	assigned := make([]bool, len(listings))
	var groups [][]domain.RawListing
	for i := range listings {
		if assigned[i] {
			continue
		}
		group := []domain.RawListing{listings[i]}
		assigned[i] = true
		for j := i + 1; j < len(listings); j++ {
			if assigned[j] {
				continue
			}
			if ok, _ := p.matcher.IsMatch(listings[i].Fields, listings[j].Fields); ok {
				group = append(group, listings[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func (p *Processor) consolidate(gi int, group []domain.RawListing) domain.Property {
	data := make(map[string]any, len(trackedFields))
	var conflicts []domain.Conflict
	for _, f := range trackedFields {
		if v := p.cons.PickValue(group, f); v != nil {
			data[f] = v
		}
		if c := p.cons.DetectConflict(group, f); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	synthesizeAddress(data)

	verdict := p.classifier.Classify(data)

	sources := make([]domain.SourceRef, 0, len(group))
	for _, l := range group {
		sources = append(sources, domain.SourceRef{
			Platform:    l.SourcePlatform,
			ListingID:   l.NativeID,
			ExtractedAt: l.ExtractedAt,
		})
	}

	return domain.Property{
		PropertyID:     fmt.Sprintf("PROP-%06d", gi),
		Data:           data,
		Sources:        sources,
		Conflicts:      conflicts,
		Classification: verdict.Classification,
		DiscardReason:  verdict.Reason,
		DiscardDetails: verdict.Details,
		LastUpdated:    time.Now().UTC(),
	}
}

// synthesizeAddress backfills the canonical "address" key for platforms
// that ship components only. A component join is set even when it comes
// out empty; required-field checks then see the record as incomplete.
func synthesizeAddress(data map[string]any) {
	if _, ok := data["address"]; ok {
		return
	}
	if full, ok := data["address_full"]; ok {
		data["address"] = full
		return
	}
	if _, ok := data["address_street"]; !ok {
		return
	}
	part := func(key string) string {
		if v, ok := data[key]; ok {
			return strOf(v)
		}
		return ""
	}
	data["address"] = joinNonEmpty(", ",
		part("address_street"), part("address_city"),
		part("address_state"), part("address_zip"))
}
